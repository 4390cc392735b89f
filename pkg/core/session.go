package core

import "time"

// Session scopes every store operation to one signed-in user. It is built
// once at login and passed into construction explicitly; there is no global
// "current user".
type Session struct {
	OwnerID  string
	SignedIn time.Time
}

// Valid reports whether the session can back store operations.
func (s Session) Valid() bool { return s.OwnerID != "" }
