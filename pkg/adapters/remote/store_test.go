package remote_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notelink/pkg/adapters/remote"
	"github.com/aretw0/notelink/pkg/core"
)

// memClient is an in-memory DocumentClient with working listeners.
type memClient struct {
	mu        sync.Mutex
	cols      map[string]map[string]map[string]any
	listeners []*memListener
}

type memListener struct {
	collection string
	filter     remote.Filter
	ch         chan []remote.Document
	closed     bool
}

func newMemClient() *memClient {
	return &memClient{cols: make(map[string]map[string]map[string]any)}
}

func (c *memClient) col(name string) map[string]map[string]any {
	if c.cols[name] == nil {
		c.cols[name] = make(map[string]map[string]any)
	}
	return c.cols[name]
}

func cloneFields(f map[string]any) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (c *memClient) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fields, ok := c.col(collection)[id]
	if !ok {
		return remote.Document{}, core.ErrNotFound
	}
	return remote.Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (c *memClient) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	c.mu.Lock()
	c.col(collection)[id] = cloneFields(fields)
	c.broadcastLocked(collection)
	c.mu.Unlock()
	return nil
}

func (c *memClient) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.col(collection)[id]
	if !ok {
		return core.ErrNotFound
	}
	for k, v := range fields {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	c.broadcastLocked(collection)
	return nil
}

func (c *memClient) Delete(ctx context.Context, collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.col(collection), id)
	c.broadcastLocked(collection)
	return nil
}

func (c *memClient) Listen(ctx context.Context, collection string, filter remote.Filter) (<-chan []remote.Document, error) {
	l := &memListener{collection: collection, filter: filter, ch: make(chan []remote.Document, 16)}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	l.ch <- c.matchingLocked(l)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		if !l.closed {
			l.closed = true
			close(l.ch)
		}
		c.mu.Unlock()
	}()
	return l.ch, nil
}

func (c *memClient) matchingLocked(l *memListener) []remote.Document {
	docs := []remote.Document{}
	for id, fields := range c.col(l.collection) {
		if l.filter.Field != "" && fields[l.filter.Field] != l.filter.Equals {
			continue
		}
		docs = append(docs, remote.Document{ID: id, Fields: cloneFields(fields)})
	}
	return docs
}

func (c *memClient) broadcastLocked(collection string) {
	for _, l := range c.listeners {
		if l.collection != collection || l.closed {
			continue
		}
		l.ch <- c.matchingLocked(l)
	}
}

func session(owner string) core.Session {
	return core.Session{OwnerID: owner, SignedIn: time.Now()}
}

func TestNoteStore_RoundTrip(t *testing.T) {
	client := newMemClient()
	store := remote.NewNoteStore(client, session("u1"), nil)
	ctx := context.Background()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	reminder := created.Add(24 * time.Hour)
	id, err := store.Create(ctx, core.Note{
		Title:     "Groceries",
		Body:      "milk",
		CreatedAt: created,
		LabelIDs:  core.NewIDSet("l1"),
		Archived:  true,
		Reminder:  &reminder,
	})
	require.NoError(t, err)

	n, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "u1", n.OwnerID, "owner filled from session")
	assert.True(t, n.CreatedAt.Equal(created))
	assert.True(t, n.LabelIDs.Equal(core.NewIDSet("l1")))
	assert.True(t, n.Archived)
	require.NotNil(t, n.Reminder)
	assert.True(t, n.Reminder.Equal(reminder))
}

func TestNoteStore_PartialUpdate(t *testing.T) {
	client := newMemClient()
	store := remote.NewNoteStore(client, session("u1"), nil)
	ctx := context.Background()

	reminder := time.Date(2026, 8, 2, 8, 0, 0, 0, time.UTC)
	id, err := store.Create(ctx, core.Note{Title: "a", Body: "b", Reminder: &reminder})
	require.NoError(t, err)

	title := "a2"
	next := core.NewIDSet("l9")
	err = store.Update(ctx, id, core.NotePatch{Title: &title, LabelIDs: &next, ClearReminder: true})
	require.NoError(t, err)

	n, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a2", n.Title)
	assert.Equal(t, "b", n.Body, "unpatched field untouched")
	assert.True(t, n.LabelIDs.Equal(next))
	assert.Nil(t, n.Reminder, "cleared field decodes as absent")

	// An all-nil patch must not issue a write at all.
	require.NoError(t, store.Update(ctx, "missing", core.NotePatch{}))
}

func TestNoteStore_NotFound(t *testing.T) {
	store := remote.NewNoteStore(newMemClient(), session("u1"), nil)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNoteStore_ObserveScopedToOwner(t *testing.T) {
	client := newMemClient()
	mine := remote.NewNoteStore(client, session("u1"), nil)
	theirs := remote.NewNoteStore(client, session("u2"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := theirs.Create(ctx, core.Note{ID: "other", Title: "not mine"})
	require.NoError(t, err)

	stream, err := mine.ObserveAll(ctx)
	require.NoError(t, err)

	select {
	case snap := <-stream:
		assert.Empty(t, snap, "other owner's notes must be filtered out")
	case <-time.After(2 * time.Second):
		t.Fatal("no initial emission")
	}

	id, err := mine.Create(ctx, core.Note{Title: "mine"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case snap := <-stream:
			return len(snap) == 1 && snap[0].ID == id
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLabelStore_RoundTrip(t *testing.T) {
	client := newMemClient()
	store := remote.NewLabelStore(client, session("u1"), nil)
	ctx := context.Background()

	id, err := store.Create(ctx, core.Label{Name: "Home", NoteIDs: core.NewIDSet("n1", "n2")})
	require.NoError(t, err)

	l, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Home", l.Name)
	assert.Equal(t, "u1", l.OwnerID)
	assert.True(t, l.NoteIDs.Equal(core.NewIDSet("n1", "n2")))

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
