package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notelink/pkg/core"
)

func TestSource_ForwardsSnapshots(t *testing.T) {
	stream := make(chan []core.Note, 1)
	src := NewSource(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, src.Start(ctx))

	stream <- []core.Note{{ID: "n1"}, {ID: "n2"}}

	select {
	case e := <-src.Events():
		snap, ok := e.(*Snapshot[core.Note])
		require.True(t, ok)
		assert.Len(t, snap.Items, 2)
		assert.Equal(t, "snapshot of 2 items", e.String())
	case <-time.After(time.Second):
		t.Fatal("no event forwarded")
	}
}

func TestSource_ClosesWithUpstream(t *testing.T) {
	stream := make(chan []core.Note)
	src := NewSource(stream)
	require.NoError(t, src.Start(context.Background()))

	close(stream)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "event channel closes when the stream ends")
	case <-time.After(time.Second):
		t.Fatal("event channel did not close")
	}
}
