package reactivity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notelink/pkg/bridge"
	"github.com/aretw0/notelink/pkg/core"
)

// unbufferedStore emits snapshots on an unbuffered channel, so a producer
// blocks the moment nobody is reading on the other end.
type unbufferedStore struct {
	ch chan []core.Note
}

func (s *unbufferedStore) ObserveAll(ctx context.Context) (<-chan []core.Note, error) {
	return s.ch, nil
}

func (s *unbufferedStore) Get(ctx context.Context, id string) (core.Note, error) {
	return core.Note{}, core.ErrNotFound
}
func (s *unbufferedStore) Create(ctx context.Context, n core.Note) (string, error) {
	return n.ID, nil
}
func (s *unbufferedStore) Update(ctx context.Context, id string, patch core.NotePatch) error {
	return nil
}
func (s *unbufferedStore) Delete(ctx context.Context, id string) error { return nil }

func TestBridge_DecouplesProducerFromSlowConsumer(t *testing.T) {
	store := &unbufferedStore{ch: make(chan []core.Note)} // unbuffered

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backends := map[core.BackendKind]core.NoteStore{core.BackendRemote: store}
	b, err := bridge.New(ctx, "notes", backends, core.BackendRemote, nil)
	require.NoError(t, err)

	stream, err := b.ObserveAll(ctx)
	require.NoError(t, err)

	// Nobody reads from 'stream' while the backend pushes five snapshots.
	// If the bridge did not drain its subscription promptly, the producer
	// would hang on the first send.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 5; i++ {
			snap := make([]core.Note, i)
			select {
			case store.ch <- snap:
			case <-time.After(time.Second):
				t.Error("producer blocked behind a slow consumer")
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for producer")
	}

	// The slow consumer still observes the latest state, not the backlog.
	require.Eventually(t, func() bool {
		select {
		case snap := <-stream:
			return len(snap) == 5
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Len(t, b.Snapshot(), 5)
}
