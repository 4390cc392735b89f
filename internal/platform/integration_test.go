package platform_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notelink/internal/platform"
	"github.com/aretw0/notelink/pkg/core"
)

func newLocalApp(t *testing.T) *platform.App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app, err := platform.New(ctx,
		platform.WithOwner("u1"),
		platform.WithLocalStore(filepath.Join(t.TempDir(), "notes.db")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func labelNamed(t *testing.T, app *platform.App, name string) core.Label {
	t.Helper()
	var found core.Label
	require.Eventually(t, func() bool {
		for _, l := range app.Labels.Snapshot() {
			if l.Name == name {
				found = l
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond, "label %q never appeared", name)
	return found
}

func TestApp_AttachThenDeleteLabel(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()

	noteID, err := app.Notes.Create(ctx, core.Note{Title: "Groceries", Body: "milk"})
	require.NoError(t, err)

	err = app.Sync.AttachLabelsToNotes(ctx,
		core.NewIDSet(noteID), core.NewIDSet(), core.NewIDSet(), "Home")
	require.NoError(t, err)

	home := labelNamed(t, app, "Home")
	assert.True(t, home.NoteIDs.Has(noteID), "label lists the note")

	n, err := app.Notes.Get(ctx, noteID)
	require.NoError(t, err)
	assert.True(t, n.LabelIDs.Has(home.ID), "note lists the label")

	require.NoError(t, app.Sync.DeleteLabel(ctx, home.ID))

	n, err = app.Notes.Get(ctx, noteID)
	require.NoError(t, err)
	assert.False(t, n.LabelIDs.Has(home.ID), "note detached")
	_, err = app.Labels.Get(ctx, home.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestApp_DeleteNotePrunesLabels(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()

	first, err := app.Notes.Create(ctx, core.Note{Title: "first"})
	require.NoError(t, err)
	second, err := app.Notes.Create(ctx, core.Note{Title: "second"})
	require.NoError(t, err)

	err = app.Sync.AttachLabelsToNotes(ctx,
		core.NewIDSet(first, second), core.NewIDSet(), core.NewIDSet(), "Shared")
	require.NoError(t, err)
	shared := labelNamed(t, app, "Shared")

	require.NoError(t, app.Sync.DeleteNote(ctx, first))

	_, err = app.Notes.Get(ctx, first)
	assert.ErrorIs(t, err, core.ErrNotFound)

	l, err := app.Labels.Get(ctx, shared.ID)
	require.NoError(t, err)
	assert.False(t, l.NoteIDs.Has(first), "deleted note pruned from label")
	assert.True(t, l.NoteIDs.Has(second), "surviving note untouched")
}

func TestApp_AttachAcrossExistingLabels(t *testing.T) {
	app := newLocalApp(t)
	ctx := context.Background()

	noteID, err := app.Notes.Create(ctx, core.Note{Title: "todo"})
	require.NoError(t, err)
	oldID, err := app.Labels.Create(ctx, core.Label{Name: "Old", NoteIDs: core.NewIDSet(noteID)})
	require.NoError(t, err)
	newID, err := app.Labels.Create(ctx, core.Label{Name: "New"})
	require.NoError(t, err)

	// Note never declared Old; attaching New while removing Old also repairs
	// the one-sided Old->note edge.
	err = app.Sync.AttachLabelsToNotes(ctx,
		core.NewIDSet(noteID), core.NewIDSet(newID), core.NewIDSet(oldID), "")
	require.NoError(t, err)

	n, err := app.Notes.Get(ctx, noteID)
	require.NoError(t, err)
	assert.True(t, n.LabelIDs.Equal(core.NewIDSet(newID)))

	old, err := app.Labels.Get(ctx, oldID)
	require.NoError(t, err)
	assert.False(t, old.NoteIDs.Has(noteID))

	added, err := app.Labels.Get(ctx, newID)
	require.NoError(t, err)
	assert.True(t, added.NoteIDs.Has(noteID))
}

func TestApp_SwitchBackend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dirA := filepath.Join(t.TempDir(), "a.db")
	dirB := filepath.Join(t.TempDir(), "b.db")

	// The would-be remote side is a second, independent store pair.
	other, err := platform.New(ctx,
		platform.WithOwner("u1"),
		platform.WithLocalStore(dirB),
	)
	require.NoError(t, err)
	defer other.Close()

	appB, err := platform.New(ctx,
		platform.WithOwner("u1"),
		platform.WithLocalStore(dirA),
		platform.WithNoteBackend(core.BackendRemote, other.Notes),
		platform.WithLabelBackend(core.BackendRemote, other.Labels),
		platform.WithInitialBackend(core.BackendLocal),
	)
	require.NoError(t, err)
	defer appB.Close()

	localID, err := appB.Notes.Create(ctx, core.Note{Title: "on disk"})
	require.NoError(t, err)
	remoteID, err := other.Notes.Create(ctx, core.Note{Title: "elsewhere"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := appB.Notes.Cached(localID)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, appB.SwitchBackend(core.BackendRemote))
	assert.Equal(t, core.BackendRemote, appB.Notes.Kind())

	_, ok := appB.Notes.Cached(localID)
	assert.False(t, ok, "old backend's content cleared on switch")
	require.Eventually(t, func() bool {
		_, ok := appB.Notes.Cached(remoteID)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	// Writes now land on the other backend.
	_, err = appB.Notes.Get(ctx, localID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestApp_RequiresOwnerAndBackend(t *testing.T) {
	ctx := context.Background()

	_, err := platform.New(ctx, platform.WithLocalStore(filepath.Join(t.TempDir(), "x.db")))
	assert.Error(t, err, "owner is mandatory")

	_, err = platform.New(ctx, platform.WithOwner("u1"))
	assert.Error(t, err, "at least one backend is mandatory")
}
