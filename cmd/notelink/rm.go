package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <note-id>",
	Short: "Trash a note, or delete it permanently with --force",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		if rmForce {
			if err := app.Sync.DeleteNote(ctx, args[0]); err != nil {
				fatal("deleting note", err)
			}
			return
		}

		trashed := true
		now := time.Now().UTC()
		err = app.Notes.Update(ctx, args[0], notelink.NotePatch{Trashed: &trashed, TrashedAt: &now})
		if err != nil {
			fatal("trashing note", err)
		}
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <note-id>",
	Short: "Restore a note from the trash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		trashed := false
		err = app.Notes.Update(ctx, args[0], notelink.NotePatch{Trashed: &trashed, ClearTrashedAt: true})
		if err != nil {
			fatal("restoring note", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(restoreCmd)
	rmCmd.Flags().BoolVar(&rmForce, "force", false, "Delete permanently and prune label references")
}
