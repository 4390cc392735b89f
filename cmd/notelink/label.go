package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage labels",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a label",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		id, err := app.Labels.Create(ctx, notelink.Label{
			Name:    args[0],
			NoteIDs: notelink.NewIDSet(),
		})
		if err != nil {
			fatal("creating label", err)
		}
		fmt.Println(id)
	},
}

var labelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		stream, err := app.ObserveLabels(ctx)
		if err != nil {
			fatal("observing labels", err)
		}
		select {
		case labels := <-stream:
			for _, l := range labels {
				fmt.Printf("%s  %s  (%d notes)\n", l.ID, l.Name, l.NoteIDs.Len())
			}
		case <-ctx.Done():
		}
	},
}

var labelRenameCmd = &cobra.Command{
	Use:   "rename <label-id> <name>",
	Short: "Rename a label",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		name := args[1]
		if err := app.Labels.Update(ctx, args[0], notelink.LabelPatch{Name: &name}); err != nil {
			fatal("renaming label", err)
		}
	},
}

var labelRmCmd = &cobra.Command{
	Use:   "rm <label-id>",
	Short: "Delete a label, detaching it from every note first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		if err := app.Sync.DeleteLabel(ctx, args[0]); err != nil {
			fatal("deleting label", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
	labelCmd.AddCommand(labelAddCmd)
	labelCmd.AddCommand(labelListCmd)
	labelCmd.AddCommand(labelRenameCmd)
	labelCmd.AddCommand(labelRmCmd)
}
