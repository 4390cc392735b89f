package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var (
	attachAdd    []string
	attachRemove []string
	attachNew    string
)

var attachCmd = &cobra.Command{
	Use:   "attach <note-id>...",
	Short: "Apply a label selection to one or more notes",
	Long: `Attach and detach labels on the given notes in one pass. Both sides of
the relationship are updated: the notes' label lists and the labels' note
lists. --new creates the label first, so no note ever references a label id
that does not exist.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		err = app.Sync.AttachLabelsToNotes(ctx,
			notelink.NewIDSet(args...),
			notelink.NewIDSet(attachAdd...),
			notelink.NewIDSet(attachRemove...),
			attachNew)
		if err != nil {
			fatal("attaching labels", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
	attachCmd.Flags().StringSliceVar(&attachAdd, "add", nil, "Label ids to attach")
	attachCmd.Flags().StringSliceVar(&attachRemove, "remove", nil, "Label ids to detach")
	attachCmd.Flags().StringVar(&attachNew, "new", "", "Create a label with this name and attach it")
}
