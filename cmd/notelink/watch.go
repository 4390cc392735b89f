package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	lcadapter "github.com/aretw0/notelink/pkg/adapters/lifecycle"
	"github.com/aretw0/notelink/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live note snapshots until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		stream, err := app.ObserveNotes(ctx)
		if err != nil {
			fatal("observing notes", err)
		}

		src := lcadapter.NewSource(stream)
		if err := src.Start(ctx); err != nil {
			fatal("starting watch", err)
		}

		for e := range src.Events() {
			snap, ok := e.(*lcadapter.Snapshot[core.Note])
			if !ok {
				continue
			}
			fmt.Printf("--- %d notes\n", len(snap.Items))
			for _, n := range snap.Items {
				marker := " "
				if n.Trashed {
					marker = "T"
				}
				fmt.Printf("%s %s  %s  [%s]\n", marker, n.ID, n.Title, n.LabelIDs.Join(" "))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
