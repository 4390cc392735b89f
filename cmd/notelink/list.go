package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var (
	listJSON    bool
	listTrashed bool
	filterLabel string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		notes := awaitNotes(ctx, app)

		var filtered []notelink.Note
		for _, n := range notes {
			if n.Trashed != listTrashed {
				continue
			}
			if filterLabel != "" && !n.LabelIDs.Has(filterLabel) {
				continue
			}
			filtered = append(filtered, n)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("encoding JSON", err)
			}
			return
		}
		for _, n := range filtered {
			fmt.Printf("%s  %s  [%s]\n", n.ID, n.Title, n.LabelIDs.Join(" "))
		}
	},
}

// awaitNotes blocks for the first published snapshot.
func awaitNotes(ctx context.Context, app *notelink.App) []notelink.Note {
	stream, err := app.ObserveNotes(ctx)
	if err != nil {
		fatal("observing notes", err)
	}
	select {
	case notes := <-stream:
		return notes
	case <-ctx.Done():
		return nil
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listTrashed, "trashed", false, "Show trashed notes instead of live ones")
	listCmd.Flags().StringVar(&filterLabel, "label", "", "Filter notes by label id")
}
