package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var addBody string

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		app, err := newApp(ctx)
		if err != nil {
			fatal("initializing", err)
		}
		defer app.Close()

		id, err := app.Notes.Create(ctx, notelink.Note{
			Title:     strings.Join(args, " "),
			Body:      addBody,
			CreatedAt: time.Now().UTC(),
			LabelIDs:  notelink.NewIDSet(),
		})
		if err != nil {
			fatal("creating note", err)
		}
		fmt.Println(id)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addBody, "body", "", "Note body text")
}
