package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cyp0633/libgcal/gcal"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Batch import and delete events",
	}
	cmd.PersistentFlags().String("feed", "", "events feed path (default: the private feed)")
	cmd.AddCommand(newEventsImportCmd(), newEventsDeleteCmd())
	return cmd
}

func newEventsImportCmd() *cobra.Command {
	var zone string
	cmd := &cobra.Command{
		Use:   "import FILE.ics",
		Short: "Insert every event of an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(zone)
			if err != nil {
				return fmt.Errorf("invalid time zone %q: %w", zone, err)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			events, err := gcal.ReadICal(f, loc)
			if err != nil {
				return err
			}
			requests := make([]*gcal.Request, len(events))
			for i, e := range events {
				requests[i] = gcal.NewRequest(gcal.OpInsert, e)
			}
			return runBatch(cmd, requests)
		},
	}
	cmd.Flags().StringVar(&zone, "zone", "Local", "time zone for floating and all-day times")
	return cmd
}

func newEventsDeleteCmd() *cobra.Command {
	var ids []string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete events by remote id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requests := make([]*gcal.Request, len(ids))
			for i, id := range ids {
				requests[i] = gcal.NewRequest(gcal.OpDelete, &gcal.Event{ID: id})
			}
			return runBatch(cmd, requests)
		},
	}
	cmd.Flags().StringSliceVar(&ids, "id", nil, "event id (repeatable)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func runBatch(cmd *cobra.Command, requests []*gcal.Request) error {
	feed, err := cmd.Flags().GetString("feed")
	if err != nil {
		return err
	}
	session, err := openSession()
	if err != nil {
		return err
	}
	results, err := session.BatchRequest(cmd.Context(), requests, feed)
	if err != nil {
		return err
	}
	if failed := printResults(cmd.OutOrStdout(), results); failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}

// printResults writes one line per request and returns the failure count
func printResults(w io.Writer, results []*gcal.Request) int {
	failed := 0
	for _, req := range results {
		verdict := "ok"
		if !req.Result.Pass {
			verdict = "FAILED"
			failed++
		}
		fmt.Fprintf(w, "%-6s %-6s %d %q %s\n", verdict, req.Operation, req.Result.Status, req.Event.Title, req.Event.ID)
	}
	return failed
}
