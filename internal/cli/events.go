package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	eventsLimit   int
	eventsAsJSON  bool
	eventsTimeout time.Duration
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the latest summarized event cards",
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 10, "maximum number of events")
	eventsCmd.Flags().BoolVar(&eventsAsJSON, "json", false, "emit JSON instead of text")
	eventsCmd.Flags().DurationVar(&eventsTimeout, "timeout", time.Minute, "overall timeout")
}

func runEvents(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), eventsTimeout)
	defer cancel()

	events, err := app.summaries.LatestEvents(ctx, eventsLimit)
	if err != nil {
		return err
	}

	if eventsAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		fmt.Println("No summarized events yet. Run: claimscope ingest && claimscope cluster && claimscope summarize")
		return nil
	}

	for _, ev := range events {
		fmt.Printf("%s  (confidence %.3f)\n", ev.ClusterTitle, ev.ConfidenceScore)
		for _, fact := range ev.AgreedFacts {
			fmt.Printf("  + %s\n", fact)
		}
		for _, dispute := range ev.DisputedClaims {
			fmt.Printf("  ! %s\n", dispute)
		}
		for _, unknown := range ev.Unknowns {
			fmt.Printf("  ? %s\n", unknown)
		}
		fmt.Printf("  %s\n", ev.ConfidenceRationale)
		for _, link := range ev.SourceLinks {
			fmt.Printf("  - %s\n", link)
		}
		fmt.Println()
	}
	return nil
}
