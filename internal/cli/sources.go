package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tkarpov/claimscope/internal/ingest"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured feed sources",
	Run: func(cmd *cobra.Command, args []string) {
		keys := make([]string, 0, len(ingest.Registry))
		for key := range ingest.Registry {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			src := ingest.Registry[key]
			fmt.Printf("%-24s %-10s %s\n", src.Key, src.SourceType, src.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
