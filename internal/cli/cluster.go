package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkarpov/claimscope/internal/model"
)

var (
	clusterLookback  int
	clusterThreshold float64
	clusterTimeout   time.Duration
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Assign recent factual claims to event clusters",
	Long: `Run one incremental clustering pass over factual claims inside the
lookback window. Claims join the most similar active cluster above the
threshold or seed a new cluster. Re-running without new claims changes
nothing.`,
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().IntVar(&clusterLookback, "lookback-hours", 0, "claim window in hours (default: config)")
	clusterCmd.Flags().Float64Var(&clusterThreshold, "threshold", 0, "Jaccard similarity threshold (default: config)")
	clusterCmd.Flags().DurationVar(&clusterTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runCluster(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	lookback := clusterLookback
	if lookback == 0 {
		lookback = app.cfg.Cluster.LookbackHours
	}
	if lookback < 1 || lookback > model.MaxLookbackHours {
		return fmt.Errorf("--lookback-hours must be between 1 and %d", model.MaxLookbackHours)
	}
	threshold := clusterThreshold
	if threshold == 0 {
		threshold = app.cfg.Cluster.SimilarityThreshold
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("--threshold must be between 0 and 1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), clusterTimeout)
	defer cancel()

	result, err := app.clusters.BuildClusters(ctx, lookback, threshold)
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %d claims: %d assigned, %d new clusters\n",
		result.ClaimsScanned, result.ClaimsClustered, result.ClustersCreated)
	return nil
}
