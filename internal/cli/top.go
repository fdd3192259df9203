package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/mindcity/internal/config"
	"github.com/lazypower/mindcity/internal/decay"
)

var topCount int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the highest-scoring key nodes",
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topCount, "count", "n", 20, "number of nodes to show")
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	g, snap, _, err := buildOnce(cfg)
	if err != nil {
		return err
	}

	for i, kn := range g.KeyNodes(topCount) {
		node := snap.Node(kn.ID)
		bucket := ""
		if node != nil {
			bucket = decay.Bucket(node.DisplayWeight)
		}
		fmt.Printf("%3d. %-12s %-40s score=%.1f %s\n", i+1, kn.Type, kn.Label, kn.Score, bucket)
	}
	return nil
}
