package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/mindcity/internal/config"
	"github.com/lazypower/mindcity/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Build the graph once and print the city layout frame",
	RunE:  runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lc, err := layoutConfig(cfg)
	if err != nil {
		return err
	}

	_, snap, docs, err := buildOnce(cfg)
	if err != nil {
		return err
	}
	lc.Recent = recentDocs(docs, 3)

	frame := layout.Project(snap, lc)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(frame)
}
