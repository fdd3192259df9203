package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/mindcity/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the graph once and print the snapshot frame",
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	_, snap, _, err := buildOnce(cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
