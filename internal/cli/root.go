package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mindcity",
	Short: "A living city built from agent memory files",
	Long: "mindcity watches a workspace of Markdown memory files, maintains a\n" +
		"decaying knowledge graph from their contents, and projects it into a\n" +
		"deterministic city layout.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(topCmd)
}
