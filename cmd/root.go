package cmd

import (
	"github.com/spf13/cobra"

	"gridfetch/config"
)

var rootCmd = &cobra.Command{
	Use:   "gridfetch",
	Short: "Bulk downloader for grid-hosted files",
	Long: `Gridfetch downloads files from a distributed storage grid into a local
directory tree, using either a per-file parallel backend or one batched
client call. Runs are driven by a JSON or YAML configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(findCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the JSON or YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.MarkPersistentFlagRequired("config")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
