package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"gridfetch/internal/downloader"
	"gridfetch/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the configured remote files from the grid",
	Long: `Download every remote file named in the configuration, plus the matches
of the configured glob searches, into the local output directory.

Files already present locally are skipped. The run never aborts on a
partial failure; the result reports per-file outcomes and a final
succeeded/total count.`,
	Example: `  # Download everything listed in the configuration
  gridfetch download --config grid.json

  # Verbose run with a YAML configuration
  gridfetch download --config grid.yaml --verbose

  # Zip the output directory after the run
  gridfetch download --config grid.json --archive run.zip`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	if isVerbose(cmd) {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		utils.PrintError(err, "download")
		return err
	}

	d, err := downloader.New(cfg)
	if err != nil {
		utils.PrintError(err, "download")
		return err
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Backend: %s\n", cfg.Backend)
		cmd.Printf("  Output directory: %s\n", cfg.OutputDir)
	}

	result, err := d.Download(cmd.Context())
	if err != nil {
		utils.PrintError(err, "download")
		return err
	}

	if archivePath, _ := cmd.Flags().GetString("archive"); archivePath != "" {
		info, err := utils.CreateArchive([]string{cfg.OutputDir}, archivePath)
		if err != nil {
			utils.PrintError(err, "download")
			return err
		}
		result.Archive = info
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "download")
		return err
	}

	if isVerbose(cmd) {
		cmd.Printf("Download operation completed: %d/%d files\n", result.Succeeded, result.TotalFiles)
	}
	return nil
}

func init() {
	downloadCmd.Flags().String("archive", "", "Zip the output directory into the given archive after the run")
}
