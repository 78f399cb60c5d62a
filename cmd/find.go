package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gridfetch/internal/downloader"
	"gridfetch/internal/models"
	"gridfetch/pkg/utils"
)

var findCmd = &cobra.Command{
	Use:   "find [base pattern]",
	Short: "Resolve glob searches against the grid catalog",
	Long: `Resolve the configured glob search entries (or a single base/pattern
pair given as arguments) against the grid file catalog and print the
matched remote paths without downloading anything.`,
	Example: `  # Resolve the glob entries from the configuration
  gridfetch find --config grid.json

  # Resolve an ad-hoc search
  gridfetch find --config grid.json /alice/data/2023 "*.root"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts no args or a base/pattern pair, received %d args", len(args))
		}
		return nil
	},
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig(cmd)
	if err != nil {
		utils.PrintError(err, "find")
		return err
	}
	if len(args) == 2 {
		cfg.RemoteGlobs = []models.GlobSpec{{Base: args[0], Pattern: args[1]}}
	}

	d, err := downloader.New(cfg)
	if err != nil {
		utils.PrintError(err, "find")
		return err
	}

	files, err := d.FindFiles(cmd.Context())
	if err != nil {
		utils.PrintError(err, "find")
		return err
	}

	result := models.FindResult{
		Globs:         cfg.RemoteGlobs,
		Files:         files,
		Count:         len(files),
		OperationTime: utils.FormatTime(start),
	}
	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "find")
		return err
	}
	return nil
}
