package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"game-catalog/pkg/models"
	"game-catalog/pkg/services"
)

// newExportCmd creates a new command for exporting catalog data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export catalog data",
		Long:  `Export all published games in the specified format. Supported formats: json, yaml.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			games, err := services.GetGames(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return exportData(cmd.OutOrStdout(), format, games)
		},
	}
}

// exportData writes games sorted by title in the specified format
func exportData(w io.Writer, format string, games []models.Game) error {
	// Sort games by title for consistent output
	games = services.SortedByTitle(games)

	switch format {
	case "json":
		data, err := json.MarshalIndent(games, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling data: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(games); err != nil {
			return fmt.Errorf("error marshaling data: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format: %s (supported formats: json, yaml)", format)
	}
}
