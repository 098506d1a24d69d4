package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"game-catalog/pkg/detail"
	"game-catalog/pkg/favorites"
	"game-catalog/pkg/services"
)

// newShowGameCmd creates a new command for showing one game
func newShowGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-game [id]",
		Short: "Show details of a specific game",
		Long:  `Show how a game is offered: embedded, as a download or on an external site.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			id := args[0]
			game, err := services.GetGame(cmd.Context(), id)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), detail.LoadErrorMessage)
				return fmt.Errorf("show game %s: %w", id, err)
			}
			view := detail.Render(*game, cfg.APIURL, cfg.SiteURL())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Game: %s\n", game.Title.Localize())
			fmt.Fprintf(out, "ID: %s\n", game.ID)
			fmt.Fprintf(out, "Category: %s\n", game.Category)
			fmt.Fprintf(out, "Developer: %s\n", game.Developer.Name)
			if len(game.Tags) > 0 {
				fmt.Fprintf(out, "Tags: %s\n", strings.Join(game.Tags, ", "))
			}
			if game.DateAdded != "" {
				fmt.Fprintf(out, "Added: %s\n", game.DateAdded)
			}
			if favorites.New(stateStore(cfg)).IsFavorite(game.ID) {
				fmt.Fprintln(out, "Favorite: yes")
			}
			fmt.Fprintln(out)

			switch view.Mode {
			case detail.ModeEmbed:
				fmt.Fprintln(out, "Play in browser")
				if view.AspectRatio != "" {
					fmt.Fprintf(out, "  Aspect ratio: %s\n", view.AspectRatio)
				}
				if view.AllowFullscreen {
					fmt.Fprintln(out, "  Fullscreen allowed")
				}
			default:
				fmt.Fprintln(out, view.CardTitle)
				if view.SizeText != "" {
					fmt.Fprintf(out, "  %s\n", view.SizeText)
				}
				if len(game.Platform) > 0 {
					fmt.Fprintf(out, "  Platforms: %s\n", strings.Join(game.Platform, ", "))
				}
			}
			fmt.Fprintf(out, "  URL: %s\n", view.URL)
			if !view.Validated {
				fmt.Fprintln(out, "  (URL failed validation)")
			}
			return nil
		},
	}
}
