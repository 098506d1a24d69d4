package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"game-catalog/pkg/favorites"
)

// newFavoriteCmd creates a command that toggles or lists favorites
func newFavoriteCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "favorite [id]",
		Short: "Toggle a favorite game",
		Long: `Toggle a game in the local favorites list. Without an id the current
favorites are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			store := favorites.New(stateStore(cfg))
			out := cmd.OutOrStdout()

			switch {
			case clearAll:
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Favorites cleared")
			case len(args) == 0:
				ids := store.List()
				if len(ids) == 0 {
					fmt.Fprintln(out, "No favorites yet")
					return nil
				}
				fmt.Fprintln(out, strings.Join(ids, "\n"))
			default:
				on, err := store.Toggle(args[0])
				if err != nil {
					return err
				}
				if on {
					fmt.Fprintf(out, "Added %s to favorites\n", args[0])
				} else {
					fmt.Fprintf(out, "Removed %s from favorites\n", args[0])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove every favorite")
	return cmd
}
