package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"game-catalog/pkg/catalog"
	"game-catalog/pkg/favorites"
	"game-catalog/pkg/handlers"
	"game-catalog/pkg/render"
	"game-catalog/pkg/services"
)

// newListGamesCmd creates a new command for listing games
func newListGamesCmd() *cobra.Command {
	var (
		category     string
		search       string
		onlyFavorite bool
	)

	cmd := &cobra.Command{
		Use:   "list-games",
		Short: "List published games",
		Long:  `List published games, optionally filtered by category, search text or favorites.`,
		Example: `  game-catalog list-games --category puzzle
  game-catalog list-games --search cool --favorites`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if onlyFavorite {
				category = catalog.CategoryFavorites
			}

			games, err := services.GetGames(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), handlers.LoadGamesError)
				return fmt.Errorf("list games: %w", err)
			}

			state := catalog.NewState(games)
			state.SetCategory(category)
			state.SetSearch(search)

			favs := favorites.New(stateStore(cfg)).Set()
			view := state.FilteredView(favs)

			out := cmd.OutOrStdout()
			if len(view) == 0 {
				fmt.Fprintln(out, "No games found")
				return nil
			}

			now := time.Now()
			for _, g := range view {
				marks := ""
				if favs[g.ID] {
					marks += " ♥"
				}
				if added, ok := g.AddedAt(); ok && now.Sub(added) < render.NewBadgeWindow {
					marks += " [NEW]"
				}
				if g.IsSelfHosted() {
					marks += " [HOSTED]"
				}
				fmt.Fprintf(out, "%-24s %s (%s)%s\n", g.ID, g.Title.Localize(), g.Category, marks)
			}
			fmt.Fprintf(out, "\nTotal: %d games\n", len(view))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list games in this category")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only list games whose title or tags match")
	cmd.Flags().BoolVarP(&onlyFavorite, "favorites", "f", false, "Only list favorited games")

	return cmd
}
