package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"game-catalog/pkg/catalog"
	"game-catalog/pkg/services"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all game categories",
		Long:  `List all game categories with the number of published games in each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := setup(); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return listCategories(cmd)
		},
	}
}

// listCategories displays all categories and their game counts
func listCategories(cmd *cobra.Command) error {
	games, err := services.GetGames(cmd.Context())
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	counts := make(map[string]int)
	for _, g := range games {
		counts[g.Category]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Game Categories:")
	fmt.Fprintln(out, "================")

	total := 0
	for _, category := range catalog.Categories(games) {
		if category.Value == catalog.CategoryAll || category.Value == catalog.CategoryFavorites {
			continue
		}
		total++
		fmt.Fprintf(out, "%s\n", category.Label)
		fmt.Fprintf(out, "  Games: %d\n", counts[category.Value])
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Total: %d categories\n", total)
	return nil
}
