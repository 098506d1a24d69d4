package cmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"game-catalog/pkg/services"
	"game-catalog/pkg/snapshot"
)

// newSnapshotCmd groups the catalog snapshot commands
func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Publish catalog snapshots to Cloud Storage",
		Long: `Write the published catalog as a JSON snapshot to the BUCKET_NAME bucket,
list the stored snapshots, or prune old ones.`,
	}
	cmd.AddCommand(newSnapshotPublishCmd(), newSnapshotListCmd(), newSnapshotPruneCmd())
	return cmd
}

// withPublisher opens the bucket and runs fn with a publisher over it
func withPublisher(ctx context.Context, fn func(*snapshot.Publisher) error) error {
	cfg, _, err := setup()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.RequireBucket(); err != nil {
		return err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	return fn(snapshot.NewPublisher(snapshot.NewGCSBucket(client, cfg.BucketName), nil, nil))
}

func newSnapshotPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish a snapshot of the current catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPublisher(cmd.Context(), func(p *snapshot.Publisher) error {
				games, err := services.GetGames(cmd.Context())
				if err != nil {
					return fmt.Errorf("snapshot: %w", err)
				}
				name, err := p.Publish(cmd.Context(), services.SortedByTitle(games))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%d games)\n", name, len(games))
				return nil
			})
		},
	}
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPublisher(cmd.Context(), func(p *snapshot.Publisher) error {
				objects, err := p.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(objects) == 0 {
					fmt.Fprintln(out, "No snapshots stored.")
					return nil
				}
				for _, o := range objects {
					fmt.Fprintf(out, "%s  %10s  %s\n", o.Updated.Format(time.RFC3339), formatSize(o.Size), o.Name)
				}
				fmt.Fprintf(out, "\nTotal: %d snapshots\n", len(objects))
				return nil
			})
		},
	}
}

func newSnapshotPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPublisher(cmd.Context(), func(p *snapshot.Publisher) error {
				deleted, err := p.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d snapshots, kept up to %d\n", deleted, keep)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 10, "Number of snapshots to keep")
	return cmd
}
