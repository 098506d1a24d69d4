// Package snapshot publishes point-in-time JSON copies of the catalog to
// an object store.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"game-catalog/pkg/models"
)

// Prefix is where snapshots live in the bucket
const Prefix = "snapshots/"

const nameLayout = "20060102T150405Z"

// Publisher writes, lists and prunes snapshots
type Publisher struct {
	bucket Bucket
	now    func() time.Time
	logger *slog.Logger
}

// NewPublisher creates a publisher. A nil now uses time.Now.
func NewPublisher(bucket Bucket, now func() time.Time, logger *slog.Logger) *Publisher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bucket: bucket, now: now, logger: logger}
}

// Name returns the object name of a snapshot taken at t
func Name(t time.Time) string {
	return Prefix + "catalog-" + t.UTC().Format(nameLayout) + ".json"
}

// Publish stores games as a new snapshot and returns its name
func (p *Publisher) Publish(ctx context.Context, games []models.Game) (string, error) {
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	name := Name(p.now())
	if err := p.bucket.Write(ctx, name, data, "application/json"); err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}
	p.logger.Info("published snapshot", "name", name, "games", len(games), "bytes", len(data))
	return name, nil
}

// List returns the snapshots, newest first
func (p *Publisher) List(ctx context.Context) ([]Object, error) {
	objects, err := p.bucket.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	snapshots := make([]Object, 0, len(objects))
	for _, o := range objects {
		if strings.HasSuffix(o.Name, ".json") {
			snapshots = append(snapshots, o)
		}
	}
	// names embed the timestamp, so they sort chronologically
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Name > snapshots[j].Name })
	return snapshots, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were deleted
func (p *Publisher) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	snapshots, err := p.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, o := range snapshots[keep:] {
		if err := p.bucket.Delete(ctx, o.Name); err != nil {
			return deleted, fmt.Errorf("prune snapshots: %w", err)
		}
		deleted++
		p.logger.Debug("deleted snapshot", "name", o.Name)
	}
	p.logger.Info("pruned snapshots", "deleted", deleted, "kept", keep)
	return deleted, nil
}
