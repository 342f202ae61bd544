// Package storage persists run snapshots. Two backends implement the Storage
// contract: JSON files on disk and a Postgres table with a JSONB payload.
package storage

import (
	"context"
	"errors"

	"github.com/cottonscout/cotton-scraper/internal/models"
)

// ErrNotFound is returned by Load when no snapshot exists under the given
// name.
var ErrNotFound = errors.New("snapshot not found")

// Storage persists and retrieves snapshots. Save returns the name under
// which the snapshot was stored; List returns newest first.
type Storage interface {
	Save(ctx context.Context, snap *models.Snapshot) (string, error)
	List(ctx context.Context) ([]models.SnapshotInfo, error)
	Load(ctx context.Context, name string) (*models.Snapshot, error)
}
