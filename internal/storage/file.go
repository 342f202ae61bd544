package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cottonscout/cotton-scraper/internal/models"
)

const snapshotPrefix = "products_"

// FileStorage writes one JSON file per snapshot under a data directory.
// Writes go through a temp file and rename so a crash never leaves a
// truncated snapshot behind.
type FileStorage struct {
	mu  sync.Mutex
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// SnapshotName derives the file name from the snapshot timestamp, e.g.
// products_20250601_120000.json.
func SnapshotName(snap *models.Snapshot) string {
	return snapshotPrefix + snap.ScrapedAt.UTC().Format("20060102_150405") + ".json"
}

func (fs *FileStorage) Save(ctx context.Context, snap *models.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	name := SnapshotName(snap)
	path := filepath.Join(fs.dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize snapshot: %w", err)
	}
	return name, nil
}

func (fs *FileStorage) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var infos []models.SnapshotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, models.SnapshotInfo{
			Name:       name,
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

func (fs *FileStorage) Load(ctx context.Context, name string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Reject path traversal; snapshot names are bare file names.
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &snap, nil
}
