package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottonscout/cotton-scraper/internal/models"
)

func testSnapshot(at time.Time) *models.Snapshot {
	return &models.Snapshot{
		ScrapedAt:     at,
		TotalProducts: 1,
		Products: []*models.Product{
			{
				ID:     "abc123def456",
				Name:   "Cotton Tee",
				URL:    "https://shop.example/p/tee",
				Source: "hm",
				Region: "UK",
			},
		},
	}
}

func TestFileStorageSaveAndLoad(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	name, err := fs.Save(context.Background(), testSnapshot(at))
	require.NoError(t, err)
	assert.Equal(t, "products_20250601_120000.json", name)

	loaded, err := fs.Load(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalProducts)
	require.Len(t, loaded.Products, 1)
	assert.Equal(t, "Cotton Tee", loaded.Products[0].Name)
	assert.True(t, loaded.ScrapedAt.Equal(at))
}

func TestFileStorageList(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Save(context.Background(), testSnapshot(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = fs.Save(context.Background(), testSnapshot(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	infos, err := fs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.NotZero(t, info.Size)
		assert.NotZero(t, info.ModifiedAt)
	}
}

func TestFileStorageLoadMissing(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Load(context.Background(), "products_19990101_000000.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStorageLoadRejectsTraversal(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Load(context.Background(), "../../etc/passwd")
	assert.True(t, errors.Is(err, ErrNotFound))
}
