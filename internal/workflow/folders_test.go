package workflow

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/models"
)

func TestDeriveAddressSlug(t *testing.T) {
	tests := []struct {
		name                 string
		address, city, state string
		want                 string
	}{
		{"simple", "123 Main St.", "Austin", "TX", "123-Main-St-Austin-TX"},
		{"punctuation and spacing", "  45  Oak  Ave #2 ", "San Antonio", "TX", "45-Oak-Ave-2-San-Antonio-TX"},
		{"dash runs collapse", "--1 Elm--", "", "", "1-Elm"},
		{"unicode dropped", "9 Rue Céleste", "Montréal", "QC", "9-Rue-Cleste-Montral-QC"},
		{"long address truncated", strings.Repeat("a", 150), "X", "Y", strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &models.Shoot{Address: tt.address, City: tt.city, State: tt.state}
			assert.Equal(t, tt.want, DeriveAddressSlug(s))
		})
	}
}

func TestResolveServiceCategories(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		service  string
		want     models.ServiceCategory
	}{
		{"explicit wins", "iGuide", "Standard Photos", models.CategoryIGuide},
		{"iguide in name", "", "iGuide 3D Tour", models.CategoryIGuide},
		{"video in name", "", "Drone VIDEO Package", models.CategoryVideo},
		{"default photo", "", "Standard Photos", models.CategoryPhoto},
		{"unknown explicit falls back", "Floorplan", "Standard Photos", models.CategoryPhoto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &models.Shoot{ServiceName: tt.service, ServiceCategory: models.NullString(tt.explicit)}
			assert.Equal(t, []models.ServiceCategory{tt.want}, ResolveServiceCategories(s))
		})
	}
}

func TestFolderPath(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")

	todo, err := f.folders.FolderPath(s, models.FolderTodo, models.CategoryPhoto)
	require.NoError(t, err)
	assert.Equal(t, "/RealEstatePhotos/ToDo/2025-01-18/P-123-Main-St-Austin-TX", todo)

	done, err := f.folders.FolderPath(s, models.FolderCompleted, models.CategoryVideo)
	require.NoError(t, err)
	assert.Equal(t, "/RealEstatePhotos/Completed/2025-01-18/Video-123-Main-St-Austin-TX", done)

	s.ScheduledDate = sql.NullTime{}
	_, err = f.folders.FolderPath(s, models.FolderTodo, models.CategoryPhoto)
	assert.Error(t, err)
}

func TestEnsureShootFoldersIsIdempotent(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")
	ctx := context.Background()

	first, err := f.folders.EnsureShootFolders(ctx, f.store, s)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 2, f.blobs.Count("create_folder"))

	second, err := f.folders.EnsureShootFolders(ctx, f.store, s)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
	assert.Equal(t, 2, f.blobs.Count("create_folder"), "existing mappings need no blob call")

	all, err := f.store.ListFolders(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEnsureShootFoldersTreatsExistingRemoteFolderAsSuccess(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "iGuide Tour")
	f.blobs.Folders["/RealEstatePhotos/ToDo/2025-01-18/iGuide-123-Main-St-Austin-TX"] = true

	mappings, err := f.folders.EnsureShootFolders(context.Background(), f.store, s)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	for _, m := range mappings {
		assert.Equal(t, models.CategoryIGuide, m.ServiceCategory)
	}
}

func TestEnsureShootFoldersContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")
	f.blobs.Fail["create_folder /RealEstatePhotos/ToDo"] = &blobstore.Error{Provider: "fake", Op: "create_folder", Kind: blobstore.KindTransient}

	mappings, err := f.folders.EnsureShootFolders(context.Background(), f.store, s)
	require.Error(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, models.FolderCompleted, mappings[0].FolderType)

	var fre *FolderResolutionError
	require.True(t, errors.As(err, &fre))
	assert.Equal(t, models.FolderTodo, fre.FolderType)
	assert.True(t, blobstore.Temporary(err))
}

func TestEnsureShootFoldersWithoutDate(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos", func(s *models.Shoot) {
		s.ScheduledDate = sql.NullTime{}
	})

	_, err := f.folders.EnsureShootFolders(context.Background(), f.store, s)
	var fre *FolderResolutionError
	require.True(t, errors.As(err, &fre))
	assert.Zero(t, f.blobs.Count("create_folder"))
}

func TestResolveFolderProvisionsOnDemand(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")

	m, err := f.folders.ResolveFolder(context.Background(), f.store, s, models.FolderCompleted, models.CategoryVideo)
	require.NoError(t, err)
	assert.Equal(t, "/RealEstatePhotos/Completed/2025-01-18/Video-123-Main-St-Austin-TX", m.RemotePath)

	again, err := f.folders.ResolveFolder(context.Background(), f.store, s, models.FolderCompleted, models.CategoryVideo)
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
	assert.Equal(t, 1, f.blobs.Count("create_folder"))
}
