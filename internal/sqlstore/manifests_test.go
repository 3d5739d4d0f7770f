package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planner/internal/database"
	"route-planner/internal/models"
)

func testRows() []models.ManifestRow {
	return []models.ManifestRow{
		{CustName: "Ana Lopez", JobID: "100-A", Leg: models.LegPickup, PUAddr: "1 Oak St", PickZip: "91801", AptTime: "8:30 AM"},
		{CustName: "Ana Lopez", JobID: "100-B", Leg: models.LegDropoff, DOAddr: "1 Oak St", DropZip: "91801", SchPU: "2:30 PM"},
		{CustName: "Ben Kim", JobID: "101-A", Leg: models.LegPickup, PUAddr: "2 Elm St", PickZip: "91754", NTotalPassengers: 2},
	}
}

func TestManifestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Manifests().Create(ctx, &models.ManifestMeta{
		FileName:        "monday.csv",
		JobDate:         "2026-03-02",
		TotalPassengers: 2,
		SizeBytes:       512,
	}, testRows())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.ManifestReady, created.Status)
	assert.Equal(t, 3, created.TotalRows)
	assert.False(t, created.UploadedAt.IsZero())

	got, err := store.Manifests().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "monday.csv", got.FileName)
	assert.Equal(t, "2026-03-02", got.JobDate)
	assert.Equal(t, 2, got.TotalPassengers)
	assert.Equal(t, int64(512), got.SizeBytes)
	assert.Equal(t, models.ManifestReady, got.Status)
	assert.True(t, created.UploadedAt.Equal(got.UploadedAt))
}

func TestManifestGetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Manifests().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = store.Manifests().GetRows(context.Background(), "missing", "")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestManifestGetRowsKeepsOrderAndFiltersByLeg(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Manifests().Create(ctx, &models.ManifestMeta{FileName: "m.csv"}, testRows())
	require.NoError(t, err)

	all, err := store.Manifests().GetRows(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, testRows(), all)

	pickups, err := store.Manifests().GetRows(ctx, created.ID, models.LegPickup)
	require.NoError(t, err)
	require.Len(t, pickups, 2)
	assert.Equal(t, "100-A", pickups[0].JobID)
	assert.Equal(t, "101-A", pickups[1].JobID)
	assert.Equal(t, 2, pickups[1].NTotalPassengers)

	dropoffs, err := store.Manifests().GetRows(ctx, created.ID, models.LegDropoff)
	require.NoError(t, err)
	require.Len(t, dropoffs, 1)
	assert.Equal(t, "2:30 PM", dropoffs[0].SchPU)
}

func TestManifestEmptyRows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Manifests().Create(ctx, &models.ManifestMeta{FileName: "empty.csv"}, nil)
	require.NoError(t, err)

	rows, err := store.Manifests().GetRows(ctx, created.ID, "")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestManifestListNewestFirstAndLatest(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Manifests().Latest(ctx)
	assert.ErrorIs(t, err, database.ErrNotFound)

	list, err := store.Manifests().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"mon.csv", "wed.csv", "tue.csv"} {
		offset := []time.Duration{0, 48 * time.Hour, 24 * time.Hour}[i]
		_, err := store.Manifests().Create(ctx, &models.ManifestMeta{FileName: name, UploadedAt: base.Add(offset)}, testRows())
		require.NoError(t, err)
	}

	list, err = store.Manifests().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "wed.csv", list[0].FileName)
	assert.Equal(t, "tue.csv", list[1].FileName)
	assert.Equal(t, "mon.csv", list[2].FileName)

	latest, err := store.Manifests().Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wed.csv", latest.FileName)
}

func TestManifestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Manifests().Create(ctx, &models.ManifestMeta{FileName: "m.csv"}, testRows())
	require.NoError(t, err)

	require.NoError(t, store.Manifests().Delete(ctx, created.ID))

	_, err = store.Manifests().Get(ctx, created.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	var remaining int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM manifest_rows`).Scan(&remaining))
	assert.Equal(t, 0, remaining)

	assert.ErrorIs(t, store.Manifests().Delete(ctx, created.ID), database.ErrNotFound)
}

func TestManifestCreateKeepsExplicitID(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.Manifests().Create(context.Background(), &models.ManifestMeta{ID: "fixed-id", FileName: "m.csv"}, testRows())
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", created.ID)

	_, err = store.Manifests().Create(context.Background(), &models.ManifestMeta{ID: "fixed-id", FileName: "again.csv"}, testRows())
	assert.Error(t, err)
}
