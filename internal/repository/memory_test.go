package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStagingRepository(t *testing.T) {
	repo := NewMemoryStagingRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetDeparture", func(t *testing.T) {
		dep := sampleDeparture()
		require.NoError(t, repo.SetDeparture(ctx, "s1", dep))

		got, err := repo.GetDeparture(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, dep.VehicleID, got.VehicleID)
	})

	t.Run("SingleSlotLastWriteWins", func(t *testing.T) {
		first := sampleDeparture()
		second := sampleDeparture()
		second.StartMeter = 777

		require.NoError(t, repo.SetDeparture(ctx, "s2", first))
		require.NoError(t, repo.SetDeparture(ctx, "s2", second))

		got, err := repo.GetDeparture(ctx, "s2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(777), got.StartMeter)
	})

	t.Run("ClearDeparture", func(t *testing.T) {
		require.NoError(t, repo.SetDeparture(ctx, "s3", sampleDeparture()))
		require.NoError(t, repo.ClearDeparture(ctx, "s3"))

		got, err := repo.GetDeparture(ctx, "s3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("MissingSessionReturnsNil", func(t *testing.T) {
		got, err := repo.GetDeparture(ctx, "never-seen")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ExpiredSlotIsDropped", func(t *testing.T) {
		short := NewMemoryStagingRepository(-time.Second)
		require.NoError(t, short.SetDeparture(ctx, "s4", sampleDeparture()))

		got, err := short.GetDeparture(ctx, "s4")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
