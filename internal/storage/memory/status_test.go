package memory

import (
	"context"
	"github.com/google/uuid"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	repo "github.com/ilindan-dev/slot-watcher/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestStatusStore(t *testing.T) {
	ctx := context.Background()
	s := NewStatusStore()

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	first := &model.CycleReport{ID: uuid.New(), Available: true}
	second := &model.CycleReport{ID: uuid.New()}
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.False(t, got.Available)

	got.Available = true
	again, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, again.Available, "callers get a copy")
}

func TestStatusStore_CopiesMaps(t *testing.T) {
	ctx := context.Background()
	s := NewStatusStore()
	report := &model.CycleReport{
		ID:     uuid.New(),
		Stores: map[model.StoreCode]int{"0885": 1},
		Failed: map[model.StoreCode]string{"0103": "timeout"},
	}
	require.NoError(t, s.Save(ctx, report))

	report.Stores["0885"] = 99
	delete(report.Failed, "0103")

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stores["0885"])
	assert.Equal(t, "timeout", got.Failed["0103"])

	got.Stores["0885"] = 42
	again, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Stores["0885"])
}
