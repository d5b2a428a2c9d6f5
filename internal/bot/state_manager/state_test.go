package state_manager

import (
	"context"
	"testing"

	"cabino/internal/storage/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	states map[int64]redis.UserState
}

func (m *memoryStorage) GetUserDialogState(_ context.Context, chatID int64) (*redis.UserState, error) {
	s := m.states[chatID]
	return &s, nil
}

func (m *memoryStorage) SetUserDialogState(_ context.Context, chatID int64, state *redis.UserState) error {
	m.states[chatID] = *state
	return nil
}

func (m *memoryStorage) DropUserDialogState(_ context.Context, chatID int64) error {
	delete(m.states, chatID)
	return nil
}

func TestUserDialogStateManager_EstimateForm(t *testing.T) {
	ctx := context.Background()
	mem := &memoryStorage{states: map[int64]redis.UserState{}}
	m := New(mem)

	require.NoError(t, m.StartEstimate(ctx, 1))
	require.NoError(t, m.SetDimensions(ctx, 1, 4, 3, 2.8))
	require.NoError(t, m.SetCabinetType(ctx, 1, "modern"))

	state, err := m.GetUserDialogState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StepDimensions, state.Step)
	assert.False(t, state.Draft.Complete())

	require.NoError(t, m.SetMaterial(ctx, 1, "mdf"))
	require.NoError(t, m.SetTotalPrice(ctx, 1, 372_384_000))

	state, err = m.GetUserDialogState(ctx, 1)
	require.NoError(t, err)
	require.True(t, state.Draft.Complete())
	assert.Equal(t, 2.8, *state.Draft.Height)
	assert.Equal(t, "modern", *state.Draft.CabinetType)
	assert.Equal(t, int64(372_384_000), *state.Draft.TotalPrice)
}

func TestUserDialogStateManager_ChangingFormClearsPrice(t *testing.T) {
	ctx := context.Background()
	m := New(&memoryStorage{states: map[int64]redis.UserState{}})

	require.NoError(t, m.SetTotalPrice(ctx, 1, 100))
	require.NoError(t, m.SetMaterial(ctx, 1, "solid_wood"))

	state, err := m.GetUserDialogState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state.Draft.TotalPrice)
}

func TestUserDialogStateManager_ResetKeepsUserData(t *testing.T) {
	ctx := context.Background()
	mem := &memoryStorage{states: map[int64]redis.UserState{}}
	m := New(mem)

	require.NoError(t, m.SetPhoneNumber(ctx, 5, "+989121234567"))
	require.NoError(t, m.SetUsername(ctx, 5, "sara"))
	require.NoError(t, m.SetDimensions(ctx, 5, 4, 3, 2.8))
	require.NoError(t, m.ResetDialogState(ctx, 5))

	state, err := m.GetUserDialogState(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, StepMainMenu, state.Step)
	assert.Nil(t, state.Draft)
	require.NotNil(t, state.Userdata)
	assert.Equal(t, "+989121234567", *state.Userdata.PhoneNumber)
	assert.Equal(t, "sara", *state.Userdata.Username)

	require.NoError(t, m.ClearState(ctx, 5))
	assert.Empty(t, mem.states)
}
