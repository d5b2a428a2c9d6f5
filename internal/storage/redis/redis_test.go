package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cabino/pkg/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) GetJSON(_ context.Context, key string, v any) error {
	data, ok := m.data[key]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (m *memoryStore) SetJSON(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = data
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryStore()
	s := New(mem)

	state, err := s.GetUserDialogState(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, &UserState{}, state)

	length, material := 4.5, "mdf"
	require.NoError(t, s.SetUserDialogState(ctx, 10, &UserState{
		Step:  "material",
		Draft: &Draft{Length: &length, Material: &material},
	}))
	assert.Equal(t, stateTTL, mem.ttls["state:10"])

	state, err = s.GetUserDialogState(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "material", state.Step)
	require.NotNil(t, state.Draft)
	assert.Equal(t, 4.5, *state.Draft.Length)
	assert.False(t, state.Draft.Complete())

	require.NoError(t, s.DropUserDialogState(ctx, 10))
	state, err = s.GetUserDialogState(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, state.Step)
}
