package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/pkg/domain"
)

func TestStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, err := NewStore(ctx, Options{Addr: mr.Addr(), Prefix: "wl"})
	require.NoError(t, err)
	require.NoError(t, store.SaveSchema(ctx, domain.Schema{Categories: []string{"Feature"}}))
	require.NoError(t, store.SaveEntries(ctx, []domain.Entry{{ID: "e1", Project: "Worklog"}}))
	require.NoError(t, store.SavePreferences(ctx, &domain.Preferences{LastTaskCount: 3}))
	require.NoError(t, store.Close())

	raw, err := mr.Get("wl:schema")
	require.NoError(t, err)
	assert.Contains(t, raw, `"Feature"`)
	assert.True(t, mr.Exists("wl:entries"))

	reloaded, err := NewStore(ctx, Options{Addr: mr.Addr(), Prefix: "wl"})
	require.NoError(t, err)
	defer func() { _ = reloaded.Close() }()

	schema, ok, err := reloaded.LoadSchema(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Feature"}, schema.Categories)

	entries, err := reloaded.LoadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	prefs, err := reloaded.LoadPreferences(ctx)
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, 3, prefs.LastTaskCount)
}

func TestStoreDeletesClearedPreferences(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := NewStoreWithClient(ctx, goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Equal(t, "worklog:preferences", store.Key("preferences"))
	require.NoError(t, store.SavePreferences(ctx, &domain.Preferences{LastProject: "Worklog"}))
	assert.True(t, mr.Exists("worklog:preferences"))
	require.NoError(t, store.SavePreferences(ctx, nil))
	assert.False(t, mr.Exists("worklog:preferences"))
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewStore(ctx, Options{})
	require.Error(t, err)

	_, err = NewStoreWithClient(ctx, nil, "")
	require.Error(t, err)

	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("worklog:entries", "{bad"))
	_, err = NewStore(ctx, Options{Addr: mr.Addr()})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode entries"), err.Error())
}

func TestStoreSaveFailsWhenServerGone(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := NewStore(ctx, Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	mr.Close()
	err = store.SaveEntries(ctx, []domain.Entry{{ID: "e1"}})
	require.Error(t, err)
	entries, _ := store.LoadEntries(ctx)
	assert.Len(t, entries, 1, "memory keeps the write when redis fails")
}
