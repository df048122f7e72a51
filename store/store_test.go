package store

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/propkit/property"
)

func newOrder(t *testing.T) *property.Container {
	t.Helper()

	c := property.New()
	require.NoError(t, c.DefineProperty("id", "integer"))
	require.NoError(t, c.DefineProperty("status", "string", property.WithDefault("draft")))
	require.NoError(t, c.DefineProperty("tags", "array|null"))
	return c
}

// testStore runs the behavior every backend shares.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		src := newOrder(t)
		require.NoError(t, src.Set("id", 7))
		require.NoError(t, src.Set("tags", "gift"))

		id, err := s.Save(ctx, "order-7", src)
		require.NoError(t, err)
		assert.Equal(t, "order-7", id)

		dst := newOrder(t)
		require.NoError(t, s.Load(ctx, id, dst))

		v, _ := dst.Get("id")
		assert.Equal(t, int64(7), v)
		tags, _ := dst.Get("tags")
		assert.Equal(t, []any{"gift"}, tags)
		assert.False(t, dst.Has("status"), "defaults are not stored")
	})

	t.Run("empty id gets a uuid", func(t *testing.T) {
		id, err := s.Save(ctx, "", newOrder(t))
		require.NoError(t, err)
		assert.Len(t, id, 36)

		require.NoError(t, s.Delete(ctx, id))
	})

	t.Run("overwrite", func(t *testing.T) {
		src := newOrder(t)
		require.NoError(t, src.Set("id", 1))
		_, err := s.Save(ctx, "order-1", src)
		require.NoError(t, err)

		require.NoError(t, src.Set("id", 2))
		_, err = s.Save(ctx, "order-1", src)
		require.NoError(t, err)

		dst := newOrder(t)
		require.NoError(t, s.Load(ctx, "order-1", dst))
		v, _ := dst.Get("id")
		assert.Equal(t, int64(2), v)
	})

	t.Run("list", func(t *testing.T) {
		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"order-1", "order-7"}, ids)
	})

	t.Run("load missing", func(t *testing.T) {
		err := s.Load(ctx, "nope", newOrder(t))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("load into an incompatible schema", func(t *testing.T) {
		other := property.New()
		require.NoError(t, other.DefineProperty("id", "string"))

		err := s.Load(ctx, "order-7", other)
		assert.ErrorIs(t, err, property.ErrPropertyValueNotValid)
	})

	t.Run("strict load rejects unknown keys", func(t *testing.T) {
		narrow := property.New()
		require.NoError(t, narrow.DefineProperty("id", "integer"))

		err := s.Load(ctx, "order-7", narrow, property.SkipExtraProperties(false))
		assert.ErrorIs(t, err, property.ErrPropertyNotValid)
	})

	t.Run("unrenderable container", func(t *testing.T) {
		bad := property.New()
		require.NoError(t, bad.Set("ch", struct{ X int }{1}))

		_, err := s.Save(ctx, "bad", bad)
		assert.ErrorIs(t, err, property.ErrPropertyValueNotValid)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "order-1"))
		assert.ErrorIs(t, s.Delete(ctx, "order-1"), ErrNotFound)

		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"order-7"}, ids)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.True(t, errors.Is(s.Load(ctx, "", newOrder(t)), ErrEmptyID))
		assert.True(t, errors.Is(s.Delete(ctx, ""), ErrEmptyID))
	})

	t.Run("dates survive a round trip", func(t *testing.T) {
		newEvent := func() *property.Container {
			c := property.New()
			require.NoError(t, c.DefineProperty("at", "time.Time|null"))
			require.NoError(t, c.DefineProperty("until", "*time.Time"))
			return c
		}
		at := time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC)
		until := at.Add(time.Hour)

		src := newEvent()
		require.NoError(t, src.Set("at", at))
		require.NoError(t, src.Set("until", &until))

		_, err := s.Save(ctx, "event-1", src)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Delete(ctx, "event-1") })

		dst := newEvent()
		require.NoError(t, s.Load(ctx, "event-1", dst))

		got, err := dst.Get("at")
		require.NoError(t, err)
		require.IsType(t, time.Time{}, got)
		assert.True(t, at.Equal(got.(time.Time)))

		gotUntil, err := dst.Get("until")
		require.NoError(t, err)
		require.IsType(t, &time.Time{}, gotUntil)
		assert.True(t, until.Equal(*gotUntil.(*time.Time)))
	})
}
