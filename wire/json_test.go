package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/propkit/property"
)

type address struct{ *property.Container }

func newAddress(city string) *address {
	a := &address{Container: property.New()}
	_ = a.DefineProperty("city", "string")
	_ = a.DefineProperty("country", "string", property.WithDefault("NL"))
	_ = a.Set("city", city)
	return a
}

func newOrder(t *testing.T) *property.Container {
	t.Helper()

	c := property.New()
	require.NoError(t, c.DefineProperty("id", "integer"))
	require.NoError(t, c.DefineProperty("total", "number"))
	require.NoError(t, c.DefineProperty("status", "string", property.WithDefault("draft")))
	require.NoError(t, c.DefineProperty("tags", "array|null"))
	require.NoError(t, c.DefineProperty("placed_at", "time.Time|string|null"))
	return c
}

func TestDecodeJSON(t *testing.T) {
	data, err := DecodeJSON([]byte(`{"i": 3, "f": 1.5, "big": 9007199254740993, "list": [1, 2.5, {"n": 4}], "s": "x", "n": null}`))
	require.NoError(t, err)

	assert.Equal(t, int64(3), data["i"])
	assert.Equal(t, 1.5, data["f"])
	assert.Equal(t, int64(9007199254740993), data["big"])
	assert.Equal(t, []any{int64(1), 2.5, map[string]any{"n": int64(4)}}, data["list"])
	assert.Equal(t, "x", data["s"])
	assert.Nil(t, data["n"])

	_, err = DecodeJSON([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	src := newOrder(t)
	require.NoError(t, src.Set("id", 42))
	require.NoError(t, src.Set("total", 19.95))
	require.NoError(t, src.Set("tags", "gift"))
	require.NoError(t, src.Set("placed_at", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)))

	raw, err := MarshalJSON(src)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 42,
		"total": 19.95,
		"status": "draft",
		"tags": ["gift"],
		"placed_at": "2024-05-06T07:08:09.000000Z"
	}`, string(raw))

	dst := newOrder(t)
	require.NoError(t, UnmarshalJSON(raw, dst))

	id, _ := dst.Get("id")
	assert.Equal(t, int64(42), id)
	status, _ := dst.Get("status")
	assert.Equal(t, "draft", status)
	assert.True(t, dst.Has("status"), "normalized data carries defaults as values")
	placed, _ := dst.Get("placed_at")
	assert.Equal(t, "2024-05-06T07:08:09.000000Z", placed)
}

func TestSnapshotJSON(t *testing.T) {
	src := newOrder(t)
	require.NoError(t, src.Set("id", 1))

	raw, err := SnapshotJSON(src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1}`, string(raw))
}

func TestUnmarshalJSONOptions(t *testing.T) {
	dst := newOrder(t)

	err := UnmarshalJSON([]byte(`{"id": 1, "coupon": "X"}`), dst, property.SkipExtraProperties(false))
	assert.ErrorIs(t, err, property.ErrPropertyNotValid)

	err = UnmarshalJSON([]byte(`{"id": 1.5}`), dst)
	assert.ErrorIs(t, err, property.ErrPropertyValueNotValid)

	err = UnmarshalJSON([]byte(`not json`), dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wire: decode json")
}

func TestMarshalJSONNestedContainer(t *testing.T) {
	c := property.New()
	require.NoError(t, c.Set("ship_to", newAddress("Delft")))

	raw, err := MarshalJSON(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ship_to": {"city": "Delft", "country": "NL"}}`, string(raw))
}

func TestYAMLRoundTrip(t *testing.T) {
	src := newOrder(t)
	require.NoError(t, src.Set("id", 7))
	require.NoError(t, src.Set("total", 2.5))
	require.NoError(t, src.Set("tags", "a"))

	raw, err := MarshalYAML(src)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id: 7")

	dst := newOrder(t)
	require.NoError(t, UnmarshalYAML(raw, dst))

	id, _ := dst.Get("id")
	assert.Equal(t, 7, id)
	tags, _ := dst.Get("tags")
	assert.Equal(t, []any{"a"}, tags)

	require.NoError(t, UnmarshalYAML(nil, newOrder(t)))

	err = UnmarshalYAML([]byte("- not\n- a map\n"), newOrder(t))
	assert.Error(t, err)
}
