package property

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/propkit/constraint"
)

// summary exposes ToArray but not NormalizeData.
type summary struct {
	Total int
}

func (s summary) ToArray() (map[string]any, error) {
	return map[string]any{"total": s.Total}, nil
}

func newOrder(t *testing.T) *Container {
	t.Helper()

	c := New()
	require.NoError(t, c.DefineProperty("id", "integer"))
	require.NoError(t, c.DefineProperty("status", "string", WithDefault("draft")))
	require.NoError(t, c.DefineProperty("placed_at", "time.Time|null"))
	require.NoError(t, c.DefineProperty("shipping", constraint.TypeOf[*address]()))
	require.NoError(t, c.DefineProperty("stops", "array"))
	require.NoError(t, c.DefineProperty("notes", "array|null", WithDefault([]any{"fragile"})))
	return c
}

func TestToArrayOmitsUnsetAndDefaults(t *testing.T) {
	c := newOrder(t)
	require.NoError(t, c.Set("id", 7))

	data, err := c.ToArray()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 7}, data)
}

func TestNormalizeDataSubstitutesDefaults(t *testing.T) {
	c := newOrder(t)
	require.NoError(t, c.Set("id", 7))

	data, err := c.NormalizeData()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":     7,
		"status": "draft",
		"notes":  []any{"fragile"},
	}, data)

	// The same instance still reports only what was set.
	current, err := c.ToArray()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 7}, current)
}

func TestDateRendering(t *testing.T) {
	c := newOrder(t)
	placed := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.FixedZone("CET", 3600))
	require.NoError(t, c.Set("placed_at", placed))

	data, err := c.ToArray()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T02:04:05.123456Z", data["placed_at"])

	normalized, err := c.NormalizeProperty("placed_at")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T02:04:05.123456Z", normalized)
}

func TestNestedContainers(t *testing.T) {
	c := newOrder(t)
	require.NoError(t, c.Set("shipping", newAddress("Main St 1", "Utrecht")))
	require.NoError(t, c.Set("stops", newAddress("Depot 4", "Amersfoort")))
	require.NoError(t, c.Set("stops", newAddress("Hub 2", "Zwolle")))

	t.Run("ToArray renders current state of children", func(t *testing.T) {
		data, err := c.ToArray()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"shipping": map[string]any{"street": "Main St 1", "city": "Utrecht"},
			"stops": []any{
				map[string]any{"street": "Depot 4", "city": "Amersfoort"},
				map[string]any{"street": "Hub 2", "city": "Zwolle"},
			},
		}, data)
	})

	t.Run("NormalizeData renders defaults of children", func(t *testing.T) {
		data, err := c.NormalizeData()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"street": "Main St 1", "city": "Utrecht", "country": "NL"}, data["shipping"])
		assert.Equal(t, []any{
			map[string]any{"street": "Depot 4", "city": "Amersfoort", "country": "NL"},
			map[string]any{"street": "Hub 2", "city": "Zwolle", "country": "NL"},
		}, data["stops"])
	})
}

func TestListDepth(t *testing.T) {
	inner := newAddress("Deep 1", "Leiden")
	nested := []any{"top", []any{inner}}

	c := New()
	require.NoError(t, c.DefineProperty("path", "array"))
	require.NoError(t, c.Set("path", nested))

	t.Run("ToArray converts one level only", func(t *testing.T) {
		data, err := c.ToArray()
		require.NoError(t, err)

		path := data["path"].([]any)
		assert.Equal(t, "top", path[0])
		assert.Same(t, inner, path[1].([]any)[0])
	})

	t.Run("NormalizeData converts every level", func(t *testing.T) {
		data, err := c.NormalizeData()
		require.NoError(t, err)
		assert.Equal(t, []any{
			"top",
			[]any{map[string]any{"street": "Deep 1", "city": "Leiden", "country": "NL"}},
		}, data["path"])
	})
}

func TestTypedListsKeepTheirType(t *testing.T) {
	c := New()
	require.NoError(t, c.DefineProperty("codes", "array"))
	require.NoError(t, c.DefineProperty("weights", "array"))
	require.NoError(t, c.Set("codes", []string{"a", "b"}))
	require.NoError(t, c.Set("weights", map[string]float64{"a": 1.5}))

	data, err := c.ToArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, data["codes"])
	assert.Equal(t, map[string]float64{"a": 1.5}, data["weights"])

	// The rendered list is a copy.
	data["codes"].([]string)[0] = "z"
	v, _ := c.Raw("codes")
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestKeyedListOfContainers(t *testing.T) {
	c := New()
	require.NoError(t, c.DefineProperty("sites", "array"))
	require.NoError(t, c.Set("sites", map[string]*address{"home": newAddress("Elm 3", "Delft")}))

	data, err := c.ToArray()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"home": map[string]any{"street": "Elm 3", "city": "Delft"},
	}, data["sites"])
}

func TestUnrenderableObjects(t *testing.T) {
	t.Run("ToArray rejects plain structs", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set("where", &coordinates{Lat: 1}))

		_, err := c.ToArray()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPropertyValueNotValid)
		assert.Contains(t, err.Error(), "property.coordinates")
	})

	t.Run("ToArray rejects plain structs inside lists", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set("where", []any{&coordinates{}}))

		_, err := c.ToArray()
		assert.ErrorIs(t, err, ErrPropertyValueNotValid)
	})

	t.Run("ToArray accepts Arrayer objects", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set("summary", summary{Total: 3}))

		data, err := c.ToArray()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"total": 3}, data["summary"])
	})

	t.Run("NormalizeData requires Normalizer", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set("summary", summary{Total: 3}))

		_, err := c.NormalizeData()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNormalization)
		assert.Contains(t, err.Error(), "property.summary")
	})

	t.Run("NormalizeData rejects objects at any depth", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Set("deep", []any{[]any{map[string]any{"x": &coordinates{}}}}))

		_, err := c.NormalizeData()
		assert.ErrorIs(t, err, ErrNormalization)
	})

	t.Run("nil pointers pass through as null", func(t *testing.T) {
		c := New()
		var missing *address
		require.NoError(t, c.Set("maybe", missing))

		data, err := c.NormalizeData()
		require.NoError(t, err)
		assert.Nil(t, data["maybe"])
	})
}

func TestPropertyToArray(t *testing.T) {
	c := newOrder(t)
	require.NoError(t, c.Set("id", 1))
	require.NoError(t, c.Set("shipping", newAddress("Main St 1", "Utrecht")))
	require.NoError(t, c.Set("stops", "first"))

	v, err := c.PropertyToArray("shipping")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"street": "Main St 1", "city": "Utrecht"}, v)

	v, err = c.PropertyToArray("stops")
	require.NoError(t, err)
	assert.Equal(t, []any{"first"}, v)

	_, err = c.PropertyToArray("id")
	assert.ErrorIs(t, err, ErrPropertyValueNotValid)

	_, err = c.PropertyToArray("status")
	assert.ErrorIs(t, err, ErrPropertyValueNotValid, "unset property is not a list")

	_, err = c.PropertyToArray("nope")
	assert.ErrorIs(t, err, ErrPropertyNotValid)
}

func TestNormalizeProperty(t *testing.T) {
	c := newOrder(t)

	v, err := c.NormalizeProperty("status")
	require.NoError(t, err)
	assert.Equal(t, "draft", v)

	v, err = c.NormalizeProperty("id")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = c.NormalizeProperty("nope")
	assert.ErrorIs(t, err, ErrPropertyNotValid)
}

func TestFromArray(t *testing.T) {
	schema := func(t *testing.T) *Container {
		c := New()
		require.NoError(t, c.DefineProperty("id", "integer"))
		require.NoError(t, c.DefineProperty("name", "string|null"))
		require.NoError(t, c.DefineProperty("score", "number"))
		require.NoError(t, c.DefineProperty("tags", "array"))
		return c
	}

	t.Run("round trip of primitive properties", func(t *testing.T) {
		src := schema(t)
		require.NoError(t, src.Set("id", 1))
		require.NoError(t, src.Set("name", nil))
		require.NoError(t, src.Set("score", 9.5))
		require.NoError(t, src.Set("tags", "a"))
		require.NoError(t, src.Set("tags", "b"))

		data, err := src.ToArray()
		require.NoError(t, err)

		dst := schema(t)
		require.NoError(t, dst.FromArray(data))

		assert.Equal(t, src.values, dst.values)
	})

	t.Run("extra keys are dropped by default", func(t *testing.T) {
		c := schema(t)
		require.NoError(t, c.FromArray(map[string]any{"id": 1, "unexpected": 1}))

		assert.False(t, c.Has("unexpected"))
		v, _ := c.Get("id")
		assert.Equal(t, 1, v)
	})

	t.Run("extra keys rejected when strict", func(t *testing.T) {
		c := schema(t)
		err := c.FromArray(
			map[string]any{"id": 1, "unexpected": 1, "also": 2},
			SkipExtraProperties(false),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPropertyNotValid)

		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, []string{"also", "unexpected"}, perr.Names())
		assert.False(t, c.Has("id"), "nothing is written when the input is rejected")
	})

	t.Run("missing keys rejected when required", func(t *testing.T) {
		c := schema(t)
		err := c.FromArray(map[string]any{}, SkipMissingProperties(false))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPropertyMissing)

		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, []string{"id", "name", "score", "tags"}, perr.Names())
	})

	t.Run("missing keys ignored by default", func(t *testing.T) {
		c := schema(t)
		require.NoError(t, c.FromArray(map[string]any{"id": 2}))
		assert.False(t, c.Has("name"))
	})

	t.Run("invalid value rolls back earlier writes", func(t *testing.T) {
		c := schema(t)
		require.NoError(t, c.Set("name", "before"))

		err := c.FromArray(map[string]any{"id": 3, "name": "after", "score": "high"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPropertyValueNotValid)

		assert.False(t, c.Has("id"))
		v, _ := c.Get("name")
		assert.Equal(t, "before", v)
	})

	t.Run("custom setters apply", func(t *testing.T) {
		c := schema(t)
		c.SetSetter("name", func(c *Container, v any) error {
			c.Assign("name", "hooked")
			return nil
		})

		require.NoError(t, c.FromArray(map[string]any{"name": "raw"}))
		v, _ := c.Get("name")
		assert.Equal(t, "hooked", v)
	})

	t.Run("list values replace", func(t *testing.T) {
		c := schema(t)
		require.NoError(t, c.Set("tags", "old"))
		require.NoError(t, c.FromArray(map[string]any{"tags": []any{"new"}}))

		v, _ := c.Get("tags")
		assert.Equal(t, []any{"new"}, v)
	})

	t.Run("unconstrained container takes every key", func(t *testing.T) {
		c := New()
		require.NoError(t, c.FromArray(map[string]any{"a": 1, "b": "two"}, SkipExtraProperties(false)))

		data, err := c.ToArray()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": "two"}, data)
	})
}

func TestFromArrayParsesDates(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		spec    string
		value   any
		want    any
		wantErr bool
	}{
		{name: "date layout", spec: "time.Time", value: "2024-01-02T03:04:05.000000Z", want: want},
		{name: "rfc3339 with offset", spec: "time.Time|null", value: "2024-01-02T04:04:05+01:00", want: want},
		{name: "pointer", spec: "*time.Time", value: "2024-01-02T03:04:05.000000Z", want: &want},
		{name: "string allowed keeps string", spec: "time.Time|string", value: "2024-01-02T03:04:05.000000Z", want: "2024-01-02T03:04:05.000000Z"},
		{name: "unparsable string rejected", spec: "time.Time", value: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.DefineProperty("at", tt.spec))

			err := c.FromArray(map[string]any{"at": tt.value})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPropertyValueNotValid)
				return
			}
			require.NoError(t, err)

			got, err := c.Get("at")
			require.NoError(t, err)
			switch w := tt.want.(type) {
			case time.Time:
				require.IsType(t, time.Time{}, got)
				assert.True(t, w.Equal(got.(time.Time)))
			case *time.Time:
				require.IsType(t, &time.Time{}, got)
				assert.True(t, w.Equal(*got.(*time.Time)))
			default:
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	src := New()
	require.NoError(t, src.DefineProperty("at", "time.Time|null"))
	at := time.Date(2024, 6, 30, 23, 59, 59, 999999000, time.UTC)
	require.NoError(t, src.Set("at", at))

	data, err := src.ToArray()
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.DefineProperty("at", "time.Time|null"))
	require.NoError(t, dst.FromArray(data))

	got, err := dst.Get("at")
	require.NoError(t, err)
	assert.True(t, at.Equal(got.(time.Time)))
}
