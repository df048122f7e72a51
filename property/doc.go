// Package property provides a schema-validated property container.
//
// A Container holds named values. Each name may be declared with a
// constraint (see package constraint) and a default; once any property is
// declared, only declared names can be read or written.
//
// # Declaring properties
//
//	c := property.New()
//	_ = c.DefineProperty("id", "integer")
//	_ = c.DefineProperty("status", "string", property.WithDefault("draft"))
//	_ = c.DefineProperty("tags", "array|null")
//
// # Access
//
// Every read and write goes through Get and Set:
//
//	_ = c.Set("id", 42)
//	_ = c.Set("id", "42")          // ErrPropertyValueNotValid
//	_ = c.Set("tags", "urgent")    // appends: tags == []any{"urgent"}
//	status, _ := c.Get("status")   // "draft" (the default)
//	c.Has("status")                // false until set
//
// Custom getters and setters replace the default behavior for one name:
//
//	c.SetSetter("email", func(c *property.Container, v any) error {
//		s, _ := v.(string)
//		c.Assign("email", strings.ToLower(s))
//		return nil
//	})
//
// A failed Set leaves the previous value in place.
//
// # Plain data
//
// ToArray renders the current state, NormalizeData renders the full state
// with defaults, and FromArray fills a container from plain data. Types that
// embed *Container are nested containers and convert recursively; time.Time
// renders with DateLayout.
package property
