// Package typed provides strongly-typed accessors over a property container.
//
// A container stores values as any. These helpers read a property through the
// normal access protocol (so custom getters and defaults apply) and convert the
// result to a concrete Go type, coercing where the plain-data rendering of a
// value differs from its Go type: numbers decoded from JSON as float64 or
// json.Number, dates rendered as strings, lists decoded as []any.
//
// # Usage
//
//	name, err := typed.String(c, "name", "anonymous")
//	retries, err := typed.Int(c, "retries", 3)
//	placed, err := typed.Time(c, "placed_at", time.Time{})
//	tags, err := typed.StringSlice(c, "tags")
//
// Errors from the container itself, such as an unknown property name, are
// returned unchanged. The coercing helpers return the fallback when the value
// is absent or cannot be converted; Get reports a conversion failure instead:
//
//	addr, err := typed.Get[*Address](c, "address")
//	if errors.Is(err, property.ErrPropertyValueNotValid) {
//		// stored value is not an *Address
//	}
package typed
