// Package constraint parses property type specs and matches values against them.
//
// A spec is a union of tags. Primitive tags are string, integer (alias int),
// number, boolean (alias bool), null, array and object; any other tag must be
// a package-qualified Go type name such as "time.Time" or
// "*github.com/acme/shop.Address" and matches only values of exactly that type.
//
//	c := constraint.MustParse("integer|null")
//	c.Allows(5)    // true
//	c.Allows(nil)  // true
//	c.Allows("5")  // false
//
// Object values never match the generic object tag; an empty constraint is the
// only way to accept arbitrary object types.
package constraint
