// Package schema loads property schemas from YAML or JSON documents and
// exports them as JSON Schema.
//
// A schema document declares the properties of a container:
//
//	name: order
//	description: A customer order
//	properties:
//	  - name: id
//	    type: integer
//	  - name: status
//	    type: string
//	    default: draft
//	    rule: value in ["draft", "placed", "shipped"]
//	  - name: notes
//	    type: [array, "null"]
//
// type is a constraint in tag form, either a "|" separated string or a list.
// rule is an optional CEL expression (see package rule) attached to the
// property as a validator.
//
// # Loading
//
//	doc, err := schema.Load("schemas/order.yaml")
//	if err != nil {
//		return err
//	}
//	c, err := doc.New()
//
// Load validates the document, so every type, default and rule is checked
// before any container is built. JSON documents load the same way.
//
// # Export
//
// Export renders definitions as a JSON Schema object. Unions become anyOf,
// dates become date-time strings, and other exact Go types become objects
// carrying their type name in x-go-type:
//
//	js := schema.Export(c.ListProperties()...)
//	err := js.Validate(data) // data from c.NormalizeData()
package schema
