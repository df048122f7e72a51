// Package propkit builds schema-validated property containers.
//
// A container (package property) stores named values, each checked against a
// constraint such as "integer|null" or an exact Go type. The subpackages
// layer schemas, rules, encodings and persistence on top of it:
//
//   - constraint: constraint tags and value classification
//   - property: the container, its access protocol and plain-data conversion
//   - typed: strongly-typed accessors
//   - rule: CEL expressions as property validators
//   - schema: YAML/JSON schema documents and JSON Schema export
//   - wire: JSON, YAML and protobuf Struct encodings, gRPC status mapping
//   - store: Redis and etcd snapshot stores
//
// # Getting Started
//
// Build a container from a schema document:
//
//	c, err := propkit.New(
//		propkit.WithSchemaFile("schemas/order.yaml"),
//		propkit.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := c.Set("status", "placed"); err != nil {
//		// property.ErrPropertyValueNotValid: wrong type or rule violated
//	}
//
// Persist it:
//
//	st, err := store.NewRedisStore(store.RedisOptions{URL: "redis://localhost:6379"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer propkit.CloseWithLog(st, logger, "snapshot store")
//
//	id, err := st.Save(ctx, "", c)
//
// # Error Handling
//
// Container operations return *property.Error, which matches the sentinels
// of package property with errors.Is:
//
//	if errors.Is(err, property.ErrPropertyNotValid) {
//		// name outside the schema
//	}
//
// wire.Status converts these errors to gRPC statuses for service handlers.
package propkit
