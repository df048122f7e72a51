// Package store persists container snapshots.
//
// A snapshot is the JSON of a container's current state (ToArray), so loading
// a snapshot into a container with the same schema reproduces the stored
// values exactly; defaults stay defaults.
//
// Two backends are provided:
//
//	rs, err := store.NewRedisStore(store.RedisOptions{URL: "redis://localhost:6379"})
//	es, err := store.NewEtcdStore(store.EtcdOptions{Endpoints: []string{"localhost:2379"}})
//
//	id, err := rs.Save(ctx, "", order)          // empty id: a UUID is assigned
//	err = rs.Load(ctx, id, property.New(...))   // ErrNotFound if absent
//
// Every call runs in an OpenTelemetry span and increments the
// propkit.store.operations counter, tagged with the operation, backend and
// outcome. Providers default to the otel globals.
package store
