// Package wire moves container data across process boundaries.
//
// Containers render to plain data (map[string]any) through ToArray and
// NormalizeData and fill from it through FromArray. This package encodes that
// plain data as JSON, YAML or a protobuf Struct, and maps container errors to
// gRPC status codes:
//
//	raw, err := wire.MarshalJSON(order)       // NormalizeData as JSON
//	err = wire.UnmarshalJSON(raw, other)      // FromArray from JSON
//
//	st, err := wire.MarshalStruct(order)      // *structpb.Struct
//	return nil, wire.Status(err).Err()        // InvalidArgument with field violations
//
// JSON numbers are decoded as int64 when they are integers and float64
// otherwise, so values written to integer properties survive a round trip.
package wire
