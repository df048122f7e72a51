package wire

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zero-day-ai/propkit/property"
)

// Status maps err to a gRPC status. Container errors caused by the caller
// (unknown, missing or invalid properties) map to InvalidArgument with a
// BadRequest detail listing each property; normalization failures map to
// Internal. Errors that already carry a status keep it.
func Status(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}

	var perr *property.Error
	if errors.As(err, &perr) {
		return propertyStatus(perr, err)
	}

	if st, ok := status.FromError(err); ok {
		return st
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	}
	return status.New(codes.Unknown, err.Error())
}

// Code returns the gRPC code Status would assign to err.
func Code(err error) codes.Code {
	return Status(err).Code()
}

func propertyStatus(perr *property.Error, err error) *status.Status {
	if perr.Kind == property.KindNormalization {
		return status.New(codes.Internal, err.Error())
	}

	st := status.New(codes.InvalidArgument, err.Error())

	names := perr.Names()
	if len(names) == 0 {
		return st
	}

	br := &errdetails.BadRequest{}
	for _, name := range names {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       name,
			Description: violation(perr),
		})
	}

	detailed, detailErr := st.WithDetails(br)
	if detailErr != nil {
		return st
	}
	return detailed
}

func violation(perr *property.Error) string {
	switch perr.Kind {
	case property.KindNotValid:
		return "not a property of this schema"
	case property.KindMissing:
		return "required"
	}
	if perr.Actual != "" && len(perr.Expected) > 0 {
		return "expected " + strings.Join(perr.Expected, "|") + ", got " + perr.Actual
	}
	if perr.Err != nil {
		return perr.Err.Error()
	}
	return "invalid value"
}
