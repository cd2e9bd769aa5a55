package statusapi

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/vision-status/internal/warning"
)

var (
	// ErrInvalidRequest is used for client-side validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWarningNotDelivered wraps failures reported by the warning system.
	ErrWarningNotDelivered = errors.New("warning not delivered")
)

// ToStatusError maps service errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, warning.ErrNoDispatcher):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrWarningNotDelivered):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
