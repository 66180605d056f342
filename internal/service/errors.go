package service

import (
	"errors"

	"pixfeed-server/internal/domain"
	"pixfeed-server/pkg/hash"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "pixfeed-server/internal/service"

// tracer resolves against the current global provider on every call.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// passwordError turns a password policy rejection into a validation error.
func passwordError(err error) error {
	if errors.Is(err, hash.ErrWeakPassword) {
		return domain.ValidationError(err)
	}
	return err
}

// endSpan records err on the span unless it is an expected client error.
func endSpan(span trace.Span, err error) {
	if err != nil && !isClientError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isClientError(err error) bool {
	for _, kind := range []error{
		domain.ErrAuthenticationMissing,
		domain.ErrAuthenticationInvalid,
		domain.ErrForbidden,
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrConflict,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
