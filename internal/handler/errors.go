package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"pixfeed-server/internal/domain"
	"pixfeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

// writeError maps a service error to its HTTP status. Anything that is not a
// known domain error is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationMissing), errors.Is(err, domain.ErrAuthenticationInvalid):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		response.ServiceUnavailable(w, domain.ErrDeliveryFailed.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.InternalError(w, "internal server error")
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domain.UsernamePattern.MatchString(fl.Field().String())
	})
	// A stored phone must classify as a phone login, or its owner could never
	// sign in with it.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return domain.ClassifyLogin(fl.Field().String()) == domain.LoginPhone
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	if err := v.Struct(dst); err != nil {
		response.BadRequest(w, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "username":
			msgs = append(msgs, fe.Field()+" must be 3-15 lowercase letters, digits, '_' or '-'")
		case "phone":
			msgs = append(msgs, fe.Field()+" must be a phone number with a leading '+' or (area code)")
		case "email":
			msgs = append(msgs, fe.Field()+" is not a valid email")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
