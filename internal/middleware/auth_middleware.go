package middleware

import (
	"context"
	"net/http"
	"strings"

	"pixfeed-server/internal/domain"
	"pixfeed-server/pkg/jwt"
	"pixfeed-server/pkg/response"
)

type contextKey string

const identityKey contextKey = "identity"

const (
	msgNotAuthenticated = "not authenticated"
	msgInvalidScheme    = "invalid authentication scheme"
	msgInvalidToken     = "invalid or expired token"
)

// TokenVerifier checks a bearer token of the given kind.
type TokenVerifier interface {
	VerifyKind(token string, kind jwt.TokenType) (*jwt.Claims, bool)
}

// AuthMiddleware admits requests carrying a valid access token and stores the
// caller's identity in the request context. Expired, malformed and foreign
// tokens are all rejected with the same message.
func AuthMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				response.Unauthorized(w, msgNotAuthenticated)
				return
			}

			scheme, token, _ := strings.Cut(authHeader, " ")
			if !strings.EqualFold(scheme, "Bearer") {
				response.Unauthorized(w, msgInvalidScheme)
				return
			}

			token = strings.TrimSpace(token)
			if token == "" {
				response.Unauthorized(w, msgInvalidToken)
				return
			}

			claims, ok := tokens.VerifyKind(token, jwt.TokenTypeAccess)
			if !ok {
				response.Unauthorized(w, msgInvalidToken)
				return
			}

			identity := domain.Identity{UserID: claims.UserID, Username: claims.Subject}
			if info := requestInfoFrom(r.Context()); info != nil {
				info.userID = identity.UserID
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(r *http.Request) (domain.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(domain.Identity)
	return identity, ok
}

func GetUserID(r *http.Request) string {
	identity, _ := IdentityFrom(r)
	return identity.UserID
}
