package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionIDKey is the context key for the session a bearer token grants access to.
const SessionIDKey contextKey = "session_id"

// GetSessionID extracts the token's session ID from the context.
// Returns empty string if the request carried no valid token.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	return sessionID
}

// WithSessionID returns ctx carrying sessionID as the authenticated session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SessionAuth validates bearer tokens and adds the granted session ID to the context.
// Procedures in required are rejected without a valid token; all others accept
// anonymous calls and only pick up a token when a valid one is present.
func SessionAuth(tokens *auth.TokenManager, required map[string]bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			mustAuth := required[req.Spec().Procedure]

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				if mustAuth {
					return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
				}
				return next(ctx, req)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				if mustAuth {
					return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
				}
				return next(ctx, req)
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				if mustAuth {
					return nil, connect.NewError(connect.CodeUnauthenticated, err)
				}
				return next(ctx, req)
			}

			return next(WithSessionID(ctx, claims.SessionID), req)
		}
	}
}
