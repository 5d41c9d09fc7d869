package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/auth"
)

type empty struct{}

// callThrough runs the interceptor around a handler that reports the session it saw.
func callThrough(t *testing.T, interceptor connect.UnaryInterceptorFunc, header string) (string, error) {
	t.Helper()
	var seen string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetSessionID(ctx)
		return connect.NewResponse(&empty{}), nil
	}
	req := connect.NewRequest(&empty{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	_, err := interceptor(next)(context.Background(), req)
	return seen, err
}

func TestSessionAuth(t *testing.T) {
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Generate("session-1")
	require.NoError(t, err)

	// A bare request carries an empty procedure name.
	required := SessionAuth(tokens, map[string]bool{"": true})
	optional := SessionAuth(tokens, nil)

	tests := []struct {
		name        string
		interceptor connect.UnaryInterceptorFunc
		header      string
		wantSession string
		wantCode    connect.Code
	}{
		{"required with valid token", required, "Bearer " + token, "session-1", 0},
		{"required without token", required, "", "", connect.CodeUnauthenticated},
		{"required with wrong scheme", required, "Basic " + token, "", connect.CodeUnauthenticated},
		{"required with bad token", required, "Bearer junk", "", connect.CodeUnauthenticated},
		{"optional without token", optional, "", "", 0},
		{"optional with bad token", optional, "Bearer junk", "", 0},
		{"optional with valid token", optional, "Bearer " + token, "session-1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, err := callThrough(t, tt.interceptor, tt.header)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSession, seen)
		})
	}
}
