package middleware

import (
	"context"

	"github.com/robml/dbaccounting/pkg/auth"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxClaims contextKey = "claims"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// WithClaims injects token claims into the context for downstream handlers.
func WithClaims(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	if claims != nil {
		ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	}
	return ctx
}
