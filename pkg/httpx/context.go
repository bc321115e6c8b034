package httpx

import (
	"context"

	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

func contextWithSession(ctx context.Context, c *jwtx.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}

// SessionFromContext returns the verified session claims, or nil for
// anonymous requests.
func SessionFromContext(ctx context.Context) *jwtx.SessionClaims {
	c, _ := ctx.Value(CtxKeyClaims).(*jwtx.SessionClaims)
	return c
}
