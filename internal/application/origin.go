package application

import (
	"context"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

type originContextKey struct{}

// RequestOrigin carries the transport-level identity of the caller for the
// audit trail.
type RequestOrigin struct {
	IP        string
	UserAgent string
}

// WithRequestOrigin returns a context carrying the request origin. The HTTP
// layer records it once per request.
func WithRequestOrigin(ctx context.Context, origin RequestOrigin) context.Context {
	return context.WithValue(ctx, originContextKey{}, origin)
}

// OriginFromContext returns the request origin recorded by the transport
// layer, if any. Worker and webhook-replay contexts carry none.
func OriginFromContext(ctx context.Context) (RequestOrigin, bool) {
	origin, ok := ctx.Value(originContextKey{}).(RequestOrigin)
	return origin, ok
}

// StampOrigin fills the audit entry's origin fields from the context. Fields
// already set by the caller are kept.
func StampOrigin(ctx context.Context, entry *domain.AuditEntry) {
	origin, ok := OriginFromContext(ctx)
	if !ok {
		return
	}
	if entry.IP == "" {
		entry.IP = origin.IP
	}
	if entry.UserAgent == "" {
		entry.UserAgent = origin.UserAgent
	}
}
