// Package auth carries the caller identity supplied by the external identity
// provider. Mutations that create events require one.
package auth

import "context"

// Identity is the signed-in principal.
type Identity struct {
	Subject string
}

// System is the identity used for seeding and other in-process callers.
var System = Identity{Subject: "system"}

type ctxKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Authorized reports whether ctx carries a signed-in identity.
func Authorized(ctx context.Context) bool {
	id, ok := FromContext(ctx)
	return ok && id.Subject != ""
}
