package domain

import "context"

type (
	localeKey   struct{}
	identityKey struct{}
)

// WithLocale returns a copy of ctx carrying the negotiated message locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFrom returns the locale stored by WithLocale, or "" when none was set.
func LocaleFrom(ctx context.Context) string {
	l, _ := ctx.Value(localeKey{}).(string)
	return l
}

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, id AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by WithIdentity.
func IdentityFrom(ctx context.Context) (AuthenticatedIdentity, bool) {
	id, ok := ctx.Value(identityKey{}).(AuthenticatedIdentity)
	return id, ok
}
