package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestTokenErrors_CollapseToInvalid(t *testing.T) {
	for _, err := range []error{ErrTokenMalformed, ErrTokenExpired, ErrTokenBadSignature} {
		if !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%v should match ErrTokenInvalid", err)
		}
		wrapped := fmt.Errorf("decode: %w", err)
		if !errors.Is(wrapped, err) || !errors.Is(wrapped, ErrTokenInvalid) {
			t.Fatalf("wrapped %v lost its kind", err)
		}
	}
	if errors.Is(ErrTokenExpired, ErrTokenMalformed) {
		t.Fatalf("expired must not match malformed")
	}
}

func TestTokenRecord_Usable(t *testing.T) {
	var nilRec *TokenRecord
	if nilRec.Usable() {
		t.Fatalf("nil record must not be usable")
	}
	if !(&TokenRecord{}).Usable() {
		t.Fatalf("fresh record should be usable")
	}
	if (&TokenRecord{Revoked: true}).Usable() || (&TokenRecord{LoggedOut: true}).Usable() {
		t.Fatalf("revoked or logged out record must not be usable")
	}
}

func TestIdentity_HasAnyRole(t *testing.T) {
	p := &Principal{ID: "p1", Email: "a@x.com", Roles: []Role{RoleManager}, Status: PrincipalActive}
	id := p.Identity()

	if !id.HasAnyRole(RoleAdmin, RoleManager) {
		t.Fatalf("expected manager to match")
	}
	if id.HasAnyRole(RoleAdmin) {
		t.Fatalf("manager must not match admin")
	}

	// identity roles are a copy
	p.Roles[0] = RoleAdmin
	if id.Roles[0] != RoleManager {
		t.Fatalf("identity shares role slice with principal")
	}
}

func TestFail_UnwrapsToKind(t *testing.T) {
	err := Fail(ErrBadCredentials, "Email or password is wrong.")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	var f *Failure
	if !errors.As(err, &f) || f.Detail != "Email or password is wrong." {
		t.Fatalf("unexpected failure %#v", f)
	}
	if got := Fail(ErrUnauthenticated, "").Error(); got != ErrUnauthenticated.Error() {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestLocale_RoundTrip(t *testing.T) {
	ctx := WithLocale(context.Background(), "tr")
	if got := LocaleFrom(ctx); got != "tr" {
		t.Fatalf("expected tr, got %q", got)
	}
	if got := LocaleFrom(context.Background()); got != "" {
		t.Fatalf("expected empty locale, got %q", got)
	}
}

func TestIdentity_RoundTrip(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Fatalf("expected no identity")
	}
	want := AuthenticatedIdentity{PrincipalID: "p1", Email: "a@x.com", Roles: []Role{RoleUser}}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	if !ok || got.PrincipalID != "p1" || !got.HasAnyRole(RoleUser) {
		t.Fatalf("unexpected identity %+v", got)
	}
}
