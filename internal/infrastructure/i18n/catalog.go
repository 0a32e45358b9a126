// Package i18n provides the message catalog used to render human readable
// text for API responses.
package i18n

import (
	"golang.org/x/text/language"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

var bundles = map[string]map[string]string{
	"en": {
		domain.MsgUnexpected:        "Unexpected error! Please submit a bug report.",
		domain.MsgBadRequest:        "Invalid parameter.",
		domain.MsgValidation:        "Data does not meet requirements.",
		domain.MsgPrincipalNotFound: "User does not exist.",
		domain.MsgBadCredentials:    "Email or password is wrong.",
		domain.MsgInsufficientRole:  "Insufficient privileges to access this resource.",
		domain.MsgUnauthenticated:   "Authorization required to access this resource.",
		domain.MsgTokenInvalid:      "Invalid token.",
		domain.MsgPrincipalExists:   "A user with this email already exists.",
		domain.MsgLoggedOut:         "Logged out.",
		domain.MsgAccessPublic:      "Public endpoint reached.",
		domain.MsgAccessUser:        "User endpoint reached.",
		domain.MsgAccessManager:     "Manager endpoint reached.",
		domain.MsgAccessAdmin:       "Admin endpoint reached.",
	},
	"tr": {
		domain.MsgUnexpected:        "Beklenmeyen hata! Lütfen hata raporu gönderin.",
		domain.MsgBadRequest:        "Geçersiz parametre.",
		domain.MsgValidation:        "Veri gereksinimleri karşılamıyor.",
		domain.MsgPrincipalNotFound: "Kullanıcı bulunamadı.",
		domain.MsgBadCredentials:    "E-posta veya şifre hatalı.",
		domain.MsgInsufficientRole:  "Bu kaynağa erişim için yetkiniz yetersiz.",
		domain.MsgUnauthenticated:   "Bu kaynağa erişmek için giriş yapmalısınız.",
		domain.MsgTokenInvalid:      "Geçersiz token.",
		domain.MsgPrincipalExists:   "Bu e-posta ile kayıtlı bir kullanıcı zaten var.",
		domain.MsgLoggedOut:         "Çıkış yapıldı.",
		domain.MsgAccessPublic:      "Herkese açık uç noktaya ulaşıldı.",
		domain.MsgAccessUser:        "Kullanıcı uç noktasına ulaşıldı.",
		domain.MsgAccessManager:     "Yönetici uç noktasına ulaşıldı.",
		domain.MsgAccessAdmin:       "Admin uç noktasına ulaşıldı.",
	},
}

// Catalog is an immutable, in-process message catalog.
type Catalog struct {
	fallback string
	locales  []string
	matcher  language.Matcher
}

// NewCatalog returns a catalog that falls back to defaultLocale, or "en" when
// defaultLocale is not bundled.
func NewCatalog(defaultLocale string) *Catalog {
	if _, ok := bundles[defaultLocale]; !ok {
		defaultLocale = "en"
	}

	// the matcher returns the first tag when nothing matches
	locales := []string{defaultLocale}
	for l := range bundles {
		if l != defaultLocale {
			locales = append(locales, l)
		}
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = language.MustParse(l)
	}

	return &Catalog{
		fallback: defaultLocale,
		locales:  locales,
		matcher:  language.NewMatcher(tags),
	}
}

// Lookup returns the text for code in locale, then in the fallback locale, and
// finally the code itself.
func (c *Catalog) Lookup(code, locale string) string {
	if msg, ok := bundles[locale][code]; ok {
		return msg
	}
	if msg, ok := bundles[c.fallback][code]; ok {
		return msg
	}
	return code
}

// Negotiate picks the best bundled locale for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.fallback
	}
	return c.locales[idx]
}
