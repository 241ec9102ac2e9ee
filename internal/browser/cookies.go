// Package browser pulls cookies out of locally installed browser profiles
// so authenticated pages can be fetched with the user's existing session.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register all browser stores
)

type Kind string

const (
	KindAuto    Kind = "auto"
	KindChrome  Kind = "chrome"
	KindFirefox Kind = "firefox"
	KindSafari  Kind = "safari"
	KindEdge    Kind = "edge"
)

// CookieLoader reads cookies for a target URL from one browser's profile,
// or from whichever browser has them when the kind is auto.
type CookieLoader struct {
	kind Kind
}

func NewCookieLoader(kind Kind) *CookieLoader {
	if kind == "" {
		kind = KindAuto
	}
	return &CookieLoader{kind: kind}
}

// Load returns the cookies whose domain covers targetURL's host. Profiles
// that cannot be read (locked databases, missing keychains) are skipped.
func (cl *CookieLoader) Load(ctx context.Context, targetURL string) ([]*http.Cookie, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	host := parsed.Hostname()

	var cookies []*http.Cookie
	for cookie, err := range kooky.TraverseCookies(ctx) {
		if err != nil {
			continue
		}
		if !matchesKind(cookie.Browser, cl.kind) || !domainCovers(cookie.Domain, host) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}
	return cookies, nil
}

func matchesKind(info kooky.BrowserInfo, kind Kind) bool {
	if kind == KindAuto {
		return true
	}

	name := strings.ToLower(info.Browser())
	switch kind {
	case KindChrome:
		return strings.Contains(name, "chrome") || strings.Contains(name, "chromium")
	case KindFirefox:
		return strings.Contains(name, "firefox")
	case KindSafari:
		return strings.Contains(name, "safari")
	case KindEdge:
		return strings.Contains(name, "edge")
	}
	return false
}

// domainCovers reports whether a cookie domain applies to host, honoring
// the leading-dot convention for subdomain cookies.
func domainCovers(cookieDomain, host string) bool {
	if cookieDomain == "" || host == "" {
		return false
	}
	cookieDomain = strings.TrimPrefix(cookieDomain, ".")
	return cookieDomain == host || strings.HasSuffix(host, "."+cookieDomain)
}
