package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// Cookie is one exported browser cookie. Browser extensions export either
// "expirationDate" or "expires"; both are accepted.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain,omitempty"`
	Path           string  `json:"path,omitempty"`
	Secure         *bool   `json:"secure,omitempty"`
	HTTPOnly       *bool   `json:"httpOnly,omitempty"`
	SameSite       string  `json:"sameSite,omitempty"`
	ExpirationDate float64 `json:"expirationDate,omitempty"`
	Expires        float64 `json:"expires,omitempty"`
}

func (c Cookie) expiry() float64 {
	if c.ExpirationDate > 0 {
		return c.ExpirationDate
	}
	return c.Expires
}

// CookieJar reads and writes the cookie file shared between the HTTP
// layer and the scrape worker.
type CookieJar struct {
	Path string
}

func (j CookieJar) Load() ([]Cookie, error) {
	data, err := os.ReadFile(j.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	return cookies, nil
}

func (j CookieJar) Save(cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.Path, data, 0o600)
}

func (j CookieJar) Delete() error {
	err := os.Remove(j.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Configured reports whether a non-empty cookie set is on disk.
func (j CookieJar) Configured() bool {
	cookies, err := j.Load()
	return err == nil && len(cookies) > 0
}

// EstimateExpiry guesses when the stored session stops working: the
// earliest expiry among the session-critical cookies, else 90 days from
// the file's modification time. Facebook does not advertise session
// lifetimes, so this is a heuristic, not a promise.
func (j CookieJar) EstimateExpiry() (time.Time, bool) {
	cookies, err := j.Load()
	if err != nil || len(cookies) == 0 {
		return time.Time{}, false
	}
	var earliest float64
	for _, c := range cookies {
		if c.Name != "c_user" && c.Name != "xs" {
			continue
		}
		if exp := c.expiry(); exp > 0 && (earliest == 0 || exp < earliest) {
			earliest = exp
		}
	}
	if earliest > 0 {
		return time.Unix(int64(earliest), 0), true
	}
	info, err := os.Stat(j.Path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime().Add(90 * 24 * time.Hour), true
}

// ForPlaywright converts the stored cookies into the optional-field shape
// AddCookies wants, filling in the defaults Facebook expects.
func ForPlaywright(cookies []Cookie) []pw.OptionalCookie {
	out := make([]pw.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = ".facebook.com"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		secure := true
		if c.Secure != nil {
			secure = *c.Secure
		}
		httpOnly := false
		if c.HTTPOnly != nil {
			httpOnly = *c.HTTPOnly
		}
		oc := pw.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   &domain,
			Path:     &path,
			Secure:   &secure,
			HttpOnly: &httpOnly,
		}
		if exp := c.expiry(); exp > 0 {
			expires := exp
			oc.Expires = &expires
		}
		switch c.SameSite {
		case "Strict":
			oc.SameSite = pw.SameSiteAttributeStrict
		case "Lax":
			oc.SameSite = pw.SameSiteAttributeLax
		default:
			oc.SameSite = pw.SameSiteAttributeNone
		}
		out = append(out, oc)
	}
	return out
}
