package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempJar(t *testing.T) CookieJar {
	t.Helper()
	return CookieJar{Path: filepath.Join(t.TempDir(), "fb_cookies.json")}
}

func TestCookieJarRoundTrip(t *testing.T) {
	jar := tempJar(t)

	if jar.Configured() {
		t.Error("empty jar should not be configured")
	}
	cookies, err := jar.Load()
	if err != nil || cookies != nil {
		t.Fatalf("Load on missing file = %v, %v", cookies, err)
	}

	in := []Cookie{
		{Name: "c_user", Value: "100001", Domain: ".facebook.com"},
		{Name: "xs", Value: "abc123", ExpirationDate: float64(time.Now().Add(48 * time.Hour).Unix())},
	}
	if err := jar.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !jar.Configured() {
		t.Error("jar should be configured after save")
	}

	out, err := jar.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].Name != "c_user" || out[1].Value != "abc123" {
		t.Errorf("round trip mismatch: %+v", out)
	}

	if err := jar.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if jar.Configured() {
		t.Error("jar should not be configured after delete")
	}
	if err := jar.Delete(); err != nil {
		t.Errorf("Delete on missing file should be nil, got %v", err)
	}
}

func TestCookieJarRejectsBadJSON(t *testing.T) {
	jar := tempJar(t)
	if err := os.WriteFile(jar.Path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := jar.Load(); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}

func TestEstimateExpiryFromSessionCookies(t *testing.T) {
	jar := tempJar(t)
	want := time.Now().Add(24 * time.Hour).Unix()
	in := []Cookie{
		{Name: "datr", Value: "x", ExpirationDate: float64(time.Now().Add(365 * 24 * time.Hour).Unix())},
		{Name: "xs", Value: "y", ExpirationDate: float64(want)},
	}
	if err := jar.Save(in); err != nil {
		t.Fatal(err)
	}
	got, ok := jar.EstimateExpiry()
	if !ok {
		t.Fatal("expected an estimate")
	}
	if got.Unix() != want {
		t.Errorf("estimate = %v, want xs expiry %v", got.Unix(), want)
	}
}

func TestEstimateExpiryFallsBackToMtime(t *testing.T) {
	jar := tempJar(t)
	if err := jar.Save([]Cookie{{Name: "c_user", Value: "1"}}); err != nil {
		t.Fatal(err)
	}
	got, ok := jar.EstimateExpiry()
	if !ok {
		t.Fatal("expected an estimate")
	}
	// ~90 days out from now (file just written)
	days := time.Until(got).Hours() / 24
	if days < 89 || days > 91 {
		t.Errorf("fallback estimate %.1f days out, want ~90", days)
	}
}

func TestForPlaywrightDefaults(t *testing.T) {
	out := ForPlaywright([]Cookie{{Name: "c_user", Value: "1"}})
	if len(out) != 1 {
		t.Fatal("expected one cookie")
	}
	oc := out[0]
	if *oc.Domain != ".facebook.com" {
		t.Errorf("domain = %q, want .facebook.com", *oc.Domain)
	}
	if *oc.Path != "/" {
		t.Errorf("path = %q, want /", *oc.Path)
	}
	if !*oc.Secure {
		t.Error("secure should default to true")
	}
	if oc.Expires != nil {
		t.Error("no expiry should leave Expires nil")
	}
}

func TestForPlaywrightExpiryPreference(t *testing.T) {
	secure := false
	out := ForPlaywright([]Cookie{{
		Name:           "xs",
		Value:          "v",
		Secure:         &secure,
		ExpirationDate: 1700000000,
		Expires:        1600000000,
	}})
	oc := out[0]
	if *oc.Secure {
		t.Error("explicit secure=false should stick")
	}
	if oc.Expires == nil || *oc.Expires != 1700000000 {
		t.Errorf("expirationDate should win, got %v", oc.Expires)
	}
}
