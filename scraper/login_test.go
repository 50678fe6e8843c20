package scraper

import "testing"

func TestLooksLikeLoginPage(t *testing.T) {
	cases := []struct {
		name string
		html string
		want bool
	}{
		{
			"login title",
			`<html><head><title>Facebook - Log In or Sign Up</title></head><body></body></html>`,
			true,
		},
		{
			"login form action",
			`<html><body><form action="/login/device-based/regular/login/"><input type="text"></form></body></html>`,
			true,
		},
		{
			"login button id",
			`<html><body><button id="loginbutton">Log In</button></body></html>`,
			true,
		},
		{
			"login input name",
			`<html><body><input name="login" type="submit"></body></html>`,
			true,
		},
		{
			"members page",
			`<html><head><title>Plumbing Pros | Facebook</title></head><body><div role="listitem">Joe</div></body></html>`,
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LooksLikeLoginPage(tc.html); got != tc.want {
				t.Errorf("LooksLikeLoginPage = %v, want %v", got, tc.want)
			}
		})
	}
}
