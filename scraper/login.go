package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

// LooksLikeLoginPage inspects rendered page HTML for the markers of the
// Facebook login wall: a login title, a form posting to a login action,
// or the classic login button ids.
func LooksLikeLoginPage(pageHTML string) bool {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		// Unparseable content; fall back to raw markers.
		lower := strings.ToLower(pageHTML)
		return strings.Contains(lower, `id="loginbutton"`) || strings.Contains(lower, `name="login"`)
	}

	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil {
					title := strings.ToLower(n.FirstChild.Data)
					if strings.Contains(title, "log in") || strings.Contains(title, "login") {
						found = true
						return
					}
				}
			case "form":
				for _, a := range n.Attr {
					if a.Key == "action" && strings.Contains(strings.ToLower(a.Val), "login") {
						found = true
						return
					}
				}
			case "input", "button":
				for _, a := range n.Attr {
					if (a.Key == "id" && a.Val == "loginbutton") || (a.Key == "name" && a.Val == "login") {
						found = true
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}
