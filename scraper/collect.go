package scraper

import (
	"regexp"
	"strings"
)

// memberCardsJS pulls member cards out of the group members list. Facebook
// renders each member as a listitem holding /user/ profile links; the first
// link with text is the display name and the card text gives work/bio
// context for qualification.
const memberCardsJS = `() => {
	const results = [];
	document.querySelectorAll('[role="listitem"]').forEach(item => {
		const profileLinks = item.querySelectorAll('a[href*="/user/"]');
		if (profileLinks.length === 0) return;
		const href = profileLinks[0].href;
		let name = '';
		for (const link of profileLinks) {
			if (link.innerText && link.innerText.trim().length > 0) {
				name = link.innerText.trim();
				break;
			}
		}
		if (href && name) {
			results.push({
				href: href,
				name: name,
				context: (item.innerText || '').substring(0, 500)
			});
		}
	});
	return results;
}`

// externalLinksJS decodes the l.facebook.com redirect wrappers profiles use
// for off-site links.
const externalLinksJS = `() => {
	const links = [];
	document.querySelectorAll('a[href*="l.facebook.com/l.php"]').forEach(a => {
		try {
			const url = new URL(a.href);
			const decoded = decodeURIComponent(url.searchParams.get('u') || '');
			if (decoded) links.push(decoded);
		} catch (e) {}
	});
	return links;
}`

// aboutJS extracts the follower count and intro line from a profile page.
const aboutJS = `() => {
	const text = document.body.innerText || '';
	let followers = '';
	let bio = '';
	const followerPatterns = [
		/([\d,\.]+[KkMm]?)\s*followers/i,
		/Followed by ([\d,\.]+[KkMm]?)\s*people/i,
		/([\d,\.]+)\s*people follow/i,
	];
	for (const pattern of followerPatterns) {
		const match = text.match(pattern);
		if (match) { followers = match[1] + ' followers'; break; }
	}
	const bioPatterns = [/Intro\n([^\n]+)/i, /About\n([^\n]+)/i, /Bio\n([^\n]+)/i];
	for (const pattern of bioPatterns) {
		const match = text.match(pattern);
		if (match) { bio = match[1].trim().substring(0, 150); break; }
	}
	if (!bio) {
		const metaDesc = document.querySelector('meta[name="description"]');
		if (metaDesc && metaDesc.content) bio = metaDesc.content.substring(0, 150);
	}
	return { followers: followers, bio: bio };
}`

const bodyTextJS = `() => document.body.innerText || ''`

const scrollJS = `() => window.scrollBy(0, 800)`

// memberCard is one scanned entry from the members list.
type memberCard struct {
	Href    string
	Name    string
	Context string
}

// parseMemberCards converts a page.Evaluate result into member cards,
// dropping entries whose "name" is really a UI control caption.
func parseMemberCards(result interface{}) []memberCard {
	items, ok := result.([]interface{})
	if !ok {
		return nil
	}
	cards := make([]memberCard, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		card := memberCard{
			Href:    asString(m["href"]),
			Name:    asString(m["name"]),
			Context: asString(m["context"]),
		}
		if card.Href == "" || len(card.Name) < 2 {
			continue
		}
		switch strings.ToLower(card.Name) {
		case "see more", "view profile", "message", "add friend":
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

func parseStringList(result interface{}) []string {
	items, ok := result.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\+1[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
}

// extractPhone returns the first US-format phone number in the text.
func extractPhone(text string) string {
	for _, re := range phonePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

var socialDomains = []string{
	"facebook.com", "instagram.com", "twitter.com", "youtube.com",
	"tiktok.com", "linkedin.com",
}

// pickWebsite returns the first external link that is not another social
// network, with tracking parameters stripped.
func pickWebsite(links []string) string {
	for _, link := range links {
		lower := strings.ToLower(link)
		social := false
		for _, d := range socialDomains {
			if strings.Contains(lower, d) {
				social = true
				break
			}
		}
		if social {
			continue
		}
		if i := strings.IndexByte(link, '?'); i > -1 {
			link = link[:i]
		}
		return link
	}
	return ""
}

var userIDPattern = regexp.MustCompile(`/user/(\d+)`)

// profileURL rewrites a group-scoped member link into the direct profile
// page, which exposes contact info the member popup hides.
func profileURL(groupHref string) string {
	if m := userIDPattern.FindStringSubmatch(groupHref); len(m) > 1 {
		return "https://www.facebook.com/profile.php?id=" + m[1]
	}
	return groupHref
}

// groupNameFromTitle strips the "| Facebook" suffix from a page title.
func groupNameFromTitle(title string) string {
	if i := strings.IndexByte(title, '|'); i > -1 {
		title = title[:i]
	}
	name := strings.TrimSpace(title)
	if name == "" {
		return "unknown_group"
	}
	return name
}
