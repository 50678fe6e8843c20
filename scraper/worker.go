package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"leadscout/eventbus"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config tunes the scrape worker. Zero values fall back to defaults that
// match what Facebook tolerates without rate limiting.
type Config struct {
	CookiesFile    string
	OutputDir      string
	ExecutablePath string
	ScrollDelay    time.Duration
	ProfileDelay   time.Duration
	NavTimeout     time.Duration
	MaxScrolls     int
	Patience       int
}

func (c *Config) applyDefaults() {
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = 800 * time.Millisecond
	}
	if c.ProfileDelay <= 0 {
		c.ProfileDelay = 1500 * time.Millisecond
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 60 * time.Second
	}
	if c.MaxScrolls <= 0 {
		c.MaxScrolls = 50000
	}
	if c.Patience <= 0 {
		c.Patience = 20
	}
}

// Worker runs scrape jobs against a browser. One goroutine per job; all
// shared state goes through the Store.
type Worker struct {
	store       Store
	events      *eventbus.Bus
	cfg         Config
	installOnce sync.Once
}

func NewWorker(store Store, events *eventbus.Bus, cfg Config) *Worker {
	cfg.applyDefaults()
	return &Worker{store: store, events: events, cfg: cfg}
}

// Run executes the job to completion and records the outcome in the store.
// Errors are not returned: they become the job's terminal status.
func (w *Worker) Run(ctx context.Context, job *Job) {
	w.events.PublishJobEvent(ctx, eventbus.JobEvent{
		Type: eventbus.EventJobStarted, JobID: job.ID, Industry: job.Industry,
	})

	failed, err := w.scrape(ctx, job)
	switch {
	case err == errStopRequested:
		job.Finish(JobStatusStopped, "Stopped by user request.")
	case err != nil:
		log.Printf("❌ Job %s failed: %v", job.ID, err)
		job.Finish(JobStatusError, err.Error())
	case failed > 0:
		job.Finish(JobStatusCompleted, fmt.Sprintf(
			"Completed with errors: %d of %d groups failed. Found %d leads.",
			failed, len(job.URLs), job.MatchesFound))
	default:
		job.Finish(JobStatusCompleted, fmt.Sprintf(
			"Completed! Found %d leads across %d groups.", job.MatchesFound, len(job.URLs)))
	}
	if uerr := w.store.Update(ctx, job); uerr != nil {
		log.Printf("⚠️ Failed to record final status for job %s: %v", job.ID, uerr)
	}

	w.events.PublishJobEvent(ctx, eventbus.JobEvent{
		Type:           eventbus.EventTypeForStatus(job.Status),
		JobID:          job.ID,
		Industry:       job.Industry,
		MembersScanned: job.MembersScanned,
		MatchesFound:   job.MatchesFound,
		Message:        job.Message,
	})
}

// errStopRequested is the sentinel for cooperative cancellation.
var errStopRequested = fmt.Errorf("stop requested")

// errLoginRequired aborts the whole job: once the cookies are dead, every
// remaining group would hit the same wall.
var errLoginRequired = errors.New("facebook login required; cookies have expired")

func (w *Worker) scrape(ctx context.Context, job *Job) (int, error) {
	jar := CookieJar{Path: w.cfg.CookiesFile}
	cookies, err := jar.Load()
	if err != nil {
		return 0, err
	}
	if len(cookies) == 0 {
		return 0, fmt.Errorf("no Facebook cookies configured; add cookies in settings")
	}

	w.installOnce.Do(func() {
		if ierr := pw.Install(&pw.RunOptions{SkipInstallBrowsers: true}); ierr != nil {
			log.Printf("⚠️ Playwright driver installation warning: %v", ierr)
		}
	})

	pwInstance, err := pw.Run()
	if err != nil {
		return 0, fmt.Errorf("failed to start Playwright: %w", err)
	}
	defer pwInstance.Stop()

	launchOptions := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
		Args: []string{
			"--no-sandbox", "--disable-setuid-sandbox", "--disable-gpu",
			"--disable-dev-shm-usage",
		},
	}
	if path := w.browserExecutable(); path != "" {
		launchOptions.ExecutablePath = pw.String(path)
		log.Printf("🚀 Using browser executable: %s", path)
	}

	browser, err := pwInstance.Chromium.Launch(launchOptions)
	if err != nil {
		return 0, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	browserCtx, err := browser.NewContext(pw.BrowserNewContextOptions{
		Viewport:  &pw.Size{Width: 1920, Height: 1080},
		UserAgent: pw.String(desktopUserAgent),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create browser context: %w", err)
	}
	if err := browserCtx.AddCookies(ForPlaywright(cookies)); err != nil {
		return 0, fmt.Errorf("failed to restore cookies: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return 0, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	job.Status = JobStatusRunning
	return w.runGroups(ctx, job, func(url string) error {
		return w.scrapeGroup(ctx, page, job, url)
	})
}

// runGroups visits each group URL, isolating per-group failures: a group
// that fails to scrape is logged and skipped so one bad group does not
// cost the rest of the run. Stop requests and login walls abort the job.
func (w *Worker) runGroups(ctx context.Context, job *Job, scrapeOne func(url string) error) (int, error) {
	failed := 0
	for idx, url := range job.URLs {
		job.CurrentURL = url
		job.Message = fmt.Sprintf("Processing group %d/%d", idx+1, len(job.URLs))
		if err := w.checkpoint(ctx, job); err != nil {
			return failed, err
		}
		if err := scrapeOne(url); err != nil {
			if errors.Is(err, errStopRequested) || errors.Is(err, errLoginRequired) {
				return failed, err
			}
			log.Printf("⚠️ Job %s: group %s failed: %v", job.ID, url, err)
			failed++
		}
	}
	return failed, nil
}

func (w *Worker) scrapeGroup(ctx context.Context, page pw.Page, job *Job, url string) error {
	membersURL := strings.TrimRight(url, "/") + "/members"
	log.Printf("🔎 Job %s: navigating to %s", job.ID, membersURL)
	if _, err := page.Goto(membersURL, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(float64(w.cfg.NavTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("navigate to %s: %w", membersURL, err)
	}
	time.Sleep(3 * time.Second)

	content, err := page.Content()
	if err == nil && LooksLikeLoginPage(content) {
		return errLoginRequired
	}

	groupName := "unknown_group"
	if title, terr := page.Title(); terr == nil {
		groupName = groupNameFromTitle(title)
	}
	log.Printf("📋 Job %s: scraping group %q", job.ID, groupName)

	matches, err := w.collectMembers(ctx, page, job)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	job.Stage = "deep_scraping"
	job.Message = fmt.Sprintf("Deep scraping %d profiles from %s", len(matches), groupName)
	if err := w.checkpoint(ctx, job); err != nil {
		return err
	}

	prospects, err := w.deepScrape(ctx, page, job, matches)
	if err != nil {
		return err
	}
	if len(prospects) == 0 {
		return nil
	}

	filename, err := WriteProspectsCSV(w.cfg.OutputDir, job.Industry, groupName, prospects)
	if err != nil {
		return fmt.Errorf("write results for %s: %w", groupName, err)
	}
	job.ResultFiles = append(job.ResultFiles, filename)
	return w.checkpoint(ctx, job)
}

// collectMembers is stage 1: scroll the members list until it stops
// yielding new cards, qualifying prospects as they appear.
func (w *Worker) collectMembers(ctx context.Context, page pw.Page, job *Job) ([]memberCard, error) {
	job.Stage = "collecting"
	seen := make(map[string]bool)
	var matches []memberCard
	noNew := 0

	for scroll := 0; scroll < w.cfg.MaxScrolls && noNew < w.cfg.Patience; scroll++ {
		if err := w.checkpoint(ctx, job); err != nil {
			return nil, err
		}

		result, err := page.Evaluate(memberCardsJS)
		if err != nil {
			return nil, fmt.Errorf("extract member cards: %w", err)
		}

		newFound := 0
		for _, card := range parseMemberCards(result) {
			if seen[card.Href] {
				continue
			}
			seen[card.Href] = true
			newFound++
			job.MembersScanned++
			if QualifiedProspect(card.Name+" "+card.Context, job.Industry) {
				matches = append(matches, card)
				job.MatchesFound++
			}
		}
		if newFound == 0 {
			noNew++
		} else {
			noNew = 0
		}

		job.Message = fmt.Sprintf("Scanning... %d prospects from %d members",
			job.MatchesFound, job.MembersScanned)

		if _, err := page.Evaluate(scrollJS); err != nil {
			return nil, fmt.Errorf("scroll members list: %w", err)
		}
		time.Sleep(w.cfg.ScrollDelay)
	}

	log.Printf("✅ Job %s: stage 1 done, %d scanned, %d matches",
		job.ID, job.MembersScanned, job.MatchesFound)
	return matches, nil
}

// deepScrape is stage 2: visit each qualified profile and pull contact
// details. Extraction failures keep the prospect with empty fields rather
// than dropping it.
func (w *Worker) deepScrape(ctx context.Context, page pw.Page, job *Job, matches []memberCard) ([]Prospect, error) {
	prospects := make([]Prospect, 0, len(matches))
	for idx, match := range matches {
		if err := w.checkpoint(ctx, job); err != nil {
			return nil, err
		}
		job.Message = fmt.Sprintf("Scraping profile %d/%d", idx+1, len(matches))

		p := Prospect{Name: firstLine(match.Name), URL: profileURL(match.Href)}
		if _, err := page.Goto(p.URL, pw.PageGotoOptions{
			WaitUntil: pw.WaitUntilStateDomcontentloaded,
			Timeout:   pw.Float(30000),
		}); err != nil {
			log.Printf("⚠️ Job %s: profile %s unreachable: %v", job.ID, p.URL, err)
			prospects = append(prospects, p)
			continue
		}
		time.Sleep(2 * time.Second)

		if body, err := page.Evaluate(bodyTextJS); err == nil {
			p.Phone = extractPhone(asString(body))
		}
		if links, err := page.Evaluate(externalLinksJS); err == nil {
			p.Website = pickWebsite(parseStringList(links))
		}
		if about, err := page.Evaluate(aboutJS); err == nil {
			p.About = formatAbout(about)
		}

		prospects = append(prospects, p)
		time.Sleep(w.cfg.ProfileDelay)
	}
	return prospects, nil
}

// checkpoint flushes progress to the store and honors stop requests. It
// is the only cancellation point, so stops take effect between scroll
// rounds and between profiles, never mid-navigation.
func (w *Worker) checkpoint(ctx context.Context, job *Job) error {
	if err := ctx.Err(); err != nil {
		return errStopRequested
	}
	stopped, err := w.store.StopRequested(ctx, job.ID)
	if err == nil && stopped {
		return errStopRequested
	}
	return w.store.Update(ctx, job)
}

// browserExecutable finds chromium for environments where Playwright's own
// download is unavailable (containers with a distro chromium).
func (w *Worker) browserExecutable() string {
	if w.cfg.ExecutablePath != "" {
		return w.cfg.ExecutablePath
	}
	if env := os.Getenv("PLAYWRIGHT_EXECUTABLE_PATH"); env != "" {
		return env
	}
	for _, p := range []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func formatAbout(result interface{}) string {
	m, ok := result.(map[string]interface{})
	if !ok {
		return ""
	}
	followers := asString(m["followers"])
	bio := asString(m["bio"])
	switch {
	case followers != "" && bio != "":
		return followers + " | " + bio
	case followers != "":
		return followers
	default:
		return bio
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i > -1 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
