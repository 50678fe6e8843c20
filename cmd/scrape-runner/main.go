// scrape-runner runs a single scrape job from the command line, without
// the API server or Redis. Useful for testing cookies and selectors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leadscout/scraper"
)

func main() {
	_ = godotenv.Load()

	urls := flag.String("urls", "", "comma-separated Facebook group URLs")
	industry := flag.String("industry", "", "industry tag (see -list-industries)")
	cookies := flag.String("cookies", envOr("FB_COOKIES_FILE", "./fb_cookies.json"), "path to cookie JSON file")
	out := flag.String("out", envOr("SCRAPE_DIR", "./scrape_files"), "output directory for CSV files")
	listIndustries := flag.Bool("list-industries", false, "print supported industries and exit")
	flag.Parse()

	if *listIndustries {
		for _, tag := range scraper.Industries() {
			fmt.Println(tag)
		}
		return
	}
	if *urls == "" {
		fmt.Fprintln(os.Stderr, "missing -urls")
		os.Exit(2)
	}
	if !scraper.ValidIndustry(*industry) {
		fmt.Fprintf(os.Stderr, "unknown industry %q (see -list-industries)\n", *industry)
		os.Exit(2)
	}

	urlList := []string{}
	for _, u := range strings.Split(*urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urlList = append(urlList, u)
		}
	}

	store := scraper.NewMemoryStore(0)
	worker := scraper.NewWorker(store, nil, scraper.Config{
		CookiesFile: *cookies,
		OutputDir:   *out,
	})

	job := scraper.NewJob(urlList, *industry)
	ctx := context.Background()
	if err := store.Create(ctx, job); err != nil {
		log.Fatal(err)
	}

	// Ctrl-C requests a cooperative stop; a second one kills the process.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Printf("🛑 Stop requested, finishing current checkpoint...")
		_ = store.RequestStop(ctx, job.ID)
		signal.Stop(sigs)
	}()

	done := make(chan struct{})
	go func() {
		worker.Run(ctx, job)
		close(done)
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			current, err := store.Get(ctx, job.ID)
			if err != nil {
				continue
			}
			log.Printf("📊 %s: %d scanned, %d matches", current.Status,
				current.MembersScanned, current.MatchesFound)
		case <-done:
			final, err := store.Get(ctx, job.ID)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("✅ %s: %s", final.Status, final.Message)
			for _, f := range final.ResultFiles {
				fmt.Println(f)
			}
			if final.Status == scraper.JobStatusError {
				os.Exit(1)
			}
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
