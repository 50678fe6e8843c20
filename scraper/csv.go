package scraper

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Prospect is one deep-scraped profile.
type Prospect struct {
	Name    string
	URL     string
	Phone   string
	Website string
	About   string
}

// Quality buckets a prospect by contactability: a phone number with no
// website is the lead worth calling first.
func (p Prospect) Quality() string {
	switch {
	case p.Phone != "" && p.Website == "":
		return "HOT"
	case p.Phone != "":
		return "WARM"
	case p.Website == "":
		return "COLD"
	default:
		return "LOW"
	}
}

func (p Prospect) score() int {
	score := 0
	if p.Phone != "" {
		score += 2
	}
	if p.Website == "" {
		score++
	}
	return score
}

var csvHeader = []string{
	"prospect_quality", "name", "phone", "website", "has_website", "about", "url",
}

// WriteProspectsCSV writes the prospects for one group, best leads first,
// and returns the generated filename.
func WriteProspectsCSV(dir, industry, groupName string, prospects []Prospect) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	sorted := append([]Prospect(nil), prospects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score() > sorted[j].score()
	})

	filename := fmt.Sprintf("%s_%s_%s_%s.csv",
		industry, Slugify(groupName), slugSuffix(), time.Now().Format("20060102_150405"))

	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, p := range sorted {
		hasWebsite := "No"
		if p.Website != "" {
			hasWebsite = "Yes"
		}
		row := []string{p.Quality(), p.Name, p.Phone, p.Website, hasWebsite, p.About, p.URL}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return filename, nil
}
