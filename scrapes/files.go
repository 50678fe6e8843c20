// Package scrapes manages the directory of CSV files produced by scrape
// jobs: enumeration with per-file stats, download, and explicit deletion.
package scrapes

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned for filenames with no file behind them.
var ErrNotFound = errors.New("scrape file not found")

// FileInfo describes one CSV output.
type FileInfo struct {
	Filename  string    `json:"filename"`
	Industry  string    `json:"industry"`
	SizeBytes int64     `json:"size_bytes"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
}

// Dir is the filesystem store for scrape outputs.
type Dir struct {
	Path string
}

// List enumerates CSV files newest first with record counts.
func (d Dir) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list scrape dir: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Filename:  entry.Name(),
			Industry:  industryTag(entry.Name()),
			SizeBytes: info.Size(),
			Records:   d.countRecords(entry.Name()),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// Open returns a handle for download. The caller closes it.
func (d Dir) Open(filename string) (*os.File, error) {
	path, err := d.resolve(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes a CSV file.
func (d Dir) Delete(filename string) error {
	path, err := d.resolve(filename)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// resolve rejects anything that would escape the scrape directory.
func (d Dir) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(d.Path, filename), nil
}

// countRecords counts data rows (lines minus the header).
func (d Dir) countRecords(filename string) int {
	f, err := os.Open(filepath.Join(d.Path, filename))
	if err != nil {
		return 0
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	if lines <= 1 {
		return 0
	}
	return lines - 1
}

// industryTag extracts the leading industry segment from the generated
// filename pattern <industry>_<group>_<hex>_<timestamp>.csv.
func industryTag(filename string) string {
	name := strings.TrimSuffix(filename, ".csv")
	if i := strings.IndexByte(name, '_'); i > 0 {
		candidate := name[:i]
		// power_washing spans the first underscore
		if strings.HasPrefix(name, "power_washing_") {
			return "power_washing"
		}
		return candidate
	}
	return "unknown"
}
