package files

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apierrors "airmarket/internal/errors"
	"airmarket/pkg/contracts/domain"
)

// ReportFile describes a saved report
type ReportFile struct {
	Name    string              `json:"name"`
	Path    string              `json:"-"`
	Format  domain.ExportFormat `json:"format"`
	Size    int64               `json:"size"`
	ModTime time.Time           `json:"modified_at"`
}

// Catalog lists and resolves the reports saved under one directory.
// Only regular files whose name starts with the configured prefix and whose
// extension belongs to an export format are considered reports.
type Catalog struct {
	dir    string
	prefix string
}

// NewCatalog creates a catalog over dir for reports named prefix_*
func NewCatalog(dir, prefix string) *Catalog {
	return &Catalog{dir: dir, prefix: prefix}
}

// Dir returns the catalog directory
func (c *Catalog) Dir() string {
	return c.dir
}

// Prefix returns the report file name prefix
func (c *Catalog) Prefix() string {
	return c.prefix
}

// List returns the saved reports, newest first. A missing directory is an
// empty catalog.
func (c *Catalog) List() ([]ReportFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ReportFile{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", c.dir, err)
	}

	reports := make([]ReportFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		format, ok := c.match(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, ReportFile{
			Name:    entry.Name(),
			Path:    filepath.Join(c.dir, entry.Name()),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].ModTime.Equal(reports[j].ModTime) {
			return reports[i].ModTime.After(reports[j].ModTime)
		}
		return reports[i].Name > reports[j].Name
	})
	return reports, nil
}

// Latest returns the newest report of a format
func (c *Catalog) Latest(format domain.ExportFormat) (ReportFile, bool, error) {
	reports, err := c.List()
	if err != nil {
		return ReportFile{}, false, err
	}
	for _, r := range reports {
		if r.Format == format {
			return r, true, nil
		}
	}
	return ReportFile{}, false, nil
}

// Resolve looks up a report by file name. Names containing path elements or
// not matching the report naming scheme are rejected.
func (c *Catalog) Resolve(name string) (ReportFile, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ReportFile{}, apierrors.InvalidParameter("name", fmt.Errorf("invalid report name %q", name))
	}
	format, ok := c.match(name)
	if !ok {
		return ReportFile{}, apierrors.InvalidParameter("name", fmt.Errorf("%q is not a report file", name))
	}

	path := filepath.Join(c.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ReportFile{}, apierrors.New(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Report %s not found", name))
		}
		return ReportFile{}, fmt.Errorf("failed to stat report %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return ReportFile{}, apierrors.New(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Report %s not found", name))
	}

	return ReportFile{Name: name, Path: path, Format: format, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Prune deletes all but the newest keep reports and returns how many were
// removed. keep <= 0 disables pruning.
func (c *Catalog) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	reports, err := c.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, r := range reports[min(keep, len(reports)):] {
		if err := os.Remove(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove report %s: %w", r.Name, err)
		}
		removed++
	}
	return removed, nil
}

// match reports whether name follows prefix_*.ext and returns its format
func (c *Catalog) match(name string) (domain.ExportFormat, bool) {
	if c.prefix != "" && !strings.HasPrefix(name, c.prefix+"_") {
		return "", false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, f := range domain.AllFormats {
		if f.Extension() == ext {
			return f, true
		}
	}
	return "", false
}
