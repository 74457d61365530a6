// Package render turns a normalized listing into an HTML index page.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sagarc03/rcindex"
)

//go:embed templates/listing.html
var listingHTML string

var listingTmpl = template.Must(template.New("listing").Parse(listingHTML))

const timeLayout = "2006-01-02 15:04"

// Crumb is one link in the breadcrumb trail.
type Crumb struct {
	Name string
	URL  string
}

// Row is one entry as shown in the table.
type Row struct {
	Name     string
	URL      string
	IsDir    bool
	Size     string
	Modified string
}

type page struct {
	Title     string
	DarkMode  bool
	Crumbs    []Crumb
	HasParent bool
	ParentURL string
	Rows      []Row
	Summary   string
}

// Listing renders entries as the index page for currentPath.
func Listing(entries []rcindex.ListingEntry, currentPath string, darkMode bool) (string, error) {
	current := strings.Trim(currentPath, "/")

	p := page{
		Title:    "Index of /" + current,
		DarkMode: darkMode,
		Crumbs:   Breadcrumbs(current),
		Rows:     make([]Row, 0, len(entries)),
	}

	if current != "" {
		p.HasParent = true
		p.ParentURL = parentURL(current)
	}

	var files, dirs int
	var total uint64
	for _, e := range entries {
		row := Row{
			Name:  e.Name,
			URL:   e.URL,
			IsDir: e.IsDir,
			Size:  "-",
		}
		if e.IsDir {
			dirs++
		} else {
			files++
			if e.Size >= 0 {
				row.Size = humanize.IBytes(uint64(e.Size))
				total += uint64(e.Size)
			}
		}
		if e.ModTime != nil {
			row.Modified = e.ModTime.UTC().Format(timeLayout)
		}
		p.Rows = append(p.Rows, row)
	}
	p.Summary = fmt.Sprintf("%d folders, %d files, %s", dirs, files, humanize.IBytes(total))

	var b strings.Builder
	if err := listingTmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render listing: %w", err)
	}
	return b.String(), nil
}

// Breadcrumbs returns the trail from the root to current, root first.
func Breadcrumbs(current string) []Crumb {
	crumbs := []Crumb{{Name: "Home", URL: "/"}}

	var prefix string
	for _, seg := range strings.Split(strings.Trim(current, "/"), "/") {
		if seg == "" {
			continue
		}
		crumbs = append(crumbs, Crumb{
			Name: seg,
			URL:  rcindex.EntryURL(prefix, seg, true),
		})
		prefix = path.Join(prefix, seg)
	}
	return crumbs
}

func parentURL(current string) string {
	parent := path.Dir(current)
	if parent == "." || parent == "/" {
		return "/"
	}
	return (&url.URL{Path: "/" + parent + "/"}).EscapedPath()
}
