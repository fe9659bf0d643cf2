// Package sitemap generates search engine artifacts for the public
// site backed by the catalogue: a sitemap.xml with the static routes
// and a url-list.txt covering the medication price pages.
package sitemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// maxMedicationURLs caps the url list at the pages worth submitting.
const maxMedicationURLs = 5000

type staticRoute struct {
	Path       string
	Priority   string
	ChangeFreq string
}

// Only routes that actually exist in the site. Medication pages go in
// the url list, not the sitemap, so crawlers never see dead entries.
var staticRoutes = []staticRoute{
	{"/", "1.0", "daily"},
	{"/prix-medicaments", "0.9", "weekly"},
	{"/blog", "0.8", "weekly"},
	{"/blog/guide-remboursement-cnss", "0.7", "weekly"},
	{"/blog/guide-remboursement-cnops", "0.7", "weekly"},
	{"/blog/difference-cnss-cnops", "0.7", "weekly"},
	{"/blog/comprendre-ppv-ppm-maroc", "0.7", "weekly"},
	{"/blog/medicament-generique-efficacite", "0.7", "weekly"},
	{"/blog/comprendre-ticket-moderateur", "0.7", "weekly"},
	{"/blog/medicaments-non-remboursables", "0.7", "weekly"},
	{"/blog/lire-ordonnance-maroc", "0.7", "weekly"},
	{"/author", "0.6", "monthly"},
	{"/about-us", "0.5", "monthly"},
	{"/contact-us", "0.5", "monthly"},
	{"/privacy-policy", "0.3", "yearly"},
	{"/terms-of-service", "0.3", "yearly"},
	{"/medical-disclaimer", "0.3", "yearly"},
	{"/editorial-policy", "0.3", "yearly"},
	{"/cookie-preferences", "0.3", "yearly"},
}

// Generate writes sitemap.xml and url-list.txt into outDir. The
// medication list is deduplicated by name and ordered by descending
// public price so the most consulted pages come first.
func Generate(medications []entities.Medication, baseURL, outDir string) error {
	baseURL = strings.TrimRight(baseURL, "/")

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating sitemap directory: %w", err)
	}

	if err := writeSitemap(baseURL, filepath.Join(outDir, "sitemap.xml")); err != nil {
		return err
	}

	return writeURLList(medications, baseURL, filepath.Join(outDir, "url-list.txt"))
}

func writeSitemap(baseURL, path string) error {
	today := time.Now().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"` + "\n")
	b.WriteString(`        xmlns:xhtml="http://www.w3.org/1999/xhtml">` + "\n")

	for _, route := range staticRoutes {
		fullURL := baseURL
		if route.Path != "/" {
			fullURL = baseURL + route.Path
		}

		b.WriteString("  <url>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", fullURL)
		fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", today)
		fmt.Fprintf(&b, "    <changefreq>%s</changefreq>\n", route.ChangeFreq)
		fmt.Fprintf(&b, "    <priority>%s</priority>\n", route.Priority)
		fmt.Fprintf(&b, "    <xhtml:link rel=\"alternate\" hreflang=\"fr\" href=\"%s\"/>\n", fullURL)
		fmt.Fprintf(&b, "    <xhtml:link rel=\"alternate\" hreflang=\"ar\" href=\"%s\"/>\n", fullURL)
		fmt.Fprintf(&b, "    <xhtml:link rel=\"alternate\" hreflang=\"x-default\" href=\"%s\"/>\n", fullURL)
		b.WriteString("  </url>\n")
	}

	b.WriteString("</urlset>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing sitemap: %w", err)
	}
	return nil
}

func writeURLList(medications []entities.Medication, baseURL, path string) error {
	// Deduplicate by name, keeping the record with the highest price
	// so the sort below stays stable across schemes.
	byName := make(map[string]entities.Medication, len(medications))
	for _, med := range medications {
		if med.Name == "" {
			continue
		}
		if prev, seen := byName[med.Name]; !seen || med.Ppv > prev.Ppv {
			byName[med.Name] = med
		}
	}

	unique := make([]entities.Medication, 0, len(byName))
	for _, med := range byName {
		unique = append(unique, med)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].Ppv != unique[j].Ppv {
			return unique[i].Ppv > unique[j].Ppv
		}
		return unique[i].Name < unique[j].Name
	})

	if len(unique) > maxMedicationURLs {
		unique = unique[:maxMedicationURLs]
	}

	urls := []string{
		baseURL,
		baseURL + "/prix-medicaments",
		baseURL + "/faq-cnops",
		baseURL + "/faq-cnss",
	}

	for _, med := range unique {
		slug := reconciler.Slugify(med.Name)
		if slug == "" {
			continue
		}
		urls = append(urls, baseURL+"/prix/"+slug)
	}

	if err := os.WriteFile(path, []byte(strings.Join(urls, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("writing url list: %w", err)
	}
	return nil
}
