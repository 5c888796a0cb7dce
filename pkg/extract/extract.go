// Package extract turns documentation files and URLs into (origin,
// text) source pairs for the corpus loader. HTML is reduced to plain
// text before the pipeline ever sees it, whether it came from disk or
// over HTTP.
package extract

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/docforge/models"
	"github.com/dtnitsch/docforge/pkg/fetcher"
)

// Sources resolves a --source value into source pairs. The value may be
// a single file, an http(s) URL, a directory (walked non-recursively,
// sorted for a deterministic corpus order), or a comma-separated list
// mixing files and URLs. Unreadable entries are skipped with a warning,
// matching the per-page load policy.
func Sources(sourceArg string) ([]models.Source, []string, error) {
	paths, err := expand(sourceArg)
	if err != nil {
		return nil, nil, err
	}

	var f *fetcher.Fetcher
	var sources []models.Source
	var warnings []string
	for _, path := range paths {
		var text string
		var err error
		if isRemote(path) {
			if f == nil {
				f = fetcher.NewFetcher()
			}
			text, err = fetchSource(f, path)
		} else {
			text, err = readSource(path)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", path, err))
			continue
		}
		sources = append(sources, models.Source{Origin: path, Text: text})
	}
	return sources, warnings, nil
}

// hasChrome guesses whether a page carries site furniture worth
// stripping. Bare documentation exports skip the readability pass, which
// can eat tables on minimal markup.
func hasChrome(html string) bool {
	lower := strings.ToLower(html)
	for _, tag := range []string{"<nav", "<header", "<aside", "<footer"} {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func fetchSource(f *fetcher.Fetcher, rawURL string) (string, error) {
	body, err := f.Fetch(rawURL)
	if err != nil {
		return "", err
	}
	return htmlToText(rawURL, string(body))
}

func expand(sourceArg string) ([]string, error) {
	sourceArg = strings.TrimSpace(sourceArg)
	if sourceArg == "" {
		return nil, fmt.Errorf("no source provided")
	}

	if strings.Contains(sourceArg, ",") {
		var paths []string
		for _, p := range strings.Split(sourceArg, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				paths = append(paths, p)
			}
		}
		return paths, nil
	}

	if isRemote(sourceArg) {
		return []string{sourceArg}, nil
	}

	info, err := os.Stat(sourceArg)
	if err != nil {
		// Same per-page policy as a list entry: skip with a warning and
		// let the loader raise CorpusEmptyError if nothing survives.
		return []string{sourceArg}, nil
	}
	if !info.IsDir() {
		return []string{sourceArg}, nil
	}

	entries, err := os.ReadDir(sourceArg)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".md", ".markdown", ".txt", ".rst", ".html", ".htm":
			paths = append(paths, filepath.Join(sourceArg, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return htmlToText(path, string(data))
	default:
		return string(data), nil
	}
}

// htmlToText distills an HTML page to plain text. Pages with navigation
// chrome get a readability pass first; goquery then walks the distilled
// content so code blocks survive as fenced blocks and tables as pipe
// rows, which is what the classifier rules expect.
func htmlToText(path, html string) (string, error) {
	pageURL, _ := url.Parse(path)
	if pageURL == nil || pageURL.Scheme == "" {
		pageURL, _ = url.Parse("file://" + filepath.ToSlash(path))
	}

	content := html
	if hasChrome(html) {
		p := readability.NewParser()
		article, err := p.Parse(strings.NewReader(html), pageURL)
		if err == nil && strings.TrimSpace(article.Content) != "" {
			content = article.Content
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	doc.Find("h1,h2,h3,h4,p,li,pre,table").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "pre":
			code := strings.TrimRight(s.Text(), "\n")
			if code == "" {
				return
			}
			sb.WriteString("```\n")
			sb.WriteString(code)
			sb.WriteString("\n```\n\n")
		case "table":
			s.Find("tr").Each(func(_ int, row *goquery.Selection) {
				var cells []string
				row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
					cells = append(cells, strings.TrimSpace(cell.Text()))
				})
				if len(cells) > 0 {
					sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
				}
			})
			sb.WriteString("\n")
		case "li":
			text := normalizeText(s.Text())
			if text != "" {
				sb.WriteString("- " + text + "\n")
			}
		default:
			text := normalizeText(s.Text())
			if text != "" {
				sb.WriteString(text + "\n\n")
			}
		}
	})

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text content extracted")
	}
	return out, nil
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
