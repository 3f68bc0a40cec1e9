// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IndexListID is the id of the table rendered by Apache mod_autoindex.
const IndexListID = "indexlist"

// ListChildren parses an Apache auto-index page and returns the absolute URL
// of every "#indexlist > tbody > tr > td.indexcolname > a" anchor, in
// document order. Anchors whose href is missing or cannot be resolved yield
// "" so positions stay stable; the first entry is the parent directory.
func ListChildren(indexURL string, body io.Reader) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", indexURL, err)
	}

	table := findByID(doc, IndexListID)
	if table == nil {
		return nil, nil
	}

	var links []string
	for tbody := range childElements(table, atom.Tbody) {
		for tr := range childElements(tbody, atom.Tr) {
			for td := range childElements(tr, atom.Td) {
				if !hasClass(td, "indexcolname") {
					continue
				}
				for a := range childElements(td, atom.A) {
					links = append(links, resolveHref(base, a))
				}
			}
		}
	}
	return links, nil
}

// SkipParent drops the parent-directory entry and blank links.
func SkipParent(entries []string) []string {
	if len(entries) <= 1 {
		return nil
	}
	out := make([]string, 0, len(entries)-1)
	for _, e := range entries[1:] {
		if IsValid(e) {
			out = append(out, e)
		}
	}
	return out
}

// LastSegment returns the final path segment of a URL, ignoring a trailing slash.
func LastSegment(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		rawURL = u.Path
	}
	rawURL = strings.TrimSuffix(rawURL, "/")
	return rawURL[strings.LastIndex(rawURL, "/")+1:]
}

func resolveHref(base *url.URL, a *html.Node) string {
	for _, attr := range a.Attr {
		if attr.Key != "href" {
			continue
		}
		href := strings.TrimSpace(attr.Val)
		if href == "" {
			return ""
		}
		ref, err := url.Parse(href)
		if err != nil {
			return ""
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func childElements(n *html.Node, a atom.Atom) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}
