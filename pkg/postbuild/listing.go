package postbuild

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/depscan/pkg/errors"
)

// sortByModifiedDesc is the directory-listing query that orders entries by
// modification time, newest first.
const sortByModifiedDesc = "?C=M;O=D"

// Links returns the href of every anchor in an HTML page, in document order.
func Links(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed directory listing")
	}
	var links []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" && a.Val != "" {
					links = append(links, a.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return links, nil
}

// Matching returns the links whose href contains fragment, keeping order.
// Sort-order links of the listing itself (starting with "?") are ignored.
func Matching(links []string, fragment string) []string {
	var out []string
	for _, l := range links {
		if strings.HasPrefix(l, "?") {
			continue
		}
		if strings.Contains(l, fragment) {
			out = append(out, l)
		}
	}
	return out
}

// join appends a relative href to a directory URL ending in "/".
func join(dir, href string) string {
	return withSlash(dir) + strings.TrimPrefix(href, "./")
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
