package page

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// RequiredElementIDs are the elements the gallery runtime looks up by id.
var RequiredElementIDs = []string{
	"imginfo",
	"imgarea",
	"linksarea",
	"sidebar",
	"zoomindicator",
	"noimageswarning",
}

// MissingElementIDs parses a page template and returns the required gallery
// element ids it does not contain, in RequiredElementIDs order.
func MissingElementIDs(tmpl string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(tmpl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	found := make(map[string]bool)
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "id" {
					found[attr.Val] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	var missing []string
	for _, id := range RequiredElementIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
