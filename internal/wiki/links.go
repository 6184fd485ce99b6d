package wiki

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// SupportLinkClass marks elements that open the Citron/Spam dialog.
const SupportLinkClass = "citron-spam-support"

// LinkSet is what ExtractLinks finds in rendered page HTML.
type LinkSet struct {
	// Hostnames of external links, lower case, in order of first appearance.
	Hostnames []string

	// SupportLinks counts elements carrying SupportLinkClass.
	SupportLinks int
}

// ExtractLinks walks rendered page HTML and collects the hostnames of
// external links (anchors with class "external", as MediaWiki renders them)
// and the support-link elements.
func ExtractLinks(content string) (LinkSet, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return LinkSet{}, err
	}

	var set LinkSet
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			classes := strings.Fields(getAttr(n, "class"))
			if slices.Contains(classes, SupportLinkClass) {
				set.SupportLinks++
			}
			if n.Data == "a" && slices.Contains(classes, "external") {
				if host := hostnameOf(getAttr(n, "href")); host != "" && !seen[host] {
					seen[host] = true
					set.Hostnames = append(set.Hostnames, host)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return set, nil
}

// hostnameOf returns the lower-case host of an absolute or
// protocol-relative http(s) URL.
func hostnameOf(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
