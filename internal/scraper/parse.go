package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/klabast/wb-services/kitchencar-kalender/internal/calendar"
)

var nextAppearance = regexp.MustCompile(`次回出店\s*(\d{1,2})月(\d{1,2})日`)

// ParseShops reads every shop card of a market page.
// Relative shop links are resolved against pageURL; ref dates the
// month/day-only appearance strings.
func ParseShops(doc *html.Node, pageURL *url.URL, ref time.Time) ([]calendar.ShopRecord, error) {
	container := findFirst(doc, atom.Div, "row", "g-4")
	if container == nil {
		return nil, ErrNoShops
	}

	var shops []calendar.ShopRecord
	for _, card := range findAll(container, atom.Div, "col-lg-4") {
		shop := calendar.ShopRecord{Name: Unknown, Menu: Unknown, Hours: Unknown, Date: Unknown}

		if title := findFirst(card, atom.Div, "card-title"); title != nil {
			shop.Name = text(title)
		}

		// Three card-text blocks: menu, opening hours, next appearance.
		if texts := findAll(card, atom.Div, "card-text"); len(texts) >= 3 {
			shop.Menu = text(texts[0])
			shop.Hours = text(texts[1])
			shop.Date = NormalizeShopDate(text(texts[2]), ref)
		}

		if link := findFirst(card, atom.A, "text-body"); link != nil {
			if href, ok := attr(link, "href"); ok && pageURL != nil {
				if u, err := pageURL.Parse(href); err == nil {
					shop.URL = u.String()
				}
			}
		}

		shops = append(shops, shop)
	}

	if len(shops) == 0 {
		return nil, ErrNoShops
	}
	return shops, nil
}

// ParseMarketName returns the market title of a page, or Unknown.
func ParseMarketName(doc *html.Node) string {
	h := findFirst(doc, atom.H3, "fw-bold")
	if h == nil {
		return Unknown
	}
	return strings.TrimSpace(strings.ReplaceAll(text(h), marketTitlePrefix, ""))
}

// NormalizeShopDate converts "次回出店M月D日" into a YYYY-MM-DD key.
// The page omits the year: the date is placed in ref's year, or in the
// following year when that would put it more than six months in the past.
// Text that does not match is returned unchanged.
func NormalizeShopDate(s string, ref time.Time) string {
	m := nextAppearance.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])

	year := ref.Year()
	if int(ref.Month())-month > 6 {
		year++
	}
	key, err := calendar.MakeDateKey(year, month, day)
	if err != nil {
		return s
	}
	return key.String()
}

func hasClasses(n *html.Node, classes ...string) bool {
	value, ok := attr(n, "class")
	if !ok {
		return len(classes) == 0
	}
	have := strings.Fields(value)
	for _, want := range classes {
		found := false
		for _, c := range have {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matches(n *html.Node, tag atom.Atom, classes []string) bool {
	return n.Type == html.ElementNode && n.DataAtom == tag && hasClasses(n, classes...)
}

func findFirst(root *html.Node, tag atom.Atom, classes ...string) *html.Node {
	for n := range root.Descendants() {
		if matches(n, tag, classes) {
			return n
		}
	}
	return nil
}

func findAll(root *html.Node, tag atom.Atom, classes ...string) []*html.Node {
	var out []*html.Node
	for n := range root.Descendants() {
		if matches(n, tag, classes) {
			out = append(out, n)
		}
	}
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// text concatenates the trimmed text nodes below n.
func text(n *html.Node) string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(d.Data))
		}
	}
	return b.String()
}
