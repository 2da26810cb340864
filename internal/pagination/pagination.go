package pagination

import (
	"net/url"
	"strconv"
)

const (
	// EndSize is how many pages are always linked at each end.
	EndSize = 2
	// MidSize is how many pages are linked on each side of the current page.
	MidSize = 2

	// PageParam is the query parameter carrying the page number.
	PageParam = "page"
)

// PageLink is one element of the numbered navigation.
type PageLink struct {
	Label   string
	URL     string
	Current bool
	Dots    bool
	Prev    bool
	Next    bool
}

// Nav is the navigation block rendered above and below the grid.
type Nav struct {
	Show    bool
	Current int
	Total   int
	Prev    int
	Next    int
	PrevURL string
	NextURL string
	Links   []PageLink
}

// ComputeNav builds the navigation for totalPages pages with current as the
// active page. Hrefs keep every query parameter of base and replace the page.
// Show is false when there is at most one page.
func ComputeNav(totalPages, current int, base *url.URL) Nav {
	nav := Nav{Current: current, Total: totalPages}
	if totalPages <= 1 {
		return nav
	}

	nav.Show = true
	nav.Prev = max(1, current-1)
	nav.Next = min(totalPages, current+1)
	nav.PrevURL = PageURL(base, nav.Prev)
	nav.NextURL = PageURL(base, nav.Next)
	nav.Links = numberedLinks(totalPages, current, base)
	return nav
}

func numberedLinks(total, current int, base *url.URL) []PageLink {
	var links []PageLink
	if current > 1 {
		links = append(links, PageLink{Label: "«", URL: PageURL(base, current-1), Prev: true})
	}

	dots := false
	for n := 1; n <= total; n++ {
		switch {
		case n == current:
			links = append(links, PageLink{Label: strconv.Itoa(n), Current: true})
			dots = true
		case n <= EndSize || (n >= current-MidSize && n <= current+MidSize) || n > total-EndSize:
			links = append(links, PageLink{Label: strconv.Itoa(n), URL: PageURL(base, n)})
			dots = true
		case dots:
			links = append(links, PageLink{Label: "…", Dots: true})
			dots = false
		}
	}

	if current < total {
		links = append(links, PageLink{Label: "»", URL: PageURL(base, current+1), Next: true})
	}
	return links
}

// PageURL returns base with its page parameter set to page. Other query
// parameters are preserved.
func PageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
