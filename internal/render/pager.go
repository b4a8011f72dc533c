package render

// MaxPageButtons caps the numbered buttons of a pager, ellipses excluded.
const MaxPageButtons = 7

// PageLink is one pager item. Gap items render as an ellipsis.
type PageLink struct {
	Number  int
	Link    string
	Current bool
	Gap     bool
}

type Pager struct {
	Prev  string
	Next  string
	Pages []PageLink
}

func (p Pager) Empty() bool { return len(p.Pages) == 0 }

// PageNumbers lists the page numbers to show, 0 marking an ellipsis. With
// more pages than MaxPageButtons the first and last page are always shown
// together with a window around the current one.
func PageNumbers(page, pages int) []int {
	if pages <= 1 {
		return nil
	}
	if pages <= MaxPageButtons {
		out := make([]int, 0, pages)
		for i := 1; i <= pages; i++ {
			out = append(out, i)
		}
		return out
	}

	start := max(2, page-2)
	end := min(pages-1, page+2)
	if page <= 4 {
		start, end = 2, 5
	}
	if page >= pages-3 {
		start, end = pages-4, pages-1
	}

	out := []int{1}
	if start > 2 {
		out = append(out, 0)
	}
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	if end < pages-1 {
		out = append(out, 0)
	}
	return append(out, pages)
}

// NewPager builds pager links with link(n) giving the URL of page n.
func NewPager(page, pages int, link func(n int) string) Pager {
	nums := PageNumbers(page, pages)
	if nums == nil {
		return Pager{}
	}
	var p Pager
	if page > 1 {
		p.Prev = link(page - 1)
	}
	if page < pages {
		p.Next = link(page + 1)
	}
	for _, n := range nums {
		if n == 0 {
			p.Pages = append(p.Pages, PageLink{Gap: true})
			continue
		}
		p.Pages = append(p.Pages, PageLink{Number: n, Link: link(n), Current: n == page})
	}
	return p
}
