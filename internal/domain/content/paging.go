package content

const DefaultPageSize = 5

type PageSlice struct {
	Items []Post
	Page  int
	Pages int
	Total int
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return page, size
}

// Paginate slices posts into fixed-size pages. Pages past the end are empty.
func Paginate(posts []Post, page, size int) PageSlice {
	page, size = normalizePaging(page, size)

	total := len(posts)
	pages := (total + size - 1) / size

	start := total
	if page <= pages {
		start = (page - 1) * size
	}
	end := start + size
	if end > total {
		end = total
	}
	return PageSlice{
		Items: posts[start:end],
		Page:  page,
		Pages: pages,
		Total: total,
	}
}
