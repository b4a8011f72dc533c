package content

import (
	"fmt"
	"testing"
)

func makePosts(n int) []Post {
	posts := make([]Post, n)
	for i := range posts {
		posts[i] = Post{ID: fmt.Sprint(i + 1), Date: "2024-01-01"}
	}
	return posts
}

func TestPaginate(t *testing.T) {
	posts := makePosts(12)

	cases := []struct {
		page      int
		wantPage  int
		wantItems int
	}{
		{1, 1, 5},
		{2, 2, 5},
		{3, 3, 2},
		{4, 4, 0},
		{0, 1, 5},
		{-3, 1, 5},
	}
	for _, c := range cases {
		got := Paginate(posts, c.page, 5)
		if got.Page != c.wantPage {
			t.Errorf("page %d: Page = %d, want %d", c.page, got.Page, c.wantPage)
		}
		if len(got.Items) != c.wantItems {
			t.Errorf("page %d: %d items, want %d", c.page, len(got.Items), c.wantItems)
		}
		if got.Pages != 3 || got.Total != 12 {
			t.Errorf("page %d: pages=%d total=%d", c.page, got.Pages, got.Total)
		}
	}

	if first := Paginate(posts, 3, 5).Items[0].ID; first != "11" {
		t.Errorf("page 3 starts at %s, want 11", first)
	}
}

func TestPaginateHugePage(t *testing.T) {
	got := Paginate(makePosts(3), 1<<62, 5)
	if len(got.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(got.Items))
	}
}

func TestPaginateDefaultSize(t *testing.T) {
	got := Paginate(makePosts(7), 1, 0)
	if len(got.Items) != DefaultPageSize {
		t.Fatalf("got %d items, want %d", len(got.Items), DefaultPageSize)
	}
}
