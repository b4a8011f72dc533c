package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Collection is an immutable, date-descending set of posts from one feed load.
// A reload builds a new Collection instead of mutating this one.
type Collection struct {
	posts    []Post
	byID     map[string]int
	author   Author
	loadedAt time.Time
	loadID   string
	hash     string
}

type CollectionInfo struct {
	LoadedAt time.Time
	LoadID   string
}

func NewCollection(posts []Post, author Author, info CollectionInfo) *Collection {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	byID := make(map[string]int, len(sorted))
	for i, p := range sorted {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = i
		}
	}
	return &Collection{
		posts:    sorted,
		byID:     byID,
		author:   author,
		loadedAt: info.LoadedAt,
		loadID:   info.LoadID,
		hash:     contentHash(sorted, author),
	}
}

// Posts returns the sorted posts. Callers must not modify the slice.
func (c *Collection) Posts() []Post {
	if c == nil {
		return nil
	}
	return c.posts
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.posts)
}

func (c *Collection) Author() Author {
	if c == nil {
		return Author{}
	}
	return c.author
}

func (c *Collection) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

func (c *Collection) LoadID() string {
	if c == nil {
		return ""
	}
	return c.loadID
}

func (c *Collection) Get(id string) (Post, bool) {
	if c == nil {
		return Post{}, false
	}
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Post{}, false
	}
	return c.posts[i], true
}

func (c *Collection) Latest(n int) []Post {
	posts := c.Posts()
	if n < 0 || n > len(posts) {
		n = len(posts)
	}
	return posts[:n]
}

func (c *Collection) ByTag(tag string) []Post {
	var out []Post
	for _, p := range c.Posts() {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// ByMonth filters by date prefix, so "2024-01" matches every January 2024 post.
func (c *Collection) ByMonth(ym string) []Post {
	var out []Post
	for _, p := range c.Posts() {
		if strings.HasPrefix(p.Date, ym) {
			out = append(out, p)
		}
	}
	return out
}

// Hash identifies the posts and author, independent of when or how often
// they were loaded. Two loads of an unchanged feed hash the same.
func (c *Collection) Hash() string {
	if c == nil {
		return ""
	}
	return c.hash
}

func contentHash(posts []Post, author Author) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(author)
	for _, p := range posts {
		_ = enc.Encode(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
