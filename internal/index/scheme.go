package index

var (
	bMeta    = []byte("meta")     // fixed keys below -> value
	bPosts   = []byte("posts")    // post id -> JSON
	bIdxDate = []byte("idx_date") // invDate + pos + 0x00 + id -> 1

	kAuthor   = []byte("author")
	kLoadID   = []byte("load_id")
	kLoadedAt = []byte("loaded_at")
)
