package index

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"prizma/internal/domain/content"
)

// Save replaces the stored snapshot with coll in one transaction.
func (s *Store) Save(coll *content.Collection) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_ = tx.DeleteBucket(bMeta)
		_ = tx.DeleteBucket(bPosts)
		_ = tx.DeleteBucket(bIdxDate)

		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}
		postsB, err := tx.CreateBucket(bPosts)
		if err != nil {
			return err
		}
		idxDateB, err := tx.CreateBucket(bIdxDate)
		if err != nil {
			return err
		}

		ab, err := json.Marshal(coll.Author())
		if err != nil {
			return err
		}
		if err := metaB.Put(kAuthor, ab); err != nil {
			return err
		}
		if err := metaB.Put(kLoadID, []byte(coll.LoadID())); err != nil {
			return err
		}
		if err := metaB.Put(kLoadedAt, []byte(coll.LoadedAt().UTC().Format(time.RFC3339Nano))); err != nil {
			return err
		}

		for i, p := range coll.Posts() {
			pb, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := postsB.Put([]byte(p.ID), pb); err != nil {
				return err
			}
			if err := idxDateB.Put(makeDateKey(p.Date, i, p.ID), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load rebuilds the stored collection. ErrNotFound means nothing was saved.
func (s *Store) Load() (*content.Collection, error) {
	var (
		posts  []content.Post
		author content.Author
		info   content.CollectionInfo
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		metaB := tx.Bucket(bMeta)
		postsB := tx.Bucket(bPosts)
		idxDateB := tx.Bucket(bIdxDate)
		if metaB == nil || postsB == nil || idxDateB == nil {
			return ErrNotFound
		}

		if v := metaB.Get(kAuthor); v != nil {
			if err := json.Unmarshal(v, &author); err != nil {
				return fmt.Errorf("decode author: %w", err)
			}
		}
		info.LoadID = string(metaB.Get(kLoadID))
		if v := metaB.Get(kLoadedAt); v != nil {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return fmt.Errorf("decode load time: %w", err)
			}
			info.LoadedAt = t
		}

		c := idxDateB.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			id := idFromDateKey(k)
			v := postsB.Get([]byte(id))
			if v == nil {
				continue
			}
			var p content.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode post %s: %w", id, err)
			}
			posts = append(posts, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content.NewCollection(posts, author, info), nil
}
