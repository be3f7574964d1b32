package engine

import (
	"bytes"
	"encoding/gob"

	bolt "go.etcd.io/bbolt"
)

func init() {
	gob.Register(&TextNode{})
	gob.Register(&ElementNode{})
}

var (
	bucketCategories = []byte("categories")
	bucketMeta       = []byte("meta")
	bucketSets       = []byte("sets")
	bucketMaps       = []byte("maps")
)

// categoryRecord is Category in gob-friendly form (Category itself is
// already all-exported fields, so this just documents the on-disk shape).
type categoryRecord = Category

// SaveBrain serializes every loaded category, set, map, and the bot-name
// predicate into a bbolt database at path, so a large corpus can be
// reloaded on the next run without re-parsing AIML.
func SaveBrain(b *Bot, path string) error {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return wrapErr(ErrKindPersistence, "SaveBrain", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCategories); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		catBucket, err := tx.CreateBucket(bucketCategories)
		if err != nil {
			return err
		}

		i := 0
		var walkErr error
		walkTrie(b.trie.root, func(cat *Category) {
			if walkErr != nil {
				return
			}
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(cat); err != nil {
				walkErr = err
				return
			}
			key := make([]byte, 8)
			putUvarint(key, uint64(i))
			if err := catBucket.Put(key, buf.Bytes()); err != nil {
				walkErr = err
				return
			}
			i++
		})
		if walkErr != nil {
			return walkErr
		}

		metaBucket, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := metaBucket.Put([]byte("bot_name"), []byte(b.GetBotPredicate("name"))); err != nil {
			return err
		}

		setsBucket, err := tx.CreateBucketIfNotExists(bucketSets)
		if err != nil {
			return err
		}
		b.setsMu.RLock()
		for name, values := range b.sets {
			var buf bytes.Buffer
			list := make([]string, 0, len(values))
			for v := range values {
				list = append(list, v)
			}
			if err := gob.NewEncoder(&buf).Encode(list); err != nil {
				b.setsMu.RUnlock()
				return err
			}
			if err := setsBucket.Put([]byte(name), buf.Bytes()); err != nil {
				b.setsMu.RUnlock()
				return err
			}
		}
		b.setsMu.RUnlock()

		mapsBucket, err := tx.CreateBucketIfNotExists(bucketMaps)
		if err != nil {
			return err
		}
		b.setsMu.RLock()
		defer b.setsMu.RUnlock()
		for name, entries := range b.maps {
			var buf bytes.Buffer
			if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
				return err
			}
			if err := mapsBucket.Put([]byte(name), buf.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr(ErrKindPersistence, "SaveBrain", err)
}

// RestoreBrain loads a brain previously written by SaveBrain into b,
// rebuilding the pattern trie from its serialized categories.
func RestoreBrain(b *Bot, path string) error {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return wrapErr(ErrKindPersistence, "RestoreBrain", err)
	}
	defer db.Close()

	err = db.View(func(tx *bolt.Tx) error {
		if catBucket := tx.Bucket(bucketCategories); catBucket != nil {
			if err := catBucket.ForEach(func(_, v []byte) error {
				var cat Category
				if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&cat); err != nil {
					return err
				}
				b.Insert(cat)
				return nil
			}); err != nil {
				return err
			}
		}

		if metaBucket := tx.Bucket(bucketMeta); metaBucket != nil {
			if name := metaBucket.Get([]byte("bot_name")); name != nil {
				b.SetBotPredicate("name", string(name))
			}
		}

		if setsBucket := tx.Bucket(bucketSets); setsBucket != nil {
			if err := setsBucket.ForEach(func(k, v []byte) error {
				var list []string
				if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&list); err != nil {
					return err
				}
				b.AddSet(string(k), list)
				return nil
			}); err != nil {
				return err
			}
		}

		if mapsBucket := tx.Bucket(bucketMaps); mapsBucket != nil {
			if err := mapsBucket.ForEach(func(k, v []byte) error {
				var entries map[string]string
				if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&entries); err != nil {
					return err
				}
				b.AddMap(string(k), entries)
				return nil
			}); err != nil {
				return err
			}
		}

		return nil
	})
	return wrapErr(ErrKindPersistence, "RestoreBrain", err)
}

// walkTrie visits every category stored anywhere in the trie, depth-first.
func walkTrie(n *TrieNode, visit func(*Category)) {
	if n == nil {
		return
	}
	if n.category != nil {
		visit(n.category)
	}
	for _, child := range n.children {
		walkTrie(child, visit)
	}
	for _, child := range n.sets {
		walkTrie(child, visit)
	}
	walkTrie(n.underscore, visit)
	walkTrie(n.star, visit)
	walkTrie(n.botName, visit)
	walkTrie(n.thatNode, visit)
	walkTrie(n.topicNode, visit)
}

func putUvarint(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * (7 - i)))
	}
}
