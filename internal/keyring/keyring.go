// Package keyring stores named nonigma keys in a BoltDB file so they can be
// referred to by name instead of being typed out each time.
package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nonigma/internal/cipher"
	"nonigma/internal/key"

	"go.etcd.io/bbolt"
)

var (
	bucketKeys = []byte("keys")
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrInvalidName = errors.New("invalid key name")
)

var db *bbolt.DB

func Open(config Config) {
	if db != nil {
		panic("keyring: already opened")
	}
	if config.File == "" {
		panic("keyring: file is required")
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		panic(fmt.Errorf("keyring: create db dir: %w", err))
	}

	db, err = bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: 30 * time.Second,
	})
	if err != nil {
		panic(fmt.Errorf("keyring: open bbolt db: %w", err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKeys)
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", bucketKeys, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		db = nil
		panic(fmt.Errorf("keyring: initialize buckets: %w", err))
	}
}

func Opened() bool {
	return db != nil
}

func Close() error {
	if db == nil {
		panic("keyring: not opened")
	}

	err := db.Close()
	db = nil
	if err != nil {
		return fmt.Errorf("keyring: close bbolt db: %w", err)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func Closer() io.Closer {
	return closerFunc(Close)
}

// Entry is a stored key with its usage record.
type Entry struct {
	Key      key.File  `json:"key"`
	Created  time.Time `json:"created"`
	LastUsed time.Time `json:"last_used,omitzero"`
	Uses     int       `json:"uses"`
}

// CipherKey returns the stored key.
func (e Entry) CipherKey() (cipher.Key, error) {
	return e.Key.Key()
}

func ValidName(name string) bool {
	if len(name) == 0 || len(name) > 30 {
		return false
	}

	if strings.ContainsFunc(name, func(c rune) bool {
		return c != '_' && c != '-' && c != '.' && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') && (c < '0' || c > '9')
	}) {
		return false
	}

	return true
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("keyring: must: %w", err))
	}
	return v
}

func modify(name string, modify func(*Entry, bool) (*Entry, error)) error {
	if db == nil {
		panic("keyring: not opened")
	}
	if !ValidName(name) {
		return fmt.Errorf("keyring: %q: %w", name, ErrInvalidName)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeys)
		if b == nil {
			return fmt.Errorf("keyring: keys bucket not found")
		}

		var entry *Entry
		exists := false

		data := b.Get([]byte(name))
		if data == nil {
			entry = &Entry{}
		} else {
			err := json.Unmarshal(data, &entry)
			if err != nil {
				return fmt.Errorf("keyring: unmarshal entry for %q: %w", name, err)
			}
			exists = true
		}

		var err error
		if entry, err = modify(entry, exists); err != nil {
			return fmt.Errorf("keyring: modify entry for %q: %w", name, err)
		}

		if entry == nil {
			if !exists {
				return nil
			}
			return b.Delete([]byte(name))
		}
		return b.Put([]byte(name), must(json.Marshal(entry)))
	})
}

// Put stores k under name, replacing any key already stored there.
func Put(name string, k cipher.Key, now time.Time) error {
	if err := cipher.ValidateKey(k.Wheels); err != nil {
		return fmt.Errorf("keyring: %q: %w", name, err)
	}

	return modify(name, func(entry *Entry, exists bool) (*Entry, error) {
		if !exists {
			entry.Created = now
		}
		entry.Key = key.FromKey(k)
		return entry, nil
	})
}

// Touch records a use of the key stored under name.
func Touch(name string, now time.Time) error {
	return modify(name, func(entry *Entry, exists bool) (*Entry, error) {
		if !exists {
			return nil, ErrNotFound
		}
		entry.LastUsed = now
		entry.Uses++
		return entry, nil
	})
}

// Delete removes the key stored under name.
func Delete(name string) error {
	return modify(name, func(_ *Entry, exists bool) (*Entry, error) {
		if !exists {
			return nil, ErrNotFound
		}
		return nil, nil
	})
}

// Get returns the entry stored under name.
func Get(name string) (Entry, error) {
	if db == nil {
		panic("keyring: not opened")
	}

	var entry Entry
	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeys)
		if b == nil {
			return fmt.Errorf("keyring: keys bucket not found")
		}

		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("keyring: %q: %w", name, ErrNotFound)
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("keyring: unmarshal entry for %q: %w", name, err)
		}
		return nil
	})
	return entry, err
}

// Lookup returns the key stored under name and records the use.
func Lookup(name string, now time.Time) (cipher.Key, error) {
	entry, err := Get(name)
	if err != nil {
		return cipher.Key{}, err
	}
	k, err := entry.CipherKey()
	if err != nil {
		return cipher.Key{}, fmt.Errorf("keyring: %q: %w", name, err)
	}
	if err := Touch(name, now); err != nil {
		return cipher.Key{}, err
	}
	return k, nil
}

// Names returns the names of all stored keys in byte order.
func Names() []string {
	var names []string
	for name := range All() {
		names = append(names, name)
	}
	return names
}

var errStop = fmt.Errorf("stop iteration")

// All iterates over every stored key inside a read transaction; the loop body
// must not write to the keyring.
func All() iter.Seq2[string, Entry] {
	if db == nil {
		panic("keyring: not opened")
	}

	return func(yield func(string, Entry) bool) {
		err := db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketKeys)
			if b == nil {
				return fmt.Errorf("keyring: keys bucket not found")
			}

			return b.ForEach(func(k, v []byte) error {
				var entry Entry
				err := json.Unmarshal(v, &entry)
				if err != nil {
					return fmt.Errorf("keyring: unmarshal entry for %q: %w", k, err)
				}

				if !yield(string(k), entry) {
					return errStop
				}
				return nil
			})
		})

		if err != nil {
			if errors.Is(err, errStop) {
				return
			}
			panic(fmt.Errorf("keyring: get all keys: %w", err))
		}
	}
}
