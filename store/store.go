// Package store persists formula variables in a bbolt database.
//
// Values are stored as their literal form ([lang.Value.Repr]) and decoded by
// parsing and evaluating that literal, so a database is readable with any
// bbolt tool. A [Store] is a [lang.Environment] and can be layered between
// command-line bindings and the standard library.
package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/stdlib"
)

const bucketVars = "vars"

// Predefined errors.
var (
	ErrOpen       = lang.NewError("failed to open variable store")
	ErrUnstorable = lang.NewError("value has no literal form")
	ErrNoVar      = lang.NewError("no such variable")
	ErrCorrupt    = lang.NewError("stored literal does not decode")
)

// Store is a persistent [lang.Environment].
type Store struct {
	db     *bolt.DB
	consts lang.Environment
}

// Open opens the database at path, creating it and its parent directory
// when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVars))

		return err
	})
	if err != nil {
		return nil, errors.Join(ErrOpen.Wrap(err).With(slog.String("path", path)), db.Close())
	}

	return &Store{db: db, consts: stdlib.New()}, nil
}

// Path returns the file backing s.
func (s *Store) Path() string { return s.db.Path() }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Set stores v under name. Functions, and strings holding both quote
// characters, have no literal form and yield [ErrUnstorable].
func (s *Store) Set(name string, v lang.Value) error {
	repr := v.Repr()

	if v.Kind() == lang.KindFunc {
		return ErrUnstorable.With(slog.String("name", name), slog.String("kind", v.Kind().String()))
	}

	if d, err := s.decode(repr); err != nil || !d.Equal(v) {
		return ErrUnstorable.With(
			slog.String("name", name),
			slog.String("kind", v.Kind().String()),
		)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).Put([]byte(name), []byte(repr))
	})
}

// Delete removes name. Deleting a missing name yields [ErrNoVar].
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVars))
		if b.Get([]byte(name)) == nil {
			return ErrNoVar.With(slog.String("name", name))
		}

		return b.Delete([]byte(name))
	})
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (lang.Value, error) {
	var repr string

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketVars)).Get([]byte(name))
		if v == nil {
			return ErrNoVar.With(slog.String("name", name))
		}

		repr = string(v)

		return nil
	})
	if err != nil {
		return lang.None(), err
	}

	v, err := s.decode(repr)
	if err != nil {
		return lang.None(), ErrCorrupt.Wrap(err).With(slog.String("name", name))
	}

	return v, nil
}

// Names returns the sorted stored names.
func (s *Store) Names() ([]string, error) {
	var names []string

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))

			return nil
		})
	})

	return names, err
}

// Lookup implements [lang.Environment]. Entries that fail to decode are
// reported as unbound.
func (s *Store) Lookup(name string) (lang.Value, bool) {
	v, err := s.Get(name)

	return v, err == nil
}

// Contains implements [lang.Environment].
func (s *Store) Contains(name string) bool {
	found := false

	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(bucketVars)).Get([]byte(name)) != nil

		return nil
	})

	return found
}

// Snapshot implements [lang.Environment].
func (s *Store) Snapshot() map[string]lang.Value {
	raw := make(map[string]string)

	_ = s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketVars)).ForEach(func(k, v []byte) error {
			raw[string(k)] = string(v)

			return nil
		})
	})

	snap := make(map[string]lang.Value, len(raw))

	for name, repr := range raw {
		if v, err := s.decode(repr); err == nil {
			snap[name] = v
		}
	}

	return snap
}

func (s *Store) decode(repr string) (lang.Value, error) {
	ctx := context.Background()

	e, err := lang.ParseCached(ctx, repr)
	if err != nil {
		return lang.None(), err
	}

	return lang.Evaluate(ctx, e, s.consts)
}
