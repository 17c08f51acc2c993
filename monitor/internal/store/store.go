// Package store is the SQLite capture index: one row per capture attempt,
// successful or not, kept aligned with the on-disk artifact cache.
package store

import (
	"database/sql"

	"github.com/hazyhaar/websnap/dbopen"
)

// Store is the websnap database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the capture index at path, applies pragmas and
// the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
