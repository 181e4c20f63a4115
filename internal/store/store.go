package store

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Failure taxonomy surfaced to callers. Storage-engine errors are
// wrapped at the operation boundary and never propagate raw.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicatePhone      = errors.New("phone number already exists")
	ErrInvalidConfirmation = errors.New("invalid confirmation code")
	ErrNoFields            = errors.New("no fields to update")
)

// Rows created before the soft-delete flag existed carry NULL, which
// reads as active.
const activeClause = "(is_deleted = ? OR is_deleted IS NULL)"

// Store owns all durable CRUD over patients and visits plus the
// audit/deletion subsystem. Every exported operation runs as a single
// transaction; there are no cross-call transactions, and the
// single-writer assumption documented for the store file applies.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New creates a Store over an initialized database handle.
func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where(activeClause, false)
}
