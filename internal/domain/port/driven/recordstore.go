package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/formbff/internal/domain/model"
)

// Sentinel errors returned by RecordStore implementations.
var (
	// ErrRecordNotFound indicates the record disappeared between load and save.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates the store rejected a write on its email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already exists")
)

// RecordStore defines the driven port for record persistence.
// GetByID returns nil, nil when the record does not exist.
// Save returns ErrRecordNotFound if no row matched the record ID.
// Delete reports whether a row was actually removed.
type RecordStore interface {
	Ping(ctx context.Context) error
	ListAll(ctx context.Context) ([]model.Record, error)
	GetByID(ctx context.Context, id int64) (*model.Record, error)
	Insert(ctx context.Context, rec model.Record) (model.Record, error)
	Save(ctx context.Context, rec model.Record) (model.Record, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
