package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/formbff/internal/domain/model"
	"github.com/ericfisherdev/formbff/internal/domain/port/driven"
)

// RecordService mediates between the HTTP layer and the record store. It
// holds no cached copies; every call round-trips to the store.
//
// Init should be called once at startup. Every other method also calls Init,
// so a service that skipped it still connects on first use. Concurrent first
// callers serialize on a mutex and the setup succeeds at most once; a failed
// setup is retried by the next caller.
type RecordService struct {
	store  driven.RecordStore
	logger *slog.Logger

	mu    sync.Mutex
	ready atomic.Bool
}

// NewRecordService creates a new RecordService with the required dependencies.
func NewRecordService(store driven.RecordStore, logger *slog.Logger) *RecordService {
	return &RecordService{
		store:  store,
		logger: logger,
	}
}

// Init verifies the store connection. It is a no-op once it has succeeded.
func (s *RecordService) Init(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("record store connection failed", "error", err)
		return fmt.Errorf("initialize record store: %w", err)
	}

	s.ready.Store(true)
	s.logger.Info("record store connected")
	return nil
}

// List returns all records, most recently created first.
func (s *RecordService) List(ctx context.Context) ([]model.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx)
}

// Get returns the record with the given ID, or nil if it does not exist.
func (s *RecordService) Get(ctx context.Context, id int64) (*model.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// Create persists a new record and returns it with its assigned ID and timestamps.
func (s *RecordService) Create(ctx context.Context, name, email string) (model.Record, error) {
	if err := s.Init(ctx); err != nil {
		return model.Record{}, err
	}
	return s.store.Insert(ctx, model.Record{Name: name, Email: email})
}

// Update overwrites name and email of an existing record. It returns nil if
// the record does not exist. The load and save are not wrapped in a
// transaction, so concurrent updates are last-write-wins.
func (s *RecordService) Update(ctx context.Context, id int64, name, email string) (*model.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	rec.Name = name
	rec.Email = email

	saved, err := s.store.Save(ctx, *rec)
	if errors.Is(err, driven.ErrRecordNotFound) {
		// Deleted between load and save.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// Delete removes the record and reports whether it existed.
func (s *RecordService) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.Init(ctx); err != nil {
		return false, err
	}
	return s.store.Delete(ctx, id)
}
