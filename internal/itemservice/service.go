// Package itemservice implements the add, remove and list operations over a
// storage root.
package itemservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/itembox/internal/apperr"
	"github.com/starford/itembox/internal/journal"
	"github.com/starford/itembox/internal/models"
	"github.com/starford/itembox/internal/sink"
	"github.com/starford/itembox/internal/storage"
)

// Service coordinates storage and journal operations.
type Service struct {
	store   storage.Provider
	journal journal.Recorder
	logger  *slog.Logger
}

// NewService creates a new item service. rec may be nil, in which case
// nothing is journaled and History returns no events.
func NewService(store storage.Provider, rec journal.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, journal: rec, logger: logger}
}

// Root returns the storage root the service operates on.
func (s *Service) Root() string {
	return s.store.Root()
}

// Add creates the item. It fails with apperr.ErrAlreadyExists when the item
// is already present.
func (s *Service) Add(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.store.Create(name); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	s.logger.Debug("item added", slog.String("item", name))
	s.record(ctx, models.OpAdd, name)
	return nil
}

// Remove deletes the item. It fails with apperr.ErrNotFound when the item is
// absent.
func (s *Service) Remove(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.store.Delete(name); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	s.logger.Debug("item removed", slog.String("item", name))
	s.record(ctx, models.OpRemove, name)
	return nil
}

// List emits every item to out. With sorted set, items are ordered byte-wise
// by name; otherwise they come in directory order, which is not stable.
func (s *Service) List(_ context.Context, sorted bool, out sink.Sink) error {
	names, err := s.store.Entries()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if sorted {
		slices.Sort(names)
	}
	for _, name := range names {
		if err := out.Emit(name); err != nil {
			return fmt.Errorf("list: %w", err)
		}
	}
	s.logger.Debug("items listed", slog.Int("count", len(names)), slog.Bool("sorted", sorted))
	return nil
}

// History returns journaled events, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Event, error) {
	if s.journal == nil {
		return []models.Event{}, nil
	}
	return s.journal.History(ctx, limit)
}

// record journals an operation. The item file is the source of truth, so a
// journal failure is logged and swallowed.
func (s *Service) record(ctx context.Context, op, name string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, op, name); err != nil {
		s.logger.Warn("journal record failed",
			slog.String("op", op),
			slog.String("item", name),
			slog.String("error", err.Error()))
	}
}

func validateName(name string) error {
	if err := (models.Item{Name: name}).Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", apperr.ErrInvalidName, name, err)
	}
	return nil
}
