// Package addressbook keeps each admin's saved delivery addresses in the
// session store so they can be picked into notification drafts.
package addressbook

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/internal/storage"
	"github.com/jwalitptl/solar-admin/pkg/errors"
)

const maxEntries = 50

// Key is the store key of an admin's address book.
func Key(adminID string) string { return "address_book:" + adminID }

type Service struct {
	store   storage.Store
	auditor *audit.AuditLogger
	now     func() time.Time
	// mu serialises read-modify-write cycles on a book.
	mu sync.Mutex
}

func NewService(store storage.Store, auditor *audit.AuditLogger) *Service {
	return &Service{store: store, auditor: auditor, now: time.Now}
}

func (s *Service) List(ctx context.Context, adminID string) ([]model.SavedAddress, error) {
	var book []model.SavedAddress
	err := storage.GetJSON(ctx, s.store, Key(adminID), &book)
	if stderrors.Is(err, storage.ErrNotFound) {
		return []model.SavedAddress{}, nil
	}
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("load address book: %w", err))
	}
	return book, nil
}

func (s *Service) Get(ctx context.Context, adminID, id string) (*model.SavedAddress, error) {
	book, err := s.List(ctx, adminID)
	if err != nil {
		return nil, err
	}
	for i := range book {
		if book[i].ID == id {
			return &book[i], nil
		}
	}
	return nil, errors.NewNotFound("saved address", nil)
}

// Save adds an address. Saving a label that already exists replaces it.
func (s *Service) Save(ctx context.Context, actor model.Actor, req *model.SaveAddressRequest) (*model.SavedAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.List(ctx, actor.AdminID)
	if err != nil {
		return nil, err
	}

	entry := model.SavedAddress{
		ID:        uuid.NewString(),
		Label:     strings.TrimSpace(req.Label),
		Address:   req.Address,
		CreatedAt: s.now().UTC(),
	}

	replaced := false
	for i := range book {
		if strings.EqualFold(book[i].Label, entry.Label) {
			entry.ID = book[i].ID
			book[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		if len(book) >= maxEntries {
			return nil, errors.NewBadRequest(fmt.Sprintf("address book is full (%d entries)", maxEntries), nil)
		}
		book = append(book, entry)
	}

	if err := storage.SetJSON(ctx, s.store, Key(actor.AdminID), book, 0); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("save address book: %w", err))
	}
	s.auditor.Log(ctx, actor, audit.ActionSaveAddress, "address_book", entry.ID, map[string]string{"label": entry.Label})
	return &entry, nil
}

func (s *Service) Remove(ctx context.Context, actor model.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.List(ctx, actor.AdminID)
	if err != nil {
		return err
	}
	kept := book[:0]
	for _, e := range book {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(book) {
		return errors.NewNotFound("saved address", nil)
	}

	if len(kept) == 0 {
		err = s.store.Remove(ctx, Key(actor.AdminID))
	} else {
		err = storage.SetJSON(ctx, s.store, Key(actor.AdminID), kept, 0)
	}
	if err != nil {
		return errors.NewInternal(fmt.Errorf("save address book: %w", err))
	}
	s.auditor.Log(ctx, actor, audit.ActionRemoveAddress, "address_book", id, nil)
	return nil
}

func (s *Service) Clear(ctx context.Context, adminID string) error {
	if err := s.store.Remove(ctx, Key(adminID)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
