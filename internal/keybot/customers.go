package keybot

import (
	"context"
	"fmt"

	"github.com/keybot/keybot/internal/api"
)

// CustomerService covers /customers and the per-customer sub-resources.
type CustomerService struct {
	r Requester
}

// List returns every customer.
func (s *CustomerService) List(ctx context.Context) ([]Customer, error) {
	var payload listResult[Customer]
	if err := s.r.Get(ctx, "/customers", &payload); err != nil {
		return nil, err
	}
	if err := payload.err("list customers"); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Get returns a single customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*Customer, error) {
	var payload struct {
		Customer *Customer `json:"customer"`
	}
	if err := s.r.Get(ctx, customerPath(id, ""), &payload); err != nil {
		return nil, err
	}
	if payload.Customer == nil {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	return payload.Customer, nil
}

// Addresses returns the customer's address history.
func (s *CustomerService) Addresses(ctx context.Context, id int64) ([]Address, error) {
	var payload struct {
		Addresses []Address `json:"addresses"`
	}
	if err := s.r.Get(ctx, customerPath(id, "/address-history"), &payload); err != nil {
		return nil, err
	}
	return payload.Addresses, nil
}

func (s *CustomerService) AddAddress(ctx context.Context, id int64, addr Address) error {
	return mutate("add address", func(out *result) error {
		return s.r.Post(ctx, customerPath(id, "/addresses"), addr, out)
	})
}

func (s *CustomerService) DeleteAddress(ctx context.Context, id, addressID int64) error {
	return mutate("delete address", func(out *result) error {
		return s.r.Delete(ctx, customerPath(id, fmt.Sprintf("/addresses/%d", addressID)), out)
	})
}

// SetPrimaryAddress marks addressID as the customer's primary address.
func (s *CustomerService) SetPrimaryAddress(ctx context.Context, id, addressID int64) error {
	body := map[string]bool{"is_primary": true}
	return mutate("set primary address", func(out *result) error {
		return s.r.Put(ctx, customerPath(id, fmt.Sprintf("/addresses/%d/set-primary", addressID)), body, out)
	})
}

// Appointments lists the customer's past and scheduled visits.
func (s *CustomerService) Appointments(ctx context.Context, id int64) ([]CustomerAppointment, error) {
	var payload struct {
		Appointments []CustomerAppointment `json:"appointments"`
	}
	if err := s.r.Get(ctx, customerPath(id, "/appointments"), &payload); err != nil {
		return nil, err
	}
	return payload.Appointments, nil
}

func (s *CustomerService) Notes(ctx context.Context, id int64) ([]Note, error) {
	var payload struct {
		Notes []Note `json:"notes"`
	}
	if err := s.r.Get(ctx, customerPath(id, "/notes"), &payload); err != nil {
		return nil, err
	}
	return payload.Notes, nil
}

func (s *CustomerService) AddNote(ctx context.Context, id int64, content string) error {
	if content == "" {
		return fmt.Errorf("note content is required")
	}
	return mutate("add note", func(out *result) error {
		return s.r.Post(ctx, customerPath(id, "/notes"), noteBody{Content: content}, out)
	})
}

func (s *CustomerService) UpdateNote(ctx context.Context, id, noteID int64, content string) error {
	if content == "" {
		return fmt.Errorf("note content is required")
	}
	return mutate("update note", func(out *result) error {
		return s.r.Put(ctx, customerPath(id, fmt.Sprintf("/notes/%d", noteID)), noteBody{Content: content}, out)
	})
}

func (s *CustomerService) DeleteNote(ctx context.Context, id, noteID int64) error {
	return mutate("delete note", func(out *result) error {
		return s.r.Delete(ctx, customerPath(id, fmt.Sprintf("/notes/%d", noteID)), out)
	})
}

func (s *CustomerService) Files(ctx context.Context, id int64) ([]File, error) {
	var payload struct {
		Files []File `json:"files"`
	}
	if err := s.r.Get(ctx, customerPath(id, "/files"), &payload); err != nil {
		return nil, err
	}
	return payload.Files, nil
}

// UploadFile attaches a document to the customer.
func (s *CustomerService) UploadFile(ctx context.Context, id int64, up api.Upload, onProgress api.ProgressFunc) error {
	return mutate("upload file", func(out *result) error {
		return s.r.UploadFile(ctx, customerPath(id, "/files"), up, onProgress, out)
	})
}

func (s *CustomerService) DeleteFile(ctx context.Context, id, fileID int64) error {
	return mutate("delete file", func(out *result) error {
		return s.r.Delete(ctx, customerPath(id, fmt.Sprintf("/files/%d", fileID)), out)
	})
}

type noteBody struct {
	Content string `json:"content"`
}

func customerPath(id int64, suffix string) string {
	return fmt.Sprintf("/customers/%d%s", id, suffix)
}
