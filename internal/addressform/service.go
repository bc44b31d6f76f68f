package addressform

import (
	"context"
	"strings"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.uber.org/zap"
)

type FormService struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewFormService(store Store, log *zap.Logger) *FormService {
	return &FormService{store: store, log: log, now: time.Now}
}

func notFound() error {
	return apperr.NotFound("Address form not found.")
}

func (s *FormService) List(ctx context.Context, f Filter, page pagination.Page) ([]*Form, int64, error) {
	forms, total, err := s.store.List(ctx, f, page)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get address forms.")
	}
	return forms, total, nil
}

func (s *FormService) Get(ctx context.Context, rawID string) (*Form, error) {
	id, err := store.ObjectID(rawID, "form")
	if err != nil {
		return nil, err
	}
	form, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to get address form.")
	}
	if form == nil {
		return nil, notFound()
	}
	return form, nil
}

func (s *FormService) Update(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdateCommand) (*Form, error) {
	id, err := store.ObjectID(rawID, "form")
	if err != nil {
		return nil, err
	}
	set := cmd.fields()
	for k, v := range set {
		if str, ok := v.(string); ok {
			set[k] = strings.TrimSpace(str)
		}
	}
	if len(set) == 0 {
		return nil, apperr.Validation("No fields to update.")
	}

	form, err := s.store.Update(ctx, id, set, s.now())
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to update address form.")
	}
	if form == nil {
		return nil, notFound()
	}
	s.log.Info("address form updated", zap.String("by", actor.Email), zap.String("form", form.ID.Hex()))
	return form, nil
}

func (s *FormService) Delete(ctx context.Context, actor *auth.Admin, rawID string) (*Deleted, error) {
	id, err := store.ObjectID(rawID, "form")
	if err != nil {
		return nil, err
	}
	form, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to delete address form.")
	}
	if form == nil {
		return nil, notFound()
	}
	s.log.Info("address form deleted", zap.String("by", actor.Email), zap.String("form", form.ID.Hex()))
	return &Deleted{ID: form.ID, SenderName: form.SenderName, ReceiverName: form.ReceiverName}, nil
}
