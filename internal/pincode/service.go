package pincode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.uber.org/zap"
)

type PincodeService struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewPincodeService(store Store, log *zap.Logger) *PincodeService {
	return &PincodeService{store: store, log: log, now: time.Now}
}

func duplicate() error {
	return apperr.Conflict("This pincode area combination already exists.")
}

func notFound() error {
	return apperr.NotFound("Pincode not found.")
}

func validPincode(n int) error {
	if n <= 0 {
		return apperr.Validation("Validation failed", "pincode must be a positive number")
	}
	return nil
}

func (s *PincodeService) List(ctx context.Context, f Filter, page pagination.Page) ([]*PincodeArea, int64, error) {
	items, total, err := s.store.List(ctx, f, page)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get pincodes.")
	}
	return items, total, nil
}

func (s *PincodeService) Create(ctx context.Context, actor *auth.Admin, cmd CreateCommand) (*PincodeArea, error) {
	area := strings.TrimSpace(cmd.AreaName)
	city := strings.TrimSpace(cmd.CityName)
	state := strings.TrimSpace(cmd.StateName)
	if cmd.Pincode == nil || *cmd.Pincode == 0 || area == "" || city == "" || state == "" {
		return nil, apperr.Validation("Pincode, area name, city name, and state name are required.")
	}
	if err := validPincode(int(*cmd.Pincode)); err != nil {
		return nil, err
	}
	district := strings.TrimSpace(cmd.DistrictName)
	if district == "" {
		district = city
	}

	at := s.now()
	p := &PincodeArea{
		Pincode:      int(*cmd.Pincode),
		AreaName:     area,
		CityName:     city,
		DistrictName: district,
		StateName:    state,
		Serviceable:  cmd.Serviceable != nil && *cmd.Serviceable,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("pincode added", zap.String("by", actor.Email), zap.Int("pincode", p.Pincode), zap.String("area", p.AreaName))
	return p, nil
}

func (s *PincodeService) insert(ctx context.Context, p *PincodeArea) error {
	existing, err := s.store.FindTriple(ctx, p.Pincode, p.AreaName, p.CityName, p.ID)
	if err != nil {
		return apperr.Unexpected(err, "Failed to add pincode.")
	}
	if existing != nil {
		return duplicate()
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return duplicate()
		}
		return apperr.Unexpected(err, "Failed to add pincode.")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func (s *PincodeService) Update(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdateCommand) (*PincodeArea, error) {
	const failure = "Failed to update pincode."
	id, err := store.ObjectID(rawID, "pincode")
	if err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, failure)
	}
	if current == nil {
		return nil, notFound()
	}

	next := *current
	if cmd.Pincode != nil {
		if err := validPincode(int(*cmd.Pincode)); err != nil {
			return nil, err
		}
		next.Pincode = int(*cmd.Pincode)
	}
	var details []string
	set := func(dst *string, v *string, field string) {
		if v = trimmed(v); v == nil {
			return
		}
		if *v == "" {
			details = append(details, field+" must not be empty")
			return
		}
		*dst = *v
	}
	set(&next.AreaName, cmd.AreaName, "areaname")
	set(&next.CityName, cmd.CityName, "cityname")
	set(&next.StateName, cmd.StateName, "statename")
	district := cmd.DistrictName
	if district == nil {
		district = cmd.Distrcitname
	}
	set(&next.DistrictName, district, "districtname")
	if len(details) > 0 {
		return nil, apperr.Validation("Validation failed", details...)
	}
	if cmd.Serviceable != nil {
		next.Serviceable = *cmd.Serviceable
	}
	next.UpdatedAt = s.now()

	clash, err := s.store.FindTriple(ctx, next.Pincode, next.AreaName, next.CityName, id)
	if err != nil {
		return nil, apperr.Unexpected(err, failure)
	}
	if clash != nil {
		return nil, duplicate()
	}

	updated, err := s.store.Replace(ctx, &next)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, duplicate()
		}
		return nil, apperr.Unexpected(err, failure)
	}
	if updated == nil {
		return nil, notFound()
	}
	s.log.Info("pincode updated", zap.String("by", actor.Email), zap.Int("pincode", updated.Pincode), zap.String("area", updated.AreaName))
	return updated, nil
}

func (s *PincodeService) Delete(ctx context.Context, actor *auth.Admin, rawID string) (*Deleted, error) {
	id, err := store.ObjectID(rawID, "pincode")
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to delete pincode.")
	}
	if deleted == nil {
		return nil, notFound()
	}
	s.log.Info("pincode deleted", zap.String("by", actor.Email), zap.Int("pincode", deleted.Pincode), zap.String("area", deleted.AreaName))
	return &Deleted{ID: deleted.ID, Pincode: deleted.Pincode, AreaName: deleted.AreaName}, nil
}

// Export writes every record matching f in the requested format.
func (s *PincodeService) Export(ctx context.Context, f Filter, format Format, w io.Writer) error {
	items, err := s.store.Export(ctx, f)
	if err != nil {
		return apperr.Unexpected(err, "Failed to export pincodes.")
	}
	switch format {
	case FormatCSV:
		err = WriteCSV(w, items)
	case FormatXLSX:
		err = WriteXLSX(w, items)
	default:
		return apperr.Validation("Unsupported export format.", fmt.Sprintf("format must be %s or %s", FormatCSV, FormatXLSX))
	}
	if err != nil {
		return apperr.Unexpected(err, "Failed to export pincodes.")
	}
	return nil
}

// Import inserts the rows of a spreadsheet, skipping rows that already exist.
// Rows that cannot be parsed are reported, not fatal.
func (s *PincodeService) Import(ctx context.Context, actor *auth.Admin, r io.Reader) (*ImportResult, error) {
	rows, err := ReadXLSX(r)
	if err != nil {
		return nil, apperr.Validation("Invalid Excel file.", err.Error())
	}
	result := &ImportResult{}
	at := s.now()
	for _, row := range rows {
		if row.Err != nil {
			result.Errors = append(result.Errors, row.Err.Error())
			continue
		}
		p := row.Area
		p.CreatedAt, p.UpdatedAt = at, at
		if err := s.insert(ctx, p); err != nil {
			if apperr.IsKind(err, apperr.KindConflict) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Inserted++
	}
	s.log.Info("pincodes imported",
		zap.String("by", actor.Email),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}
