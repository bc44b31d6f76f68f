// Package authtest provides in-memory credential stores for tests.
package authtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Password is the plain-text password every fixture account is created with.
const Password = "secret123"

var passwordHash string

func init() {
	hash, err := auth.HashPassword(Password)
	if err != nil {
		panic(err)
	}
	passwordHash = hash
}

// Admins is an in-memory auth.AdminStore.
type Admins struct {
	mu      sync.Mutex
	records []*auth.Admin
	// Writes counts successful mutations.
	Writes int
	// Err, when set, is returned by every call.
	Err error
}

func NewAdmins(admins ...*auth.Admin) *Admins {
	s := &Admins{}
	for _, a := range admins {
		s.Add(a)
	}
	return s
}

// Add stores a copy of a, filling in id, email normalization and password.
func (s *Admins) Add(a *auth.Admin) *auth.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if cp.PasswordHash == "" {
		cp.PasswordHash = passwordHash
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().Add(time.Duration(len(s.records)) * time.Millisecond)
	}
	cp.Email = auth.NormalizeEmail(cp.Email)
	s.records = append(s.records, &cp)
	out := cp
	return &out
}

func (s *Admins) find(match func(*auth.Admin) bool) *auth.Admin {
	for _, a := range s.records {
		if match(a) {
			cp := *a
			return &cp
		}
	}
	return nil
}

// Get returns the stored record for id, bypassing Err.
func (s *Admins) Get(id primitive.ObjectID) *auth.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(a *auth.Admin) bool { return a.ID == id })
}

func (s *Admins) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Get(id), nil
}

func (s *Admins) FindByEmail(ctx context.Context, email string) (*auth.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email = auth.NormalizeEmail(email)
	return s.find(func(a *auth.Admin) bool { return a.Email == email }), nil
}

func (s *Admins) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*auth.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := []*auth.Admin{}
	for _, id := range ids {
		if a := s.Get(id); a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func (s *Admins) List(ctx context.Context, search string, page pagination.Page) ([]*auth.Admin, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*auth.Admin
	for _, a := range s.records {
		if search == "" || contains(a.Name, search) || contains(a.Email, search) {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page), int64(len(matched)), nil
}

func paginate[T any](items []T, page pagination.Page) []T {
	start := int(page.Skip())
	if start > len(items) {
		start = len(items)
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, 0, end-start)
	return append(out, items[start:end]...)
}

func (s *Admins) Emails(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	emails := make([]string, 0, len(s.records))
	for _, a := range s.records {
		emails = append(emails, a.Email)
	}
	return emails, nil
}

func (s *Admins) Count(ctx context.Context) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *Admins) Create(ctx context.Context, admin *auth.Admin) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	email := auth.NormalizeEmail(admin.Email)
	dup := s.find(func(a *auth.Admin) bool { return a.Email == email }) != nil
	s.mu.Unlock()
	if dup {
		return auth.ErrDuplicateEmail
	}
	stored := s.Add(admin)
	admin.ID = stored.ID
	admin.Email = stored.Email
	s.mu.Lock()
	s.Writes++
	s.mu.Unlock()
	return nil
}

func (s *Admins) UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, canAssign *bool, at time.Time) (*auth.Admin, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.records {
		if a.ID == id && a.Role != authz.RoleSuperAdmin {
			a.Permissions = perms
			if canAssign != nil {
				a.CanAssignPermissions = *canAssign
			}
			a.UpdatedAt = at
			s.Writes++
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Admins) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.records {
		if a.ID == id && a.Role != authz.RoleSuperAdmin {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.Writes++
			return true, nil
		}
	}
	return false, nil
}

func (s *Admins) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.records {
		if a.ID == id {
			t := at
			a.LastLogin = &t
			a.LoginCount++
		}
	}
	return nil
}

// OfficeUsers is an in-memory auth.OfficeUserStore.
type OfficeUsers struct {
	mu      sync.Mutex
	records []*auth.OfficeUser
	Writes  int
	Err     error
}

func NewOfficeUsers(users ...*auth.OfficeUser) *OfficeUsers {
	s := &OfficeUsers{}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

func (s *OfficeUsers) Add(u *auth.OfficeUser) *auth.OfficeUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	if cp.PasswordHash == "" {
		cp.PasswordHash = passwordHash
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().Add(time.Duration(len(s.records)) * time.Millisecond)
	}
	cp.Email = auth.NormalizeEmail(cp.Email)
	s.records = append(s.records, &cp)
	out := cp
	return &out
}

func (s *OfficeUsers) find(match func(*auth.OfficeUser) bool) *auth.OfficeUser {
	for _, u := range s.records {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *OfficeUsers) Get(id primitive.ObjectID) *auth.OfficeUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u *auth.OfficeUser) bool { return u.ID == id })
}

func (s *OfficeUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.OfficeUser, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Get(id), nil
}

func (s *OfficeUsers) FindByEmail(ctx context.Context, email string) (*auth.OfficeUser, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email = auth.NormalizeEmail(email)
	return s.find(func(u *auth.OfficeUser) bool { return u.Email == email }), nil
}

func (s *OfficeUsers) List(ctx context.Context, f auth.OfficeUserFilter, page pagination.Page) ([]*auth.OfficeUser, int64, error) {
	if s.Err != nil {
		return nil, 0, s.Err
	}
	excluded := make(map[string]bool, len(f.ExcludeEmails))
	for _, e := range f.ExcludeEmails {
		excluded[e] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*auth.OfficeUser
	for _, u := range s.records {
		if excluded[u.Email] {
			continue
		}
		if f.Search == "" || contains(u.Name, f.Search) || contains(u.Email, f.Search) || contains(u.Department, f.Search) {
			cp := *u
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *OfficeUsers) mutate(id primitive.ObjectID, fn func(*auth.OfficeUser)) (*auth.OfficeUser, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.records {
		if u.ID == id {
			fn(u)
			s.Writes++
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *OfficeUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, changes auth.OfficeUserChanges, at time.Time) (*auth.OfficeUser, error) {
	return s.mutate(id, func(u *auth.OfficeUser) {
		if changes.Name != nil {
			u.Name = *changes.Name
		}
		if changes.Department != nil {
			u.Department = *changes.Department
		}
		u.UpdatedAt = at
	})
}

func (s *OfficeUsers) UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, at time.Time) (*auth.OfficeUser, error) {
	return s.mutate(id, func(u *auth.OfficeUser) {
		u.Permissions = perms
		u.UpdatedAt = at
	})
}

func (s *OfficeUsers) SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) (*auth.OfficeUser, error) {
	return s.mutate(id, func(u *auth.OfficeUser) {
		u.IsActive = active
		u.UpdatedAt = at
	})
}

func (s *OfficeUsers) Delete(ctx context.Context, id primitive.ObjectID) (*auth.OfficeUser, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.records {
		if u.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.Writes++
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *OfficeUsers) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.records {
		if u.ID == id {
			t := at
			u.LastLogin = &t
		}
	}
	return nil
}

var (
	_ auth.AdminStore      = (*Admins)(nil)
	_ auth.OfficeUserStore = (*OfficeUsers)(nil)
)
