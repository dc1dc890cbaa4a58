package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/gratitude-journal/internal/crypto"
	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
	"github.com/and161185/gratitude-journal/internal/token"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]*model.User
	nextID int64

	createErr error
	getErr    error
	// existsLies makes Exists* report false so Create hits the constraint.
	existsLies bool
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[int64]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.byID {
		if e.Username == u.Username {
			return errs.ErrUsernameTaken
		}
		if e.Email == u.Email {
			return errs.ErrEmailTaken
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	cpy.Roles = append([]string(nil), u.Roles...)
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsLies {
		return false, nil
	}
	for _, u := range f.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsLies {
		return false, nil
	}
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, p model.ProfileUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	for oid, o := range f.byID {
		if oid == id {
			continue
		}
		if p.Username != "" && o.Username == p.Username {
			return nil, errs.ErrUsernameTaken
		}
		if p.Email != "" && o.Email == p.Email {
			return nil, errs.ErrEmailTaken
		}
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.Bio != "" {
		u.Bio = p.Bio
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) setRoles(id int64, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Roles = roles
}

type fakeRoles struct {
	names []string
	err   error
}

var _ repository.RoleRepository = (*fakeRoles)(nil)

func (f *fakeRoles) EnsureRoles(_ context.Context, names ...string) error {
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, names...)
	return nil
}

type fakeEntries struct {
	byID   map[int64]*model.Entry
	nextID int64
	err    error
}

var _ repository.EntryRepository = (*fakeEntries)(nil)

func newFakeEntries() *fakeEntries { return &fakeEntries{byID: map[int64]*model.Entry{}} }

func (f *fakeEntries) ListByUser(_ context.Context, userID int64) ([]model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Entry
	for _, e := range f.byID {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Get(_ context.Context, userID, id int64) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEntries) Create(_ context.Context, userID int64, in model.EntryInput) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	e := &model.Entry{ID: f.nextID, UserID: userID, Title: in.Title, Content: in.Content, EntryDate: in.EntryDate, CreatedAt: time.Now()}
	f.byID[e.ID] = e
	c := *e
	return &c, nil
}

func (f *fakeEntries) Update(_ context.Context, userID, id int64, in model.EntryInput) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	e.Title, e.Content = in.Title, in.Content
	c := *e
	return &c, nil
}

func (f *fakeEntries) Delete(_ context.Context, userID, id int64) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestAuth(t *testing.T, users *fakeUsers) (*AuthServiceImpl, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(token.Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return NewAuthService(users, codec, crypto.NewHasher(bcrypt.MinCost), nil), codec
}

// countingHasher records Verify calls on top of a real hasher.
type countingHasher struct {
	PasswordHasher

	mu       sync.Mutex
	verifies []string
}

func (h *countingHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verifies = append(h.verifies, hash)
	h.mu.Unlock()
	return h.PasswordHasher.Verify(password, hash)
}

func (h *countingHasher) verified() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.verifies...)
}
