package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/gratitude-journal/internal/crypto"
	"github.com/and161185/gratitude-journal/internal/errs"
	"github.com/and161185/gratitude-journal/internal/model"
	"github.com/and161185/gratitude-journal/internal/repository"
	"github.com/and161185/gratitude-journal/internal/service"
	"github.com/and161185/gratitude-journal/internal/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// memStore is an in-memory user and entry store.
type memStore struct {
	mu      sync.Mutex
	users   map[int64]*model.User
	entries map[int64]*model.Entry
	seq     int64
	getErr  error
}

var (
	_ repository.UserRepository  = (*memStore)(nil)
	_ repository.EntryRepository = (*memEntries)(nil)
)

func newMemStore() *memStore {
	return &memStore{users: map[int64]*model.User{}, entries: map[int64]*model.Entry{}}
}

func (m *memStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Username == u.Username {
			return errs.ErrUsernameTaken
		}
		if e.Email == u.Email {
			return errs.ErrEmailTaken
		}
	}
	m.seq++
	u.ID, u.CreatedAt = m.seq, time.Now()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memStore) GetByUsername(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == name {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memStore) ExistsByUsername(ctx context.Context, name string) (bool, error) {
	_, err := m.GetByUsername(ctx, name)
	return err == nil, nil
}

func (m *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, id int64, p model.ProfileUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	for oid, o := range m.users {
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

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.users, id)
	for eid, e := range m.entries {
		if e.UserID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

func (m *memStore) setRoles(id int64, roles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Roles = roles
}

// memEntries exposes the entry half of memStore.
type memEntries struct{ *memStore }

func (m memEntries) ListByUser(_ context.Context, userID int64) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m memEntries) Get(_ context.Context, userID, id int64) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (m memEntries) Create(_ context.Context, userID int64, in model.EntryInput) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := &model.Entry{ID: m.seq, UserID: userID, Title: in.Title, Content: in.Content, EntryDate: in.EntryDate, CreatedAt: time.Now()}
	m.entries[e.ID] = e
	c := *e
	return &c, nil
}

func (m memEntries) Update(_ context.Context, userID, id int64, in model.EntryInput) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return nil, errs.ErrNotFound
	}
	e.Title, e.Content = in.Title, in.Content
	c := *e
	return &c, nil
}

func (m memEntries) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return errs.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	store   *memStore
	codec   *token.Codec
	auth    *service.AuthServiceImpl
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	codec, err := token.NewCodec(token.Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	log := zaptest.NewLogger(t)
	auth := service.NewAuthService(store, codec, crypto.NewHasher(bcrypt.MinCost), log)
	srv := New(Options{
		Auth:    auth,
		Entries: service.NewEntryService(memEntries{store}),
		Loader:  service.NewIdentityLoader(store),
		Codec:   codec,
		Ready:   fakePinger{},
		Cookies: CookieConfig{SameSite: http.SameSiteStrictMode, Secure: true},
		Log:     log,
	})
	return &testEnv{store: store, codec: codec, auth: auth, handler: srv.Handler()}
}

type reqOpt func(*http.Request)

func withBearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
