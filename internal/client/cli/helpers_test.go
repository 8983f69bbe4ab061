package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptobulldev/userdash/internal/client/cookie"
	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/client/repositories/metadata"
	"github.com/cryptobulldev/userdash/internal/client/services"
	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/logging"
)

func silencePrintln(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		for i, v := range a {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(toString(v))
		}
		buf.WriteByte('\n')
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &buf
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stubInputs(t *testing.T, texts []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	var i int
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(texts) {
			return "", io.EOF
		}
		s := texts[i]
		i++
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// fakeAuth signs in by putting a pair into the store, the way the real
// service does after a successful API call.
type fakeAuth struct {
	store *session.Store

	loginErr    error
	loginCalls  atomic.Int32
	lastCreds   models.Credentials
	registered  models.Registration
	logoutCalls int
	identity    services.Identity
}

func (f *fakeAuth) Login(_ context.Context, creds models.Credentials) error {
	f.loginCalls.Add(1)
	f.lastCreds = creds
	if f.loginErr != nil {
		return f.loginErr
	}
	f.store.Transition(session.Login{Pair: session.Pair{Access: "access-" + creds.Email, Refresh: "refresh"}})
	return nil
}

func (f *fakeAuth) Register(_ context.Context, reg models.Registration) error {
	f.registered = reg
	f.store.Transition(session.Login{Pair: session.Pair{Access: "access-" + reg.Email}})
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	f.store.Transition(session.Logout{})
	return nil
}

func (f *fakeAuth) Whoami() (services.Identity, error) {
	if f.store.Get().Access() == "" {
		return services.Identity{}, services.ErrNotLoggedIn
	}
	return f.identity, nil
}

type fakeUsers struct {
	mu sync.Mutex

	listCalls []models.PageParams
	page      models.UsersPage
	listErr   error

	user      models.User
	getErr    error
	created   models.UserPayload
	updated   models.UserPayload
	updatedID string
	deleted   []string
}

func (f *fakeUsers) List(_ context.Context, p models.PageParams) (models.UsersPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, p)
	return f.page, f.listErr
}

func (f *fakeUsers) listed() []models.PageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PageParams(nil), f.listCalls...)
}

func (f *fakeUsers) Get(_ context.Context, id string) (models.User, error) {
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	u := f.user
	u.ID = id
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, p models.UserPayload) (models.User, error) {
	f.created = p
	return models.User{ID: "new-id", Name: p.Name, Email: p.Email}, nil
}

func (f *fakeUsers) Update(_ context.Context, id string, p models.UserPayload) (models.User, error) {
	f.updatedID = id
	f.updated = p
	return models.User{ID: id, Name: p.Name, Email: p.Email}, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeLocal struct {
	entries []metadata.Entry
}

func (f fakeLocal) List(context.Context) ([]metadata.Entry, error) { return f.entries, nil }

// newTestApp returns an App over a real store and cookie mirror. When
// hydrated is false the store waits for a Hydrated event.
func newTestApp(t *testing.T, input string, hydrated bool) (*App, *fakeAuth, *fakeUsers, *bytes.Buffer) {
	t.Helper()

	mirror, err := cookie.NewJarMirror("http://localhost:5000/api")
	require.NoError(t, err)

	store := session.NewStore(mirror, logging.Nop())
	if hydrated {
		store.Transition(session.Hydrated{})
	}

	auth := &fakeAuth{store: store}
	users := &fakeUsers{}
	var out bytes.Buffer

	a := &App{
		log:     logging.Nop(),
		store:   store,
		cookies: mirror,
		auth:    auth,
		users:   users,
		reader:  rdr(input),
		out:     &out,
	}
	return a, auth, users, &out
}
