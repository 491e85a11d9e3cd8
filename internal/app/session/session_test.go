package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/backend"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() (*Manager, repository.SessionRepository) {
	repo := repository.NewMemorySessionRepository()
	var key [32]byte
	copy(key[:], "session-test-key-session-test-ke")
	return NewManager(repo, key), repo
}

func TestLoginLogoutLifecycle(t *testing.T) {
	ctx := context.Background()
	m, repo := testManager()
	s := m.New()
	require.NoError(t, s.Init(ctx))
	assert.False(t, s.IsLoggedIn(ctx))

	require.NoError(t, s.Set(ctx, model.Identity{Token: "tok", UserName: "Ana", Role: model.RoleAdmin, SectorID: 3}))
	assert.True(t, s.IsLoggedIn(ctx))

	raw, _ := repo.Get(ctx, s.ID(), KeyToken)
	assert.NotEqual(t, "tok", raw, "the backend token is sealed at rest")

	user, err := m.Open(s.ID()).User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.UserName)
	assert.Equal(t, 3, user.SectorID)
	assert.Equal(t, "tok", user.Token)

	require.NoError(t, s.SetDarkMode(ctx, true))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.IsLoggedIn(ctx))
	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.False(t, prefs.DarkMode)
}

func TestSetRequiresToken(t *testing.T) {
	m, _ := testManager()
	err := m.New().Set(context.Background(), model.Identity{UserName: "Ana"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestReadsAlwaysGoToStorage(t *testing.T) {
	ctx := context.Background()
	m, repo := testManager()
	s := m.New()
	require.NoError(t, s.Set(ctx, model.Identity{Token: "tok", UserName: "Ana"}))

	require.NoError(t, repo.Delete(ctx, s.ID(), KeyToken))
	assert.False(t, s.IsLoggedIn(ctx))
	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestInitDropsUnreadableToken(t *testing.T) {
	ctx := context.Background()
	m, repo := testManager()
	s := m.New()
	require.NoError(t, repo.Set(ctx, s.ID(), map[string]string{KeyToken: "garbage", KeyUserName: "Ana"}))

	require.NoError(t, s.Init(ctx))
	v, _ := repo.Get(ctx, s.ID(), KeyToken)
	assert.Empty(t, v)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	m, _ := testManager()
	s := m.New()

	on, err := s.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, s.SetSelectedDate(ctx, "2026-10-19"))

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{DarkMode: true, SelectedDate: "2026-10-19"}, prefs)

	require.NoError(t, s.SetSelectedDate(ctx, ""))
	prefs, _ = s.Preferences(ctx)
	assert.Empty(t, prefs.SelectedDate)
}

type countingRepo struct {
	repository.SessionRepository
	mu     sync.Mutex
	clears int
}

func (c *countingRepo) Clear(ctx context.Context, sid string) error {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
	return c.SessionRepository.Clear(ctx, sid)
}

func TestParallelUnauthorizedExpiresOnce(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{SessionRepository: repository.NewMemorySessionRepository()}
	var key [32]byte
	s := NewManager(repo, key).New()
	require.NoError(t, s.Set(ctx, model.Identity{Token: "tok", UserName: "Ana"}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	client := backend.NewClient(srv.URL, time.Second, srv.Client())

	reqCtx := WithSession(ctx, s)
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(reqCtx, backend.Request{Method: http.MethodGet, Path: "/colaboradores"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.True(t, common.IsAuth(err))
	}
	assert.Equal(t, 1, repo.clears)
	assert.True(t, s.Expired())
	assert.False(t, s.Expire(ctx))
	assert.False(t, s.IsLoggedIn(ctx))

	fromCtx, ok := FromContext(reqCtx)
	require.True(t, ok)
	assert.Same(t, s, fromCtx)
}
