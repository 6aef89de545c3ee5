package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/cache"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"
	"Gin_postgres_redis_inventory/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*models.User
	touched []string
}

func (f *fakeUsers) FindUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	if id == "flaky" {
		return nil, errors.New("connection reset")
	}
	return nil, fmt.Errorf("%w: user %s", db.ErrNotFound, id)
}

func (f *fakeUsers) TouchUserSeen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUsers) FindOrCreateUser(_ context.Context, username, newID string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	u := &models.User{ID: newID, Username: username}
	f.users[newID] = u
	return u, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)) }

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func authRouter(t *testing.T) (*gin.Engine, *session.AppSessionStore, *fakeUsers) {
	_, rdb := newRedis(t)
	sess := session.NewAppSessionStore(rdb, time.Hour)
	users := &fakeUsers{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice"},
		"u2": {ID: "u2", Username: "Boss"},
	}}
	cfg := config.Config{AdminUsers: []string{"boss"}}

	r := gin.New()
	auth := r.Group("", AuthRequired(sess, users, cfg))
	auth.GET("/me", func(c *gin.Context) {
		c.JSON(200, H{"uid": c.GetString(CtxUserID), "admin": c.GetBool(CtxIsAdmin)})
	})
	auth.POST("/cancel", AdminOnly(), func(c *gin.Context) { c.JSON(200, H{"ok": true}) })
	return r, sess, users
}

func call(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r, sess, _ := authRouter(t)
	ctx := context.Background()
	require.NoError(t, sess.Create(ctx, "tok-alice", "u1"))
	require.NoError(t, sess.Create(ctx, "tok-ghost", "gone"))
	require.NoError(t, sess.Create(ctx, "tok-ghost-2", "gone"))
	require.NoError(t, sess.Create(ctx, "tok-flaky", "flaky"))

	w := call(r, "GET", "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "GET", "/me", "nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid session")

	w = call(r, "GET", "/me", "tok-alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","admin":false}`, w.Body.String())

	// 用户已不存在：拒绝并撤销该用户的全部会话
	w = call(r, "GET", "/me", "tok-ghost")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	for _, tok := range []string{"tok-ghost", "tok-ghost-2"} {
		_, err := sess.Get(ctx, tok)
		assert.ErrorIs(t, err, session.ErrNoSession, tok)
	}

	// 查库失败不是用户不存在：会话保留
	w = call(r, "GET", "/me", "tok-flaky")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	_, err := sess.Get(ctx, "tok-flaky")
	assert.NoError(t, err)
}

func TestAdminOnly(t *testing.T) {
	r, sess, _ := authRouter(t)
	ctx := context.Background()
	require.NoError(t, sess.Create(ctx, "a", "u1"))
	require.NoError(t, sess.Create(ctx, "b", "u2"))

	assert.Equal(t, http.StatusForbidden, call(r, "POST", "/cancel", "a").Code)
	assert.Equal(t, http.StatusOK, call(r, "POST", "/cancel", "b").Code, "admin match is case-insensitive")
}

func TestTouchLastSeen_Throttled(t *testing.T) {
	mr, rdb := newRedis(t)
	users := &fakeUsers{}

	r := gin.New()
	r.GET("/x", func(c *gin.Context) { c.Set(CtxUserID, "u1"); c.Next() },
		TouchLastSeen(users, rdb, time.Minute),
		func(c *gin.Context) { c.Status(204) })
	r.GET("/anon", TouchLastSeen(users, rdb, time.Minute), func(c *gin.Context) { c.Status(204) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, 204, call(r, "GET", "/x", "").Code)
	}
	assert.Equal(t, 204, call(r, "GET", "/anon", "").Code)
	assert.Equal(t, []string{"u1"}, users.touched)

	mr.FastForward(2 * time.Minute)
	call(r, "GET", "/x", "")
	assert.Equal(t, []string{"u1", "u1"}, users.touched)
}

func TestSubmitGuard(t *testing.T) {
	_, rdb := newRedis(t)
	lock := cache.NewActionLock(rdb, time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.POST("/slips/loan", func(c *gin.Context) { c.Set(CtxUserID, "u1"); c.Next() },
		SubmitGuard(lock, discard()),
		func(c *gin.Context) {
			if c.Query("slow") != "" {
				close(entered)
				<-release
			}
			c.Status(201)
		})

	done := make(chan int)
	go func() { done <- call(r, "POST", "/slips/loan?slow=1", "").Code }()
	<-entered

	assert.Equal(t, http.StatusConflict, call(r, "POST", "/slips/loan", "").Code)

	close(release)
	assert.Equal(t, 201, <-done)
	assert.Equal(t, 201, call(r, "POST", "/slips/loan", "").Code, "lock released after the first request")
}

type brokenLock struct{}

func (brokenLock) Acquire(context.Context, string, string) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenLock) Release(context.Context, string, string) error { return nil }

func TestSubmitGuard_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/x", SubmitGuard(brokenLock{}, discard()), func(c *gin.Context) { c.Status(201) })
	assert.Equal(t, 201, call(r, "POST", "/x", "").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/missing", func(c *gin.Context) { c.Status(404) })

	w := call(r, "GET", "/missing", "")
	rid := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, rid)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), rid)

	req := httptest.NewRequest("GET", "/missing", nil)
	req.Header.Set(RequestIDHeader, "given")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get(RequestIDHeader))
}

func TestCellLabelValidator(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type q struct {
		Label string `form:"label" binding:"omitempty,celllabel"`
	}
	r := gin.New()
	r.GET("/loc", func(c *gin.Context) {
		var in q
		if err := c.ShouldBindQuery(&in); err != nil {
			c.Status(400)
			return
		}
		c.Status(200)
	})

	assert.Equal(t, 200, call(r, "GET", "/loc", "").Code)
	assert.Equal(t, 200, call(r, "GET", "/loc?label=B03", "").Code)
	assert.Equal(t, 400, call(r, "GET", "/loc?label=b3", "").Code)
	assert.Equal(t, 400, call(r, "GET", "/loc?label=A00", "").Code)
}

func TestBootstrapSession(t *testing.T) {
	_, rdb := newRedis(t)
	sess := session.NewAppSessionStore(rdb, time.Hour)
	users := &fakeUsers{users: map[string]*models.User{}}
	ctx := context.Background()

	tok, err := BootstrapSession(ctx, config.Config{}, users, sess, discard())
	require.NoError(t, err)
	assert.Empty(t, tok, "no bootstrap user configured")

	tok, err = BootstrapSession(ctx, config.Config{BootstrapUser: "dev"}, users, sess, discard())
	require.NoError(t, err)
	as, err := sess.Get(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "dev", users.users[as.UserID].Username)
}
