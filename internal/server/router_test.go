package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/task-ledger/internal/auth"
	"github.com/yourusername/task-ledger/internal/store"
	"github.com/yourusername/task-ledger/internal/tasks"
	"github.com/yourusername/task-ledger/internal/users"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router, _ := newTestRouterWithStore(t)
	return router
}

func newTestRouterWithStore(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard

	st := store.New()
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: []byte("test-secret")})
	directory, err := users.NewDirectory(st, auth.NewVault(bcrypt.MinCost), tokens, nil)
	require.NoError(t, err)
	ledger, err := tasks.NewLedger(st, nil)
	require.NoError(t, err)

	router, err := NewRouter(Deps{
		Store:          st,
		Users:          directory,
		Tasks:          ledger,
		Gate:           auth.NewGate(tokens),
		AllowedOrigins: SplitOrigins("http://localhost:5173"),
	})
	require.NoError(t, err)
	return router, st
}

func call(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func signupAndSignin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	rec := call(t, router, http.MethodPost, "/user/signup", "", gin.H{
		"email": email, "name": "VK", "password": "Random1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User created Successfully", decode[map[string]string](t, rec)["message"])

	rec = call(t, router, http.MethodPost, "/user/signin", "", gin.H{
		"email": email, "password": "Random1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestHealthReportsPoisonedStore(t *testing.T) {
	router, st := newTestRouterWithStore(t)
	token := signupAndSignin(t, router, "vk@x.com")

	err := st.With(func(*store.State) error { panic("corrupted") })
	require.ErrorIs(t, err, store.ErrUnavailable)

	rec := call(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[map[string]string](t, rec)["status"])

	rec = call(t, router, http.MethodGet, "/authed/todos", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Error", decode[map[string]string](t, rec)["message"])
}

func TestEmptyPasswordIsAccepted(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/user/signup", "", gin.H{
		"email": "blank@x.com", "name": "B", "password": "",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "User created Successfully", decode[map[string]string](t, rec)["message"])

	rec = call(t, router, http.MethodPost, "/user/signin", "", gin.H{
		"email": "blank@x.com", "password": "",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, rec)["token"])

	rec = call(t, router, http.MethodPost, "/user/signin", "", gin.H{
		"email": "blank@x.com", "password": "not-blank",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WRONG_PASSWORD", decode[map[string]string](t, rec)["code"])
}

func TestMissingPasswordIsRejected(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/user/signup", "", gin.H{"email": "nopw@x.com", "name": "N"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[map[string]string](t, rec)["code"])
}

func TestPaddedTokenIsRejected(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router, "pad@x.com")

	rec := call(t, router, http.MethodGet, "/authed/todos", " "+token+" ", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decode[map[string]string](t, rec)["code"])
}

func TestSignupScenario(t *testing.T) {
	router := newTestRouter(t)
	signupAndSignin(t, router, "vk@x.com")

	rec := call(t, router, http.MethodPost, "/user/signup", "", gin.H{
		"email": "vk@x.com", "name": "VK", "password": "Random1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decode[map[string]string](t, rec)["code"])
}

func TestSigninWrongPassword(t *testing.T) {
	router := newTestRouter(t)
	signupAndSignin(t, router, "vk3@x.com")

	rec := call(t, router, http.MethodPost, "/user/signin", "", gin.H{
		"email": "vk3@x.com", "password": "INVALID_PASSWORD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Enter valid Password", decode[map[string]string](t, rec)["message"])
}

func TestSigninUnknownUser(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/user/signin", "", gin.H{
		"email": "ghost@x.com", "password": "Random1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NOT_REGISTERED", decode[map[string]string](t, rec)["code"])
}

func TestCreateWithoutToken(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/authed/todo", "", gin.H{"title": "Go to Gym", "done": false})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decode[map[string]string](t, rec)
	assert.Equal(t, "MISSING_TOKEN", payload["code"])
	assert.Equal(t, "Token Not found", payload["message"])
}

func TestCreateWithGarbageToken(t *testing.T) {
	router := newTestRouter(t)
	rec := call(t, router, http.MethodGet, "/authed/todos", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decode[map[string]string](t, rec)["code"])
}

func TestCreateUpdateListScenario(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router, "vk5@x.com")

	rec := call(t, router, http.MethodPost, "/authed/todo", token, gin.H{"title": "Go to Gym", "done": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[store.Task](t, rec)
	assert.Equal(t, "Go to Gym", created.Title)
	assert.False(t, created.Done)
	assert.Equal(t, "vk5@x.com", created.Owner)

	rec = call(t, router, http.MethodPut, fmt.Sprintf("/authed/todo/%d", created.ID), token, gin.H{"title": "Go to Gym", "done": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Updated Successfully", decode[map[string]string](t, rec)["message"])

	rec = call(t, router, http.MethodGet, "/authed/todos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]store.Task](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.True(t, list[0].Done)
}

func TestCreateWithEmptyTitle(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router, "empty@x.com")

	rec := call(t, router, http.MethodPost, "/authed/todo", token, gin.H{"title": "", "done": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[store.Task](t, rec)
	assert.Equal(t, "", created.Title)

	rec = call(t, router, http.MethodPut, fmt.Sprintf("/authed/todo/%d", created.ID), token, gin.H{"title": "", "done": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, router, http.MethodPost, "/authed/todo", token, gin.H{"done": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[map[string]string](t, rec)["code"])
}

func TestListPreservesOrder(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router, "vk6@x.com")

	call(t, router, http.MethodPost, "/authed/todo", token, gin.H{"title": "Go to Gym", "done": false})
	call(t, router, http.MethodPost, "/authed/todo", token, gin.H{"title": "Go to Movie", "done": false})

	rec := call(t, router, http.MethodGet, "/authed/todos", token, nil)
	list := decode[[]store.Task](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Go to Gym", list[0].Title)
	assert.Equal(t, "Go to Movie", list[1].Title)
}

func TestOwnershipIsolation(t *testing.T) {
	router := newTestRouter(t)
	alice := signupAndSignin(t, router, "alice@x.com")
	bob := signupAndSignin(t, router, "bob@x.com")

	rec := call(t, router, http.MethodPost, "/authed/todo", alice, gin.H{"title": "secret", "done": false})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[store.Task](t, rec)

	rec = call(t, router, http.MethodGet, "/authed/todos", bob, nil)
	assert.Empty(t, decode[[]store.Task](t, rec))

	rec = call(t, router, http.MethodPut, fmt.Sprintf("/authed/todo/%d", created.ID), bob, gin.H{"title": "stolen", "done": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NOT_OWNER", decode[map[string]string](t, rec)["code"])

	rec = call(t, router, http.MethodGet, "/authed/todos", alice, nil)
	list := decode[[]store.Task](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "secret", list[0].Title)
	assert.False(t, list[0].Done)
}

func TestConcurrentCreatesOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router, "busy@x.com")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/authed/todo",
				bytes.NewBufferString(fmt.Sprintf(`{"title":"t%d","done":false}`, i)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(auth.TokenHeader, token)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}(i)
	}
	wg.Wait()

	rec := call(t, router, http.MethodGet, "/authed/todos", token, nil)
	list := decode[[]store.Task](t, rec)
	require.Len(t, list, n)
	seen := make(map[int]bool, n)
	for _, task := range list {
		seen[task.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestNewRouterRequiresDeps(t *testing.T) {
	_, err := NewRouter(Deps{})
	assert.Error(t, err)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, SplitOrigins(" http://a, ,http://b "))
	assert.Nil(t, SplitOrigins(""))
}
