package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tugas-go/internal/api/v1/handlers"
	"tugas-go/internal/cache"
	"tugas-go/internal/service"
	"tugas-go/internal/testutil/memstore"
	"tugas-go/internal/token"
	"tugas-go/pkg/logger"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testApp struct {
	app   *fiber.App
	store *memstore.Store
}

func createTestApp(t *testing.T, taskCache service.TaskCache) *testApp {
	t.Helper()
	store := memstore.New()
	validate := service.NewValidator()
	tokens := token.New("test-secret", 24*time.Hour)

	tasks := service.NewTaskService(store.Tasks(), taskCache, validate)
	accounts, err := service.NewAccountService(store.Users(), tokens, tasks, validate, bcrypt.MinCost)
	require.NoError(t, err)

	log := logger.NewNop()
	h := handlers.New(accounts, tasks, fakePinger{}, log)
	return &testApp{app: NewApp(h, tokens, log, "*"), store: store}
}

type apiResponse struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type userData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type taskData struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	DueDate     *time.Time `json:"dueDate"`
}

func (a *testApp) registerAlice(t *testing.T) (userData, string) {
	t.Helper()
	status, res := a.do(t, http.MethodPost, "/registeruser", "", map[string]string{
		"username": "alice1",
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	var u userData
	require.NoError(t, json.Unmarshal(res.Data, &u))
	return u, res.Token
}

func TestEndToEndTaskLifecycle(t *testing.T) {
	a := createTestApp(t, nil)

	alice, tok := a.registerAlice(t)
	assert.NotEmpty(t, tok)
	assert.Equal(t, "alice1", alice.Username)

	status, res := a.do(t, http.MethodPost, "/createtask", tok, map[string]any{
		"title":       "Buy groceries today",
		"description": "Milk eggs bread and cheese",
		"userId":      alice.ID,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	assert.Equal(t, "Task created successfully", res.Message)
	var task taskData
	require.NoError(t, json.Unmarshal(res.Data, &task))
	assert.Equal(t, alice.ID, task.UserID)
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.DueDate)

	status, res = a.do(t, http.MethodGet, "/readtasksbyuid/"+alice.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	var list []taskData
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, task.ID, list[0].ID)

	status, res = a.do(t, http.MethodDelete, "/deletetaskbyid/"+task.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task deleted successfully", res.Message)

	status, res = a.do(t, http.MethodGet, "/readtasksbyuid/"+alice.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(res.Data))
}

func TestRegisterAndLogin(t *testing.T) {
	a := createTestApp(t, nil)
	alice, _ := a.registerAlice(t)

	status, res := a.do(t, http.MethodPost, "/registeruser", "", map[string]string{
		"username": "alice2", "email": "a@x.com", "password": "password1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "User already exists", res.Message)
	assert.False(t, res.Success)

	status, res = a.do(t, http.MethodPost, "/registeruser", "", map[string]string{"username": "bobby1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields are required", res.Message)

	status, res = a.do(t, http.MethodPost, "/loginuser", "", map[string]string{"email": "a@x.com", "password": "password1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful", res.Message)
	assert.NotEmpty(t, res.Token)
	var u userData
	require.NoError(t, json.Unmarshal(res.Data, &u))
	assert.Equal(t, alice, u)
	assert.NotContains(t, string(res.Data), "password")

	_, wrong := a.do(t, http.MethodPost, "/loginuser", "", map[string]string{"email": "a@x.com", "password": "password2"})
	status, unknown := a.do(t, http.MethodPost, "/loginuser", "", map[string]string{"email": "z@x.com", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, wrong, unknown)
}

func TestMalformedBody(t *testing.T) {
	a := createTestApp(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/registeruser", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := createTestApp(t, nil)
	id := uuid.NewString()

	routes := []struct{ method, path string }{
		{http.MethodPut, "/updateuser/" + id},
		{http.MethodDelete, "/deleteuser/" + id},
		{http.MethodPost, "/createtask"},
		{http.MethodGet, "/readtaskbyid/" + id},
		{http.MethodGet, "/readtasksbyuid/" + id},
		{http.MethodPut, "/updatetaskbyid/" + id},
		{http.MethodDelete, "/deletetaskbyid/" + id},
	}
	for _, r := range routes {
		status, res := a.do(t, r.method, r.path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, status, r.path)
		assert.Equal(t, "No token provided", res.Message, r.path)

		status, res = a.do(t, r.method, r.path, "garbage", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, status, r.path)
		assert.Equal(t, "Invalid token", res.Message, r.path)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	a := createTestApp(t, nil)
	alice, tok := a.registerAlice(t)

	status, res := a.do(t, http.MethodPut, "/updateuser/"+alice.ID, tok, map[string]string{"username": "alice_new"})
	require.Equal(t, http.StatusOK, status, res.Message)
	var u userData
	require.NoError(t, json.Unmarshal(res.Data, &u))
	assert.Equal(t, "alice_new", u.Username)

	status, res = a.do(t, http.MethodPut, "/updateuser/not-a-uuid", tok, map[string]string{"username": "alice_new"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID format", res.Message)

	status, _ = a.do(t, http.MethodPut, "/updateuser/"+uuid.NewString(), tok, map[string]string{"username": "alice_new"})
	assert.Equal(t, http.StatusNotFound, status)

	status, res = a.do(t, http.MethodPost, "/createtask", tok, map[string]any{
		"title": "Write the weekly report", "description": "Summarise progress for the team",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	var task taskData
	require.NoError(t, json.Unmarshal(res.Data, &task))
	assert.Equal(t, alice.ID, task.UserID, "owner defaults to the caller")

	status, res = a.do(t, http.MethodDelete, "/deleteuser/"+alice.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User deleted successfully", res.Message)

	// token masih valid secara signature, tapi task ikut terhapus
	status, _ = a.do(t, http.MethodGet, "/readtaskbyid/"+task.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, http.MethodDelete, "/deleteuser/"+alice.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTaskUpdateAndErrors(t *testing.T) {
	a := createTestApp(t, nil)
	alice, tok := a.registerAlice(t)

	status, res := a.do(t, http.MethodPost, "/createtask", tok, map[string]any{
		"title": "short", "description": "Milk eggs bread and cheese", "userId": alice.ID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Task title must be at least 10 characters", res.Message)

	status, res = a.do(t, http.MethodPost, "/createtask", tok, map[string]any{
		"title": "Buy groceries today", "description": "Milk eggs bread and cheese",
		"userId": alice.ID, "dueDate": "2030-06-15",
	})
	require.Equal(t, http.StatusCreated, status)
	var task taskData
	require.NoError(t, json.Unmarshal(res.Data, &task))
	require.NotNil(t, task.DueDate)

	status, res = a.do(t, http.MethodPut, "/updatetaskbyid/"+task.ID, tok, map[string]any{"isCompleted": true, "dueDate": ""})
	require.Equal(t, http.StatusOK, status, res.Message)
	var updated taskData
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	assert.True(t, updated.IsCompleted)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, task.Title, updated.Title)

	status, res = a.do(t, http.MethodGet, "/readtaskbyid/"+task.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task retrieved successfully", res.Message)

	status, res = a.do(t, http.MethodGet, "/readtaskbyid/123", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid task ID format", res.Message)

	status, res = a.do(t, http.MethodDelete, "/deletetaskbyid/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", res.Message)
}

func TestStoreFailureIsGeneric500(t *testing.T) {
	a := createTestApp(t, nil)
	_, tok := a.registerAlice(t)
	a.store.FailWith = errors.New("pq: connection refused to 10.0.0.5")

	status, res := a.do(t, http.MethodGet, "/readtaskbyid/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", res.Message)
	assert.False(t, res.Success)
}

func TestTasksServedFromRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := createTestApp(t, cache.NewTaskCache(client, time.Minute, zap.NewNop()))
	alice, tok := a.registerAlice(t)

	status, res := a.do(t, http.MethodPost, "/createtask", tok, map[string]any{
		"title": "Buy groceries today", "description": "Milk eggs bread and cheese", "userId": alice.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	var task taskData
	require.NoError(t, json.Unmarshal(res.Data, &task))

	status, _ = a.do(t, http.MethodGet, "/readtaskbyid/"+task.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, mr.Exists("task:"+task.ID))

	status, _ = a.do(t, http.MethodDelete, "/deletetaskbyid/"+task.ID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	cached, err := mr.Get("task:" + task.ID)
	require.NoError(t, err)
	assert.Equal(t, "-", cached)

	status, res = a.do(t, http.MethodGet, "/readtaskbyid/"+task.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", res.Message)
}

func TestHealth(t *testing.T) {
	log := logger.NewNop()
	tokens := token.New("test-secret", time.Hour)

	for _, tc := range []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"up", nil, http.StatusOK, "ok"},
		{"down", errors.New("db down"), http.StatusServiceUnavailable, "unavailable"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(handlers.New(nil, nil, fakePinger{err: tc.err}, log), tokens, log, "*")
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.want, body["status"])
		})
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	a := createTestApp(t, nil)
	status, res := a.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.Status)
}
