package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/model"
	"github.com/taskdeck/backend/internal/service"
)

type fakeUserStore struct {
	users  map[string]*model.User
	nextID int64
}

func (f *fakeUserStore) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	if _, exists := f.users[username]; exists {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	f.nextID++
	user := &model.User{ID: f.nextID, Username: username, PasswordHash: passwordHash}
	f.users[username] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, exists := f.users[username]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type fakeSessionStore struct {
	records map[string]string
}

func (f *fakeSessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	f.records[key] = value
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := f.records[key]
	return value, ok, nil
}

type fakeTaskStore struct {
	tasks  map[int64]*model.Task
	nextID int64
}

func (f *fakeTaskStore) CreateTask(ctx context.Context, ownerID int64, name, description, status string) (*model.Task, error) {
	f.nextID++
	task := &model.Task{ID: f.nextID, TaskName: name, Description: description, Status: status, UserID: ownerID}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTaskStore) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return task, nil
}

func (f *fakeTaskStore) ListTasks(ctx context.Context, ownerID int64, statusFilter string) ([]model.Task, error) {
	list := []model.Task{}
	for _, task := range f.tasks {
		if task.UserID != ownerID {
			continue
		}
		if statusFilter != "" && !strings.Contains(strings.ToLower(task.Status), strings.ToLower(statusFilter)) {
			continue
		}
		list = append(list, *task)
	}
	return list, nil
}

func (f *fakeTaskStore) UpdateTask(ctx context.Context, id int64, name, description, status string) error {
	task, ok := f.tasks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	task.TaskName = name
	task.Description = description
	task.Status = status
	return nil
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, id int64) error {
	delete(f.tasks, id)
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &fakeUserStore{users: make(map[string]*model.User)}
	sessions := &fakeSessionStore{records: make(map[string]string)}
	tasks := &fakeTaskStore{tasks: make(map[int64]*model.Task)}

	authSvc, err := service.NewAuthService(users, sessions, config.AuthConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  "30m",
		SessionTTL: "168h",
	}, slog.Default())
	require.NoError(t, err)
	taskSvc := service.NewTaskService(tasks, slog.Default())

	router := gin.New()
	router.POST("/auth/register", NewAuthHandler(authSvc).Register)
	router.POST("/auth/login", NewAuthHandler(authSvc).Login)
	router.POST("/auth/refresh", NewAuthHandler(authSvc).Refresh)

	authorized := router.Group("/", AuthMiddleware(authSvc))
	taskHandler := NewTaskHandler(taskSvc)
	authorized.POST("/tasks", taskHandler.CreateTask)
	authorized.GET("/tasks", taskHandler.ListTasks)
	authorized.PUT("/task/:id", taskHandler.UpdateTask)
	authorized.DELETE("/task/:id", taskHandler.DeleteTask)

	return router
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, username, password string) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/register", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func login(t *testing.T, router *gin.Engine, username, password string) model.LoginResponse {
	t.Helper()
	w := doForm(router, "/auth/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestAuthMiddlewareRejections(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/tasks", "", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Authorization header missing or invalid", detail(t, w))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Authorization header missing or invalid", detail(t, rec))

	w = doJSON(router, http.MethodGet, "/tasks", "garbage-token", "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Invalid token", detail(t, w))
}

func TestAuthMiddlewareUnknownSubject(t *testing.T) {
	// a token signed for a user that no longer resolves to a record
	router := newTestRouter(t)
	other := newTestRouter(t)

	register(t, other, "ghost", "pw1")
	resp := login(t, other, "ghost", "pw1")

	// token verifies (same test secret) but the user only exists in `other`
	w := doJSON(router, http.MethodGet, "/tasks", resp.AccessToken, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "user not found", detail(t, w))
}

func TestEndToEndFlow(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice", "pw1")
	resp := login(t, router, "alice", "pw1")
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	w := doJSON(router, http.MethodPost, "/tasks", resp.AccessToken,
		`{"task_name":"groceries","description":"milk and eggs","status":"pending"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created model.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "task create successful", created.Message)
	require.Equal(t, "groceries, milk and eggs, pending", created.Task)

	w = doJSON(router, http.MethodGet, "/tasks", resp.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "groceries", tasks[0].TaskName)

	w = doForm(router, "/auth/refresh", url.Values{"refresh_token": {resp.RefreshToken}})
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed model.RefreshResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	// the refreshed access token works on protected endpoints
	w = doJSON(router, http.MethodGet, "/tasks", refreshed.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	// wrong password yields a credential failure and no tokens
	w = doForm(router, "/auth/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Incorrect username or password", detail(t, w))
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	router := newTestRouter(t)

	w := doForm(router, "/auth/refresh", url.Values{"refresh_token": {"never-issued"}})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Could not validate credentials", detail(t, w))
}

func TestTaskOwnershipOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice", "pw1")
	register(t, router, "bob", "pw2")
	alice := login(t, router, "alice", "pw1")
	bob := login(t, router, "bob", "pw2")

	w := doJSON(router, http.MethodPost, "/tasks", alice.AccessToken,
		`{"task_name":"a","description":"d","status":"pending"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// bob cannot update or delete alice's task
	w = doJSON(router, http.MethodPut, "/task/1", bob.AccessToken,
		`{"task_name":"hijack","description":"d","status":"done"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "forbidden", detail(t, w))

	w = doJSON(router, http.MethodDelete, "/task/1", bob.AccessToken, "")
	require.Equal(t, http.StatusForbidden, w.Code)

	// alice can
	w = doJSON(router, http.MethodPut, "/task/1", alice.AccessToken,
		`{"task_name":"a2","description":"d2","status":"done"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/task/1", alice.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	// gone now, and probing does not reveal existence
	w = doJSON(router, http.MethodDelete, "/task/1", alice.AccessToken, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "task not found", detail(t, w))
}

func TestTaskListFilterOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice", "pw1")
	alice := login(t, router, "alice", "pw1")

	w := doJSON(router, http.MethodPost, "/tasks", alice.AccessToken,
		`{"task_name":"a","description":"d","status":"Done"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodPost, "/tasks", alice.AccessToken,
		`{"task_name":"b","description":"d","status":"pending"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/tasks?filter_status=done", alice.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "Done", tasks[0].Status)
}

func TestRegisterDuplicateUsernameOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice", "pw1")
	w := doJSON(router, http.MethodPost, "/auth/register", "", `{"username":"alice","password":"pw2"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}
