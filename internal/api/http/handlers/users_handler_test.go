package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	httptransport "github.com/spec-kit/user-directory/internal/api/http"
	"github.com/spec-kit/user-directory/internal/api/http/handlers"
	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/observability"
	"github.com/spec-kit/user-directory/internal/repository"
	"github.com/spec-kit/user-directory/internal/service"
)

type userBody struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type failingStore struct {
	repository.UserStore
}

func (failingStore) SelectAll(context.Context) ([]domain.User, error) {
	return nil, domain.NewStorageError("select all", errors.New("connection refused"))
}

type staticPinger struct{ err error }

func (p staticPinger) Ping(context.Context) error { return p.err }

var seedJoe = domain.User{
	ID:        uuid.MustParse("1b4e28ba-2fa1-41d2-883f-0016d3cca427"),
	FirstName: "Joe",
	LastName:  "Jones",
	Gender:    domain.GenderMale,
	Age:       22,
	Email:     "joe.jones@gmail.com",
}

func newTestApp(t *testing.T, store repository.UserStore, deps map[string]handlers.Pinger) *fiber.App {
	t.Helper()
	return newLoggedTestApp(t, store, deps, zap.NewNop())
}

func newLoggedTestApp(t *testing.T, store repository.UserStore, deps map[string]handlers.Pinger, logger *zap.Logger) *fiber.App {
	t.Helper()
	metrics := observability.NewMetrics("test")
	directory := service.NewUserDirectory(service.DirectoryDependencies{Store: store, Recorder: metrics})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler("user-directory", "test", deps),
		Users:   handlers.NewUsersHandler(directory),
		Metrics: metrics,
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func annaBody() map[string]any {
	return map[string]any{
		"first_name": "Anna",
		"last_name":  "Montana",
		"gender":     "female",
		"age":        30,
		"email":      "anna@gmail.com",
	}
}

func TestListUsers(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct{ Data []userBody }](t, resp)
	require.Len(t, body.Data, 1)
	assert.Equal(t, seedJoe.ID.String(), body.Data[0].ID)
	assert.Equal(t, "MALE", body.Data[0].Gender)
}

func TestListUsers_GenderFilter(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodGet, "/api/v1/users?gender=female", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct{ Data []userBody }](t, resp)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)

	resp = do(t, app, http.MethodGet, "/api/v1/users?gender=Male", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode[struct{ Data []userBody }](t, resp)
	assert.Len(t, body.Data, 1)
}

func TestListUsers_InvalidFilter(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	for _, target := range []string{"/api/v1/users?gender=robot", "/api/v1/users?gender="} {
		resp := do(t, app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		body := decode[errorBody](t, resp)
		assert.Equal(t, "INVALID_FILTER", body.Error.Code, target)
	}
}

func TestGetUser(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodGet, "/api/v1/users/"+seedJoe.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct{ Data userBody }](t, resp)
	assert.Equal(t, "joe.jones@gmail.com", body.Data.Email)

	resp = do(t, app, http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, resp).Error.Code)

	resp = do(t, app, http.MethodGet, "/api/v1/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, resp).Error.Code)
}

func TestCreateUser(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodPost, "/api/v1/users", annaBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct{ Data userBody }](t, resp).Data
	assert.Equal(t, "FEMALE", created.Gender)
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	resp = do(t, app, http.MethodGet, "/api/v1/users/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[struct{ Data userBody }](t, resp).Data)

	resp = do(t, app, http.MethodGet, "/api/v1/users", nil)
	assert.Len(t, decode[struct{ Data []userBody }](t, resp).Data, 2)
}

func TestCreateUser_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"missing first name", func(b map[string]any) { delete(b, "first_name") }, "first_name"},
		{"missing age", func(b map[string]any) { delete(b, "age") }, "age"},
		{"negative age", func(b map[string]any) { b["age"] = -4 }, "age"},
		{"malformed email", func(b map[string]any) { b["email"] = "not-an-email" }, "email"},
		{"unknown gender", func(b map[string]any) { b["gender"] = "robot" }, "gender"},
		{"malformed id", func(b map[string]any) { b["id"] = "nope" }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
			payload := annaBody()
			tt.edit(payload)

			resp := do(t, app, http.MethodPost, "/api/v1/users", payload)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
			assert.Equal(t, tt.field, body.Error.Details["field"])
		})
	}
}

func TestCreateUser_DuplicateID(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
	payload := annaBody()
	payload["id"] = seedJoe.ID.String()

	resp := do(t, app, http.MethodPost, "/api/v1/users", payload)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[errorBody](t, resp).Error.Code)
}

func TestUpdateUser(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodPut, "/api/v1/users/"+seedJoe.ID.String(), annaBody())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/v1/users/"+seedJoe.ID.String(), nil)
	got := decode[struct{ Data userBody }](t, resp).Data
	assert.Equal(t, "Anna", got.FirstName)
	assert.Equal(t, "FEMALE", got.Gender)
	assert.Equal(t, seedJoe.ID.String(), got.ID)
}

func TestUpdateUser_IDInBody(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
	payload := annaBody()
	payload["id"] = seedJoe.ID.String()

	resp := do(t, app, http.MethodPut, "/api/v1/users", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/v1/users", annaBody())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	payload["id"] = uuid.NewString()
	resp = do(t, app, http.MethodPut, "/api/v1/users/"+seedJoe.ID.String(), payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUser_PathAndBodyIDInDifferentForms(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
	payload := annaBody()
	payload["id"] = seedJoe.ID.String()
	compact := strings.ReplaceAll(seedJoe.ID.String(), "-", "")

	resp := do(t, app, http.MethodPut, "/api/v1/users/"+compact, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/v1/users/"+seedJoe.ID.String(), nil)
	assert.Equal(t, "Anna", decode[struct{ Data userBody }](t, resp).Data.FirstName)
}

func TestUpdateUser_UnknownID(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodPut, "/api/v1/users/"+uuid.NewString(), annaBody())

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteUser(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
	target := "/api/v1/users/" + seedJoe.ID.String()

	resp := do(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSeedSampleUsers(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)

	resp := do(t, app, http.MethodPost, "/api/v1/users/test", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[struct{ Data []userBody }](t, resp).Data, 5)
}

func TestStorageFailureMapsTo500(t *testing.T) {
	app := newTestApp(t, failingStore{}, nil)

	resp := do(t, app, http.MethodGet, "/api/v1/users", nil)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[errorBody](t, resp)
	assert.Equal(t, "STORAGE_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "connection refused")
}

func TestServerErrorLoggedOnce(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	app := newLoggedTestApp(t, failingStore{}, nil, zap.New(core))

	resp := do(t, app, http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	errorEntries := logs.FilterLevelExact(zap.ErrorLevel).All()
	require.Len(t, errorEntries, 1)
	assert.Equal(t, "STORAGE_ERROR", errorEntries[0].ContextMap()["code"])
	assert.Equal(t, int64(http.StatusInternalServerError), errorEntries[0].ContextMap()["status"])
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(), map[string]handlers.Pinger{
		"postgres": staticPinger{},
	})
	resp := do(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestApp(t, repository.NewMemoryUserStore(), map[string]handlers.Pinger{
		"redis": staticPinger{err: errors.New("dial tcp: refused")},
	})
	resp = do(t, down, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", decode[errorBody](t, resp).Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(seedJoe), nil)
	do(t, app, http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)

	resp := do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "test_http_request_duration_seconds")
	assert.Contains(t, string(raw), `test_http_errors_total{code="NOT_FOUND"`)
	assert.Contains(t, string(raw), `test_directory_operations_total{operation="get",outcome="not_found"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(), nil)

	resp := do(t, app, http.MethodGet, "/api/v2/users", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, resp).Error.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	app := newTestApp(t, repository.NewMemoryUserStore(), nil)

	resp := do(t, app, http.MethodGet, "/api/v1/users", nil)

	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
