package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskapi/internal/access"
	"taskapi/internal/models"
	"taskapi/internal/services"
	"taskapi/internal/storage"
)

type stubAuthService struct {
	principal models.Principal
	err       error
}

func (s *stubAuthService) Register(context.Context, services.RegisterParams) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(context.Context, services.LoginParams) (*services.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Refresh(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAuthService) Authenticate(context.Context, string) (models.Principal, error) {
	return s.principal, s.err
}

type stubTaskService struct {
	task  *models.Task
	tasks []*models.Task
	err   error
}

func (s *stubTaskService) CreateTask(context.Context, models.Principal, services.CreateTaskParams) (*models.Task, error) {
	return s.task, s.err
}

func (s *stubTaskService) ListTasks(context.Context, models.Principal, services.ListTasksParams) ([]*models.Task, error) {
	return s.tasks, s.err
}

func (s *stubTaskService) GetTask(context.Context, models.Principal, int64) (*models.Task, error) {
	return s.task, s.err
}

func (s *stubTaskService) UpdateTask(context.Context, models.Principal, int64, services.UpdateTaskParams) (*models.Task, error) {
	return s.task, s.err
}

func (s *stubTaskService) DeleteTask(context.Context, models.Principal, int64) error {
	return s.err
}

func newTestRouter(auth services.AuthService, tasks services.TaskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := New(zerolog.Nop(), auth, tasks)
	group := router.Group("/api/v1/tasks", handler.HandleAuthMiddleware)
	group.GET("", handler.HandleListTasks)
	group.GET("/:id", handler.HandleGetTask)
	group.PUT("/:id", handler.HandleUpdateTask)
	group.DELETE("/:id", handler.HandleDeleteTask)

	return router
}

func doRequest(router *gin.Engine, method, target, body string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authorized {
		req.Header.Set("Authorization", "Bearer some-access-token")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuthService{principal: models.Principal{UserID: "u1"}}
	router := newTestRouter(auth, &stubTaskService{tasks: []*models.Task{}})

	t.Run("missing authorization header", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/tasks", "", false)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		rejecting := &stubAuthService{err: services.ErrInvalidToken}
		rejectingRouter := newTestRouter(rejecting, &stubTaskService{})
		w := doRequest(rejectingRouter, http.MethodGet, "/api/v1/tasks", "", true)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/tasks", "", true)
		if w.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestServiceErrorMapping(t *testing.T) {
	auth := &stubAuthService{principal: models.Principal{UserID: "u1"}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: storage.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "forbidden", err: access.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "duplicate title", err: storage.ErrDuplicateTitle, wantStatus: http.StatusConflict},
		{name: "owner not found", err: access.ErrOwnerNotFound, wantStatus: http.StatusBadRequest},
		{name: "invalid date", err: services.ErrInvalidDate, wantStatus: http.StatusBadRequest},
		{name: "validation error", err: &services.ValidationError{Field: "title", Message: "title is required"}, wantStatus: http.StatusBadRequest},
		{name: "unexpected error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(auth, &stubTaskService{err: tt.err})
			w := doRequest(router, http.MethodGet, "/api/v1/tasks/1", "", true)
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetTaskResponse(t *testing.T) {
	auth := &stubAuthService{principal: models.Principal{UserID: "u1"}}
	task := &models.Task{
		ID:      7,
		OwnerID: "u1",
		Title:   "Report",
		DueDate: time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC),
	}
	router := newTestRouter(auth, &stubTaskService{task: task})

	w := doRequest(router, http.MethodGet, "/api/v1/tasks/7", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); !strings.Contains(body, `"due_date":"2024-01-04"`) {
		t.Errorf("due_date not serialized as a calendar date: %s", body)
	}
}

func TestUpdateTaskRejectsUnknownFields(t *testing.T) {
	auth := &stubAuthService{principal: models.Principal{UserID: "u1"}}
	router := newTestRouter(auth, &stubTaskService{task: &models.Task{ID: 1, OwnerID: "u1"}})

	w := doRequest(router, http.MethodPut, "/api/v1/tasks/1", `{"nickname":"x"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestInvalidTaskID(t *testing.T) {
	auth := &stubAuthService{principal: models.Principal{UserID: "u1"}}
	router := newTestRouter(auth, &stubTaskService{})

	w := doRequest(router, http.MethodGet, "/api/v1/tasks/abc", "", true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
}
