package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/academy-system/handlers"
	"github.com/Dosada05/academy-system/middleware"
	"github.com/Dosada05/academy-system/models"
	"github.com/Dosada05/academy-system/sensitive"
	"github.com/Dosada05/academy-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-secret"

type players struct{}

func (players) CreatePlayer(context.Context, int, sensitive.Record) (sensitive.Record, error) {
	return sensitive.Record{"id": 1}, nil
}

func (players) GetPlayer(_ context.Context, _, id int) (sensitive.Record, error) {
	return sensitive.Record{"id": id}, nil
}

func (players) ListPlayers(context.Context, int, services.Page) (*services.PlayerList, error) {
	return &services.PlayerList{Players: []sensitive.Record{}}, nil
}

func (players) UpdatePlayer(_ context.Context, _, id int, _ sensitive.Record) (sensitive.Record, error) {
	return sensitive.Record{"id": id}, nil
}

func (players) DeletePlayer(context.Context, int, int) error { return nil }

func (players) UploadPlayerPhoto(context.Context, int, int, io.Reader, int64, string) (sensitive.Record, error) {
	return nil, services.ErrPhotoStorageUnavailable
}

type auth struct{}

func (auth) Register(context.Context, services.RegisterInput) (*models.User, *models.Academy, error) {
	return nil, nil, services.ErrAcademyNameConflict
}

func (auth) Login(context.Context, services.LoginInput) (*models.User, error) {
	return nil, services.ErrAuthInvalidCredentials
}

type pinger struct{}

func (pinger) PingContext(context.Context) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	SetupRoutes(r,
		Options{JWTSecret: secret, AllowedOrigins: []string{"https://app.example.com"}},
		handlers.NewAuthHandler(auth{}, secret, logger),
		handlers.NewPlayerHandler(players{}, logger),
		handlers.NewWebSocketHandler(nil, []string{"https://app.example.com"}, logger),
		handlers.NewHealthHandler(pinger{}, logger),
	)
	return r
}

func tokenFor(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := middleware.IssueToken(secret, &models.User{ID: 1, AcademyID: 2, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func call(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/auth/login", "", `{"email":"a@b.co","password":"x"}`).Code)
	assert.Equal(t, http.StatusConflict, call(r, http.MethodPost, "/auth/register", "", `{"academy_name":"A","email":"a@b.co","password":"longenough"}`).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/unknown", "", "").Code)

	doc := call(r, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "Academy System API")
	assert.Contains(t, doc.Body.String(), "/players/{playerID}/photo")
	assert.Contains(t, doc.Body.String(), "encoded at rest in _cipher columns")
}

func TestPlayerRoutesRequireToken(t *testing.T) {
	r := newRouter(t)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/players", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/players/1", "bad", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/ws/academies/2", "", "").Code)
}

func TestQueryTokenOnlyOnSocket(t *testing.T) {
	r := newRouter(t)
	staff := tokenFor(t, models.RoleStaff)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/players?token="+staff, "", "").Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/ws/academies/9?token="+staff, "", "").Code)
}

func TestPlayerRoutesByRole(t *testing.T) {
	r := newRouter(t)
	staff := tokenFor(t, models.RoleStaff)
	coach := tokenFor(t, models.RoleCoach)
	owner := tokenFor(t, models.RoleOwner)

	cases := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{"staff lists", http.MethodGet, "/players", staff, "", http.StatusOK},
		{"staff reads", http.MethodGet, "/players/3", staff, "", http.StatusOK},
		{"staff cannot create", http.MethodPost, "/players", staff, `{"firstName":"A"}`, http.StatusForbidden},
		{"coach creates", http.MethodPost, "/players", coach, `{"firstName":"A"}`, http.StatusCreated},
		{"coach updates", http.MethodPatch, "/players/3", coach, `{"city":"Fes"}`, http.StatusOK},
		{"coach cannot delete", http.MethodDelete, "/players/3", coach, "", http.StatusForbidden},
		{"owner deletes", http.MethodDelete, "/players/3", owner, "", http.StatusNoContent},
		{"staff cannot upload", http.MethodPost, "/players/3/photo", staff, "", http.StatusForbidden},
		{"foreign academy socket", http.MethodGet, "/ws/academies/9", staff, "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, call(r, tc.method, tc.target, tc.token, tc.body).Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/players", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
