package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hannah-myrrh/csu-biolab-alers/internal/authz"
	"github.com/hannah-myrrh/csu-biolab-alers/internal/laboratories"
	pkgAuth "github.com/hannah-myrrh/csu-biolab-alers/pkg/auth"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/config"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/enums"
	"github.com/hannah-myrrh/csu-biolab-alers/pkg/logger"
)

type fakeLabService struct{}

func (fakeLabService) List(ctx context.Context) ([]laboratories.LaboratoryDTO, error) {
	return []laboratories.LaboratoryDTO{}, nil
}

func (fakeLabService) GetByID(ctx context.Context, id uuid.UUID) (*laboratories.LaboratoryDTO, error) {
	return &laboratories.LaboratoryDTO{ID: id}, nil
}

func (fakeLabService) Create(ctx context.Context, actor authz.Actor, input laboratories.CreateLaboratoryInput) (*laboratories.LaboratoryDTO, error) {
	return &laboratories.LaboratoryDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (fakeLabService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "biolab-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Dependencies{
		Config:       testConfig(),
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Laboratories: fakeLabService{},
	})
}

func mintToken(t *testing.T, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "router@example.edu",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/health/live", "/api/v1/laboratories"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", target, resp.Code)
		}
	}
}

func TestRouterProtectedRoutesNeedToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestRouterAdminRoutesRejectStudents(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/laboratories", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.RoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
