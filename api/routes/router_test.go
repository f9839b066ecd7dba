package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/robml/dbaccounting/internal/accounts"
	"github.com/robml/dbaccounting/internal/accounttypes"
	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/internal/reports"
	pkgAuth "github.com/robml/dbaccounting/pkg/auth"
	"github.com/robml/dbaccounting/pkg/config"
	"github.com/robml/dbaccounting/pkg/db/models"
	"github.com/robml/dbaccounting/pkg/logger"
	"github.com/robml/dbaccounting/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAccountTypeService struct{}

func (stubAccountTypeService) List(ctx context.Context) ([]models.AccountType, error) {
	return []models.AccountType{}, nil
}

func (stubAccountTypeService) GetByID(ctx context.Context, id uuid.UUID) (*models.AccountType, error) {
	panic("unimplemented")
}

func (stubAccountTypeService) Create(ctx context.Context, input accounttypes.CreateAccountTypeInput) (*models.AccountType, error) {
	panic("unimplemented")
}

func (stubAccountTypeService) Update(ctx context.Context, id uuid.UUID, input accounttypes.UpdateAccountTypeInput) (*models.AccountType, error) {
	panic("unimplemented")
}

func (stubAccountTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubAccountService struct{}

func (stubAccountService) List(ctx context.Context) ([]models.Account, error) {
	return []models.Account{}, nil
}

func (stubAccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	panic("unimplemented")
}

func (stubAccountService) Create(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error) {
	panic("unimplemented")
}

func (stubAccountService) Update(ctx context.Context, id uuid.UUID, input accounts.UpdateAccountInput) (*models.Account, error) {
	panic("unimplemented")
}

func (stubAccountService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubLedgerService struct{}

func (stubLedgerService) List(ctx context.Context) ([]models.Transaction, error) {
	return []models.Transaction{}, nil
}

func (stubLedgerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	panic("unimplemented")
}

func (stubLedgerService) Post(ctx context.Context, input ledger.PostInput) (*models.Transaction, error) {
	return &models.Transaction{ID: uuid.New()}, nil
}

func (stubLedgerService) Amend(ctx context.Context, id uuid.UUID, input ledger.PostInput) (*models.Transaction, error) {
	panic("unimplemented")
}

func (stubLedgerService) Retract(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubLedgerService) Ledger(ctx context.Context, accountTypeID uuid.UUID) (*ledger.Node, error) {
	panic("unimplemented")
}

type stubReportService struct{}

func (stubReportService) Summary(ctx context.Context) (*reports.Summary, error) {
	return &reports.Summary{}, nil
}

func (stubReportService) BalanceSheet(ctx context.Context) (*reports.BalanceSheet, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		&redis.Client{},
		stubAccountTypeService{},
		stubAccountService{},
		stubLedgerService{},
		stubReportService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, permissions ...string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      uuid.New(),
		Permissions: permissions,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIRequiresPermission(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	reader := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/", nil)
	reader.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "account:read"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reader)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without transaction:read got %d", resp.Code)
	}

	granted := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/", nil)
	granted.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "transaction:read"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, granted)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with transaction:read got %d", resp.Code)
	}
}

func TestReadPermissionCannotWrite(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "transaction:read"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without transaction:write got %d", resp.Code)
	}
}

func TestReportsGroupRequiresReportRead(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	denied := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	denied.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "account:read"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, denied)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without report:read got %d", resp.Code)
	}

	granted := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
	granted.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "report:read"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, granted)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with report:read got %d", resp.Code)
	}
}
