package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robml/dbaccounting/api/controllers"
	"github.com/robml/dbaccounting/api/middleware"
	"github.com/robml/dbaccounting/internal/accounts"
	"github.com/robml/dbaccounting/internal/accounttypes"
	"github.com/robml/dbaccounting/internal/ledger"
	"github.com/robml/dbaccounting/internal/reports"
	"github.com/robml/dbaccounting/pkg/config"
	"github.com/robml/dbaccounting/pkg/logger"
	"github.com/robml/dbaccounting/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	accountTypeService accounttypes.Service,
	accountService accounts.Service,
	ledgerService ledger.Service,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	postingPolicy := middleware.NewPostingRateLimitPolicy(
		"posting",
		cfg.PostingLimit.Window,
		cfg.PostingLimit.ActorLimit,
		cfg.PostingLimit.IPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisClient,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/account-types", func(r chi.Router) {
			r.With(middleware.RequirePermission("account_type:read", logg)).
				Get("/", controllers.AccountTypeList(accountTypeService, logg))
			r.With(middleware.RequirePermission("account_type:read", logg)).
				Get("/{id}", controllers.AccountTypeDetail(accountTypeService, logg))
			r.With(middleware.RequirePermission("report:read", logg)).
				Get("/{id}/ledger", controllers.AccountTypeLedger(ledgerService, logg))
			r.With(middleware.RequirePermission("account_type:write", logg)).
				Post("/", controllers.AccountTypeCreate(accountTypeService, logg))
			r.With(middleware.RequirePermission("account_type:write", logg)).
				Put("/{id}", controllers.AccountTypeUpdate(accountTypeService, logg))
			r.With(middleware.RequirePermission("account_type:write", logg)).
				Delete("/{id}", controllers.AccountTypeDelete(accountTypeService, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.With(middleware.RequirePermission("account:read", logg)).
				Get("/", controllers.AccountList(accountService, logg))
			r.With(middleware.RequirePermission("account:read", logg)).
				Get("/{id}", controllers.AccountDetail(accountService, logg))
			r.With(middleware.RequirePermission("account:write", logg)).
				Post("/", controllers.AccountCreate(accountService, logg))
			r.With(middleware.RequirePermission("account:write", logg)).
				Put("/{id}", controllers.AccountUpdate(accountService, logg))
			r.With(middleware.RequirePermission("account:write", logg)).
				Delete("/{id}", controllers.AccountDelete(accountService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.With(middleware.RequirePermission("transaction:read", logg)).
				Get("/", controllers.TransactionList(ledgerService, logg))
			r.With(middleware.RequirePermission("transaction:read", logg)).
				Get("/{id}", controllers.TransactionDetail(ledgerService, logg))

			write := r.With(
				middleware.RequirePermission("transaction:write", logg),
				middleware.PostingRateLimit(postingPolicy, redisClient, logg),
			)
			write.Post("/", controllers.TransactionPost(ledgerService, logg))
			write.Put("/{id}", controllers.TransactionAmend(ledgerService, logg))
			write.Delete("/{id}", controllers.TransactionRetract(ledgerService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequirePermission("report:read", logg))
			r.Get("/summary", controllers.ReportSummary(reportService, logg))
			r.Get("/balance-sheet", controllers.ReportBalanceSheet(reportService, logg))
		})
	})

	return r
}
