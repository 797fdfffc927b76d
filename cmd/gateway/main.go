package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	api "github.com/opencampus/opencampus-sis/internal/api/http"
	"github.com/opencampus/opencampus-sis/internal/auth"
	"github.com/opencampus/opencampus-sis/internal/cashier"
	"github.com/opencampus/opencampus-sis/internal/config"
	"github.com/opencampus/opencampus-sis/internal/db"
	"github.com/opencampus/opencampus-sis/internal/gradebook"
	"github.com/opencampus/opencampus-sis/internal/rbac"
	"github.com/opencampus/opencampus-sis/internal/registry"
	"github.com/opencampus/opencampus-sis/internal/settings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	settingsStore := settings.NewStore(dbh)
	if err := settingsStore.Ensure(ctx, cfg.SchoolYear); err != nil {
		log.Fatalf("settings init failed: %v", err)
	}

	if err := ensureAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	registryStore := registry.NewSQLStore(dbh)
	cashierStore := cashier.NewSQLStore(dbh)
	gradebookStore := gradebook.NewSQLStore(dbh)
	validator := cashier.NewValidator(registryStore, cashierStore)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc, dbh, cfg.AllowClaimRole))
		pr.Use(api.MaintenanceGate(settingsStore))
		pr.Use(api.ParentPortalGate(settingsStore))

		// Cashier window
		pr.With(rbac.Require("cashier:checkout")).
			Post("/cashier/checkout", api.CheckoutHandler(validator))
		pr.With(rbac.Require("cashier:view")).
			Get("/cashier/receipts", api.ListReceiptsHandler(cashierStore))
		pr.With(rbac.RequireAny("cashier:view", "cashier:view-own")).
			Get("/cashier/receipts/{receiptID}", api.GetReceiptHandler(cashierStore))
		pr.With(rbac.RequireOwnerOr("cashier:view", "cashier:view-own", api.OwnStudent)).
			Get("/students/{studentID}/ledger", api.StudentLedgerHandler(cashierStore))

		// Registrar catalog
		pr.With(rbac.RequireAny("registry:students", "registry:*")).
			Post("/students", api.CreateStudentHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/students", api.ListStudentsHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/students/{studentID}", api.GetStudentHandler(registryStore))
		pr.With(rbac.RequireAny("registry:students", "registry:*")).
			Put("/students/{studentID}", api.UpdateStudentHandler(registryStore))

		pr.With(rbac.RequireAny("registry:sections", "registry:*")).
			Post("/sections", api.CreateSectionHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/sections", api.ListSectionsHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/sections/{sectionID}/schedules", api.ListSchedulesHandler(registryStore))
		pr.With(rbac.RequireAny("registry:schedules", "registry:*")).
			Post("/schedules", api.CreateScheduleHandler(registryStore))

		pr.With(rbac.RequireAny("registry:sections", "registry:*")).
			Post("/subjects", api.CreateSubjectHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/subjects", api.ListSubjectsHandler(registryStore))

		// Finance catalog
		pr.With(rbac.RequireAny("registry:fees", "registry:*")).
			Post("/fees", api.CreateFeeHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/fees", api.ListFeesHandler(registryStore))
		pr.With(rbac.RequireAny("registry:fees", "registry:*")).
			Post("/fees/{feeID}/active", api.SetFeeActiveHandler(registryStore))
		pr.With(rbac.RequireAny("registry:discounts", "registry:*")).
			Post("/discounts", api.CreateDiscountHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/discounts", api.ListDiscountsHandler(registryStore))
		pr.With(rbac.RequireAny("registry:inventory", "registry:*")).
			Post("/inventory", api.CreateItemHandler(registryStore))
		pr.With(rbac.Require("registry:view")).
			Get("/inventory", api.ListItemsHandler(registryStore))
		pr.With(rbac.RequireAny("registry:inventory", "registry:*")).
			Post("/inventory/{itemID}/stock", api.AdjustStockHandler(registryStore))

		// Gradebook
		pr.With(rbac.Require("gradebook:rubric")).
			Put("/subjects/{subjectID}/rubric", api.UpsertRubricHandler(gradebookStore))
		pr.With(rbac.RequireAny("gradebook:view", "gradebook:view-own")).
			Get("/subjects/{subjectID}/rubric", api.GetRubricHandler(gradebookStore))
		pr.With(rbac.Require("gradebook:activities")).
			Post("/subjects/{subjectID}/activities", api.CreateActivityHandler(gradebookStore))
		pr.With(rbac.RequireAny("gradebook:view", "gradebook:view-own")).
			Get("/subjects/{subjectID}/activities", api.ListActivitiesHandler(gradebookStore))
		pr.With(rbac.Require("gradebook:scores")).
			Put("/activities/{activityID}/scores/{studentID}", api.UpsertScoreHandler(gradebookStore))
		pr.With(rbac.RequireOwnerOr("gradebook:view", "gradebook:view-own", api.OwnStudent)).
			Get("/subjects/{subjectID}/grades/{studentID}", api.QuarterGradeHandler(gradebookStore))
		pr.With(rbac.Require("gradebook:conduct")).
			Put("/subjects/{subjectID}/conduct/{studentID}", api.PutConductHandler(gradebookStore))

		// Administration
		pr.With(rbac.Require("settings:edit")).
			Get("/settings", api.GetSettingsHandler(settingsStore))
		pr.With(rbac.Require("settings:edit")).
			Put("/settings", api.UpdateSettingsHandler(settingsStore))
		pr.With(rbac.Require("users:manage")).
			Post("/users", api.CreateUserHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Get("/users", api.ListUsersHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// ensureAdmin seeds the superadmin account on first boot when a password
// hash is configured. Without it a fresh install has no way to log in.
func ensureAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	var n int
	if err := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role='superadmin'`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := dbh.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1,$2,$3,'superadmin',$4)`,
		uuid.NewString(), cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
