// Package server assembles the HTTP application: middleware, error handling
// and every route of the API.
package server

import (
	"strings"
	"time"

	"fintrack-backend/internal/analytics"
	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/config"
	"fintrack-backend/internal/logger"
	"fintrack-backend/internal/receipt"
	"fintrack-backend/internal/report"
	"fintrack-backend/internal/transaction"
	"fintrack-backend/internal/upload"
	"fintrack-backend/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     zerolog.Logger
	Images  upload.ImageHost
	Scanner receipt.Scanner
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "fintrack",
		ErrorHandler: apperr.Handler(d.Log),
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.Middleware(d.Log))
	// Inside the logger so a recovered panic is logged as a 500.
	app.Use(recover.New())

	corsOrigins := strings.Split(d.Config.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", HealthHandler(d.DB))

	Routes(app.Group("/api"), d)
	return app
}

func Routes(api fiber.Router, d Deps) {
	store := transaction.NewStore(d.DB)
	stats := analytics.NewService(store)

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(d.DB))
	api.Post("/auth/login", auth.LoginHandler(d.Config, d.DB))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(d.Config))

	protected.Get("/users/current-user", user.CurrentUserHandler(d.DB))
	protected.Put("/users/update", user.UpdateHandler(d.DB, d.Images))

	tx := protected.Group("/transactions")
	tx.Get("/all", transaction.ListHandler(store))
	tx.Post("/create", transaction.CreateHandler(store))
	tx.Post("/bulk-transaction", transaction.BulkCreateHandler(store))
	tx.Post("/delete/bulk", transaction.BulkDeleteHandler(store))
	tx.Post("/scan-receipt", transaction.ScanReceiptHandler(d.Images, d.Scanner))
	tx.Post("/import", transaction.ImportHandler(store))
	tx.Put("/update/:id", transaction.UpdateHandler(store))
	tx.Put("/duplicate/:id", transaction.DuplicateHandler(store))
	tx.Delete("/delete/:id", transaction.DeleteHandler(store))
	tx.Get("/:id", transaction.GetHandler(store))

	protected.Get("/analytics/summary", analytics.SummaryHandler(stats))
	protected.Get("/analytics/chart", analytics.ChartHandler(stats))
	protected.Get("/analytics/expense-breakdown", analytics.ExpenseBreakdownHandler(stats))

	protected.Get("/reports/all", report.ListHandler(d.DB))
	protected.Put("/reports/update-setting", report.UpdateSettingHandler(d.DB))
}

// GET /health
func HealthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
