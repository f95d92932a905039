// Package testutil holds helpers shared by handler tests: an in-memory
// database, a test configuration, users and signed tokens.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/config"
	"fintrack-backend/internal/database"
	"fintrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Config() *config.Config {
	return &config.Config{
		HTTPPort:       "8080",
		DatabaseDriver: "sqlite",
		JWTSecret:      strings.Repeat("k", 32),
		JWTExpiresIn:   time.Hour,
		AMQPExchange:   "fintrack",
		AMQPQueue:      "monthly_reports",
	}
}

// DB opens an isolated in-memory database named after the test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenMemory(name)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func Token(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()

	token, _, err := auth.GenerateToken(cfg, &user, time.Now())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// Request builds a JSON request; body may be nil and token empty.
func Request(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

// Do runs req through app and decodes the JSON response into out (if non-nil).
func Do(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", req.Method, req.URL.Path, err)
		}
	}
	return resp.StatusCode
}

// App returns a fiber app with the production error handler; register
// routes on it and authenticate with Token.
func App(cfg *config.Config) (*fiber.App, fiber.Router) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(zerolog.Nop())})
	protected := app.Group("/api", auth.JWTMiddleware(cfg))
	return app, protected
}
