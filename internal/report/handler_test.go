package report

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"fintrack-backend/internal/models"
	"fintrack-backend/internal/testutil"
)

type listResponse struct {
	Message    string          `json:"message"`
	Reports    []models.Report `json:"reports"`
	Pagination struct {
		PageSize   int   `json:"pageSize"`
		PageNumber int   `json:"pageNumber"`
		TotalCount int64 `json:"totalCount"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

func TestListReportsIsScopedAndPaginated(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	app, api := testutil.App(cfg)
	api.Get("/reports/all", ListHandler(db))

	me := testutil.CreateUser(t, db, "me@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")

	base := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sent := base.AddDate(0, i, 0)
		db.Create(&models.Report{UserID: me.ID, Period: sent.AddDate(0, -1, 0).Format("January 2006"), SentDate: sent, Status: models.ReportSent})
	}
	db.Create(&models.Report{UserID: other.ID, Period: "December 2025", SentDate: base, Status: models.ReportSent})

	var out listResponse
	status := testutil.Do(t, app, testutil.Request(t, http.MethodGet, "/api/reports/all?pageSize=2", nil, testutil.Token(t, cfg, me)), &out)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if out.Pagination.TotalCount != 3 || out.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination %+v", out.Pagination)
	}
	if len(out.Reports) != 2 {
		t.Fatalf("expected 2 reports on the first page, got %d", len(out.Reports))
	}
	if out.Reports[0].Period != "February 2026" {
		t.Fatalf("expected newest first, got %q", out.Reports[0].Period)
	}
	for _, r := range out.Reports {
		if r.UserID != me.ID {
			t.Fatalf("leaked report of user %d", r.UserID)
		}
	}
}

func TestUpdateSetting(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	app, api := testutil.App(cfg)
	api.Put("/reports/update-setting", UpdateSettingHandler(db))

	user := testutil.CreateUser(t, db, "settings@example.com")
	token := testutil.Token(t, cfg, user)

	cases := []struct {
		body    any
		status  int
		enabled bool
	}{
		{map[string]any{}, http.StatusBadRequest, false},
		{map[string]any{"isEnabled": true}, http.StatusOK, true},
		{map[string]any{"isEnabled": false}, http.StatusOK, false},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			status := testutil.Do(t, app, testutil.Request(t, http.MethodPut, "/api/reports/update-setting", tc.body, token), nil)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if status != http.StatusOK {
				return
			}
			var s models.ReportSettings
			if err := db.Where("user_id = ?", user.ID).First(&s).Error; err != nil {
				t.Fatalf("load settings: %v", err)
			}
			if s.IsEnabled != tc.enabled {
				t.Fatalf("expected isEnabled=%v, got %v", tc.enabled, s.IsEnabled)
			}
			if s.NextReportDate == nil {
				t.Fatal("enabling should schedule the next report")
			}
		})
	}
}

func TestUpdateSettingKeepsPendingDate(t *testing.T) {
	db := testutil.DB(t)
	user := testutil.CreateUser(t, db, "keep@example.com")

	pending := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	db.Create(&models.ReportSettings{UserID: user.ID, Frequency: models.FrequencyMonthly, IsEnabled: true, NextReportDate: &pending})

	now := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	if _, err := UpdateSetting(db, user.ID, false, now); err != nil {
		t.Fatalf("disable: %v", err)
	}
	s, err := UpdateSetting(db, user.ID, true, now)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !s.NextReportDate.Equal(pending) {
		t.Fatalf("expected pending date kept, got %v", s.NextReportDate)
	}
}
