package user

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"fintrack-backend/internal/models"
	"fintrack-backend/internal/testutil"
	"fintrack-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
)

type fakeHost struct {
	folder string
	err    error
}

func (f *fakeHost) Upload(_ context.Context, folder string, img upload.Image) (string, error) {
	f.folder = folder
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.googleapis.com/test/" + folder + "/pic.png", nil
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartBody(t *testing.T, name string, withPicture bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		mw.WriteField("name", name)
	}
	if withPicture {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="profilePicture"; filename="me.png"`)
		h.Set("Content-Type", "image/png")
		part, _ := mw.CreatePart(h)
		part.Write(png)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCurrentUserAndUpdate(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	u := testutil.CreateUser(t, db, "pat@example.com")
	token := testutil.Token(t, cfg, u)

	host := &fakeHost{}
	app, api := testutil.App(cfg)
	api.Get("/users/current-user", CurrentUserHandler(db))
	api.Put("/users/update", UpdateHandler(db, host))

	var me struct {
		User models.User `json:"user"`
	}
	if status := testutil.Do(t, app, testutil.Request(t, "GET", "/api/users/current-user", nil, token), &me); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if me.User.Email != "pat@example.com" {
		t.Fatalf("unexpected user %+v", me.User)
	}

	body, ct := multipartBody(t, "Patricia", true)
	req := httptest.NewRequest("PUT", "/api/users/update", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)

	var updated struct {
		User models.User `json:"user"`
	}
	if status := testutil.Do(t, app, req, &updated); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if updated.User.Name != "Patricia" || updated.User.ProfilePicture == nil {
		t.Fatalf("unexpected update result %+v", updated.User)
	}
	if host.folder != upload.FolderImages {
		t.Fatalf("expected upload to images folder, got %q", host.folder)
	}

	var stored models.User
	db.First(&stored, u.ID)
	if stored.Name != "Patricia" || stored.ProfilePicture == nil {
		t.Fatalf("update not persisted: %+v", stored)
	}
}

func TestUpdateRequiresData(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	u := testutil.CreateUser(t, db, "empty@example.com")

	app, api := testutil.App(cfg)
	api.Put("/users/update", UpdateHandler(db, &fakeHost{}))

	body, ct := multipartBody(t, "", false)
	req := httptest.NewRequest("PUT", "/api/users/update", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, cfg, u))

	if status := testutil.Do(t, app, req, nil); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestUpdateSurfacesHostFailure(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.DB(t)
	u := testutil.CreateUser(t, db, "fail@example.com")

	app, api := testutil.App(cfg)
	api.Put("/users/update", UpdateHandler(db, &fakeHost{err: errors.New("bucket gone")}))

	body, ct := multipartBody(t, "", true)
	req := httptest.NewRequest("PUT", "/api/users/update", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, cfg, u))

	if status := testutil.Do(t, app, req, nil); status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
}
