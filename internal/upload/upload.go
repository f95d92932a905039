// Package upload validates user images and stores them on the image host.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"fintrack-backend/internal/apperr"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const (
	MaxImageSize = 2 * 1024 * 1024

	FolderReceipts = "receipts"
	FolderImages   = "images"
)

var (
	ErrNoFile      = apperr.BadRequest("No file uploaded")
	ErrInvalidType = apperr.BadRequest("Invalid file type. Only JPG, JPEG, and PNG are allowed")
	ErrTooLarge    = apperr.BadRequest("File size must be less than 2MB")
	ErrDisabled    = errors.New("image uploads are not configured")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// Image is a validated upload held in memory.
type Image struct {
	Data        []byte
	ContentType string
}

// ImageHost stores an image and returns its durable public URL.
type ImageHost interface {
	Upload(ctx context.Context, folder string, img Image) (string, error)
}

// ReadImage checks size and declared type of a multipart file and reads it.
// The returned ContentType is sniffed from the bytes, so a PNG declared as
// image/jpeg is stored as image/png.
func ReadImage(fh *multipart.FileHeader) (Image, error) {
	if fh == nil || fh.Size == 0 {
		return Image{}, ErrNoFile
	}
	if fh.Size > MaxImageSize {
		return Image{}, ErrTooLarge
	}
	ct := strings.ToLower(fh.Header.Get("Content-Type"))
	if _, ok := allowedTypes[ct]; !ok {
		return Image{}, ErrInvalidType
	}

	f, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return Image{}, ErrTooLarge
	}
	sniffed := http.DetectContentType(data)
	if _, ok := allowedTypes[sniffed]; !ok {
		return Image{}, ErrInvalidType
	}
	return Image{Data: data, ContentType: sniffed}, nil
}

// GCSHost writes images to a Google Cloud Storage bucket with public URLs.
type GCSHost struct {
	client *storage.Client
	bucket string
}

// NewGCSHost uses Application Default Credentials.
func NewGCSHost(ctx context.Context, bucket string) (*GCSHost, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSHost{client: client, bucket: bucket}, nil
}

func (h *GCSHost) Upload(ctx context.Context, folder string, img Image) (string, error) {
	name := ObjectName(folder, img.ContentType)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := h.client.Bucket(h.bucket).Object(name).NewWriter(ctx)
	w.ContentType = img.ContentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(img.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %s: %w", name, err)
	}
	return PublicURL(h.bucket, name), nil
}

func (h *GCSHost) Close() error {
	return h.client.Close()
}

// ObjectName builds "<folder>/<uuid><ext>".
func ObjectName(folder, contentType string) string {
	return path.Join(folder, uuid.NewString()+allowedTypes[contentType])
}

func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

// DisabledHost is used when no bucket is configured.
type DisabledHost struct{}

func (DisabledHost) Upload(context.Context, string, Image) (string, error) {
	return "", ErrDisabled
}
