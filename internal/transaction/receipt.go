package transaction

import (
	"errors"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/logger"
	"fintrack-backend/internal/receipt"
	"fintrack-backend/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// POST /api/transactions/scan-receipt (multipart: receipt)
// Uploads the image, asks the model for its fields and returns them for the
// client to confirm. Nothing is stored as a transaction here.
func ScanReceiptHandler(images upload.ImageHost, scanner receipt.Scanner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.UserID(c); err != nil {
			return err
		}

		fh, err := c.FormFile("receipt")
		if err != nil {
			return upload.ErrNoFile
		}
		img, err := upload.ReadImage(fh)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		url, err := images.Upload(ctx, upload.FolderReceipts, img)
		if err != nil {
			return apperr.Upstream("Image upload failed", "Could not upload the receipt image", err)
		}

		fields, err := scanner.Scan(ctx, img.Data, img.ContentType)
		switch {
		case errors.Is(err, receipt.ErrUnreadable):
			return apperr.BadRequest("Could not read receipt content")
		case errors.Is(err, receipt.ErrMissingFields):
			return apperr.BadRequest("Receipt missing required information (amount or date)")
		case err != nil:
			return apperr.Upstream("Receipt scan failed", "Could not analyze the receipt", err)
		}
		fields.ReceiptURL = url

		log := logger.FromContext(ctx)
		log.Debug().Str("receipt_url", url).Float64("amount", fields.Amount).Msg("receipt scanned")

		return c.JSON(fiber.Map{
			"message": "Receipt scanned successfully",
			"data":    fields,
		})
	}
}
