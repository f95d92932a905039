package user

import (
	"errors"
	"strings"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/upload"
	"fintrack-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	userID, err := auth.UserID(c)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// GET /api/users/current-user
func CurrentUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := findUser(c, db)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user": user})
	}
}

// PUT /api/users/update (multipart: name, profilePicture)
func UpdateHandler(db *gorm.DB, images upload.ImageHost) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := findUser(c, db)
		if err != nil {
			return err
		}

		updates := map[string]any{}

		if name, present := formValue(c, "name"); present {
			name = strings.TrimSpace(name)
			errs := validation.Errors{}
			errs.Var("name", name, "required,max=255")
			if err := errs.Err(); err != nil {
				return err
			}
			updates["name"] = name
			user.Name = name
		}

		if fh, err := c.FormFile("profilePicture"); err == nil {
			img, err := upload.ReadImage(fh)
			if err != nil {
				return err
			}
			url, err := images.Upload(c.UserContext(), upload.FolderImages, img)
			if err != nil {
				return apperr.Upstream("Image upload failed", "Could not upload profile picture", err)
			}
			updates["profile_picture"] = url
			user.ProfilePicture = &url
		}

		if len(updates) == 0 {
			return apperr.BadRequest("No data to update")
		}

		if err := db.WithContext(c.UserContext()).Model(user).Updates(updates).Error; err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message": "User updated successfully",
			"user":    user,
		})
	}
}

// formValue reports whether key was sent at all, even empty.
func formValue(c *fiber.Ctx, key string) (string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		v := c.FormValue(key)
		return v, v != ""
	}
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
