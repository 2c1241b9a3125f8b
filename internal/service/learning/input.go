package learning

import (
	"net/url"
	"strings"

	"github.com/heartmarshall/learnify-backend/internal/domain"
)

// LoginInput holds parameters for the mock login.
type LoginInput struct {
	Email string
}

// Validate validates the login input.
func (i LoginInput) Validate() error {
	var errs []domain.FieldError

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if len(i.Email) > 320 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SignupInput holds parameters for creating a fresh user.
type SignupInput struct {
	Name  string
	Email string
}

// Validate validates the signup input.
func (i SignupInput) Validate() error {
	var errs []domain.FieldError

	if i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(i.Name) > 255 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if len(i.Email) > 320 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// MaxAvatarURLBytes caps avatar URLs. Uploaded images arrive as data URLs,
// so the cap is sized for a small picture rather than a link.
const MaxAvatarURLBytes = 2 << 20

// AvatarInput holds the new avatar URL: an http(s) link or a data:image URL.
type AvatarInput struct {
	URL string
}

// Validate validates the avatar input.
func (i AvatarInput) Validate() error {
	if i.URL == "" {
		return domain.NewValidationError("avatar_url", "required")
	}
	if len(i.URL) > MaxAvatarURLBytes {
		return domain.NewValidationError("avatar_url", "too long")
	}
	if strings.HasPrefix(i.URL, "data:") {
		if !isImageDataURL(i.URL) {
			return domain.NewValidationError("avatar_url", "data URL must hold an image")
		}
		return nil
	}
	u, err := url.Parse(i.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewValidationError("avatar_url", "must be an http(s) or data:image URL")
	}
	return nil
}

// isImageDataURL checks the "data:image/<subtype>[;params],<data>" shape.
func isImageDataURL(s string) bool {
	header, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || data == "" {
		return false
	}
	mediaType, _, _ := strings.Cut(header, ";")
	subtype, ok := strings.CutPrefix(strings.ToLower(mediaType), "image/")
	return ok && subtype != ""
}
