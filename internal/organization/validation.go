package organization

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinIDLength = 3
	MaxIDLength = 50
)

var (
	idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	spaceRuns = regexp.MustCompile(` +`)

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// NormalizeID turns free-form input into a candidate organization id.
// It is applied on every keystroke, so NormalizeID(NormalizeID(s)) == NormalizeID(s).
func NormalizeID(raw string) string {
	lowered := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}

	return spaceRuns.ReplaceAllString(b.String(), "-")
}

// ValidateID checks the submitted id against the format rules without touching the store
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return &ValidationError{
			Field:   "id",
			Message: "Organization ID can only contain lowercase letters, numbers, and hyphens.",
		}
	}
	if len(id) < MinIDLength || len(id) > MaxIDLength {
		return &ValidationError{
			Field:   "id",
			Message: "Organization ID must be between 3 and 50 characters.",
		}
	}
	return nil
}

func validateCreateRequest(req CreateOrganizationRequest) error {
	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if field == "id" {
				return &ValidationError{Field: "id", Message: "Organization ID is required."}
			}
			return &ValidationError{Field: field, Message: "Organization " + field + " is required."}
		}
		return &ValidationError{Message: err.Error()}
	}
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "Organization name is required."}
	}
	return ValidateID(req.ID)
}
