package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tidytask/tidytask/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	tagFormat = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func init() {
	Validate = validator.New()

	// Custom validators for domain enums and the tag charset. These only
	// fail at startup if the names collide, so panic is appropriate.
	if err := Validate.RegisterValidation("todo_priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register todo_priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("tag_format", validateTagFormat); err != nil {
		panic(fmt.Sprintf("failed to register tag_format validator: %v", err))
	}
	if err := Validate.RegisterValidation("sort_field", validateSortField); err != nil {
		panic(fmt.Sprintf("failed to register sort_field validator: %v", err))
	}
}

// validatePriority accepts the known priority enum values
func validatePriority(fl validator.FieldLevel) bool {
	return models.Priority(fl.Field().String()).Valid()
}

// validateTagFormat accepts tags of letters, digits, '-' and '_'
func validateTagFormat(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	return tag != "" && utf8.RuneCountInString(tag) <= models.MaxTagLength && tagFormat.MatchString(tag)
}

// validateSortField accepts the known sort field names
func validateSortField(fl validator.FieldLevel) bool {
	return models.SortField(fl.Field().String()).Valid()
}

// SanitizeText trims whitespace and strips control characters except
// newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}

// ValidatePriority validates a priority string value
func ValidatePriority(value string) error {
	if models.Priority(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
}

// ValidateStatusFilter validates a status filter string value
func ValidateStatusFilter(value string) error {
	if models.StatusFilter(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid status: %s (must be 'all', 'active', or 'completed')", value)
}

// ValidateSortField validates a sort field string value
func ValidateSortField(value string) error {
	if models.SortField(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid sort field: %s (must be 'createdAt', 'title', or 'priority')", value)
}

// ValidateSortDirection validates a sort direction string value
func ValidateSortDirection(value string) error {
	if models.SortDirection(value).Valid() {
		return nil
	}
	return fmt.Errorf("invalid sort direction: %s (must be 'asc' or 'desc')", value)
}
