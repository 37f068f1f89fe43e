package validation

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Buy groceries", "Buy groceries"},
		{"surrounding whitespace trimmed", "  padded  ", "padded"},
		{"control characters stripped", "be\x00fore\x07after", "beforeafter"},
		{"newline and tab preserved", "line1\nline2\tend", "line1\nline2\tend"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.in); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnumValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		check   func(string) error
		value   string
		wantErr bool
	}{
		{"valid priority", ValidatePriority, "high", false},
		{"invalid priority", ValidatePriority, "urgent", true},
		{"valid status", ValidateStatusFilter, "active", false},
		{"empty status means all", ValidateStatusFilter, "", false},
		{"invalid status", ValidateStatusFilter, "archived", true},
		{"valid sort field", ValidateSortField, "createdAt", false},
		{"invalid sort field", ValidateSortField, "dueDate", true},
		{"valid direction", ValidateSortDirection, "desc", false},
		{"invalid direction", ValidateSortDirection, "descending", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.check(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStructValidation(t *testing.T) {
	t.Parallel()

	type payload struct {
		Priority string   `validate:"omitempty,todo_priority"`
		Tags     []string `validate:"omitempty,max=10,dive,tag_format"`
		Sort     string   `validate:"omitempty,sort_field"`
	}

	tests := []struct {
		name    string
		in      payload
		wantErr bool
	}{
		{"all empty", payload{}, false},
		{"good values", payload{Priority: "low", Tags: []string{"work", "q_3"}, Sort: "title"}, false},
		{"bad priority", payload{Priority: "asap"}, true},
		{"bad tag", payload{Tags: []string{"has spaces"}}, true},
		{"tag too long", payload{Tags: []string{strings.Repeat("t", 21)}}, true},
		{"bad sort", payload{Sort: "random"}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
