package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type loginPayload struct {
	Username string `validate:"required,min=3,max=20"`
	Password string `validate:"required,min=8"`
}

func TestMessagesFromValidatorError(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(loginPayload{Username: "ab", Password: ""})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	messages := MessagesFromError(err)
	if len(messages) != 2 {
		t.Fatalf("got %d messages: %v", len(messages), messages)
	}

	joined := strings.Join(messages, "; ")
	if !strings.Contains(joined, "username") || !strings.Contains(joined, "password") {
		t.Fatalf("field names missing from messages: %v", messages)
	}
}

func TestMessagesFromNonValidatorError(t *testing.T) {
	messages := MessagesFromError(errors.New("unexpected EOF"))
	if len(messages) != 1 {
		t.Fatalf("got %d messages", len(messages))
	}
	if messages[0] != "request body is not valid" {
		t.Fatalf("message = %q", messages[0])
	}
}

func TestDefaultMessage(t *testing.T) {
	tests := []struct {
		field, tag, param string
		want              string
	}{
		{"Username", "required", "", "username must not be empty"},
		{"Password", "min", "8", "password must be at least 8 characters long"},
		{"Authority", "oneof", "Write Admin", "authority must be one of: Write Admin"},
		{"URL", "url", "", "url must be a valid URL"},
		{"Width", "gte", "0", "width must be greater than or equal to 0"},
		{"Field", "unknowntag", "", "field is not valid"},
	}

	for _, tt := range tests {
		if got := DefaultMessage(tt.field, tt.tag, tt.param); got != tt.want {
			t.Errorf("DefaultMessage(%q, %q, %q) = %q, want %q", tt.field, tt.tag, tt.param, got, tt.want)
		}
	}
}
