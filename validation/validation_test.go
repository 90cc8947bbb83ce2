package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/apiwrap/errors"
)

type endpoint struct {
	Path   string `mapstructure:"resource" validate:"required,urltemplate"`
	Method string `yaml:"method" validate:"omitempty,oneof=GET POST"`
	Docs   string `json:"docs" validate:"omitempty,url"`
	Limit  int    `validate:"gte=0,lte=100"`
}

func TestValidate_Struct(t *testing.T) {
	tests := []struct {
		name       string
		in         endpoint
		wantFields []string
	}{
		{"valid", endpoint{Path: "/users/{id}", Method: "GET", Docs: "https://docs.example.com", Limit: 10}, nil},
		{"missing path", endpoint{}, []string{"resource"}},
		{"bad template", endpoint{Path: "/users/{id"}, []string{"resource"}},
		{"bad method", endpoint{Path: "/x", Method: "BREW"}, []string{"method"}},
		{"bad docs url", endpoint{Path: "/x", Docs: "not a url"}, []string{"docs"}},
		{"limit too high", endpoint{Path: "/x", Limit: 500}, []string{"limit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s", appErr.Code)
			}
			fields := appErr.Details["fields"].([]FieldError)
			for i, want := range tt.wantFields {
				if fields[i].Field != want {
					t.Errorf("field[%d] = %q, want %q", i, fields[i].Field, want)
				}
			}
		})
	}
}

func TestIsURLTemplate(t *testing.T) {
	tests := map[string]bool{
		"":                       true,
		"/users":                 true,
		"/users/{id}":            true,
		"/orgs/{org}/repos/{r1}": true,
		"https://x.io/{a_b}/":    true,
		"/users/{id":             false,
		"/users/id}":             false,
		"/users/{}":              false,
		"/users/{{id}}":          false,
		"/users/{1d}":            false,
	}
	for in, want := range tests {
		if got := IsURLTemplate(in); got != want {
			t.Errorf("IsURLTemplate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidator_Rules(t *testing.T) {
	tests := []struct {
		name    string
		run     func(v *Validator)
		wantErr bool
	}{
		{"required ok", func(v *Validator) { v.Required("name", "github") }, false},
		{"required blank", func(v *Validator) { v.Required("name", "  ") }, true},
		{"url ok", func(v *Validator) { v.URL("api_root", "https://api.github.com") }, false},
		{"url empty skipped", func(v *Validator) { v.URL("api_root", "") }, false},
		{"url relative", func(v *Validator) { v.URL("api_root", "/v1") }, true},
		{"url scheme", func(v *Validator) { v.URL("api_root", "ftp://example.com") }, true},
		{"template ok", func(v *Validator) { v.URLTemplate("resource", "/a/{b}") }, false},
		{"template bad", func(v *Validator) { v.URLTemplate("resource", "/a/{b") }, true},
		{"oneof ok", func(v *Validator) { v.OneOf("auth.type", "bearer", []string{"bearer", "basic"}) }, false},
		{"oneof empty skipped", func(v *Validator) { v.OneOf("auth.type", "", []string{"bearer"}) }, false},
		{"oneof bad", func(v *Validator) { v.OneOf("auth.type", "ntlm", []string{"bearer"}) }, true},
		{"custom", func(v *Validator) { v.Custom(false, "x", "broken") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.run(v)
			if err := v.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_Chaining(t *testing.T) {
	err := New().
		Required("name", "").
		URL("api_root", "nope").
		Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name: is required") || !strings.Contains(msg, "api_root: must be a valid URL") {
		t.Errorf("message = %q", msg)
	}
}

func TestValidator_Merge(t *testing.T) {
	v := New()
	v.Merge("resources.user", Validate(endpoint{}))
	v.Merge("auth", errors.Internal(nil))
	v.Merge("ignored", nil)

	fields := v.Errors()
	if len(fields) != 2 {
		t.Fatalf("expected 2 errors, got %v", fields)
	}
	if fields[0].Field != "resources.user.resource" {
		t.Errorf("merged field = %q", fields[0].Field)
	}
	if fields[1].Field != "auth" {
		t.Errorf("plain error field = %q", fields[1].Field)
	}
}
