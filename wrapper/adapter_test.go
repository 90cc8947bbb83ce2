package wrapper

import (
	"errors"
	"net/url"
	"testing"

	apperrors "github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/httpclient"
)

func TestBaseAdapter_FillResourceTemplateURL(t *testing.T) {
	var a BaseAdapter
	tests := []struct {
		tmpl    string
		params  map[string]string
		want    string
		wantErr error
	}{
		{"users/{id}/repos", map[string]string{"id": "ann"}, "users/ann/repos", nil},
		{"{org}/{repo}", map[string]string{"org": "a", "repo": "b c"}, "a/b%20c", nil},
		{"static", map[string]string{"id": "1"}, "static", nil},
		{"users/{id}/{tab}", map[string]string{"id": "1"}, "", ErrMissingURLParam},
	}
	for _, tt := range tests {
		got, err := a.FillResourceTemplateURL(tt.tmpl, tt.params)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.tmpl, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.tmpl, got, tt.want)
		}
	}
}

func TestBaseAdapter_ProcessResponse(t *testing.T) {
	var a BaseAdapter
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
		wantData bool
	}{
		{"ok", 200, `{"a":1}`, "", true},
		{"empty", 204, "", "", false},
		{"bad request", 400, `{"error":"bad"}`, apperrors.ErrCodeBadRequest, true},
		{"undecodable 4xx", 404, "<html>", apperrors.ErrCodeNotFound, false},
		{"server error", 502, `{"error":"x"}`, apperrors.ErrCodeServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &httpclient.Response{StatusCode: tt.status, Body: []byte(tt.body)}
			data, err := a.ProcessResponse(resp, a.ResponseToNative)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if (data != nil) != tt.wantData {
					t.Errorf("data = %v", data)
				}
				return
			}
			var pe *ProcessError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProcessError, got %v", err)
			}
			if pe.Code != tt.wantCode || (pe.Data != nil) != tt.wantData {
				t.Errorf("got %s with data %v", pe.Code, pe.Data)
			}
		})
	}

	if _, err := a.ProcessResponse(&httpclient.Response{StatusCode: 200, Body: []byte("{")}, a.ResponseToNative); err == nil {
		t.Error("expected decode error for a 2xx response")
	}
}

func TestBaseAdapter_ErrorMessage(t *testing.T) {
	var a BaseAdapter
	tests := []struct {
		data any
		want string
	}{
		{map[string]any{"error": "bad token"}, "bad token"},
		{map[string]any{"error": map[string]any{"message": "nested"}}, "nested"},
		{map[string]any{"message": "msg", "detail": "d"}, "msg"},
		{map[string]any{"detail": "d"}, "d"},
		{map[string]any{"error": ""}, ""},
		{[]any{"x"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := a.ErrorMessage(tt.data, nil); got != tt.want {
			t.Errorf("ErrorMessage(%v) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestJSONCodec(t *testing.T) {
	var c JSONCodec
	body, ct, err := c.FormatDataToRequest(map[string]any{"a": 1})
	if err != nil || string(body) != `{"a":1}` || ct != "application/json" {
		t.Errorf("FormatDataToRequest = %q, %q, %v", body, ct, err)
	}
	if body, ct, _ := c.FormatDataToRequest(nil); body != nil || ct != "" {
		t.Error("nil data must produce no body")
	}
	if _, _, err := c.FormatDataToRequest(make(chan int)); err == nil {
		t.Error("expected error for unencodable data")
	}
}

func TestFormCodec(t *testing.T) {
	var c FormCodec
	body, ct, err := c.FormatDataToRequest(map[string]any{"a": 1, "tags": []any{"x", "y"}, "skip": nil})
	if err != nil || ct != "application/x-www-form-urlencoded" {
		t.Fatalf("FormatDataToRequest = %q, %v", ct, err)
	}
	form, _ := url.ParseQuery(string(body))
	if form.Get("a") != "1" || len(form["tags"]) != 2 || form.Has("skip") {
		t.Errorf("form = %v", form)
	}

	body, _, _ = c.FormatDataToRequest(url.Values{"k": {"v"}})
	if string(body) != "k=v" {
		t.Errorf("url.Values body = %q", body)
	}
	if _, _, err := c.FormatDataToRequest(42); err == nil {
		t.Error("expected error for non-map data")
	}

	data, _ := c.ResponseToNative(&httpclient.Response{Body: []byte("hello")})
	if m, ok := data.(map[string]any); !ok || m["text"] != "hello" {
		t.Errorf("ResponseToNative = %v", data)
	}
}
