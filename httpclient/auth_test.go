package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthConfig_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"bearer", BearerAuth("my-token"), "Authorization", "Bearer my-token"},
		{"api key default header", APIKeyAuth("secret-key"), "X-API-Key", "secret-key"},
		{"api key custom header", APIKeyAuthHeader("secret-key", "X-Custom-Key"), "X-Custom-Key", "secret-key"},
		{"fixed header", HeaderAuth("Authorization", "Token abc"), "Authorization", "Token abc"},
		{"custom", CustomAuth(func(r *http.Request) { r.Header.Set("X-Custom", "value") }), "X-Custom", "value"},
		{"none", &AuthConfig{Type: AuthNone}, "Authorization", ""},
		{"nil", nil, "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tt.auth.Apply(req)
			if got := req.Header.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	BasicAuth("user", "pass").Apply(req)
	u, p, ok := req.BasicAuth()
	if !ok || u != "user" || p != "pass" {
		t.Errorf("basic auth not set correctly: user=%q pass=%q ok=%v", u, p, ok)
	}
}

func TestAPIKeyAuthQuery(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/path?page=2", nil)
	APIKeyAuthQuery("secret-key", "api_key").Apply(req)
	q := req.URL.Query()
	if got := q.Get("api_key"); got != "secret-key" {
		t.Errorf("api_key = %q, want %q", got, "secret-key")
	}
	if got := q.Get("page"); got != "2" {
		t.Errorf("existing query lost: page = %q", got)
	}
}

func TestParseAuthType(t *testing.T) {
	tests := []struct {
		in     string
		want   AuthType
		wantOK bool
	}{
		{"", AuthNone, true},
		{"none", AuthNone, true},
		{"Bearer", AuthBearer, true},
		{"basic", AuthBasic, true},
		{"api_key", AuthAPIKey, true},
		{"header", AuthHeader, true},
		{"kerberos", AuthNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseAuthType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseAuthType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
