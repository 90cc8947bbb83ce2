package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/httpclient"
)

func newSession(t *testing.T) *httpclient.Session {
	t.Helper()
	s, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return s
}

func TestClientCredentials_Token(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("scope"); got != "read write" {
			t.Errorf("scope = %q", got)
		}
		if id, secret, ok := r.BasicAuth(); !ok || id != "app" || secret != "s3cret" {
			t.Errorf("basic auth = %q %q %v", id, secret, ok)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600,"scope":"read write"}`))
	}))
	defer srv.Close()

	cc := ClientCredentials{TokenURL: srv.URL, ClientID: "app", ClientSecret: "s3cret", Scopes: []string{"read", "write"}}
	tok, err := cc.Token(context.Background(), newSession(t))
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok.AccessToken != "tok-1" || tok.TokenType != "Bearer" {
		t.Errorf("token = %+v", tok)
	}
	if time.Until(tok.ExpiresAt) < 59*time.Minute {
		t.Errorf("ExpiresAt = %v", tok.ExpiresAt)
	}
	if len(tok.Scopes) != 2 {
		t.Errorf("Scopes = %v", tok.Scopes)
	}
}

func TestClientCredentials_RefreshInParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "r-1" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.PostForm.Get("client_id") != "app" {
			t.Errorf("client_id missing from form")
		}
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("basic auth must not be sent with in_params")
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2","refresh_token":"r-2"}`))
	}))
	defer srv.Close()

	cc := ClientCredentials{TokenURL: srv.URL, ClientID: "app", ClientSecret: "x", InParams: true}
	tok, err := cc.Refresh(context.Background(), newSession(t), "r-1")
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if tok.AccessToken != "tok-2" || tok.RefreshToken != "r-2" {
		t.Errorf("token = %+v", tok)
	}
}

func TestClientCredentials_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"bad secret"}`))
		case "/empty":
			_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	s := newSession(t)
	ctx := context.Background()

	cc := ClientCredentials{TokenURL: srv.URL + "/denied", ClientID: "app"}
	_, err := cc.Token(ctx, s)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUnauthorized || appErr.Message != "invalid_client: bad secret" {
		t.Errorf("denied: got %v", err)
	}

	cc.TokenURL = srv.URL + "/empty"
	if _, err := cc.Token(ctx, s); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("empty: got %v", err)
	}

	cc.TokenURL = srv.URL + "/garbage"
	if _, err := cc.Token(ctx, s); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("garbage: got %v", err)
	}

	if _, err := (&ClientCredentials{ClientID: "app"}).Token(ctx, s); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("missing url: got %v", err)
	}
	if _, err := cc.Refresh(ctx, s, ""); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("missing refresh token: got %v", err)
	}
}
