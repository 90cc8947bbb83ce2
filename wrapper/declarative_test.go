package wrapper

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/testutil"
)

func definition(root string) Definition {
	return Definition{
		Name:    "example",
		APIRoot: root,
		Resources: ResourceMapping{
			"me":   {Path: "me"},
			"list": {Path: "list"},
			"user": {Path: "users/{id}"},
		},
	}
}

func newDeclarative(t *testing.T, def Definition) *Client {
	t.Helper()
	a, err := NewDeclarativeAdapter(def, nil)
	if err != nil {
		t.Fatalf("NewDeclarativeAdapter: %v", err)
	}
	c, err := Generate(a).New(append(a.Options(), WithLogger(logger.Nop()))...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Definition)
		field  string
	}{
		{"valid", func(*Definition) {}, ""},
		{"missing name", func(d *Definition) { d.Name = "" }, "name"},
		{"bad root", func(d *Definition) { d.APIRoot = "not a url" }, "api_root"},
		{"no resources", func(d *Definition) { d.Resources = nil }, "resources"},
		{"empty resource", func(d *Definition) { d.Resources["bad"] = Resource{} }, "resources[bad].resource"},
		{"malformed template", func(d *Definition) { d.Resources["bad"] = Resource{Path: "users/{id"} }, "resources[bad].resource"},
		{"unknown auth", func(d *Definition) { d.Auth.Type = "kerberos" }, "auth.type"},
		{"bad key location", func(d *Definition) { d.Auth.In = "cookie" }, "auth.in"},
		{"refresh without client", func(d *Definition) { d.Auth.RefreshURL = "https://auth.example.org/token" }, "auth.client_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := definition("https://api.example.org")
			tt.modify(&def)
			err := def.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field+":") {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestNewDeclarativeAdapter_Invalid(t *testing.T) {
	if _, err := NewDeclarativeAdapter(Definition{}, nil); err == nil {
		t.Error("expected error for an empty definition")
	}
}

func TestDeclarativeAdapter_Auth(t *testing.T) {
	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte("ann:secret"))
	tests := []struct {
		name   string
		auth   AuthDefinition
		params Params
		header string
		want   string
		query  string
	}{
		{"bearer", AuthDefinition{Type: "bearer", Token: "abc"}, nil, "Authorization", "Bearer abc", ""},
		{"bearer from params", AuthDefinition{Type: "bearer", Token: "abc"}, Params{ParamToken: "xyz"}, "Authorization", "Bearer xyz", ""},
		{"basic", AuthDefinition{Type: "basic", Username: "ann", Password: "secret"}, nil, "Authorization", basic, ""},
		{"api key header", AuthDefinition{Type: "api_key", Key: "k1"}, nil, "X-API-Key", "k1", ""},
		{"api key query", AuthDefinition{Type: "api_key", Key: "k1", Name: "api_key", In: "query"}, nil, "", "", "api_key=k1"},
		{"api key from params", AuthDefinition{Type: "apikey", Key: "k1", Name: "X-Key"}, Params{ParamKey: "k2"}, "X-Key", "k2", ""},
		{"header", AuthDefinition{Type: "header", Name: "X-Token", Token: "t"}, nil, "X-Token", "t", ""},
		{"none", AuthDefinition{}, nil, "Authorization", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.JSON(http.MethodGet, "/me", http.StatusOK, map[string]any{"id": 1})

			def := definition(api.URL())
			def.Auth = tt.auth
			def.Headers = map[string]string{"Accept": "application/json"}
			a, err := NewDeclarativeAdapter(def, nil)
			if err != nil {
				t.Fatalf("NewDeclarativeAdapter: %v", err)
			}
			params := tt.params
			if params == nil {
				params = Params{}
			}
			c, err := Generate(a).New(WithParams(params), WithLogger(logger.Nop()))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if _, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background()); err != nil {
				t.Fatalf("Get: %v", err)
			}
			req := api.LastRequest(t)
			if tt.header != "" && req.Header.Get(tt.header) != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, req.Header.Get(tt.header), tt.want)
			}
			if req.RawQuery != tt.query {
				t.Errorf("query = %q, want %q", req.RawQuery, tt.query)
			}
			if req.Header.Get("Accept") != "application/json" {
				t.Error("definition headers not sent")
			}
		})
	}
}

func TestDeclarativeAdapter_DefaultURLParams(t *testing.T) {
	def := definition("https://api.example.org")
	def.DefaultURLParams = map[string]any{"id": "me"}
	c := newDeclarative(t, def)

	if got := mustCall(t, mustAttr(t, c, "user"), nil).Data(); got != "https://api.example.org/users/me" {
		t.Errorf("data = %v", got)
	}
}

func TestDeclarativeAdapter_Pagination(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Handle(http.MethodGet, "/list", func(c *gin.Context) {
		if c.Query("page") == "2" {
			c.JSON(http.StatusOK, gin.H{"result": gin.H{"items": []string{"c"}}})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"result": gin.H{"items": []string{"a", "b"}},
			"links":  gin.H{"next": "/list?page=2"},
		})
	})

	def := definition(api.URL())
	def.Pagination = PaginationDefinition{ItemsPath: "result.items", NextPath: "links.next"}
	c := newDeclarative(t, def)

	resp, err := mustCall(t, mustAttr(t, c, "list"), nil).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got []string
	for item, err := range mustCall(t, resp, nil).Pages(context.Background(), PageOptions{}) {
		if err != nil {
			t.Fatalf("Pages: %v", err)
		}
		got = append(got, fmt.Sprint(item.Data()))
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if q := api.LastRequest(t).RawQuery; q != "page=2" {
		t.Errorf("next page query = %q", q)
	}
}

func TestDeclarativeAdapter_TopLevelList(t *testing.T) {
	a, err := NewDeclarativeAdapter(definition("https://api.example.org"), nil)
	if err != nil {
		t.Fatalf("NewDeclarativeAdapter: %v", err)
	}
	if got := a.IteratorList([]any{1, 2}); len(got) != 2 {
		t.Errorf("IteratorList = %v", got)
	}
	if _, ok := a.IteratorNextRequest(RequestOptions{}, map[string]any{}, nil); ok {
		t.Error("no next page without next_path")
	}
}

// tokenRoute serves a client-credentials token endpoint that records the
// grant types it received.
func tokenRoute(api *testutil.FakeAPI, token string, grants *[]string) {
	api.Handle(http.MethodPost, "/oauth/token", func(c *gin.Context) {
		*grants = append(*grants, c.PostForm("grant_type"))
		c.JSON(http.StatusOK, gin.H{
			"access_token":  token,
			"refresh_token": "r2",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
}

func refreshingDefinition(api *testutil.FakeAPI) Definition {
	def := definition(api.URL())
	def.Auth = AuthDefinition{
		Type:         "bearer",
		Token:        "stale",
		RefreshURL:   api.URL() + "/oauth/token",
		ClientID:     "id",
		ClientSecret: "secret",
	}
	def.RefreshTokenByDefault = true
	return def
}

func TestDeclarativeAdapter_RefreshOn401(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	var grants []string
	tokenRoute(api, "fresh", &grants)
	api.Sequence(http.MethodGet, "/me",
		testutil.Reply{Status: http.StatusUnauthorized, Body: map[string]any{"error": "token expired"}},
		testutil.Reply{Body: map[string]any{"id": 1}},
	)

	c := newDeclarative(t, refreshingDefinition(api))
	resp, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := api.LastRequest(t).Header.Get("Authorization"); got != "Bearer fresh" {
		t.Errorf("retry authorization = %q", got)
	}
	if !slices.Equal(grants, []string{"client_credentials"}) {
		t.Errorf("grants = %v", grants)
	}
	if c.Params()[ParamToken] != "fresh" || c.Params()[ParamRefreshToken] != "r2" {
		t.Errorf("params = %v", c.Params())
	}
	if got := mustCall(t, resp, nil).RefreshData(); got != "fresh" {
		t.Errorf("refresh data = %v", got)
	}
}

func TestDeclarativeAdapter_RefreshUsesStoredRefreshToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	var grants []string
	tokenRoute(api, "fresh", &grants)
	api.Sequence(http.MethodGet, "/me",
		testutil.Reply{Status: http.StatusUnauthorized},
		testutil.Reply{Body: map[string]any{"id": 1}},
	)

	def := refreshingDefinition(api)
	a, err := NewDeclarativeAdapter(def, nil)
	if err != nil {
		t.Fatalf("NewDeclarativeAdapter: %v", err)
	}
	c, err := Generate(a).New(append(a.Options(),
		WithParams(Params{ParamRefreshToken: "r1"}),
		WithLogger(logger.Nop()),
	)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !slices.Equal(grants, []string{"refresh_token"}) {
		t.Errorf("grants = %v", grants)
	}

	var tokenReq testutil.RecordedRequest
	for _, r := range api.Requests() {
		if r.Path == "/oauth/token" {
			tokenReq = r
		}
	}
	form, _ := url.ParseQuery(string(tokenReq.Body))
	if form.Get("refresh_token") != "r1" {
		t.Errorf("token request form = %v", form)
	}
}

func TestDeclarativeAdapter_RefreshOnExpiredJWT(t *testing.T) {
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub": "ann",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	api := testutil.NewFakeAPI(t)
	var grants []string
	tokenRoute(api, "fresh", &grants)
	api.Handle(http.MethodGet, "/me", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer fresh" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": 1})
	})

	def := refreshingDefinition(api)
	def.Auth.Token = expired
	c := newDeclarative(t, def)

	if _, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(grants) != 1 {
		t.Errorf("expected one token request, got %v", grants)
	}
}

func TestDeclarativeAdapter_ForbiddenWithValidToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	var grants []string
	tokenRoute(api, "fresh", &grants)
	api.JSON(http.MethodGet, "/me", http.StatusForbidden, map[string]any{"error": "forbidden"})

	c := newDeclarative(t, refreshingDefinition(api))
	_, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background())
	if !IsAccessDenied(err) {
		t.Fatalf("expected access denied, got %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("an opaque token must not be refreshed on 403, got %v", grants)
	}
}

func TestDeclarativeAdapter_RefreshFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.JSON(http.MethodPost, "/oauth/token", http.StatusBadRequest, map[string]any{"error": "invalid_client"})
	api.JSON(http.MethodGet, "/me", http.StatusUnauthorized, nil)

	c := newDeclarative(t, refreshingDefinition(api))
	_, err := mustCall(t, mustAttr(t, c, "me"), nil).Get(context.Background())
	if !IsInvalidCredentials(err) {
		t.Errorf("expected the 401 in the chain, got %v", err)
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeBadRequest) {
		t.Errorf("expected the token endpoint error in the chain, got %v", err)
	}
}

func TestDeclarativeAdapter_NoRefreshEndpoint(t *testing.T) {
	a, err := NewDeclarativeAdapter(definition("https://api.example.org"), nil)
	if err != nil {
		t.Fatalf("NewDeclarativeAdapter: %v", err)
	}
	data, err := a.RefreshAuthentication(context.Background(), Params{})
	if data != nil || err != nil {
		t.Errorf("RefreshAuthentication = %v, %v", data, err)
	}
}
