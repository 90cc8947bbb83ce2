package wrapper

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"github.com/kbukum/apiwrap/auth"
	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/validation"
)

// Param keys read and written by DeclarativeAdapter.
const (
	ParamToken        = "token"
	ParamRefreshToken = "refresh_token"
	ParamKey          = "key"
)

// Definition describes an API without code.
//
//	name: github
//	api_root: https://api.github.com
//	auth:
//	  type: bearer
//	pagination:
//	  next_path: paging.next
//	resources:
//	  user_repos:
//	    resource: users/{user}/repos
//	    docs: https://docs.github.com/rest/repos
type Definition struct {
	Name                  string               `yaml:"name" json:"name" mapstructure:"name" validate:"required"`
	APIRoot               string               `yaml:"api_root" json:"api_root" mapstructure:"api_root" validate:"required,url"`
	Resources             ResourceMapping      `yaml:"resources" json:"resources" mapstructure:"resources" validate:"required,min=1,dive"`
	DefaultURLParams      map[string]any       `yaml:"default_url_params,omitempty" json:"default_url_params,omitempty" mapstructure:"default_url_params"`
	Headers               map[string]string    `yaml:"headers,omitempty" json:"headers,omitempty" mapstructure:"headers"`
	Auth                  AuthDefinition       `yaml:"auth,omitempty" json:"auth,omitempty" mapstructure:"auth"`
	Pagination            PaginationDefinition `yaml:"pagination,omitempty" json:"pagination,omitempty" mapstructure:"pagination"`
	RefreshTokenByDefault bool                 `yaml:"refresh_token_by_default,omitempty" json:"refresh_token_by_default,omitempty" mapstructure:"refresh_token_by_default"`
}

// AuthDefinition configures request authentication and token refresh.
type AuthDefinition struct {
	Type     string `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=none bearer token basic api_key apikey header"`
	Token    string `yaml:"token,omitempty" json:"token,omitempty" mapstructure:"token"`
	Username string `yaml:"username,omitempty" json:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"password,omitempty" json:"password,omitempty" mapstructure:"password"`
	Key      string `yaml:"key,omitempty" json:"key,omitempty" mapstructure:"key"`
	// Name is the API key or header name.
	Name string `yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	// In is "header" or "query" for API keys.
	In string `yaml:"in,omitempty" json:"in,omitempty" mapstructure:"in" validate:"omitempty,oneof=header query"`

	RefreshURL   string   `yaml:"refresh_url,omitempty" json:"refresh_url,omitempty" mapstructure:"refresh_url" validate:"omitempty,url"`
	ClientID     string   `yaml:"client_id,omitempty" json:"client_id,omitempty" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret,omitempty" json:"client_secret,omitempty" mapstructure:"client_secret"`
	Scopes       []string `yaml:"scopes,omitempty" json:"scopes,omitempty" mapstructure:"scopes"`
}

// PaginationDefinition locates page items and the next-page URL with gjson
// paths over the response data.
type PaginationDefinition struct {
	ItemsPath string `yaml:"items_path,omitempty" json:"items_path,omitempty" mapstructure:"items_path"`
	NextPath  string `yaml:"next_path,omitempty" json:"next_path,omitempty" mapstructure:"next_path"`
}

// Validate checks the definition.
func (d *Definition) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(d))
	v.Custom(d.Auth.RefreshURL == "" || d.Auth.ClientID != "", "auth.client_id", "is required with refresh_url")
	return v.Validate()
}

// DeclarativeAdapter implements Adapter from a Definition.
type DeclarativeAdapter struct {
	BaseAdapter
	def      Definition
	authType httpclient.AuthType
	session  *httpclient.Session
}

// NewDeclarativeAdapter validates def and builds an adapter. session is
// used for token refresh requests; nil creates a default one.
func NewDeclarativeAdapter(def Definition, session *httpclient.Session) (*DeclarativeAdapter, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	authType, ok := httpclient.ParseAuthType(def.Auth.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported auth type %q", def.Auth.Type)
	}
	if session == nil {
		var err error
		if session, err = httpclient.New(httpclient.Config{}); err != nil {
			return nil, err
		}
	}
	return &DeclarativeAdapter{
		BaseAdapter: BaseAdapter{Root: def.APIRoot, Mapping: def.Resources},
		def:         def,
		authType:    authType,
		session:     session,
	}, nil
}

// Definition returns the adapter's definition.
func (a *DeclarativeAdapter) Definition() Definition { return a.def }

// Options returns the factory options the definition implies.
func (a *DeclarativeAdapter) Options() []Option {
	return []Option{
		WithDefaultURLParams(a.def.DefaultURLParams),
		WithRefreshTokenByDefault(a.def.RefreshTokenByDefault),
	}
}

// RequestOptions returns the definition headers and credentials. Tokens and
// keys stored in params take precedence over the definition.
func (a *DeclarativeAdapter) RequestOptions(params Params, _ string) (RequestOptions, error) {
	opts := RequestOptions{Headers: maps.Clone(a.def.Headers)}
	ad := a.def.Auth

	switch a.authType {
	case httpclient.AuthBearer:
		if tok := firstNonEmpty(params.String(ParamToken), ad.Token); tok != "" {
			opts.Auth = httpclient.BearerAuth(tok)
		}
	case httpclient.AuthBasic:
		opts.Auth = httpclient.BasicAuth(ad.Username, ad.Password)
	case httpclient.AuthAPIKey:
		key := firstNonEmpty(params.String(ParamKey), ad.Key)
		name := firstNonEmpty(ad.Name, "X-API-Key")
		if ad.In == "query" {
			opts.Auth = httpclient.APIKeyAuthQuery(key, name)
		} else {
			opts.Auth = httpclient.APIKeyAuthHeader(key, name)
		}
	case httpclient.AuthHeader:
		opts.Auth = httpclient.HeaderAuth(firstNonEmpty(ad.Name, "Authorization"), firstNonEmpty(params.String(ParamToken), ad.Token))
	}
	return opts, nil
}

// IteratorList returns the list at pagination.items_path, or the data
// itself when it is a list and no path is set.
func (a *DeclarativeAdapter) IteratorList(data any) []any {
	path := a.def.Pagination.ItemsPath
	if path == "" {
		list, _ := data.([]any)
		return list
	}
	v, ok, err := lookupPath(data, path)
	if err != nil || !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// IteratorNextRequest follows the URL at pagination.next_path, resolved
// against the previous request URL.
func (a *DeclarativeAdapter) IteratorNextRequest(prev RequestOptions, data any, _ *httpclient.Response) (RequestOptions, bool) {
	path := a.def.Pagination.NextPath
	if path == "" {
		return RequestOptions{}, false
	}
	v, ok, err := lookupPath(data, path)
	if err != nil || !ok {
		return RequestOptions{}, false
	}
	next, _ := v.(string)
	if next == "" {
		return RequestOptions{}, false
	}
	if base, err := url.Parse(prev.URL); err == nil && prev.URL != "" {
		if ref, err := url.Parse(next); err == nil {
			next = base.ResolveReference(ref).String()
		}
	}
	return RequestOptions{URL: next}, true
}

// IsAuthenticationExpired reports 401 responses, and any rejected response
// sent with a bearer JWT whose exp has passed.
func (a *DeclarativeAdapter) IsAuthenticationExpired(err *ResponseError) bool {
	if err.StatusCode == http.StatusUnauthorized {
		return true
	}
	if err.Client == nil {
		return false
	}
	cred := err.Client.RequestOptions().Auth
	return cred != nil && cred.Type == httpclient.AuthBearer && auth.TokenExpired(cred.Token, 0)
}

// RefreshAuthentication requests a new token from auth.refresh_url and
// stores it in params. It returns the new access token, or nil when no
// refresh endpoint is configured.
func (a *DeclarativeAdapter) RefreshAuthentication(ctx context.Context, params Params) (any, error) {
	ad := a.def.Auth
	if ad.RefreshURL == "" {
		return nil, nil
	}
	cc := auth.ClientCredentials{
		TokenURL:     ad.RefreshURL,
		ClientID:     ad.ClientID,
		ClientSecret: ad.ClientSecret,
		Scopes:       ad.Scopes,
	}

	var (
		tok *auth.TokenResult
		err error
	)
	if rt := params.String(ParamRefreshToken); rt != "" {
		tok, err = cc.Refresh(ctx, a.session, rt)
	} else {
		tok, err = cc.Token(ctx, a.session)
	}
	if err != nil {
		return nil, err
	}

	params[ParamToken] = tok.AccessToken
	if tok.RefreshToken != "" {
		params[ParamRefreshToken] = tok.RefreshToken
	}
	return tok.AccessToken, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
