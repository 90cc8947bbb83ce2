package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/apiwrap/errors"
	"github.com/kbukum/apiwrap/httpclient"
)

// ClientCredentials requests access tokens from an OAuth2 token endpoint.
type ClientCredentials struct {
	TokenURL     string   `yaml:"token_url" mapstructure:"token_url"`
	ClientID     string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string   `yaml:"client_secret" mapstructure:"client_secret"`
	Scopes       []string `yaml:"scopes" mapstructure:"scopes"`
	// InParams sends the client credentials as form fields instead of
	// HTTP Basic auth.
	InParams bool `yaml:"in_params" mapstructure:"in_params"`
}

// Validate checks required fields.
func (c *ClientCredentials) Validate() error {
	switch {
	case c.TokenURL == "":
		return errors.MissingField("token_url")
	case c.ClientID == "":
		return errors.MissingField("client_id")
	}
	return nil
}

// Token performs the client_credentials grant.
func (c *ClientCredentials) Token(ctx context.Context, s *httpclient.Session) (*TokenResult, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	if len(c.Scopes) > 0 {
		form.Set("scope", strings.Join(c.Scopes, " "))
	}
	return c.exchange(ctx, s, form)
}

// Refresh performs the refresh_token grant.
func (c *ClientCredentials) Refresh(ctx context.Context, s *httpclient.Session, refreshToken string) (*TokenResult, error) {
	if refreshToken == "" {
		return nil, errors.MissingField("refresh_token")
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.exchange(ctx, s, form)
}

func (c *ClientCredentials) exchange(ctx context.Context, s *httpclient.Session, form url.Values) (*TokenResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	req := httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.TokenURL,
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded", "Accept": "application/json"},
	}
	if c.InParams {
		form.Set("client_id", c.ClientID)
		form.Set("client_secret", c.ClientSecret)
		req.Auth = &httpclient.AuthConfig{Type: httpclient.AuthNone}
	} else {
		req.Auth = httpclient.BasicAuth(url.QueryEscape(c.ClientID), url.QueryEscape(c.ClientSecret))
	}
	req.Body = form.Encode()

	resp, err := s.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, errors.FromResponse(resp.StatusCode, tokenErrorMessage(resp.Body)).
			WithDetail("token_url", c.TokenURL)
	}

	var body struct {
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		TokenType    string      `json:"token_type"`
		ExpiresIn    json.Number `json:"expires_in"`
		Scope        string      `json:"scope"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, errors.InvalidInput("token response", err.Error()).WithCause(err)
	}
	if body.AccessToken == "" {
		return nil, errors.MissingField("access_token")
	}

	tok := &TokenResult{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
	}
	if secs, err := body.ExpiresIn.Int64(); err == nil && secs > 0 {
		tok.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	} else if exp, ok := TokenExpiry(body.AccessToken); ok {
		tok.ExpiresAt = exp
	}
	if body.Scope != "" {
		tok.Scopes = strings.Fields(body.Scope)
	}
	return tok, nil
}

// tokenErrorMessage extracts the RFC 6749 error fields from a failed
// token response.
func tokenErrorMessage(body []byte) string {
	var e struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error == "" {
		return ""
	}
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Error, e.Description)
	}
	return e.Error
}
