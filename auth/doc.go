// Package auth holds the credential helpers API adapters use to notice an
// expired token and obtain a new one.
//
// Expiry is read from JWT bearer tokens without verifying the signature;
// the API remains the authority on validity:
//
//	if auth.TokenExpired(token, 30*time.Second) { ... }
//
// New tokens come from an OAuth2 token endpoint:
//
//	cc := auth.ClientCredentials{TokenURL: url, ClientID: id, ClientSecret: secret}
//	tok, err := cc.Token(ctx, session)
package auth
