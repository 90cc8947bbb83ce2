// Package httpclient is the HTTP session layer used by API wrappers.
//
// A Session sends exactly one request per Do call and hands back the fully
// read response whatever its status. It carries the transport concerns a
// wrapper should not reimplement: base URL joining, default headers,
// authentication, TLS, a cookie jar, client-side rate limiting, request ids
// and W3C trace propagation.
//
//	s, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	    Cookies: true,
//	})
//
//	resp, err := s.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    URL:    "/users/123",
//	})
//
// Errors returned by Do are always *Error values describing transport
// failures (timeout, connection, request validation).
package httpclient
