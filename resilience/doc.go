// Package resilience holds the pacing primitives API sessions use:
//
//   - RateLimiter: a client-side token bucket applied before each request
//   - HeaderThrottle: pauses derived from X-RateLimit-Remaining and
//     X-RateLimit-Reset response headers
//
// Neither retries anything. A request is sent once; these only decide how
// long to wait before sending it.
package resilience
