package httpclient

import "github.com/kbukum/apiwrap/security"

// TLSConfig is the shared security TLS configuration.
type TLSConfig = security.TLSConfig
