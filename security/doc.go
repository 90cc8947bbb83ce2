// Package security holds the TLS configuration shared by API sessions.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/path/to/ca.pem",
//	    CertFile:   "/path/to/cert.pem",
//	    KeyFile:    "/path/to/key.pem",
//	    MinVersion: "1.3",
//	}
//
//	tlsConfig, err := cfg.Build()
package security
