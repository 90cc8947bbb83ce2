package wrapper

import (
	"fmt"
	"maps"

	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/resilience"
	"github.com/kbukum/apiwrap/version"
	"github.com/kbukum/apiwrap/wrapper/serializer"
)

// Factory creates root clients for one adapter.
type Factory struct {
	adapter Adapter
}

// Generate returns a factory for adapter.
func Generate(adapter Adapter) *Factory {
	return &Factory{adapter: adapter}
}

// Adapter returns the factory's adapter.
func (f *Factory) Adapter() Adapter { return f.adapter }

// Option configures a client created by Factory.New.
type Option func(*settings)

type settings struct {
	params           Params
	defaultURLParams map[string]any
	session          *httpclient.Session
	httpConfig       *httpclient.Config
	serializer       serializer.Serializer
	serializerSet    bool
	refreshByDefault bool
	throttle         *resilience.HeaderThrottle
	throttleSet      bool
	log              *logger.Logger
	metrics          *observability.Metrics
}

// WithParams sets the API parameters. The map is shared, not copied.
func WithParams(params Params) Option {
	return func(s *settings) { s.params = params }
}

// WithDefaultURLParams sets URL template values used by every Call.
func WithDefaultURLParams(params map[string]any) Option {
	return func(s *settings) { s.defaultURLParams = maps.Clone(params) }
}

// WithSession sets the HTTP session.
func WithSession(session *httpclient.Session) Option {
	return func(s *settings) { s.session = session }
}

// WithHTTPConfig creates the session from cfg. Ignored when WithSession is used.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(s *settings) { s.httpConfig = &cfg }
}

// WithSerializer overrides the adapter's serializer. Nil disables it.
func WithSerializer(ser serializer.Serializer) Option {
	return func(s *settings) {
		s.serializer = ser
		s.serializerSet = true
	}
}

// WithRefreshTokenByDefault enables the refresh-and-retry path for calls
// that don't set WithRefreshToken.
func WithRefreshTokenByDefault(enabled bool) Option {
	return func(s *settings) { s.refreshByDefault = enabled }
}

// WithThrottle sets the rate-limit header pacing. Nil disables it.
func WithThrottle(t *resilience.HeaderThrottle) Option {
	return func(s *settings) {
		s.throttle = t
		s.throttleSet = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics records request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// New creates a root client. Without options it uses a default session,
// the adapter's serializer, and header-based rate-limit pacing.
func (f *Factory) New(opts ...Option) (*Client, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.params == nil {
		s.params = Params{}
	}
	if s.session == nil {
		cfg := httpclient.Config{UserAgent: version.UserAgent()}
		if s.httpConfig != nil {
			cfg = *s.httpConfig
			if cfg.UserAgent == "" {
				cfg.UserAgent = version.UserAgent()
			}
		}
		session, err := httpclient.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		s.session = session
	}
	if !s.serializerSet {
		if p, ok := f.adapter.(SerializerProvider); ok {
			s.serializer = p.Serializer()
		}
	}
	if !s.throttleSet {
		s.throttle = resilience.DefaultHeaderThrottle()
	}
	if s.log == nil {
		s.log = logger.Get("apiwrap")
	}

	api := &instance{
		adapter:          f.adapter,
		session:          s.session,
		params:           s.params,
		defaultURLParams: s.defaultURLParams,
		serializer:       s.serializer,
		refreshByDefault: s.refreshByDefault,
		throttle:         s.throttle,
		log:              s.log,
		metrics:          s.metrics,
	}
	return &Client{view{api: api}}, nil
}

// Params returns the parameters shared by every client of this instance.
func (c *Client) Params() Params { return c.api.params }

// Session returns the HTTP session.
func (c *Client) Session() *httpclient.Session { return c.api.session }
