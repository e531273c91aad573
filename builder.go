package accesstoken

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valuefe/accesstoken/internal/audit"
	"github.com/valuefe/accesstoken/session"
)

// Builder assembles a [Manager]. Construction is explicit: nothing is
// registered or mutated globally, and Build is the only point that wires the
// store, the audit dispatcher, and the metric table together.
type Builder struct {
	cfg      Config
	redis    redis.UniversalClient
	messages MessageFormatter
	sink     AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration
// (key prefix "acst", 20 minute max age, auto keep-active on, fingerprint
// binding off).
func New() *Builder {
	return &Builder{
		cfg: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration. Empty strings, zero
// durations and zero buffer sizes are filled with defaults at Build time;
// boolean fields are taken as given, so a zero-valued Config disables
// auto keep-active and metrics.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithRedis sets the Redis client backing the session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMessages sets the localization hook used for user-visible error text.
func (b *Builder) WithMessages(messages MessageFormatter) *Builder {
	b.messages = messages
	return b
}

// WithAuditSink sets the audit consumer and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.cfg.Audit.Enabled = sink != nil
	return b
}

// WithKeyPrefix overrides the token key prefix.
func (b *Builder) WithKeyPrefix(prefix string) *Builder {
	b.cfg.KeyPrefix = prefix
	return b
}

// WithMaxAge overrides the default session TTL.
func (b *Builder) WithMaxAge(maxAge time.Duration) *Builder {
	b.cfg.MaxAge = maxAge
	return b
}

// WithAutoKeepActive toggles TTL extension on every valid guarded request.
func (b *Builder) WithAutoKeepActive(enabled bool) *Builder {
	b.cfg.AutoKeepActive = enabled
	return b
}

// WithFingerprint sets the client-fingerprint binding policy.
func (b *Builder) WithFingerprint(policy FingerprintPolicy) *Builder {
	b.cfg.Fingerprint = policy
	return b
}

// Build validates the configuration and returns the assembled [Manager].
// A Builder is single-use.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	if b.redis == nil {
		return nil, ErrNilRedis
	}

	cfg := b.cfg
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	messages := b.messages
	if messages == nil {
		messages = PassthroughMessages{}
	}

	var dispatcher *audit.Dispatcher
	if cfg.Audit.Enabled {
		var sink audit.Sink
		if b.sink != nil {
			sink = sinkAdapter{sink: b.sink}
		}
		dispatcher = audit.NewDispatcher(audit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink)
	}

	return &Manager{
		cfg:      cfg,
		store:    session.NewStore(b.redis, cfg.Namespace),
		messages: messages,
		metrics:  newMetricsTable(cfg.Metrics),
		audit:    dispatcher,
	}, nil
}
