package persist

import (
	"log/slog"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/schema"
)

// DefaultVersionKey is the top-level key holding the format version.
const DefaultVersionKey = "mse_version"

// RefResolver looks up named references while reading.
type RefResolver interface {
	Resolve(typeName, name string) (schema.Object, error)
}

// RefResolverFunc adapts a function to RefResolver.
type RefResolverFunc func(typeName, name string) (schema.Object, error)

// Resolve calls f.
func (f RefResolverFunc) Resolve(typeName, name string) (schema.Object, error) {
	return f(typeName, name)
}

type options struct {
	refs       RefResolver
	logger     *slog.Logger
	versionKey string
	maxVersion core.Version
	version    core.Version
	strict     bool
}

func newOptions(opts []Option) options {
	o := options{
		versionKey: DefaultVersionKey,
		maxVersion: core.MaxVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// Option configures a Reader or Writer.
type Option func(*options)

// WithRefs sets the resolver for named references.
func WithRefs(refs RefResolver) Option {
	return func(o *options) { o.refs = refs }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithVersionKey overrides DefaultVersionKey.
func WithVersionKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.versionKey = key
		}
	}
}

// WithMaxVersion sets the newest format version the Reader accepts.
func WithMaxVersion(v core.Version) Option {
	return func(o *options) { o.maxVersion = v }
}

// WithStrict makes the Reader fail on the first warning.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithVersion sets the format version the Writer emits.
func WithVersion(v core.Version) Option {
	return func(o *options) { o.version = v }
}
