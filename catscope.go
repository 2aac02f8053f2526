package catscope

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Constants for default values and the well-known store layout.
const (
	defaultLevel     = LevelError
	loggingSubspace  = "logging"
	categoriesPrefix = "categories:"
	version          = "v1.0.0"
)

// Scope ties a storage namespace to a log sink and hands out Loggers whose
// levels are resolved from the persisted category configuration. It replaces
// any process-global registry; callers pass the handle around explicitly.
type Scope struct {
	ns     Store // the namespace handed to New
	store  Store // the logging subspace inside ns
	opts   *Options
	slogh  slog.Handler
	logger *slog.Logger // internal diagnostics
	mu     sync.Mutex
}

// New creates a Scope on top of the given storage namespace.
// The store must not be nil.
func New(store Store, opts *Options) *Scope {
	o := Options{}
	if opts != nil {
		o = *opts
	}

	if store == nil {
		panic("catscope: store must not be nil")
	}

	if o.Handler == nil {
		o.Handler = slog.NewTextHandler(os.Stderr, nil)
	}

	logger := slog.New(NewNilHandler())
	// If debug mode is enabled, the sink also carries internal log messages.
	if o.Debug {
		logger = slog.New(o.Handler).WithGroup("catscope").With(slog.Attr{
			Key:   "version",
			Value: slog.StringValue(version),
		})
		logger.Debug("debug mode enabled")
	}

	s := &Scope{
		ns:     store,
		store:  store.Subspace(loggingSubspace),
		opts:   &o,
		slogh:  o.Handler,
		logger: logger,
	}

	if o.Config != nil {
		s.applyConfig(*o.Config)
	}

	return s
}

// Namespace returns the storage namespace the Scope was created with.
// Useful for inspecting or snapshotting the persisted configuration.
func (s *Scope) Namespace() Store {
	return s.ns
}

// Logger creates a Logger for the given dotted category. The effective level
// is resolved once, at creation time; later configuration changes require a
// new Logger. The category must not be empty.
func (s *Scope) Logger(category string) *Logger {
	if category == "" {
		panic("catscope: category must not be empty")
	}

	lvl := s.resolveLevel(category)
	s.logger.Debug(fmt.Sprintf("resolved level=%q for category=%q", lvl, category))

	return &Logger{
		category: category,
		level:    lvl,
		sl:       slog.New(s.slogh).With(slog.String("category", category)),
	}
}

// SetLevel persists a level identifier for a category. The identifier is
// case-insensitive and must name a known level.
func (s *Scope) SetLevel(category, level string) error {
	level = strings.ToUpper(level)
	if err := validation.Validate(level, validation.Required, validation.In(levelIdentifiers()...)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if err := validation.Validate(category, validation.Required); err != nil {
		return fmt.Errorf("invalid category %q: %w", category, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Set(categoriesPrefix+category, level)
	return nil
}

// resolveLevel walks the category hierarchy from most to least specific and
// returns the first configured level, or the default when the walk exhausts
// the name. Each unset key it touches gets the blank sentinel written back,
// so a storage inspector shows every category that has been asked about.
func (s *Scope) resolveLevel(category string) Level {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := category
	for {
		v, ok := s.store.Get(categoriesPrefix+cat, &GetOptions{WriteDefault: true})
		if ok && v != "" {
			if lvl, ok := levelFromString(v); ok {
				return lvl
			}
			s.logger.Debug(fmt.Sprintf("invalid stored log level %q for category %q! -> walking on", v, cat))
		}
		i := strings.LastIndexByte(cat, '.')
		if i < 0 {
			break
		}
		cat = cat[:i]
	}

	if s.opts.Config != nil {
		if lvl, ok := levelFromString(s.opts.Config.LogLevel); ok {
			return lvl
		}
	}
	return defaultLevel
}

// applyConfig seeds the store with the category entries of a Config.
// Invalid entries are reported to the debug logger and skipped.
func (s *Scope) applyConfig(cfg Config) {
	if err := cfg.Validate(); err != nil {
		s.logger.Debug(fmt.Sprintf("invalid seed config: %s", err.Error()))
	}
	for _, c := range cfg.Categories {
		if err := s.SetLevel(c.Name, c.LogLevel); err != nil {
			s.logger.Debug(err.Error())
		}
	}
}

// LoadConfig reads a Config from a YAML file. A missing or malformed file
// yields a Config holding only the package default level.
func LoadConfig(cfgFile string, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.New(NewNilHandler())
	}

	defaultCfg := Config{LogLevel: defaultLevel.String()}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		logger.Debug(fmt.Sprintf("error reading config file (%s): %s", cfgFile, err.Error()))
		return &defaultCfg
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Debug(fmt.Sprintf("error unmarshalling config file (%s): %s", cfgFile, err.Error()))
		return &defaultCfg
	}

	return &cfg
}
