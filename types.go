package catscope

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config seeds the category configuration of a Scope. Entries are written to
// the store on construction, so they show up in a storage inspector alongside
// any sentinel keys created by resolution.
type Config struct {
	LogLevel   string     `yaml:"log_level"` // Default log level used when no ancestor matches.
	Categories []Category `yaml:"categories"`
}

// Category couples a dotted category name with a log level identifier.
type Category struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// Options configure a Scope.
type Options struct {
	// Handler is the slog.Handler log records are emitted through.
	// Defaults to a text handler writing to os.Stderr.
	Handler slog.Handler

	// Config is an optional seed configuration applied to the store.
	Config *Config

	// Debug routes internal diagnostics through Handler instead of
	// discarding them.
	Debug bool
}

// Validate reports whether the Config only contains known level identifiers
// and non-empty category names.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In(levelIdentifiers()...)),
		validation.Field(&c.Categories, validation.Each(validation.By(func(value any) error {
			cat, ok := value.(Category)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a Category")
			}
			return validation.ValidateStruct(&cat,
				validation.Field(&cat.Name, validation.Required),
				validation.Field(&cat.LogLevel, validation.Required, validation.In(levelIdentifiers()...)),
			)
		}))),
	)
}
