package catscope

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log message. Higher levels are more severe and
// are always shown once the resolved level of a Logger permits them.
type Level int

// Available log levels, ordered by precedence.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String identifiers as they appear in the store and in Config files.
const (
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
)

var levelNames = []string{
	LogLevelDebug,
	LogLevelInfo,
	LogLevelWarn,
	LogLevelError,
}

// levelIdentifiers returns the valid level identifiers as a []any,
// suitable for validation.In.
func levelIdentifiers() []any {
	ids := make([]any, len(levelNames))
	for i, n := range levelNames {
		ids[i] = n
	}
	return ids
}

// String returns the identifier of a log level, e.g. "WARN".
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// slogLevel maps a Level to its log/slog counterpart for record emission.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ParseLevel converts a string identifier to a Level.
// Can be one of ["DEBUG", "INFO", "WARN" or "ERROR"], case-insensitive.
func ParseLevel(level string) (Level, error) {
	if lvl, ok := levelFromString(level); ok {
		return lvl, nil
	}
	return defaultLevel, fmt.Errorf("invalid log level: %q", level)
}

// levelFromString is the lenient variant of ParseLevel used when reading
// stored identifiers. Unknown values report ok == false instead of failing,
// so that resolution can keep walking the hierarchy.
func levelFromString(level string) (Level, bool) {
	switch strings.ToUpper(level) {
	case LogLevelDebug:
		return LevelDebug, true
	case LogLevelInfo:
		return LevelInfo, true
	case LogLevelWarn:
		return LevelWarn, true
	case LogLevelError:
		return LevelError, true
	default:
		return defaultLevel, false
	}
}
