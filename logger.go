package lattice

import (
	"io"
	"log/slog"
	"os"
)

// Logger 对 slog.Logger 的轻量包装，输出目标与日志级别都可以在
// 运行期动态调整，Router 与中间件统一经由它输出。
type Logger struct {
	*slog.Logger
	output *outputVar
	level  *slog.LevelVar
}

// LoggerOptions configures NewLogger. The zero value logs text records at
// LevelInfo to stderr.
type LoggerOptions struct {
	Output io.Writer

	// AddSource causes the handler to compute the source code position
	// of the log statement and add a SourceKey attribute to the output.
	AddSource bool

	// Level reports the minimum record level that will be logged.
	// If nil, LevelInfo is assumed.
	Level slog.Leveler

	// ReplaceAttr is called to rewrite each non-group attribute before it
	// is logged, see slog.HandlerOptions.
	ReplaceAttr func(groups []string, a slog.Attr) slog.Attr

	// NewHandler builds the slog.Handler, defaulting to a text handler.
	NewHandler func(w io.Writer, opts *slog.HandlerOptions) slog.Handler
}

type outputVar struct {
	io.Writer
}

func (o *outputVar) Write(p []byte) (int, error) {
	return o.Writer.Write(p)
}

// NewLogger creates a Logger from the given options.
func NewLogger(opts *LoggerOptions) *Logger {
	if opts == nil {
		opts = &LoggerOptions{}
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.NewHandler == nil {
		opts.NewHandler = func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewTextHandler(w, opts)
		}
	}
	level := &slog.LevelVar{}
	output := &outputVar{opts.Output}
	level.Set(opts.Level.Level())
	return &Logger{
		Logger: slog.New(opts.NewHandler(output, &slog.HandlerOptions{
			AddSource:   opts.AddSource,
			Level:       level,
			ReplaceAttr: opts.ReplaceAttr,
		})),
		output: output,
		level:  level,
	}
}

var defaultLogger = NewLogger(nil)

// DefaultLogger returns the process-wide Logger used when no explicit one
// is supplied.
func DefaultLogger() *Logger {
	return defaultLogger
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output.Writer
}

// SetOutput swaps the output writer, returning the previous one.
func (l *Logger) SetOutput(w io.Writer) (old io.Writer) {
	old = l.output.Writer
	l.output.Writer = w
	return
}

// SetLevel adjusts the minimum level, returning the previous one.
func (l *Logger) SetLevel(level slog.Level) (oldLevel slog.Level) {
	oldLevel = l.level.Level()
	l.level.Set(level)
	return
}

// Level returns the current dynamic level.
func (l *Logger) Level() slog.Leveler {
	return l.level
}

// With returns a Logger whose records include the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		output: l.output,
		level:  l.level,
	}
}

// WithGroup returns a Logger that starts a group, see slog.Logger.WithGroup.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		Logger: l.Logger.WithGroup(name),
		output: l.output,
		level:  l.level,
	}
}
