package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Logger is the structured logger shared by every component. Arguments are
// slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithComponent(component string) Logger
}

type Opts struct {
	Env       string
	SentryDSN string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

type Impl struct {
	log    *slog.Logger
	sentry bool
}

var _ Logger = (*Impl)(nil)

// New builds a slog logger backed by zerolog. Development output is human
// readable; any other environment writes JSON lines. When a Sentry DSN is
// configured, error records are also forwarded to Sentry.
func New(opts Opts) *Impl {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	level := slog.LevelInfo
	var zl zerolog.Logger
	if opts.Env == "" || opts.Env == EnvDevelopment {
		level = slog.LevelDebug
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(w).With().Timestamp().Logger()
	}

	handler := slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler()

	impl := &Impl{}
	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err == nil {
			handler = slogmulti.Fanout(
				handler,
				slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
			)
			impl.sentry = true
		} else {
			defer impl.Warn("Failed to initialize sentry, continuing without it", "error", err)
		}
	}

	impl.log = slog.New(handler)
	return impl
}

func (l *Impl) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *Impl) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *Impl) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
func (l *Impl) Error(msg string, args ...any) { l.log.Error(msg, args...) }

// WithComponent tags every record with the component name.
func (l *Impl) WithComponent(component string) Logger {
	return &Impl{
		log:    l.log.With("component", component),
		sentry: l.sentry,
	}
}

// Printf lets the logger act as an fx.Printer.
func (l *Impl) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

// Flush waits for buffered Sentry events to be delivered.
func (l *Impl) Flush(timeout time.Duration) {
	if l.sentry {
		sentry.Flush(timeout)
	}
}
