package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options selects level, format and destination.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Out    io.Writer
}

type Logger struct {
	*logrus.Entry
}

// New builds a logger. Text output is meant for terminals; json for everything else.
func New(opt Options) *Logger {
	base := logrus.New()

	if strings.EqualFold(opt.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	out := opt.Out
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)

	switch strings.ToLower(opt.Level) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(Options{Out: io.Discard, Level: "error"})
}

// WithRequest attaches request metadata. The chi request id is reused when present.
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID := middleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return l.WithFields(logrus.Fields{
		"req_id":    reqID,
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
