package log

import (
	"io"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "action",
		},
	})
	return l
}

// SetOutput redirects every subsequent entry to w and returns the previous
// writer so callers (tests, main) can restore it.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	old := logger.Out
	logger.SetOutput(w)
	return old
}

func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Out
}

func write(level logrus.Level, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	f := logrus.Fields{}
	if kind != "" {
		f["kind"] = kind
	}
	if c != nil {
		f["ip"] = c.IP()
		f["method"] = c.Method()
		f["path"] = c.Path()
		if st := c.Response().StatusCode(); st != 0 {
			f["status"] = st
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			f["user_id"] = uid
		}
	}
	if err != nil {
		f["err"] = err.Error()
	}
	if len(fields) > 0 {
		f["fields"] = fields
	}
	mu.RLock()
	defer mu.RUnlock()
	logger.WithFields(f).Log(level, action)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, "", c, action, nil, fields)
}

// Audit records a business mutation (who changed what).
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.InfoLevel, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logrus.WarnLevel, "security", c, action, nil, fields)
}

// Warn is for failures that are logged and then swallowed.
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.WarnLevel, "", c, action, err, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logrus.ErrorLevel, "", c, action, err, fields)
}
