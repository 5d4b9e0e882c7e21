package libemit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// charmLogger adapts a charmbracelet logger to the internal logger interface.
type charmLogger struct {
	l *log.Logger
}

func newCharmLogger(l *log.Logger) logger {
	return &charmLogger{l: l}
}

func (c *charmLogger) WithField(key string, value any) logger {
	return &charmLogger{l: c.l.With(key, value)}
}

func sprintln(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

func (c *charmLogger) Debug(args ...any) {
	c.l.Debug(fmt.Sprint(args...))
}

func (c *charmLogger) Debugf(format string, args ...any) {
	c.l.Debugf(format, args...)
}

func (c *charmLogger) Debugln(args ...any) {
	c.l.Debug(sprintln(args...))
}

func (c *charmLogger) Info(args ...any) {
	c.l.Info(fmt.Sprint(args...))
}

func (c *charmLogger) Infof(format string, args ...any) {
	c.l.Infof(format, args...)
}

func (c *charmLogger) Infoln(args ...any) {
	c.l.Info(sprintln(args...))
}

func (c *charmLogger) Warn(args ...any) {
	c.l.Warn(fmt.Sprint(args...))
}

func (c *charmLogger) Warnf(format string, args ...any) {
	c.l.Warnf(format, args...)
}

func (c *charmLogger) Warnln(args ...any) {
	c.l.Warn(sprintln(args...))
}

func (c *charmLogger) Error(args ...any) {
	c.l.Error(fmt.Sprint(args...))
}

func (c *charmLogger) Errorf(format string, args ...any) {
	c.l.Errorf(format, args...)
}

func (c *charmLogger) Errorln(args ...any) {
	c.l.Error(sprintln(args...))
}
