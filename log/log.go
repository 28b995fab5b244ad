package log

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var level = "info"

// SetLevel sets the level the wrappers gate on and configures logrus to match
func SetLevel(l string) error {
	l = strings.ToLower(strings.TrimSpace(l))
	if l == "" {
		l = "info"
	}
	parsed, err := log.ParseLevel(l)
	if err != nil {
		return errors.Wrapf(err, "SetLevel: unable to parse the log level %q", l)
	}
	level = l
	log.SetLevel(parsed)
	return nil
}

// Hold buffers log output until release is called, then writes what was held
// to the previous output. The grid surface holds logs while it owns the
// terminal.
func Hold() (release func()) {
	logger := log.StandardLogger()
	prev := logger.Out
	held := &bytes.Buffer{}
	log.SetOutput(held)
	return func() {
		log.SetOutput(prev)
		_, _ = io.Copy(prev, held)
	}
}

// SetJSON switches to the JSON formatter
func SetJSON() {
	log.SetFormatter(&log.JSONFormatter{})
}

func Debug(msg ...interface{}) {
	if level == "debug" || level == "trace" {
		log.Debug(msg...)
	}
}

func Debugf(format string, msg ...interface{}) {
	if level == "debug" || level == "trace" {
		log.Debugf(format, msg...)
	}
}

func Info(msg ...interface{}) {
	if level == "debug" || level == "trace" || level == "info" {
		log.Info(msg...)
	}
}

func Infof(format string, msg ...interface{}) {
	if level == "debug" || level == "trace" || level == "info" {
		log.Infof(format, msg...)
	}
}

func Warn(msg ...interface{}) {
	if level != "error" && level != "fatal" && level != "panic" {
		log.Warn(msg...)
	}
}

func Warnf(format string, msg ...interface{}) {
	if level != "error" && level != "fatal" && level != "panic" {
		log.Warnf(format, msg...)
	}
}

func Error(msg ...interface{}) {
	log.Error(msg...)
}

func Errorf(format string, msg ...interface{}) {
	log.Errorf(format, msg...)
}

func Fatal(msg ...interface{}) {
	log.Fatal(msg...)
}

func Fatalf(format string, msg ...interface{}) {
	log.Fatalf(format, msg...)
}
