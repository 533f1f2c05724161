// Package log adds a thin wrapper around logrus so that every package logs
// with the same structured fields and debug output can be switched off
// cheaply.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	l     = logrus.New()
	debug = false
)

func init() {
	l.Out = os.Stderr
}

// ErrUnknownFormat is returned by SetFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown log format")

// SetDebug controls debug logging.
func SetDebug(to bool) {
	debug = to
	if to {
		l.Level = logrus.DebugLevel
	} else {
		l.Level = logrus.InfoLevel
	}
}

// SetFormatter sets the formatter.
func SetFormatter(to logrus.Formatter) {
	l.Formatter = to
}

// SetFormat sets the formatter by name, either "text" or "json".
func SetFormat(name string) error {
	switch name {
	case "", "text":
		SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		SetFormatter(&logrus.JSONFormatter{})
	default:
		return ErrUnknownFormat
	}
	return nil
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.Out = to
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// LogFields implements Fielder for Fields.
func (f Fields) LogFields() Fields {
	return f
}

// A Fielder provides Fields via the LogFields method.
type Fielder interface {
	LogFields() Fields
}

// err is a wrapper around an error.
type err struct {
	e error
}

// LogFields provides Fields for logging.
func (e err) LogFields() Fields {
	if e.e == nil {
		return Fields{}
	}
	return Fields{
		"error": e.e.Error(),
		"type":  fmt.Sprintf("%T", e.e),
	}
}

// Err is a wrapper around errors that implements Fielder.
func Err(e error) Fielder {
	return err{e}
}

// mergeFielders merges the Fields of multiple Fielders.
// Fields from the first Fielder are used unchanged, Fields from subsequent
// Fielders are prefixed with "%d.", starting from 1.
func mergeFielders(fielders ...Fielder) logrus.Fields {
	if len(fielders) == 0 || fielders[0] == nil {
		return nil
	}

	fields := make(logrus.Fields)
	for k, v := range fielders[0].LogFields() {
		fields[k] = v
	}
	for i := 1; i < len(fielders); i++ {
		if fielders[i] == nil {
			continue
		}
		prefix := fmt.Sprint(i, ".")
		for k, v := range fielders[i].LogFields() {
			fields[prefix+k] = v
		}
	}

	return fields
}

func entry(fielders []Fielder) logrus.FieldLogger {
	if len(fielders) == 0 {
		return l
	}
	return l.WithFields(mergeFielders(fielders...))
}

// Debug logs at the debug level if debug logging is enabled.
func Debug(v interface{}, fielders ...Fielder) {
	if debug {
		entry(fielders).Debug(v)
	}
}

// Info logs at the info level.
func Info(v interface{}, fielders ...Fielder) {
	entry(fielders).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, fielders ...Fielder) {
	entry(fielders).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, fielders ...Fielder) {
	entry(fielders).Error(v)
}

// Fatal logs at the fatal level and exits with a status code != 0.
func Fatal(v interface{}, fielders ...Fielder) {
	entry(fielders).Fatal(v)
}
