package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// verbosity levels accepted on the command line. logrus level = verbosity + 2
const (
	ErrorLevel = iota
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// SetVerbosity sets the logrus level from a command line verbosity value.
func SetVerbosity(verbosity int) {
	if verbosity < ErrorLevel {
		verbosity = ErrorLevel
	}
	if verbosity > TraceLevel {
		verbosity = TraceLevel
	}
	logrus.SetLevel(logrus.Level(verbosity + 2))
}

// FileOutput configures a rotating log file.
type FileOutput struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Console    bool // keep writing to stderr as well
}

// SetFileOutput redirects log output to a rotating file.
func SetFileOutput(o FileOutput) io.Closer {
	lj := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   o.Compress,
	}
	if o.Console {
		logrus.SetOutput(io.MultiWriter(os.Stderr, lj))
	} else {
		logrus.SetOutput(lj)
	}
	return lj
}

func Trace(msg string, keyvals ...interface{}) {
	entry(keyvals).Trace(msg)
}

func Debug(msg string, keyvals ...interface{}) {
	entry(keyvals).Debug(msg)
}

func Info(msg string, keyvals ...interface{}) {
	entry(keyvals).Info(msg)
}

func Warn(msg string, keyvals ...interface{}) {
	entry(keyvals).Warn(msg)
}

func Error(msg string, keyvals ...interface{}) {
	entry(keyvals).Error(msg)
}

// entry turns alternating key/value pairs into logrus fields. A trailing key
// without a value is logged under "extra".
func entry(keyvals []interface{}) *logrus.Entry {
	if len(keyvals) == 0 {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	fields := make(logrus.Fields, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		k := fmt.Sprint(keyvals[i])
		if i+1 == len(keyvals) {
			fields["extra"] = keyvals[i]
			break
		}
		fields[k] = keyvals[i+1]
	}
	return logrus.WithFields(fields)
}
