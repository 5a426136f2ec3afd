package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestEntry_KeyValuePairs(t *testing.T) {
	e := entry([]interface{}{"a", 1, "b", "two"})

	require.Equal(t, logrus.Fields{"a": 1, "b": "two"}, e.Data)
}

func TestEntry_DanglingKey(t *testing.T) {
	e := entry([]interface{}{"a", 1, "dangling"})

	require.Equal(t, logrus.Fields{"a": 1, "extra": "dangling"}, e.Data)
}

func TestSetVerbosity(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	tests := []struct {
		name      string
		verbosity int
		want      logrus.Level
	}{
		{name: "info", verbosity: InfoLevel, want: logrus.InfoLevel},
		{name: "debug", verbosity: DebugLevel, want: logrus.DebugLevel},
		{name: "belowRange", verbosity: -3, want: logrus.ErrorLevel},
		{name: "aboveRange", verbosity: 42, want: logrus.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVerbosity(tt.verbosity)
			require.Equal(t, tt.want, logrus.GetLevel())
		})
	}
}

func TestInfo_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	out := logrus.StandardLogger().Out
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(out)

	Info("hello", "key", "value")

	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "key=value")
}
