package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		out = append(out, line)
	}
	return out
}

func TestLevelsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "lunch")
	l.Debugw("phase done", map[string]any{"phase": "match", "groups": 3})
	l.Infof("schedule %s", "Monday")
	l.Warnf("%d client(s) without coverage", 2)
	l.Errorf("failed: %v", "boom")

	got := lines(t, &buf)
	require.Len(t, got, 4)
	tests := []struct {
		level, message string
	}{
		{"debug", "phase done"},
		{"info", "schedule Monday"},
		{"warn", "2 client(s) without coverage"},
		{"error", "failed: boom"},
	}
	for i, tt := range tests {
		assert.Equal(t, "lunch", got[i]["component"])
		assert.Equal(t, tt.level, got[i]["level"])
		assert.Equal(t, tt.message, got[i]["message"])
	}
	assert.Equal(t, "match", got[0]["phase"])
	assert.Equal(t, 3.0, got[0]["groups"])
}

func TestNewDevConsole(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	assert.NotNil(t, New("server"))
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	l := NewWithWriter(&bytes.Buffer{}, "x")
	assert.Equal(t, l, OrNop(l))
}
