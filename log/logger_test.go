// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"strings"
	"testing"
)

func TestTerminalHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(NewTerminalHandler(&buf, false))

	logger.Info("a message", "key", "value", "big", big.NewInt(100))

	out := buf.String()
	for _, want := range []string{"INFO ", "a message", "key=value", "big=100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestTerminalHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelWarn)
	logger := NewLogger(NewTerminalHandlerWithLevel(&buf, &lvl, false))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record should have been dropped, got %q", buf.String())
	}
	logger.Error("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("error record missing, got %q", buf.String())
	}
}

func TestWithContextResolvesLate(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	prev := Root()
	SetDefault(NewLogger(LogfmtHandler(&buf)))
	defer SetDefault(prev)

	pkgLogger.Info("hello", "a", "1")

	out := buf.String()
	for _, want := range []string{"pkg=test", "a=1", "msg=hello", "lvl=info"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevelStrings(t *testing.T) {
	tests := []struct {
		lvl     slog.Level
		str     string
		aligned string
	}{
		{LevelTrace, "trace", "TRACE"},
		{slog.LevelDebug, "debug", "DEBUG"},
		{slog.LevelInfo, "info", "INFO "},
		{slog.LevelWarn, "warn", "WARN "},
		{slog.LevelError, "error", "ERROR"},
		{LevelCrit, "crit", "CRIT "},
	}
	for _, tt := range tests {
		if got := LevelString(tt.lvl); got != tt.str {
			t.Errorf("LevelString(%v) = %q, want %q", tt.lvl, got, tt.str)
		}
		if got := LevelAlignedString(tt.lvl); got != tt.aligned {
			t.Errorf("LevelAlignedString(%v) = %q, want %q", tt.lvl, got, tt.aligned)
		}
	}
}

func TestFormatLogfmtUint64(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{99999, "99999"},
		{100000, "100,000"},
		{1234567890, "1,234,567,890"},
	}
	for _, tt := range tests {
		if got := FormatLogfmtUint64(tt.n); got != tt.want {
			t.Errorf("FormatLogfmtUint64(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
