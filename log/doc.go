// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the process-wide logging surface: a Logger
// interface over log/slog with Trace..Crit levels, terminal, logfmt
// and JSON handlers, and WithContext for package loggers.
//
// The implementation is forked from the go-ethereum log package
// (handler.go, format.go, logger.go, root.go and their tests), which
// keep their original headers. WithContext and the LevelVar-aware
// handler constructors are local additions to the fork.
package log
