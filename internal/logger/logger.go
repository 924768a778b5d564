// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides a package-level, leveled logger built on
// log/slog, with a TRACE level below slog's own Debug and an OFF level
// above Error. Output goes to stderr by default, or to a rotated file once
// InitLogFile is called.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/googlecloudplatform/refdb/cfg"
	"github.com/googlecloudplatform/refdb/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom levels, spaced apart like slog's own so intermediate values stay
// meaningful if anyone ever needs them.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelOff:   "OFF",
}

var (
	mu                   sync.Mutex
	programLevel         = new(slog.LevelVar)
	defaultLoggerFactory = &loggerFactory{
		format: "text",
		level:  programLevel,
		file:   os.Stderr,
	}
	defaultLogger = defaultLoggerFactory.newLogger()
)

// loggerFactory owns the handler configuration: output format, level, and
// destination. Rebuilding defaultLogger from a fresh factory is how
// SetLogFormat and InitLogFile take effect without disturbing goroutines
// already holding a *slog.Logger reference elsewhere — they hold the old
// one, and the package-level helpers below always go through the current
// defaultLogger.
type loggerFactory struct {
	format          string
	level           *slog.LevelVar
	file            io.Writer
	sysWriter       io.WriteCloser
	logRotateConfig config.LogRotateConfig
}

func (f *loggerFactory) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: f.level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				level := a.Value.Any().(slog.Level)
				if name, ok := levelNames[level]; ok {
					a.Value = slog.StringValue(name)
				}
			}
			return a
		},
	}
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer) slog.Handler {
	if f.format == "json" {
		return slog.NewJSONHandler(w, f.handlerOptions())
	}
	return slog.NewTextHandler(w, f.handlerOptions())
}

func (f *loggerFactory) newLogger() *slog.Logger {
	return slog.New(f.createJsonOrTextHandler(f.file))
}

// SetLogFormat switches the active logger between "text" and "json"
// output, keeping the current destination and level.
func SetLogFormat(format string) {
	mu.Lock()
	defer mu.Unlock()

	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger()
}

// setLoggingLevel maps a config.Severity name onto the shared LevelVar.
// Unrecognized names fall back to INFO.
func setLoggingLevel(severity string, level *slog.LevelVar) {
	switch severity {
	case config.TRACE:
		level.Set(LevelTrace)
	case config.DEBUG:
		level.Set(LevelDebug)
	case config.INFO:
		level.Set(LevelInfo)
	case config.WARNING:
		level.Set(LevelWarn)
	case config.ERROR:
		level.Set(LevelError)
	case config.OFF:
		level.Set(LevelOff)
	default:
		level.Set(LevelInfo)
	}
}

// InitLogFile points the default logger at a rotated file, closing
// whatever file it was previously writing to. newConfig.FilePath empty
// means "stderr" and legacyConfig.File is used as a fallback, matching
// the coexistence of the two configuration surfaces elsewhere in this
// module.
func InitLogFile(legacyConfig config.LogConfig, newConfig cfg.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	path := string(newConfig.FilePath)
	if path == "" {
		path = legacyConfig.File
	}

	severity := newConfig.Severity
	if severity == "" {
		severity = legacyConfig.Severity
	}
	if severity == "" {
		severity = config.INFO
	}
	setLoggingLevel(severity, programLevel)

	format := newConfig.Format
	if format == "" {
		format = legacyConfig.Format
	}
	if format == "" {
		format = "text"
	}

	if defaultLoggerFactory.sysWriter != nil {
		_ = defaultLoggerFactory.sysWriter.Close()
		defaultLoggerFactory.sysWriter = nil
	}

	if path == "" {
		defaultLoggerFactory.file = os.Stderr
		defaultLoggerFactory.format = format
		defaultLogger = defaultLoggerFactory.newLogger()
		return nil
	}

	rotate := legacyConfig.LogRotateConfig
	if rotate == (config.LogRotateConfig{}) {
		rotate = config.DefaultLogRotateConfig()
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotate.MaxFileSizeMB,
		MaxBackups: rotate.BackupFileCount,
		Compress:   rotate.Compress,
	}

	defaultLoggerFactory.sysWriter = w
	defaultLoggerFactory.file = w
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger()
	return nil
}

func logf(ctx context.Context, level slog.Level, format string, v ...any) {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()

	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, fmt.Sprintf(format, v...))
}

// Tracef logs at TRACE, the noisiest level. Nothing in this module
// currently logs at TRACE.
func Tracef(format string, v ...any) { logf(context.Background(), LevelTrace, format, v...) }

// Debugf logs at DEBUG: the entry line of each backend operation and the
// resolved configuration.
func Debugf(format string, v ...any) { logf(context.Background(), LevelDebug, format, v...) }

// Infof logs at INFO: progress notes such as a finished pack-refs or the
// metrics listen address.
func Infof(format string, v ...any) { logf(context.Background(), LevelInfo, format, v...) }

// Warnf logs at WARNING: NotFound, AlreadyExists and Collision outcomes of
// backend operations.
func Warnf(format string, v ...any) { logf(context.Background(), LevelWarn, format, v...) }

// Errorf logs at ERROR: operation failures returned to the caller.
func Errorf(format string, v ...any) { logf(context.Background(), LevelError, format, v...) }
