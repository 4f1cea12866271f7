/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/roster/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLoggerName = "DATABASE"

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

// Logger is the structured logger used by the database, repository and search
// packages. Fields are alternating key/value pairs.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// InitLogger installs log as the global logger unless one is already set.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

// GetLogger returns the global logger, creating the logrus-backed default on
// first use.
func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefaultLogger(defaultLoggerName)
	}
	return globalLogger
}

// DefaultLogger writes through a named logrus logger from the utils package.
type DefaultLogger struct {
	name   string
	logger *utils.Logger
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{name: name, logger: utils.NewLogger(name)}
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Debug(msg)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Info(msg)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Warn(msg)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Error(msg)
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	utils.SetLoggerLevel(l.name, strings.ToLower(level.String()))
}

// toFields pairs up key/value arguments; a trailing key without value is
// kept under "extra".
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields["extra"] = kv[i]
			break
		}
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

// ZapLogger adapts a zap logger to Logger for hosts that log with zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger wraps l. The returned logger's level can be changed with
// SetLevel independently of l's own core level.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core := &levelCore{Core: l.Core(), level: level}
	return &ZapLogger{
		sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
		level: level,
	}
}

func (z *ZapLogger) SetLevel(level LogLevel) {
	switch level {
	case LogLevelInfo:
		z.level.SetLevel(zapcore.InfoLevel)
	case LogLevelWarn:
		z.level.SetLevel(zapcore.WarnLevel)
	case LogLevelError:
		z.level.SetLevel(zapcore.ErrorLevel)
	default:
		z.level.SetLevel(zapcore.DebugLevel)
	}
}

func (z *ZapLogger) Debug(msg string, fields ...interface{}) { z.sugar.Debugw(msg, fields...) }

func (z *ZapLogger) Info(msg string, fields ...interface{}) { z.sugar.Infow(msg, fields...) }

func (z *ZapLogger) Warn(msg string, fields ...interface{}) { z.sugar.Warnw(msg, fields...) }

func (z *ZapLogger) Error(msg string, fields ...interface{}) { z.sugar.Errorw(msg, fields...) }

func (z *ZapLogger) Sync() error { return z.sugar.Sync() }

// levelCore filters entries by an adjustable level before the wrapped core.
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c *levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
