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

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	defaultLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	consoleOutput    io.Writer = os.Stdout
)

// ConfigureConsoleLogFormat selects "json" or "text" output for loggers
// created afterwards.
func ConfigureConsoleLogFormat(format string) {
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
}

// ConfigureConsoleOutput redirects loggers created afterwards to w.
func ConfigureConsoleOutput(w io.Writer) {
	if w != nil {
		consoleOutput = w
	}
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// ConfigureLogLevel sets the level of every registered logger and of loggers
// created afterwards.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.Lock()
	defaultLevel = lvl
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
}

// SetLoggerLevel changes the level of the named logger. It reports false when
// no logger with that name was created.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns a named logrus logger writing to the console in the
// configured format. Loggers are registered by name so their level can be
// changed later.
func NewLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(consoleOutput)
	l.SetReportCaller(true)
	loggerRegistryMu.RLock()
	l.SetLevel(defaultLevel)
	loggerRegistryMu.RUnlock()
	if consoleLogFormat == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&Log4jColorFormatter{
			LoggerName:  name,
			ColorCaller: true,
			NameWidth:   10,
		})
	}
	RegisterLogger(name, l)
	return l
}

// Log4jColorFormatter renders entries as
// "time LEVEL pid - [main] name file:line : message".
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	ColorCaller     bool
	NameWidth       int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(tsFormat(f.TimestampFormat))
	lvl := colorLevel(padLeft(strings.ToUpper(entry.Level.String()), 7), entry.Level)
	pid := colorMagenta(fmt.Sprintf("%-6d", os.Getpid()))
	name := colorCyan(padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth))

	callerInfo := ""
	if entry.Caller != nil {
		callerInfo = " " + callerLine(entry.Caller.File, entry.Caller.Line)
		if f.ColorCaller {
			callerInfo = colorFaint(callerInfo)
		}
	}

	msg := entry.Message
	if len(entry.Data) > 0 {
		msg += " " + formatFields(entry.Data)
	}
	line := fmt.Sprintf("%s %s %s - %s %s%s %s %s\n",
		ts, lvl, pid, colorMagenta("[main]"), name, callerInfo, colorFaint(":"), msg)
	return []byte(line), nil
}

// JSONLogFormatter renders one JSON object per entry.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	type jsonLogRecord struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Logger  string                 `json:"logger"`
		Caller  string                 `json:"caller,omitempty"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}
	rec := jsonLogRecord{
		Time:    entry.Time.Format(tsFormat(f.TimestampFormat)),
		Level:   strings.ToLower(entry.Level.String()),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = callerLine(entry.Caller.File, entry.Caller.Line)
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rec.Fields[k] = v
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func tsFormat(f string) string {
	if f != "" {
		return f
	}
	return timestampFormat
}

func callerLine(file string, line int) string {
	dir := filepath.Base(filepath.Dir(file))
	return dir + "/" + filepath.Base(file) + ":" + strconv.Itoa(line)
}

func formatFields(data logrus.Fields) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, " ")
}

func padLeft(s string, width int) string { return fmt.Sprintf("%*s", width, s) }

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorMagenta(s string) string { return colorWrap(s, ansiMagenta) }

func colorCyan(s string) string { return colorWrap(s, ansiCyan) }

func colorFaint(s string) string { return colorWrap(s, ansiFaint) }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	default:
		return colorWrap(s, ansiMagenta)
	}
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return def
		}
		return i
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func EnvDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return def
		}
		return d
	}
	return def
}
