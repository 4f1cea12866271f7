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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes the query hooks, e.g. while migrations run.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

func colorWrap(s, code string) string { return code + s + ansiReset }

// QueryHook prints every query colored by operation. Failed queries are
// always printed; successful ones only when verbose. The environment
// variable named envName overrides the settings: "0" disables, "1" enables,
// "2" enables verbose output.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(w io.Writer, envName string, verbose bool) *QueryHook {
	if w == nil {
		w = os.Stdout
	}
	return &QueryHook{envName: envName, enabled: true, verbose: verbose, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if env, ok := os.LookupEnv(h.envName); ok && h.envName != "" {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		colorWrap(fmt.Sprintf("%8s", "[BUN]"), ansiCyan),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", colorByOperation(event),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, "\t", color.New(color.BgRed).Sprintf(" %s ", typ+": "+event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func colorByOperation(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return colorWrap(event.Query, ansiGreen)
	case "INSERT":
		return colorWrap(event.Query, ansiBlue)
	case "UPDATE":
		return colorWrap(event.Query, ansiYellow)
	case "DELETE":
		return colorWrap(event.Query, ansiMagenta)
	default:
		return colorWrap(event.Query, ansiRed)
	}
}

// SlowQueryHook warns through the logger when a successful query takes
// longer than slowTime.
type SlowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err != nil || h.logger == nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}
