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
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" DEBUG "))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("bogus"))
}

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	ConfigureConsoleOutput(&buf)
	ConfigureConsoleLogFormat("json")
	t.Cleanup(func() { ConfigureConsoleLogFormat("text") })

	l := NewLogger("JSONTEST")
	l.SetOutput(&buf)
	l.WithField("page", 2).Info("resolved")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "resolved", entry["message"])
	assert.Equal(t, "JSONTEST", entry["logger"])
	fields, ok := entry["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, fields["page"])
}

func TestSetLoggerLevel(t *testing.T) {
	l := NewLogger("LEVELTEST")
	assert.True(t, SetLoggerLevel("LEVELTEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("MISSING", "debug"))
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&Log4jColorFormatter{LoggerName: "TEXT", NameWidth: 10})
	l.WithFields(logrus.Fields{"b": 2, "a": 1}).Warn("slow")

	out := buf.String()
	assert.Contains(t, out, "slow")
	assert.Contains(t, out, "TEXT")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("a=1")), bytes.Index(buf.Bytes(), []byte("b=2")))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("ROSTER_TEST_BOOL", "true")
	t.Setenv("ROSTER_TEST_DURATION", "1500ms")
	t.Setenv("ROSTER_TEST_BAD", "x")

	assert.True(t, EnvDefaultBool("ROSTER_TEST_BOOL", false))
	assert.False(t, EnvDefaultBool("ROSTER_TEST_BAD", false))
	assert.Equal(t, 1500*time.Millisecond, EnvDefaultDuration("ROSTER_TEST_DURATION", 0))
	assert.Equal(t, time.Second, EnvDefaultDuration("ROSTER_TEST_BAD", time.Second))
	assert.Equal(t, "fallback", EnvDefaultString("ROSTER_TEST_UNSET", "fallback"))
	assert.Equal(t, 7, EnvDefaultInt("ROSTER_TEST_BAD", 7))
}
