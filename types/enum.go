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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// CountStrategy selects how a paginated query obtains its total row count.
type CountStrategy int

const (
	// AlwaysCount issues a count query for every page.
	AlwaysCount CountStrategy = iota
	// CountAvoidance derives the total from the window when the window
	// proves there are no further rows, and counts only otherwise.
	CountAvoidance
)

var _ BaseEnum = CountStrategy(0)

var countStrategies = []struct {
	name string
	desc string
}{
	AlwaysCount:    {"always_count", "separate count query for every page"},
	CountAvoidance: {"count_avoidance", "count query only when the window cannot prove the total"},
}

func (s CountStrategy) IsValid() bool {
	return s >= AlwaysCount && int(s) < len(countStrategies)
}

func (s CountStrategy) Number() int {
	if !s.IsValid() {
		return IllegalValue
	}
	return int(s)
}

func (s CountStrategy) Name() string {
	if !s.IsValid() {
		return IllegalName
	}
	return countStrategies[s].name
}

func (s CountStrategy) Desc() string {
	if !s.IsValid() {
		return IllegalDesc
	}
	return countStrategies[s].desc
}

func (s CountStrategy) String() string { return s.Name() }

// ParseCountStrategy maps a strategy name to its value. The empty string
// selects CountAvoidance.
func ParseCountStrategy(name string) (CountStrategy, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CountAvoidance, true
	}
	for i, s := range countStrategies {
		if s.name == n {
			return CountStrategy(i), true
		}
	}
	return CountStrategy(IllegalValue), false
}
