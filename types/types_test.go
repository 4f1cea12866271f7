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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest(t *testing.T) {
	req := NewPageRequest(3, 20)
	assert.Equal(t, 3, req.GetPage())
	assert.Equal(t, 20, req.GetSize())
	assert.Equal(t, 60, req.GetOffset())
	assert.True(t, req.Valid())

	assert.False(t, NewPageRequest(-1, 20).Valid())
	assert.False(t, NewPageRequest(0, 0).Valid())
	assert.True(t, NewPageRequest(0, 1).Valid())

	assert.False(t, NewPageRequest(math.MaxInt/2+1, 2).Valid())
	assert.True(t, NewPageRequest(math.MaxInt/2, 2).Valid())
	assert.True(t, NewPageRequest(1, math.MaxInt).Valid())
	assert.False(t, NewPageRequest(2, math.MaxInt).Valid())

	var nilReq *PageRequest
	assert.False(t, nilReq.Valid())
}

func TestPagination(t *testing.T) {
	p := NewDefaultPagination[int](0, 2)
	assert.NotNil(t, p.Items)
	assert.Zero(t, p.TotalPages())
	assert.True(t, p.IsLast())

	p.Total = 5
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())

	p.Page = 2
	assert.False(t, p.HasNext())
	assert.True(t, p.IsLast())

	assert.Zero(t, NewDefaultPagination[int](0, 0).TotalPages())
}

func TestCountStrategy(t *testing.T) {
	assert.Equal(t, "always_count", AlwaysCount.Name())
	assert.Equal(t, "count_avoidance", CountAvoidance.String())
	assert.Equal(t, 1, CountAvoidance.Number())
	assert.NotEmpty(t, AlwaysCount.Desc())

	invalid := CountStrategy(9)
	assert.False(t, invalid.IsValid())
	assert.Equal(t, IllegalValue, invalid.Number())
	assert.Equal(t, IllegalName, invalid.Name())
	assert.Equal(t, IllegalDesc, invalid.Desc())

	for name, want := range map[string]CountStrategy{
		"":                 CountAvoidance,
		"always_count":     AlwaysCount,
		" COUNT_AVOIDANCE": CountAvoidance,
	} {
		got, ok := ParseCountStrategy(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := ParseCountStrategy("never")
	assert.False(t, ok)
}

func TestQueryFilter(t *testing.T) {
	f := NewQueryFilter("m.age >= ?", 10)
	assert.Equal(t, "m.age >= ?", f.Schema)
	assert.Equal(t, []interface{}{10}, f.Args)
}
