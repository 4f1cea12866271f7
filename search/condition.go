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

package search

// Condition is a sparse member search request. A nil field applies no
// filter; the zero Condition matches every member.
type Condition struct {
	Username *string `json:"username,omitempty" mapstructure:"username"`
	TeamName *string `json:"team_name,omitempty" mapstructure:"team_name"`
	AgeMin   *int    `json:"age_min,omitempty" mapstructure:"age_min"`
	AgeMax   *int    `json:"age_max,omitempty" mapstructure:"age_max"`
}

// Ptr returns a pointer to v, for filling Condition fields inline.
func Ptr[T any](v T) *T {
	return &v
}
