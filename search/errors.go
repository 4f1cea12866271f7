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

import (
	"errors"
	"fmt"

	"github.com/tomoncle/roster/database"
)

var (
	// ErrInvalidPageRequest matches a negative page or a non-positive size.
	ErrInvalidPageRequest = errors.New("invalid page request")
	// ErrExecutionFailed matches any failure reported by the storage engine.
	ErrExecutionFailed = errors.New("query execution failed")
)

type PageRequestError struct {
	Page int
	Size int
}

func (e *PageRequestError) Error() string {
	return fmt.Sprintf("invalid page request: page=%d size=%d, page must be >= 0 and size > 0", e.Page, e.Size)
}

func (e *PageRequestError) Is(target error) bool {
	return target == ErrInvalidPageRequest
}

// ExecutionError wraps an engine error unchanged. Kind is its classification.
type ExecutionError struct {
	Op   string
	Kind database.SQLError
	Err  error
}

func newExecutionError(op string, err error) *ExecutionError {
	_, kind := database.IsSqlError(err)
	return &ExecutionError{Op: op, Kind: kind, Err: err}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s query failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
