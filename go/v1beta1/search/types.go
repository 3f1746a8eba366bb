// Copyright 2021 The Rode Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import "github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"

type SortOrder string

const (
	SortOrderAscending  = SortOrder("asc")
	SortOrderDescending = SortOrder("desc")
)

// SearchState is the application's view of the current search. An empty SortBy means
// results are not sorted; Page and Size values below one are treated as unset.
type SearchState struct {
	QueryString string                      `json:"queryString"`
	SortBy      string                      `json:"sortBy"`
	SortOrder   SortOrder                   `json:"sortOrder"`
	Page        int                         `json:"page"`
	Size        int                         `json:"size"`
	Filters     []filtering.FilterSelection `json:"filters"`
}
