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

package esutil

import (
	"encoding/json"

	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"
)

// Elasticsearch /_search query

type EsSearch struct {
	Query      *filtering.Query         `json:"query,omitempty"`
	Sort       []map[string]EsSortOrder `json:"sort,omitempty"`
	Size       int                      `json:"size,omitempty"`
	From       *int                     `json:"from,omitempty"`
	PostFilter *filtering.Query         `json:"post_filter,omitempty"`
	Aggs       map[string]interface{}   `json:"aggs"`
}

type EsSortOrder string

const (
	EsSortOrderAscending  = EsSortOrder("asc")
	EsSortOrderDescending = EsSortOrder("desc")
)

// Elasticsearch /_search response

type EsSearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         *EsSearchResponseHits      `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
}

type EsSearchResponseHits struct {
	Total *EsSearchResponseTotal `json:"total"`
	Hits  []*EsSearchResponseHit `json:"hits"`
}

type EsSearchResponseTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation,omitempty"`
}

type EsSearchResponseHit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []interface{}   `json:"sort,omitempty"`
}

// Elasticsearch error response

type ESErrorResponse struct {
	Error ESError `json:"error"`
}

type ESError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
