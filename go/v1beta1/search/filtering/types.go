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

package filtering

// Query holds a single Elasticsearch query clause; only one field is expected to be set
type Query struct {
	Bool        *Bool        `json:"bool,omitempty"`
	Terms       *Terms       `json:"terms,omitempty"`
	QueryString *QueryString `json:"query_string,omitempty"`
}

// Bool holds a compound query that carries any number of Must operations
type Bool struct {
	Must *Must `json:"must,omitempty"`
}

// Must holds clauses that each equate to an AND operation
type Must []interface{}

// Terms matches documents whose field equals any of the given values
type Terms map[string][]string

// QueryString is a free-text query handed to Elasticsearch as-is
type QueryString struct {
	Query string `json:"query"`
}
