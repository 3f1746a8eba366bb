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

import (
	"errors"

	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/catalog"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/esutil"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"
	"go.uber.org/zap"
)

type Serializer interface {
	Serialize(state *SearchState) (*esutil.EsSearch, error)
}

type requestSerializer struct {
	logger       *zap.Logger
	fields       catalog.FieldMap
	aggregations catalog.Aggregations
}

// NewSerializer binds a serializer to a catalog. The catalog must not be modified afterwards.
func NewSerializer(logger *zap.Logger, c *catalog.Catalog) Serializer {
	return &requestSerializer{
		logger:       logger,
		fields:       c.Fields,
		aggregations: c.Aggregations,
	}
}

func (s *requestSerializer) Serialize(state *SearchState) (*esutil.EsSearch, error) {
	log := s.logger.Named("Serialize")

	body, err := Assemble(state, s.fields, s.aggregations)
	if err != nil {
		log.Debug("unable to serialize search state", zap.Error(err))
		return nil, err
	}

	log.Debug("serialized search state",
		zap.Bool("query", body.Query != nil),
		zap.Int("filters", len(state.Filters)),
		zap.Int("aggregations", len(body.Aggs)),
	)

	return body, nil
}

// Assemble builds the Elasticsearch search body for a search state. Filters become a
// post_filter so that aggregation counts are computed before filtering, and the full set
// of aggregations is always requested.
func Assemble(state *SearchState, fields filtering.FieldResolver, aggregations catalog.Aggregations) (*esutil.EsSearch, error) {
	if state == nil {
		return nil, errors.New("search state is required")
	}

	body := &esutil.EsSearch{}

	if state.QueryString != "" {
		body.Query = &filtering.Query{
			QueryString: &filtering.QueryString{
				Query: state.QueryString,
			},
		}
	}

	if state.SortBy != "" {
		direction := esutil.EsSortOrderAscending
		if state.SortOrder == SortOrderDescending {
			direction = esutil.EsSortOrderDescending
		}

		body.Sort = []map[string]esutil.EsSortOrder{}
		body.Sort = append(body.Sort, map[string]esutil.EsSortOrder{
			state.SortBy: direction,
		})
	}

	if state.Size > 0 {
		body.Size = state.Size
	}

	if state.Page > 0 {
		// without a size every page starts at the first hit
		from := (state.Page - 1) * body.Size
		body.From = &from
	}

	if len(state.Filters) > 0 {
		flattened, err := filtering.Flatten(state.Filters)
		if err != nil {
			return nil, err
		}

		postFilter, err := filtering.BuildPostFilter(flattened, fields)
		if err != nil {
			return nil, err
		}

		body.PostFilter = postFilter
	}

	body.Aggs = aggregations.Copy()

	return body, nil
}
