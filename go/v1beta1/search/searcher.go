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
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/esutil"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/metrics"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, state *SearchState) (*esutil.EsSearchResponse, error)
}

type searcher struct {
	logger     *zap.Logger
	serializer Serializer
	client     esutil.Client
	index      string
	metrics    *metrics.Metrics
}

func NewSearcher(logger *zap.Logger, serializer Serializer, client esutil.Client, index string, m *metrics.Metrics) Searcher {
	return &searcher{
		logger:     logger,
		serializer: serializer,
		client:     client,
		index:      index,
		metrics:    m,
	}
}

// Search serializes the state and runs it against the configured index.
func (s *searcher) Search(ctx context.Context, state *SearchState) (*esutil.EsSearchResponse, error) {
	log := s.logger.Named("Search").With(zap.String("searchId", uuid.New().String()), zap.String("index", s.index))

	body, err := s.serializer.Serialize(state)
	if err != nil {
		s.metrics.ObserveSerialization(serializationResult(err))
		log.Warn("rejected search state", zap.Error(err))

		return nil, err
	}
	s.metrics.ObserveSerialization(metrics.ResultOK)

	start := time.Now()
	res, err := s.client.Search(ctx, &esutil.SearchRequest{
		Index:  s.index,
		Search: body,
	})
	s.metrics.ObserveSearch(start)
	if err != nil {
		log.Error("search failed", zap.Error(err))

		return nil, err
	}

	return res, nil
}

func serializationResult(err error) string {
	switch {
	case errors.Is(err, filtering.ErrMalformedFilterSelection):
		return metrics.ResultMalformedFilter
	case errors.Is(err, filtering.ErrUnknownAggregationName):
		return metrics.ResultUnknownAggregation
	default:
		return metrics.ResultError
	}
}
