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
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"go.uber.org/zap"
)

type SearchRequest struct {
	Index  string
	Search *EsSearch
}

//go:generate mockgen -destination=../mocks/mock_client.go -package=mocks github.com/rode/searchkit-elasticsearch/go/v1beta1/search/esutil Client
type Client interface {
	Search(ctx context.Context, request *SearchRequest) (*EsSearchResponse, error)
}

type client struct {
	logger   *zap.Logger
	esClient *elasticsearch.Client
	timeout  time.Duration
}

// NewClient wraps an Elasticsearch client. A positive timeout bounds every request.
func NewClient(logger *zap.Logger, esClient *elasticsearch.Client, timeout time.Duration) Client {
	return &client{
		logger,
		esClient,
		timeout,
	}
}

func (c *client) Search(ctx context.Context, request *SearchRequest) (*EsSearchResponse, error) {
	log := c.logger.Named("Search").With(zap.String("index", request.Index))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	encodedBody, requestJson := EncodeRequest(request.Search)
	log = log.With(zap.String("request", requestJson))
	log.Debug("performing search")

	searchOptions := []func(*esapi.SearchRequest){
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithBody(encodedBody),
	}
	if request.Index != "" {
		searchOptions = append(searchOptions, c.esClient.Search.WithIndex(request.Index))
	}

	res, err := c.esClient.Search(searchOptions...)
	if err != nil {
		return nil, fmt.Errorf("error sending search request to elasticsearch: %s", err)
	}

	if res.IsError() {
		errResponse := ESErrorResponse{}
		if err := DecodeResponse(res.Body, &errResponse); err != nil || errResponse.Error.Type == "" {
			return nil, fmt.Errorf("unexpected response from elasticsearch, status: %d", res.StatusCode)
		}

		log.Error("search failed", zap.Int("status", res.StatusCode), zap.String("type", errResponse.Error.Type))

		return nil, fmt.Errorf("unexpected response from elasticsearch, status: %d, %s: %s", res.StatusCode, errResponse.Error.Type, errResponse.Error.Reason)
	}

	var searchResults EsSearchResponse
	if err := DecodeResponse(res.Body, &searchResults); err != nil {
		return nil, err
	}

	if searchResults.Hits != nil && searchResults.Hits.Total != nil {
		log.Debug("search complete", zap.Int("took", searchResults.Took), zap.Int("total", searchResults.Hits.Total.Value))
	}

	return &searchResults, nil
}
