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

package util

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/catalog"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/esutil"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/metrics"
	"go.uber.org/zap"
)

var fake = gofakeit.New(0)

const indexMapping = `{
	"mappings": {
		"properties": {
			"title": {"type": "keyword"},
			"tags": {"type": "keyword"},
			"informationtype": {
				"type": "nested",
				"properties": {
					"token": {"type": "keyword"},
					"title": {"type": "keyword"}
				}
			}
		}
	}
}`

type Setup struct {
	Ctx      context.Context
	EsClient *elasticsearch.Client
	Index    string
	Searcher search.Searcher
}

type Document struct {
	Title           string              `json:"title"`
	Tags            []string            `json:"tags"`
	InformationType []map[string]string `json:"informationtype,omitempty"`
}

func checkErrFatal(e error) {
	if e != nil {
		log.Fatalf("Failed to create test setup.\nError: %v", e)
	}
}

// NewSetup creates a fresh index on the Elasticsearch at ELASTICSEARCH_URI (default
// http://localhost:9200) and a searcher against it using the given catalog.
func NewSetup(c *catalog.Catalog) *Setup {
	ctx := context.Background()

	uri := os.Getenv("ELASTICSEARCH_URI")
	if uri == "" {
		uri = "http://localhost:9200"
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{uri},
	})
	checkErrFatal(err)

	index := fmt.Sprintf("searchkit-test-%s", strings.ToLower(fake.LetterN(10)))
	res, err := esClient.Indices.Create(index, esClient.Indices.Create.WithBody(strings.NewReader(indexMapping)))
	checkErrFatal(err)
	if res.IsError() {
		checkErrFatal(fmt.Errorf("error creating index %s: %s", index, res.String()))
	}

	logger := zap.NewNop()
	searcher := search.NewSearcher(
		logger,
		search.NewSerializer(logger, c),
		esutil.NewClient(logger, esClient, 0),
		index,
		metrics.New(prometheus.NewRegistry()),
	)

	return &Setup{
		ctx,
		esClient,
		index,
		searcher,
	}
}

func (s *Setup) IndexDocuments(documents ...*Document) {
	for _, document := range documents {
		body, _ := esutil.EncodeRequest(document)
		res, err := s.EsClient.Index(
			s.Index,
			body,
			s.EsClient.Index.WithContext(s.Ctx),
			s.EsClient.Index.WithRefresh("true"),
		)
		checkErrFatal(err)
		if res.IsError() {
			checkErrFatal(fmt.Errorf("error indexing document: %s", res.String()))
		}
	}
}

func (s *Setup) Teardown() {
	res, err := s.EsClient.Indices.Delete([]string{s.Index}, s.EsClient.Indices.Delete.WithContext(s.Ctx))
	checkErrFatal(err)
	if res.IsError() {
		log.Printf("error deleting index %s: %s", s.Index, res.String())
	}
}
