package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rode/searchkit-elasticsearch/go/config"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/catalog"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/esutil"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/metrics"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "", "path to a config file")
	execute := pflag.Bool("execute", false, "run the query against Elasticsearch and print the response")
	pflag.Parse()

	c, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	_, debugEnabled := os.LookupEnv("DEBUG")
	logger, err := createLogger(debugEnabled || c.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	aggregationCatalog, err := catalog.FromConfig(c.Catalog)
	if err != nil {
		logger.Fatal("failed to load aggregation catalog", zap.NamedError("error", err))
	}

	var state search.SearchState
	if err := json.NewDecoder(os.Stdin).Decode(&state); err != nil {
		logger.Fatal("failed to decode search state", zap.NamedError("error", err))
	}

	serializer := search.NewSerializer(logger.Named("Serializer"), aggregationCatalog)
	body, err := serializer.Serialize(&state)
	if err != nil {
		logger.Fatal("failed to serialize search state", zap.NamedError("error", err))
	}
	printJson(logger, body)

	if !*execute {
		return
	}

	esClient, err := createESClient(logger, c.Elasticsearch)
	if err != nil {
		logger.Fatal("failed to connect to Elasticsearch", zap.NamedError("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	searcher := search.NewSearcher(
		logger.Named("Searcher"),
		serializer,
		esutil.NewClient(logger.Named("EsClient"), esClient, c.Elasticsearch.Timeout),
		c.Elasticsearch.Index,
		metrics.New(prometheus.DefaultRegisterer),
	)

	res, err := searcher.Search(ctx, &state)
	if err != nil {
		logger.Fatal("search failed", zap.NamedError("error", err))
	}
	printJson(logger, res)
}

func createESClient(logger *zap.Logger, c config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{
			c.URI,
		},
		Username: c.Username,
		Password: c.Password,
	})
	if err != nil {
		return nil, err
	}

	res, err := esClient.Info()
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected response from elasticsearch: %s", res.String())
	}

	var r map[string]interface{}
	if err := esutil.DecodeResponse(res.Body, &r); err != nil {
		return nil, err
	}

	if version, ok := r["version"].(map[string]interface{}); ok {
		logger.Debug("Successful Elasticsearch connection", zap.Any("ES Server version", version["number"]))
	}

	return esClient, nil
}

func createLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func printJson(logger *zap.Logger, v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logger.Fatal("failed to write output", zap.NamedError("error", err))
	}
}
