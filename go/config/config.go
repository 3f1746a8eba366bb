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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const envPrefix = "SEARCHKIT"

type Config struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	Debug         bool                `mapstructure:"debug"`
}

type ElasticsearchConfig struct {
	URI      string        `mapstructure:"uri"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Index    string        `mapstructure:"index"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CatalogConfig points at the aggregation catalog to serialize with.
// An empty Path selects the embedded default catalog.
type CatalogConfig struct {
	Path      string `mapstructure:"path"`
	Overrides string `mapstructure:"overrides"`
}

func (c ElasticsearchConfig) IsValid() error {
	var result error

	if c.URI == "" {
		result = multierror.Append(result, errors.New("elasticsearch uri is required"))
	} else if u, err := url.ParseRequestURI(c.URI); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid elasticsearch uri %q: %s", c.URI, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		result = multierror.Append(result, fmt.Errorf("elasticsearch uri must use http or https, got %q", u.Scheme))
	}

	if c.Index == "" {
		result = multierror.Append(result, errors.New("elasticsearch index is required"))
	}

	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("elasticsearch timeout must not be negative, got %s", c.Timeout))
	}

	if (c.Username == "") != (c.Password == "") {
		result = multierror.Append(result, errors.New("elasticsearch username and password must be set together"))
	}

	return result
}

func (c *Config) IsValid() error {
	return c.Elasticsearch.IsValid()
}

// Load reads the configuration from an optional file and SEARCHKIT_* environment variables,
// e.g. SEARCHKIT_ELASTICSEARCH_INDEX. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %s", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %s", err)
	}

	if err := c.IsValid(); err != nil {
		return nil, err
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("elasticsearch.uri", "http://localhost:9200")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index", "plone2020")
	v.SetDefault("elasticsearch.timeout", "5s")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.overrides", "")
	v.SetDefault("debug", false)
}
