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

package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/hashicorp/go-multierror"
	"github.com/rode/searchkit-elasticsearch/go/config"
	"gopkg.in/yaml.v3"
)

//go:embed default.json
var defaultCatalog []byte

var ioutilReadFile = ioutil.ReadFile

// FieldMap maps an aggregation name onto the document field used to filter on its buckets
type FieldMap map[string]string

func (m FieldMap) FieldFor(aggregationName string) (string, bool) {
	field, ok := m[aggregationName]

	return field, ok
}

// Aggregations are Elasticsearch aggregation definitions keyed by their top-level name
type Aggregations map[string]interface{}

// Copy returns a shallow copy; the definitions themselves are shared and must not be modified.
func (a Aggregations) Copy() map[string]interface{} {
	aggs := make(map[string]interface{}, len(a))
	for name, definition := range a {
		aggs[name] = definition
	}

	return aggs
}

// Catalog is the static set of aggregations requested on every search, along with
// the fields that filters on those aggregations apply to.
type Catalog struct {
	Fields       FieldMap     `json:"fields" yaml:"fields"`
	Aggregations Aggregations `json:"aggregations" yaml:"aggregations"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return decode(defaultCatalog, ".json")
}

// Load reads a catalog from a .json, .yaml or .yml file.
func Load(path string) (*Catalog, error) {
	data, err := ioutilReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog %s: %s", path, err)
	}

	c, err := decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %s: %w", path, err)
	}

	return c, nil
}

// FromConfig picks the configured catalog, falling back to the embedded one, and applies
// the configured overrides.
func FromConfig(c config.CatalogConfig) (*Catalog, error) {
	var (
		catalog *Catalog
		err     error
	)

	if c.Path == "" {
		catalog, err = Default()
	} else {
		catalog, err = Load(c.Path)
	}
	if err != nil {
		return nil, err
	}

	if c.Overrides == "" {
		return catalog, nil
	}

	patch, err := ioutilReadFile(c.Overrides)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog overrides %s: %s", c.Overrides, err)
	}

	return catalog.ApplyOverrides(patch)
}

// ApplyOverrides applies a JSON merge patch (RFC 7386) and returns the patched catalog.
// Setting an aggregation or field to null removes it.
func (c *Catalog) ApplyOverrides(patch []byte) (*Catalog, error) {
	if len(patch) == 0 {
		return c, nil
	}

	original, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error encoding catalog: %s", err)
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, fmt.Errorf("error applying catalog overrides: %s", err)
	}

	return decode(merged, ".json")
}

func (c *Catalog) Validate() error {
	var result error

	if len(c.Aggregations) == 0 {
		result = multierror.Append(result, errors.New("catalog defines no aggregations"))
	}

	for _, name := range sortedKeys(c.Fields) {
		if name == "" {
			result = multierror.Append(result, errors.New("field mapping with an empty aggregation name"))
		}
		if c.Fields[name] == "" {
			result = multierror.Append(result, fmt.Errorf("aggregation %s maps to an empty field", name))
		}
	}

	for _, name := range sortedKeys(c.Aggregations) {
		if name == "" {
			result = multierror.Append(result, errors.New("aggregation with an empty name"))
		}

		definition, ok := c.Aggregations[name].(map[string]interface{})
		if !ok {
			result = multierror.Append(result, fmt.Errorf("aggregation %s must be an object but was %T", name, c.Aggregations[name]))
			continue
		}
		if len(definition) == 0 {
			result = multierror.Append(result, fmt.Errorf("aggregation %s is empty", name))
		}
	}

	return result
}

func decode(data []byte, ext string) (*Catalog, error) {
	var c Catalog

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("error decoding catalog json: %s", err)
		}
	case ".yaml", ".yml":
		var fromYaml Catalog
		if err := yaml.Unmarshal(data, &fromYaml); err != nil {
			return nil, fmt.Errorf("error decoding catalog yaml: %s", err)
		}

		// definitions are sent to Elasticsearch as JSON, so anything yaml can express
		// that JSON cannot has to fail here rather than when a search is encoded
		normalized, err := json.Marshal(&fromYaml)
		if err != nil {
			return nil, fmt.Errorf("catalog yaml cannot be represented as json: %s", err)
		}
		if err := json.Unmarshal(normalized, &c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
