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

import (
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrMalformedFilterSelection = errors.New("malformed filter selection")
	ErrUnknownAggregationName   = errors.New("unknown aggregation name")
)

// maxSelectionDepth bounds how far a chain of child selections is followed
const maxSelectionDepth = 64

// FilterSelection is a selected aggregation bucket in its wire form, either
// [aggregationName, value] or [aggregationName, value, child] where child is
// itself a FilterSelection.
type FilterSelection []interface{}

func NewFilterSelection(aggregationName, value string) FilterSelection {
	return FilterSelection{aggregationName, value}
}

// NewNestedFilterSelection refines a selection with exactly one child selection.
func NewNestedFilterSelection(aggregationName, value string, child FilterSelection) FilterSelection {
	return FilterSelection{aggregationName, value, child}
}

// FieldResolver maps an aggregation name onto the document field it buckets
type FieldResolver interface {
	FieldFor(aggregationName string) (string, bool)
}

// FlattenedFilters holds the selected values per aggregation name, keeping
// aggregation names in the order they were first seen.
type FlattenedFilters struct {
	values *orderedmap.OrderedMap[string, []string]
}

func newFlattenedFilters() *FlattenedFilters {
	return &FlattenedFilters{
		values: orderedmap.New[string, []string](),
	}
}

func (f *FlattenedFilters) Len() int {
	return f.values.Len()
}

func (f *FlattenedFilters) Names() []string {
	names := make([]string, 0, f.values.Len())
	for pair := f.values.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

func (f *FlattenedFilters) Values(aggregationName string) []string {
	values, _ := f.values.Get(aggregationName)

	return values
}

func (f *FlattenedFilters) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.values)
}

func (f *FlattenedFilters) add(aggregationName, value string) {
	values, _ := f.values.Get(aggregationName)
	f.values.Set(aggregationName, append(values, value))
}

// Flatten walks every selection chain depth-first, in input order, and collects
// each node's value under its aggregation name. Names shared between chains
// accumulate into the same list.
func Flatten(filters []FilterSelection) (*FlattenedFilters, error) {
	flattened := newFlattenedFilters()

	for i, selection := range filters {
		if err := flattened.walk(selection, 0); err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
	}

	return flattened, nil
}

func (f *FlattenedFilters) walk(selection FilterSelection, depth int) error {
	if depth >= maxSelectionDepth {
		return fmt.Errorf("%w: chain is nested deeper than %d levels", ErrMalformedFilterSelection, maxSelectionDepth)
	}

	if len(selection) != 2 && len(selection) != 3 {
		return fmt.Errorf("%w: expected 2 or 3 elements, got %d", ErrMalformedFilterSelection, len(selection))
	}

	aggregationName, err := assertString(selection[0])
	if err != nil {
		return fmt.Errorf("%w: aggregation name: %s", ErrMalformedFilterSelection, err)
	}

	value, err := assertString(selection[1])
	if err != nil {
		return fmt.Errorf("%w: value of %s: %s", ErrMalformedFilterSelection, aggregationName, err)
	}

	f.add(aggregationName, value)

	if len(selection) == 2 {
		return nil
	}

	child, ok := asFilterSelection(selection[2])
	if !ok {
		return fmt.Errorf("%w: child of %s must be a selection but was %T", ErrMalformedFilterSelection, aggregationName, selection[2])
	}

	return f.walk(child, depth+1)
}

// BuildPostFilter turns flattened selections into a conjunction of terms clauses,
// one per aggregation name, against the fields the resolver maps them to.
func BuildPostFilter(flattened *FlattenedFilters, resolver FieldResolver) (*Query, error) {
	must := Must{}

	for pair := flattened.values.Oldest(); pair != nil; pair = pair.Next() {
		field, ok := resolver.FieldFor(pair.Key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAggregationName, pair.Key)
		}

		must = append(must, &Query{
			Terms: &Terms{
				field: pair.Value,
			},
		})
	}

	return &Query{
		Bool: &Bool{
			Must: &must,
		},
	}, nil
}

func asFilterSelection(value interface{}) (FilterSelection, bool) {
	switch v := value.(type) {
	case FilterSelection:
		return v, true
	case []interface{}:
		return v, true
	default:
		return nil, false
	}
}

func assertString(value interface{}) (string, error) {
	stringValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected %[1]v to have type string but was %[1]T", value)
	}

	return stringValue, nil
}
