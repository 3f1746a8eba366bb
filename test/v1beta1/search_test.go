package v1beta1_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/catalog"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"
	"github.com/rode/searchkit-elasticsearch/test/util"
)

type termsAggregation struct {
	Buckets []struct {
		Key      string `json:"key"`
		DocCount int    `json:"doc_count"`
	} `json:"buckets"`
}

var _ = Describe("Search", func() {
	var s *util.Setup

	BeforeEach(func() {
		c, err := catalog.Default()
		Expect(err).ToNot(HaveOccurred())

		c, err = c.ApplyOverrides([]byte(`{
			"fields": {"tags_agg": "tags"},
			"aggregations": {"kompasscomponent_agg": null}
		}`))
		Expect(err).ToNot(HaveOccurred())

		s = util.NewSetup(c)
		s.IndexDocuments(
			&util.Document{Title: "alpha", Tags: []string{"red"}, InformationType: []map[string]string{{"token": "X", "title": "Ex"}}},
			&util.Document{Title: "bravo", Tags: []string{"red", "blue"}, InformationType: []map[string]string{{"token": "Y", "title": "Why"}}},
			&util.Document{Title: "charlie", Tags: []string{"blue"}},
		)
	})

	AfterEach(func() {
		s.Teardown()
	})

	It("should return every document and every aggregation", func() {
		res, err := s.Searcher.Search(s.Ctx, &search.SearchState{})

		Expect(err).ToNot(HaveOccurred())
		Expect(res.Hits.Total.Value).To(Equal(3))
		Expect(res.Aggregations).To(HaveKey("tags_agg"))
		Expect(res.Aggregations).To(HaveKey("informationtype_agg"))
		Expect(res.Aggregations).ToNot(HaveKey("kompasscomponent_agg"))
	})

	It("should filter hits without narrowing the aggregation counts", func() {
		res, err := s.Searcher.Search(s.Ctx, &search.SearchState{
			Filters: []filtering.FilterSelection{
				filtering.NewFilterSelection("tags_agg", "blue"),
			},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Hits.Total.Value).To(Equal(2))

		var tags termsAggregation
		Expect(json.Unmarshal(res.Aggregations["tags_agg"], &tags)).To(Succeed())

		counts := map[string]int{}
		for _, bucket := range tags.Buckets {
			counts[bucket.Key] = bucket.DocCount
		}
		Expect(counts).To(Equal(map[string]int{"red": 2, "blue": 2}))
	})

	It("should sort and paginate", func() {
		res, err := s.Searcher.Search(s.Ctx, &search.SearchState{
			SortBy:    "title",
			SortOrder: search.SortOrderDescending,
			Page:      2,
			Size:      2,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Hits.Hits).To(HaveLen(1))

		var document util.Document
		Expect(json.Unmarshal(res.Hits.Hits[0].Source, &document)).To(Succeed())
		Expect(document.Title).To(Equal("alpha"))
	})

	It("should match the free-text query", func() {
		res, err := s.Searcher.Search(s.Ctx, &search.SearchState{
			QueryString: "title:charlie",
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(res.Hits.Total.Value).To(Equal(1))
	})

	It("should reject filters on unmapped aggregations", func() {
		_, err := s.Searcher.Search(s.Ctx, &search.SearchState{
			Filters: []filtering.FilterSelection{
				filtering.NewFilterSelection(fake.LetterN(10), fake.Word()),
			},
		})

		Expect(err).To(MatchError(filtering.ErrUnknownAggregationName))
	})
})
