package esutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rode/searchkit-elasticsearch/go/v1beta1/search/filtering"
)

var _ = Describe("elasticsearch client", func() {
	var (
		client    Client
		transport *MockEsTransport
		ctx       context.Context
		timeout   time.Duration
	)

	BeforeEach(func() {
		ctx = context.Background()
		timeout = 0

		transport = &MockEsTransport{}
	})

	JustBeforeEach(func() {
		mockEsClient := &elasticsearch.Client{Transport: transport, API: esapi.New(transport)}
		client = NewClient(logger, mockEsClient, timeout)
	})

	Context("Search", func() {
		var (
			actualResponse *EsSearchResponse
			actualErr      error

			expectedIndex      string
			expectedSearch     *EsSearch
			expectedDocumentId string
			expectedSource     string
		)

		BeforeEach(func() {
			expectedIndex = fake.LetterN(10)
			expectedDocumentId = fake.UUID()
			expectedSource = fmt.Sprintf(`{"title":"%s"}`, fake.LetterN(12))
			from := 10
			expectedSearch = &EsSearch{
				Query: &filtering.Query{
					QueryString: &filtering.QueryString{Query: fake.Word()},
				},
				Size: 10,
				From: &from,
				Aggs: map[string]interface{}{
					"tags_agg": map[string]interface{}{"terms": map[string]interface{}{"field": "tags"}},
				},
			}

			transport.PreparedHttpResponses = []*http.Response{
				{
					StatusCode: http.StatusOK,
					Body: createEsSearchResponse(expectedDocumentId, expectedSource,
						`{"tags_agg":{"buckets":[{"key":"a","doc_count":1}]}}`),
				},
			}
		})

		JustBeforeEach(func() {
			actualResponse, actualErr = client.Search(ctx, &SearchRequest{
				Index:  expectedIndex,
				Search: expectedSearch,
			})
		})

		It("should search the index", func() {
			Expect(transport.ReceivedHttpRequests).To(HaveLen(1))
			Expect(transport.ReceivedHttpRequests[0].Method).To(Equal(http.MethodPost))
			Expect(transport.ReceivedHttpRequests[0].URL.Path).To(Equal(fmt.Sprintf("/%s/_search", expectedIndex)))
		})

		It("should send the serialized query document as the body", func() {
			body, err := ioutil.ReadAll(transport.ReceivedHttpRequests[0].Body)
			Expect(err).ToNot(HaveOccurred())

			expectedBody, err := json.Marshal(expectedSearch)
			Expect(err).ToNot(HaveOccurred())
			Expect(body).To(MatchJSON(expectedBody))
		})

		It("should return the decoded hits and raw aggregations", func() {
			Expect(actualErr).ToNot(HaveOccurred())
			Expect(actualResponse.Hits.Total.Value).To(Equal(1))
			Expect(actualResponse.Hits.Hits).To(HaveLen(1))
			Expect(actualResponse.Hits.Hits[0].ID).To(Equal(expectedDocumentId))
			Expect([]byte(actualResponse.Hits.Hits[0].Source)).To(MatchJSON(expectedSource))
			Expect([]byte(actualResponse.Aggregations["tags_agg"])).To(MatchJSON(`{"buckets":[{"key":"a","doc_count":1}]}`))
		})

		When("no index is given", func() {
			BeforeEach(func() {
				expectedIndex = ""
			})

			It("should search every index", func() {
				Expect(transport.ReceivedHttpRequests[0].URL.Path).To(Equal("/_search"))
			})
		})

		When("a timeout is configured", func() {
			BeforeEach(func() {
				timeout = time.Minute
				transport.Actions = []TransportAction{
					func(req *http.Request) (*http.Response, error) {
						deadline, ok := req.Context().Deadline()
						Expect(ok).To(BeTrue())
						Expect(deadline).To(BeTemporally("~", time.Now().Add(timeout), 5*time.Second))

						return &http.Response{
							StatusCode: http.StatusOK,
							Body:       createEsSearchResponse(expectedDocumentId, expectedSource, `{}`),
						}, nil
					},
				}
			})

			It("should bound the request with a deadline", func() {
				Expect(actualErr).ToNot(HaveOccurred())
			})
		})

		When("the request fails", func() {
			BeforeEach(func() {
				transport.Actions = []TransportAction{
					func(req *http.Request) (*http.Response, error) {
						return nil, errors.New(fake.Word())
					},
				}
			})

			It("should return an error", func() {
				Expect(actualResponse).To(BeNil())
				Expect(actualErr).To(HaveOccurred())
			})
		})

		When("elasticsearch returns an error response", func() {
			BeforeEach(func() {
				transport.PreparedHttpResponses[0] = &http.Response{
					StatusCode: http.StatusBadRequest,
					Body: structToJsonBody(&ESErrorResponse{
						Error: ESError{
							Type:   "search_phase_execution_exception",
							Reason: "all shards failed",
						},
					}),
				}
			})

			It("should return an error describing the failure", func() {
				Expect(actualResponse).To(BeNil())
				Expect(actualErr).To(MatchError(ContainSubstring("search_phase_execution_exception: all shards failed")))
			})
		})

		When("elasticsearch returns an error without a body", func() {
			BeforeEach(func() {
				transport.PreparedHttpResponses[0] = &http.Response{
					StatusCode: http.StatusInternalServerError,
					Body:       ioutil.NopCloser(strings.NewReader("")),
				}
			})

			It("should return an error with the status", func() {
				Expect(actualErr).To(MatchError(ContainSubstring("status: 500")))
			})
		})

		When("the response cannot be decoded", func() {
			BeforeEach(func() {
				transport.PreparedHttpResponses[0] = &http.Response{
					StatusCode: http.StatusOK,
					Body:       ioutil.NopCloser(strings.NewReader(fake.LetterN(10))),
				}
			})

			It("should return an error", func() {
				Expect(actualResponse).To(BeNil())
				Expect(actualErr).To(MatchError(ContainSubstring("error decoding elasticsearch response")))
			})
		})
	})
})

var _ = Describe("EncodeRequest", func() {
	It("should always include the aggs key", func() {
		_, body := EncodeRequest(&EsSearch{Aggs: map[string]interface{}{}})

		Expect(body).To(MatchJSON(`{"aggs":{}}`))
	})

	It("should keep a zero offset when one is set", func() {
		from := 0
		_, body := EncodeRequest(&EsSearch{From: &from, Aggs: map[string]interface{}{}})

		Expect(body).To(MatchJSON(`{"from":0,"aggs":{}}`))
	})
})

func createEsSearchResponse(id, source, aggregations string) io.ReadCloser {
	body := fmt.Sprintf(`{
		"took": 3,
		"timed_out": false,
		"hits": {
			"total": {"value": 1, "relation": "eq"},
			"hits": [{"_id": %q, "_score": 1.0, "_source": %s}]
		},
		"aggregations": %s
	}`, id, source, aggregations)

	return ioutil.NopCloser(strings.NewReader(body))
}

func structToJsonBody(i interface{}) io.ReadCloser {
	b, err := json.Marshal(i)
	Expect(err).ToNot(HaveOccurred())

	return ioutil.NopCloser(strings.NewReader(string(b)))
}
