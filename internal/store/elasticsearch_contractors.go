package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"renovation-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultSearchSize = 1000

// ElasticsearchContractorStore searches a contractor index whose documents use
// the same JSON shape as models.Contractor.
type ElasticsearchContractorStore struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElasticsearchContractorStore(client *elasticsearch.Client, index string) *ElasticsearchContractorStore {
	return &ElasticsearchContractorStore{client: client, index: index, size: defaultSearchSize}
}

// contractorDocument mirrors models.Contractor with raw trades, so an unknown
// trade in one document is dropped instead of failing the whole search.
type contractorDocument struct {
	ID            string                  `json:"id"`
	BusinessName  string                  `json:"businessName"`
	Email         string                  `json:"email"`
	Phone         string                  `json:"phone"`
	Address       models.Address          `json:"address"`
	Trades        []string                `json:"trades"`
	Skills        []string                `json:"skills"`
	ServiceRadius float64                 `json:"serviceRadius"`
	Rating        models.Rating           `json:"rating"`
	Status        models.ContractorStatus `json:"status"`
}

func (d contractorDocument) toContractor(docID string) models.Contractor {
	c := models.Contractor{
		ID:            d.ID,
		BusinessName:  d.BusinessName,
		Email:         d.Email,
		Phone:         d.Phone,
		Address:       d.Address,
		Trades:        parseTrades(d.Trades),
		Skills:        d.Skills,
		ServiceRadius: d.ServiceRadius,
		Rating:        d.Rating,
		Status:        d.Status,
	}
	if c.ID == "" {
		c.ID = docID
	}
	return c
}

type searchHit struct {
	ID     string             `json:"_id"`
	Source contractorDocument `json:"_source"`
	Sort   []interface{}      `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type getResponse struct {
	Found  bool               `json:"found"`
	Source contractorDocument `json:"_source"`
}

func buildContractorQuery(filter ContractorFilter, size int, searchAfter []interface{}) map[string]interface{} {
	filterClauses := []interface{}{}
	if filter.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": string(filter.Status)},
		})
	}
	if len(filter.Trades) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"trades": tradeStrings(filter.Trades)},
		})
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": "asc"},
		},
	}
	if len(searchAfter) > 0 {
		query["search_after"] = searchAfter
	}
	return query
}

// ListContractors pages through every matching document with search_after on id.
func (s *ElasticsearchContractorStore) ListContractors(ctx context.Context, filter ContractorFilter) ([]models.Contractor, error) {
	var (
		contractors []models.Contractor
		after       []interface{}
	)
	for {
		page, err := s.searchPage(ctx, filter, after)
		if err != nil {
			return nil, err
		}
		for _, hit := range page.Hits.Hits {
			contractors = append(contractors, hit.Source.toContractor(hit.ID))
		}

		n := len(page.Hits.Hits)
		if n < s.size {
			break
		}
		after = page.Hits.Hits[n-1].Sort
		if len(after) == 0 {
			return nil, fmt.Errorf("search contractors: page of %d hits without sort values", n)
		}
	}
	if contractors == nil {
		contractors = []models.Contractor{}
	}
	return contractors, nil
}

func (s *ElasticsearchContractorStore) searchPage(ctx context.Context, filter ContractorFilter, after []interface{}) (*searchResponse, error) {
	body, err := json.Marshal(buildContractorQuery(filter, s.size, after))
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search contractors: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search contractors: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode contractor search: %w", err)
	}
	return &r, nil
}

func (s *ElasticsearchContractorStore) GetContractor(ctx context.Context, id string) (*models.Contractor, error) {
	res, err := s.client.Get(s.index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get contractor %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrContractorNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get contractor %s: %s", id, res.String())
	}

	var r getResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode contractor %s: %w", id, err)
	}
	if !r.Found {
		return nil, fmt.Errorf("%w: %s", ErrContractorNotFound, id)
	}
	c := r.Source.toContractor(id)
	return &c, nil
}
