// Package search keeps the Elasticsearch book index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/library-management/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// BookIndex indexes books by id in a single Elasticsearch index.
type BookIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewBookIndex(es *elasticsearch.Client, index string) *BookIndex {
	return &BookIndex{ES: es, IndexName: index}
}

type bookDoc struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedDate string `json:"published_date,omitempty"`
	IsAvailable   bool   `json:"is_available"`
}

func docOf(b *entity.Book) bookDoc {
	return bookDoc{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		ISBN:          b.ISBN,
		PublishedDate: entity.FormatDate(b.PublishedDate),
		IsAvailable:   b.IsAvailable,
	}
}

// searchBody builds a multi_match query weighted towards title.
func searchBody(q string, size int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "author^2", "isbn"},
			},
		},
		"size":    size,
		"_source": false,
	})
}

func (x *BookIndex) Index(ctx context.Context, b *entity.Book) error {
	body, err := json.Marshal(docOf(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", b.ID, res.Status())
	}
	return nil
}

func (x *BookIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

func (x *BookIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	body, err := searchBody(q, size)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
