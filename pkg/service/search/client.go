package search

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
	"github.com/secmon-lab/deckmemo/pkg/domain/model"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client queries the Custom Search JSON API with a fixed search engine
type Client struct {
	svc      *customsearch.Service
	engineID string
}

var _ interfaces.Searcher = &Client{}

// New creates a Custom Search client. Extra options are appended after the API key.
func New(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("search API key is required")
	}
	if engineID == "" {
		return nil, goerr.New("search engine ID is required")
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create custom search service")
	}

	return &Client{
		svc:      svc,
		engineID: engineID,
	}, nil
}

// Search runs a single query and returns the items as the API reported them
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchItem, error) {
	resp, err := c.svc.Cse.List().Cx(c.engineID).Q(query).Context(ctx).Do()
	if err != nil {
		opts := []goerr.Option{goerr.V("query", query)}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			opts = append(opts,
				goerr.V(model.StatusKey, apiErr.Code),
				goerr.V(model.DetailKey, apiErr.Message))
		} else {
			opts = append(opts, goerr.V(model.DetailKey, err.Error()))
		}
		return nil, goerr.Wrap(model.ErrUpstream, "failed to search", opts...)
	}

	items := make([]model.SearchItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil {
			continue
		}
		items = append(items, model.SearchItem{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	return items, nil
}
