package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// API is the narrow slice of the Notion API this program consumes. The
// classifier, the project cache and the inspect command depend on this
// interface only, so tests can script the remote store.
type API interface {
	QueryDatabase(ctx context.Context, databaseID string, filter notionapi.Filter) ([]notionapi.Page, error)
	RetrievePage(ctx context.Context, pageID string) (*notionapi.Page, error)
}

// Client implements API against the real Notion API.
type Client struct {
	client *notionapi.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: notionapi.NewClient(notionapi.Token(apiKey)),
	}
}

const queryPageSize = 100

// QueryDatabase runs a filtered database query and follows the cursor until
// all result pages are collected, preserving the remote ordering.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter notionapi.Filter) ([]notionapi.Page, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter:   filter,
		PageSize: queryPageSize,
	}
	var pages []notionapi.Page
	for {
		resp, err := c.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *Client) RetrievePage(ctx context.Context, pageID string) (*notionapi.Page, error) {
	page, err := c.client.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve page %s: %w", pageID, err)
	}
	return page, nil
}
