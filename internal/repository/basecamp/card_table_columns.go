package basecamp

import (
	"context"
	"fmt"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

type CardTableColumns struct {
	client *Client
}

func (c *CardTableColumns) Get(ctx context.Context, projectID, columnID int64) (*bc.CardTableColumn, error) {
	var column bc.CardTableColumn
	endpoint := c.client.url("/buckets/%d/card_tables/columns/%d.json", projectID, columnID)
	if err := c.client.get(ctx, endpoint, &column); err != nil {
		return nil, fmt.Errorf("get column %d: %w", columnID, err)
	}
	return &column, nil
}
