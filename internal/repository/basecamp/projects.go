package basecamp

import (
	"context"
	"fmt"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

type Projects struct {
	client *Client
}

// Get holt ein Projekt inklusive Dock (Tools des Projekts).
func (p *Projects) Get(ctx context.Context, projectID int64) (*bc.Project, error) {
	var project bc.Project
	if err := p.client.get(ctx, p.client.url("/projects/%d.json", projectID), &project); err != nil {
		return nil, fmt.Errorf("get project %d: %w", projectID, err)
	}
	return &project, nil
}
