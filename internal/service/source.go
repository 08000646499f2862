package service

import (
	"context"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
	"hufschlaeger.net/basecamp-cardtables/internal/repository/basecamp"
)

// BoardSource liefert die Daten für einen Export.
type BoardSource interface {
	Project(ctx context.Context, projectID int64) (*bc.Project, error)
	CardTable(ctx context.Context, projectID, cardTableID int64) (*bc.CardTable, error)
	Cards(ctx context.Context, column *bc.CardTableColumn) ([]bc.Card, error)
}

// ClientSource liest Boards über den Basecamp API Client.
type ClientSource struct {
	client *basecamp.Client
}

func NewClientSource(client *basecamp.Client) *ClientSource {
	return &ClientSource{client: client}
}

func (s *ClientSource) Project(ctx context.Context, projectID int64) (*bc.Project, error) {
	return s.client.Projects.Get(ctx, projectID)
}

func (s *ClientSource) CardTable(ctx context.Context, projectID, cardTableID int64) (*bc.CardTable, error) {
	return s.client.CardTables.Get(ctx, projectID, cardTableID)
}

func (s *ClientSource) Cards(ctx context.Context, column *bc.CardTableColumn) ([]bc.Card, error) {
	return basecamp.CardsOf(ctx, s.client.CardTableCards, column)
}
