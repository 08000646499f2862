package basecamp

import (
	"context"
	"fmt"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

type CardTableCards struct {
	client *Client
}

func (c *CardTableCards) Get(ctx context.Context, projectID, cardID int64) (*bc.Card, error) {
	var card bc.Card
	if err := c.client.get(ctx, c.cardURL(projectID, cardID), &card); err != nil {
		return nil, fmt.Errorf("get card %d: %w", cardID, err)
	}
	return &card, nil
}

// List liefert die Karten einer Spalte in der Reihenfolge des Servers.
func (c *CardTableCards) List(ctx context.Context, projectID, columnID int64) ([]bc.Card, error) {
	cards, err := getList[bc.Card](ctx, c.client, c.columnCardsURL(projectID, columnID))
	if err != nil {
		return nil, fmt.Errorf("list cards of column %d: %w", columnID, err)
	}
	return cards, nil
}

// Create legt eine Karte in einer Spalte an. Der Titel geht unverändert raus,
// leere Titel lehnt der Server ab (ErrValidationFailed).
func (c *CardTableCards) Create(ctx context.Context, projectID, columnID int64, req bc.CreateCardRequest) (*bc.Card, error) {
	var card bc.Card
	if err := c.client.post(ctx, c.columnCardsURL(projectID, columnID), req, &card); err != nil {
		return nil, fmt.Errorf("create card in column %d: %w", columnID, err)
	}
	return &card, nil
}

// Update sendet nur die in req gesetzten Felder. Ohne ein einziges Feld gibt es
// ErrInvalidArgument, ohne dass ein Request rausgeht.
func (c *CardTableCards) Update(ctx context.Context, projectID, cardID int64, req bc.UpdateCardRequest) (*bc.Card, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("update card %d: no fields to change: %w", cardID, ErrInvalidArgument)
	}

	var card bc.Card
	if err := c.client.put(ctx, c.cardURL(projectID, cardID), req, &card); err != nil {
		return nil, fmt.Errorf("update card %d: %w", cardID, err)
	}
	return &card, nil
}

// Move verschiebt eine Karte in eine andere Spalte. Der Server antwortet mit 204,
// deshalb wird die Karte danach neu geladen.
func (c *CardTableCards) Move(ctx context.Context, projectID, cardID, columnID int64) (*bc.Card, error) {
	var moved bc.Card
	endpoint := c.client.url("/buckets/%d/card_tables/cards/%d/moves.json", projectID, cardID)
	if err := c.client.post(ctx, endpoint, bc.MoveCardRequest{ColumnID: columnID}, &moved); err != nil {
		return nil, fmt.Errorf("move card %d to column %d: %w", cardID, columnID, err)
	}
	if moved.ID != 0 {
		return &moved, nil
	}
	return c.Get(ctx, projectID, cardID)
}

func (c *CardTableCards) cardURL(projectID, cardID int64) string {
	return c.client.url("/buckets/%d/card_tables/cards/%d.json", projectID, cardID)
}

func (c *CardTableCards) columnCardsURL(projectID, columnID int64) string {
	return c.client.url("/buckets/%d/card_tables/lists/%d/cards.json", projectID, columnID)
}
