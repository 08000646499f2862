package basecamp

import (
	"context"
	"fmt"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

// CardTables ist nur lesend, Card Tables entstehen ausschließlich in der Web-Oberfläche.
type CardTables struct {
	client *Client
}

// Get lädt eine Card Table eines Projekts, die Spalten stecken in Lists.
func (t *CardTables) Get(ctx context.Context, projectID, cardTableID int64) (*bc.CardTable, error) {
	var table bc.CardTable
	endpoint := t.client.url("/buckets/%d/card_tables/%d.json", projectID, cardTableID)
	if err := t.client.get(ctx, endpoint, &table); err != nil {
		return nil, fmt.Errorf("get card table %d: %w", cardTableID, err)
	}
	return &table, nil
}

// List liefert die Card Table des Projekts oder eine leere Liste, wenn das Tool aus ist.
func (t *CardTables) List(ctx context.Context, projectID int64) ([]bc.CardTable, error) {
	project, err := t.client.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list card tables: %w", err)
	}
	return CardTablesOf(ctx, t, project)
}
