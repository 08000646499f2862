package basecamp

import (
	"context"
	"fmt"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

// CardTablesOf liefert die aktivierte Card Table eines geladenen Projekts (keine oder eine).
func CardTablesOf(ctx context.Context, tables *CardTables, project *bc.Project) ([]bc.CardTable, error) {
	id, ok := project.CardTableID()
	if !ok {
		return []bc.CardTable{}, nil
	}
	table, err := tables.Get(ctx, project.ID, id)
	if err != nil {
		return nil, err
	}
	return []bc.CardTable{*table}, nil
}

// ColumnsOf liefert die Spalten einer geladenen Card Table, von links nach rechts.
func ColumnsOf(table *bc.CardTable) []bc.CardTableColumn {
	if table == nil || table.Lists == nil {
		return []bc.CardTableColumn{}
	}
	return table.Lists
}

// CardsOf listet die Karten, die gerade in einer geladenen Spalte liegen.
func CardsOf(ctx context.Context, cards *CardTableCards, column *bc.CardTableColumn) ([]bc.Card, error) {
	if column.Bucket.ID == 0 {
		return nil, fmt.Errorf("column %d has no project reference: %w", column.ID, ErrInvalidArgument)
	}
	return cards.List(ctx, column.Bucket.ID, column.ID)
}
