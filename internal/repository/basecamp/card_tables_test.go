package basecamp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

func TestCardTables_Get(t *testing.T) {
	_, client := newFakeClient(t)

	table, err := client.CardTables.Get(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), table.ID)
	assert.Equal(t, bc.TypeCardTable, table.Type)

	columns := ColumnsOf(table)
	require.Len(t, columns, 3)
	assert.Equal(t, "Triage", columns[0].Title)
	assert.Equal(t, "Doing", columns[1].Title)
	assert.Equal(t, "Done", columns[2].Title)
	assert.Equal(t, 2, columns[0].CardsCount)
	for _, col := range columns {
		assert.Equal(t, int64(10), col.CardTableID())
	}
}

func TestCardTables_GetUnknown(t *testing.T) {
	_, client := newFakeClient(t)

	_, err := client.CardTables.Get(context.Background(), 1, 77)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCardTables_List(t *testing.T) {
	_, client := newFakeClient(t)

	tables, err := client.CardTables.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, int64(10), tables[0].ID)
	assert.Len(t, tables[0].Lists, 3)
}

func TestCardTables_ListWithoutEnabledTool(t *testing.T) {
	_, client := newFakeClient(t)

	tables, err := client.CardTables.List(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestCardTables_ListUnknownProject(t *testing.T) {
	_, client := newFakeClient(t)

	_, err := client.CardTables.List(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestColumnsOf_Nil(t *testing.T) {
	assert.Equal(t, []bc.CardTableColumn{}, ColumnsOf(nil))
	assert.Equal(t, []bc.CardTableColumn{}, ColumnsOf(&bc.CardTable{}))
}
