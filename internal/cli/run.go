package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"hufschlaeger.net/basecamp-cardtables/internal/repository/basecamp"
)

// Run führt einen Lese- oder Schreibbefehl aus und schreibt das Ergebnis als JSON nach out.
// export läuft über den service.Exporter und wird hier nicht behandelt.
func Run(ctx context.Context, cmd *Command, client *basecamp.Client, out io.Writer) error {
	var (
		result interface{}
		err    error
	)

	switch cmd.Name {
	case CmdTables:
		result, err = client.CardTables.List(ctx, cmd.ProjectID)
	case CmdTable:
		result, err = client.CardTables.Get(ctx, cmd.ProjectID, cmd.CardTableID)
	case CmdColumn:
		result, err = client.CardTableColumns.Get(ctx, cmd.ProjectID, cmd.ColumnID)
	case CmdCards:
		result, err = client.CardTableCards.List(ctx, cmd.ProjectID, cmd.ColumnID)
	case CmdCard:
		result, err = client.CardTableCards.Get(ctx, cmd.ProjectID, cmd.CardID)
	case CmdCreateCard:
		result, err = client.CardTableCards.Create(ctx, cmd.ProjectID, cmd.ColumnID, cmd.Create)
	case CmdUpdateCard:
		result, err = client.CardTableCards.Update(ctx, cmd.ProjectID, cmd.CardID, cmd.Update)
	case CmdMoveCard:
		result, err = client.CardTableCards.Move(ctx, cmd.ProjectID, cmd.CardID, cmd.ColumnID)
	default:
		return fmt.Errorf("befehl %q kann nicht direkt ausgeführt werden", cmd.Name)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
