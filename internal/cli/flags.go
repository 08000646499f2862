package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
)

// Subcommands
const (
	CmdTable      = "table"
	CmdTables     = "tables"
	CmdColumn     = "column"
	CmdCards      = "cards"
	CmdCard       = "card"
	CmdCreateCard = "create-card"
	CmdUpdateCard = "update-card"
	CmdMoveCard   = "move-card"
	CmdExport     = "export"
)

var usageOutput io.Writer = os.Stderr

// Command ist ein geparster Aufruf.
type Command struct {
	Name        string
	ProjectID   int64
	CardTableID int64
	ColumnID    int64
	CardID      int64

	Create bc.CreateCardRequest
	Update bc.UpdateCardRequest
}

type rawFlags struct {
	account, token, userAgent string
	project, table            int64
	column, card              int64
	title, content, due       string
	assignees                 string
	clearDue, clearAssignees  bool
	output, format            string
	verbose                   bool
}

// ParseArgs parst Subcommand und Flags. Nicht gesetzte Flags fallen auf cfg zurück
// (Environment, .env, YAML), gesetzte überschreiben cfg.
func ParseArgs(args []string, cfg *config.Config) (*Command, error) {
	if len(args) == 0 {
		printUsage()
		return nil, errors.New("kein Befehl angegeben")
	}

	name := args[0]
	switch name {
	case "-h", "-help", "--help", "help":
		printUsage()
		return nil, flag.ErrHelp
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(usageOutput)
	raw := &rawFlags{}

	fs.StringVar(&raw.account, "account", "", "Basecamp Account-ID (Standard: BASECAMP_ACCOUNT_ID)")
	fs.StringVar(&raw.token, "token", "", "Basecamp Access Token (Standard: BASECAMP_ACCESS_TOKEN)")
	fs.StringVar(&raw.userAgent, "user-agent", "", "User-Agent mit Kontaktadresse (Standard: BASECAMP_USER_AGENT)")
	fs.Int64Var(&raw.project, "project", 0, "Projekt-ID (Standard: BASECAMP_PROJECT_ID)")
	fs.BoolVar(&raw.verbose, "verbose", false, "Debug-Ausgaben")

	switch name {
	case CmdTables:
	case CmdTable:
		fs.Int64Var(&raw.table, "table", 0, "Card Table ID (Standard: BASECAMP_CARD_TABLE_ID)")
	case CmdColumn, CmdCards:
		fs.Int64Var(&raw.column, "column", 0, "Spalten-ID")
	case CmdCard:
		fs.Int64Var(&raw.card, "card", 0, "Karten-ID")
	case CmdCreateCard:
		fs.Int64Var(&raw.column, "column", 0, "Spalten-ID")
		fs.StringVar(&raw.title, "title", "", "Titel der Karte")
		fs.StringVar(&raw.content, "content", "", "Inhalt (Rich-Text HTML)")
		fs.StringVar(&raw.due, "due", "", "Fälligkeitsdatum (YYYY-MM-DD, DD.MM.YYYY, RFC3339)")
	case CmdUpdateCard:
		fs.Int64Var(&raw.card, "card", 0, "Karten-ID")
		fs.StringVar(&raw.title, "title", "", "Neuer Titel")
		fs.StringVar(&raw.content, "content", "", "Neuer Inhalt")
		fs.StringVar(&raw.due, "due", "", "Neues Fälligkeitsdatum")
		fs.StringVar(&raw.assignees, "assignees", "", "Personen-IDs, kommagetrennt (ersetzt alle)")
		fs.BoolVar(&raw.clearDue, "clear-due", false, "Fälligkeitsdatum entfernen")
		fs.BoolVar(&raw.clearAssignees, "clear-assignees", false, "Alle Zuweisungen entfernen")
	case CmdMoveCard:
		fs.Int64Var(&raw.card, "card", 0, "Karten-ID")
		fs.Int64Var(&raw.column, "column", 0, "Ziel-Spalten-ID")
	case CmdExport:
		fs.Int64Var(&raw.table, "table", 0, "Card Table ID (Standard: aus dem Projekt-Dock)")
		fs.StringVar(&raw.output, "output", "", "Output Datei (Standard: project-<id>-cardtable-<datum>.<ext>)")
		fs.StringVar(&raw.format, "format", "", "Export-Format: markdown, yaml, json")
	default:
		printUsage()
		return nil, fmt.Errorf("unbekannter Befehl %q", name)
	}

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: basecamp-cardtables %s [OPTIONEN]\n\nOptionen:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unerwartete Argumente: %s", strings.Join(fs.Args(), " "))
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	applyOverrides(cfg, raw, set)

	cmd := &Command{
		Name:        name,
		ProjectID:   cfg.ProjectID,
		CardTableID: cfg.CardTableID,
		ColumnID:    raw.column,
		CardID:      raw.card,
	}

	if err := cmd.fill(raw, set); err != nil {
		return nil, err
	}
	if err := cmd.validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return cmd, nil
}

func applyOverrides(cfg *config.Config, raw *rawFlags, set map[string]bool) {
	if set["account"] {
		cfg.AccountID = raw.account
	}
	if set["token"] {
		cfg.AccessToken = raw.token
	}
	if set["user-agent"] {
		cfg.UserAgent = raw.userAgent
	}
	if set["project"] {
		cfg.ProjectID = raw.project
	}
	if set["table"] {
		cfg.CardTableID = raw.table
	}
	if set["output"] {
		cfg.OutputFile = raw.output
	}
	if set["format"] {
		cfg.ExportFormat = raw.format
	}
	if set["verbose"] {
		cfg.Verbose = raw.verbose
	}
}

func (c *Command) fill(raw *rawFlags, set map[string]bool) error {
	switch c.Name {
	case CmdCreateCard:
		c.Create = bc.CreateCardRequest{Title: raw.title, Content: raw.content}
		if raw.due != "" {
			due, err := bc.ParseDate(raw.due)
			if err != nil {
				return fmt.Errorf("ungültiges Datum für -due: %w", err)
			}
			c.Create.DueOn = &due
		}

	case CmdUpdateCard:
		if set["due"] && raw.clearDue {
			return errors.New("-due und -clear-due schließen sich aus")
		}
		if set["assignees"] && raw.clearAssignees {
			return errors.New("-assignees und -clear-assignees schließen sich aus")
		}

		if set["title"] {
			c.Update.Title = bc.Set(raw.title)
		}
		if set["content"] {
			c.Update.Content = bc.Set(raw.content)
		}
		if set["due"] {
			due, err := bc.ParseDate(raw.due)
			if err != nil {
				return fmt.Errorf("ungültiges Datum für -due: %w", err)
			}
			c.Update.DueOn = bc.Set(due)
		}
		if raw.clearDue {
			c.Update.DueOn = bc.Null[bc.Date]()
		}
		if set["assignees"] {
			ids, err := parseIDs(raw.assignees)
			if err != nil {
				return fmt.Errorf("ungültige Personen-IDs für -assignees: %w", err)
			}
			c.Update.AssigneeIDs = bc.Set(ids)
		}
		if raw.clearAssignees {
			c.Update.AssigneeIDs = bc.Set([]int64{})
		}
	}
	return nil
}

func (c *Command) validate() error {
	if c.ProjectID == 0 {
		return errors.New("Projekt-ID fehlt (-project oder BASECAMP_PROJECT_ID)")
	}

	switch c.Name {
	case CmdTable:
		if c.CardTableID == 0 {
			return errors.New("Card Table ID fehlt (-table oder BASECAMP_CARD_TABLE_ID)")
		}
	case CmdColumn, CmdCards, CmdCreateCard:
		if c.ColumnID == 0 {
			return errors.New("Spalten-ID fehlt (-column)")
		}
	case CmdCard, CmdUpdateCard:
		if c.CardID == 0 {
			return errors.New("Karten-ID fehlt (-card)")
		}
	case CmdMoveCard:
		if c.CardID == 0 || c.ColumnID == 0 {
			return errors.New("Karten-ID und Ziel-Spalte nötig (-card, -column)")
		}
	}
	return nil
}

func parseIDs(value string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printUsage() {
	fmt.Fprintf(usageOutput, `Basecamp Card Tables

Usage: basecamp-cardtables <BEFEHL> [OPTIONEN]

Befehle:
  tables        Card Table des Projekts anzeigen
  table         Card Table mit Spalten anzeigen
  column        Spalte anzeigen
  cards         Karten einer Spalte auflisten
  card          Karte anzeigen
  create-card   Karte anlegen
  update-card   Karte ändern (nur angegebene Felder)
  move-card     Karte in andere Spalte verschieben
  export        Card Table als Markdown, YAML oder JSON exportieren

Beispiele:
  # Karten der Spalte 1069479345 auflisten
  basecamp-cardtables cards -project 2085958499 -column 1069479345

  # Nur den Titel ändern
  basecamp-cardtables update-card -project 2085958499 -card 1069479400 -title "Neu"

  # Export nach S3 (S3_BUCKET gesetzt)
  basecamp-cardtables export -project 2085958499 -format yaml

Environment Variables:
  BASECAMP_ACCOUNT_ID     Basecamp Account-ID
  BASECAMP_ACCESS_TOKEN   OAuth Access Token
  BASECAMP_USER_AGENT     User-Agent mit Kontaktadresse
  BASECAMP_PROJECT_ID     Standard-Projekt
  BASECAMP_CONFIG         Optionale YAML Konfiguration
  S3_BUCKET               Exporte zusätzlich nach S3 hochladen
`)
}
