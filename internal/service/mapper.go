package service

import (
	"time"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
	"hufschlaeger.net/basecamp-cardtables/pkg/utils"
)

// BoardSnapshot ist der exportierte Stand einer Card Table.
type BoardSnapshot struct {
	ProjectID   int64            `json:"project_id" yaml:"project_id"`
	ProjectName string           `json:"project_name" yaml:"project_name"`
	CardTableID int64            `json:"card_table_id" yaml:"card_table_id"`
	Title       string           `json:"title" yaml:"title"`
	URL         string           `json:"url,omitempty" yaml:"url,omitempty"`
	ExportedAt  time.Time        `json:"exported_at" yaml:"exported_at"`
	Columns     []ColumnSnapshot `json:"columns" yaml:"columns"`
}

type ColumnSnapshot struct {
	ID          int64          `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Type        string         `json:"type" yaml:"type"`
	Color       string         `json:"color,omitempty" yaml:"color,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Cards       []CardSnapshot `json:"cards" yaml:"cards"`
}

type CardSnapshot struct {
	ID            int64    `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Content       string   `json:"content,omitempty" yaml:"content,omitempty"`
	DueOn         *bc.Date `json:"due_on,omitempty" yaml:"due_on,omitempty"`
	Completed     bool     `json:"completed" yaml:"completed"`
	Assignees     []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Steps         int      `json:"steps,omitempty" yaml:"steps,omitempty"`
	StepsDone     int      `json:"steps_done,omitempty" yaml:"steps_done,omitempty"`
	CommentsCount int      `json:"comments_count" yaml:"comments_count"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// CardCount zählt die Karten über alle Spalten.
func (s BoardSnapshot) CardCount() int {
	n := 0
	for _, col := range s.Columns {
		n += len(col.Cards)
	}
	return n
}

type Mapper struct {
	config *config.Config
	now    func() time.Time
}

func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{config: cfg, now: time.Now}
}

// BuildSnapshot fügt Card Table und Karten der Spalten zusammen.
// cards[i] gehört zu table.Lists[i].
func (m *Mapper) BuildSnapshot(project *bc.Project, table *bc.CardTable, cards [][]bc.Card) BoardSnapshot {
	snapshot := BoardSnapshot{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		CardTableID: table.ID,
		Title:       table.Title,
		URL:         table.AppURL,
		ExportedAt:  m.now().UTC().Truncate(time.Second),
		Columns:     make([]ColumnSnapshot, 0, len(table.Lists)),
	}

	for i, column := range table.Lists {
		col := ColumnSnapshot{
			ID:          column.ID,
			Title:       column.Title,
			Type:        column.Type,
			Color:       column.Color,
			Description: utils.PlainText(column.Description),
			Cards:       []CardSnapshot{},
		}
		if i < len(cards) {
			for _, card := range cards[i] {
				col.Cards = append(col.Cards, m.CardToSnapshot(card))
			}
		}
		snapshot.Columns = append(snapshot.Columns, col)
	}

	return snapshot
}

// CardToSnapshot macht eine Karte flach: Rich-Text wird Text, Personen werden Namen.
func (m *Mapper) CardToSnapshot(card bc.Card) CardSnapshot {
	snap := CardSnapshot{
		ID:            card.ID,
		Title:         card.Title,
		Content:       utils.PlainText(card.Content),
		Completed:     card.Completed,
		Steps:         len(card.Steps),
		CommentsCount: card.CommentsCount,
		URL:           card.AppURL,
	}

	if card.DueOn != nil && !card.DueOn.IsZero() {
		due := *card.DueOn
		snap.DueOn = &due
	}

	for _, person := range card.Assignees {
		snap.Assignees = append(snap.Assignees, person.Name)
	}

	for _, step := range card.Steps {
		if step.Completed {
			snap.StepsDone++
		}
	}

	return snap
}
