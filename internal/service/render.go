package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"hufschlaeger.net/basecamp-cardtables/pkg/utils"
)

const maxDescriptionLength = 2000

// Rendered ist ein Export in einem Ausgabeformat.
type Rendered struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Render bringt den Snapshot in das gewünschte Format (markdown, yaml, json).
func Render(snapshot BoardSnapshot, format string) (*Rendered, error) {
	switch format {
	case "", "markdown", "md":
		return &Rendered{
			Data:        []byte(RenderMarkdown(snapshot)),
			ContentType: "text/markdown; charset=utf-8",
			Extension:   "md",
		}, nil
	case "yaml", "yml":
		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("yaml export fehlgeschlagen: %w", err)
		}
		return &Rendered{Data: data, ContentType: "application/yaml", Extension: "yaml"}, nil
	case "json":
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("json export fehlgeschlagen: %w", err)
		}
		return &Rendered{Data: append(data, '\n'), ContentType: "application/json", Extension: "json"}, nil
	default:
		return nil, fmt.Errorf("unbekanntes Export-Format %q", format)
	}
}

// RenderMarkdown generiert eine Markdown-Übersicht, eine Section pro Spalte
func RenderMarkdown(snapshot BoardSnapshot) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("# Card Table Export - %s\n\n", utils.EscapeMarkdown(snapshot.ProjectName)))
	content.WriteString(fmt.Sprintf("**Export-Zeit:** %s  \n", snapshot.ExportedAt.Format("02.01.2006 15:04:05")))
	if snapshot.URL != "" {
		content.WriteString(fmt.Sprintf("**Card Table:** [%s](%s)  \n", utils.EscapeMarkdown(snapshot.Title), snapshot.URL))
	} else {
		content.WriteString(fmt.Sprintf("**Card Table:** %s  \n", utils.EscapeMarkdown(snapshot.Title)))
	}
	content.WriteString(fmt.Sprintf("**Anzahl Karten:** %d  \n\n", snapshot.CardCount()))

	for _, col := range snapshot.Columns {
		content.WriteString(fmt.Sprintf("## %s (%d)\n\n", utils.EscapeMarkdown(col.Title), len(col.Cards)))
		if col.Description != "" {
			content.WriteString(fmt.Sprintf("_%s_\n\n", col.Description))
		}
		if len(col.Cards) == 0 {
			content.WriteString("_Keine Karten_\n\n")
			continue
		}
		for _, card := range col.Cards {
			content.WriteString(formatCardAsMarkdown(card))
		}
	}

	return content.String()
}

func formatCardAsMarkdown(card CardSnapshot) string {
	var content strings.Builder

	if card.URL != "" {
		content.WriteString(fmt.Sprintf("### [#%d - %s](%s)\n\n", card.ID, utils.EscapeMarkdown(card.Title), card.URL))
	} else {
		content.WriteString(fmt.Sprintf("### #%d - %s\n\n", card.ID, utils.EscapeMarkdown(card.Title)))
	}

	content.WriteString("| Feld | Wert |\n")
	content.WriteString("|------|------|\n")

	status := "offen"
	if card.Completed {
		status = "erledigt"
	}
	content.WriteString(fmt.Sprintf("| **Status** | %s |\n", status))

	if card.DueOn != nil {
		content.WriteString(fmt.Sprintf("| **Fällig** | %s |\n", utils.FormatDateForDisplay(card.DueOn.String())))
	}

	if len(card.Assignees) > 0 {
		content.WriteString(fmt.Sprintf("| **Zugewiesen** | %s |\n", utils.EscapeMarkdown(strings.Join(card.Assignees, ", "))))
	}

	if card.Steps > 0 {
		content.WriteString(fmt.Sprintf("| **Schritte** | %d/%d |\n", card.StepsDone, card.Steps))
	}

	if card.CommentsCount > 0 {
		content.WriteString(fmt.Sprintf("| **Kommentare** | %d |\n", card.CommentsCount))
	}

	content.WriteString("\n")

	if card.Content != "" {
		content.WriteString("**Beschreibung:**\n\n")
		content.WriteString(utils.TruncateText(card.Content, maxDescriptionLength))
		content.WriteString("\n\n")
	}

	content.WriteString("---\n\n")
	return content.String()
}
