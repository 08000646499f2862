package utils

import (
	"fmt"
	"strings"
	"time"
)

// APIDateLayout ist das Datumsformat, das Basecamp für due_on erwartet.
const APIDateLayout = "2006-01-02"

// acceptedDateLayouts in der Reihenfolge, in der sie probiert werden
var acceptedDateLayouts = []string{
	APIDateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// NormalizeDate bringt ein Datum (nur Datum, ISO mit oder ohne Zeit/Zone, deutsches Format)
// auf YYYY-MM-DD. Ein Zeitanteil wird abgeschnitten, das Datum bleibt wie geschrieben.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty date")
	}

	for _, layout := range acceptedDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(APIDateLayout), nil
		}
	}

	return "", fmt.Errorf("unknown date format %q", value)
}

// DateOf kürzt einen Zeitpunkt auf den Kalendertag in seiner eigenen Zone.
func DateOf(t time.Time) string {
	return t.Format(APIDateLayout)
}

// FormatDateForDisplay formatiert Datum für schöne Anzeige
func FormatDateForDisplay(dateStr string) string {
	if dateStr == "" {
		return "Kein Datum"
	}

	if parsed, err := time.Parse(APIDateLayout, dateStr); err == nil {
		return parsed.Format("02.01.2006")
	}

	return dateStr
}
