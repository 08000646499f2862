package basecamp

import (
	"encoding/json"
	"reflect"
)

type fieldState uint8

const (
	fieldAbsent fieldState = iota
	fieldNull
	fieldValue
)

// Field ist ein optionales Request-Attribut mit drei Zuständen: fehlt (Nullwert,
// nicht im Payload), null (als JSON null gesendet) oder ein konkreter Wert.
type Field[T any] struct {
	state fieldState
	value T
}

// Set liefert ein Feld mit dem Wert v. Eine nil-Slice wird als [] gesendet,
// ein Date{} dagegen als null: der leere Kalendertag löscht das Datum wie Null[Date]().
func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldValue, value: v}
}

// Null liefert ein Feld, das das Attribut auf dem Server leert.
func Null[T any]() Field[T] {
	return Field[T]{state: fieldNull}
}

// IsPresent meldet, ob das Feld im Payload steht (null oder Wert).
func (f Field[T]) IsPresent() bool { return f.state != fieldAbsent }

func (f Field[T]) IsNull() bool { return f.state == fieldNull }

// Value liefert den Wert, ok ist false bei fehlenden und null Feldern.
func (f Field[T]) Value() (v T, ok bool) {
	return f.value, f.state == fieldValue
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != fieldValue {
		return []byte("null"), nil
	}
	if v := reflect.ValueOf(f.value); v.Kind() == reflect.Slice && v.IsNil() {
		return []byte("[]"), nil
	}
	return json.Marshal(f.value)
}

// UpdateCardRequest ist ein teilweises Update, gesendet werden nur gesetzte Felder.
type UpdateCardRequest struct {
	Title       Field[string]
	Content     Field[string]
	AssigneeIDs Field[[]int64]
	DueOn       Field[Date]
}

// IsEmpty meldet, ob gar kein Feld gesetzt ist.
func (r UpdateCardRequest) IsEmpty() bool {
	return !r.Title.IsPresent() && !r.Content.IsPresent() &&
		!r.AssigneeIDs.IsPresent() && !r.DueOn.IsPresent()
}

func (r UpdateCardRequest) MarshalJSON() ([]byte, error) {
	payload := make(map[string]json.Marshaler, 4)
	if r.Title.IsPresent() {
		payload["title"] = r.Title
	}
	if r.Content.IsPresent() {
		payload["content"] = r.Content
	}
	if r.AssigneeIDs.IsPresent() {
		payload["assignee_ids"] = r.AssigneeIDs
	}
	if r.DueOn.IsPresent() {
		payload["due_on"] = r.DueOn
	}
	return json.Marshal(payload)
}
