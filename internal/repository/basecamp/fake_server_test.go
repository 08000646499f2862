package basecamp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	bc "hufschlaeger.net/basecamp-cardtables/internal/domain/basecamp"
	"hufschlaeger.net/basecamp-cardtables/internal/logger"
)

const testAccount = "999"

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// fakeBasecamp is an in-memory stand-in for the card table endpoints.
type fakeBasecamp struct {
	t  *testing.T
	mu sync.Mutex

	projects map[int64]*bc.Project
	tables   map[int64]*bc.CardTable
	columns  map[int64]*bc.CardTableColumn
	cards    map[int64]*bc.Card
	order    map[int64][]int64 // column id -> card ids, board order

	nextID     int64
	perPage    int // 0 = no pagination
	moveStatus int

	requests []recordedRequest
}

func newFakeBasecamp(t *testing.T) *fakeBasecamp {
	return &fakeBasecamp{
		t:          t,
		projects:   map[int64]*bc.Project{},
		tables:     map[int64]*bc.CardTable{},
		columns:    map[int64]*bc.CardTableColumn{},
		cards:      map[int64]*bc.Card{},
		order:      map[int64][]int64{},
		nextID:     1000,
		moveStatus: http.StatusNoContent,
	}
}

// seedBoard creates project 1 with card table 10 and the columns 11 (Triage),
// 12 (Doing) and 13 (Done). Cards 100 and 101 sit in Triage, 102 in Doing.
func (f *fakeBasecamp) seedBoard() {
	bucket := bc.Bucket{ID: 1, Name: "Leto Laptop", Type: "Project"}
	f.projects[1] = &bc.Project{ID: 1, Name: "Leto Laptop", Dock: []bc.DockItem{
		{ID: 5, Name: "message_board", Title: "Message Board", Enabled: true},
		{ID: 10, Name: bc.DockCardTable, Title: "Card Table", Enabled: true},
	}}
	f.projects[2] = &bc.Project{ID: 2, Name: "No Board", Dock: []bc.DockItem{
		{ID: 20, Name: bc.DockCardTable, Title: "Card Table", Enabled: false},
	}}
	f.tables[10] = &bc.CardTable{Recording: bc.Recording{ID: 10, Title: "Card Table", Type: bc.TypeCardTable, Bucket: bucket}}

	for i, col := range []struct {
		id    int64
		title string
		typ   string
	}{{11, "Triage", bc.TypeTriageColumn}, {12, "Doing", bc.TypeColumn}, {13, "Done", bc.TypeDoneColumn}} {
		f.columns[col.id] = &bc.CardTableColumn{
			Recording: bc.Recording{ID: col.id, Title: col.title, Type: col.typ, Bucket: bucket,
				Parent: &bc.Parent{ID: 10, Title: "Card Table", Type: bc.TypeCardTable}},
			Position: i + 1,
		}
		f.order[col.id] = []int64{}
	}

	f.addCard(100, 11, "Write proposal")
	f.addCard(101, 11, "Review budget")
	f.addCard(102, 12, "Ship release")
}

func (f *fakeBasecamp) addCard(id, columnID int64, title string) *bc.Card {
	col := f.columns[columnID]
	card := &bc.Card{
		Recording: bc.Recording{ID: id, Title: title, Type: bc.TypeCard, Bucket: col.Bucket,
			Parent: &bc.Parent{ID: col.ID, Title: col.Title, Type: col.Type}},
		Assignees:             []bc.Person{},
		CompletionSubscribers: []bc.Person{},
	}
	f.cards[id] = card
	f.order[columnID] = append(f.order[columnID], id)
	return card
}

func (f *fakeBasecamp) router() http.Handler {
	r := mux.NewRouter()
	r.Use(f.record)

	api := r.PathPrefix("/" + testAccount).Subrouter()
	api.HandleFunc("/my/profile.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "name": "Victor Cooper"})
	}).Methods(http.MethodGet)
	api.HandleFunc("/projects/{project:[0-9]+}.json", f.getProject).Methods(http.MethodGet)

	b := api.PathPrefix("/buckets/{project:[0-9]+}/card_tables").Subrouter()
	b.HandleFunc("/{table:[0-9]+}.json", f.getTable).Methods(http.MethodGet)
	b.HandleFunc("/columns/{column:[0-9]+}.json", f.getColumn).Methods(http.MethodGet)
	b.HandleFunc("/lists/{column:[0-9]+}/cards.json", f.listCards).Methods(http.MethodGet)
	b.HandleFunc("/lists/{column:[0-9]+}/cards.json", f.createCard).Methods(http.MethodPost)
	b.HandleFunc("/cards/{card:[0-9]+}.json", f.getCard).Methods(http.MethodGet)
	b.HandleFunc("/cards/{card:[0-9]+}.json", f.updateCard).Methods(http.MethodPut)
	b.HandleFunc("/cards/{card:[0-9]+}/moves.json", f.moveCard).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route"})
	})
	return r
}

func (f *fakeBasecamp) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone(), Body: body,
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBasecamp) setPerPage(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.perPage = n
}

func (f *fakeBasecamp) setMoveStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveStatus = status
}

func (f *fakeBasecamp) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBasecamp) requestsWithMethod(method string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBasecamp) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		f.t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeBasecamp) getProject(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[idVar(r, "project")]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (f *fakeBasecamp) getTable(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table, ok := f.tables[idVar(r, "table")]
	if !ok || table.Bucket.ID != idVar(r, "project") {
		notFound(w)
		return
	}
	out := *table
	out.Lists = []bc.CardTableColumn{}
	for _, id := range []int64{11, 12, 13} {
		if col, ok := f.columns[id]; ok && col.Parent.ID == table.ID {
			c := *col
			c.CardsCount = len(f.order[id])
			out.Lists = append(out.Lists, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBasecamp) getColumn(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.columns[idVar(r, "column")]
	if !ok || col.Bucket.ID != idVar(r, "project") {
		notFound(w)
		return
	}
	out := *col
	out.CardsCount = len(f.order[col.ID])
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBasecamp) listCards(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.columns[idVar(r, "column")]
	if !ok || col.Bucket.ID != idVar(r, "project") {
		notFound(w)
		return
	}

	ids := f.order[col.ID]
	if f.perPage > 0 {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		start := (page - 1) * f.perPage
		end := min(start+f.perPage, len(ids))
		if start > len(ids) {
			start = len(ids)
		}
		if end < len(ids) {
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=%d>; rel="next"`, r.URL.Path, page+1))
		}
		ids = ids[start:end]
	}

	cards := make([]bc.Card, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, *f.cards[id])
	}
	writeJSON(w, http.StatusOK, cards)
}

func (f *fakeBasecamp) createCard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.columns[idVar(r, "column")]
	if !ok || col.Bucket.ID != idVar(r, "project") {
		notFound(w)
		return
	}

	var in bc.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if in.Title == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Title can't be blank"})
		return
	}

	f.nextID++
	card := f.addCard(f.nextID, col.ID, in.Title)
	card.Content = in.Content
	card.Description = in.Content
	card.DueOn = in.DueOn
	writeJSON(w, http.StatusCreated, card)
}

func (f *fakeBasecamp) getCard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.scopedCard(r)
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (f *fakeBasecamp) updateCard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.scopedCard(r)
	if !ok {
		notFound(w)
		return
	}

	var in map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if raw, ok := in["title"]; ok {
		_ = json.Unmarshal(raw, &card.Title)
	}
	if raw, ok := in["content"]; ok {
		_ = json.Unmarshal(raw, &card.Content)
		card.Description = card.Content
	}
	if raw, ok := in["assignee_ids"]; ok {
		var ids []int64
		_ = json.Unmarshal(raw, &ids)
		card.Assignees = []bc.Person{}
		for _, id := range ids {
			card.Assignees = append(card.Assignees, bc.Person{ID: id, Name: fmt.Sprintf("Person %d", id)})
		}
	}
	if raw, ok := in["due_on"]; ok {
		var due *bc.Date
		if err := json.Unmarshal(raw, &due); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "due_on is invalid"})
			return
		}
		card.DueOn = due
	}
	writeJSON(w, http.StatusOK, card)
}

func (f *fakeBasecamp) moveCard(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.scopedCard(r)
	if !ok {
		notFound(w)
		return
	}

	var in bc.MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	dest, ok := f.columns[in.ColumnID]
	if !ok || dest.Bucket.ID != card.Bucket.ID {
		notFound(w)
		return
	}

	from := card.Parent.ID
	remaining := f.order[from][:0]
	for _, id := range f.order[from] {
		if id != card.ID {
			remaining = append(remaining, id)
		}
	}
	f.order[from] = remaining
	f.order[dest.ID] = append(f.order[dest.ID], card.ID)
	card.Parent = &bc.Parent{ID: dest.ID, Title: dest.Title, Type: dest.Type}

	if f.moveStatus == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, f.moveStatus, card)
}

func (f *fakeBasecamp) scopedCard(r *http.Request) (*bc.Card, bool) {
	card, ok := f.cards[idVar(r, "card")]
	if !ok || card.Bucket.ID != idVar(r, "project") {
		return nil, false
	}
	return card, true
}

func idVar(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestClient starts handler on an httptest server and returns a client for it.
func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AccountID:   testAccount,
		AccessToken: "test-token",
		BaseURL:     srv.URL,
		UserAgent:   "cardtables-tests (qa@example.test)",
	}
	opts = append([]Option{WithLogger(logger.Nop())}, opts...)
	return NewClient(cfg, opts...)
}

// newFakeClient seeds a board and returns the fake together with a client for it.
func newFakeClient(t *testing.T, opts ...Option) (*fakeBasecamp, *Client) {
	t.Helper()

	fake := newFakeBasecamp(t)
	fake.seedBoard()
	return fake, newTestClient(t, fake.router(), opts...)
}
