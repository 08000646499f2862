package basecamp

import "time"

// Dock-Namen der Projekt-Tools
const (
	DockCardTable = "kanban_board"
)

// Recording-Typen der Card Table Ressourcen
const (
	TypeCardTable    = "Kanban::Board"
	TypeColumn       = "Kanban::Column"
	TypeTriageColumn = "Kanban::Triage"
	TypeDoneColumn   = "Kanban::DoneColumn"
	TypeNotNowColumn = "Kanban::NotNowColumn"
	TypeCard         = "Kanban::Card"
	TypeCardStep     = "Kanban::Step"
)

type Person struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	EmailAddress   string `json:"email_address,omitempty"`
	Title          string `json:"title,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Admin          bool   `json:"admin,omitempty"`
	Owner          bool   `json:"owner,omitempty"`
	PersonableType string `json:"personable_type,omitempty"`
}

type DockItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Position *int   `json:"position"`
	URL      string `json:"url"`
	AppURL   string `json:"app_url"`
}

type Project struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Purpose     string     `json:"purpose"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	URL         string     `json:"url"`
	AppURL      string     `json:"app_url"`
	Dock        []DockItem `json:"dock"`
}

// CardTableID liefert die ID der aktivierten Card Table des Projekts, falls vorhanden.
func (p *Project) CardTableID() (int64, bool) {
	for _, item := range p.Dock {
		if item.Name == DockCardTable && item.Enabled {
			return item.ID, true
		}
	}
	return 0, false
}

// Bucket ist das Projekt, in dem ein Recording liegt.
type Bucket struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Parent zeigt eine Ebene höher (Card Table für eine Spalte, Spalte für eine Karte).
type Parent struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	URL    string `json:"url"`
	AppURL string `json:"app_url"`
}

// Recording enthält die Felder, die alle Card Table Ressourcen gemeinsam haben.
type Recording struct {
	ID               int64     `json:"id"`
	Status           string    `json:"status"`
	VisibleToClients bool      `json:"visible_to_clients"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Title            string    `json:"title"`
	InheritsStatus   bool      `json:"inherits_status"`
	Type             string    `json:"type"`
	URL              string    `json:"url"`
	AppURL           string    `json:"app_url"`
	BookmarkURL      string    `json:"bookmark_url,omitempty"`
	SubscriptionURL  string    `json:"subscription_url,omitempty"`
	Parent           *Parent   `json:"parent,omitempty"`
	Bucket           Bucket    `json:"bucket"`
	Creator          *Person   `json:"creator,omitempty"`
}

type CardTable struct {
	Recording
	Subscribers []Person          `json:"subscribers"`
	Lists       []CardTableColumn `json:"lists"`
}

// CardTableColumn heißt beim Server "list".
type CardTableColumn struct {
	Recording
	Description  string   `json:"description"`
	Color        string   `json:"color,omitempty"`
	Position     int      `json:"position,omitempty"`
	CardsCount   int      `json:"cards_count"`
	CommentCount int      `json:"comment_count"`
	CardsURL     string   `json:"cards_url"`
	Subscribers  []Person `json:"subscribers,omitempty"`
}

// CardTableID liefert die ID der Card Table, zu der die Spalte gehört.
func (c *CardTableColumn) CardTableID() int64 {
	if c.Parent == nil {
		return 0
	}
	return c.Parent.ID
}

type CardStep struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	DueOn     *Date    `json:"due_on"`
	Assignees []Person `json:"assignees"`
}

type Card struct {
	Recording
	Content               string     `json:"content"`
	Description           string     `json:"description"`
	Completed             bool       `json:"completed"`
	CompletionURL         string     `json:"completion_url,omitempty"`
	DueOn                 *Date      `json:"due_on"`
	Position              int        `json:"position,omitempty"`
	CommentsCount         int        `json:"comments_count"`
	CommentsURL           string     `json:"comments_url,omitempty"`
	Assignees             []Person   `json:"assignees"`
	CompletionSubscribers []Person   `json:"completion_subscribers"`
	Steps                 []CardStep `json:"steps,omitempty"`
}

// ColumnID liefert die ID der Spalte, in der die Karte gerade liegt.
func (c *Card) ColumnID() int64 {
	if c.Parent == nil {
		return 0
	}
	return c.Parent.ID
}

// AssigneeIDs liefert die IDs der zugewiesenen Personen.
func (c *Card) AssigneeIDs() []int64 {
	ids := make([]int64, 0, len(c.Assignees))
	for _, p := range c.Assignees {
		ids = append(ids, p.ID)
	}
	return ids
}

// CreateCardRequest ist der Body beim Anlegen einer Karte. DueOn nil geht als null raus.
type CreateCardRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	DueOn   *Date  `json:"due_on"`
}

// MoveCardRequest ist der Body für die moves Ressource einer Karte.
type MoveCardRequest struct {
	ColumnID int64 `json:"column_id"`
}
