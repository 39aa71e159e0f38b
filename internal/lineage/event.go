package lineage

// Type tags how an event came to exist. The engine stores it verbatim and
// never branches on it.
type Type string

const (
	TypeUserEdit     Type = "user_edit"
	TypeAISuggestion Type = "ai_suggestion"
	TypeBranch       Type = "branch"
	TypeRestore      Type = "restore"
)

// Event is one immutable recorded version of a document.
type Event struct {
	ID        string  `json:"id"`
	ParentID  *string `json:"parentId"`
	Timestamp string  `json:"timestamp"` // RFC 3339, UTC
	Type      Type    `json:"type"`
	Content   string  `json:"content"` // full snapshot, not a delta
	Summary   string  `json:"summary,omitempty"`
	// Version is the creation-order sequence number (event count + 1 at
	// creation), not a position within a branch.
	Version int `json:"version"`
}

// IsRoot reports whether the event starts a new history component.
func (e Event) IsRoot() bool {
	return e.ParentID == nil
}

// Parent returns the parent id, or "" for a root.
func (e Event) Parent() string {
	if e.ParentID == nil {
		return ""
	}
	return *e.ParentID
}

func strPtr(s string) *string { return &s }
