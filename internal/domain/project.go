package domain

// UpdateEntry is one progress note posted to a project.
type UpdateEntry struct {
	Text      string `json:"text"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// ResourceEntry is one link or note attached to a project.
type ResourceEntry struct {
	Text      string `json:"text"`
	AddedBy   string `json:"addedBy"`
	Timestamp string `json:"timestamp"`
}

// Project is a stored project document. Members holds user IDs; a user appears
// at most once. Creator is the member with elevated capabilities. The JSON
// field names are the stored wire format and must not change.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []string        `json:"members"`
	Creator     string          `json:"creator"`
	Whiteboard  string          `json:"whiteboard"`
	Updates     []UpdateEntry   `json:"updates"`
	Progress    int             `json:"progress"`
	Resources   []ResourceEntry `json:"resources"`
}

// IsMember reports whether the given user ID is on the project roster.
func (p *Project) IsMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Member pairs a roster user ID with its resolved username for display.
type Member struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
}
