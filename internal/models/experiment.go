package models

// SessionRecord is the stable external shape of one stored experiment session.
// Stored documents come from several client generations with differently cased
// keys; see services.NormalizeSession for how they collapse into this shape.
type SessionRecord struct {
	ID          interface{} `json:"id,omitempty"` // storage primary key (ObjectID or string)
	SessionID   string      `json:"sessionId,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	SessionName string      `json:"sessionName,omitempty"`

	// Expression metrics hold whatever was stored: nominally numbers in 0-100,
	// but neither type nor range is checked
	SmilePercentage      interface{} `json:"smilePercentage,omitempty"`
	NeutralPercentage    interface{} `json:"neutralPercentage,omitempty"`
	SurprisedPercentage  interface{} `json:"surprisedPercentage,omitempty"`
	TotalExpressionCount interface{} `json:"totalExpressionCount,omitempty"`

	// Stored transcript elements in order. Never nil once normalized so it
	// encodes as [].
	ChatMessages []interface{} `json:"chatMessages"`

	CreatedAt interface{} `json:"createdAt,omitempty"`
	UpdatedAt interface{} `json:"updatedAt,omitempty"`
	StartTime interface{} `json:"startTime,omitempty"`
	EndTime   interface{} `json:"endTime,omitempty"`

	Metadata   interface{} `json:"metadata,omitempty"`
	Source     interface{} `json:"source,omitempty"`
	ServerInfo interface{} `json:"serverInfo,omitempty"`
}
