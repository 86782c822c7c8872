package domain

import "time"

// Activity actions recorded by the journal
const (
	ActionUpload = "upload"
	ActionDelete = "delete"
)

// Activity is one successful mutation of the file store
type Activity struct {
	ID        int64
	Action    string
	FileName  string
	Size      int64
	CreatedAt time.Time
}

// ActivityStats summarizes the activity journal
type ActivityStats struct {
	Uploads       int64      `json:"uploads"`
	Deletes       int64      `json:"deletes"`
	BytesUploaded int64      `json:"bytes_uploaded"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}
