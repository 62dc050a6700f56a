package domain

import "time"

// Participant is one live connection inside a room. The ConnID is
// unique per connection; the display name is not required to be unique.
type Participant struct {
	ConnID   string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}
