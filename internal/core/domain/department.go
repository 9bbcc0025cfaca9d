package domain

import "time"

// Department is an organizational unit. Membership is many-to-many:
// the edges live on the user documents, so deleting a department only
// removes edges, never users.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
