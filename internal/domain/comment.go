package domain

import "time"

// Comment is an entry in a ticket's discussion thread. Comments inherit
// the ticket's visibility: whoever may view the ticket may read and write
// its thread.
type Comment struct {
	ID       string
	TicketID string
	AuthorID string
	// AuthorName is denormalized at read time for display; it is not a
	// stored column.
	AuthorName string
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
