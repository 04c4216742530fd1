package domain

import "time"

// Department represents an organizational unit tickets are routed to.
type Department struct {
	ID          string
	Name        string
	Description string
	// ManagerID designates the department manager, who has blanket
	// visibility over the department's non-private tickets.
	ManagerID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManagedBy reports whether the given user manages this department.
func (d *Department) IsManagedBy(userID string) bool {
	return d.ManagerID != nil && *d.ManagerID == userID
}
