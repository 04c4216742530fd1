package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DepartmentRequest is the payload for creating/updating a department.
type DepartmentRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
}

// DepartmentSummary is the wire representation of a department.
type DepartmentSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromDepartment maps a domain department to its wire form.
func FromDepartment(d *domain.Department) DepartmentSummary {
	return DepartmentSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ManagerID:   d.ManagerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
