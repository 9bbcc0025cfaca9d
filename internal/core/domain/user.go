package domain

import "time"

// User status values. New accounts start inactive until the owner
// activates them; the first SUPERADMIN is created active.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account held by the credential store. Department
// membership is kept as numeric IDs only; the department documents
// live in their own collection.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Position      string    `json:"position,omitempty"`
	Role          Role      `json:"role"`
	DepartmentIDs []int64   `json:"department_ids"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Status        string    `json:"status"`
	LastLogin     time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InDepartment reports whether the user belongs to the given department.
func (u *User) InDepartment(deptID int64) bool {
	for _, id := range u.DepartmentIDs {
		if id == deptID {
			return true
		}
	}
	return false
}
