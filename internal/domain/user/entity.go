package user

import "time"

// Role distinguishes the three kinds of people at the facility. Workers are
// the supported members whose clock times are normalized to billing
// boundaries; staff and admins are recorded unrounded.
type Role string

const (
	RoleWorker Role = "worker"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsWorker reports whether clock times for this role go through the
// billing-boundary normalizer.
func (r Role) IsWorker() bool {
	return r == RoleWorker
}

type User struct {
	ID        string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
