package user

import "context"

// UserRepository is the read-only collaborator the attendance core uses to
// resolve names and roles. User management itself lives outside this service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
}
