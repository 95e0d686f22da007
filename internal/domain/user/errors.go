package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrAdminPrivilegeRequired = errors.New("administrator privilege required")
	ErrStaffAccessRequired    = errors.New("staff access required")
)
