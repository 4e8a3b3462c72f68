package workspace

import "errors"

var (
	ErrNotMember              = errors.New("you are not a member of this workspace")
	ErrAdminPrivilegeRequired = errors.New("workspace admin privilege required")
)
