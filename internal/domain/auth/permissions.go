package auth

const (
	RoleEmployee = "employee"
	RoleHR       = "hr"
)

const (
	PermLeaveRead    = "leave.read"
	PermLeaveWrite   = "leave.write"
	PermLeaveApprove = "leave.approve"
	PermCatalogWrite = "leave.catalog.write"
	PermReportsRead  = "reports.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermLeaveWrite,
	},
	RoleHR: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermCatalogWrite,
		PermReportsRead,
	},
}

func HasPermission(roleName, permission string) bool {
	for _, p := range RolePermissions[roleName] {
		if p == permission {
			return true
		}
	}
	return false
}
