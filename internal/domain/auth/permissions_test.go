package auth

import "testing"

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleEmployee, PermLeaveRead, true},
		{RoleEmployee, PermLeaveWrite, true},
		{RoleEmployee, PermLeaveApprove, false},
		{RoleEmployee, PermCatalogWrite, false},
		{RoleEmployee, PermReportsRead, false},
		{RoleHR, PermLeaveApprove, true},
		{RoleHR, PermCatalogWrite, true},
		{RoleHR, PermReportsRead, true},
		{"unknown", PermLeaveRead, false},
	}

	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.permission); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.permission, got, tc.want)
		}
	}
}
