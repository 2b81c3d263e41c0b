// Package routing holds the pure decision logic behind the dashboard's
// navigation: static path classification, the per-route guard, and the
// root dispatcher. Nothing in this package performs I/O; the api layer
// translates decisions into HTTP responses.
package routing

import "strings"

const (
	// RootPath is the application root, dispatched by DispatchRoot.
	RootPath = "/"
	// LoginPath receives every unauthenticated or restricted redirect.
	LoginPath = "/login"
	// PortalRoot is the client portal prefix; everything under it is
	// client-only space.
	PortalRoot = "/smart-portal"
	// ChangePasswordPath is the one utility page shared by both identities.
	ChangePasswordPath = "/change-password"
)

// IsClientOnlyPath reports whether the path equals or is nested under the
// client portal prefix.
func IsClientOnlyPath(path string) bool {
	return path == PortalRoot || strings.HasPrefix(path, PortalRoot+"/")
}

// IsEmployeeOnlyPath reports whether the path belongs to the employee-side
// space. Every path outside the client portal is employee-only by default.
func IsEmployeeOnlyPath(path string) bool {
	return !IsClientOnlyPath(path)
}

// IsEmployeeAllowedFromPath reports whether an employee may be returned to
// the path after login. The shared password-change page is allowed from
// either side.
func IsEmployeeAllowedFromPath(path string) bool {
	return IsEmployeeOnlyPath(path) || path == ChangePasswordPath
}

// IsClientAllowedFromPath is the client-side counterpart of
// IsEmployeeAllowedFromPath.
func IsClientAllowedFromPath(path string) bool {
	return IsClientOnlyPath(path) || path == ChangePasswordPath
}
