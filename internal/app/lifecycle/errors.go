// internal/app/lifecycle/errors.go
package lifecycle

import "errors"

var (
	// ErrNotFound is returned when the target user or college is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the acting role may not perform the
	// operation on the target role.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyApproved is returned by ApproveUser for an already
	// approved account; approval is terminal and cannot be re-applied.
	ErrAlreadyApproved = errors.New("user is already approved")
	// ErrMissingTenantName is returned when approving a college head
	// whose record carries no college name to upsert a tenant from.
	ErrMissingTenantName = errors.New("college head approval requires a college name")
	// ErrDuplicateIdentity is returned when an email is already taken.
	ErrDuplicateIdentity = errors.New("a user with this email already exists")
	// ErrDuplicateTenant is returned when a college name or id collides.
	ErrDuplicateTenant = errors.New("a college with this name or id already exists")
	// ErrDuplicateSubUnit is returned when a sub-department name already
	// exists (case-insensitively) under the college.
	ErrDuplicateSubUnit = errors.New("a sub-department with this name already exists")
	// ErrAccountAffiliated is returned under ReassignUnaffiliated when
	// the head email belongs to an account in a different college.
	ErrAccountAffiliated = errors.New("email belongs to an account in another college")
)
