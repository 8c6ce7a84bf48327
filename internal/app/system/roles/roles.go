// Package roles defines the user roles of the platform.
//
// Roles are mutually exclusive, not hierarchical: a college head is not
// "also" a subject head. Capability checks live in the policy packages,
// not here.
package roles

const (
	// Student takes quizzes within a sub-department.
	Student = "student"
	// SubjectHead administers one sub-department (subject) and its quizzes.
	SubjectHead = "subjecthead"
	// CollegeHead (HOD) administers one college tenant.
	CollegeHead = "collegehead"
	// SuperAdmin administers the platform itself.
	SuperAdmin = "superadmin"
)

// IsValid reports whether r is a recognized role.
func IsValid(r string) bool {
	switch r {
	case Student, SubjectHead, CollegeHead, SuperAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r administers something (a subject, a college,
// or the platform).
func IsStaff(r string) bool {
	return r == SubjectHead || r == CollegeHead || r == SuperAdmin
}
