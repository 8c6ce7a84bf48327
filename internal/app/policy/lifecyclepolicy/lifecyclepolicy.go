// Package lifecyclepolicy holds the role matrices for lifecycle
// operations.
//
// Authorization rules:
//   - Superadmins can approve any applicant and block anyone except
//     another superadmin.
//   - College heads and subject heads can approve only subject-head
//     applicants; college-head applicants are the platform's call.
//   - College heads can block subject heads and students in their own
//     college, never another college head. The college scoping is the
//     lifecycle engine's job; the matrix here is role-only.
//   - Subject heads can block only students.
//   - Students can do neither.
package lifecyclepolicy

import "github.com/acadhub/quizhub/internal/app/system/roles"

// CanApprove reports whether approverRole may approve an applicant
// with targetRole.
func CanApprove(approverRole, targetRole string) bool {
	switch approverRole {
	case roles.SuperAdmin:
		return true
	case roles.CollegeHead, roles.SubjectHead:
		return targetRole == roles.SubjectHead
	default:
		return false
	}
}

// CanBlock reports whether actorRole may block or unblock a user with
// targetRole. Callers must additionally scope college heads and
// subject heads to their own college.
func CanBlock(actorRole, targetRole string) bool {
	switch actorRole {
	case roles.SuperAdmin:
		return targetRole != roles.SuperAdmin
	case roles.CollegeHead:
		return targetRole == roles.SubjectHead || targetRole == roles.Student
	case roles.SubjectHead:
		return targetRole == roles.Student
	default:
		return false
	}
}
