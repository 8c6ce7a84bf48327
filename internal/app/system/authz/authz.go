// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSuperAdmin reports whether the current request's user is a platform admin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == roles.SuperAdmin
}

// IsCollegeHead reports whether the current request's user heads a college.
func IsCollegeHead(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == roles.CollegeHead
}

// IsSubjectHead reports whether the current request's user heads a sub-department.
func IsSubjectHead(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == roles.SubjectHead
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == roles.Student
}

// IsStaff reports whether the current user administers a subject, a
// college, or the platform.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && roles.IsStaff(role)
}

// UserCollegeID returns the current user's opaque college id, or ""
// when not signed in or unaffiliated.
func UserCollegeID(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return user.CollegeID
}
