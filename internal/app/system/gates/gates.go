// Package gates provides handler-level authorization checks for the
// admin API. Route groups carry coarse role middleware
// (auth.RequireRole); gates cover handlers that need a different check
// than their route group, and return the user context so handlers do
// not re-parse the session.
package gates

import (
	"net/http"

	"github.com/acadhub/quizhub/internal/app/system/authz"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated; writes 401 on failure.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequireSuperAdmin ensures the user is a platform admin; writes
// 401/403 on failure.
func RequireSuperAdmin(w http.ResponseWriter, r *http.Request) Result {
	return requireRoles(w, r, roles.SuperAdmin)
}

// RequireStaff ensures the user is a subject head, college head, or
// platform admin.
func RequireStaff(w http.ResponseWriter, r *http.Request) Result {
	return requireRoles(w, r, roles.SubjectHead, roles.CollegeHead, roles.SuperAdmin)
}

// RequireHeadOrSuperAdmin ensures the user administers a college or the
// platform.
func RequireHeadOrSuperAdmin(w http.ResponseWriter, r *http.Request) Result {
	return requireRoles(w, r, roles.CollegeHead, roles.SuperAdmin)
}

func requireRoles(w http.ResponseWriter, r *http.Request, allowed ...string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Result{OK: false}
	}
	for _, a := range allowed {
		if role == a {
			return Result{Role: role, Name: name, UserID: uid, OK: true}
		}
	}
	http.Error(w, "forbidden", http.StatusForbidden)
	return Result{Role: role, Name: name, UserID: uid, OK: false}
}
