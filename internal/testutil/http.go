package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CollegeID string
}

// SuperAdminUser returns a TestUser with the platform admin role.
func SuperAdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test SuperAdmin",
		Email: "superadmin@test.com",
		Role:  "superadmin",
	}
}

// CollegeHeadUser returns a TestUser heading the given college.
func CollegeHeadUser(collegeID string) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test College Head",
		Email:     "hod@test.com",
		Role:      "collegehead",
		CollegeID: collegeID,
	}
}

// SubjectHeadUser returns a TestUser heading a subject in the given college.
func SubjectHeadUser(collegeID string) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Subject Head",
		Email:     "sir@test.com",
		Role:      "subjecthead",
		CollegeID: collegeID,
	}
}

// StudentUser returns a TestUser with the student role.
func StudentUser(collegeID string) TestUser {
	return TestUser{
		ID:        primitive.NewObjectID().Hex(),
		Name:      "Test Student",
		Email:     "student@test.com",
		Role:      "student",
		CollegeID: collegeID,
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers, bypassing the session middleware.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CollegeID: user.CollegeID,
	})
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
