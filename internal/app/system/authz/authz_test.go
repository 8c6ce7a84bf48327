package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/acadhub/quizhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	role, name, userID, ok := authz.UserCtx(r)
	if ok {
		t.Error("expected ok=false with no user in context")
	}
	if role != "visitor" {
		t.Errorf("role: got %q, want %q", role, "visitor")
	}
	if name != "" {
		t.Errorf("name: got %q, want empty", name)
	}
	if userID != primitive.NilObjectID {
		t.Errorf("userID: got %v, want NilObjectID", userID)
	}
}

func TestUserCtx_ValidUser(t *testing.T) {
	id := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{
		ID:   id.Hex(),
		Name: "Head of Maths",
		Role: "SubjectHead", // mixed case on purpose
	})

	role, name, userID, ok := authz.UserCtx(r)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "subjecthead" {
		t.Errorf("role: got %q, want normalized %q", role, "subjecthead")
	}
	if name != "Head of Maths" {
		t.Errorf("name: got %q", name)
	}
	if userID != id {
		t.Errorf("userID: got %v, want %v", userID, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-an-object-id", Role: "superadmin"})

	_, _, _, ok := authz.UserCtx(r)
	if ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role       string
		super      bool
		head       bool
		subject    bool
		student    bool
		staffiness bool
	}{
		{"superadmin", true, false, false, false, true},
		{"collegehead", false, true, false, false, true},
		{"subjecthead", false, false, true, false, true},
		{"student", false, false, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r = auth.WithTestUser(r, &auth.SessionUser{
				ID:   primitive.NewObjectID().Hex(),
				Role: tt.role,
			})

			if got := authz.IsSuperAdmin(r); got != tt.super {
				t.Errorf("IsSuperAdmin = %v, want %v", got, tt.super)
			}
			if got := authz.IsCollegeHead(r); got != tt.head {
				t.Errorf("IsCollegeHead = %v, want %v", got, tt.head)
			}
			if got := authz.IsSubjectHead(r); got != tt.subject {
				t.Errorf("IsSubjectHead = %v, want %v", got, tt.subject)
			}
			if got := authz.IsStudent(r); got != tt.student {
				t.Errorf("IsStudent = %v, want %v", got, tt.student)
			}
			if got := authz.IsStaff(r); got != tt.staffiness {
				t.Errorf("IsStaff = %v, want %v", got, tt.staffiness)
			}
		})
	}
}

func TestUserCollegeID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := authz.UserCollegeID(r); got != "" {
		t.Errorf("expected empty college id with no user, got %q", got)
	}

	r = auth.WithTestUser(r, &auth.SessionUser{
		ID:        primitive.NewObjectID().Hex(),
		Role:      "collegehead",
		CollegeID: "CLG-1",
	})
	if got := authz.UserCollegeID(r); got != "CLG-1" {
		t.Errorf("got %q, want CLG-1", got)
	}
}
