// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students, subject heads, college heads, and platform
// superadmins.
//
// NOTE:
//   - CollegeID/CollegeName/Department are denormalized hierarchy
//     pointers. Department is semantically overloaded: for a college
//     head it equals the college name, for everyone else it is the
//     subject name. Historical records may carry a name but no id, or
//     an id but a stale name; the hierarchy resolver owns the matching
//     policy and the auditor owns the repairs. Stores never enforce
//     agreement between these fields.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`               // stored normalized lowercase
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"` // student | subjecthead | collegehead | superadmin

	// Denormalized hierarchy pointers.
	CollegeID     string `bson:"college_id,omitempty" json:"college_id,omitempty"`
	CollegeName   string `bson:"college_name,omitempty" json:"college_name,omitempty"`
	CollegeNameCI string `bson:"college_name_ci,omitempty" json:"college_name_ci,omitempty"`
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
	DepartmentCI  string `bson:"department_ci,omitempty" json:"department_ci,omitempty"`

	// Lifecycle flags. IsAdmin is a coarse capability flag kept
	// independent of Role for legacy records.
	IsApproved bool `bson:"is_approved" json:"is_approved"`
	IsBlocked  bool `bson:"is_blocked" json:"is_blocked"`
	IsAdmin    bool `bson:"is_admin" json:"is_admin"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
