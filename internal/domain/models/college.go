// internal/domain/models/college.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// College represents a tenant. Each college is isolated from others and
// owns its sub-departments, users, and quizzes.
//
// Sub-departments are embedded, not separately addressable documents:
// they are owned children addressed by (collegeID, subID). The head
// user is a weak back-reference only; the user document stays the
// source of truth for role and department.
type College struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"` // case-insensitive match/sort

	// Opaque tenant identifier, unique across colleges. Human-typed in
	// some flows, generated in others; both forms are accepted.
	CollegeID string `bson:"college_id" json:"college_id"`

	// HodID references the college head user.
	HodID primitive.ObjectID `bson:"hod_id,omitempty" json:"hod_id,omitempty"`

	// IsActive is the tenant master switch. Its negation propagates to
	// every member user's is_blocked flag.
	IsActive bool `bson:"is_active" json:"is_active"`

	SubDepartments []SubDepartment `bson:"sub_departments,omitempty" json:"sub_departments,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SubDepartment is an embedded subject entry inside a college.
type SubDepartment struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	// HeadUserID is a weak reference to the subject head user; nil when
	// the sub-department has no head assigned.
	HeadUserID *primitive.ObjectID `bson:"head_user_id,omitempty" json:"head_user_id,omitempty"`

	// IsActive defaults to true when absent; older documents predate
	// the field.
	IsActive *bool `bson:"is_active,omitempty" json:"is_active,omitempty"`
}

// Active reports the effective status, treating a missing flag as true.
func (s SubDepartment) Active() bool {
	return s.IsActive == nil || *s.IsActive
}

// FindSubDepartment returns the embedded entry with the given id.
func (c College) FindSubDepartment(subID primitive.ObjectID) (SubDepartment, bool) {
	for _, sd := range c.SubDepartments {
		if sd.ID == subID {
			return sd, true
		}
	}
	return SubDepartment{}, false
}
