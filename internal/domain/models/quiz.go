// internal/domain/models/quiz.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quiz is authored by a subject head within one college. It carries the
// same denormalized college fields as User so that tenant cascades can
// reach quizzes by college_id or by legacy name match.
type Quiz struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`

	CollegeID     string `bson:"college_id,omitempty" json:"college_id,omitempty"`
	CollegeName   string `bson:"college_name,omitempty" json:"college_name,omitempty"`
	CollegeNameCI string `bson:"college_name_ci,omitempty" json:"college_name_ci,omitempty"`
	Department    string `bson:"department,omitempty" json:"department,omitempty"`
	DepartmentCI  string `bson:"department_ci,omitempty" json:"department_ci,omitempty"`

	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`

	DurationMinutes int        `bson:"duration_minutes" json:"duration_minutes"`
	OpensAt         *time.Time `bson:"opens_at,omitempty" json:"opens_at,omitempty"`
	ClosesAt        *time.Time `bson:"closes_at,omitempty" json:"closes_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Question belongs to one quiz. Text and options are stored sanitized.
type Question struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuizID  primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	Text    string             `bson:"text" json:"text"`
	Options []string           `bson:"options" json:"options"`
	Answer  int                `bson:"answer" json:"-"` // index into Options

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Result records one student's score on one quiz.
type Result struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuizID    primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Score     int                `bson:"score" json:"score"`
	Total     int                `bson:"total" json:"total"`

	CollegeID     string `bson:"college_id,omitempty" json:"college_id,omitempty"`
	CollegeNameCI string `bson:"college_name_ci,omitempty" json:"college_name_ci,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
