package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCollege creates an active test college with the given name and
// opaque id, headed by hodID.
func (f *Fixtures) CreateCollege(ctx context.Context, name, collegeID string, hodID primitive.ObjectID) models.College {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.College{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CollegeID: collegeID,
		HodID:     hodID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("colleges").InsertOne(ctx, c)
	if err != nil {
		f.t.Fatalf("failed to create test college: %v", err)
	}
	return c
}

// AddSubDepartment appends an embedded sub-department to a college and
// returns the entry.
func (f *Fixtures) AddSubDepartment(ctx context.Context, collegeID primitive.ObjectID, name string, headUserID *primitive.ObjectID) models.SubDepartment {
	f.t.Helper()

	sd := models.SubDepartment{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		HeadUserID: headUserID,
	}
	_, err := f.db.Collection("colleges").UpdateByID(ctx, collegeID,
		map[string]interface{}{"$push": map[string]interface{}{"sub_departments": sd}})
	if err != nil {
		f.t.Fatalf("failed to add test sub-department: %v", err)
	}
	return sd
}

// CreateUser creates an approved, unblocked test user.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, collegeID, collegeName, department string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Email:         email,
		Role:          role,
		CollegeID:     collegeID,
		CollegeName:   collegeName,
		CollegeNameCI: text.Fold(collegeName),
		Department:    department,
		DepartmentCI:  text.Fold(department),
		IsApproved:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePendingUser creates an unapproved registration.
func (f *Fixtures) CreatePendingUser(ctx context.Context, fullName, email, role, collegeName, department string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Email:         email,
		Role:          role,
		CollegeName:   collegeName,
		CollegeNameCI: text.Fold(collegeName),
		Department:    department,
		DepartmentCI:  text.Fold(department),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create pending test user: %v", err)
	}
	return u
}

// CreateSuperAdmin creates a platform admin user.
func (f *Fixtures) CreateSuperAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "superadmin", "", "", "")
}

// CreateCollegeHead creates a college head user. The head's department
// equals the college name by convention.
func (f *Fixtures) CreateCollegeHead(ctx context.Context, fullName, email, collegeID, collegeName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "collegehead", collegeID, collegeName, collegeName)
}

// CreateSubjectHead creates a subject head user.
func (f *Fixtures) CreateSubjectHead(ctx context.Context, fullName, email, collegeID, collegeName, subject string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "subjecthead", collegeID, collegeName, subject)
}

// CreateStudent creates a student user.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email, collegeID, collegeName, subject string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "student", collegeID, collegeName, subject)
}

// CreateQuiz creates a test quiz in the given college/department.
func (f *Fixtures) CreateQuiz(ctx context.Context, title, collegeID, collegeName, department string, createdBy primitive.ObjectID) models.Quiz {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Quiz{
		ID:              primitive.NewObjectID(),
		Title:           title,
		CollegeID:       collegeID,
		CollegeName:     collegeName,
		CollegeNameCI:   text.Fold(collegeName),
		Department:      department,
		DepartmentCI:    text.Fold(department),
		CreatedBy:       createdBy,
		DurationMinutes: 30,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("quizzes").InsertOne(ctx, q)
	if err != nil {
		f.t.Fatalf("failed to create test quiz: %v", err)
	}
	return q
}

// CreateQuestion creates a test question for a quiz.
func (f *Fixtures) CreateQuestion(ctx context.Context, quizID primitive.ObjectID, qtext string) models.Question {
	f.t.Helper()

	q := models.Question{
		ID:        primitive.NewObjectID(),
		QuizID:    quizID,
		Text:      qtext,
		Options:   []string{"a", "b", "c", "d"},
		Answer:    0,
		CreatedAt: time.Now().UTC(),
	}
	_, err := f.db.Collection("questions").InsertOne(ctx, q)
	if err != nil {
		f.t.Fatalf("failed to create test question: %v", err)
	}
	return q
}

// CreateResult creates a test result for a quiz and student.
func (f *Fixtures) CreateResult(ctx context.Context, quizID, studentID primitive.ObjectID, collegeID, collegeName string) models.Result {
	f.t.Helper()

	res := models.Result{
		ID:            primitive.NewObjectID(),
		QuizID:        quizID,
		StudentID:     studentID,
		Score:         7,
		Total:         10,
		CollegeID:     collegeID,
		CollegeNameCI: text.Fold(collegeName),
		CreatedAt:     time.Now().UTC(),
	}
	_, err := f.db.Collection("results").InsertOne(ctx, res)
	if err != nil {
		f.t.Fatalf("failed to create test result: %v", err)
	}
	return res
}
