package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/acadhub/quizhub/internal/app/system/normalize"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned by lookups when no user matches.
	ErrNotFound = errors.New("user not found")
	errBadRole  = errors.New(`role must be "student"|"subjecthead"|"collegehead"|"superadmin"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Find returns users matching the given filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Create inserts a new user after normalizing and validating fields.
// Hierarchy pointer agreement is deliberately not validated here; the
// auditor reconciles drift.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.CollegeID = normalize.CollegeID(u.CollegeID)
	u.CollegeName = normalize.Name(u.CollegeName)
	u.CollegeNameCI = text.Fold(u.CollegeName)
	u.Department = normalize.Department(u.Department)
	u.DepartmentCI = text.Fold(u.Department)

	if !roles.IsValid(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Patch applies a $set patch to one user. Patches are plain field
// assignments, so re-applying the same logical patch is a no-op.
// Callers patching display fields must patch the _ci companion too;
// use the Fielded helpers below for the common cases.
func (s *Store) Patch(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkPatch applies a $set patch to every user matching filter and
// returns the number of documents modified.
func (s *Store) BulkPatch(ctx context.Context, filter, set bson.M) (int64, error) {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes one user by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteMatching removes every user matching filter. Used by the
// college delete cascade.
func (s *Store) DeleteMatching(ctx context.Context, filter bson.M) (int64, error) {
	res, err := s.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// HierarchyPatch builds the $set patch that re-points a user at a
// college/sub-department, keeping the _ci companions in sync. Passing
// empty strings clears the pointers.
func HierarchyPatch(collegeID, collegeName, department string) bson.M {
	collegeName = normalize.Name(collegeName)
	department = normalize.Department(department)
	return bson.M{
		"college_id":      normalize.CollegeID(collegeID),
		"college_name":    collegeName,
		"college_name_ci": text.Fold(collegeName),
		"department":      department,
		"department_ci":   text.Fold(department),
	}
}
