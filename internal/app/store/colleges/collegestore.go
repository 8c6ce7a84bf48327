// internal/app/store/colleges/collegestore.go
package collegestore

import (
	"context"
	"errors"
	"time"

	"github.com/acadhub/quizhub/internal/app/system/collegeid"
	"github.com/acadhub/quizhub/internal/app/system/normalize"
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

var (
	ErrDuplicateName          = errors.New("a college with this name already exists")
	ErrDuplicateCollegeID     = errors.New("a college with this college id already exists")
	ErrDuplicateSubDepartment = errors.New("a sub-department with this name already exists in the college")
	ErrSubDepartmentNotFound  = errors.New("sub-department not found")
	ErrNotFound               = errors.New("college not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("colleges")}
}

// Create inserts a new college. An empty CollegeID gets a generated one.
func (s *Store) Create(ctx context.Context, c models.College) (models.College, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.CollegeID = collegeid.Normalize(c.CollegeID)
	if c.CollegeID == "" {
		c.CollegeID = collegeid.New()
	}
	for i := range c.SubDepartments {
		if c.SubDepartments[i].ID.IsZero() {
			c.SubDepartments[i].ID = primitive.NewObjectID()
		}
		c.SubDepartments[i].Name = normalize.Department(c.SubDepartments[i].Name)
		c.SubDepartments[i].NameCI = text.Fold(c.SubDepartments[i].Name)
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			// Either name_ci or college_id collided; disambiguate so the
			// caller can report the right field.
			if _, lookupErr := s.GetByCollegeID(ctx, c.CollegeID); lookupErr == nil {
				return models.College{}, ErrDuplicateCollegeID
			}
			return models.College{}, ErrDuplicateName
		}
		return models.College{}, err
	}
	return c, nil
}

// GetByID retrieves a college by its ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.College, error) {
	return s.getOne(ctx, bson.M{"_id": id})
}

// GetByName retrieves a college by case-insensitive name.
func (s *Store) GetByName(ctx context.Context, name string) (models.College, error) {
	return s.getOne(ctx, bson.M{"name_ci": text.Fold(name)})
}

// GetByCollegeID retrieves a college by its opaque tenant id.
func (s *Store) GetByCollegeID(ctx context.Context, cid string) (models.College, error) {
	return s.getOne(ctx, bson.M{"college_id": collegeid.Normalize(cid)})
}

// GetByHod retrieves the college headed by the given user.
func (s *Store) GetByHod(ctx context.Context, hodID primitive.ObjectID) (models.College, error) {
	return s.getOne(ctx, bson.M{"hod_id": hodID})
}

func (s *Store) getOne(ctx context.Context, filter bson.M) (models.College, error) {
	var c models.College
	err := s.c.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.College{}, ErrNotFound
		}
		return models.College{}, err
	}
	return c, nil
}

// Find returns colleges matching the given filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.College, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var colleges []models.College
	if err := cur.All(ctx, &colleges); err != nil {
		return nil, err
	}
	return colleges, nil
}

// Patch applies a $set patch to one college. Name patches must go
// through PatchName so the _ci companion stays in sync.
func (s *Store) Patch(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PatchName renames a college, keeping name_ci in sync.
func (s *Store) PatchName(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	return s.Patch(ctx, id, bson.M{"name": name, "name_ci": text.Fold(name)})
}

// Delete removes a college document by ID. Cascading through dependent
// collections is the lifecycle engine's job, not the store's.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddSubDepartment appends an embedded sub-department after checking
// for a case-insensitive name collision within the college.
func (s *Store) AddSubDepartment(ctx context.Context, id primitive.ObjectID, sd models.SubDepartment) (models.SubDepartment, error) {
	sd.Name = normalize.Department(sd.Name)
	sd.NameCI = text.Fold(sd.Name)
	if sd.ID.IsZero() {
		sd.ID = primitive.NewObjectID()
	}

	// The collision check and the push are two operations; with one
	// writer per tenant (the documented concurrency model) this is
	// sufficient, and the auditor catches the rest.
	college, err := s.GetByID(ctx, id)
	if err != nil {
		return models.SubDepartment{}, err
	}
	for _, existing := range college.SubDepartments {
		if existing.NameCI == sd.NameCI {
			return models.SubDepartment{}, ErrDuplicateSubDepartment
		}
	}

	_, err = s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"sub_departments": sd},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return models.SubDepartment{}, err
	}
	return sd, nil
}

// RemoveSubDepartment pulls the embedded entry with the given sub id.
func (s *Store) RemoveSubDepartment(ctx context.Context, id, subID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"sub_departments": bson.M{"_id": subID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrSubDepartmentNotFound
	}
	return nil
}

// UpdateSubDepartment applies field updates to one embedded entry via
// the positional operator. Supported fields: head_user_id, is_active,
// name (name keeps name_ci in sync).
func (s *Store) UpdateSubDepartment(ctx context.Context, id, subID primitive.ObjectID, set bson.M) error {
	positional := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		if k == "name" {
			name := normalize.Department(v.(string))
			positional["sub_departments.$.name"] = name
			positional["sub_departments.$.name_ci"] = text.Fold(name)
			continue
		}
		positional["sub_departments.$."+k] = v
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "sub_departments._id": subID},
		bson.M{"$set": positional})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSubDepartmentNotFound
	}
	return nil
}

// Count returns the number of colleges matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
