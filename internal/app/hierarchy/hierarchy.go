// internal/app/hierarchy/hierarchy.go
//
// The resolver computes a user's place in the college hierarchy from
// the denormalized pointers on the user document. Historical records
// may carry only a college name, only a department string, or a stale
// combination of the three; the matching policy here is the single
// documented home for how those records are reconciled. Divergent
// records are logged and left for the auditor, never repaired inline.
package hierarchy

import (
	"context"

	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Membership is the resolved hierarchy position of one user.
type Membership struct {
	College       *models.College
	SubDepartment *models.SubDepartment
	IsCollegeHead bool
	IsSubHead     bool
}

type Resolver struct {
	users    *userstore.Store
	colleges *collegestore.Store
	log      *zap.Logger
}

func New(users *userstore.Store, colleges *collegestore.Store, log *zap.Logger) *Resolver {
	return &Resolver{users: users, colleges: colleges, log: log}
}

// MemberFilter matches users affiliated with the college by college_id
// OR by college name OR by department string, all case-insensitive.
// The OR is a permanent compatibility rule, not transitional cleanup:
// records written before the college_id backfill carry only the name
// forms, and they must keep matching forever.
func MemberFilter(c models.College) bson.M {
	return bson.M{"$or": []bson.M{
		{"college_id": c.CollegeID},
		{"college_name_ci": c.NameCI},
		{"department_ci": c.NameCI},
	}}
}

// Resolve computes the membership of one user.
//
// College heads resolve through the college's hod pointer; everyone
// else resolves by college_id first, then by college name, then by the
// department string for legacy records that lack a college name. When
// the id match and the name match disagree, the id wins and the record
// is logged for the auditor.
func (r *Resolver) Resolve(ctx context.Context, user models.User) (Membership, error) {
	if user.Role == roles.CollegeHead {
		college, err := r.colleges.GetByHod(ctx, user.ID)
		if err != nil {
			return Membership{}, err
		}
		if user.CollegeNameCI != college.NameCI || text.Fold(user.Department) != college.NameCI {
			r.log.Warn("college head record diverges from college",
				zap.String("user_id", user.ID.Hex()),
				zap.String("college", college.Name),
				zap.String("user_college_name", user.CollegeName),
				zap.String("user_department", user.Department))
		}
		return Membership{College: &college, IsCollegeHead: true}, nil
	}

	college, err := r.resolveCollege(ctx, user)
	if err != nil {
		return Membership{}, err
	}

	m := Membership{College: college}
	if college == nil {
		return m, nil
	}

	deptCI := text.Fold(user.Department)
	for i := range college.SubDepartments {
		sd := &college.SubDepartments[i]
		if sd.HeadUserID != nil && *sd.HeadUserID == user.ID {
			m.SubDepartment = sd
			m.IsSubHead = true
			return m, nil
		}
	}
	if deptCI != "" {
		for i := range college.SubDepartments {
			sd := &college.SubDepartments[i]
			if sd.NameCI == deptCI {
				m.SubDepartment = sd
				return m, nil
			}
		}
	}
	return m, nil
}

func (r *Resolver) resolveCollege(ctx context.Context, user models.User) (*models.College, error) {
	var byID *models.College
	if user.CollegeID != "" {
		c, err := r.colleges.GetByCollegeID(ctx, user.CollegeID)
		switch err {
		case nil:
			byID = &c
		case collegestore.ErrNotFound:
		default:
			return nil, err
		}
	}

	name := user.CollegeName
	if name == "" {
		name = user.Department // legacy records lack college_name
	}
	var byName *models.College
	if name != "" {
		c, err := r.colleges.GetByName(ctx, name)
		switch err {
		case nil:
			byName = &c
		case collegestore.ErrNotFound:
		default:
			return nil, err
		}
	}

	if byID != nil && byName != nil && byID.ID != byName.ID {
		r.log.Warn("college_id and name match disagree, preferring college_id",
			zap.String("user_id", user.ID.Hex()),
			zap.String("college_id_match", byID.Name),
			zap.String("name_match", byName.Name))
	}
	if byID != nil {
		return byID, nil
	}
	return byName, nil
}

// ListCollegeMembers returns every user affiliated with the college
// under the OR-compatibility rule of MemberFilter.
func (r *Resolver) ListCollegeMembers(ctx context.Context, c models.College) ([]models.User, error) {
	return r.users.Find(ctx, MemberFilter(c))
}

// ListSubDepartmentHeads returns the heading user of every embedded
// sub-department that has one.
func (r *Resolver) ListSubDepartmentHeads(ctx context.Context, c models.College) ([]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(c.SubDepartments))
	for _, sd := range c.SubDepartments {
		if sd.HeadUserID != nil {
			ids = append(ids, *sd.HeadUserID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}
