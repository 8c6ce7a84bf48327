// internal/app/audit/repair.go
package audit

import (
	"context"
	"errors"
	"fmt"

	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ErrUnrepairable is returned when no minimal patch can fix a record,
// e.g. an orphaned head whose record carries no college name to rebuild
// from. Such records need operator attention.
var ErrUnrepairable = errors.New("no repair applies to this record")

// Repair applies the minimal correcting patch for one drift record.
// Repairs are idempotent: re-running Scan after a successful repair
// does not reproduce the record.
func (a *Auditor) Repair(ctx context.Context, rec DriftRecord) error {
	var err error
	switch rec.Kind {
	case KindOrphanedHead:
		err = a.repairOrphanedHead(ctx, rec)
	case KindMissingHod:
		err = a.repairMissingHod(ctx, rec)
	case KindStaleSubHead:
		err = a.repairStaleSubHead(ctx, rec)
	case KindMismatchedDepartment:
		err = a.repairMismatchedDepartment(ctx, rec)
	default:
		err = fmt.Errorf("unknown drift kind %q", rec.Kind)
	}
	if err == nil {
		a.log.Info("drift repaired",
			zap.String("kind", rec.Kind),
			zap.String("detail", rec.Detail))
	}
	return err
}

// repairOrphanedHead links the head to the college named on their
// record, re-pointing an existing college or recreating a missing one.
func (a *Auditor) repairOrphanedHead(ctx context.Context, rec DriftRecord) error {
	head, err := a.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil // both sides gone, nothing left to link
		}
		return err
	}

	name := head.CollegeName
	if name == "" {
		name = head.Department
	}
	if name == "" {
		return ErrUnrepairable
	}

	college, err := a.colleges.GetByName(ctx, name)
	switch {
	case errors.Is(err, collegestore.ErrNotFound):
		college, err = a.colleges.Create(ctx, models.College{
			Name:      name,
			CollegeID: head.CollegeID,
			HodID:     head.ID,
			IsActive:  !head.IsBlocked,
		})
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := a.colleges.Patch(ctx, college.ID, bson.M{"hod_id": head.ID}); err != nil {
			return err
		}
	}

	return a.users.Patch(ctx, head.ID,
		userstore.HierarchyPatch(college.CollegeID, college.Name, college.Name))
}

// repairMissingHod points the college at a surviving college-head
// account affiliated with it.
func (a *Auditor) repairMissingHod(ctx context.Context, rec DriftRecord) error {
	college, err := a.colleges.GetByID(ctx, rec.CollegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil
		}
		return err
	}

	candidates, err := a.users.Find(ctx, bson.M{
		"role": roles.CollegeHead,
		"$or": []bson.M{
			{"college_id": college.CollegeID},
			{"college_name_ci": college.NameCI},
			{"department_ci": college.NameCI},
		},
	})
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return ErrUnrepairable
	}
	return a.colleges.Patch(ctx, college.ID, bson.M{"hod_id": candidates[0].ID})
}

// repairStaleSubHead re-points the sub-department at a subject head in
// the college whose department matches, or deactivates the entry when
// no candidate exists.
func (a *Auditor) repairStaleSubHead(ctx context.Context, rec DriftRecord) error {
	college, err := a.colleges.GetByID(ctx, rec.CollegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil
		}
		return err
	}
	sd, ok := college.FindSubDepartment(rec.SubID)
	if !ok {
		return nil // entry already removed
	}

	candidates, err := a.users.Find(ctx, bson.M{
		"role":          roles.SubjectHead,
		"department_ci": sd.NameCI,
		"$or": []bson.M{
			{"college_id": college.CollegeID},
			{"college_name_ci": college.NameCI},
		},
	})
	if err != nil {
		return err
	}
	if len(candidates) > 0 {
		return a.colleges.UpdateSubDepartment(ctx, college.ID, sd.ID,
			bson.M{"head_user_id": candidates[0].ID})
	}

	inactive := false
	return a.colleges.UpdateSubDepartment(ctx, college.ID, sd.ID,
		bson.M{"is_active": &inactive})
}

// repairMismatchedDepartment clears the user's unknown department claim
// while keeping their college affiliation intact.
func (a *Auditor) repairMismatchedDepartment(ctx context.Context, rec DriftRecord) error {
	college, err := a.colleges.GetByID(ctx, rec.CollegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil
		}
		return err
	}
	user, err := a.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil
		}
		return err
	}

	// A sub-department that points back at this user wins: re-point the
	// department string instead of clearing it.
	for _, sd := range college.SubDepartments {
		if sd.HeadUserID != nil && *sd.HeadUserID == user.ID {
			return a.users.Patch(ctx, user.ID, bson.M{
				"department":    sd.Name,
				"department_ci": text.Fold(sd.Name),
			})
		}
	}

	return a.users.Patch(ctx, user.ID,
		userstore.HierarchyPatch(college.CollegeID, college.Name, ""))
}
