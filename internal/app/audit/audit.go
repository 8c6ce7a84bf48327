// internal/app/audit/audit.go
//
// The auditor walks the hierarchy looking for the drift the lifecycle
// model tolerates: cascades are unfenced multi-document writes, and
// denormalized pointers on user records can go stale. Scan reports the
// divergence; Repair applies the minimal correcting patch.
package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/acadhub/quizhub/internal/app/hierarchy"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Drift kinds.
const (
	KindOrphanedHead         = "orphaned_head"         // college head with no college pointing at them
	KindMissingHod           = "missing_hod"           // college whose hod account is gone
	KindStaleSubHead         = "stale_sub_head"        // sub-department head null, missing, or unaffiliated
	KindMismatchedDepartment = "mismatched_department" // user department matches no sub-department
)

// DriftRecord describes one detected divergence.
type DriftRecord struct {
	Kind      string             `json:"kind"`
	CollegeID primitive.ObjectID `json:"college_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id,omitempty"`
	SubID     primitive.ObjectID `json:"sub_id,omitempty"`
	Detail    string             `json:"detail"`
}

type Auditor struct {
	users    *userstore.Store
	colleges *collegestore.Store
	log      *zap.Logger
}

func New(users *userstore.Store, colleges *collegestore.Store, log *zap.Logger) *Auditor {
	return &Auditor{users: users, colleges: colleges, log: log}
}

// Drifts is a lazy, finite, non-restartable cursor over drift records.
// Stages run only as the caller advances past their predecessors.
type Drifts struct {
	stages []func(ctx context.Context) ([]DriftRecord, error)
	buf    []DriftRecord
	cur    DriftRecord
	err    error
}

// Next advances the cursor. It returns false when the scan is exhausted
// or a stage failed; check Err afterwards.
func (d *Drifts) Next(ctx context.Context) bool {
	if d.err != nil {
		return false
	}
	for len(d.buf) == 0 {
		if len(d.stages) == 0 {
			return false
		}
		stage := d.stages[0]
		d.stages = d.stages[1:]
		recs, err := stage(ctx)
		if err != nil {
			d.err = err
			return false
		}
		d.buf = recs
	}
	d.cur = d.buf[0]
	d.buf = d.buf[1:]
	return true
}

// Record returns the record at the cursor position.
func (d *Drifts) Record() DriftRecord { return d.cur }

// Err returns the first stage error, if any.
func (d *Drifts) Err() error { return d.err }

// Scan returns a cursor over every detected drift, in stage order:
// orphaned heads, missing hods, stale sub-department heads, mismatched
// member departments.
func (a *Auditor) Scan(ctx context.Context) *Drifts {
	return &Drifts{stages: []func(context.Context) ([]DriftRecord, error){
		a.scanOrphanedHeads,
		a.scanMissingHods,
		a.scanStaleSubHeads,
		a.scanMismatchedDepartments,
	}}
}

func (a *Auditor) scanOrphanedHeads(ctx context.Context) ([]DriftRecord, error) {
	heads, err := a.users.Find(ctx, bson.M{"role": roles.CollegeHead})
	if err != nil {
		return nil, fmt.Errorf("scan orphaned heads: %w", err)
	}
	var recs []DriftRecord
	for _, h := range heads {
		_, err := a.colleges.GetByHod(ctx, h.ID)
		if errors.Is(err, collegestore.ErrNotFound) {
			recs = append(recs, DriftRecord{
				Kind:   KindOrphanedHead,
				UserID: h.ID,
				Detail: fmt.Sprintf("college head %s has no college", h.Email),
			})
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (a *Auditor) scanMissingHods(ctx context.Context) ([]DriftRecord, error) {
	colleges, err := a.colleges.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan missing hods: %w", err)
	}
	var recs []DriftRecord
	for _, c := range colleges {
		if c.HodID.IsZero() {
			recs = append(recs, DriftRecord{
				Kind:      KindMissingHod,
				CollegeID: c.ID,
				Detail:    fmt.Sprintf("college %s has no hod", c.Name),
			})
			continue
		}
		_, err := a.users.GetByID(ctx, c.HodID)
		if errors.Is(err, userstore.ErrNotFound) {
			recs = append(recs, DriftRecord{
				Kind:      KindMissingHod,
				CollegeID: c.ID,
				UserID:    c.HodID,
				Detail:    fmt.Sprintf("college %s hod account is gone", c.Name),
			})
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (a *Auditor) scanStaleSubHeads(ctx context.Context) ([]DriftRecord, error) {
	colleges, err := a.colleges.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan stale sub heads: %w", err)
	}
	var recs []DriftRecord
	for _, c := range colleges {
		for _, sd := range c.SubDepartments {
			if !sd.Active() {
				continue
			}
			if sd.HeadUserID == nil {
				recs = append(recs, DriftRecord{
					Kind:      KindStaleSubHead,
					CollegeID: c.ID,
					SubID:     sd.ID,
					Detail:    fmt.Sprintf("%s / %s has no head", c.Name, sd.Name),
				})
				continue
			}
			head, err := a.users.GetByID(ctx, *sd.HeadUserID)
			if errors.Is(err, userstore.ErrNotFound) {
				recs = append(recs, DriftRecord{
					Kind:      KindStaleSubHead,
					CollegeID: c.ID,
					SubID:     sd.ID,
					UserID:    *sd.HeadUserID,
					Detail:    fmt.Sprintf("%s / %s head account is gone", c.Name, sd.Name),
				})
				continue
			}
			if err != nil {
				return nil, err
			}
			if head.Role != roles.SubjectHead || !a.affiliated(*head, c) {
				recs = append(recs, DriftRecord{
					Kind:      KindStaleSubHead,
					CollegeID: c.ID,
					SubID:     sd.ID,
					UserID:    head.ID,
					Detail:    fmt.Sprintf("%s / %s head %s no longer belongs here", c.Name, sd.Name, head.Email),
				})
			}
		}
	}
	return recs, nil
}

func (a *Auditor) scanMismatchedDepartments(ctx context.Context) ([]DriftRecord, error) {
	colleges, err := a.colleges.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("scan mismatched departments: %w", err)
	}
	var recs []DriftRecord
	for _, c := range colleges {
		members, err := a.users.Find(ctx, hierarchy.MemberFilter(c))
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.Role == roles.CollegeHead || m.Role == roles.SuperAdmin {
				continue
			}
			deptCI := text.Fold(m.Department)
			if deptCI == "" || deptCI == c.NameCI {
				// Legacy records carry the college name as department;
				// that is affiliation, not a sub-unit claim.
				continue
			}
			if !subDepartmentExists(c, deptCI) {
				recs = append(recs, DriftRecord{
					Kind:      KindMismatchedDepartment,
					CollegeID: c.ID,
					UserID:    m.ID,
					Detail:    fmt.Sprintf("%s claims department %q, unknown under %s", m.Email, m.Department, c.Name),
				})
			}
		}
	}
	return recs, nil
}

func subDepartmentExists(c models.College, deptCI string) bool {
	for _, sd := range c.SubDepartments {
		if sd.NameCI == deptCI {
			return true
		}
	}
	return false
}

func (a *Auditor) affiliated(u models.User, c models.College) bool {
	return (u.CollegeID != "" && u.CollegeID == c.CollegeID) ||
		u.CollegeNameCI == c.NameCI ||
		u.DepartmentCI == c.NameCI ||
		subDepartmentExists(c, u.DepartmentCI)
}
