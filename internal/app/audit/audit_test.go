// internal/app/audit/audit_test.go
package audit

import (
	"context"
	"testing"

	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newAuditor(db *mongo.Database) *Auditor {
	return New(userstore.New(db), collegestore.New(db), zap.NewNop())
}

func collect(t *testing.T, ctx context.Context, a *Auditor) []DriftRecord {
	t.Helper()
	var recs []DriftRecord
	cur := a.Scan(ctx)
	for cur.Next(ctx) {
		recs = append(recs, cur.Record())
	}
	if cur.Err() != nil {
		t.Fatalf("scan: %v", cur.Err())
	}
	return recs
}

func kinds(recs []DriftRecord) map[string]int {
	m := map[string]int{}
	for _, r := range recs {
		m[r.Kind]++
	}
	return m
}

func TestScanCleanHierarchyIsSilent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)

	head := f.CreateCollegeHead(ctx, "H", "h@example.com", "CLG-AAAA1111", "Tech Institute")
	college := f.CreateCollege(ctx, "Tech Institute", "CLG-AAAA1111", head.ID)
	sh := f.CreateSubjectHead(ctx, "SH", "sh@example.com", "CLG-AAAA1111", "Tech Institute", "Maths")
	f.AddSubDepartment(ctx, college.ID, "Maths", &sh.ID)
	f.CreateStudent(ctx, "S", "s@example.com", "CLG-AAAA1111", "Tech Institute", "Maths")

	if recs := collect(t, ctx, a); len(recs) != 0 {
		t.Fatalf("clean hierarchy produced drift: %+v", recs)
	}
}

func TestOrphanedHeadDetectAndRepair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)
	colleges := collegestore.New(db)

	orphan := f.CreateCollegeHead(ctx, "O", "o@example.com", "CLG-GONE0000", "Lost College")

	recs := collect(t, ctx, a)
	if kinds(recs)[KindOrphanedHead] != 1 {
		t.Fatalf("drift = %+v, want one orphaned_head", recs)
	}

	for _, r := range recs {
		if err := a.Repair(ctx, r); err != nil {
			t.Fatalf("Repair(%s): %v", r.Kind, err)
		}
	}

	// The college was recreated around the orphan.
	college, err := colleges.GetByHod(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("college not recreated: %v", err)
	}
	if college.Name != "Lost College" {
		t.Errorf("recreated college name = %q", college.Name)
	}

	if after := collect(t, ctx, a); len(after) != 0 {
		t.Errorf("drift reproduced after repair: %+v", after)
	}
}

func TestMissingHodDetectAndRepair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)
	colleges := collegestore.New(db)

	// College points at an hod document that does not exist; a second
	// head account for the same college survives.
	college := f.CreateCollege(ctx, "Tech Institute", "CLG-AAAA1111", primitive.NewObjectID())
	survivor := f.CreateCollegeHead(ctx, "S", "s@example.com", "CLG-AAAA1111", "Tech Institute")

	recs := collect(t, ctx, a)
	if kinds(recs)[KindMissingHod] != 1 {
		t.Fatalf("drift = %+v, want one missing_hod", recs)
	}

	for _, r := range recs {
		if err := a.Repair(ctx, r); err != nil {
			t.Fatalf("Repair(%s): %v", r.Kind, err)
		}
	}

	got, err := colleges.GetByID(ctx, college.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.HodID != survivor.ID {
		t.Errorf("hod = %v, want re-pointed to %v", got.HodID, survivor.ID)
	}
	if after := collect(t, ctx, a); len(after) != 0 {
		t.Errorf("drift reproduced after repair: %+v", after)
	}
}

func TestStaleSubHeadRepointsToMatchingSubjectHead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)
	colleges := collegestore.New(db)

	head := f.CreateCollegeHead(ctx, "H", "h@example.com", "CLG-AAAA1111", "Tech Institute")
	college := f.CreateCollege(ctx, "Tech Institute", "CLG-AAAA1111", head.ID)
	// Head pointer at a deleted account; a subject head for the same
	// department exists.
	gone := primitive.NewObjectID()
	f.AddSubDepartment(ctx, college.ID, "Maths", &gone)
	sh := f.CreateSubjectHead(ctx, "SH", "sh@example.com", "CLG-AAAA1111", "Tech Institute", "Maths")

	recs := collect(t, ctx, a)
	if kinds(recs)[KindStaleSubHead] != 1 {
		t.Fatalf("drift = %+v, want one stale_sub_head", recs)
	}
	for _, r := range recs {
		if err := a.Repair(ctx, r); err != nil {
			t.Fatalf("Repair(%s): %v", r.Kind, err)
		}
	}

	got, _ := colleges.GetByID(ctx, college.ID)
	if len(got.SubDepartments) != 1 || got.SubDepartments[0].HeadUserID == nil ||
		*got.SubDepartments[0].HeadUserID != sh.ID {
		t.Errorf("sub head not re-pointed: %+v", got.SubDepartments)
	}
	if after := collect(t, ctx, a); len(after) != 0 {
		t.Errorf("drift reproduced after repair: %+v", after)
	}
}

func TestHeadlessSubDepartmentDeactivatedWhenNoCandidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)
	colleges := collegestore.New(db)

	head := f.CreateCollegeHead(ctx, "H", "h@example.com", "CLG-AAAA1111", "Tech Institute")
	college := f.CreateCollege(ctx, "Tech Institute", "CLG-AAAA1111", head.ID)
	f.AddSubDepartment(ctx, college.ID, "Maths", nil)

	recs := collect(t, ctx, a)
	if kinds(recs)[KindStaleSubHead] != 1 {
		t.Fatalf("drift = %+v, want one stale_sub_head", recs)
	}
	for _, r := range recs {
		if err := a.Repair(ctx, r); err != nil {
			t.Fatalf("Repair(%s): %v", r.Kind, err)
		}
	}

	got, _ := colleges.GetByID(ctx, college.ID)
	if got.SubDepartments[0].Active() {
		t.Error("headless sub-department still active after repair")
	}
	if after := collect(t, ctx, a); len(after) != 0 {
		t.Errorf("drift reproduced after repair: %+v", after)
	}
}

func TestMismatchedDepartmentDetectAndRepair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)
	users := userstore.New(db)

	head := f.CreateCollegeHead(ctx, "H", "h@example.com", "CLG-AAAA1111", "Tech Institute")
	college := f.CreateCollege(ctx, "Tech Institute", "CLG-AAAA1111", head.ID)
	sh := f.CreateSubjectHead(ctx, "SH", "sh@example.com", "CLG-AAAA1111", "Tech Institute", "Maths")
	f.AddSubDepartment(ctx, college.ID, "Maths", &sh.ID)

	// Department claim that matches no sub-department.
	drifter := f.CreateStudent(ctx, "D", "d@example.com", "CLG-AAAA1111", "Tech Institute", "Alchemy")

	recs := collect(t, ctx, a)
	if kinds(recs)[KindMismatchedDepartment] != 1 {
		t.Fatalf("drift = %+v, want one mismatched_department", recs)
	}
	for _, r := range recs {
		if err := a.Repair(ctx, r); err != nil {
			t.Fatalf("Repair(%s): %v", r.Kind, err)
		}
	}

	got, err := users.GetByID(ctx, drifter.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Department != "" {
		t.Errorf("department = %q, want cleared", got.Department)
	}
	if got.CollegeID != "CLG-AAAA1111" {
		t.Errorf("college affiliation lost: %+v", got)
	}
	if after := collect(t, ctx, a); len(after) != 0 {
		t.Errorf("drift reproduced after repair: %+v", after)
	}
}

func TestScanCursorIsLazyAndNonRestartable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	a := newAuditor(db)

	f.CreateCollegeHead(ctx, "O1", "o1@example.com", "", "Lost One")
	f.CreateCollegeHead(ctx, "O2", "o2@example.com", "", "Lost Two")

	cur := a.Scan(ctx)
	if !cur.Next(ctx) {
		t.Fatalf("cursor empty, err = %v", cur.Err())
	}
	first := cur.Record()
	if first.Kind != KindOrphanedHead {
		t.Errorf("first record kind = %q", first.Kind)
	}

	var rest int
	for cur.Next(ctx) {
		rest++
	}
	if rest != 1 {
		t.Errorf("remaining records = %d, want 1", rest)
	}
	// Exhausted cursor stays exhausted.
	if cur.Next(ctx) {
		t.Error("cursor restarted after exhaustion")
	}

	// Update blocked-flag churn on users must not affect exhaustion.
	if _, err := db.Collection("users").UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"is_blocked": false}}); err != nil {
		t.Fatalf("touch users: %v", err)
	}
	if cur.Next(ctx) {
		t.Error("cursor restarted after data change")
	}
}
