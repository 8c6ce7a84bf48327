// internal/app/store/colleges/collegestore_test.go
package collegestore

import (
	"errors"
	"strings"
	"testing"

	"github.com/acadhub/quizhub/internal/app/system/indexes"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/acadhub/quizhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateGeneratesCollegeID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	c, err := s.Create(ctx, models.College{Name: "  Tech Institute  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Name != "Tech Institute" {
		t.Errorf("name = %q, want trimmed", c.Name)
	}
	if !strings.HasPrefix(c.CollegeID, "CLG-") {
		t.Errorf("college_id = %q, want CLG- prefix", c.CollegeID)
	}
	if c.NameCI != "tech institute" {
		t.Errorf("name_ci = %q", c.NameCI)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	s := New(db)

	if _, err := s.Create(ctx, models.College{Name: "Science College"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(ctx, models.College{Name: "SCIENCE COLLEGE"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestCreateDuplicateCollegeID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	s := New(db)

	if _, err := s.Create(ctx, models.College{Name: "Alpha", CollegeID: "CLG-AAAA1111"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(ctx, models.College{Name: "Beta", CollegeID: "CLG-AAAA1111"})
	if !errors.Is(err, ErrDuplicateCollegeID) {
		t.Fatalf("err = %v, want ErrDuplicateCollegeID", err)
	}
}

func TestGetByNameCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	created, err := s.Create(ctx, models.College{Name: "Arts College"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByName(ctx, "arts COLLEGE")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got %v, want %v", got.ID, created.ID)
	}
}

func TestGetByHod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	hodID := primitive.NewObjectID()
	created, err := s.Create(ctx, models.College{Name: "Engineering", HodID: hodID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByHod(ctx, hodID)
	if err != nil {
		t.Fatalf("GetByHod: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got %v, want %v", got.ID, created.ID)
	}

	if _, err := s.GetByHod(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing hod err = %v, want ErrNotFound", err)
	}
}

func TestPatchNameKeepsCISync(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	c, err := s.Create(ctx, models.College{Name: "Old Name"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.PatchName(ctx, c.ID, "New Name"); err != nil {
		t.Fatalf("PatchName: %v", err)
	}

	got, err := s.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "New Name" || got.NameCI != "new name" {
		t.Errorf("name=%q name_ci=%q after rename", got.Name, got.NameCI)
	}
}

func TestAddSubDepartmentRejectsCaseInsensitiveDup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	c, err := s.Create(ctx, models.College{Name: "Science"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.AddSubDepartment(ctx, c.ID, models.SubDepartment{Name: "Maths"}); err != nil {
		t.Fatalf("AddSubDepartment: %v", err)
	}
	_, err = s.AddSubDepartment(ctx, c.ID, models.SubDepartment{Name: "  MATHS "})
	if !errors.Is(err, ErrDuplicateSubDepartment) {
		t.Fatalf("err = %v, want ErrDuplicateSubDepartment", err)
	}
}

func TestRemoveSubDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	c, err := s.Create(ctx, models.College{Name: "Science"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sd, err := s.AddSubDepartment(ctx, c.ID, models.SubDepartment{Name: "Physics"})
	if err != nil {
		t.Fatalf("AddSubDepartment: %v", err)
	}

	if err := s.RemoveSubDepartment(ctx, c.ID, sd.ID); err != nil {
		t.Fatalf("RemoveSubDepartment: %v", err)
	}
	got, err := s.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.SubDepartments) != 0 {
		t.Errorf("sub_departments = %d entries after removal", len(got.SubDepartments))
	}

	if err := s.RemoveSubDepartment(ctx, c.ID, sd.ID); !errors.Is(err, ErrSubDepartmentNotFound) {
		t.Errorf("second removal err = %v, want ErrSubDepartmentNotFound", err)
	}
	if err := s.RemoveSubDepartment(ctx, primitive.NewObjectID(), sd.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing college err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSubDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(db)

	c, err := s.Create(ctx, models.College{Name: "Science"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sd, err := s.AddSubDepartment(ctx, c.ID, models.SubDepartment{Name: "Chemistry"})
	if err != nil {
		t.Fatalf("AddSubDepartment: %v", err)
	}

	headID := primitive.NewObjectID()
	inactive := false
	err = s.UpdateSubDepartment(ctx, c.ID, sd.ID, bson.M{
		"head_user_id": headID,
		"is_active":    &inactive,
		"name":         "Applied Chemistry",
	})
	if err != nil {
		t.Fatalf("UpdateSubDepartment: %v", err)
	}

	got, err := s.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.SubDepartments) != 1 {
		t.Fatalf("sub_departments = %d entries", len(got.SubDepartments))
	}
	updated := got.SubDepartments[0]
	if updated.HeadUserID == nil || *updated.HeadUserID != headID {
		t.Errorf("head_user_id = %v, want %v", updated.HeadUserID, headID)
	}
	if updated.Active() {
		t.Error("sub-department still active after disable")
	}
	if updated.Name != "Applied Chemistry" || updated.NameCI != "applied chemistry" {
		t.Errorf("name=%q name_ci=%q after rename", updated.Name, updated.NameCI)
	}

	err = s.UpdateSubDepartment(ctx, c.ID, primitive.NewObjectID(), bson.M{"is_active": &inactive})
	if !errors.Is(err, ErrSubDepartmentNotFound) {
		t.Errorf("missing sub err = %v, want ErrSubDepartmentNotFound", err)
	}
}
