// internal/app/features/colleges/handler_test.go
package colleges

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acadhub/quizhub/internal/app/hierarchy"
	"github.com/acadhub/quizhub/internal/app/lifecycle"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	quizstore "github.com/acadhub/quizhub/internal/app/store/quizzes"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/mailer"
	"github.com/acadhub/quizhub/internal/app/system/password"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/acadhub/quizhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *Handler {
	logger := zap.NewNop()
	users := userstore.New(db)
	colleges := collegestore.New(db)
	quizzes := quizstore.New(db)
	resolver := hierarchy.New(users, colleges, logger)
	engine := lifecycle.NewEngine(users, colleges, quizzes, resolver,
		password.Bcrypt{Cost: 4}, &mailer.LogSender{Log: logger}, lifecycle.Options{SiteName: "QuizHub"}, logger)
	return NewHandler(colleges, resolver, engine, logger)
}

// headOf returns a session user matching the head account of the given
// college, so handler-level scoping sees them as its head.
func headOf(c models.College) testutil.TestUser {
	return testutil.TestUser{
		ID:        c.HodID.Hex(),
		Name:      "Head " + c.Name,
		Email:     "head@" + c.CollegeID + ".example.com",
		Role:      "collegehead",
		CollegeID: c.CollegeID,
	}
}

func TestCollegeHeadScopedToOwnCollege(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	mineHead := f.CreateCollegeHead(ctx, "Mine Head", "mine@example.com", "CLG-MINE", "Mine Institute")
	mine := f.CreateCollege(ctx, "Mine Institute", "CLG-MINE", mineHead.ID)
	otherHead := f.CreateCollegeHead(ctx, "Other Head", "other@example.com", "CLG-OTHER", "Other Institute")
	other := f.CreateCollege(ctx, "Other Institute", "CLG-OTHER", otherHead.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/"+mine.ID.Hex(), headOf(mine))
	req = testutil.WithChiURLParam(req, "id", mine.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeView(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("own college: status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/"+other.ID.Hex(), headOf(mine))
	req = testutil.WithChiURLParam(req, "id", other.ID.Hex())
	rec = httptest.NewRecorder()
	h.ServeView(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign college: status = %d, want 403", rec.Code)
	}
}

func TestListScopesByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	aHead := f.CreateCollegeHead(ctx, "A Head", "a@example.com", "CLG-A", "Alpha Institute")
	a := f.CreateCollege(ctx, "Alpha Institute", "CLG-A", aHead.ID)
	bHead := f.CreateCollegeHead(ctx, "B Head", "b@example.com", "CLG-B", "Beta Institute")
	f.CreateCollege(ctx, "Beta Institute", "CLG-B", bHead.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.SuperAdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	var all []models.College
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("superadmin sees %d colleges, want 2", len(all))
	}

	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/", headOf(a))
	rec = httptest.NewRecorder()
	h.ServeList(rec, req)
	var own []models.College
	if err := json.NewDecoder(rec.Body).Decode(&own); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(own) != 1 || own[0].ID != a.ID {
		t.Fatalf("head list = %v, want only own college", own)
	}
}

func TestToggleStatusIsSuperAdminOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	head := f.CreateCollegeHead(ctx, "Head", "h@example.com", "CLG-T", "Toggle Institute")
	c := f.CreateCollege(ctx, "Toggle Institute", "CLG-T", head.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/toggle_status", headOf(c))
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleToggleStatus(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("head toggle: status = %d, want 403", rec.Code)
	}

	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/toggle_status", testutil.SuperAdminUser())
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleToggleStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin toggle: status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	got, err := collegestore.New(db).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("reload college: %v", err)
	}
	if got.IsActive {
		t.Fatal("college still active after toggle")
	}
}

func TestAddSubDepartment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	head := f.CreateCollegeHead(ctx, "Head", "h@example.com", "CLG-S", "Subject Institute")
	c := f.CreateCollege(ctx, "Subject Institute", "CLG-S", head.ID)

	body := `{"name":"Maths","head_full_name":"M Head","head_email":"mhead@example.com"}`
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/sub_departments", headOf(c))
	req.Body = httpBody(body)
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleAddSubDepartment(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}

	// Same name again, case folded, is a conflict.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/sub_departments", headOf(c))
	req.Body = httpBody(`{"name":"MATHS","head_email":"mhead@example.com"}`)
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleAddSubDepartment(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", rec.Code)
	}
}

func TestImportStudentsFromCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	head := f.CreateCollegeHead(ctx, "Head", "h@example.com", "CLG-I", "Import Institute")
	c := f.CreateCollege(ctx, "Import Institute", "CLG-I", head.ID)

	csv := "full name,email,department\nAda One,ada@example.com,Maths\nBob Two,bob@example.com,Physics\n"
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/import_students", headOf(c))
	req.Body = httpBody(csv)
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleImportStudents(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}

	students, err := userstore.New(db).Find(ctx, hierarchy.MemberFilter(c))
	if err != nil {
		t.Fatalf("find members: %v", err)
	}
	byEmail := map[string]bool{}
	for _, u := range students {
		byEmail[u.Email] = true
	}
	if !byEmail["ada@example.com"] || !byEmail["bob@example.com"] {
		t.Fatalf("imported students missing from roster: %v", byEmail)
	}
}

func TestImportStudentsRejectsBadRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)
	h := newHandler(db)

	head := f.CreateCollegeHead(ctx, "Head", "h@example.com", "CLG-R", "Reject Institute")
	c := f.CreateCollege(ctx, "Reject Institute", "CLG-R", head.ID)

	csv := "full name,email\nNo Email Here,not-an-email\n"
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/"+c.ID.Hex()+"/import_students", headOf(c))
	req.Body = httpBody(csv)
	req = testutil.WithChiURLParam(req, "id", c.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleImportStudents(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %q)", rec.Code, rec.Body.String())
	}
}

func httpBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
