// internal/app/lifecycle/engine.go
//
// The lifecycle engine owns every state transition in the tenant
// hierarchy: approvals, tenant activation, blocking, sub-department
// management, and the college delete cascade. Cascades are sequences of
// independent single-document writes; a crash mid-cascade leaves
// partial state that the auditor reconciles or a rerun of the same
// idempotent operation completes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/acadhub/quizhub/internal/app/hierarchy"
	"github.com/acadhub/quizhub/internal/app/policy/lifecyclepolicy"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	quizstore "github.com/acadhub/quizhub/internal/app/store/quizzes"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/csvutil"
	"github.com/acadhub/quizhub/internal/app/system/mailer"
	"github.com/acadhub/quizhub/internal/app/system/password"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Options carries the engine's static configuration.
type Options struct {
	SiteName string
	LoginURL string
	Reassign ReassignPolicy
}

type Engine struct {
	users    *userstore.Store
	colleges *collegestore.Store
	quizzes  *quizstore.Store
	resolver *hierarchy.Resolver
	hasher   password.Hasher
	mail     mailer.Sender
	opts     Options
	log      *zap.Logger
}

func NewEngine(
	users *userstore.Store,
	colleges *collegestore.Store,
	quizzes *quizstore.Store,
	resolver *hierarchy.Resolver,
	hasher password.Hasher,
	mail mailer.Sender,
	opts Options,
	log *zap.Logger,
) *Engine {
	return &Engine{
		users:    users,
		colleges: colleges,
		quizzes:  quizzes,
		resolver: resolver,
		hasher:   hasher,
		mail:     mail,
		opts:     opts,
		log:      log,
	}
}

// ApproveExtras carries the optional inputs of an approval.
type ApproveExtras struct {
	// Password, when non-empty, becomes the account's credential;
	// otherwise one is generated.
	Password string
}

// ApproveUser moves a pending registration to approved. Approval is
// terminal: there is no reverse transition.
//
// Approving a college head additionally upserts the tenant: the college
// named on the user record is created if absent, or re-pointed at this
// user as head if present (last writer wins). A supplied password
// replaces the account credential; otherwise one is generated only when
// the account has none. Issued credentials are delivered by email;
// delivery failure is logged, never fatal.
func (e *Engine) ApproveUser(ctx context.Context, userID primitive.ObjectID, approverRole string, extras ApproveExtras) (*models.User, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if user.IsApproved {
		return nil, ErrAlreadyApproved
	}
	if !lifecyclepolicy.CanApprove(approverRole, user.Role) {
		return nil, ErrForbidden
	}

	set := bson.M{"is_approved": true}

	if user.Role == roles.CollegeHead {
		name := user.CollegeName
		if name == "" {
			name = user.Department
		}
		if name == "" {
			return nil, ErrMissingTenantName
		}

		college, err := e.colleges.GetByName(ctx, name)
		switch {
		case errors.Is(err, collegestore.ErrNotFound):
			college, err = e.colleges.Create(ctx, models.College{
				Name:      name,
				CollegeID: user.CollegeID,
				HodID:     user.ID,
				IsActive:  true,
			})
			if err != nil {
				if errors.Is(err, collegestore.ErrDuplicateName) || errors.Is(err, collegestore.ErrDuplicateCollegeID) {
					return nil, ErrDuplicateTenant
				}
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			// Existing tenant: re-point the head. Last writer wins.
			if err := e.colleges.Patch(ctx, college.ID, bson.M{"hod_id": user.ID}); err != nil {
				return nil, err
			}
		}

		set["is_admin"] = true
		for k, v := range userstore.HierarchyPatch(college.CollegeID, college.Name, college.Name) {
			set[k] = v
		}
	}

	// A supplied password always becomes the credential. Without one,
	// a credential is generated only for accounts that have none; a
	// self-registered applicant keeps the password they chose.
	plaintext := extras.Password
	if plaintext == "" && user.PasswordHash == "" {
		plaintext = password.Generate()
	}
	if plaintext != "" {
		digest, err := e.hasher.Hash(plaintext)
		if err != nil {
			return nil, fmt.Errorf("hash credential: %w", err)
		}
		set["password_hash"] = digest
	}

	if err := e.users.Patch(ctx, user.ID, set); err != nil {
		return nil, err
	}

	updated, err := e.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if plaintext != "" {
		e.sendCredential(ctx, *updated, plaintext)
	}
	return updated, nil
}

// ToggleTenantStatus flips the college's active flag and overwrites
// every member's blocked flag with the negation of the new state. The
// overwrite is blanket, not a merge: a member blocked for unrelated
// reasons is unblocked when the college reactivates. Accepted behavior.
//
// A single notification goes to the college head. Per-member write
// failures are logged and skipped; the returned step log records how
// far the cascade got.
func (e *Engine) ToggleTenantStatus(ctx context.Context, collegeID primitive.ObjectID) (StepLog, error) {
	var log StepLog

	college, err := e.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	newActive := !college.IsActive
	if err := e.colleges.Patch(ctx, college.ID, bson.M{"is_active": newActive}); err != nil {
		return nil, err
	}
	log.add("update_college", 1, nil)

	members, err := e.resolver.ListCollegeMembers(ctx, college)
	if err != nil {
		log.add("list_members", 0, err)
		return log, err
	}

	var flipped int64
	for _, m := range members {
		if m.Role == roles.SuperAdmin {
			continue
		}
		if err := e.users.Patch(ctx, m.ID, bson.M{"is_blocked": !newActive}); err != nil {
			e.log.Error("tenant cascade: member update failed",
				zap.String("college", college.Name),
				zap.String("user_id", m.ID.Hex()),
				zap.Error(err))
			continue
		}
		flipped++
	}
	log.add("cascade_members", flipped, nil)

	head, err := e.users.GetByID(ctx, college.HodID)
	if err != nil {
		e.log.Warn("tenant cascade: head not found for notification",
			zap.String("college", college.Name), zap.Error(err))
		log.add("notify_head", 0, err)
		return log, nil
	}
	notice := mailer.BuildTenantStatusEmail(head.Email, mailer.StatusEmailData{
		SiteName:    e.opts.SiteName,
		FullName:    head.FullName,
		CollegeName: college.Name,
		Active:      newActive,
	})
	if err := e.mail.Send(ctx, notice); err != nil {
		e.log.Error("tenant cascade: notification failed",
			zap.String("college", college.Name), zap.Error(err))
		log.add("notify_head", 0, err)
		return log, nil
	}
	log.add("notify_head", 1, nil)
	return log, nil
}

// BlockUser blocks the target, or toggles the whole tenant when the
// target heads a college.
func (e *Engine) BlockUser(ctx context.Context, targetID, actorID primitive.ObjectID) (StepLog, error) {
	return e.setBlocked(ctx, targetID, actorID, true)
}

// UnblockUser clears the target's blocked flag, or toggles the whole
// tenant when the target heads a college.
func (e *Engine) UnblockUser(ctx context.Context, targetID, actorID primitive.ObjectID) (StepLog, error) {
	return e.setBlocked(ctx, targetID, actorID, false)
}

func (e *Engine) setBlocked(ctx context.Context, targetID, actorID primitive.ObjectID, blocked bool) (StepLog, error) {
	target, err := e.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	actor, err := e.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if !lifecyclepolicy.CanBlock(actor.Role, target.Role) {
		return nil, ErrForbidden
	}
	if actor.Role == roles.CollegeHead || actor.Role == roles.SubjectHead {
		ok, err := e.sameCollege(ctx, actor, target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	// Blocking a college head always cascades to the whole tenant.
	if target.Role == roles.CollegeHead {
		college, err := e.colleges.GetByHod(ctx, target.ID)
		if err != nil {
			if errors.Is(err, collegestore.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if college.IsActive != blocked {
			// Already in the requested state.
			var log StepLog
			log.add("noop", 0, nil)
			return log, nil
		}
		return e.ToggleTenantStatus(ctx, college.ID)
	}

	if err := e.users.Patch(ctx, target.ID, bson.M{"is_blocked": blocked}); err != nil {
		return nil, err
	}
	var log StepLog
	log.add("update_user", 1, nil)
	return log, nil
}

func (e *Engine) sameCollege(ctx context.Context, actor, target *models.User) (bool, error) {
	am, err := e.resolver.Resolve(ctx, *actor)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if am.College == nil {
		return false, nil
	}
	tm, err := e.resolver.Resolve(ctx, *target)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return tm.College != nil && tm.College.ID == am.College.ID, nil
}

// SubDepartmentSpec describes a new sub-department and its head.
type SubDepartmentSpec struct {
	Name         string
	HeadFullName string
	HeadEmail    string
	Password     string // optional; generated when empty
}

// CreateSubDepartment adds a sub-department to the college and resolves
// its heading account by email. An existing account with that email is
// repurposed under the configured ReassignPolicy: role forced to
// subject head, hierarchy pointers and credential overwritten.
func (e *Engine) CreateSubDepartment(ctx context.Context, collegeID primitive.ObjectID, spec SubDepartmentSpec) (models.SubDepartment, *models.User, error) {
	college, err := e.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return models.SubDepartment{}, nil, ErrNotFound
		}
		return models.SubDepartment{}, nil, err
	}

	// Validate the name before touching any account: a duplicate must
	// leave no partial state behind.
	nameCI := text.Fold(spec.Name)
	for _, sd := range college.SubDepartments {
		if sd.NameCI == nameCI {
			return models.SubDepartment{}, nil, ErrDuplicateSubUnit
		}
	}

	plaintext := spec.Password
	if plaintext == "" {
		plaintext = password.Generate()
	}
	digest, err := e.hasher.Hash(plaintext)
	if err != nil {
		return models.SubDepartment{}, nil, fmt.Errorf("hash credential: %w", err)
	}

	head, err := e.users.GetByEmail(ctx, spec.HeadEmail)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		created, err := e.users.Create(ctx, models.User{
			FullName:     spec.HeadFullName,
			Email:        spec.HeadEmail,
			PasswordHash: digest,
			Role:         roles.SubjectHead,
			CollegeID:    college.CollegeID,
			CollegeName:  college.Name,
			Department:   spec.Name,
			IsApproved:   true,
		})
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return models.SubDepartment{}, nil, ErrDuplicateIdentity
			}
			return models.SubDepartment{}, nil, err
		}
		head = &created
	case err != nil:
		return models.SubDepartment{}, nil, err
	default:
		if e.opts.Reassign == ReassignUnaffiliated &&
			head.CollegeID != "" && head.CollegeID != college.CollegeID {
			return models.SubDepartment{}, nil, ErrAccountAffiliated
		}
		set := bson.M{
			"role":          roles.SubjectHead,
			"password_hash": digest,
			"is_approved":   true,
		}
		for k, v := range userstore.HierarchyPatch(college.CollegeID, college.Name, spec.Name) {
			set[k] = v
		}
		if err := e.users.Patch(ctx, head.ID, set); err != nil {
			return models.SubDepartment{}, nil, err
		}
		head, err = e.users.GetByID(ctx, head.ID)
		if err != nil {
			return models.SubDepartment{}, nil, err
		}
	}

	sd, err := e.colleges.AddSubDepartment(ctx, college.ID, models.SubDepartment{
		Name:       spec.Name,
		HeadUserID: &head.ID,
	})
	if err != nil {
		if errors.Is(err, collegestore.ErrDuplicateSubDepartment) {
			return models.SubDepartment{}, nil, ErrDuplicateSubUnit
		}
		return models.SubDepartment{}, nil, err
	}

	e.sendCredential(ctx, *head, plaintext)
	return sd, head, nil
}

// RemoveSubDepartment removes the embedded entry only. The heading
// account is untouched, unlike DeleteCollege which cascades to users.
func (e *Engine) RemoveSubDepartment(ctx context.Context, collegeID, subID primitive.ObjectID) error {
	err := e.colleges.RemoveSubDepartment(ctx, collegeID, subID)
	if errors.Is(err, collegestore.ErrNotFound) || errors.Is(err, collegestore.ErrSubDepartmentNotFound) {
		return ErrNotFound
	}
	return err
}

// DeleteCollege removes the tenant and everything reachable from it:
// questions and results first, then quizzes, then users, then the
// college document. Reachability uses the same OR-matching rule as
// member listing so legacy records are swept too. Irreversible.
func (e *Engine) DeleteCollege(ctx context.Context, collegeID primitive.ObjectID) (StepLog, error) {
	var log StepLog

	college, err := e.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	quizIDs, err := e.quizzes.QuizIDsByCollege(ctx, college)
	if err != nil {
		log.add("list_quizzes", 0, err)
		return log, err
	}

	n, err := e.quizzes.DeleteQuestionsByQuizIDs(ctx, quizIDs)
	log.add("delete_questions", n, err)
	if err != nil {
		return log, err
	}
	n, err = e.quizzes.DeleteResultsByCollege(ctx, college, quizIDs)
	log.add("delete_results", n, err)
	if err != nil {
		return log, err
	}
	n, err = e.quizzes.DeleteQuizzesByCollege(ctx, college)
	log.add("delete_quizzes", n, err)
	if err != nil {
		return log, err
	}
	n, err = e.users.DeleteMatching(ctx, hierarchy.MemberFilter(college))
	log.add("delete_users", n, err)
	if err != nil {
		return log, err
	}
	n, err = e.colleges.Delete(ctx, college.ID)
	log.add("delete_college", n, err)
	if err != nil {
		return log, err
	}

	e.log.Info("college deleted",
		zap.String("college", college.Name),
		zap.String("college_id", college.CollegeID))
	return log, nil
}

// ImportStudents creates pre-approved student accounts from normalized
// roster rows. Rows whose email is already taken are skipped and
// recorded in the step log.
func (e *Engine) ImportStudents(ctx context.Context, collegeID primitive.ObjectID, rows []csvutil.StudentCSVRow) (StepLog, error) {
	var log StepLog

	college, err := e.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, collegestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var created int64
	for _, row := range rows {
		digest, err := e.hasher.Hash(password.Generate())
		if err != nil {
			return log, fmt.Errorf("hash credential: %w", err)
		}
		_, err = e.users.Create(ctx, models.User{
			FullName:     row.FullName,
			Email:        row.Email,
			PasswordHash: digest,
			Role:         roles.Student,
			CollegeID:    college.CollegeID,
			CollegeName:  college.Name,
			Department:   row.Department,
			IsApproved:   true,
		})
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				log.add("skip_duplicate:"+row.Email, 0, nil)
				continue
			}
			log.add("create:"+row.Email, 0, err)
			return log, err
		}
		created++
	}
	log.add("create_students", created, nil)
	return log, nil
}

func (e *Engine) sendCredential(ctx context.Context, u models.User, plaintext string) {
	msg := mailer.BuildCredentialEmail(mailer.CredentialEmailData{
		SiteName:    e.opts.SiteName,
		FullName:    u.FullName,
		CollegeName: u.CollegeName,
		Email:       u.Email,
		Password:    plaintext,
		LoginURL:    e.opts.LoginURL,
	})
	if err := e.mail.Send(ctx, msg); err != nil {
		e.log.Error("credential delivery failed",
			zap.String("email", u.Email), zap.Error(err))
	}
}
