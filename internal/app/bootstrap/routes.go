// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/acadhub/quizhub/internal/app/audit"
	auditfeature "github.com/acadhub/quizhub/internal/app/features/audit"
	approvalsfeature "github.com/acadhub/quizhub/internal/app/features/approvals"
	authnfeature "github.com/acadhub/quizhub/internal/app/features/authn"
	collegesfeature "github.com/acadhub/quizhub/internal/app/features/colleges"
	healthfeature "github.com/acadhub/quizhub/internal/app/features/health"
	membersfeature "github.com/acadhub/quizhub/internal/app/features/members"
	"github.com/acadhub/quizhub/internal/app/hierarchy"
	"github.com/acadhub/quizhub/internal/app/lifecycle"
	collegestore "github.com/acadhub/quizhub/internal/app/store/colleges"
	quizstore "github.com/acadhub/quizhub/internal/app/store/quizzes"
	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/auth"
	"github.com/acadhub/quizhub/internal/app/system/mailer"
	"github.com/acadhub/quizhub/internal/app/system/password"
	"github.com/acadhub/quizhub/internal/app/system/tasks"
	"github.com/acadhub/quizhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// auditSweep is the background drift scan worker; started in
// BuildHandler, stopped in Shutdown.
var auditSweep *workers.AuditSweep

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. QuizHub wires the stores, the
// hierarchy resolver, the lifecycle engine, and the auditor here, then
// mounts a thin JSON feature router for each surface.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.QuizHubMongoDatabase
	users := userstore.New(db)
	colleges := collegestore.New(db)
	quizzes := quizstore.New(db)
	resolver := hierarchy.New(users, colleges, logger)

	var mail mailer.Sender
	if appCfg.MailSMTPHost != "" {
		mail = &mailer.SMTPSender{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}
	} else {
		mail = &mailer.LogSender{Log: logger}
	}

	engine := lifecycle.NewEngine(users, colleges, quizzes, resolver,
		password.Bcrypt{}, mail,
		lifecycle.Options{
			SiteName: appCfg.SiteName,
			LoginURL: appCfg.BaseURL + "/login",
			Reassign: lifecycle.ParseReassignPolicy(appCfg.SubDeptReassign),
		}, logger)

	auditor := audit.New(users, colleges, logger)

	if appCfg.AuditSweepInterval > 0 {
		auditSweep = workers.NewAuditSweep(
			tasks.DriftScanJob(auditor, logger, appCfg.AuditSweepInterval), logger)
		auditSweep.Start()
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.QuizHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authnHandler := authnfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/auth", authnfeature.Routes(authnHandler))

	// Registration approvals
	approvalsHandler := approvalsfeature.NewHandler(users, engine, logger)
	r.Mount("/approvals", approvalsfeature.Routes(approvalsHandler))

	// Tenant management: colleges, sub-departments, status, rosters
	collegesHandler := collegesfeature.NewHandler(colleges, resolver, engine, logger)
	r.Mount("/colleges", collegesfeature.Routes(collegesHandler))

	// Member management: block/unblock
	membersHandler := membersfeature.NewHandler(users, resolver, engine, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	// Hierarchy consistency audit
	auditHandler := auditfeature.NewHandler(auditor, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler))

	return r, nil
}
