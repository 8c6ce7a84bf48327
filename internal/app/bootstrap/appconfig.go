// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to QuizHub. The
// struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Email/SMTP configuration. An empty host routes notifications to
	// the log instead of a relay.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for login links in credential emails.
	BaseURL  string
	SiteName string

	// SuperAdmin bootstrap: promotes/creates this account on startup.
	SuperAdminEmail string

	// Hierarchy audit sweep.
	AuditSweepInterval time.Duration

	// Sub-department head upsert policy: "always" or "unaffiliated".
	SubDeptReassign string
}
