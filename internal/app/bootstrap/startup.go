// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/acadhub/quizhub/internal/app/store/users"
	"github.com/acadhub/quizhub/internal/app/system/password"
	"github.com/acadhub/quizhub/internal/app/system/roles"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail == "" {
		return nil
	}
	return EnsureSuperAdmin(ctx, deps.QuizHubMongoDatabase, appCfg.SuperAdminEmail, logger)
}

// EnsureSuperAdmin promotes the account with the given email to
// superadmin, creating it with a generated credential if absent. The
// generated credential is logged once so the operator can sign in and
// change it.
func EnsureSuperAdmin(ctx context.Context, db *mongo.Database, email string, logger *zap.Logger) error {
	users := userstore.New(db)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == roles.SuperAdmin && existing.IsApproved && !existing.IsBlocked {
			return nil
		}
		logger.Info("promoting existing account to superadmin",
			zap.String("email", existing.Email))
		return users.Patch(ctx, existing.ID, bson.M{
			"role":        roles.SuperAdmin,
			"is_admin":    true,
			"is_approved": true,
			"is_blocked":  false,
		})
	case errors.Is(err, userstore.ErrNotFound):
		plaintext := password.Generate()
		digest, err := password.Bcrypt{}.Hash(plaintext)
		if err != nil {
			return err
		}
		_, err = users.Create(ctx, models.User{
			FullName:     "Super Admin",
			Email:        email,
			PasswordHash: digest,
			Role:         roles.SuperAdmin,
			IsApproved:   true,
			IsAdmin:      true,
		})
		if err != nil {
			return err
		}
		logger.Info("created superadmin account",
			zap.String("email", email),
			zap.String("initial_password", plaintext))
		return nil
	default:
		return err
	}
}
