// Package indexes reconciles the desired index set for every
// collection at startup. Each ensure* function is idempotent; errors
// are aggregated so any problem is visible and startup can fail fast.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup (and by store tests that need the
// unique indexes in place).
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureColleges(ctx, db); err != nil {
		problems = append(problems, "colleges: "+err.Error())
	}
	if err := ensureQuizzes(ctx, db); err != nil {
		problems = append(problems, "quizzes: "+err.Error())
	}
	if err := ensureQuestions(ctx, db); err != nil {
		problems = append(problems, "questions: "+err.Error())
	}
	if err := ensureResults(ctx, db); err != nil {
		problems = append(problems, "results: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameUnique(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet makes the collection's indexes match the desired set:
// reuse when keys and uniqueness agree, drop and recreate when options
// drifted, create when absent. Surplus indexes are left alone.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range desired {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameUnique(unique, ex.Unique) {
				continue // reuse
			}
			// Options drifted (e.g. upgrading to unique): drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique != nil && *unique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all users (global, cross-tenant).
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Member listing by opaque tenant id.
		{
			Keys:    bson.D{{Key: "college_id", Value: 1}},
			Options: options.Index().SetName("idx_users_collegeid"),
		},
		// Legacy name-match lookups used by the compatibility OR filter.
		{
			Keys:    bson.D{{Key: "college_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_collegenameci"),
		},
		{
			Keys:    bson.D{{Key: "department_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_departmentci"),
		},
		// Pending-approval screens list by role + approval flag.
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "is_approved", Value: 1}},
			Options: options.Index().SetName("idx_users_role_approved"),
		},
	})
}

func ensureColleges(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("colleges")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Tenant names are unique case-insensitively.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_colleges_nameci"),
		},
		// Opaque tenant id is unique.
		{
			Keys:    bson.D{{Key: "college_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_colleges_collegeid"),
		},
		{
			Keys:    bson.D{{Key: "hod_id", Value: 1}},
			Options: options.Index().SetName("idx_colleges_hod"),
		},
	})
}

func ensureQuizzes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("quizzes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "college_id", Value: 1}},
			Options: options.Index().SetName("idx_quizzes_collegeid"),
		},
		{
			Keys:    bson.D{{Key: "college_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_quizzes_collegenameci"),
		},
		{
			Keys:    bson.D{{Key: "department_ci", Value: 1}},
			Options: options.Index().SetName("idx_quizzes_departmentci"),
		},
	})
}

func ensureQuestions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("questions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "quiz_id", Value: 1}},
			Options: options.Index().SetName("idx_questions_quiz"),
		},
	})
}

func ensureResults(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("results")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "quiz_id", Value: 1}},
			Options: options.Index().SetName("idx_results_quiz"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetName("idx_results_student"),
		},
		{
			Keys:    bson.D{{Key: "college_id", Value: 1}},
			Options: options.Index().SetName("idx_results_collegeid"),
		},
	})
}
