// internal/app/store/quizzes/quizstore.go
//
// Quizzes, questions, and results live in three collections that all
// carry the denormalized college pointers of their creator. The store
// exposes the per-collection CRUD plus the college-scoped delete
// helpers the lifecycle cascade runs step by step.
package quizstore

import (
	"context"
	"errors"
	"time"

	"github.com/acadhub/quizhub/internal/app/system/htmlsanitize"
	"github.com/acadhub/quizhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("quiz not found")

type Store struct {
	quizzes   *mongo.Collection
	questions *mongo.Collection
	results   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		quizzes:   db.Collection("quizzes"),
		questions: db.Collection("questions"),
		results:   db.Collection("results"),
	}
}

// CollegeFilter matches documents affiliated with the college by any of
// its three denormalized pointers. Documents written before a rename or
// before the id backfill may carry only the name or department form.
func CollegeFilter(c models.College) bson.M {
	return bson.M{"$or": []bson.M{
		{"college_id": c.CollegeID},
		{"college_name_ci": c.NameCI},
		{"department_ci": c.NameCI},
	}}
}

func (s *Store) CreateQuiz(ctx context.Context, q models.Quiz) (models.Quiz, error) {
	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	q.Title = htmlsanitize.Sanitize(q.Title)
	q.CollegeNameCI = text.Fold(q.CollegeName)
	q.DepartmentCI = text.Fold(q.Department)
	q.CreatedAt = now
	q.UpdatedAt = now
	if _, err := s.quizzes.InsertOne(ctx, q); err != nil {
		return models.Quiz{}, err
	}
	return q, nil
}

func (s *Store) GetQuiz(ctx context.Context, id primitive.ObjectID) (models.Quiz, error) {
	var q models.Quiz
	err := s.quizzes.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Quiz{}, ErrNotFound
		}
		return models.Quiz{}, err
	}
	return q, nil
}

func (s *Store) FindQuizzes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Quiz, error) {
	cur, err := s.quizzes.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var quizzes []models.Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *Store) PatchQuiz(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.quizzes.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteQuiz(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.questions.DeleteMany(ctx, bson.M{"quiz_id": id}); err != nil {
		return err
	}
	if _, err := s.results.DeleteMany(ctx, bson.M{"quiz_id": id}); err != nil {
		return err
	}
	res, err := s.quizzes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateQuestion sanitizes question and option text before inserting.
func (s *Store) CreateQuestion(ctx context.Context, q models.Question) (models.Question, error) {
	q.ID = primitive.NewObjectID()
	q.Text = htmlsanitize.Sanitize(q.Text)
	for i := range q.Options {
		q.Options[i] = htmlsanitize.Sanitize(q.Options[i])
	}
	q.CreatedAt = time.Now().UTC()
	if _, err := s.questions.InsertOne(ctx, q); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

func (s *Store) FindQuestions(ctx context.Context, quizID primitive.ObjectID) ([]models.Question, error) {
	cur, err := s.questions.Find(ctx, bson.M{"quiz_id": quizID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var questions []models.Question
	if err := cur.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) CreateResult(ctx context.Context, r models.Result) (models.Result, error) {
	r.ID = primitive.NewObjectID()
	r.CollegeNameCI = text.Fold(r.CollegeNameCI)
	r.CreatedAt = time.Now().UTC()
	if _, err := s.results.InsertOne(ctx, r); err != nil {
		return models.Result{}, err
	}
	return r, nil
}

func (s *Store) FindResults(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Result, error) {
	cur, err := s.results.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Result
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// QuizIDsByCollege lists the ids of all quizzes affiliated with the
// college, for the question/result steps of a college cascade.
func (s *Store) QuizIDsByCollege(ctx context.Context, c models.College) ([]primitive.ObjectID, error) {
	cur, err := s.quizzes.Find(ctx, CollegeFilter(c),
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// DeleteQuizzesByCollege removes quizzes affiliated with the college.
func (s *Store) DeleteQuizzesByCollege(ctx context.Context, c models.College) (int64, error) {
	res, err := s.quizzes.DeleteMany(ctx, CollegeFilter(c))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteQuestionsByQuizIDs removes questions for the given quizzes.
func (s *Store) DeleteQuestionsByQuizIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.questions.DeleteMany(ctx, bson.M{"quiz_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteResultsByCollege removes results affiliated with the college,
// both by quiz membership and by the results' own denormalized fields.
func (s *Store) DeleteResultsByCollege(ctx context.Context, c models.College, quizIDs []primitive.ObjectID) (int64, error) {
	or := []bson.M{
		{"college_id": c.CollegeID},
		{"college_name_ci": c.NameCI},
	}
	if len(quizIDs) > 0 {
		or = append(or, bson.M{"quiz_id": bson.M{"$in": quizIDs}})
	}
	res, err := s.results.DeleteMany(ctx, bson.M{"$or": or})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
