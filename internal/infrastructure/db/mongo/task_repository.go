package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

const tasksCollection = "tasks"

// TaskRepository implements ports.TaskRepository on MongoDB. Status
// transitions put the precondition inside the update filter, so concurrent
// transitions on one task resolve to exactly one winner without a
// client-side lock.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}

	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTask
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TaskRepository) FindByTitle(ctx context.Context, title string) (*domain.Task, error) {
	return r.findOne(ctx, bson.M{"title": title})
}

func (r *TaskRepository) findOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	var t domain.Task
	if err := r.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) FindByAssignee(ctx context.Context, username string) ([]*domain.Task, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"assignee": username})
	if err != nil {
		return nil, fmt.Errorf("find tasks by assignee: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*domain.Task
	for cursor.Next(ctx) {
		var t domain.Task
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, cursor.Err()
}

// TransitionStatus atomically applies the status change when the current
// status still matches one of allowedFrom. Returns (nil, nil) when no
// document matched the precondition.
func (r *TaskRepository) TransitionStatus(
	ctx context.Context,
	title string,
	allowedFrom []domain.TaskStatus,
	next domain.TaskStatus,
	comment *domain.Comment,
) (*domain.Task, error) {
	filter := bson.M{
		"title":  title,
		"status": bson.M{"$in": allowedFrom},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     next,
			"updated_at": time.Now().UTC(),
		},
	}
	if comment != nil {
		if comment.ID == "" {
			comment.ID = primitive.NewObjectID().Hex()
		}
		update["$push"] = bson.M{"comments": comment}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // precondition no longer holds
		}
		return nil, fmt.Errorf("transition task: %w", err)
	}
	return &t, nil
}

// ApplyPatch merges the given fields into the task document. Title and
// assignee never appear in set; the service builds it from the patch.
func (r *TaskRepository) ApplyPatch(ctx context.Context, title string, set map[string]any) (*domain.Task, error) {
	fields := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Task
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"title": title}, bson.M{"$set": fields}, opts).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("patch task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByAssignee(ctx context.Context, username string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"assignee": username})
	if err != nil {
		return fmt.Errorf("delete tasks by assignee: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique title index and the assignee lookup index.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: indexUnique()},
		{Keys: bson.D{{Key: "assignee", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
