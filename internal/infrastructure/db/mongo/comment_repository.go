package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskboard/assignment-system/internal/core/domain"
)

const commentsCollection = "comments"

// CommentRepository persists rework comments keyed by task id.
type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(commentsCollection)}
}

func (r *CommentRepository) Save(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) DeleteByTaskID(ctx context.Context, taskID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"task_id": taskID}); err != nil {
		return fmt.Errorf("delete comments by task: %w", err)
	}
	return nil
}
