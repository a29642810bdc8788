package repositories

import (
	"context"
	"errors"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListForReview(
		ctx context.Context,
		reviewID, viewerID uuid.UUID,
		limit, offset int,
	) ([]CommentWithAuthor, error)
	Delete(ctx context.Context, id uuid.UUID) error

	HasLike(ctx context.Context, tx *gorm.DB, userID, commentID uuid.UUID) (bool, error)
	CreateLike(ctx context.Context, tx *gorm.DB, userID, commentID uuid.UUID) error
	DeleteLike(ctx context.Context, tx *gorm.DB, userID, commentID uuid.UUID) error
	CountLikes(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) (int64, error)
}

type commentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCommentRepository(db database.DB) CommentRepository {
	return &commentRepository{
		db:  db,
		log: logger.New("commentRepository"),
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *Comment) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(comment).Error; err != nil {
		return log.Err("failed to create comment", err, "reviewID", comment.ReviewID)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	log := r.log.Function("GetByID")

	var comment Comment
	if err := r.db.SQLWithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get comment", err, "id", id)
	}

	return &comment, nil
}

// ListForReview returns a page of the comment thread, oldest first, with like
// counts and the viewer's own reaction resolved in the same query.
func (r *commentRepository) ListForReview(
	ctx context.Context,
	reviewID, viewerID uuid.UUID,
	limit, offset int,
) ([]CommentWithAuthor, error) {
	log := r.log.Function("ListForReview")

	var comments []CommentWithAuthor
	err := r.db.SQLWithContext(ctx).
		Table("comments").
		Select(`
			comments.*,
			users.username AS username,
			users.profile_img AS profile_img,
			(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count,
			EXISTS(
				SELECT 1 FROM comment_likes
				WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?
			) AS liked_by_user`, viewerID).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.review_id = ?", reviewID).
		Order("comments.created_at ASC").
		Limit(limit).
		Offset(offset).
		Scan(&comments).Error
	if err != nil {
		return nil, log.Err("failed to list comments", err, "reviewID", reviewID)
	}

	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("Delete")

	db := r.db.SQLWithContext(ctx)

	if err := db.Where("comment_id = ?", id).Delete(&CommentLike{}).Error; err != nil {
		return log.Err("failed to delete comment likes", err, "commentID", id)
	}

	if err := db.Delete(&Comment{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete comment", err, "commentID", id)
	}

	return nil
}

func (r *commentRepository) HasLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, commentID uuid.UUID,
) (bool, error) {
	log := r.log.Function("HasLike")

	var count int64
	err := tx.WithContext(ctx).
		Model(&CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check comment like", err, "commentID", commentID)
	}

	return count > 0, nil
}

func (r *commentRepository) CreateLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, commentID uuid.UUID,
) error {
	log := r.log.Function("CreateLike")

	like := CommentLike{UserID: userID, CommentID: commentID}
	if err := tx.WithContext(ctx).Create(&like).Error; err != nil {
		return log.Err("failed to create comment like", err, "commentID", commentID)
	}

	return nil
}

func (r *commentRepository) DeleteLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, commentID uuid.UUID,
) error {
	log := r.log.Function("DeleteLike")

	err := tx.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&CommentLike{}).Error
	if err != nil {
		return log.Err("failed to delete comment like", err, "commentID", commentID)
	}

	return nil
}

func (r *commentRepository) CountLikes(
	ctx context.Context,
	tx *gorm.DB,
	commentID uuid.UUID,
) (int64, error) {
	log := r.log.Function("CountLikes")

	var count int64
	err := tx.WithContext(ctx).
		Model(&CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count comment likes", err, "commentID", commentID)
	}

	return count, nil
}
