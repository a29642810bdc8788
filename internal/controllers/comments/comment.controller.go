package commentController

import (
	"context"
	"strings"
	"wellread/internal/apperrors"
	notificationController "wellread/internal/controllers/notifications"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const commentPageSize = 20

type CommentController struct {
	commentRepo   repositories.CommentRepository
	reviewRepo    repositories.ReviewRepository
	notifications notificationController.NotificationControllerInterface
	transaction   services.TransactionExecutor
	db            database.DB
	log           logger.Logger
}

type CommentControllerInterface interface {
	Post(ctx context.Context, user *User, reviewID uuid.UUID, text string) (*Comment, error)
	GetComments(
		ctx context.Context,
		viewerID, reviewID uuid.UUID,
		page int,
	) ([]CommentWithAuthor, error)
	ToggleLike(ctx context.Context, user *User, commentID uuid.UUID) (CommentLikeResult, error)
	Delete(ctx context.Context, user *User, commentID uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	notifications notificationController.NotificationControllerInterface,
	db database.DB,
) CommentControllerInterface {
	return &CommentController{
		commentRepo:   repos.Comment,
		reviewRepo:    repos.Review,
		notifications: notifications,
		transaction:   services.Transaction,
		db:            db,
		log:           logger.New("commentController"),
	}
}

func (cc *CommentController) Post(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
	text string,
) (*Comment, error) {
	log := cc.log.Function("Post")

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "comment text is required")
	}

	review, err := cc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "review not found", "reviewID", reviewID)
	}

	comment := &Comment{
		ReviewID: reviewID,
		UserID:   user.ID,
		Text:     text,
	}

	if err := cc.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	log.Info("Comment posted", "commentID", comment.ID, "reviewID", reviewID)
	return comment, nil
}

func (cc *CommentController) GetComments(
	ctx context.Context,
	viewerID, reviewID uuid.UUID,
	page int,
) ([]CommentWithAuthor, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * commentPageSize

	return cc.commentRepo.ListForReview(ctx, reviewID, viewerID, commentPageSize, offset)
}

// ToggleLike flips the caller's reaction to a comment. The new state and the
// like count are computed inside one transaction so the returned pair is
// consistent even under concurrent toggles.
func (cc *CommentController) ToggleLike(
	ctx context.Context,
	user *User,
	commentID uuid.UUID,
) (CommentLikeResult, error) {
	log := cc.log.Function("ToggleLike")

	comment, err := cc.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return CommentLikeResult{}, err
	}
	if comment == nil {
		return CommentLikeResult{}, log.ErrorWithType(
			apperrors.ErrNotFound,
			"comment not found",
			"commentID", commentID,
		)
	}

	var result CommentLikeResult
	err = cc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		liked, err := cc.commentRepo.HasLike(ctx, tx, user.ID, commentID)
		if err != nil {
			return err
		}

		if liked {
			if err := cc.commentRepo.DeleteLike(ctx, tx, user.ID, commentID); err != nil {
				return err
			}
			result.Liked = false
		} else {
			if err := cc.commentRepo.CreateLike(ctx, tx, user.ID, commentID); err != nil {
				return err
			}
			result.Liked = true
		}

		count, err := cc.commentRepo.CountLikes(ctx, tx, commentID)
		if err != nil {
			return err
		}
		result.LikesCount = int(count)

		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return CommentLikeResult{}, log.ErrorWithType(
				apperrors.ErrConflict,
				"comment like already recorded",
				"commentID", commentID,
			)
		}
		return CommentLikeResult{}, err
	}

	if result.Liked && comment.UserID != user.ID {
		targetType := "comment"
		targetID := commentID.String()
		cc.notifications.Notify(ctx, notificationController.NotificationInput{
			SenderID:   user.ID,
			ReceiverID: comment.UserID,
			Type:       NotificationLikeComment,
			Message:    user.Username + " liked your comment",
			TargetType: &targetType,
			TargetID:   &targetID,
		})
	}

	return result, nil
}

func (cc *CommentController) Delete(
	ctx context.Context,
	user *User,
	commentID uuid.UUID,
) error {
	log := cc.log.Function("Delete")

	comment, err := cc.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return log.ErrorWithType(apperrors.ErrNotFound, "comment not found", "commentID", commentID)
	}

	if comment.UserID != user.ID {
		return log.ErrorWithType(
			apperrors.ErrForbidden,
			"comment belongs to another user",
			"commentID", commentID,
		)
	}

	if err := cc.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}

	log.Info("Comment deleted", "commentID", commentID)
	return nil
}
