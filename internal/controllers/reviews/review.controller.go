package reviewController

import (
	"context"
	"strings"
	"wellread/internal/apperrors"
	bookController "wellread/internal/controllers/books"
	notificationController "wellread/internal/controllers/notifications"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewController struct {
	reviewRepo       repositories.ReviewRepository
	reviewedBookRepo repositories.ReviewedBookRepository
	books            bookController.BookControllerInterface
	notifications    notificationController.NotificationControllerInterface
	transaction      services.TransactionExecutor
	db               database.DB
	log              logger.Logger
}

type ReviewControllerInterface interface {
	Create(
		ctx context.Context,
		user *User,
		bookKey string,
		request CreateReviewRequest,
	) (*Review, error)
	Update(
		ctx context.Context,
		user *User,
		reviewID uuid.UUID,
		request CreateReviewRequest,
	) (*Review, error)
	Delete(ctx context.Context, user *User, reviewID uuid.UUID) error
	GetByBook(ctx context.Context, bookKey string) ([]ReviewWithBook, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]ReviewWithBook, error)
	GetStats(ctx context.Context, bookKey string) (BookStats, error)

	Like(ctx context.Context, user *User, reviewID uuid.UUID) error
	Unlike(ctx context.Context, user *User, reviewID uuid.UUID) error
	RemoveLike(ctx context.Context, user *User, reviewID uuid.UUID) error
	RemoveUnlike(ctx context.Context, user *User, reviewID uuid.UUID) error
	GetLikeStatus(ctx context.Context, user *User, reviewID uuid.UUID) (ReviewLikeStatus, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	books bookController.BookControllerInterface,
	notifications notificationController.NotificationControllerInterface,
	db database.DB,
) ReviewControllerInterface {
	return &ReviewController{
		reviewRepo:       repos.Review,
		reviewedBookRepo: repos.ReviewedBook,
		books:            books,
		notifications:    notifications,
		transaction:      services.Transaction,
		db:               db,
		log:              logger.New("reviewController"),
	}
}

// Create resolves the book, snapshots its metadata, and inserts the review.
// The one-review-per-user-per-book rule is checked inside the transaction and
// backed by the unique index for concurrent duplicates.
func (rc *ReviewController) Create(
	ctx context.Context,
	user *User,
	bookKey string,
	request CreateReviewRequest,
) (*Review, error) {
	log := rc.log.Function("Create")

	if request.Rating < minRating || request.Rating > maxRating {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(request.ReviewText) == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "review text is required")
	}

	details, err := rc.books.Resolve(ctx, bookKey)
	if err != nil {
		return nil, err
	}

	review := &Review{
		UserID:     user.ID,
		BookID:     details.BookKey,
		BookSource: details.Source,
		Rating:     request.Rating,
		ReviewText: request.ReviewText,
	}

	err = rc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := rc.reviewRepo.GetByUserAndBook(ctx, tx, user.ID, details.BookKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return log.ErrorWithType(
				apperrors.ErrConflict,
				"user has already reviewed this book",
				"bookKey", details.BookKey,
			)
		}

		snapshot := &ReviewedBook{
			BookKey:     details.BookKey,
			Title:       details.Title,
			Author:      details.Author,
			CoverImg:    details.CoverImg,
			Genre:       details.Genre,
			Description: details.Description,
			Source:      details.Source,
		}
		if err := rc.reviewedBookRepo.Insert(ctx, tx, snapshot); err != nil {
			return err
		}

		return rc.reviewRepo.Create(ctx, tx, review)
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, log.ErrorWithType(
				apperrors.ErrConflict,
				"user has already reviewed this book",
				"bookKey", details.BookKey,
			)
		}
		return nil, err
	}

	log.Info("Review created", "reviewID", review.ID, "bookKey", details.BookKey)
	return review, nil
}

func (rc *ReviewController) Update(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
	request CreateReviewRequest,
) (*Review, error) {
	log := rc.log.Function("Update")

	if request.Rating < minRating || request.Rating > maxRating {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(request.ReviewText) == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "review text is required")
	}

	review, err := rc.getOwnedReview(ctx, user, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = request.Rating
	review.ReviewText = request.ReviewText

	if err := rc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete removes the review and, when it was the last review for the book,
// the materialized snapshot along with it.
func (rc *ReviewController) Delete(ctx context.Context, user *User, reviewID uuid.UUID) error {
	log := rc.log.Function("Delete")

	review, err := rc.getOwnedReview(ctx, user, reviewID)
	if err != nil {
		return err
	}

	err = rc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := rc.reviewRepo.Delete(ctx, tx, review.ID); err != nil {
			return err
		}

		remaining, err := rc.reviewRepo.CountForBook(ctx, tx, review.BookID, review.BookSource)
		if err != nil {
			return err
		}

		if remaining == 0 {
			return rc.reviewedBookRepo.Delete(ctx, tx, review.BookID, review.BookSource)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info("Review deleted", "reviewID", reviewID, "bookKey", review.BookID)
	return nil
}

func (rc *ReviewController) GetByBook(
	ctx context.Context,
	bookKey string,
) ([]ReviewWithBook, error) {
	return rc.reviewRepo.GetByBook(ctx, bookKey)
}

func (rc *ReviewController) GetByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]ReviewWithBook, error) {
	return rc.reviewRepo.GetByUser(ctx, userID)
}

func (rc *ReviewController) GetStats(ctx context.Context, bookKey string) (BookStats, error) {
	return rc.reviewRepo.Stats(ctx, bookKey)
}

// Like records a like, removing any standing unlike in the same transaction
// so the two reactions stay mutually exclusive under concurrency.
func (rc *ReviewController) Like(ctx context.Context, user *User, reviewID uuid.UUID) error {
	log := rc.log.Function("Like")

	review, err := rc.getReview(ctx, reviewID)
	if err != nil {
		return err
	}

	err = rc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := rc.reviewRepo.DeleteUnlike(ctx, tx, user.ID, reviewID); err != nil {
			return err
		}
		return rc.reviewRepo.CreateLike(ctx, tx, user.ID, reviewID)
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return log.ErrorWithType(apperrors.ErrConflict, "review already liked", "reviewID", reviewID)
		}
		return err
	}

	if review.UserID != user.ID {
		targetType := "review"
		targetID := reviewID.String()
		rc.notifications.Notify(ctx, notificationController.NotificationInput{
			SenderID:   user.ID,
			ReceiverID: review.UserID,
			Type:       NotificationLikeReview,
			Message:    user.Username + " liked your review",
			TargetType: &targetType,
			TargetID:   &targetID,
		})
	}

	return nil
}

func (rc *ReviewController) Unlike(ctx context.Context, user *User, reviewID uuid.UUID) error {
	log := rc.log.Function("Unlike")

	review, err := rc.getReview(ctx, reviewID)
	if err != nil {
		return err
	}

	err = rc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := rc.reviewRepo.DeleteLike(ctx, tx, user.ID, reviewID); err != nil {
			return err
		}
		return rc.reviewRepo.CreateUnlike(ctx, tx, user.ID, reviewID)
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return log.ErrorWithType(apperrors.ErrConflict, "review already unliked", "reviewID", reviewID)
		}
		return err
	}

	if review.UserID != user.ID {
		targetType := "review"
		targetID := reviewID.String()
		rc.notifications.Notify(ctx, notificationController.NotificationInput{
			SenderID:   user.ID,
			ReceiverID: review.UserID,
			Type:       NotificationUnlikeReview,
			Message:    user.Username + " unliked your review",
			TargetType: &targetType,
			TargetID:   &targetID,
		})
	}

	return nil
}

func (rc *ReviewController) RemoveLike(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
) error {
	log := rc.log.Function("RemoveLike")

	deleted, err := rc.reviewRepo.DeleteLike(ctx, rc.db.SQL, user.ID, reviewID)
	if err != nil {
		return err
	}
	if !deleted {
		return log.ErrorWithType(apperrors.ErrNotFound, "like not found", "reviewID", reviewID)
	}

	return nil
}

func (rc *ReviewController) RemoveUnlike(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
) error {
	log := rc.log.Function("RemoveUnlike")

	deleted, err := rc.reviewRepo.DeleteUnlike(ctx, rc.db.SQL, user.ID, reviewID)
	if err != nil {
		return err
	}
	if !deleted {
		return log.ErrorWithType(apperrors.ErrNotFound, "unlike not found", "reviewID", reviewID)
	}

	return nil
}

func (rc *ReviewController) GetLikeStatus(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
) (ReviewLikeStatus, error) {
	return rc.reviewRepo.GetLikeStatus(ctx, user.ID, reviewID)
}

func (rc *ReviewController) getReview(ctx context.Context, reviewID uuid.UUID) (*Review, error) {
	log := rc.log.Function("getReview")

	review, err := rc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "review not found", "reviewID", reviewID)
	}

	return review, nil
}

func (rc *ReviewController) getOwnedReview(
	ctx context.Context,
	user *User,
	reviewID uuid.UUID,
) (*Review, error) {
	log := rc.log.Function("getOwnedReview")

	review, err := rc.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != user.ID {
		return nil, log.ErrorWithType(
			apperrors.ErrForbidden,
			"review belongs to another user",
			"reviewID", reviewID,
		)
	}

	return review, nil
}
