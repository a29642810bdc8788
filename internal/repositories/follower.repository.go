package repositories

import (
	"context"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
)

type FollowerRepository interface {
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Create(ctx context.Context, followerID, followingID uuid.UUID) error
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
	ListFollowers(
		ctx context.Context,
		userID uuid.UUID,
		limit, offset int,
	) ([]FollowEntry, error)
	ListFollowing(
		ctx context.Context,
		userID uuid.UUID,
		limit, offset int,
	) ([]FollowEntry, error)
}

type followerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewFollowerRepository(db database.DB) FollowerRepository {
	return &followerRepository{
		db:  db,
		log: logger.New("followerRepository"),
	}
}

func (r *followerRepository) IsFollowing(
	ctx context.Context,
	followerID, followingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("IsFollowing")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&Follower{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check follow edge", err, "followingID", followingID)
	}

	return count > 0, nil
}

func (r *followerRepository) Create(
	ctx context.Context,
	followerID, followingID uuid.UUID,
) error {
	log := r.log.Function("Create")

	edge := Follower{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.SQLWithContext(ctx).Create(&edge).Error; err != nil {
		return log.Err("failed to create follow edge", err, "followingID", followingID)
	}

	return nil
}

func (r *followerRepository) Delete(
	ctx context.Context,
	followerID, followingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&Follower{})
	if result.Error != nil {
		return false, log.Err("failed to delete follow edge", result.Error, "followingID", followingID)
	}

	return result.RowsAffected > 0, nil
}

func (r *followerRepository) CountFollowers(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	log := r.log.Function("CountFollowers")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&Follower{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count followers", err, "userID", userID)
	}

	return count, nil
}

func (r *followerRepository) CountFollowing(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	log := r.log.Function("CountFollowing")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&Follower{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count following", err, "userID", userID)
	}

	return count, nil
}

// ListFollowers returns users following userID. IsFollowingYou reports whether
// userID follows them back.
func (r *followerRepository) ListFollowers(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]FollowEntry, error) {
	log := r.log.Function("ListFollowers")

	var entries []FollowEntry
	err := r.db.SQLWithContext(ctx).
		Table("followers").
		Select(`
			users.id AS user_id,
			users.username AS username,
			users.profile_img AS profile_img,
			EXISTS(
				SELECT 1 FROM followers back
				WHERE back.follower_id = ? AND back.following_id = users.id
			) AS is_following_you`, userID).
		Joins("JOIN users ON users.id = followers.follower_id").
		Where("followers.following_id = ?", userID).
		Order("followers.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, log.Err("failed to list followers", err, "userID", userID)
	}

	return entries, nil
}

// ListFollowing returns users that userID follows. IsFollowingYou reports
// whether they follow userID back.
func (r *followerRepository) ListFollowing(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]FollowEntry, error) {
	log := r.log.Function("ListFollowing")

	var entries []FollowEntry
	err := r.db.SQLWithContext(ctx).
		Table("followers").
		Select(`
			users.id AS user_id,
			users.username AS username,
			users.profile_img AS profile_img,
			EXISTS(
				SELECT 1 FROM followers back
				WHERE back.follower_id = users.id AND back.following_id = ?
			) AS is_following_you`, userID).
		Joins("JOIN users ON users.id = followers.following_id").
		Where("followers.follower_id = ?", userID).
		Order("followers.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, log.Err("failed to list following", err, "userID", userID)
	}

	return entries, nil
}
