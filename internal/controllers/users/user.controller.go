package userController

import (
	"context"
	"strings"
	"wellread/internal/apperrors"
	notificationController "wellread/internal/controllers/notifications"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"

	"github.com/google/uuid"

	"wellread/internal/utils"
)

const (
	userSearchLimit = 8
	followPageSize  = 20
)

type UserController struct {
	userRepo      repositories.UserRepository
	followerRepo  repositories.FollowerRepository
	notifications notificationController.NotificationControllerInterface
	db            database.DB
	log           logger.Logger
}

// ProfileResponse is the public profile together with its social counts.
type ProfileResponse struct {
	UserProfile
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

type UserControllerInterface interface {
	GetProfile(ctx context.Context, viewerID, userID uuid.UUID) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, user *User, request ProfileUpdateRequest) (*User, error)
	SearchUsers(ctx context.Context, user *User, query string) ([]UserProfile, error)

	Follow(ctx context.Context, user *User, targetID uuid.UUID) error
	Unfollow(ctx context.Context, user *User, targetID uuid.UUID) error
	ToggleFollow(ctx context.Context, user *User, targetID uuid.UUID) (bool, error)
	GetFollowStatus(ctx context.Context, viewerID, targetID uuid.UUID) (bool, error)
	GetFollowers(ctx context.Context, userID uuid.UUID, page int) ([]FollowEntry, error)
	GetFollowing(ctx context.Context, userID uuid.UUID, page int) ([]FollowEntry, error)
}

func New(
	repos repositories.Repository,
	notifications notificationController.NotificationControllerInterface,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:      repos.User,
		followerRepo:  repos.Follower,
		notifications: notifications,
		db:            db,
		log:           logger.New("userController"),
	}
}

func (uc *UserController) GetProfile(
	ctx context.Context,
	viewerID, userID uuid.UUID,
) (*ProfileResponse, error) {
	log := uc.log.Function("GetProfile")

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "user not found", "userID", userID)
	}

	followers, err := uc.followerRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}

	following, err := uc.followerRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != userID {
		isFollowing, err = uc.followerRepo.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileResponse{
		UserProfile:    user.ToProfile(),
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
	}, nil
}

func (uc *UserController) UpdateProfile(
	ctx context.Context,
	user *User,
	request ProfileUpdateRequest,
) (*User, error) {
	log := uc.log.Function("UpdateProfile")

	if request.Username != "" {
		request.Username = strings.TrimSpace(request.Username)
		if request.Username == "" {
			return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "username cannot be blank")
		}
		user.Username = request.Username
	}

	if request.Email != "" {
		user.Email = request.Email
	}

	if request.ProfileImg != nil && *request.ProfileImg != "" &&
		!utils.IsImageURL(*request.ProfileImg) {
		return nil, log.ErrorWithType(
			apperrors.ErrInvalidInput,
			"profile image must be a jpg, jpeg or png URL",
		)
	}

	if request.ProfileImg != nil {
		user.ProfileImg = request.ProfileImg
	}
	if request.Bio != nil {
		user.Bio = request.Bio
	}

	if request.FavoriteGenres != nil {
		genres := make([]string, 0, len(request.FavoriteGenres))
		for _, genre := range request.FavoriteGenres {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "genres cannot be blank")
			}
			genres = append(genres, genre)
		}
		user.FavoriteGenres = genres
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, log.ErrorWithType(apperrors.ErrConflict, "username or email already taken")
		}
		return nil, err
	}

	log.Info("Profile updated", "userID", user.ID)
	return user, nil
}

func (uc *UserController) SearchUsers(
	ctx context.Context,
	user *User,
	query string,
) ([]UserProfile, error) {
	log := uc.log.Function("SearchUsers")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "search query is required")
	}

	users, err := uc.userRepo.Search(ctx, query, user.ID, userSearchLimit)
	if err != nil {
		return nil, err
	}

	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}

	return profiles, nil
}

// Follow creates the directed edge and dispatches two notifications: one to
// the target and one back to the follower as their own activity record.
func (uc *UserController) Follow(ctx context.Context, user *User, targetID uuid.UUID) error {
	log := uc.log.Function("Follow")

	target, err := uc.validateFollowTarget(ctx, user, targetID)
	if err != nil {
		return err
	}

	if err := uc.followerRepo.Create(ctx, user.ID, targetID); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return log.ErrorWithType(apperrors.ErrConflict, "already following", "targetID", targetID)
		}
		return err
	}

	uc.notifyFollowChange(ctx, user, target, NotificationFollow)

	log.Info("Follow created", "followerID", user.ID, "followingID", targetID)
	return nil
}

func (uc *UserController) Unfollow(ctx context.Context, user *User, targetID uuid.UUID) error {
	log := uc.log.Function("Unfollow")

	target, err := uc.validateFollowTarget(ctx, user, targetID)
	if err != nil {
		return err
	}

	deleted, err := uc.followerRepo.Delete(ctx, user.ID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return log.ErrorWithType(apperrors.ErrNotFound, "not following", "targetID", targetID)
	}

	uc.notifyFollowChange(ctx, user, target, NotificationUnfollow)

	log.Info("Follow removed", "followerID", user.ID, "followingID", targetID)
	return nil
}

// ToggleFollow flips the follow edge, returning the resulting state.
func (uc *UserController) ToggleFollow(
	ctx context.Context,
	user *User,
	targetID uuid.UUID,
) (bool, error) {
	following, err := uc.followerRepo.IsFollowing(ctx, user.ID, targetID)
	if err != nil {
		return false, err
	}

	if following {
		if err := uc.Unfollow(ctx, user, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := uc.Follow(ctx, user, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *UserController) GetFollowStatus(
	ctx context.Context,
	viewerID, targetID uuid.UUID,
) (bool, error) {
	return uc.followerRepo.IsFollowing(ctx, viewerID, targetID)
}

func (uc *UserController) GetFollowers(
	ctx context.Context,
	userID uuid.UUID,
	page int,
) ([]FollowEntry, error) {
	if page < 1 {
		page = 1
	}
	return uc.followerRepo.ListFollowers(ctx, userID, followPageSize, (page-1)*followPageSize)
}

func (uc *UserController) GetFollowing(
	ctx context.Context,
	userID uuid.UUID,
	page int,
) ([]FollowEntry, error) {
	if page < 1 {
		page = 1
	}
	return uc.followerRepo.ListFollowing(ctx, userID, followPageSize, (page-1)*followPageSize)
}

func (uc *UserController) validateFollowTarget(
	ctx context.Context,
	user *User,
	targetID uuid.UUID,
) (*User, error) {
	log := uc.log.Function("validateFollowTarget")

	if targetID == user.ID {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "cannot follow yourself")
	}

	target, err := uc.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, log.ErrorWithType(apperrors.ErrNotFound, "user not found", "userID", targetID)
	}

	return target, nil
}

func (uc *UserController) notifyFollowChange(
	ctx context.Context,
	user, target *User,
	change NotificationType,
) {
	verb := "started following"
	if change == NotificationUnfollow {
		verb = "unfollowed"
	}

	targetType := "user"
	senderTarget := user.ID.String()
	uc.notifications.Notify(ctx, notificationController.NotificationInput{
		SenderID:   user.ID,
		ReceiverID: target.ID,
		Type:       change,
		Message:    user.Username + " " + verb + " you",
		TargetType: &targetType,
		TargetID:   &senderTarget,
	})

	// Activity record for the follower's own feed.
	receiverTarget := target.ID.String()
	uc.notifications.Notify(ctx, notificationController.NotificationInput{
		SenderID:   user.ID,
		ReceiverID: user.ID,
		Type:       change,
		Message:    "You " + verb + " " + target.Username,
		TargetType: &targetType,
		TargetID:   &receiverTarget,
	})
}
