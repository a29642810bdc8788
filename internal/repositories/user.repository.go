package repositories

import (
	"context"
	"errors"
	"time"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY = 24 * time.Hour
	USER_CACHE_PREFIX = "user:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found := r.getCacheByID(ctx, id, &user); found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	log := r.log.Function("GetByUsername")

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get user by username", err, "username", username)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "username", user.Username)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := r.clearUserCache(ctx, user.ID); err != nil {
		log.Warn("failed to clear user cache after update", "userID", user.ID, "error", err)
	}

	return nil
}

// Search matches usernames case-insensitively, excluding the searching user.
func (r *userRepository) Search(
	ctx context.Context,
	query string,
	excludeID uuid.UUID,
	limit int,
) ([]User, error) {
	log := r.log.Function("Search")

	var users []User
	err := r.db.SQLWithContext(ctx).
		Where("username ILIKE ? AND id != ?", "%"+query+"%", excludeID).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, log.Err("failed to search users", err, "query", query)
	}

	return users, nil
}

func (r *userRepository) getCacheByID(ctx context.Context, id uuid.UUID, user *User) bool {
	cacheKey := USER_CACHE_PREFIX + id.String()
	found, err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
	if err != nil {
		r.log.Function("getCacheByID").
			Warn("failed to get user from cache", "userID", id, "error", err)
		return false
	}

	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) error {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}

func (r *userRepository) clearUserCache(ctx context.Context, id uuid.UUID) error {
	cacheKey := USER_CACHE_PREFIX + id.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Delete()
}
