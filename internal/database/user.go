package database

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Theme is the UI theme preference stored on the profile.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// User represents an account. The password hash never leaves this package in serialized form.
type User struct {
	ID           string  `gorm:"primaryKey;size:36"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Username     *string `gorm:"uniqueIndex"`
	Name         string
	Role         Role   `gorm:"size:16;not null;default:user"`
	PasswordHash string `gorm:"not null" json:"-"`

	// profile
	Weight    *float64
	Height    *float64
	BirthDate *string `gorm:"size:10"`
	Theme     Theme   `gorm:"size:16"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID to new users.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if err != ErrConflict {
			log.Error("failed to create user", "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

// ListUsers returns all users, newest first.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		log.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// UpdateUser persists all fields of user.
func (c *Client) UpdateUser(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	result := c.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", user.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(user)
	if result.Error != nil {
		err := translateError(result.Error)
		if err != ErrConflict {
			log.Error("failed to update user", "error", err)
		}
		return err
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user together with everything the user owns.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&Training{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&SeasonGoal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&TrainingSummary{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && err != ErrNotFound {
		log.Error("failed to delete user", "error", err)
	}
	return err
}
