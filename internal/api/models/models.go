package models

import (
	"time"

	"github.com/trainlog/trainlog/internal/database"
)

// User is the public projection of an account.
type User struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Username  *string       `json:"username"`
	Name      string        `json:"name"`
	Role      database.Role `json:"role"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Profile is the caller's own account including profile fields.
type Profile struct {
	User
	Weight    *float64       `json:"weight"`
	Height    *float64       `json:"height"`
	BirthDate *string        `json:"birthDate"`
	Theme     database.Theme `json:"theme"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// LoginRequest accepts the identifier as email, username or identifier.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Login returns the first non-empty identifier field.
func (r LoginRequest) Login() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Email != "":
		return r.Email
	default:
		return r.Username
	}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

type UpdateProfileRequest struct {
	Name            *string  `json:"name"`
	Username        *string  `json:"username"`
	Weight          *float64 `json:"weight"`
	Height          *float64 `json:"height"`
	BirthDate       *string  `json:"birthDate"`
	Theme           *string  `json:"theme"`
	Password        *string  `json:"password"`
	CurrentPassword string   `json:"currentPassword"`
}

// Training is the JSON form of a training session.
type Training struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"userId"`
	Date            time.Time              `json:"date"`
	Type            string                 `json:"type"`
	DurationMinutes int                    `json:"durationMinutes"`
	Feeling         database.Feeling       `json:"feeling"`
	Notes           string                 `json:"notes"`
	Sprints         []database.SprintEntry `json:"sprints"`
	Gym             []database.GymEntry    `json:"gym"`
	Jumps           []database.JumpEntry   `json:"jumps"`
	TotalDistance   *float64               `json:"totalDistance"`
	TotalLoad       *float64               `json:"totalLoad"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// TrainingRequest is used for create and partial update. Absent fields are nil.
type TrainingRequest struct {
	Date            *string                 `json:"date"`
	Type            *string                 `json:"type"`
	DurationMinutes *int                    `json:"durationMinutes"`
	Feeling         *string                 `json:"feeling"`
	Notes           *string                 `json:"notes"`
	Sprints         *[]database.SprintEntry `json:"sprints"`
	Gym             *[]database.GymEntry    `json:"gym"`
	Jumps           *[]database.JumpEntry   `json:"jumps"`
	TotalDistance   *float64                `json:"totalDistance"`
	TotalLoad       *float64                `json:"totalLoad"`
}

type Goal struct {
	ID          string                `json:"id"`
	Discipline  string                `json:"discipline"`
	TargetValue float64               `json:"targetValue"`
	Unit        string                `json:"unit"`
	Category    database.GoalCategory `json:"category"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

type GoalRequest struct {
	Discipline  *string  `json:"discipline"`
	TargetValue *float64 `json:"targetValue"`
	Unit        *string  `json:"unit"`
	Category    *string  `json:"category"`
}

// Summary is a stored AI training summary.
type Summary struct {
	ID            string                 `json:"id"`
	PeriodStart   time.Time              `json:"periodStart"`
	PeriodEnd     time.Time              `json:"periodEnd"`
	TrainingCount int                    `json:"trainingCount"`
	Model         string                 `json:"model"`
	Content       string                 `json:"content"`
	Source        database.SummarySource `json:"source"`
	CreatedAt     time.Time              `json:"createdAt"`
}
