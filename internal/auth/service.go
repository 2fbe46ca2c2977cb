package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/trainlog/trainlog/internal/database"
)

var (
	// ErrInvalidCredentials is returned for an unknown identifier and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when the email or username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when an admin operation targets an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDelete is returned when an admin tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete yourself")
	// ErrInvalidToken is returned for tokens that fail verification or belong to deleted users.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongPassword is returned when a password change is not confirmed by the current password.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// Service implements registration, login, token verification and user management.
type Service struct {
	db     database.UserDB
	tokens *TokenManager
}

// NewService creates a new auth service.
func NewService(db database.UserDB, tokens *TokenManager) *Service {
	return &Service{
		db:     db,
		tokens: tokens,
	}
}

// Session is the result of a successful register or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *database.User
}

// RegisterInput holds the fields of a self-service registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

// Register creates a regular user and signs them in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := s.createUser(ctx, in.Email, in.Password, in.Name, in.Username, database.RoleUser)
	if err != nil {
		return nil, err
	}
	log.Info("user registered", "user_id", user.ID)
	return s.newSession(user)
}

// Login verifies credentials. The identifier is either an email address or a username.
func (s *Service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	var (
		user *database.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.db.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.db.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			burnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.newSession(user)
}

// Authenticate verifies a bearer token and loads the user it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (*database.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]database.User, error) {
	return s.db.ListUsers(ctx)
}

// CreateUserInput holds the fields an admin can set on a new user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Username string
	Role     database.Role
}

// CreateUser creates a user on behalf of an admin. The role defaults to user.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*database.User, error) {
	role := in.Role
	if role == "" {
		role = database.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be admin or user", ErrValidation)
	}
	return s.createUser(ctx, in.Email, in.Password, in.Name, in.Username, role)
}

// UpdateUserInput holds optional changes to a user. Nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Username *string
	Role     *database.Role
	Password *string
}

// UpdateUser applies the given changes to user id.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Email != nil {
		email := database.NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Username != nil {
		username, err := normalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: role must be admin or user", ErrValidation)
		}
		user.Role = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser deletes user id and everything they own. Admins cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := s.db.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	log.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}

// ProfileInput holds self-service profile changes. Nil fields are left untouched.
type ProfileInput struct {
	Name            *string
	Username        *string
	Weight          *float64
	Height          *float64
	BirthDate       *string
	Theme           *database.Theme
	Password        *string
	CurrentPassword string
}

// UpdateProfile applies profile changes of the calling user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Username != nil {
		username, err := normalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if in.Weight != nil {
		if *in.Weight < 0 {
			return nil, fmt.Errorf("%w: weight must not be negative", ErrValidation)
		}
		user.Weight = in.Weight
	}
	if in.Height != nil {
		if *in.Height < 0 {
			return nil, fmt.Errorf("%w: height must not be negative", ErrValidation)
		}
		user.Height = in.Height
	}
	if in.BirthDate != nil {
		if *in.BirthDate == "" {
			user.BirthDate = nil
		} else {
			if _, err := time.Parse(time.DateOnly, *in.BirthDate); err != nil {
				return nil, fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrValidation)
			}
			user.BirthDate = in.BirthDate
		}
	}
	if in.Theme != nil {
		if !in.Theme.Valid() {
			return nil, fmt.Errorf("%w: theme must be light, dark or system", ErrValidation)
		}
		user.Theme = *in.Theme
	}
	if in.Password != nil && *in.Password != "" {
		if !CheckPassword(user.PasswordHash, in.CurrentPassword) {
			return nil, ErrWrongPassword
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// defaultAdminName is used when a new admin is created without a name.
const defaultAdminName = "Admin"

// EnsureAdmin creates an admin account or promotes an existing one and resets its password.
// An existing account keeps its name unless name is set. It reports whether a new user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (*database.User, bool, error) {
	existing, err := s.db.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if password == "" {
			return nil, false, fmt.Errorf("%w: password is required", ErrValidation)
		}
		hash, err := HashPassword(password)
		if err != nil {
			return nil, false, err
		}
		existing.PasswordHash = hash
		existing.Role = database.RoleAdmin
		if name != "" {
			existing.Name = name
		}
		if err := s.save(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case errors.Is(err, database.ErrNotFound):
		if name == "" {
			name = defaultAdminName
		}
		user, err := s.createUser(ctx, email, password, name, "", database.RoleAdmin)
		if err != nil {
			return nil, false, err
		}
		return user, true, nil
	default:
		return nil, false, err
	}
}

func (s *Service) createUser(ctx context.Context, email, password, name, username string, role database.Role) (*database.User, error) {
	email = database.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	normalizedUsername, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		Email:        email,
		Username:     normalizedUsername,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
		Theme:        database.ThemeSystem,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) save(ctx context.Context, user *database.User) error {
	if err := s.db.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, database.ErrConflict):
			return ErrUserExists
		case errors.Is(err, database.ErrNotFound):
			return ErrUserNotFound
		default:
			return err
		}
	}
	return nil
}

func (s *Service) newSession(user *database.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func validateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

// normalizeUsername returns nil for an empty username so the unique index ignores it.
func normalizeUsername(username string) (*string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-32 characters of letters, digits, dot, dash or underscore", ErrValidation)
	}
	return &username, nil
}
