package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/database/mock"
)

type ServiceTestSuite struct {
	suite.Suite
	db      *mock.MockDB
	service *Service
	ctx     context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.db = mock.NewMockDB()
	s.service = NewService(s.db, newTestTokenManager())
	s.ctx = context.Background()
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceTestSuite) register(email, password string) *Session {
	session, err := s.service.Register(s.ctx, RegisterInput{Email: email, Password: password, Name: "Test"})
	s.Require().NoError(err)
	return session
}

func (s *ServiceTestSuite) TestRegister() {
	session := s.register("Athlete@Example.com", "password123")

	s.NotEmpty(session.Token)
	s.Equal("athlete@example.com", session.User.Email)
	s.Equal(database.RoleUser, session.User.Role)
	s.NotEqual("password123", session.User.PasswordHash)
	s.True(CheckPassword(session.User.PasswordHash, "password123"))

	user, err := s.service.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(session.User.ID, user.ID)
}

func (s *ServiceTestSuite) TestRegister_Duplicate() {
	s.register("dup@example.com", "password123")

	_, err := s.service.Register(s.ctx, RegisterInput{Email: " DUP@example.com", Password: "other"})
	s.ErrorIs(err, ErrUserExists)
}

func (s *ServiceTestSuite) TestRegister_Validation() {
	tests := []RegisterInput{
		{Email: "", Password: "x"},
		{Email: "a@b.c", Password: ""},
		{Email: "not-an-email", Password: "x"},
		{Email: "a@b.c", Password: "x", Username: "no spaces allowed"},
	}
	for _, in := range tests {
		_, err := s.service.Register(s.ctx, in)
		s.ErrorIs(err, ErrValidation, "input %+v", in)
	}
}

func (s *ServiceTestSuite) TestLogin() {
	registered, err := s.service.Register(s.ctx, RegisterInput{Email: "login@example.com", Password: "password123", Username: "sprinter"})
	s.Require().NoError(err)

	byEmail, err := s.service.Login(s.ctx, "LOGIN@example.com", "password123")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, byEmail.User.ID)

	byUsername, err := s.service.Login(s.ctx, "sprinter", "password123")
	s.Require().NoError(err)
	s.Equal(registered.User.ID, byUsername.User.ID)
}

func (s *ServiceTestSuite) TestLogin_UniformFailure() {
	s.register("known@example.com", "password123")

	_, wrongPassword := s.service.Login(s.ctx, "known@example.com", "nope")
	_, unknownUser := s.service.Login(s.ctx, "unknown@example.com", "password123")

	s.ErrorIs(wrongPassword, ErrInvalidCredentials)
	s.ErrorIs(unknownUser, ErrInvalidCredentials)
	s.Equal(wrongPassword.Error(), unknownUser.Error())
}

func (s *ServiceTestSuite) TestAuthenticate_DeletedUser() {
	session := s.register("gone@example.com", "password123")
	s.Require().NoError(s.db.DeleteUser(s.ctx, session.User.ID))

	_, err := s.service.Authenticate(s.ctx, session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceTestSuite) TestAuthenticate_DatabaseError() {
	session := s.register("dberr@example.com", "password123")
	s.db.GetUserByIDError = errors.New("connection lost")

	_, err := s.service.Authenticate(s.ctx, session.Token)
	s.Error(err)
	s.NotErrorIs(err, ErrInvalidToken)
}

func (s *ServiceTestSuite) TestCreateUser() {
	user, err := s.service.CreateUser(s.ctx, CreateUserInput{Email: "new@example.com", Password: "pw"})
	s.Require().NoError(err)
	s.Equal(database.RoleUser, user.Role)

	admin, err := s.service.CreateUser(s.ctx, CreateUserInput{Email: "boss@example.com", Password: "pw", Role: database.RoleAdmin})
	s.Require().NoError(err)
	s.True(admin.IsAdmin())

	_, err = s.service.CreateUser(s.ctx, CreateUserInput{Email: "x@example.com", Password: "pw", Role: "root"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.service.CreateUser(s.ctx, CreateUserInput{Email: "new@example.com", Password: "pw"})
	s.ErrorIs(err, ErrUserExists)
}

func (s *ServiceTestSuite) TestUpdateUser_OnlyProvidedFields() {
	session := s.register("partial@example.com", "password123")

	updated, err := s.service.UpdateUser(s.ctx, session.User.ID, UpdateUserInput{Name: ptr("New Name")})
	s.Require().NoError(err)
	s.Equal("New Name", updated.Name)
	s.Equal("partial@example.com", updated.Email)
	s.True(CheckPassword(updated.PasswordHash, "password123"))

	role := database.RoleAdmin
	updated, err = s.service.UpdateUser(s.ctx, session.User.ID, UpdateUserInput{Role: &role, Password: ptr("changed")})
	s.Require().NoError(err)
	s.True(updated.IsAdmin())
	s.True(CheckPassword(updated.PasswordHash, "changed"))

	_, err = s.service.UpdateUser(s.ctx, "missing", UpdateUserInput{Name: ptr("x")})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServiceTestSuite) TestUpdateUser_EmailConflict() {
	s.register("taken@example.com", "password123")
	session := s.register("mover@example.com", "password123")

	_, err := s.service.UpdateUser(s.ctx, session.User.ID, UpdateUserInput{Email: ptr("taken@example.com")})
	s.ErrorIs(err, ErrUserExists)
}

func (s *ServiceTestSuite) TestDeleteUser() {
	admin := s.register("admin@example.com", "password123")
	victim := s.register("victim@example.com", "password123")

	s.ErrorIs(s.service.DeleteUser(s.ctx, admin.User.ID, admin.User.ID), ErrSelfDelete)
	s.NoError(s.service.DeleteUser(s.ctx, admin.User.ID, victim.User.ID))
	s.ErrorIs(s.service.DeleteUser(s.ctx, admin.User.ID, victim.User.ID), ErrUserNotFound)
}

func (s *ServiceTestSuite) TestUpdateProfile() {
	session := s.register("profile@example.com", "password123")

	theme := database.ThemeDark
	user, err := s.service.UpdateProfile(s.ctx, session.User.ID, ProfileInput{
		Weight:    ptr(78.5),
		Height:    ptr(183.0),
		BirthDate: ptr("1998-04-12"),
		Theme:     &theme,
		Username:  ptr("hurdler"),
	})
	s.Require().NoError(err)
	s.InDelta(78.5, *user.Weight, 0.001)
	s.Equal("1998-04-12", *user.BirthDate)
	s.Equal(database.ThemeDark, user.Theme)
	s.Equal("hurdler", *user.Username)

	badTheme := database.Theme("neon")
	_, err = s.service.UpdateProfile(s.ctx, session.User.ID, ProfileInput{Theme: &badTheme})
	s.ErrorIs(err, ErrValidation)

	_, err = s.service.UpdateProfile(s.ctx, session.User.ID, ProfileInput{BirthDate: ptr("12.4.1998")})
	s.ErrorIs(err, ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateProfile_PasswordChange() {
	session := s.register("pw@example.com", "password123")

	_, err := s.service.UpdateProfile(s.ctx, session.User.ID, ProfileInput{Password: ptr("new"), CurrentPassword: "wrong"})
	s.ErrorIs(err, ErrWrongPassword)

	_, err = s.service.UpdateProfile(s.ctx, session.User.ID, ProfileInput{Password: ptr("new"), CurrentPassword: "password123"})
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "pw@example.com", "new")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestEnsureAdmin() {
	user, created, err := s.service.EnsureAdmin(s.ctx, "root@example.com", "first", "Root")
	s.Require().NoError(err)
	s.True(created)
	s.True(user.IsAdmin())

	s.register("promote@example.com", "password123")
	promoted, created, err := s.service.EnsureAdmin(s.ctx, "promote@example.com", "reset", "")
	s.Require().NoError(err)
	s.False(created)
	s.True(promoted.IsAdmin())
	s.Equal("Test", promoted.Name)

	_, err = s.service.Login(s.ctx, "promote@example.com", "reset")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestEnsureAdmin_DefaultNameOnlyForNewAccounts() {
	user, created, err := s.service.EnsureAdmin(s.ctx, "fresh@example.com", "first", "")
	s.Require().NoError(err)
	s.True(created)
	s.Equal("Admin", user.Name)

	s.register("named@example.com", "password123")
	_, _, err = s.service.EnsureAdmin(s.ctx, "named@example.com", "reset", "")
	s.Require().NoError(err)
	stored, err := s.db.GetUserByEmail(s.ctx, "named@example.com")
	s.Require().NoError(err)
	s.Equal("Test", stored.Name)

	renamed, _, err := s.service.EnsureAdmin(s.ctx, "named@example.com", "reset", "Head Coach")
	s.Require().NoError(err)
	s.Equal("Head Coach", renamed.Name)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
