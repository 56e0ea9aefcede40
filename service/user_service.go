package service

import (
	"errors"

	"devsphere-api/model"
	"devsphere-api/repository"
)

// ErrNotAccountOwner is returned when a caller tries to delete an account
// other than their own.
var ErrNotAccountOwner = errors.New("caller does not own this account")

// IUserService defines the contract for public user operations.
type IUserService interface {
	GetUser(userID int) (*model.User, error)
	DeleteUser(userID, callerID int) error
}

// UserService handles user-related business logic.
type UserService struct {
	userRepo repository.IUserRepository
}

func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(userID int) (*model.User, error) {
	return s.userRepo.GetUserByID(userID)
}

// DeleteUser removes the account. Only the account owner may do this; posts,
// refresh tokens and profile info cascade away with the user row.
func (s *UserService) DeleteUser(userID, callerID int) error {
	if userID != callerID {
		return ErrNotAccountOwner
	}
	return s.userRepo.DeleteUser(userID)
}
