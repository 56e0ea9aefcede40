package service

import (
	"errors"

	"devsphere-api/model"
	"devsphere-api/repository"
)

// ErrNotProfileOwner is returned when a caller tries to edit someone else's
// profile extension.
var ErrNotProfileOwner = errors.New("caller does not own this profile")

// IUserInfoService defines the contract for profile extension operations.
type IUserInfoService interface {
	GetUserInfo(userID int) (*model.UserInfo, error)
	UpdateUserInfo(userID, callerID int, req *model.UpdateUserInfoRequest) (*model.UserInfo, error)
}

type UserInfoService struct {
	infoRepo repository.IUserInfoRepository
}

func NewUserInfoService(infoRepo repository.IUserInfoRepository) *UserInfoService {
	return &UserInfoService{infoRepo: infoRepo}
}

func (s *UserInfoService) GetUserInfo(userID int) (*model.UserInfo, error) {
	return s.infoRepo.GetByUserID(userID)
}

// UpdateUserInfo performs the full-replace profile update. Every editable
// column is overwritten; omitted optional fields become NULL.
func (s *UserInfoService) UpdateUserInfo(userID, callerID int, req *model.UpdateUserInfoRequest) (*model.UserInfo, error) {
	if userID != callerID {
		return nil, ErrNotProfileOwner
	}

	info := &model.UserInfo{
		UserID:     userID,
		Fullname:   req.Fullname,
		About:      req.About,
		Github:     req.Github,
		Portfolio:  req.Portfolio,
		ImageURL:   req.ImageURL,
		Location:   req.Location,
		Linkedin:   req.Linkedin,
		Skills:     req.Skills,
		TechStack:  req.TechStack,
		OpenToWork: req.OpenToWork,
	}
	if info.Skills == nil {
		info.Skills = []string{}
	}
	if info.TechStack == nil {
		info.TechStack = []string{}
	}

	if err := s.infoRepo.Update(info); err != nil {
		return nil, err
	}
	return info, nil
}
