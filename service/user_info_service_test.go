package service

import (
	"database/sql"
	"testing"

	"devsphere-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func strPtr(s string) *string { return &s }

func TestUserInfoService_UpdateUserInfo(t *testing.T) {
	t.Run("full replace writes every field", func(t *testing.T) {
		infoRepo := new(mockInfoRepo)
		infoService := NewUserInfoService(infoRepo)

		infoRepo.On("Update", mock.MatchedBy(func(info *model.UserInfo) bool {
			return info.UserID == 1 &&
				*info.Fullname == "Ada Lovelace" &&
				info.About == nil &&
				len(info.Skills) == 2 &&
				info.OpenToWork
		})).Return(nil).Once()

		info, err := infoService.UpdateUserInfo(1, 1, &model.UpdateUserInfoRequest{
			Fullname:   strPtr("Ada Lovelace"),
			Skills:     []string{"go", "postgres"},
			OpenToWork: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", *info.Fullname)
		assert.Nil(t, info.About, "omitted optional fields become null")
		infoRepo.AssertExpectations(t)
	})

	t.Run("nil slices are stored as empty arrays", func(t *testing.T) {
		infoRepo := new(mockInfoRepo)
		infoService := NewUserInfoService(infoRepo)

		infoRepo.On("Update", mock.MatchedBy(func(info *model.UserInfo) bool {
			return info.Skills != nil && len(info.Skills) == 0 &&
				info.TechStack != nil && len(info.TechStack) == 0
		})).Return(nil).Once()

		_, err := infoService.UpdateUserInfo(1, 1, &model.UpdateUserInfoRequest{})

		assert.NoError(t, err)
	})

	t.Run("editing someone else's profile is rejected", func(t *testing.T) {
		infoRepo := new(mockInfoRepo)
		infoService := NewUserInfoService(infoRepo)

		_, err := infoService.UpdateUserInfo(1, 2, &model.UpdateUserInfoRequest{})

		assert.ErrorIs(t, err, ErrNotProfileOwner)
		infoRepo.AssertNotCalled(t, "Update")
	})

	t.Run("profile row missing", func(t *testing.T) {
		infoRepo := new(mockInfoRepo)
		infoService := NewUserInfoService(infoRepo)

		infoRepo.On("Update", mock.Anything).Return(sql.ErrNoRows).Once()

		_, err := infoService.UpdateUserInfo(5, 5, &model.UpdateUserInfoRequest{})

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestUserInfoService_GetUserInfo(t *testing.T) {
	infoRepo := new(mockInfoRepo)
	infoService := NewUserInfoService(infoRepo)

	infoRepo.On("GetByUserID", 1).Return(&model.UserInfo{UserID: 1, Fullname: strPtr("Ada")}, nil).Once()

	info, err := infoService.GetUserInfo(1)

	assert.NoError(t, err)
	assert.Equal(t, "Ada", *info.Fullname)
}
