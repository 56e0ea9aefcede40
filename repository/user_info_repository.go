package repository

import (
	"database/sql"
	"devsphere-api/logger"
	"devsphere-api/model"
)

// IUserInfoRepository defines the contract for profile extension operations.
type IUserInfoRepository interface {
	Create(tx *sql.Tx, userID int) error
	GetByUserID(userID int) (*model.UserInfo, error)
	Update(info *model.UserInfo) error
}

type UserInfoRepository struct {
	DB *sql.DB
}

func NewUserInfoRepository(db *sql.DB) *UserInfoRepository {
	return &UserInfoRepository{DB: db}
}

// Create inserts the empty profile row during signup, inside the signup
// transaction.
func (r *UserInfoRepository) Create(tx *sql.Tx, userID int) error {
	_, err := tx.Exec(`INSERT INTO user_info (user_id) VALUES ($1)`, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to execute create user info query")
		return err
	}
	return nil
}

func (r *UserInfoRepository) GetByUserID(userID int) (*model.UserInfo, error) {
	info := &model.UserInfo{}
	query := `SELECT user_id, fullname, about, github, portfolio, image_url,
		location, linkedin, skills, tech_stack, open_to_work
		FROM user_info WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(&info.UserID, &info.Fullname, &info.About,
		&info.Github, &info.Portfolio, &info.ImageURL, &info.Location, &info.Linkedin,
		&info.Skills, &info.TechStack, &info.OpenToWork)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Update overwrites every editable field in a single statement. Nil optional
// fields are stored as NULL rather than left untouched.
func (r *UserInfoRepository) Update(info *model.UserInfo) error {
	log := logger.Log.WithField("user_id", info.UserID)
	log.Info("Executing query to update user info")

	query := `UPDATE user_info SET
		fullname = $1, about = $2, github = $3, portfolio = $4, image_url = $5,
		location = $6, linkedin = $7, skills = $8, tech_stack = $9, open_to_work = $10
		WHERE user_id = $11`
	res, err := r.DB.Exec(query, info.Fullname, info.About, info.Github, info.Portfolio,
		info.ImageURL, info.Location, info.Linkedin, info.Skills,
		info.TechStack, info.OpenToWork, info.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update user info query")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
