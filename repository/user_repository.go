package repository

import (
	"database/sql"
	"devsphere-api/logger"
	"devsphere-api/model"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(tx *sql.Tx, user *model.User) error
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(userID int) (*model.User, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
	DeleteUser(userID int) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser inserts a new user inside the caller's transaction so signup
// stays atomic with token issuance.
func (r *UserRepository) CreateUser(tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (username, email, password, phone) VALUES ($1, $2, $3, $4) RETURNING user_id, created_at`
	err := tx.QueryRow(query, user.Username, user.Email, user.Password, user.Phone).Scan(&user.UserID, &user.CreatedAt)
	if err != nil {
		logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to execute create user query")
		return err
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT user_id, username, email, phone, password, created_at FROM users WHERE email = $1`
	err := r.DB.QueryRow(query, email).Scan(&user.UserID, &user.Username, &user.Email, &user.Phone, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(userID int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT user_id, username, email, phone, created_at FROM users WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(&user.UserID, &user.Username, &user.Email, &user.Phone, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// DeleteUser removes the user row. Posts, refresh tokens and profile info go
// with it via ON DELETE CASCADE.
func (r *UserRepository) DeleteUser(userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete user")

	res, err := r.DB.Exec(`DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete user query")
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
