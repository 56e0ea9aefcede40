package repository

import (
	"database/sql"
	"devsphere-api/logger"
	"devsphere-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(tx *sql.Tx, token *model.RefreshToken) error
	DeleteByUserID(tx *sql.Tx, userID int) error
	Rotate(oldToken, newToken string, expiresAt time.Time) (int, error)
	DeleteByToken(token string) error
	DeleteExpired() (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record inside the caller's transaction.
func (r *TokenRepository) Create(tx *sql.Tx, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := tx.QueryRow(query, token.UserID, token.Token, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// DeleteByUserID deletes all refresh tokens for a user. Run on login to
// enforce the single-session policy.
func (r *TokenRepository) DeleteByUserID(tx *sql.Tx, userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete all refresh tokens for a user")

	_, err := tx.Exec(`DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh tokens query")
		return err
	}
	return nil
}

// Rotate atomically replaces a still-valid token with a new value and returns
// the owning user id. The WHERE clause keys on the old value, so a concurrent
// second use of the same token finds no row and loses the race.
func (r *TokenRepository) Rotate(oldToken, newToken string, expiresAt time.Time) (int, error) {
	var userID int
	query := `UPDATE refresh_tokens SET token = $2, expires_at = $3 WHERE token = $1 AND expires_at > NOW() RETURNING user_id`
	err := r.DB.QueryRow(query, oldToken, newToken, expiresAt).Scan(&userID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute rotate refresh token query")
		}
		return 0, err
	}
	return userID, nil
}

// DeleteByToken removes a single refresh token. Deleting an already-absent
// token is not an error, which keeps logout idempotent.
func (r *TokenRepository) DeleteByToken(token string) error {
	_, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete refresh token query")
		return err
	}
	return nil
}

// DeleteExpired purges tokens past their expiry. Called from the hourly
// maintenance job.
func (r *TokenRepository) DeleteExpired() (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute purge expired tokens query")
		return 0, err
	}
	return res.RowsAffected()
}
