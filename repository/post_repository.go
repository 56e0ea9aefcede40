package repository

import (
	"database/sql"
	"devsphere-api/logger"
	"devsphere-api/model"
)

// IPostRepository defines the contract for post database operations.
type IPostRepository interface {
	GetFeed() ([]*model.FeedPost, error)
	GetByOwner(ownerID int) ([]*model.Post, error)
	GetByID(postID int) (*model.Post, error)
	Create(post *model.Post) error
	Update(post *model.Post) error
	Delete(postID int) error
}

type PostRepository struct {
	DB *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{DB: db}
}

// GetFeed returns every post newest-first, joined with the owner's display
// metadata. Creation-time ties break on post_id descending.
func (r *PostRepository) GetFeed() ([]*model.FeedPost, error) {
	query := `
		SELECT p.post_id, p.title, p.content, p.collab, p.owner_id, p.created_at,
		       u.username, ui.fullname, ui.image_url
		FROM posts p
		JOIN users u ON p.owner_id = u.user_id
		LEFT JOIN user_info ui ON p.owner_id = ui.user_id
		ORDER BY p.created_at DESC, p.post_id DESC`

	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute feed query")
		return nil, err
	}
	defer rows.Close()

	posts := []*model.FeedPost{}
	for rows.Next() {
		var p model.FeedPost
		if err := rows.Scan(&p.PostID, &p.Title, &p.Content, &p.Collab, &p.OwnerID, &p.CreatedAt,
			&p.Username, &p.Fullname, &p.ImageURL); err != nil {
			logger.Log.WithError(err).Error("Failed to scan feed row")
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// GetByOwner retrieves all posts of one user, newest-first.
func (r *PostRepository) GetByOwner(ownerID int) ([]*model.Post, error) {
	query := `SELECT post_id, title, content, collab, owner_id, created_at
		FROM posts WHERE owner_id = $1 ORDER BY created_at DESC, post_id DESC`

	rows, err := r.DB.Query(query, ownerID)
	if err != nil {
		logger.Log.WithError(err).WithField("owner_id", ownerID).Error("Failed to execute posts by owner query")
		return nil, err
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.PostID, &p.Title, &p.Content, &p.Collab, &p.OwnerID, &p.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan post row")
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) GetByID(postID int) (*model.Post, error) {
	p := &model.Post{}
	query := `SELECT post_id, title, content, collab, owner_id, created_at FROM posts WHERE post_id = $1`
	err := r.DB.QueryRow(query, postID).Scan(&p.PostID, &p.Title, &p.Content, &p.Collab, &p.OwnerID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Create(post *model.Post) error {
	log := logger.Log.WithField("owner_id", post.OwnerID)
	log.Info("Executing query to create a new post")

	query := `INSERT INTO posts (title, content, collab, owner_id) VALUES ($1, $2, $3, $4) RETURNING post_id, created_at`
	err := r.DB.QueryRow(query, post.Title, post.Content, post.Collab, post.OwnerID).Scan(&post.PostID, &post.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create post query")
		return err
	}
	return nil
}

// Update replaces title, content and collab in one statement. Last write wins.
func (r *PostRepository) Update(post *model.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, collab = $3 WHERE post_id = $4 RETURNING owner_id, created_at`
	err := r.DB.QueryRow(query, post.Title, post.Content, post.Collab, post.PostID).Scan(&post.OwnerID, &post.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("post_id", post.PostID).Error("Failed to execute update post query")
		}
		return err
	}
	return nil
}

func (r *PostRepository) Delete(postID int) error {
	res, err := r.DB.Exec(`DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		logger.Log.WithError(err).WithField("post_id", postID).Error("Failed to execute delete post query")
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
