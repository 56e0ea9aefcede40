package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"devsphere-api/model"
	"devsphere-api/repository"
)

// ErrNotPostOwner is returned when a caller tries to mutate a post they do
// not own.
var ErrNotPostOwner = errors.New("caller does not own this post")

const (
	feedCacheKey = "posts:feed"
	feedCacheTTL = 60 * time.Second
)

// IPostService defines the contract for post feed operations.
type IPostService interface {
	GetFeed() ([]*model.FeedPost, error)
	GetByOwner(ownerID int) ([]*model.Post, error)
	Create(req *model.CreatePostRequest) (*model.Post, error)
	Update(postID, callerID int, req *model.UpdatePostRequest) (*model.Post, error)
	Delete(postID, callerID int) error
}

// PostService fronts the post repository with a cache-aside strategy for the
/// global feed: reads fill the cache, every mutation invalidates it.
type PostService struct {
	repo  repository.IPostRepository
	cache ICacheClient
}

func NewPostService(repo repository.IPostRepository, cache ICacheClient) *PostService {
	return &PostService{repo: repo, cache: cache}
}

// GetFeed returns all posts newest-first, serving from the cache when the
// entry is fresh.
func (s *PostService) GetFeed() ([]*model.FeedPost, error) {
	ctx := context.Background()

	if cached, err := s.cache.Get(ctx, feedCacheKey).Result(); err == nil {
		var posts []*model.FeedPost
		if err := json.Unmarshal([]byte(cached), &posts); err == nil {
			return posts, nil
		}
	}

	posts, err := s.repo.GetFeed()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(posts); err == nil {
		s.cache.Set(ctx, feedCacheKey, data, feedCacheTTL)
	}

	return posts, nil
}

func (s *PostService) GetByOwner(ownerID int) ([]*model.Post, error) {
	return s.repo.GetByOwner(ownerID)
}

func (s *PostService) Create(req *model.CreatePostRequest) (*model.Post, error) {
	post := &model.Post{
		Title:   req.Title,
		Content: req.Content,
		Collab:  req.Collab,
		OwnerID: req.OwnerID,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}

	s.invalidateFeed()
	return post, nil
}

// Update replaces title, content and collab after verifying ownership.
func (s *PostService) Update(postID, callerID int, req *model.UpdatePostRequest) (*model.Post, error) {
	existing, err := s.repo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != callerID {
		return nil, ErrNotPostOwner
	}

	post := &model.Post{
		PostID:  postID,
		Title:   req.Title,
		Content: req.Content,
		Collab:  req.Collab,
	}
	if err := s.repo.Update(post); err != nil {
		return nil, err
	}

	s.invalidateFeed()
	return post, nil
}

// Delete removes a post after verifying ownership. Unknown ids surface as
// sql.ErrNoRows for the handler to map to 404.
func (s *PostService) Delete(postID, callerID int) error {
	existing, err := s.repo.GetByID(postID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return ErrNotPostOwner
	}

	if err := s.repo.Delete(postID); err != nil {
		return err
	}

	s.invalidateFeed()
	return nil
}

func (s *PostService) invalidateFeed() {
	s.cache.Del(context.Background(), feedCacheKey)
}
