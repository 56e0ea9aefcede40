package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"devsphere-api/common"
	"devsphere-api/model"
	"devsphere-api/service"

	"github.com/gorilla/mux"
)

type PostHandler struct {
	service service.IPostService
}

func NewPostHandler(service service.IPostService) *PostHandler {
	return &PostHandler{service: service}
}

// GetFeed godoc
// @Summary      List all posts, newest first
// @Tags         posts
// @Produce      json
// @Success      200  {array}  model.FeedPost
// @Router       /api/posts [get]
func (h *PostHandler) GetFeed(w http.ResponseWriter, r *http.Request) *common.AppError {
	posts, err := h.service.GetFeed()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not load posts", err)
	}

	writeJSON(w, http.StatusOK, posts)
	return nil
}

// GetUserPosts godoc
// @Summary      List one user's posts, newest first
// @Tags         posts
// @Produce      json
// @Param        user_id  path     int  true  "owner id"
// @Success      200      {array}  model.Post
// @Router       /api/posts/{user_id} [get]
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) *common.AppError {
	ownerID, appErr := pathInt(r, "user_id")
	if appErr != nil {
		return appErr
	}

	posts, err := h.service.GetByOwner(ownerID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not load posts", err)
	}

	writeJSON(w, http.StatusOK, posts)
	return nil
}

// CreatePost godoc
// @Summary      Publish a new post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CreatePostRequest  true  "post payload"
// @Success      201      {object}  model.Post
// @Failure      403      {object}  common.AppError
// @Failure      422      {object}  common.AppError
// @Router       /api/posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}

	var req model.CreatePostRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	if req.OwnerID != userID {
		return common.NewAppError(http.StatusForbidden, "You can only create posts as yourself", nil)
	}

	post, err := h.service.Create(&req)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not create post", err)
	}

	writeJSON(w, http.StatusCreated, post)
	return nil
}

// UpdatePost godoc
// @Summary      Replace a post's editable fields
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                      true  "post id"
// @Param        request  body      model.UpdatePostRequest  true  "post payload"
// @Success      200      {object}  model.Post
// @Failure      403      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Router       /api/posts/{id} [patch]
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}
	postID, appErr := pathInt(r, "id")
	if appErr != nil {
		return appErr
	}

	var req model.UpdatePostRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	post, err := h.service.Update(postID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.NewAppError(http.StatusNotFound, "Post not found", nil)
		case errors.Is(err, service.ErrNotPostOwner):
			return common.NewAppError(http.StatusForbidden, "You can only edit your own posts", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not update post", err)
		}
	}

	writeJSON(w, http.StatusOK, post)
	return nil
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         posts
// @Security     BearerAuth
// @Param        id  path  int  true  "post id"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/posts/{id} [delete]
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}
	postID, appErr := pathInt(r, "id")
	if appErr != nil {
		return appErr
	}

	if err := h.service.Delete(postID, userID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.NewAppError(http.StatusNotFound, "Post not found", nil)
		case errors.Is(err, service.ErrNotPostOwner):
			return common.NewAppError(http.StatusForbidden, "You can only delete your own posts", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not delete post", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func pathInt(r *http.Request, name string) (int, *common.AppError) {
	value, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid "+name+" in path", err)
	}
	return value, nil
}
