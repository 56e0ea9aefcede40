package router_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devsphere-api/config"
	"devsphere-api/handler"
	"devsphere-api/model"
	"devsphere-api/router"
	"devsphere-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	config.AppConfig.JWT.SecretKey = "test-secret"
	config.AppConfig.JWT.AccessTTLMins = 15
	config.AppConfig.JWT.RefreshTTLDays = 7
}

// --- Service mocks ---

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(req *model.SignupRequest) (*service.AuthResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
func (m *mockAuthService) Login(email, password string) (*service.AuthResult, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
func (m *mockAuthService) Refresh(refreshToken string) (*service.AuthResult, error) {
	args := m.Called(refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}
func (m *mockAuthService) Logout(refreshToken string) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}
func (m *mockAuthService) CurrentUser(userID int) (*model.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockAuthService) RefreshTokenTTL() time.Duration { return 7 * 24 * time.Hour }
func (m *mockAuthService) PurgeExpiredTokens() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type mockPostService struct{ mock.Mock }

func (m *mockPostService) GetFeed() ([]*model.FeedPost, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FeedPost), args.Error(1)
}
func (m *mockPostService) GetByOwner(ownerID int) ([]*model.Post, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}
func (m *mockPostService) Create(req *model.CreatePostRequest) (*model.Post, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}
func (m *mockPostService) Update(postID, callerID int, req *model.UpdatePostRequest) (*model.Post, error) {
	args := m.Called(postID, callerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}
func (m *mockPostService) Delete(postID, callerID int) error {
	args := m.Called(postID, callerID)
	return args.Error(0)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetUser(userID int) (*model.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserService) DeleteUser(userID, callerID int) error {
	args := m.Called(userID, callerID)
	return args.Error(0)
}

type mockUserInfoService struct{ mock.Mock }

func (m *mockUserInfoService) GetUserInfo(userID int) (*model.UserInfo, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserInfo), args.Error(1)
}
func (m *mockUserInfoService) UpdateUserInfo(userID, callerID int, req *model.UpdateUserInfoRequest) (*model.UserInfo, error) {
	args := m.Called(userID, callerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserInfo), args.Error(1)
}

type fixture struct {
	router   http.Handler
	auth     *mockAuthService
	posts    *mockPostService
	users    *mockUserService
	userInfo *mockUserInfoService
}

func newFixture() *fixture {
	f := &fixture{
		auth:     new(mockAuthService),
		posts:    new(mockPostService),
		users:    new(mockUserService),
		userInfo: new(mockUserInfoService),
	}
	f.router = router.NewRouter(
		handler.NewAuthHandler(f.auth),
		handler.NewPostHandler(f.posts),
		handler.NewUserHandler(f.users),
		handler.NewUserInfoHandler(f.userInfo),
	)
	return f
}

func (f *fixture) request(t *testing.T, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, path, reader)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func bearer(t *testing.T, userID int) func(*http.Request) {
	t.Helper()
	token, err := service.GenerateAccessToken(&model.User{UserID: userID, Username: "ada", Email: "ada@x.com"})
	assert.NoError(t, err)
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withRefreshCookie(value string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: value})
	}
}

func refreshCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	f := newFixture()

	rr := f.request(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"API is healthy and running"}`, rr.Body.String())
}

func TestSignup(t *testing.T) {
	body := `{"username":"ada","email":"ada@x.com","password":"longenough","phone":"1234567890"}`

	t.Run("success returns token, user and refresh cookie", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Signup", mock.MatchedBy(func(req *model.SignupRequest) bool {
			return req.Username == "ada" && req.Email == "ada@x.com"
		})).Return(&service.AuthResult{
			User:      &model.User{UserID: 1, Username: "ada", Email: "ada@x.com", Phone: "1234567890"},
			TokenPair: service.TokenPair{AccessToken: "signed-access", RefreshToken: "opaque-refresh"},
		}, nil).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/signup", body)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			User        model.User `json:"user"`
			AccessToken string     `json:"accessToken"`
		}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ada", resp.User.Username)
		assert.NotEmpty(t, resp.AccessToken)

		cookie := refreshCookie(rr)
		assert.NotNil(t, cookie)
		assert.Equal(t, "opaque-refresh", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Signup", mock.Anything).Return(nil, service.ErrEmailTaken).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/signup", body)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Signup", mock.Anything).Return(nil, service.ErrUsernameTaken).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/signup", body)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid payload is a 422 with field errors", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/auth/signup", `{"username":"ab","email":"nope","password":"short"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), `"errors"`)
		f.auth.AssertNotCalled(t, "Signup")
	})
}

func TestLogin(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Login", "ada@x.com", "wrong-password").Return(nil, service.ErrInvalidCredentials).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/login", `{"email":"ada@x.com","password":"wrong-password"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("success sets a fresh refresh cookie", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Login", "ada@x.com", "correct-horse").Return(&service.AuthResult{
			User:      &model.User{UserID: 1, Username: "ada", Email: "ada@x.com"},
			TokenPair: service.TokenPair{AccessToken: "signed-access", RefreshToken: "fresh-refresh"},
		}, nil).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/login", `{"email":"ada@x.com","password":"correct-horse"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		cookie := refreshCookie(rr)
		assert.NotNil(t, cookie)
		assert.Equal(t, "fresh-refresh", cookie.Value)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("missing cookie", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/auth/refresh", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		f.auth.AssertNotCalled(t, "Refresh")
	})

	t.Run("invalid token is forbidden and the cookie is cleared", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Refresh", "stale").Return(nil, service.ErrRefreshTokenInvalid).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/refresh", "", withRefreshCookie("stale"))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		cookie := refreshCookie(rr)
		assert.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("valid token rotates the cookie", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Refresh", "current").Return(&service.AuthResult{
			User:      &model.User{UserID: 1, Username: "ada", Email: "ada@x.com"},
			TokenPair: service.TokenPair{AccessToken: "new-access", RefreshToken: "rotated"},
		}, nil).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/refresh", "", withRefreshCookie("current"))

		assert.Equal(t, http.StatusOK, rr.Code)
		cookie := refreshCookie(rr)
		assert.NotNil(t, cookie)
		assert.Equal(t, "rotated", cookie.Value)
	})
}

func TestLogout(t *testing.T) {
	t.Run("with cookie deletes the stored token", func(t *testing.T) {
		f := newFixture()
		f.auth.On("Logout", "current").Return(nil).Once()

		rr := f.request(t, http.MethodPost, "/api/auth/logout", "", withRefreshCookie("current"))

		assert.Equal(t, http.StatusOK, rr.Code)
		cookie := refreshCookie(rr)
		assert.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
		f.auth.AssertExpectations(t)
	})

	t.Run("without cookie is still a success", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/auth/logout", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		f.auth.AssertNotCalled(t, "Logout")
	})
}

func TestMe(t *testing.T) {
	t.Run("without token", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodGet, "/api/auth/me", "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("with valid token", func(t *testing.T) {
		f := newFixture()
		f.auth.On("CurrentUser", 1).Return(&model.User{UserID: 1, Username: "ada", Email: "ada@x.com"}, nil).Once()

		rr := f.request(t, http.MethodGet, "/api/auth/me", "", bearer(t, 1))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"username":"ada"`)
	})
}

func TestPostFeed(t *testing.T) {
	f := newFixture()
	newer := &model.FeedPost{Post: model.Post{PostID: 2, Title: "P2", OwnerID: 1}, Username: "ada"}
	older := &model.FeedPost{Post: model.Post{PostID: 1, Title: "P1", OwnerID: 1}, Username: "ada"}
	f.posts.On("GetFeed").Return([]*model.FeedPost{newer, older}, nil).Once()

	rr := f.request(t, http.MethodGet, "/api/posts", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var feed []model.FeedPost
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &feed))
	assert.Len(t, feed, 2)
	assert.Equal(t, "P2", feed[0].Title, "newest post comes first")
	assert.Equal(t, "P1", feed[1].Title)
}

func TestCreatePost(t *testing.T) {
	body := `{"title":"Need a reviewer","content":"Go backend","collab":true,"owner_id":1}`

	t.Run("without token", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/posts", body)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		f.posts.AssertNotCalled(t, "Create")
	})

	t.Run("owner mismatch is forbidden", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/posts", body, bearer(t, 2))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		f.posts.AssertNotCalled(t, "Create")
	})

	t.Run("empty title fails validation", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPost, "/api/posts", `{"title":"","content":"x","owner_id":1}`, bearer(t, 1))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		f.posts.AssertNotCalled(t, "Create")
	})

	t.Run("valid create returns 201", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Create", mock.MatchedBy(func(req *model.CreatePostRequest) bool {
			return req.Title == "Need a reviewer" && req.OwnerID == 1
		})).Return(&model.Post{PostID: 5, Title: "Need a reviewer", OwnerID: 1, Collab: true}, nil).Once()

		rr := f.request(t, http.MethodPost, "/api/posts", body, bearer(t, 1))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"post_id":5`)
	})
}

func TestUpdatePost(t *testing.T) {
	body := `{"title":"Edited","content":"Edited body","collab":false}`

	t.Run("unknown post", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Update", 99, 1, mock.Anything).Return(nil, sql.ErrNoRows).Once()

		rr := f.request(t, http.MethodPatch, "/api/posts/99", body, bearer(t, 1))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("someone else's post", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Update", 10, 1, mock.Anything).Return(nil, service.ErrNotPostOwner).Once()

		rr := f.request(t, http.MethodPatch, "/api/posts/10", body, bearer(t, 1))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("own post", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Update", 10, 1, mock.Anything).Return(&model.Post{PostID: 10, Title: "Edited", OwnerID: 1}, nil).Once()

		rr := f.request(t, http.MethodPatch, "/api/posts/10", body, bearer(t, 1))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"title":"Edited"`)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("unknown post", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Delete", 99, 1).Return(sql.ErrNoRows).Once()

		rr := f.request(t, http.MethodDelete, "/api/posts/99", "", bearer(t, 1))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("own post", func(t *testing.T) {
		f := newFixture()
		f.posts.On("Delete", 10, 1).Return(nil).Once()

		rr := f.request(t, http.MethodDelete, "/api/posts/10", "", bearer(t, 1))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestUserRoutes(t *testing.T) {
	t.Run("public get", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetUser", 1).Return(&model.User{UserID: 1, Username: "ada", Email: "ada@x.com"}, nil).Once()

		rr := f.request(t, http.MethodGet, "/api/users/1", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"username":"ada"`)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetUser", 99).Return(nil, sql.ErrNoRows).Once()

		rr := f.request(t, http.MethodGet, "/api/users/99", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("deleting another account is forbidden", func(t *testing.T) {
		f := newFixture()
		f.users.On("DeleteUser", 2, 1).Return(service.ErrNotAccountOwner).Once()

		rr := f.request(t, http.MethodDelete, "/api/users/2", "", bearer(t, 1))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("deleting own account", func(t *testing.T) {
		f := newFixture()
		f.users.On("DeleteUser", 1, 1).Return(nil).Once()

		rr := f.request(t, http.MethodDelete, "/api/users/1", "", bearer(t, 1))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestUserInfoRoutes(t *testing.T) {
	t.Run("public get with missing profile", func(t *testing.T) {
		f := newFixture()
		f.userInfo.On("GetUserInfo", 99).Return(nil, sql.ErrNoRows).Once()

		rr := f.request(t, http.MethodGet, "/api/user-info/99", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("update requires a token", func(t *testing.T) {
		f := newFixture()

		rr := f.request(t, http.MethodPut, "/api/user-info/1", `{"fullname":"Ada"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		f.userInfo.AssertNotCalled(t, "UpdateUserInfo")
	})

	t.Run("owner updates their profile", func(t *testing.T) {
		f := newFixture()
		fullname := "Ada Lovelace"
		f.userInfo.On("UpdateUserInfo", 1, 1, mock.Anything).Return(&model.UserInfo{UserID: 1, Fullname: &fullname}, nil).Once()

		rr := f.request(t, http.MethodPut, "/api/user-info/1", `{"fullname":"Ada Lovelace"}`, bearer(t, 1))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Ada Lovelace")
	})
}
