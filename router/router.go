package router

import (
	"net/http"

	"devsphere-api/handler"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter builds the full route table. Reads are public; every mutation
// sits behind AuthMiddleware so ownership can be checked against the token.
func NewRouter(authHandler *handler.AuthHandler, postHandler *handler.PostHandler, userHandler *handler.UserHandler, userInfoHandler *handler.UserInfoHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(handler.RequestLogger)

	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Auth
	r.Handle("/api/auth/signup", handler.ErrorHandlingMiddleware(authHandler.Signup)).Methods(http.MethodPost)
	r.Handle("/api/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login)).Methods(http.MethodPost)
	r.Handle("/api/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh)).Methods(http.MethodPost)
	r.Handle("/api/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout)).Methods(http.MethodPost)
	r.Handle("/api/auth/me", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(authHandler.Me))).Methods(http.MethodGet)

	// Posts
	r.Handle("/api/posts", handler.ErrorHandlingMiddleware(postHandler.GetFeed)).Methods(http.MethodGet)
	r.Handle("/api/posts/{user_id:[0-9]+}", handler.ErrorHandlingMiddleware(postHandler.GetUserPosts)).Methods(http.MethodGet)
	r.Handle("/api/posts", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(postHandler.CreatePost))).Methods(http.MethodPost)
	r.Handle("/api/posts/{id:[0-9]+}", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(postHandler.UpdatePost))).Methods(http.MethodPatch)
	r.Handle("/api/posts/{id:[0-9]+}", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(postHandler.DeletePost))).Methods(http.MethodDelete)

	// User info
	r.Handle("/api/user-info/{user_id:[0-9]+}", handler.ErrorHandlingMiddleware(userInfoHandler.GetUserInfo)).Methods(http.MethodGet)
	r.Handle("/api/user-info/{user_id:[0-9]+}", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(userInfoHandler.UpdateUserInfo))).Methods(http.MethodPut)

	// Users
	r.Handle("/api/users/{user_id:[0-9]+}", handler.ErrorHandlingMiddleware(userHandler.GetUser)).Methods(http.MethodGet)
	r.Handle("/api/users/{user_id:[0-9]+}", handler.AuthMiddleware(handler.ErrorHandlingMiddleware(userHandler.DeleteUser))).Methods(http.MethodDelete)

	return r
}
