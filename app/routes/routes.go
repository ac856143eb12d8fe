package routes

import (
	"net/http"

	"strategyboard/app/controllers"
	"strategyboard/app/middleware"
	"strategyboard/app/responses"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(postController *controllers.PostController) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	// Fixed paths come before the id pattern.
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods(http.MethodGet)
	posts.HandleFunc("/health", postController.Health).Methods(http.MethodGet)
	posts.HandleFunc("/strategies", postController.Strategies).Methods(http.MethodGet)
	posts.HandleFunc("/{id}", postController.Show).Methods(http.MethodGet)

	// mux does not run middleware for unmatched routes, so the fallbacks
	// are wrapped explicitly.
	router.NotFoundHandler = wrap(http.HandlerFunc(notFound))
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(methodNotAllowed))

	return router
}

func wrap(h http.Handler) http.Handler {
	return middleware.RequestID(middleware.Logger(h))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	responses.Error(w, http.StatusNotFound, responses.CodeNotFound, "no route for "+r.Method+" "+r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	responses.Error(w, http.StatusMethodNotAllowed, responses.CodeMethodNotAllowed, "method "+r.Method+" is not allowed on "+r.URL.Path)
}
