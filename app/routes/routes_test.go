package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"strategyboard/app/controllers"
	"strategyboard/app/middleware"
	"strategyboard/app/models"
	"strategyboard/app/repositories"
	"strategyboard/app/services"
	"strategyboard/app/strategies"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T, n int) *mux.Router {
	store, err := repositories.OpenStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	postRepo := store.Posts()
	_, err = services.NewSeeder(postRepo).Seed(context.Background(), n)
	require.NoError(t, err)

	postService := services.NewPostService(postRepo, strategies.NewDefaultRegistry(postRepo))
	return SetupRoutes(controllers.NewPostController(postService))
}

func request(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func pageIDs(page models.PageResponse) []int64 {
	out := make([]int64, 0, len(page.Content))
	for _, p := range page.Content {
		out = append(out, p.ID)
	}
	return out
}

func TestAPIRoutes(t *testing.T) {
	router := setupTestRouter(t, 50)

	t.Run("pagination walks every post once", func(t *testing.T) {
		var seen []int64
		for p := 0; p < 5; p++ {
			w := request(router, http.MethodGet, "/api/posts?strategy=pagination&size=10&page="+strconv.Itoa(p))
			require.Equal(t, http.StatusOK, w.Code)

			var page models.PageResponse
			decode(t, w, &page)
			assert.Equal(t, p, *page.Page)
			assert.Equal(t, p == 0, *page.First)
			assert.Equal(t, p == 4, *page.Last)
			assert.Equal(t, p < 4, page.HasNext)
			seen = append(seen, pageIDs(page)...)
		}

		require.Len(t, seen, 50)
		for i, id := range seen {
			assert.Equal(t, int64(50-i), id)
		}
	})

	t.Run("infinite scroll follows the cursor", func(t *testing.T) {
		w := request(router, http.MethodGet, "/api/posts?strategy=infinite&size=10")
		require.Equal(t, http.StatusOK, w.Code)

		var first models.PageResponse
		decode(t, w, &first)
		assert.Equal(t, []int64{50, 49, 48, 47, 46, 45, 44, 43, 42, 41}, pageIDs(first))
		require.NotNil(t, first.NextCursor)
		assert.Equal(t, int64(41), *first.NextCursor)

		w = request(router, http.MethodGet, "/api/posts?strategy=infinite&size=10&lastId=41")
		require.Equal(t, http.StatusOK, w.Code)

		var second models.PageResponse
		decode(t, w, &second)
		assert.Equal(t, []int64{40, 39, 38, 37, 36, 35, 34, 33, 32, 31}, pageIDs(second))
	})

	t.Run("infinite scroll reaches the end", func(t *testing.T) {
		var seen []int64
		target := "/api/posts?strategy=infinite&size=7"
		for i := 0; i < 20; i++ {
			var page models.PageResponse
			decode(t, request(router, http.MethodGet, target), &page)
			seen = append(seen, pageIDs(page)...)
			if !page.HasNext {
				assert.Nil(t, page.NextCursor)
				break
			}
			target = "/api/posts?strategy=infinite&size=7&lastId=" + strconv.FormatInt(*page.NextCursor, 10)
		}
		assert.Len(t, seen, 50)
	})

	t.Run("single post", func(t *testing.T) {
		w := request(router, http.MethodGet, "/api/posts/42")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("ETag"))
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

		var post models.Post
		decode(t, w, &post)
		assert.Equal(t, int64(42), post.ID)
		assert.Equal(t, "author3", post.Author)
	})

	t.Run("health", func(t *testing.T) {
		w := request(router, http.MethodGet, "/api/posts/health")
		require.Equal(t, http.StatusOK, w.Code)

		var health controllers.HealthStatus
		decode(t, w, &health)
		assert.Equal(t, "UP", health.Status)
		assert.Equal(t, []string{"infinite", "pagination"}, health.AvailableStrategies)
	})

	t.Run("strategies", func(t *testing.T) {
		var names []string
		decode(t, request(router, http.MethodGet, "/api/posts/strategies"), &names)
		assert.Equal(t, []string{"infinite", "pagination"}, names)
	})
}

func TestAPIErrors(t *testing.T) {
	router := setupTestRouter(t, 3)

	tests := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{name: "missing post", method: http.MethodGet, target: "/api/posts/999", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown route", method: http.MethodGet, target: "/api/nothing", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown strategy", method: http.MethodGet, target: "/api/posts?strategy=random", status: http.StatusBadRequest, code: "INVALID_STRATEGY"},
		{name: "invalid size", method: http.MethodGet, target: "/api/posts?size=500", status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "invalid page", method: http.MethodGet, target: "/api/posts?page=-3", status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "non numeric id", method: http.MethodGet, target: "/api/posts/first", status: http.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "wrong method", method: http.MethodPost, target: "/api/posts", status: http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, tt.method, tt.target)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]interface{}
			decode(t, w, &body)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, float64(tt.status), body["status"])
			assert.NotEmpty(t, body["message"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}

	t.Run("invalid strategy message lists names", func(t *testing.T) {
		var body map[string]interface{}
		decode(t, request(router, http.MethodGet, "/api/posts?strategy=random"), &body)
		assert.Contains(t, body["message"], "[infinite, pagination]")
	})
}
