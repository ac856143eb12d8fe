package controllers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"strategyboard/app/middleware"
	"strategyboard/app/repositories"
	"strategyboard/app/responses"
	"strategyboard/app/services"
	"strategyboard/app/strategies"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/sha3"
)

// PostController handles HTTP requests for bulletin-board posts
type PostController struct {
	postService *services.PostService
	now         func() time.Time
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{
		postService: postService,
		now:         time.Now,
	}
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status              string    `json:"status"`
	Timestamp           time.Time `json:"timestamp"`
	AvailableStrategies []string  `json:"availableStrategies"`
}

// Index handles listing posts with the requested strategy
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	req := services.NewListRequest()
	query := r.URL.Query()

	if s := query.Get("strategy"); s != "" {
		req.Strategy = s
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			pc.sendError(w, http.StatusBadRequest, responses.CodeValidationFailed, "page must be an integer")
			return
		}
		req.Page = page
	}
	if v := query.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			pc.sendError(w, http.StatusBadRequest, responses.CodeValidationFailed, "size must be an integer")
			return
		}
		req.Size = size
	}
	if v := query.Get("lastId"); v != "" {
		lastID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			pc.sendError(w, http.StatusBadRequest, responses.CodeValidationFailed, "lastId must be an integer")
			return
		}
		req.LastID = &lastID
	}

	page, err := pc.postService.ListPosts(r.Context(), req)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	pc.sendJSON(w, http.StatusOK, page)
}

// Show handles fetching a single post. Posts never change after creation,
// so the body hash is a stable entity tag.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		pc.sendError(w, http.StatusBadRequest, responses.CodeValidationFailed, "id must be an integer")
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(post); err != nil {
		pc.handleError(w, r, err)
		return
	}

	etag := entityTag(body.Bytes())
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body.Bytes()); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// Health reports liveness and the strategies the server accepts
func (pc *PostController) Health(w http.ResponseWriter, r *http.Request) {
	pc.sendJSON(w, http.StatusOK, HealthStatus{
		Status:              "UP",
		Timestamp:           pc.now().UTC(),
		AvailableStrategies: pc.postService.AvailableStrategies(),
	})
}

// Strategies lists the registered strategy names
func (pc *PostController) Strategies(w http.ResponseWriter, r *http.Request) {
	pc.sendJSON(w, http.StatusOK, pc.postService.AvailableStrategies())
}

func entityTag(body []byte) string {
	sum := sha3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches applies the weak comparison If-None-Match requires: any
// listed tag matches regardless of a W/ prefix.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// handleError maps service errors onto the API error shape. Unexpected
// errors are logged and replaced with a generic message.
func (pc *PostController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, strategies.ErrUnsupportedStrategy):
		pc.sendError(w, http.StatusBadRequest, responses.CodeInvalidStrategy, err.Error())
	case errors.Is(err, services.ErrValidation):
		pc.sendError(w, http.StatusBadRequest, responses.CodeValidationFailed, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		pc.sendError(w, http.StatusNotFound, responses.CodeNotFound, notFoundMessage(r))
	default:
		log.Printf("ERROR %s %s: %v request_id=%s", r.Method, r.URL.RequestURI(), err, middleware.RequestIDFromContext(r.Context()))
		pc.sendError(w, http.StatusInternalServerError, responses.CodeInternalError, responses.InternalErrorMessage)
	}
}

func notFoundMessage(r *http.Request) string {
	if id, ok := mux.Vars(r)["id"]; ok {
		return fmt.Sprintf("post %s not found", id)
	}
	return "resource not found"
}

// Helper methods for consistent response handling

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	responses.JSON(w, status, data)
}

func (pc *PostController) sendError(w http.ResponseWriter, status int, code, message string) {
	responses.Error(w, status, code, message)
}
