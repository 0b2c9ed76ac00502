package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/Warky-Devs/backoffice/pkg/logger"
	"github.com/Warky-Devs/backoffice/pkg/search"
)

// statusClientClosedRequest is reported when the caller went away mid search
const statusClientClosedRequest = 499

type searchFunc func(ctx context.Context, params search.Params) (interface{}, error)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Handler serves list searches over registered collections
type Handler struct {
	mu          sync.RWMutex
	collections map[string]searchFunc
	checks      map[string]HealthCheck
	dev         bool
}

// NewHandler creates a handler. dev adds error details to failure bodies.
func NewHandler(dev bool) *Handler {
	return &Handler{
		collections: make(map[string]searchFunc),
		checks:      make(map[string]HealthCheck),
		dev:         dev,
	}
}

// Register exposes engine under its schema's collection name
func Register[T any](h *Handler, engine *search.Engine[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.collections[engine.Schema().Collection] = func(ctx context.Context, params search.Params) (interface{}, error) {
		return engine.Search(ctx, params)
	}
}

// AddHealthCheck adds a named dependency check to /healthz
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Collections lists registered collection names in order
func (h *Handler) Collections() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.collections))
	for name := range h.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// handlePanic is a helper function to handle panics with stack traces
func (h *Handler) handlePanic(w http.ResponseWriter, method string, err interface{}) {
	stack := debug.Stack()
	logger.Error("Panic in %s: %v\nStack trace:\n%s", method, err, string(stack))
	h.sendError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error in %s", method), fmt.Errorf("%v", err))
}

// Search handles GET /api/v1/{collection}
func (h *Handler) Search(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.handlePanic(w, "Search", err)
			}
		}()

		h.mu.RLock()
		run, ok := h.collections[collection]
		h.mu.RUnlock()
		if !ok {
			h.sendError(w, http.StatusNotFound, "unknown_collection", fmt.Sprintf("No collection %q", collection), nil)
			return
		}

		params := search.ParamsFromValues(r.URL.Query())
		logger.Debug("Searching %s with %d params", collection, len(params))

		result, err := run(r.Context(), params)
		if err != nil {
			h.sendSearchError(w, collection, err)
			return
		}
		h.sendResponse(w, result)
	}
}

func (h *Handler) sendSearchError(w http.ResponseWriter, collection string, err error) {
	var storageErr *search.StorageError
	switch {
	case errors.Is(err, search.ErrInvalidSort):
		logger.Warn("Rejected %s search: %v", collection, err)
		h.sendError(w, http.StatusBadRequest, "invalid_sort", err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("Timed out searching %s: %v", collection, err)
		h.sendError(w, http.StatusGatewayTimeout, "timeout", "Search timed out", err)
	case errors.Is(err, context.Canceled):
		logger.Warn("Search of %s canceled: %v", collection, err)
		h.sendError(w, statusClientClosedRequest, "canceled", "Request canceled", err)
	case errors.As(err, &storageErr):
		logger.Error("Storage failure searching %s (%s): %v", collection, storageErr.Op, storageErr.Err)
		h.sendError(w, http.StatusInternalServerError, "storage_error", "Failed to query "+collection, err)
	default:
		logger.Error("Search of %s failed: %v", collection, err)
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Search failed", err)
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]HealthCheck, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	status := make(map[string]string, len(checks))
	healthy := true
	for name, check := range checks {
		if err := check(ctx); err != nil {
			logger.Warn("Health check %s failed: %v", name, err)
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, common.Response{
			Success: false,
			Data:    status,
			Error:   &common.APIError{Code: "unhealthy", Message: "One or more dependencies are unavailable"},
		})
		return
	}
	h.sendResponse(w, status)
}

func (h *Handler) sendResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, common.Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string, err error) {
	apiErr := &common.APIError{Code: code, Message: message}
	if h.dev && err != nil {
		apiErr.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, common.Response{
		Success: false,
		Error:   apiErr,
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to write response: %v", err)
	}
}
