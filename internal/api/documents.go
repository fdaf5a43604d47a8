package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/pkg/handlers"
	"github.com/JaimeStill/brief/pkg/routes"
	"github.com/JaimeStill/brief/pkg/storage"
)

// documentsPrefix is the blob key prefix under which sessions store uploads.
const documentsPrefix = "sessions/"

// documentsHandler exposes stored session documents read-only.
// Every key it serves is confined to documentsPrefix.
type documentsHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newDocumentsHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
) *documentsHandler {
	return &documentsHandler{
		store:       store,
		logger:      logger.With("handler", "documents"),
		maxListSize: maxListSize,
	}
}

func (h *documentsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
			{Method: "GET", Pattern: "/{key...}", Handler: h.find},
		},
	}
}

// list pages through stored documents, optionally scoped to one session.
func (h *documentsHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := documentsPrefix
	if v := r.URL.Query().Get("session"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid session id: %q", v))
			return
		}
		prefix += id.String() + "/"
	}

	maxResults, err := storage.ParseMaxResults(
		r.URL.Query().Get("max_results"),
		h.maxListSize,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(
		r.Context(),
		prefix,
		r.URL.Query().Get("marker"),
		maxResults,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *documentsHandler) find(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	meta, err := h.store.Find(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *documentsHandler) download(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("document download interrupted", "key", key, "error", err)
	}
}

func (h *documentsHandler) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if !strings.HasPrefix(key, documentsPrefix) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return "", false
	}
	return key, true
}
