package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"voxpress/internal/httpkit"
	"voxpress/internal/models"
	"voxpress/internal/repositories"
)

type CreatePostRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// CreatePost is the submission API: validate, persist PENDING, publish the
// "job created" event, return the id. Publish happens strictly after the
// insert so an event can never reference a job that does not exist.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	var req CreatePostRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "text is required", map[string]any{"field": "text"})
		return
	}
	voice := strings.TrimSpace(req.Voice)
	if !h.voices.Known(voice) {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unknown voice", map[string]any{
			"field":  "voice",
			"voices": h.voices.IDs(),
		})
		return
	}

	job := models.NewJob(uuid.NewString(), text, voice)

	if err := h.store.Create(ctx, job); err != nil {
		log.Error("job insert failed", "error", err.Error())
		httpkit.WriteErr(w, 503, "STORE_UNAVAILABLE", "job store unavailable", nil)
		return
	}

	if err := h.bus.Publish(ctx, job.ID); err != nil {
		// The row stays PENDING; the reconciliation sweep republishes it.
		log.Error("event publish failed", "job_id", job.ID, "error", err.Error())
		httpkit.WriteErr(w, 503, "BUS_UNAVAILABLE", "event bus unavailable", map[string]any{"id": job.ID})
		return
	}

	log.Info("job submitted", "job_id", job.ID, "voice", voice)
	httpkit.WriteJSON(w, 201, map[string]any{"id": job.ID})
}

// GetPost is the query API: current job record by id, read-only.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	postID := strings.TrimSpace(r.URL.Query().Get("postId"))
	if postID == "" {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "postId is required", map[string]any{"field": "postId"})
		return
	}

	job, err := h.store.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			httpkit.WriteErr(w, 404, "NOT_FOUND", "job not found", map[string]any{"post_id": postID})
			return
		}
		h.log.FromContext(ctx).Error("job lookup failed", "error", err.Error())
		httpkit.WriteErr(w, 503, "STORE_UNAVAILABLE", "job store unavailable", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"job": job})
}
