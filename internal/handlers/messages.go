package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/friendpost/backend/internal/ids"
	"github.com/friendpost/backend/internal/logging"
	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
)

// postedLabelLayout is the human-readable timestamp stored with each post,
// e.g. "02/01/2006 - 15:04".
const postedLabelLayout = "02/01/2006 - 15:04"

// MessageHandler implements the public message feed.
type MessageHandler struct {
	Messages MessageStore
	NowFunc  func() time.Time
}

// List handles GET /messages: every post, newest first.
func (h MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	messages, err := h.Messages.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("message listing failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if messages == nil {
		messages = []models.Message{}
	}
	respondJSON(ctx, w, http.StatusOK, messages)
}

// createMessageRequest carries exactly the five logical fields accepted on a
// post; unknown fields reject the write. Pointers distinguish absent from
// empty.
type createMessageRequest struct {
	UID           *string `json:"uid"`
	Name          *string `json:"name"`
	Body          *string `json:"body"`
	Recipient     *string `json:"recipient"`
	RecipientName *string `json:"recipientName"`
}

// Create handles POST /messages.
func (h MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req createMessageRequest
	if err := decoder.Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UID == nil || req.Name == nil || req.Body == nil || !ids.Valid(*req.UID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid message")
		return
	}

	// No recipient means a public post, recorded with the author as its own
	// recipient and an empty display name.
	recipient := *req.UID
	recipientName := ""
	if req.Recipient != nil {
		if req.RecipientName == nil || !ids.Valid(*req.Recipient) {
			respondError(ctx, w, http.StatusBadRequest, "invalid message")
			return
		}
		recipient = *req.Recipient
		recipientName = *req.RecipientName
	}

	body := strings.TrimSpace(*req.Body)
	if body == "" || len(body) > models.MaxMessageLength {
		respondError(ctx, w, http.StatusBadRequest, "message body must be between 1 and 140 characters")
		return
	}

	now := h.now()
	message := models.Message{
		ID:            ids.New(),
		AuthorID:      *req.UID,
		AuthorName:    *req.Name,
		Body:          body,
		RecipientID:   recipient,
		RecipientName: recipientName,
		Date:          now.Format(postedLabelLayout),
		UsersRead:     []string{},
		PostedAt:      now,
	}

	if err := h.Messages.Create(ctx, message); err != nil {
		logging.FromContext(ctx).Error("message creation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"id": message.ID})
}

// Get handles GET /messages/{id}.
func (h MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if !ids.Valid(id) {
		respondError(ctx, w, http.StatusBadRequest, "invalid id format")
		return
	}

	message, err := h.Messages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "message not found")
			return
		}
		logging.FromContext(ctx).Error("message lookup failed", "error", err, "id", id)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(ctx, w, http.StatusOK, message)
}

// readFlagRequest carries exactly the viewer id and the desired flag.
type readFlagRequest struct {
	ID   *string `json:"id"`
	Read *bool   `json:"read"`
}

// PatchRead handles PATCH /messages/{id}: toggles the viewer's membership in
// the message's read set. Applying the same flag twice is a no-op.
func (h MessageHandler) PatchRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if !ids.Valid(id) {
		respondError(ctx, w, http.StatusBadRequest, "invalid id format")
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req readFlagRequest
	if err := decoder.Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == nil || req.Read == nil || !ids.Valid(*req.ID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid read flag request")
		return
	}

	if err := h.Messages.SetReadFlag(ctx, id, *req.ID, *req.Read); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "message not found")
			return
		}
		logging.FromContext(ctx).Error("read flag update failed", "error", err, "id", id)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(ctx, w, http.StatusOK, *req.Read)
}

func (h MessageHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
