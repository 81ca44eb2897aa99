package api

import (
	"errors"
	"net/http"
	"strconv"

	"lista-zakupow/internal/database"
	"lista-zakupow/internal/logger"
	"lista-zakupow/internal/models"
	"lista-zakupow/internal/sharecodec"

	"github.com/go-chi/chi/v5"
)

type CreateShareRequest struct {
	Items   []models.ShoppingItem `json:"items" validate:"required,min=1,dive"`
	Recipes []string              `json:"recipes,omitempty" example:"olivier,herring"`
}

// @Summary      Share a shopping list
// @Description  Stores a snapshot of the list under a new short share id and returns the link.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        request  body      CreateShareRequest  true  "Items to share"
// @Success      201      {object}  models.ShareMetadata
// @Failure      400      {string}  string "Bad Request"
// @Failure      500      {string}  string "Internal Server Error"
// @Router       /api/lists/share [post]
func (s *Server) CreateShareHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	shareID, err := generateUniqueID(r.Context(), shareIDLength, s.store.ShareExists)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to generate share id", "error", err)
		http.Error(w, "Failed to share list", http.StatusInternalServerError)
		return
	}

	shared, err := s.store.CreateShare(r.Context(), shareID, req.Items, req.Recipes)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create share", "error", err)
		http.Error(w, "Failed to share list", http.StatusInternalServerError)
		return
	}

	listEvents.WithLabelValues("share_created").Inc()
	logger.FromContext(r.Context()).Info("List shared", "share_id", shareID, "items", len(req.Items))
	respondJSON(w, http.StatusCreated, models.ShareMetadata{
		ShareID:   shareID,
		URL:       sharecodec.ShareURL(s.config.AppURL, shareID, ""),
		ExpiresAt: models.ExpiresAt(shared.Metadata.CreatedAt),
	})
}

// @Summary      Get a shared list
// @Description  Opening a shared list counts as a view. Pollers pass `since`
// @Description  (their last known updatedAt) and get 304 when nothing changed; such reads are not counted.
// @Tags         shares
// @Produce      json
// @Param        shareId  path      string  true   "Share ID"
// @Param        since    query     int     false  "Last known updatedAt in milliseconds"
// @Success      200      {object}  models.SharedList
// @Success      304      {string}  string "Not Modified"
// @Failure      400      {string}  string "Bad Request"
// @Failure      404      {string}  string "Not Found"
// @Failure      500      {string}  string "Internal Server Error"
// @Router       /api/lists/share/{shareId} [get]
func (s *Server) GetShareHandler(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareId")

	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid since parameter", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	shared, err := s.store.GetShare(r.Context(), shareID, since == 0)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to fetch shared list", "share_id", shareID, "error", err)
		http.Error(w, "Failed to fetch shared list", http.StatusInternalServerError)
		return
	}
	if shared == nil {
		http.Error(w, "Shared list not found or expired", http.StatusNotFound)
		return
	}
	if since > 0 && shared.Metadata.UpdatedAt <= since {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if since == 0 {
		shareViews.Inc()
	}

	respondJSON(w, http.StatusOK, shared)
}

// @Summary      Replace the items of a shared list
// @Description  Last write wins. Connected viewers get a list_updated event.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Param        shareId  path      string        true  "Share ID"
// @Param        request  body      ItemsRequest  true  "New items"
// @Success      200      {object}  models.SharedList
// @Failure      400      {string}  string "Bad Request"
// @Failure      404      {string}  string "Not Found"
// @Failure      500      {string}  string "Internal Server Error"
// @Router       /api/lists/share/{shareId} [patch]
func (s *Server) UpdateShareHandler(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareId")

	var req ItemsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	shared, err := s.store.UpdateShare(r.Context(), shareID, req.Items)
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			http.Error(w, "Shared list not found or expired", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update shared list", "share_id", shareID, "error", err)
		http.Error(w, "Failed to update shared list", http.StatusInternalServerError)
		return
	}

	listEvents.WithLabelValues("share_updated").Inc()
	if s.wsHub != nil {
		s.wsHub.PublishListUpdated(shareID, shared.Metadata.UpdatedAt)
	}
	respondJSON(w, http.StatusOK, shared)
}
