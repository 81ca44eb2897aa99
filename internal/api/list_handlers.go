package api

import (
	"errors"
	"net/http"

	"lista-zakupow/internal/database"
	"lista-zakupow/internal/logger"
	"lista-zakupow/internal/models"

	"github.com/go-chi/chi/v5"
)

type ItemsRequest struct {
	Items []models.ShoppingItem `json:"items" validate:"required,dive"`
}

// @Summary      Create a shopping list
// @Description  Stores a new owned list and returns it with a server-assigned id.
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        request body      ItemsRequest  true  "List items"
// @Success      201     {object}  models.ShoppingList
// @Failure      400     {string}  string "Bad Request"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /lists [post]
func (s *Server) CreateListHandler(w http.ResponseWriter, r *http.Request) {
	var req ItemsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id, err := generateUniqueID(r.Context(), listIDLength, s.store.ListExists)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to generate list id", "error", err)
		http.Error(w, "Failed to create list", http.StatusInternalServerError)
		return
	}

	list, err := s.store.CreateList(r.Context(), id, req.Items)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create list", "error", err)
		http.Error(w, "Failed to create list", http.StatusInternalServerError)
		return
	}

	listEvents.WithLabelValues("list_created").Inc()
	respondJSON(w, http.StatusCreated, list)
}

// @Summary      Get a shopping list
// @Tags         lists
// @Produce      json
// @Param        listId  path      string  true  "List ID"
// @Success      200     {object}  models.ShoppingList
// @Failure      404     {string}  string "Not Found"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /lists/{listId} [get]
func (s *Server) GetListHandler(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	list, err := s.store.GetList(r.Context(), listID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to fetch list", "list_id", listID, "error", err)
		http.Error(w, "Failed to fetch list", http.StatusInternalServerError)
		return
	}
	if list == nil {
		http.Error(w, "List not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// @Summary      Replace the items of a shopping list
// @Tags         lists
// @Accept       json
// @Produce      json
// @Param        listId   path      string        true  "List ID"
// @Param        request  body      ItemsRequest  true  "New items"
// @Success      200      {object}  models.ShoppingList
// @Failure      400      {string}  string "Bad Request"
// @Failure      404      {string}  string "Not Found"
// @Failure      500      {string}  string "Internal Server Error"
// @Router       /lists/{listId} [patch]
func (s *Server) UpdateListHandler(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var req ItemsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := s.store.UpdateList(r.Context(), listID, req.Items)
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			http.Error(w, "List not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update list", "list_id", listID, "error", err)
		http.Error(w, "Failed to update list", http.StatusInternalServerError)
		return
	}

	listEvents.WithLabelValues("list_updated").Inc()
	respondJSON(w, http.StatusOK, list)
}
