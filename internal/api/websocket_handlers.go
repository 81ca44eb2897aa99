package api

import (
	"net/http"

	"lista-zakupow/internal/logger"
	"lista-zakupow/internal/websocket"

	"github.com/go-chi/chi/v5"
)

// @Summary      Watch a shared list
// @Description  Upgrades to a websocket that receives a list_updated event after every change.
// @Tags         shares
// @Param        shareId  path  string  true  "Share ID"
// @Success      101
// @Failure      404  {string}  string "Not Found"
// @Router       /api/lists/share/{shareId}/ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareId")
	log := logger.FromContext(r.Context())

	if s.wsHub == nil {
		http.Error(w, "Live updates are disabled", http.StatusNotFound)
		return
	}

	shared, err := s.store.GetShare(r.Context(), shareID, false)
	if err != nil {
		log.Error("Failed to fetch shared list", "share_id", shareID, "error", err)
		http.Error(w, "Failed to fetch shared list", http.StatusInternalServerError)
		return
	}
	if shared == nil {
		http.Error(w, "Shared list not found or expired", http.StatusNotFound)
		return
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("WebSocket upgrade error", "error", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, shareID)
	if !s.wsHub.Join(client) {
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
