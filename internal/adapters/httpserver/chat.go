package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danghuy/secondcell/internal/usecase"
)

func (s *Server) apiConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if user := strings.TrimSpace(r.URL.Query().Get("user")); user != "" {
			convs, err := s.chat.Conversations.ListByUser(r.Context(), user)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, 200, map[string]any{"conversations": convs})
			return
		}
		// no user filter means the admin inbox
		if !s.requireAdmin(w, r) {
			return
		}
		convs, err := s.chat.Conversations.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"conversations": convs})
	case http.MethodPost:
		var req struct {
			UserID    string `json:"userId"`
			UserName  string `json:"userName"`
			UserEmail string `json:"userEmail"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		c, err := s.chat.Open(r.Context(), req.UserID, req.UserName, req.UserEmail)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"conversation": c})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := strings.TrimSpace(r.URL.Query().Get("conversation"))
		if id == "" {
			writeJSON(w, 400, map[string]any{"error": "conversation required"})
			return
		}
		msgs, err := s.chat.History(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"messages": msgs})
	case http.MethodPost:
		var req struct {
			ConversationID string `json:"conversationId"`
			SenderID       string `json:"senderId"`
			Text           string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, 400, map[string]any{"error": "bad json"})
			return
		}
		m, err := s.chat.Send(r.Context(), req.ConversationID, req.SenderID, req.Text)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, map[string]any{"message": m})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiUnread(w http.ResponseWriter, r *http.Request) {
	viewer := strings.TrimSpace(r.URL.Query().Get("viewer"))
	if viewer == "" {
		writeJSON(w, 400, map[string]any{"error": "viewer required"})
		return
	}
	unread, err := s.chat.HasUnread(r.Context(), viewer)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"hasUnread": unread})
}

func (s *Server) apiRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if s.recommend == nil {
		writeJSON(w, 503, map[string]any{"error": "recommendations not configured"})
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeJSON(w, 400, map[string]any{"error": "query required"})
		return
	}

	window, err := s.catalog.List(r.Context(), usecase.CatalogFilter{})
	if err != nil {
		writeErr(w, err)
		return
	}
	answer, err := s.recommend.Recommend(r.Context(), req.Query, window)
	if err != nil {
		writeJSON(w, 502, map[string]any{"error": "recommendation failed"})
		return
	}
	writeJSON(w, 200, map[string]any{"answer": answer})
}
