package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/danghuy/secondcell/internal/domain"
	"github.com/danghuy/secondcell/internal/usecase"
)

type Server struct {
	mux       *http.ServeMux
	inventory *usecase.InventoryUC
	catalog   *usecase.CatalogUC
	chat      *usecase.ChatUC
	sales     domain.SaleRepo
	recommend domain.Recommender

	adminUser    string
	adminPass    string
	adminAllowed map[string]struct{}
	adminSecret  []byte
	oauthCfg     *oauth2.Config
}

// Options carries the admin-panel auth knobs; everything else arrives as
// an explicit dependency.
type Options struct {
	AdminUser     string
	AdminPass     string
	AllowedEmails []string
	Secret        string
	OAuth         *oauth2.Config
}

func New(inv *usecase.InventoryUC, cat *usecase.CatalogUC, chat *usecase.ChatUC, sales domain.SaleRepo, rec domain.Recommender, opts Options) http.Handler {
	s := &Server{
		mux:       http.NewServeMux(),
		inventory: inv,
		catalog:   cat,
		chat:      chat,
		sales:     sales,
		recommend: rec,
		adminUser: opts.AdminUser,
		adminPass: opts.AdminPass,
		oauthCfg:  opts.OAuth,
	}

	s.adminAllowed = map[string]struct{}{}
	for _, e := range opts.AllowedEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			s.adminAllowed[e] = struct{}{}
		}
	}
	sec := opts.Secret
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		RateLimit(120),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/upload", s.apiUpload)
	s.mux.HandleFunc("/api/images/delete", s.apiDeleteImages)

	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)

	s.mux.HandleFunc("/api/chat/conversations", s.apiConversations)
	s.mux.HandleFunc("/api/chat/messages", s.apiMessages)
	s.mux.HandleFunc("/api/chat/unread", s.apiUnread)

	s.mux.HandleFunc("/api/recommend", s.apiRecommend)

	s.mux.HandleFunc("/api/admin/sales", s.apiSales)
	s.mux.HandleFunc("/api/admin/sales/export", s.apiSalesExport)

	s.mux.HandleFunc("/admin/auth", s.handleAdminAuth)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)
	s.mux.HandleFunc("/auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("/auth/google/callback", s.handleGoogleCallback)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the error taxonomy onto status codes. Every workflow
// failure surfaces as {"error": ...} for the UI toast.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	case domain.IsStorage(err):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}
