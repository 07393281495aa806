package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/danghuy/secondcell/internal/adapters/httpserver"
	"github.com/danghuy/secondcell/internal/adapters/ledger"
	"github.com/danghuy/secondcell/internal/adapters/recommend"
	"github.com/danghuy/secondcell/internal/adapters/repo/mongostore"
	"github.com/danghuy/secondcell/internal/adapters/storage/s3store"
	"github.com/danghuy/secondcell/internal/config"
	"github.com/danghuy/secondcell/internal/domain"
	"github.com/danghuy/secondcell/internal/usecase"
)

// App is the composition root: every client is constructed here and
// injected down, nothing reaches for a package-level singleton.
type App struct {
	Inventory *usecase.InventoryUC
	Catalog   *usecase.CatalogUC
	Chat      *usecase.ChatUC
	Sales     domain.SaleRepo

	handler http.Handler
}

func New(ctx context.Context, cfg config.Config, client *mongo.Client) (*App, error) {
	db := client.Database(cfg.MongoDB)
	productRepo := mongostore.NewProductRepo(db)
	convRepo := mongostore.NewConversationRepo(db)
	msgRepo := mongostore.NewMessageRepo(db)
	saleRepo := mongostore.NewSaleRepo(db)

	var storage domain.ObjectStorage
	if cfg.StorageConfigured() {
		st, err := s3store.New(ctx, s3store.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		storage = st
	} else {
		log.Warn().Msg("object storage not configured, uploads will fail")
		storage = s3store.Disabled{}
	}

	var recommender domain.Recommender
	if cfg.OpenAIKey != "" {
		rc, err := recommend.New(cfg.OpenAIKey)
		if err != nil {
			return nil, err
		}
		recommender = rc
	}

	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	a := &App{
		Inventory: &usecase.InventoryUC{
			Products: productRepo,
			Storage:  storage,
			Ledger:   ledger.NewWebhook(cfg.LedgerWebhookURL),
			Sales:    saleRepo,
		},
		Catalog: &usecase.CatalogUC{Products: productRepo},
		Chat: &usecase.ChatUC{
			Conversations: convRepo,
			Messages:      msgRepo,
			AdminID:       cfg.AdminUserID,
		},
		Sales: saleRepo,
	}

	a.handler = httpserver.New(a.Inventory, a.Catalog, a.Chat, a.Sales, recommender, httpserver.Options{
		AdminUser:     cfg.AdminUser,
		AdminPass:     cfg.AdminPass,
		AllowedEmails: splitCSV(cfg.AdminAllowedCSV),
		Secret:        cfg.SecretKey,
		OAuth:         oauthCfg,
	})
	return a, nil
}

func (a *App) HTTPHandler() http.Handler { return a.handler }

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
