package api

import (
	"context"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"steam-bff-backend/config"
	"steam-bff-backend/internal/normalize"
	"steam-bff-backend/internal/store"
	"steam-bff-backend/internal/upstream"
)

// SteamService is the set of Steam operations the handlers expose.
type SteamService interface {
	Inventory(ctx context.Context, steamID, appID, contextID string) normalize.Inventory
	TestInventory(ctx context.Context, steamID string) normalize.InventoryCheck
	MarketPrice(ctx context.Context, marketHashName string) normalize.Price
	ItemDetails(ctx context.Context, inspectLink string) (normalize.ItemDetails, error)
	Profile(ctx context.Context, steamID string) (normalize.PlayerSummaries, error)
	Skin(ctx context.Context, marketHashName string) (normalize.Skin, error)
	Image(ctx context.Context, rawURL string) (*upstream.Response, error)
}

// AssertionVerifier checks an OpenID assertion and builds login redirects.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion url.Values) (bool, error)
	LoginURL(returnTo, realm string) string
}

// TokenIssuer mints session credentials.
type TokenIssuer interface {
	Issue(uid string) (string, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg      config.ServerConfig
	steam    SteamService
	verifier AssertionVerifier
	users    store.Store
	tokens   TokenIssuer
	log      *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg config.ServerConfig, steam SteamService, verifier AssertionVerifier, users store.Store, tokens TokenIssuer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:      cfg,
		steam:    steam,
		verifier: verifier,
		users:    users,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

// upstreamContext detaches upstream work from the client connection so a
// disconnect does not abort an in-flight Steam call.
func upstreamContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
