// Package steam composes the upstream client, governors, caches and
// normalizers into the per-feature operations served by the API.
package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"steam-bff-backend/config"
	"steam-bff-backend/internal/cache"
	"steam-bff-backend/internal/governor"
	"steam-bff-backend/internal/normalize"
	"steam-bff-backend/internal/parse"
	"steam-bff-backend/internal/upstream"
)

const (
	// inventoryPageSize is the number of assets requested per inventory call.
	inventoryPageSize = 2000
	// marketAppID is the only app whose prices and listings are looked up.
	marketAppID = "730"
)

var errInspectServerStatus = errors.New("inspection service server error")

// Service runs every Steam-facing operation. Build it once with NewService
// and share it; all state it holds is safe for concurrent use.
type Service struct {
	cfg    config.SteamConfig
	logger *zap.Logger

	general *upstream.Client
	market  *upstream.Client
	inspect *upstream.Client
	images  *upstream.Client

	generalGov *governor.Governor
	marketGov  *governor.Governor

	prices      *cache.Cache[normalize.Price]
	priceFlight singleflight.Group
	breaker     *gobreaker.CircuitBreaker

	profiles ProfileLookup
	parser   parse.SkinParser
}

// NewService wires the clients, governors, price cache, inspection breaker
// and profile strategy from cfg.
func NewService(cfg config.SteamConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.CommunityURL = strings.TrimRight(cfg.CommunityURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	general := upstream.New(upstream.Options{Timeout: cfg.GeneralTimeout, Proxy: cfg.HTTPProxy, Logger: logger})

	s := &Service{
		cfg:        cfg,
		logger:     logger,
		general:    general,
		market:     upstream.New(upstream.Options{Timeout: cfg.MarketTimeout, Proxy: cfg.HTTPProxy, Logger: logger}),
		inspect:    upstream.New(upstream.Options{Timeout: cfg.GeneralTimeout, Logger: logger}),
		generalGov: governor.New("steam-general", cfg.MinInterval),
		marketGov:  governor.New("steam-market", cfg.MinInterval),
		prices:     cache.New[normalize.Price]("market-price", cfg.MarketCacheTTL),
		profiles:   NewProfileLookup(cfg, general),
		parser:     parse.RegexSkinParser{},
	}
	s.images = upstream.New(upstream.Options{
		Timeout:       cfg.GeneralTimeout,
		Proxy:         cfg.HTTPProxy,
		Logger:        logger,
		CheckRedirect: s.checkImageRedirect,
	})
	s.breaker = newInspectBreaker(cfg, logger)
	return s
}

func newInspectBreaker(cfg config.SteamConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	maxFailures := uint32(cfg.BreakerMaxFailures)
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inspection",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// ProfileStrategy names the profile lookup selected at startup.
func (s *Service) ProfileStrategy() string {
	return s.profiles.Name()
}

func (s *Service) inventoryURL(steamID, appID, contextID string, count int) string {
	return fmt.Sprintf("%s/inventory/%s/%s/%s?l=english&count=%d",
		s.cfg.CommunityURL, url.PathEscape(steamID), url.PathEscape(appID), url.PathEscape(contextID), count)
}

// Inventory fetches one page of a user's inventory. It never fails; upstream
// problems are reported through Inventory.Message.
func (s *Service) Inventory(ctx context.Context, steamID, appID, contextID string) normalize.Inventory {
	if !parse.IsSteamID(steamID) {
		return normalize.EmptyInventory(normalize.MsgInvalidSteamID)
	}
	if appID == "" {
		appID = s.cfg.DefaultAppID
	}
	if contextID == "" {
		contextID = s.cfg.DefaultContextID
	}

	if _, err := s.generalGov.Acquire(ctx); err != nil {
		return normalize.InventoryFrom(nil, err)
	}
	resp, err := s.general.Get(ctx, s.inventoryURL(steamID, appID, contextID, inventoryPageSize))
	s.logOutcome("inventory", steamID, resp, err)
	return normalize.InventoryFrom(resp, err)
}

// TestInventory checks whether a user's default inventory is publicly readable.
func (s *Service) TestInventory(ctx context.Context, steamID string) normalize.InventoryCheck {
	if !parse.IsSteamID(steamID) {
		return normalize.InventoryCheck{Message: normalize.MsgInvalidSteamID}
	}
	if _, err := s.generalGov.Acquire(ctx); err != nil {
		return normalize.InventoryCheckFrom(nil, err)
	}
	resp, err := s.general.Get(ctx, s.inventoryURL(steamID, s.cfg.DefaultAppID, s.cfg.DefaultContextID, 1))
	s.logOutcome("test-inventory", steamID, resp, err)
	return normalize.InventoryCheckFrom(resp, err)
}

// MarketPrice returns the price overview of an item. Successful and
// throttled answers are cached for the market TTL; a cached answer skips the
// market governor entirely. Concurrent lookups of the same name share one
// upstream call.
func (s *Service) MarketPrice(ctx context.Context, marketHashName string) normalize.Price {
	if price, ok := s.prices.Get(marketHashName); ok {
		return price
	}

	v, _, _ := s.priceFlight.Do(marketHashName, func() (interface{}, error) {
		return s.fetchPrice(ctx, marketHashName), nil
	})
	return v.(normalize.Price)
}

func (s *Service) fetchPrice(ctx context.Context, marketHashName string) normalize.Price {
	// A flight that started just after another one stored its answer.
	if price, ok := s.prices.Get(marketHashName); ok {
		return price
	}

	if _, err := s.marketGov.Acquire(ctx); err != nil {
		return normalize.ZeroPrice()
	}

	q := url.Values{}
	q.Set("appid", marketAppID)
	q.Set("currency", fmt.Sprint(s.cfg.MarketCurrency))
	q.Set("market_hash_name", marketHashName)
	resp, err := s.market.Get(ctx, s.cfg.CommunityURL+"/market/priceoverview/?"+q.Encode())
	s.logOutcome("market-price", marketHashName, resp, err)

	price := normalize.PriceFrom(resp, err)
	if err == nil && (resp.OK() || resp.StatusCode == http.StatusTooManyRequests) {
		s.prices.Put(marketHashName, price)
	}
	return price
}

// ItemDetails looks up an inspect link. Failures are returned as
// *normalize.UpstreamError. The inspection service is not governed but sits
// behind a circuit breaker; 5xx answers and transport errors count against it.
func (s *Service) ItemDetails(ctx context.Context, inspectLink string) (normalize.ItemDetails, error) {
	target := s.cfg.InspectURL + "?" + url.Values{"url": {inspectLink}}.Encode()

	out, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.inspect.Get(ctx, target)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errInspectServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return normalize.ItemDetails{}, &normalize.UpstreamError{
			Status:  http.StatusServiceUnavailable,
			Message: "inspection service unavailable",
			Err:     err,
		}
	case errors.Is(err, errInspectServerStatus):
		err = nil
	}

	resp, _ := out.(*upstream.Response)
	details, err := normalize.ItemDetailsFrom(resp, err)
	if err != nil {
		s.logger.Warn("item inspection failed", zap.String("inspect_link", inspectLink), zap.Error(err))
	}
	return details, err
}

// Profile returns the public profile summary of a user. A malformed steam
// id is rejected with a 400 UpstreamError before any outbound call.
func (s *Service) Profile(ctx context.Context, steamID string) (normalize.PlayerSummaries, error) {
	if !parse.IsSteamID(steamID) {
		return normalize.PlayerSummaries{}, &normalize.UpstreamError{
			Status:  http.StatusBadRequest,
			Message: normalize.MsgInvalidSteamID,
		}
	}
	if _, err := s.generalGov.Acquire(ctx); err != nil {
		return normalize.PlayerSummaries{}, fmt.Errorf("waiting for steam: %w", err)
	}
	summaries, err := s.profiles.Lookup(ctx, steamID)
	if err != nil {
		s.logger.Warn("profile lookup failed",
			zap.String("steam_id", steamID),
			zap.String("strategy", s.profiles.Name()),
			zap.Error(err),
		)
	}
	return summaries, err
}

// Skin scrapes best-effort metadata from an item's market listing page.
func (s *Service) Skin(ctx context.Context, marketHashName string) (normalize.Skin, error) {
	if _, err := s.generalGov.Acquire(ctx); err != nil {
		return normalize.Skin{}, fmt.Errorf("waiting for steam: %w", err)
	}

	pageURL := fmt.Sprintf("%s/market/listings/%s/%s", s.cfg.CommunityURL, marketAppID, url.PathEscape(marketHashName))
	resp, err := s.general.Get(ctx, pageURL)
	s.logOutcome("skin", marketHashName, resp, err)
	if err != nil {
		return normalize.Skin{}, &normalize.UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "failed to fetch market listing",
			Err:     err,
		}
	}
	if !resp.OK() {
		return normalize.Skin{}, &normalize.UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("market listing returned status %d", resp.StatusCode),
		}
	}

	return normalize.SkinFrom(marketHashName, s.parser.Parse(resp.Body)), nil
}

func (s *Service) logOutcome(op, subject string, resp *upstream.Response, err error) {
	switch {
	case err != nil:
		s.logger.Error("steam request failed", zap.String("op", op), zap.String("subject", subject), zap.Error(err))
	case !resp.OK():
		s.logger.Warn("steam returned non-2xx", zap.String("op", op), zap.String("subject", subject), zap.Int("status", resp.StatusCode))
	}
}
