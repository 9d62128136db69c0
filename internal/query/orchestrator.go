package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bundle-wizard/pkg/api"
	"bundle-wizard/pkg/platform"
)

// Backend is the slice of the gateway client the orchestrator needs.
type Backend interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	GetCoverage(ctx context.Context, addressID string) (*api.CoverageInfo, error)
	GetInstallSlots(ctx context.Context, addressID, tech string) (*api.InstallSlotsResponse, error)
	GetRecommendations(ctx context.Context, req *api.RecommendationRequest) (*api.RecommendationResponse, error)
	Checkout(ctx context.Context, req *api.CheckoutRequest) (*api.CheckoutResponse, error)
}

// Checkout guard errors. Both are client-local conditions, never sent over
// the wire.
var (
	ErrCheckoutPending = errors.New("a checkout is already in flight")
	ErrOrderComplete   = errors.New("an order was already completed in this session")
)

// Catalog is the result of the two-stage coverage → install-slots pipeline.
type Catalog struct {
	Coverage *api.CoverageInfo
	Slots    *api.InstallSlotsResponse
}

// Orchestrator wraps the gateway with caching, freshness windows, the
// dependent-fetch gate, and the at-most-one-in-flight checkout discipline.
// One instance per session.
type Orchestrator struct {
	backend Backend
	cache   *Cache
	cfg     *platform.Config
	logger  *slog.Logger

	mu              sync.Mutex
	checkoutPending bool
	orderID         string
}

// NewOrchestrator creates an orchestrator over the given backend.
func NewOrchestrator(backend Backend, cfg *platform.Config) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		cache:   NewCache(),
		cfg:     cfg,
		logger:  slog.Default(),
	}
}

func coverageKey(addressID string) string { return "coverage:" + addressID }

func slotsKey(addressID, tech string) string { return "slots:" + addressID + ":" + tech }

const slotsKeyPrefix = "slots:"

// Coverage fetches coverage for an address, fresh for the coverage TTL.
func (o *Orchestrator) Coverage(ctx context.Context, addressID string) (*api.CoverageInfo, error) {
	key := coverageKey(addressID)
	if v, ok := o.cache.Get(key, o.cfg.CoverageTTL); ok {
		return v.(*api.CoverageInfo), nil
	}

	token := o.cache.Begin(key)
	cov, err := o.backend.GetCoverage(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if !o.cache.Complete(key, token, cov) {
		o.logger.Debug("discarding superseded coverage response", "address_id", addressID)
	}
	return cov, nil
}

// ResolveTech picks the technology to schedule installation for: the first
// entry of available_tech, or fiber when coverage is absent or empty. The
// fiber fallback is an arbitrary default carried over from the backend
// contract, not a confirmed business rule.
func ResolveTech(cov *api.CoverageInfo) string {
	if cov != nil && len(cov.AvailableTech) > 0 {
		return cov.AvailableTech[0]
	}
	return api.TechFiber
}

// InstallSlots fetches the bookable slots for (address, tech), fresh for the
// slots TTL. Callers must have resolved tech from coverage first; Catalog
// enforces that ordering.
func (o *Orchestrator) InstallSlots(ctx context.Context, addressID, tech string) (*api.InstallSlotsResponse, error) {
	key := slotsKey(addressID, tech)
	if v, ok := o.cache.Get(key, o.cfg.InstallSlotsTTL); ok {
		return v.(*api.InstallSlotsResponse), nil
	}

	token := o.cache.Begin(key)
	slots, err := o.backend.GetInstallSlots(ctx, addressID, tech)
	if err != nil {
		return nil, err
	}
	if !o.cache.Complete(key, token, slots) {
		o.logger.Debug("discarding superseded slots response", "address_id", addressID, "tech", tech)
	}
	return slots, nil
}

// Catalog runs the two-stage pipeline: coverage first, then install slots for
// the resolved technology. The slot fetch is never issued before coverage
// resolves.
func (o *Orchestrator) Catalog(ctx context.Context, addressID string) (*Catalog, error) {
	cov, err := o.Coverage(ctx, addressID)
	if err != nil {
		return nil, err
	}
	slots, err := o.InstallSlots(ctx, addressID, ResolveTech(cov))
	if err != nil {
		return nil, err
	}
	return &Catalog{Coverage: cov, Slots: slots}, nil
}

// Recommend posts the household profile. One-shot: a failed request is not
// retried, but the result is cached under the exact request body so a repeat
// of the same input re-reads the cache instead of re-issuing.
func (o *Orchestrator) Recommend(ctx context.Context, req *api.RecommendationRequest) (*api.RecommendationResponse, error) {
	key, err := recommendationKey(req)
	if err != nil {
		return nil, err
	}
	if v, ok := o.cache.Get(key, o.cfg.RecommendationTTL); ok {
		return v.(*api.RecommendationResponse), nil
	}

	resp, err := o.backend.GetRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}
	o.cache.Put(key, resp)
	return resp, nil
}

func recommendationKey(req *api.RecommendationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("building recommendation cache key: %w", err)
	}
	return "recommendation:" + string(body), nil
}

// Checkout submits the order, enforcing at-most-one-in-flight per session and
// refusing a second order after a success. On success all cached install-slot
// entries are invalidated, a slot was just consumed.
func (o *Orchestrator) Checkout(ctx context.Context, req *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	o.mu.Lock()
	if o.orderID != "" {
		o.mu.Unlock()
		return nil, ErrOrderComplete
	}
	if o.checkoutPending {
		o.mu.Unlock()
		return nil, ErrCheckoutPending
	}
	o.checkoutPending = true
	o.mu.Unlock()

	resp, err := o.backend.Checkout(ctx, req)

	o.mu.Lock()
	o.checkoutPending = false
	if err == nil {
		o.orderID = resp.OrderID
	}
	o.mu.Unlock()

	if err != nil {
		// Recoverable: the confirm action stays enabled for a manual retry.
		return nil, err
	}

	o.cache.InvalidatePrefix(slotsKeyPrefix)
	o.logger.Info("checkout complete", "order_id", resp.OrderID, "status", resp.Status)
	return resp, nil
}

// OrderID returns the completed order id, empty until checkout succeeds.
func (o *Orchestrator) OrderID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderID
}

// Health checks backend liveness, fresh for the health TTL. Retries are
// bounded by the platform client's budget.
func (o *Orchestrator) Health(ctx context.Context) (*api.HealthResponse, error) {
	const key = "health"
	if v, ok := o.cache.Get(key, o.cfg.HealthTTL); ok {
		return v.(*api.HealthResponse), nil
	}
	h, err := o.backend.Health(ctx)
	if err != nil {
		return nil, err
	}
	o.cache.Put(key, h)
	return h, nil
}

// StartHealthPoll checks liveness immediately and then on a fixed interval
// until ctx is cancelled, reporting each outcome to onUpdate. Display only:
// a failing poll never gates a functional action.
func (o *Orchestrator) StartHealthPoll(ctx context.Context, onUpdate func(*api.HealthResponse, error)) {
	go func() {
		ticker := time.NewTicker(o.cfg.HealthPollInterval)
		defer ticker.Stop()

		onUpdate(o.Health(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				onUpdate(o.Health(ctx))
			}
		}
	}()
}
