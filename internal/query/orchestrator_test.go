package query

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-wizard/pkg/api"
	"bundle-wizard/pkg/errors"
	"bundle-wizard/pkg/platform"
)

// fakeBackend records calls so tests can assert on caching, ordering and the
// checkout discipline.
type fakeBackend struct {
	mu sync.Mutex

	coverage    *api.CoverageInfo
	coverageErr error

	coverageCalls int
	slotCalls     []string // tech per call
	recCalls      int
	checkoutCalls int

	checkoutEntered chan struct{} // closed once checkout starts, if set
	checkoutRelease chan struct{} // blocks checkout until closed, if set
	checkoutErr     error
}

func (f *fakeBackend) Health(ctx context.Context) (*api.HealthResponse, error) {
	return &api.HealthResponse{Status: "healthy", Service: "recommendation"}, nil
}

func (f *fakeBackend) GetCoverage(ctx context.Context, addressID string) (*api.CoverageInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coverageCalls++
	if f.coverageErr != nil {
		return nil, f.coverageErr
	}
	if f.coverage != nil {
		return f.coverage, nil
	}
	return &api.CoverageInfo{AddressID: addressID, AvailableTech: []string{api.TechFiber}}, nil
}

func (f *fakeBackend) GetInstallSlots(ctx context.Context, addressID, tech string) (*api.InstallSlotsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coverageCalls == 0 {
		return nil, assert.AnError // slots must never be fetched before coverage
	}
	f.slotCalls = append(f.slotCalls, tech)
	return &api.InstallSlotsResponse{
		AddressID: addressID,
		Tech:      tech,
		Slots: []api.InstallSlot{
			{SlotID: "S-1", AddressID: addressID, Tech: tech, Available: true},
		},
	}, nil
}

func (f *fakeBackend) GetRecommendations(ctx context.Context, req *api.RecommendationRequest) (*api.RecommendationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recCalls++
	return &api.RecommendationResponse{Top3: []api.RecommendationCandidate{
		{ComboLabel: "Combo A"}, {ComboLabel: "Combo B"},
	}}, nil
}

func (f *fakeBackend) Checkout(ctx context.Context, req *api.CheckoutRequest) (*api.CheckoutResponse, error) {
	f.mu.Lock()
	f.checkoutCalls++
	entered := f.checkoutEntered
	release := f.checkoutRelease
	err := f.checkoutErr
	f.mu.Unlock()

	if entered != nil {
		close(entered)
		f.mu.Lock()
		f.checkoutEntered = nil
		f.mu.Unlock()
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &api.CheckoutResponse{Status: "confirmed", OrderID: "ORD-1001"}, nil
}

func testConfig() *platform.Config {
	return &platform.Config{
		CoverageTTL:        5 * time.Minute,
		InstallSlotsTTL:    2 * time.Minute,
		RecommendationTTL:  10 * time.Minute,
		HealthTTL:          30 * time.Second,
		HealthPollInterval: time.Minute,
	}
}

func TestCoverageIsCached(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, testConfig())
	ctx := context.Background()

	_, err := o.Coverage(ctx, "A1001")
	require.NoError(t, err)
	_, err = o.Coverage(ctx, "A1001")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.coverageCalls, "fresh coverage must not re-fetch")
}

func TestCoverageErrorIsNotCached(t *testing.T) {
	backend := &fakeBackend{coverageErr: errors.NewAPIError(404, errors.ErrCodeNotFound, "unknown address", nil)}
	o := NewOrchestrator(backend, testConfig())

	_, err := o.Coverage(context.Background(), "BAD")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	backend.mu.Lock()
	backend.coverageErr = nil
	backend.mu.Unlock()

	_, err = o.Coverage(context.Background(), "BAD")
	assert.NoError(t, err)
	assert.Equal(t, 2, backend.coverageCalls)
}

func TestResolveTech(t *testing.T) {
	assert.Equal(t, "vdsl", ResolveTech(&api.CoverageInfo{AvailableTech: []string{"vdsl", "fwa"}}))
	assert.Equal(t, "fiber", ResolveTech(&api.CoverageInfo{AvailableTech: nil}))
	assert.Equal(t, "fiber", ResolveTech(nil))
}

func TestCatalogUsesCoverageTech(t *testing.T) {
	backend := &fakeBackend{coverage: &api.CoverageInfo{
		AddressID:     "A1002",
		VDSL:          true,
		FWA:           true,
		AvailableTech: []string{"vdsl", "fwa"},
	}}
	o := NewOrchestrator(backend, testConfig())

	cat, err := o.Catalog(context.Background(), "A1002")
	require.NoError(t, err)

	require.Equal(t, []string{"vdsl"}, backend.slotCalls, "slot fetch must use coverage's first tech, not fiber")
	assert.Equal(t, "vdsl", cat.Slots.Tech)
}

func TestCatalogStopsWhenCoverageFails(t *testing.T) {
	backend := &fakeBackend{coverageErr: errors.NewAPIError(404, errors.ErrCodeNotFound, "unknown address", nil)}
	o := NewOrchestrator(backend, testConfig())

	_, err := o.Catalog(context.Background(), "BAD")
	require.Error(t, err)
	assert.Empty(t, backend.slotCalls, "slots must not be fetched without coverage")
}

func TestRecommendSameInputHitsCache(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, testConfig())
	ctx := context.Background()

	req := &api.RecommendationRequest{
		UserID:    1,
		AddressID: "A1001",
		Household: []api.HouseholdLine{
			{LineID: "l1", ExpectedGB: 10, ExpectedMin: 300, TVHDHours: 0},
			{LineID: "l2", ExpectedGB: 20, ExpectedMin: 500, TVHDHours: 5},
		},
	}

	resp, err := o.Recommend(ctx, req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Top3), 3)
	assert.Equal(t, "Combo A", resp.Top3[0].ComboLabel, "element 0 is the best-value candidate")

	_, err = o.Recommend(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.recCalls, "identical input must not duplicate traffic")

	other := *req
	other.AddressID = "A1002"
	_, err = o.Recommend(ctx, &other)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.recCalls, "different input always issues a request")
}

func TestCheckoutSecondCallBlockedWhilePending(t *testing.T) {
	backend := &fakeBackend{
		checkoutEntered: make(chan struct{}),
		checkoutRelease: make(chan struct{}),
	}
	o := NewOrchestrator(backend, testConfig())
	req := &api.CheckoutRequest{UserID: 1, SlotID: "S-1", AddressID: "A1001"}

	entered := backend.checkoutEntered
	var firstErr error
	done := make(chan struct{})
	go func() {
		_, firstErr = o.Checkout(context.Background(), req)
		close(done)
	}()

	<-entered
	_, err := o.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrCheckoutPending)

	close(backend.checkoutRelease)
	<-done
	require.NoError(t, firstErr)

	assert.Equal(t, 1, backend.checkoutCalls, "at most one network submission")
	assert.Equal(t, "ORD-1001", o.OrderID())
}

func TestCheckoutSuccessIsTerminal(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, testConfig())
	req := &api.CheckoutRequest{UserID: 1, SlotID: "S-1", AddressID: "A1001"}

	_, err := o.Checkout(context.Background(), req)
	require.NoError(t, err)

	_, err = o.Checkout(context.Background(), req)
	assert.ErrorIs(t, err, ErrOrderComplete)
	assert.Equal(t, 1, backend.checkoutCalls)
}

func TestCheckoutFailureIsRetryable(t *testing.T) {
	backend := &fakeBackend{checkoutErr: errors.NewNetworkError("connection reset", nil)}
	o := NewOrchestrator(backend, testConfig())
	req := &api.CheckoutRequest{UserID: 1, SlotID: "S-1", AddressID: "A1001"}

	_, err := o.Checkout(context.Background(), req)
	require.Error(t, err)

	backend.mu.Lock()
	backend.checkoutErr = nil
	backend.mu.Unlock()

	resp, err := o.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", resp.OrderID)
}

func TestCheckoutInvalidatesSlotCache(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, testConfig())
	ctx := context.Background()

	_, err := o.Catalog(ctx, "A1001")
	require.NoError(t, err)
	require.Len(t, backend.slotCalls, 1)

	_, err = o.Checkout(ctx, &api.CheckoutRequest{UserID: 1, SlotID: "S-1", AddressID: "A1001"})
	require.NoError(t, err)

	// The booked slot is gone: a fresh fetch must hit the network again.
	_, err = o.Catalog(ctx, "A1001")
	require.NoError(t, err)
	assert.Len(t, backend.slotCalls, 2, "checkout must invalidate cached install slots")
	assert.Equal(t, 1, backend.coverageCalls, "coverage cache is untouched by checkout")
}

func TestHealthUsesFreshnessWindow(t *testing.T) {
	backend := &fakeBackend{}
	o := NewOrchestrator(backend, testConfig())
	ctx := context.Background()

	h1, err := o.Health(ctx)
	require.NoError(t, err)
	h2, err := o.Health(ctx)
	require.NoError(t, err)
	assert.Same(t, h1, h2, "second health check within the window reads the cache")
}
