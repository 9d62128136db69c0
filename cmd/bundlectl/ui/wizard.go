package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"bundle-wizard/internal/query"
	"bundle-wizard/internal/session"
	"bundle-wizard/internal/wizard"
	"bundle-wizard/pkg/api"
)

// step identifies the wizard page currently shown.
type step int

const (
	stepSetup step = iota
	stepRecommend
	stepCheckout
	stepDone
)

// Messages delivered by async commands.
type (
	// HealthMsg is pushed by the health poll; display only.
	HealthMsg struct {
		Health *api.HealthResponse
		Err    error
	}

	coverageMsg struct {
		addressID string
		coverage  *api.CoverageInfo
		err       error
	}

	recommendMsg struct {
		seq  uint64
		resp *api.RecommendationResponse
		err  error
	}

	catalogMsg struct {
		catalog *query.Catalog
		err     error
	}

	checkoutMsg struct {
		resp *api.CheckoutResponse
		err  error
	}
)

// Wizard is the root model: it owns the shared state store, the orchestrator
// and the session store, and delegates rendering to the active page.
type Wizard struct {
	store *wizard.Store
	orch  *query.Orchestrator
	sess  session.Store

	step     step
	setup    SetupModel
	rec      RecommendModel
	checkout CheckoutModel

	// recSeq numbers recommendation requests; a response carrying an older
	// number was computed for superseded input and is dropped.
	recSeq uint64

	health query.Result[*api.HealthResponse]
	styles Styles
	width  int
	height int
}

// NewWizard assembles the wizard over its collaborators.
func NewWizard(store *wizard.Store, orch *query.Orchestrator, sess session.Store) *Wizard {
	styles := DefaultStyles()
	return &Wizard{
		store:    store,
		orch:     orch,
		sess:     sess,
		step:     stepSetup,
		setup:    NewSetupModel(store, styles),
		rec:      NewRecommendModel(styles),
		checkout: NewCheckoutModel(styles),
		styles:   styles,
	}
}

func (w *Wizard) Init() tea.Cmd {
	return w.setup.Init()
}

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return w, tea.Quit
		}

	case HealthMsg:
		if msg.Err != nil {
			w.health = query.Result[*api.HealthResponse]{Status: query.StatusError, Err: msg.Err}
		} else {
			w.health = query.Result[*api.HealthResponse]{Status: query.StatusSuccess, Data: msg.Health}
		}
		return w, nil
	}

	switch w.step {
	case stepSetup:
		return w.updateSetup(msg)
	case stepRecommend:
		return w.updateRecommend(msg)
	case stepCheckout, stepDone:
		return w.updateCheckout(msg)
	}
	return w, nil
}

func (w *Wizard) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	w.setup, cmd = w.setup.Update(msg, w.lookupCoverage)

	if w.setup.done {
		w.setup.done = false
		w.step = stepRecommend
		w.rec = NewRecommendModel(w.styles)
		return w, tea.Batch(w.rec.Init(), w.requestRecommendations())
	}
	return w, cmd
}

func (w *Wizard) updateRecommend(msg tea.Msg) (tea.Model, tea.Cmd) {
	if rm, ok := msg.(recommendMsg); ok && rm.seq != w.recSeq {
		// Computed for input the user has since changed.
		return w, nil
	}

	var cmd tea.Cmd
	w.rec, cmd = w.rec.Update(msg, w.requestRecommendations)

	if w.rec.back {
		w.rec.back = false
		w.step = stepSetup
		return w, nil
	}
	if sel := w.rec.selected; sel != nil {
		w.rec.selected = nil
		if err := w.sess.SaveSelection(context.Background(), sel); err != nil {
			w.rec.result = query.Result[*api.RecommendationResponse]{Status: query.StatusError, Err: err}
			return w, nil
		}
		w.step = stepCheckout
		w.checkout = NewCheckoutModel(w.styles)
		w.checkout.combo = sel
		return w, tea.Batch(w.checkout.Init(), w.fetchCatalog())
	}
	return w, cmd
}

func (w *Wizard) updateCheckout(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	w.checkout, cmd = w.checkout.Update(msg, w.submitCheckout, w.fetchCatalog)

	if w.checkout.back {
		w.checkout.back = false
		w.step = stepRecommend
		return w, nil
	}
	if w.checkout.restart {
		// Start over: wipe the session state and the saved selection.
		w.checkout.restart = false
		w.store.Reset()
		_ = w.sess.ClearSelection(context.Background())
		w.step = stepSetup
		w.setup = NewSetupModel(w.store, w.styles)
		return w, w.setup.Init()
	}
	if w.checkout.orderID != "" && w.step != stepDone {
		// Successful order: the saved selection is consumed.
		_ = w.sess.ClearSelection(context.Background())
		w.step = stepDone
	}
	return w, cmd
}

func (w *Wizard) View() string {
	header := w.styles.Title.Render("Bundle Wizard") + "  " + w.progressLine() + "\n" + w.healthLine() + "\n\n"

	switch w.step {
	case stepSetup:
		return header + w.setup.View()
	case stepRecommend:
		return header + w.rec.View()
	case stepCheckout, stepDone:
		return header + w.checkout.View()
	}
	return header
}

func (w *Wizard) progressLine() string {
	names := []string{"Setup", "Recommendations", "Checkout"}
	active := int(w.step)
	if active > 2 {
		active = 2
	}
	out := ""
	for i, n := range names {
		label := fmt.Sprintf("%d %s", i+1, n)
		if i == active {
			out += w.styles.Label.Render(label)
		} else {
			out += w.styles.Muted.Render(label)
		}
		if i < len(names)-1 {
			out += w.styles.Muted.Render(" → ")
		}
	}
	return out
}

func (w *Wizard) healthLine() string {
	switch w.health.Status {
	case query.StatusSuccess:
		return w.styles.Success.Render("● backend " + w.health.Data.Status)
	case query.StatusError:
		return w.styles.Error.Render("● backend unreachable")
	default:
		return w.styles.Muted.Render("● backend status unknown")
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (w *Wizard) lookupCoverage(addressID string) tea.Cmd {
	return func() tea.Msg {
		cov, err := w.orch.Coverage(context.Background(), addressID)
		return coverageMsg{addressID: addressID, coverage: cov, err: err}
	}
}

func (w *Wizard) requestRecommendations() tea.Cmd {
	state := w.store.Snapshot()
	userID := 1
	if state.UserID != nil {
		userID = *state.UserID
	}
	req := &api.RecommendationRequest{
		UserID:     userID,
		AddressID:  state.AddressID,
		Household:  state.Household,
		PreferTech: state.PreferTech,
	}
	w.recSeq++
	seq := w.recSeq
	return func() tea.Msg {
		resp, err := w.orch.Recommend(context.Background(), req)
		return recommendMsg{seq: seq, resp: resp, err: err}
	}
}

func (w *Wizard) fetchCatalog() tea.Cmd {
	addressID := w.store.Snapshot().AddressID
	return func() tea.Msg {
		cat, err := w.orch.Catalog(context.Background(), addressID)
		return catalogMsg{catalog: cat, err: err}
	}
}

func (w *Wizard) submitCheckout(slotID string) tea.Cmd {
	state := w.store.Snapshot()
	userID := 1
	if state.UserID != nil {
		userID = *state.UserID
	}
	combo := w.checkout.combo
	return func() tea.Msg {
		if combo == nil {
			return checkoutMsg{err: fmt.Errorf("no selected combo for checkout")}
		}
		resp, err := w.orch.Checkout(context.Background(), &api.CheckoutRequest{
			UserID:        userID,
			SelectedCombo: *combo,
			SlotID:        slotID,
			AddressID:     state.AddressID,
		})
		return checkoutMsg{resp: resp, err: err}
	}
}
