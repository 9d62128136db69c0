package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"bundle-wizard/internal/query"
	"bundle-wizard/pkg/api"
)

// CheckoutModel is the final step: pick an install slot for the coverage
// technology and confirm the order. The confirm action is disabled while a
// submission is pending; a failure leaves it enabled for a manual retry,
// never an automatic one.
type CheckoutModel struct {
	styles  Styles
	spinner spinner.Model

	combo   *api.RecommendationCandidate
	catalog query.Result[*query.Catalog]
	cursor  int

	pending     bool
	checkoutErr error
	orderID     string

	back    bool
	restart bool
}

// NewCheckoutModel builds the checkout page.
func NewCheckoutModel(styles Styles) CheckoutModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return CheckoutModel{
		styles:  styles,
		spinner: sp,
		catalog: query.Result[*query.Catalog]{Status: query.StatusLoading},
	}
}

func (m CheckoutModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles input. submit builds the checkout command for a slot id;
// refetch rebuilds the catalog command after a failed slot load.
func (m CheckoutModel) Update(msg tea.Msg, submit func(string) tea.Cmd, refetch func() tea.Cmd) (CheckoutModel, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogMsg:
		if msg.err != nil {
			m.catalog = query.Result[*query.Catalog]{Status: query.StatusError, Err: msg.err}
		} else {
			m.catalog = query.Result[*query.Catalog]{Status: query.StatusSuccess, Data: msg.catalog}
			m.cursor = 0
		}
		return m, nil

	case checkoutMsg:
		m.pending = false
		if msg.err != nil {
			m.checkoutErr = msg.err
		} else {
			m.checkoutErr = nil
			m.orderID = msg.resp.OrderID
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.orderID != "" {
			switch msg.String() {
			case "s":
				m.restart = true
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if slots := m.slots(); m.cursor < len(slots)-1 {
				m.cursor++
			}
		case "enter":
			// Blocked while a submission is in flight, a second enter must
			// not produce a second order.
			if m.pending {
				return m, nil
			}
			if slot, ok := m.selectedSlot(); ok {
				m.pending = true
				m.checkoutErr = nil
				return m, tea.Batch(m.spinner.Tick, submit(slot.SlotID))
			}
		case "r":
			if m.catalog.Status == query.StatusError {
				m.catalog = query.Result[*query.Catalog]{Status: query.StatusLoading}
				return m, tea.Batch(m.spinner.Tick, refetch())
			}
		case "esc":
			if !m.pending {
				m.back = true
			}
		case "s":
			if !m.pending {
				m.restart = true
			}
		}
	}
	return m, nil
}

// slots returns the bookable slots from the catalog.
func (m CheckoutModel) slots() []api.InstallSlot {
	if !m.catalog.Ok() || m.catalog.Data.Slots == nil {
		return nil
	}
	out := make([]api.InstallSlot, 0, len(m.catalog.Data.Slots.Slots))
	for _, s := range m.catalog.Data.Slots.Slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

func (m CheckoutModel) selectedSlot() (api.InstallSlot, bool) {
	slots := m.slots()
	if m.cursor < 0 || m.cursor >= len(slots) {
		return api.InstallSlot{}, false
	}
	return slots[m.cursor], true
}

func (m CheckoutModel) View() string {
	if m.orderID != "" {
		return m.successView()
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Checkout"))
	sb.WriteString("\n\n")

	if m.combo != nil {
		sb.WriteString(fmt.Sprintf("Selected: %s — %s/month (save %s)\n\n",
			m.combo.ComboLabel, formatMoney(m.combo.MonthlyTotal), formatMoney(m.combo.Savings)))
	}

	sb.WriteString(m.styles.Header.Render("Installation slot"))
	sb.WriteString("\n")
	switch m.catalog.Status {
	case query.StatusLoading:
		sb.WriteString(m.spinner.View() + " loading install slots...\n")
	case query.StatusError:
		sb.WriteString(m.styles.Error.Render("Could not load install slots: "+m.catalog.Err.Error()) + "\n")
		sb.WriteString(m.styles.Help.Render("  r: retry") + "\n")
	case query.StatusSuccess:
		slots := m.slots()
		if len(slots) == 0 {
			sb.WriteString(m.styles.Muted.Render("  no available slots for this address") + "\n")
		}
		tech := m.catalog.Data.Slots.Tech
		for i, s := range slots {
			cursor := "  "
			line := fmt.Sprintf("%s  %s → %s  (%s)", s.SlotID, s.SlotStart, s.SlotEnd, tech)
			if i == m.cursor {
				cursor = "> "
				line = m.styles.Label.Render(line)
			}
			sb.WriteString(cursor + line + "\n")
		}
	}
	sb.WriteString("\n")

	if m.pending {
		sb.WriteString(m.spinner.View() + " submitting order...\n\n")
	} else if m.checkoutErr != nil {
		sb.WriteString(m.styles.Error.Render("Order failed: "+m.checkoutErr.Error()+". You can try again.") + "\n\n")
	}

	sb.WriteString(m.styles.Help.Render("↑/↓: choose slot • enter: confirm order • esc: back • s: start over • ctrl+c: quit"))
	return sb.String()
}

func (m CheckoutModel) successView() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Success.Render("✓ Order confirmed"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Order ID: %s\n", m.styles.Label.Render(m.orderID)))
	sb.WriteString(m.styles.Muted.Render("You'll receive installation details shortly.") + "\n\n")
	sb.WriteString(m.styles.Help.Render("s: start over • q: quit"))
	return sb.String()
}
