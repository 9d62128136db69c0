package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"bundle-wizard/internal/query"
	"bundle-wizard/pkg/api"
)

// RecommendModel shows the top candidates, best first. Selecting one hands it
// off to the checkout step through the session store.
type RecommendModel struct {
	styles  Styles
	spinner spinner.Model

	result query.Result[*api.RecommendationResponse]
	cursor int

	selected *api.RecommendationCandidate
	back     bool
}

// NewRecommendModel builds the recommendations page.
func NewRecommendModel(styles Styles) RecommendModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return RecommendModel{
		styles:  styles,
		spinner: sp,
		result:  query.Result[*api.RecommendationResponse]{Status: query.StatusLoading},
	}
}

func (m RecommendModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles input. retry rebuilds the recommendation command from the
// current wizard state.
func (m RecommendModel) Update(msg tea.Msg, retry func() tea.Cmd) (RecommendModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recommendMsg:
		if msg.err != nil {
			m.result = query.Result[*api.RecommendationResponse]{Status: query.StatusError, Err: msg.err}
		} else {
			m.result = query.Result[*api.RecommendationResponse]{Status: query.StatusSuccess, Data: msg.resp}
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.result.Ok() && m.cursor < len(m.result.Data.Top3)-1 {
				m.cursor++
			}
		case "enter":
			if m.result.Ok() && len(m.result.Data.Top3) > 0 {
				cand := m.result.Data.Top3[m.cursor]
				m.selected = &cand
			}
		case "r":
			if m.result.Status == query.StatusError {
				m.result = query.Result[*api.RecommendationResponse]{Status: query.StatusLoading}
				return m, tea.Batch(m.spinner.Tick, retry())
			}
		case "esc":
			m.back = true
		}
	}
	return m, nil
}

func (m RecommendModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Recommendations"))
	sb.WriteString("\n\n")

	switch m.result.Status {
	case query.StatusLoading:
		sb.WriteString(m.spinner.View() + " analyzing your household...\n")

	case query.StatusError:
		sb.WriteString(m.styles.Error.Render("Could not load recommendations: "+m.result.Err.Error()) + "\n\n")
		sb.WriteString(m.styles.Help.Render("r: retry • esc: back • ctrl+c: quit"))

	case query.StatusSuccess:
		top3 := m.result.Data.Top3
		if len(top3) == 0 {
			sb.WriteString(m.styles.Muted.Render("No packages match this household.") + "\n\n")
			sb.WriteString(m.styles.Help.Render("esc: back • ctrl+c: quit"))
			break
		}
		for i, cand := range top3 {
			sb.WriteString(m.renderCard(i, cand))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Help.Render("↑/↓: choose • enter: select • esc: back • ctrl+c: quit"))
	}
	return sb.String()
}

func (m RecommendModel) renderCard(i int, cand api.RecommendationCandidate) string {
	var sb strings.Builder

	title := cand.ComboLabel
	if i == 0 {
		title += "  " + m.styles.Badge.Render("Best Value")
	}
	sb.WriteString(title + "\n")
	sb.WriteString(fmt.Sprintf("monthly %s   save %s   discounts %s\n",
		formatMoney(cand.MonthlyTotal), formatMoney(cand.Savings), formatMoney(cand.Discounts.TotalDiscount)))

	for _, mob := range cand.Items.Mobile {
		sb.WriteString(fmt.Sprintf("mobile  %s  %s\n", mob.Plan.PlanName, formatMoney(mob.LineCost)))
	}
	if h := cand.Items.Home; h != nil {
		sb.WriteString(fmt.Sprintf("home    %s (%s, %d Mbps)  %s\n", h.Name, h.Tech, h.DownMbps, formatMoney(h.MonthlyPrice)))
	}
	if tv := cand.Items.TV; tv != nil {
		sb.WriteString(fmt.Sprintf("tv      %s  %s\n", tv.Name, formatMoney(tv.MonthlyPrice)))
	}
	if cand.Reasoning != "" {
		sb.WriteString(m.styles.Muted.Render(cand.Reasoning) + "\n")
	}

	card := strings.TrimRight(sb.String(), "\n")
	if i == m.cursor {
		return m.styles.Selected.Render(card)
	}
	return m.styles.Card.Render(card)
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + " TL"
}
