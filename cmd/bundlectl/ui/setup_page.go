package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bundle-wizard/internal/query"
	"bundle-wizard/internal/wizard"
	"bundle-wizard/pkg/api"
	"bundle-wizard/pkg/errors"
)

// Input indexes on the setup page.
const (
	inputGB = iota
	inputMin
	inputTV
	inputUser
	inputCity
	inputDistrict
	inputAddress
	inputCount
)

// SetupModel is the household + address step. It validates locally and
// triggers the coverage lookup; nothing proceeds to slot fetching until
// coverage resolves for the entered address.
type SetupModel struct {
	store  *wizard.Store
	styles Styles

	inputs []textinput.Model
	focus  int

	coverage query.Result[*api.CoverageInfo]

	// editingLineID marks the household line whose usage fields are being
	// re-entered; empty means enter appends a new line.
	editingLineID string

	fieldErrs map[string]string
	done      bool
}

// NewSetupModel builds the setup page over the shared store.
func NewSetupModel(store *wizard.Store, styles Styles) SetupModel {
	labels := []string{"10", "300", "0", "1", "", "", ""}
	placeholders := []string{
		"expected GB", "expected minutes", "TV HD hours",
		"user id", "city", "district", "address id (e.g. A1001)",
	}

	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 32
		in.Width = 24
		in.SetValue(labels[i])
		inputs[i] = in
	}
	inputs[0].Focus()

	return SetupModel{
		store:     store,
		styles:    styles,
		inputs:    inputs,
		fieldErrs: map[string]string{},
	}
}

func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input. lookup builds the coverage command for an address id.
func (m SetupModel) Update(msg tea.Msg, lookup func(string) tea.Cmd) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case coverageMsg:
		// Ignore responses for an address the user has since changed.
		if msg.addressID != strings.TrimSpace(m.inputs[inputAddress].Value()) {
			return m, nil
		}
		if msg.err != nil {
			m.coverage = query.Result[*api.CoverageInfo]{Status: query.StatusError, Err: msg.err}
			if errors.IsNotFound(msg.err) {
				m.fieldErrs["address_id"] = "invalid address id - no coverage information found"
			} else {
				m.fieldErrs["address_id"] = "coverage lookup failed, press enter to retry"
			}
			return m, nil
		}
		delete(m.fieldErrs, "address_id")
		m.coverage = query.Result[*api.CoverageInfo]{Status: query.StatusSuccess, Data: msg.coverage}
		// Coverage informs slot scheduling only; the preference order sent
		// with the recommendation request stays whatever the user chose.
		m.store.SetAddress(msg.addressID)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % inputCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + inputCount - 1) % inputCount)
			return m, nil
		case "ctrl+x":
			m.removeLastLine()
			return m, nil
		case "ctrl+e":
			m.startEdit()
			return m, nil
		case "esc":
			m.cancelEdit()
			return m, nil
		case "enter":
			return m.handleEnter(lookup)
		case "ctrl+n":
			if m.canContinue() {
				m.commitUser()
				m.done = true
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *SetupModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m SetupModel) handleEnter(lookup func(string) tea.Cmd) (SetupModel, tea.Cmd) {
	switch m.focus {
	case inputGB, inputMin, inputTV:
		m.commitLine()
		return m, nil
	case inputAddress:
		addr := strings.TrimSpace(m.inputs[inputAddress].Value())
		if addr == "" {
			m.fieldErrs["address_id"] = "address id is required"
			return m, nil
		}
		delete(m.fieldErrs, "address_id")
		m.coverage = query.Result[*api.CoverageInfo]{Status: query.StatusLoading}
		return m, lookup(addr)
	default:
		m.setFocus((m.focus + 1) % inputCount)
		return m, nil
	}
}

// commitLine validates the three usage fields and either appends a household
// line or, when a line is being edited, rewrites that line in place.
func (m *SetupModel) commitLine() {
	gb, errGB := parseUsage("expected_gb", m.inputs[inputGB].Value())
	mins, errMin := parseUsage("expected_min", m.inputs[inputMin].Value())
	tv, errTV := parseUsage("tv_hd_hours", m.inputs[inputTV].Value())

	for _, err := range []*errors.ValidationError{errGB, errMin, errTV} {
		if err != nil {
			m.fieldErrs[err.Field] = err.Message
			return
		}
	}
	delete(m.fieldErrs, "expected_gb")
	delete(m.fieldErrs, "expected_min")
	delete(m.fieldErrs, "tv_hd_hours")

	if m.editingLineID != "" {
		m.store.UpdateLine(m.editingLineID, wizard.LineUpdate{
			ExpectedGB:  &gb,
			ExpectedMin: &mins,
			TVHDHours:   &tv,
		})
		m.editingLineID = ""
		return
	}

	m.store.AddLine(api.HouseholdLine{
		LineID:      wizard.NewLineID(),
		ExpectedGB:  gb,
		ExpectedMin: mins,
		TVHDHours:   tv,
	})
}

// startEdit selects a household line for editing and loads its values into
// the usage fields. Repeated presses cycle backwards through the lines.
func (m *SetupModel) startEdit() {
	household := m.store.Snapshot().Household
	if len(household) == 0 {
		return
	}

	idx := len(household) - 1
	if m.editingLineID != "" {
		for i, l := range household {
			if l.LineID == m.editingLineID {
				idx = (i + len(household) - 1) % len(household)
				break
			}
		}
	}

	line := household[idx]
	m.editingLineID = line.LineID
	m.inputs[inputGB].SetValue(strconv.FormatFloat(line.ExpectedGB, 'f', -1, 64))
	m.inputs[inputMin].SetValue(strconv.FormatFloat(line.ExpectedMin, 'f', -1, 64))
	m.inputs[inputTV].SetValue(strconv.FormatFloat(line.TVHDHours, 'f', -1, 64))
	m.setFocus(inputGB)
}

func (m *SetupModel) cancelEdit() {
	m.editingLineID = ""
}

func (m *SetupModel) removeLastLine() {
	household := m.store.Snapshot().Household
	if len(household) == 0 {
		return
	}
	m.store.RemoveLine(household[len(household)-1].LineID)
}

func (m *SetupModel) commitUser() {
	if id, err := strconv.Atoi(strings.TrimSpace(m.inputs[inputUser].Value())); err == nil {
		m.store.SetUser(id)
	}
}

func (m SetupModel) canContinue() bool {
	state := m.store.Snapshot()
	return len(state.Household) > 0 &&
		state.AddressID != "" &&
		m.coverage.Ok() &&
		strings.TrimSpace(m.inputs[inputCity].Value()) != "" &&
		strings.TrimSpace(m.inputs[inputDistrict].Value()) != ""
}

func parseUsage(field, raw string) (float64, *errors.ValidationError) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errors.NewValidationError(field, "must be a number")
	}
	if v < 0 {
		return 0, errors.NewValidationError(field, "must not be negative")
	}
	return v, nil
}

func (m SetupModel) View() string {
	var sb strings.Builder
	state := m.store.Snapshot()

	sb.WriteString(m.styles.Header.Render("Household"))
	sb.WriteString("\n")
	if len(state.Household) == 0 {
		sb.WriteString(m.styles.Muted.Render("  no lines yet - fill the fields and press enter"))
		sb.WriteString("\n")
	}
	for i, l := range state.Household {
		row := fmt.Sprintf("  %d. %s  %.0f GB / %.0f min / %.0f h TV",
			i+1, l.LineID, l.ExpectedGB, l.ExpectedMin, l.TVHDHours)
		if l.LineID == m.editingLineID {
			row = m.styles.Label.Render(row) + m.styles.Muted.Render("  (editing)")
		}
		sb.WriteString(row + "\n")
	}
	sb.WriteString("\n")

	fields := []struct {
		label string
		idx   int
		errs  string
	}{
		{"Data", inputGB, "expected_gb"},
		{"Minutes", inputMin, "expected_min"},
		{"TV hours", inputTV, "tv_hd_hours"},
		{"User id", inputUser, "user_id"},
		{"City", inputCity, "city"},
		{"District", inputDistrict, "district"},
		{"Address", inputAddress, "address_id"},
	}
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("  %-10s %s", m.styles.Label.Render(f.label), m.inputs[f.idx].View()))
		if msg, ok := m.fieldErrs[f.errs]; ok {
			sb.WriteString("  " + m.styles.Error.Render(msg))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.styles.Header.Render("Coverage"))
	sb.WriteString("\n")
	switch m.coverage.Status {
	case query.StatusLoading:
		sb.WriteString(m.styles.Muted.Render("  checking coverage..."))
	case query.StatusSuccess:
		cov := m.coverage.Data
		sb.WriteString(fmt.Sprintf("  %s / %s   %s\n", cov.City, cov.District, techBadges(cov, m.styles)))
	case query.StatusError:
		sb.WriteString(m.styles.Error.Render("  no coverage available"))
	default:
		sb.WriteString(m.styles.Muted.Render("  enter an address id and press enter"))
	}
	sb.WriteString("\n\n")

	help := "tab: next field • enter: add line / check address • ctrl+e: edit line • ctrl+x: remove last line • ctrl+n: continue • ctrl+c: quit"
	if m.editingLineID != "" {
		help = "enter: save line • esc: cancel edit • ctrl+e: previous line • " + help
	}
	if !m.canContinue() {
		help = "complete household and address to continue • " + help
	}
	sb.WriteString(m.styles.Help.Render(help))
	return sb.String()
}

// techBadges renders one badge per technology, lit when available.
func techBadges(cov *api.CoverageInfo, styles Styles) string {
	parts := make([]string, 0, 3)
	for _, t := range []struct {
		name string
		ok   bool
	}{
		{api.TechFiber, cov.Fiber},
		{api.TechVDSL, cov.VDSL},
		{api.TechFWA, cov.FWA},
	} {
		if t.ok {
			parts = append(parts, styles.Success.Render(t.name))
		} else {
			parts = append(parts, styles.Muted.Render(t.name))
		}
	}
	return strings.Join(parts, " ")
}
