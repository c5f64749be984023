package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderCredits(t *testing.T) {
	out := RenderCredits(usage.Display{Used: 3, Total: 20, Remaining: 17, Tier: models.TierFree})
	assert.Contains(t, out, "Requests left: 17/20")

	out = RenderCredits(usage.Display{Used: 20, Total: 20, Remaining: 0, Exhausted: true})
	assert.Contains(t, out, "Requests left: 0/20")

	assert.Contains(t, CreditsTooltip(usage.Display{Used: 3, Total: 20, Remaining: 17, Tier: models.TierFree}), "Plan: free")
}

func TestLineIndicator(t *testing.T) {
	var buf bytes.Buffer
	ind := NewLineIndicator(&buf)

	ind.Hide()
	assert.Zero(t, buf.Len())

	d := usage.Display{Used: 1, Total: 20, Remaining: 19}
	ind.Show(d)
	first := buf.Len()
	require.NotZero(t, first)

	ind.Show(d)
	assert.Equal(t, first, buf.Len(), "unchanged display is not rewritten")

	ind.Hide()
	assert.Greater(t, buf.Len(), first)
}

func TestTierPicker(t *testing.T) {
	m := NewTierPicker("Choose", PaidTiers(), models.TierPro)
	assert.Equal(t, 1, m.cursor, "starts above the current tier")

	next, _ := m.Update(key("enter"))
	tier, ok := next.(TierPickerModel).Chosen()
	require.True(t, ok)
	assert.Equal(t, models.TierProPlus, tier)

	m = NewTierPicker("Choose", PaidTiers(), models.TierFree)
	next, _ = m.Update(key("esc"))
	_, ok = next.(TierPickerModel).Chosen()
	assert.False(t, ok)
}

func TestTierPickerView(t *testing.T) {
	view := NewTierPicker("Choose", PaidTiers(), models.TierPro).View()
	assert.Contains(t, view, "Pro (current)")
	assert.Contains(t, view, "2000 requests per day")
}

func TestConfirm(t *testing.T) {
	m := NewConfirm("Sign out?")
	next, _ := m.Update(key("enter"))
	assert.True(t, next.(ConfirmModel).Confirmed())

	m = NewConfirm("Sign out?", WithDefaultNo())
	next, _ = m.Update(key("enter"))
	assert.False(t, next.(ConfirmModel).Confirmed())

	next, _ = NewConfirm("Sign out?").Update(key("n"))
	assert.False(t, next.(ConfirmModel).Confirmed())

	next, _ = NewConfirm("Sign out?").Update(key("esc"))
	assert.False(t, next.(ConfirmModel).Confirmed())
}

func TestStatusModelErrorExpires(t *testing.T) {
	var m tea.Model = NewStatusModel("Iskra")

	m, _ = m.Update(creditsMsg(usage.Display{Used: 20, Total: 20, Exhausted: true}))
	assert.Contains(t, m.View(), "Requests left: 0/20")

	m, cmd := m.Update(errorMsg{err: errors.New("request failed"), seq: 1})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "request failed")

	// A newer error survives the expiry of an older one.
	m, _ = m.Update(errorMsg{err: errors.New("second"), seq: 2})
	m, _ = m.Update(clearErrorMsg{seq: 1})
	assert.Contains(t, m.View(), "second")

	m, _ = m.Update(clearErrorMsg{seq: 2})
	assert.False(t, strings.Contains(m.View(), "second"))

	m, _ = m.Update(hideCreditsMsg{})
	assert.Contains(t, m.View(), "Not signed in")
}

func TestQRCode(t *testing.T) {
	out, err := QRCode("https://example.com/pay/1")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSpinnerClearsLineOnStop(t *testing.T) {
	var buf bytes.Buffer
	s := StartSpinner(&buf, "Signing in")
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Signing in")
	assert.True(t, strings.HasSuffix(out, "\r\033[K"))
}

func TestSecretInputMasksValue(t *testing.T) {
	var model tea.Model = NewSecretInput("Password")
	for _, r := range "s3cret" {
		model, _ = model.Update(key(string(r)))
	}

	view := model.View()
	assert.NotContains(t, view, "s3cret")
	assert.Contains(t, view, "••••••")

	model, cmd := model.Update(key("enter"))
	require.NotNil(t, cmd)
	m := model.(InputModel)
	assert.True(t, m.Submitted())
	assert.Equal(t, "s3cret", m.Value())
	assert.Empty(t, m.View())
}

func TestSecretInputCancel(t *testing.T) {
	var model tea.Model = NewSecretInput("Password")
	model, _ = model.Update(key("x"))
	model, _ = model.Update(key("esc"))

	assert.False(t, model.(InputModel).Submitted())
}
