package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/yr/internal/reviewer"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("reviewing %s", "1999")
	assert.Contains(t, out.String(), "reviewing 1999")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("recorded %d reviews", 42)
	assert.Contains(t, out.String(), "recorded 42 reviews")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("history %s", "disabled")
	assert.Contains(t, errOut.String(), "history disabled")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("year %d: %s", 2022, "range_error")
	assert.Contains(t, errOut.String(), "year 2022: range_error")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("picked default %d", 1)
	assert.Contains(t, out.String(), "picked default 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("picked default %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would clear %s", "history")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would clear history")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would clear %s", "history")
	assert.Empty(t, errOut.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
}

func TestResultColor(t *testing.T) {
	assert.Contains(t, ResultColor(":sunglasses:", true), ":sunglasses:")
	assert.Contains(t, ResultColor("Meh", false), "Meh")
}

func TestKindColor(t *testing.T) {
	assert.Contains(t, KindColor(reviewer.TypeKind), "type_error")
	assert.Contains(t, KindColor(reviewer.RangeKind), "range_error")
	assert.Equal(t, "unknown", KindColor(reviewer.UnknownKind))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Year", "Review"})
	require.NotNil(t, table)

	table.Append([]string{"1337", ":sunglasses:"})
	table.Append([]string{"1999", "Boring"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "1337"), "table output should contain years")
	assert.True(t, strings.Contains(result, "Boring"), "table output should contain reviews")
}
