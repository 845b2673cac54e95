package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/yr/internal/store"
)

func TestHistoryListRun(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	out, _ := captureUI(t)

	require.NoError(t, historyListRun(nil, 20, ""))
	assert.Contains(t, out.String(), "No reviews recorded")

	require.NoError(t, reviewRun([]string{"1984", "1337"}))
	out.Reset()

	year := int64(1984)
	require.NoError(t, historyListRun(&year, 20, "cli"))
	assert.Contains(t, out.String(), "You never felt alone")
	assert.NotContains(t, out.String(), ":sunglasses:")
}

func TestHistoryListRun_InvalidSource(t *testing.T) {
	testEnv(t)
	captureUI(t)

	err := historyListRun(nil, 20, "fax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source")
}

func TestHistoryShowRun(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	out, _ := captureUI(t)

	require.NoError(t, reviewRun([]string{"42"}))
	reviews := recorded(t)
	require.Len(t, reviews, 1)
	out.Reset()

	require.NoError(t, historyShowRun(reviews[0].ID))
	assert.Contains(t, out.String(), reviews[0].ID)
	assert.Contains(t, out.String(), "A year worth living for")
	assert.Contains(t, out.String(), "Source:  cli")

	err := historyShowRun("nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHistoryListRun_Disabled(t *testing.T) {
	testEnv(t)
	viper.Set("history.enabled", false)

	err := historyListRun(nil, 20, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestHistoryClearRun(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	out, _ := captureUI(t)

	require.NoError(t, reviewRun([]string{"0", "42"}))
	require.NoError(t, historyClearRun())
	assert.Contains(t, out.String(), "Deleted 2 review(s)")
	assert.Empty(t, recorded(t))
}

func TestHistoryClearRun_DryRun(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	captureUI(t)

	require.NoError(t, reviewRun([]string{"42"}))

	dryRun = true
	ui.DryRun = true
	require.NoError(t, historyClearRun())
	assert.Len(t, recorded(t), 1)
}

func TestStatsRun(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	out, _ := captureUI(t)

	require.NoError(t, statsRun())
	assert.Contains(t, out.String(), "No reviews recorded")

	require.NoError(t, reviewRun([]string{"2020", "2020", "42"}))
	out.Reset()

	require.NoError(t, statsRun())
	assert.Contains(t, out.String(), "Sad year :(")
	assert.Contains(t, out.String(), "Total: 3")
}
