package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joescharf/yr/internal/daemon"
)

func TestPidFile_Path(t *testing.T) {
	dir := testEnv(t)

	pf := pidFile()
	assert.Equal(t, filepath.Join(dir, "yr-serve.pid"), pf.Path)
}

func TestServeStatusRun_NotRunning(t *testing.T) {
	testEnv(t)
	out, _ := captureUI(t)

	require.NoError(t, serveStatusRun())
	assert.Contains(t, out.String(), "not running")
}

func TestServeRun_AlreadyRunning(t *testing.T) {
	dir := testEnv(t)

	// The go test runner is a live process other than this one.
	pf := daemon.NewPIDFile(filepath.Join(dir, "yr-serve.pid"))
	require.NoError(t, pf.WritePID(os.Getppid()))

	err := serveRun(context.Background(), "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServeRun_ShutsDownOnCancel(t *testing.T) {
	testEnv(t)
	viper.Set("history.enabled", false)
	viper.Set("log.level", "error")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveRun(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		_, statErr := os.Stat(pidFile().Path)
		assert.True(t, os.IsNotExist(statErr), "PID file is removed on shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("serveRun did not return after cancel")
	}
}

func TestServeRun_InvalidLogLevel(t *testing.T) {
	testEnv(t)
	viper.Set("log.level", "loud")

	err := serveRun(context.Background(), "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log.level")
}

func TestServeRun_ListenError(t *testing.T) {
	testEnv(t)
	viper.Set("history.enabled", false)
	viper.Set("log.level", "error")

	err := serveRun(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
