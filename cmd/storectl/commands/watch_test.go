package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/storectl/internal/api"
	"github.com/systmms/storectl/internal/config"
	"github.com/systmms/storectl/internal/logging"
)

func TestWatchCommand_RendersUntilCanceled(t *testing.T) {
	backend := startBackend(t)
	backend.addStore(api.Store{ID: "s-demo-1", Name: "demo-1", Engine: api.EngineWooCommerce, Status: "PROVISIONING"})
	cfg, _ := testConfig(t, backend.url)

	ctx, cancel := context.WithCancel(context.Background())

	cmd := NewWatchCommand(cfg)
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	// Give the watcher a few poll cycles before stopping it.
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "demo-1")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not exit after cancel")
	}

	assert.Contains(t, out.String(), "Provisioning...")
}

func TestWatchCommand_FlagDefinitions(t *testing.T) {
	cfg := &config.Config{Logger: logging.NewWithWriter(&bytes.Buffer{}, false, true)}

	cmd := NewWatchCommand(cfg)

	metricsFlag := cmd.Flags().Lookup("metrics-addr")
	require.NotNil(t, metricsFlag)
	assert.Equal(t, "", metricsFlag.DefValue)
}
