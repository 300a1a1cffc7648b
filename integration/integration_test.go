//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	chromedevtools "github.com/cczw2010/chromedevtools"
)

// skipIfNodeNotInstalled skips the test if the error indicates node is not found.
func skipIfNodeNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*chromedevtools.NodeNotFoundError](err); ok {
		t.Skip("node not installed")
	}
}

// writeScript writes source to a temporary file and returns its path.
func writeScript(t *testing.T, source string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app.js")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))

	return path
}

// pauses forwards suspensions to the test.
type pauses struct {
	chromedevtools.NopListener

	ch chan *chromedevtools.DebugContext
}

func newPauses() *pauses {
	return &pauses{ch: make(chan *chromedevtools.DebugContext, 16)}
}

func (p *pauses) Suspended(dc *chromedevtools.DebugContext) {
	p.ch <- dc
}

func (p *pauses) next(t *testing.T) *chromedevtools.DebugContext {
	t.Helper()

	select {
	case dc := <-p.ch:
		return dc
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for the VM to suspend")

		return nil
	}
}

// launch starts a client on source under node and waits for the initial
// --inspect-brk suspension.
func launch(t *testing.T, source string, opts ...chromedevtools.Option) (chromedevtools.Client, *pauses, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := writeScript(t, source)
	listener := newPauses()

	client := chromedevtools.NewClient()

	opts = append([]chromedevtools.Option{
		chromedevtools.WithScript(path),
		chromedevtools.WithListener(listener),
	}, opts...)

	err := client.Start(ctx, opts...)
	if err != nil {
		skipIfNodeNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	listener.next(t)

	return client, listener, path
}
