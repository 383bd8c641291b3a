package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer makes bytes.Buffer safe for the spinner's render goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_RendersAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "working")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	text := out.String()
	require.Contains(t, text, "working")
	// The final write clears the line.
	require.True(t, strings.HasSuffix(text, "\r"))
}

func TestSpinner_UpdateSwapsMessage(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "rollout: 0/5")
	time.Sleep(120 * time.Millisecond)
	s.Update("rollout: 3/5")
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	text := out.String()
	require.Contains(t, text, "rollout: 0/5")
	require.Contains(t, text, "rollout: 3/5")
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "working")
	s.Stop()
	s.Stop()
}
