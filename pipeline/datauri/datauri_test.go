package datauri

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/travaso/pipeline/jobs"
	"github.com/spaghettifunk/travaso/pipeline/pacing"
)

func TestTryDescriptor_NoPadding(t *testing.T) {
	desc, ok := TryDescriptor("data:image/png;base64,AAAA")

	require.True(t, ok)
	require.Equal(t, "image/png", desc.MimeType)
	require.Equal(t, len("data:image/png;base64,"), desc.PayloadStart)
	require.Equal(t, 3, desc.DecodedLength)
}

func TestTryDescriptor_Padding(t *testing.T) {
	t.Run("two padding chars", func(t *testing.T) {
		desc, ok := TryDescriptor("data:image/png;base64,AA==")
		require.True(t, ok)
		require.Equal(t, 1, desc.DecodedLength)
	})

	t.Run("one padding char", func(t *testing.T) {
		desc, ok := TryDescriptor("data:image/png;base64,AAA=")
		require.True(t, ok)
		require.Equal(t, 2, desc.DecodedLength)
	})

	t.Run("empty payload", func(t *testing.T) {
		desc, ok := TryDescriptor("data:application/octet-stream;base64,")
		require.True(t, ok)
		require.Equal(t, 0, desc.DecodedLength)
	})
}

func TestTryDescriptor_Rejections(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"empty string", ""},
		{"wrong scheme", "file:///tmp/buffer.bin"},
		{"no mime delimiter", "data:image/pngAAAA"},
		{"not base64 encoded", "data:image/png;charset=binary,AAAA"},
		{"payload not quad aligned", "data:image/png;base64,AAAAA"},
		{"three padding chars", "data:image/png;base64,A==="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TryDescriptor(tt.uri)
			require.False(t, ok)
		})
	}
}

func TestTryDescriptor_MimeSearchBound(t *testing.T) {
	// A delimiter past the 1000-character search bound is treated as
	// absent, so a pathological input cannot force a long scan.
	past := "data:" + strings.Repeat("a", 1100) + ";base64,AAAA"
	_, ok := TryDescriptor(past)
	require.False(t, ok)

	within := "data:" + strings.Repeat("a", 990) + ";base64,AAAA"
	desc, ok := TryDescriptor(within)
	require.True(t, ok)
	require.Equal(t, strings.Repeat("a", 990), desc.MimeType)
}

func TestDecode_Roundtrip(t *testing.T) {
	r := NewResolver()

	buf, err := r.Decode(context.Background(), "data:application/octet-stream;base64,aGVsbG8gd29ybGQ=")

	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), buf)
}

func TestDecode_MalformedURI(t *testing.T) {
	r := NewResolver()

	buf, err := r.Decode(context.Background(), "not a data uri")

	require.ErrorIs(t, err, ErrMalformedURI)
	require.Nil(t, buf)
}

func TestDecode_InvalidBase64InvalidatesOutput(t *testing.T) {
	r := NewResolver()

	buf, err := r.Decode(context.Background(), "data:application/octet-stream;base64,@@@@")

	require.ErrorIs(t, err, ErrMalformedURI)
	require.Nil(t, buf)
}

func TestDecode_OnWorkerPool(t *testing.T) {
	pool, err := jobs.NewPool(2, 4)
	require.NoError(t, err)
	defer pool.Shutdown()

	r := NewResolver(
		WithPool(pool),
		WithAgent(pacing.NewUninterruptedAgent(pool)),
	)

	buf, err := r.Decode(context.Background(), "data:application/octet-stream;base64,aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), buf)
}

func TestDecode_CancelWhileSuspended(t *testing.T) {
	// A zero-budget agent suspends the decode forever; cancelling the
	// context must release the caller with no buffer.
	agent := pacing.NewBudgetedAgent(0, nil)
	r := NewResolver(WithAgent(agent))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var buf []byte
	var decodeErr error
	go func() {
		buf, decodeErr = r.Decode(ctx, "data:application/octet-stream;base64,aGVsbG8=")
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
		require.ErrorIs(t, decodeErr, context.Canceled)
		require.Nil(t, buf)
	case <-time.After(time.Second):
		t.Fatal("cancellation did not release the decode")
	}
}

func TestDecode_SuspendedDecodeCompletesAfterTick(t *testing.T) {
	// 1 byte/s decode rate predicts an 8s cost against a 1s tick
	// allowance; each tick reserves its allowance and whittles the carried
	// remainder down until the decode is approved.
	agent := pacing.NewBudgetedAgent(time.Second, nil)
	r := NewResolver(WithAgent(agent), WithDecodeRate(1))

	done := make(chan struct{})
	var buf []byte
	var decodeErr error
	go func() {
		buf, decodeErr = r.Decode(context.Background(), "data:application/octet-stream;base64,aGVsbG8=")
		close(done)
	}()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			require.NoError(t, decodeErr)
			require.Equal(t, []byte("hello"), buf)
			return
		case <-ticker.C:
			agent.Tick()
		case <-deadline:
			t.Fatal("suspended decode never completed")
		}
	}
}

func TestDecodeRateConstantsDiffer(t *testing.T) {
	// The editor context measures slower than production; the calibration
	// constants must stay distinct.
	require.Less(t, int64(EditorDecodeRate), int64(ProductionDecodeRate))
}
