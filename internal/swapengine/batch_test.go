package swapengine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu     sync.Mutex
	starts []time.Time
	reqs   []SwapRequest

	delay   time.Duration
	failFor map[string]error // output mint -> error
}

func (r *recordingRunner) ExecuteSwap(_ context.Context, req SwapRequest) (*SwapOutcome, error) {
	r.mu.Lock()
	r.starts = append(r.starts, time.Now())
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	if err, ok := r.failFor[req.OutputMint.String()]; ok {
		return &SwapOutcome{State: StateFailed, FailStage: "quote", Err: err}, err
	}
	return &SwapOutcome{State: StateSubmitted, BundleID: "b", Signature: "s"}, nil
}

type staticTrending struct {
	items []BatchItem
	err   error
}

func (s *staticTrending) TrendingMints(context.Context, int) ([]BatchItem, error) {
	return s.items, s.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testMints(t *testing.T, n int) []BatchItem {
	t.Helper()
	items := make([]BatchItem, n)
	for i := range items {
		key, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		items[i] = BatchItem{Mint: key.PublicKey()}
	}
	return items
}

func TestOrchestrator_EveryItemReachesTerminalState(t *testing.T) {
	runner := &recordingRunner{}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   runner,
		Trending: &staticTrending{items: testMints(t, 4)},
		Pacing:   time.Millisecond,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	res, err := orch.BuyTrending(context.Background(), "user1", 4, 0.05)
	require.NoError(t, err)

	require.Len(t, res.Items, 4)
	for _, item := range res.Items {
		require.NotNil(t, item.Outcome)
		assert.Equal(t, StateSubmitted, item.Outcome.State)
	}
	assert.Equal(t, 4, res.Submitted)
	assert.Zero(t, res.Failed)

	// Every request trades SOL into the item's mint with the shared amount.
	for _, req := range runner.reqs {
		assert.Equal(t, WrappedSOLMint, req.InputMint)
		assert.Equal(t, 0.05, req.Amount)
	}
}

func TestOrchestrator_OneFailureDoesNotStopOthers(t *testing.T) {
	items := testMints(t, 3)
	runner := &recordingRunner{
		failFor: map[string]error{
			items[1].Mint.String(): errors.New("no route"),
		},
	}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   runner,
		Trending: &staticTrending{items: items},
		Pacing:   time.Millisecond,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	res, err := orch.BuyTrending(context.Background(), "user1", 3, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Submitted)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, StateFailed, res.Items[1].Outcome.State)
	assert.Equal(t, StateSubmitted, res.Items[0].Outcome.State)
	assert.Equal(t, StateSubmitted, res.Items[2].Outcome.State)
}

func TestOrchestrator_PacesStartsNotCompletions(t *testing.T) {
	const pacing = 60 * time.Millisecond

	// Each item takes much longer than the pacing interval; if completions
	// gated the schedule the run would take delay*n instead of pacing*n.
	runner := &recordingRunner{delay: 150 * time.Millisecond}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   runner,
		Trending: &staticTrending{items: testMints(t, 3)},
		Pacing:   pacing,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	began := time.Now()
	res, err := orch.BuyTrending(context.Background(), "user1", 3, 0.05)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	require.Len(t, runner.starts, 3)

	// First start is immediate.
	assert.Less(t, runner.starts[0].Sub(began), pacing)

	// Subsequent starts are spaced by at least the pacing interval, with a
	// small scheduling tolerance.
	for i := 1; i < len(runner.starts); i++ {
		gap := runner.starts[i].Sub(runner.starts[i-1])
		assert.GreaterOrEqual(t, gap, pacing-10*time.Millisecond, "start %d to %d", i-1, i)
	}

	// Items overlap: total wall time is far below serialized execution.
	assert.Less(t, time.Since(began), 3*150*time.Millisecond)
}

func TestOrchestrator_EmptyBatch(t *testing.T) {
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   &recordingRunner{},
		Trending: &staticTrending{},
		Pacing:   time.Millisecond,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	res, err := orch.BuyTrending(context.Background(), "user1", 5, 0.05)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Submitted)
	assert.Zero(t, res.Failed)
}

func TestOrchestrator_CanceledContextMarksRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := &recordingRunner{delay: 20 * time.Millisecond}
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   runner,
		Trending: &staticTrending{items: testMints(t, 3)},
		Pacing:   200 * time.Millisecond,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	res, err := orch.BuyTrending(ctx, "user1", 3, 0.05)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	// The first item started before cancellation; the rest are terminal
	// failures without ever reaching the runner.
	assert.Equal(t, StateFailed, res.Items[1].Outcome.State)
	assert.Equal(t, "batch", res.Items[1].Outcome.FailStage)
	assert.Equal(t, StateFailed, res.Items[2].Outcome.State)
	assert.LessOrEqual(t, len(runner.starts), 1)
}

func TestOrchestrator_RejectsBadConfig(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorConfig{Pacing: time.Second})
	assert.Error(t, err)

	_, err = NewOrchestrator(OrchestratorConfig{Runner: &recordingRunner{}, Pacing: 0})
	assert.Error(t, err)
}

func TestOrchestrator_BuyRejectsBadAmount(t *testing.T) {
	orch, err := NewOrchestrator(OrchestratorConfig{
		Runner:   &recordingRunner{},
		Trending: &staticTrending{items: testMints(t, 1)},
		Pacing:   time.Millisecond,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	_, err = orch.BuyTrending(context.Background(), "user1", 1, 0)
	assert.Error(t, err)
}
