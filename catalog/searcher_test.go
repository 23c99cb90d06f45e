package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spezifisch/tunebar/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	kind   string
	query  string
	tracks []Track
	err    error
}

type recordingPresenter struct {
	mu       sync.Mutex
	outcomes []outcome
	started  []string
	cleared  int
}

func (p *recordingPresenter) SearchStarted(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, query)
}

func (p *recordingPresenter) SearchOK(query string, tracks []Track) {
	p.add(outcome{kind: "ok", query: query, tracks: tracks})
}

func (p *recordingPresenter) SearchEmpty(query string) {
	p.add(outcome{kind: "empty", query: query})
}

func (p *recordingPresenter) SearchFailed(query string, err error) {
	p.add(outcome{kind: "failed", query: query, err: err})
}

func (p *recordingPresenter) SearchCleared() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

func (p *recordingPresenter) add(o outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, o)
}

func (p *recordingPresenter) snapshot() []outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]outcome(nil), p.outcomes...)
}

type countingLoader struct {
	mu      sync.Mutex
	shown   int
	hidden  int
	visible bool
}

func (l *countingLoader) ShowLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shown++
	l.visible = true
}

func (l *countingLoader) HideLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hidden++
	l.visible = false
}

func (l *countingLoader) counts() (int, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shown, l.hidden, l.visible
}

// fakeBackend answers from a function and remembers every query it saw.
type fakeBackend struct {
	mu      sync.Mutex
	queries []string
	answer  func(ctx context.Context, query string) ([]Track, error)
}

func (b *fakeBackend) Search(ctx context.Context, query string) ([]Track, error) {
	b.mu.Lock()
	b.queries = append(b.queries, query)
	b.mu.Unlock()
	return b.answer(ctx, query)
}

func (b *fakeBackend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func oneTrack(query string) []Track {
	return []Track{{Index: 0, Title: query, Artist: "x", PreviewURL: "p"}}
}

func newTestSearcher(backend Backend) (*Searcher, *recordingPresenter, *countingLoader) {
	presenter := &recordingPresenter{}
	loader := &countingLoader{}
	s := NewSearcher(backend, presenter, loader, logger.Init())
	s.Delay = 30 * time.Millisecond
	s.Timeout = time.Second
	return s, presenter, loader
}

func TestSearcherDebounce(t *testing.T) {
	backend := &fakeBackend{answer: func(_ context.Context, q string) ([]Track, error) { return oneTrack(q), nil }}
	s, presenter, _ := newTestSearcher(backend)
	defer s.Close()

	s.Query("a")
	s.Query("ab")
	s.Query("abc")

	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	// give any stray timers a chance to fire
	time.Sleep(3 * s.Delay)

	assert.Equal(t, []string{"abc"}, backend.seen())
	got := presenter.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].kind)
	assert.Equal(t, "abc", got[0].query)
}

func TestSearcherTrimsAndClears(t *testing.T) {
	backend := &fakeBackend{answer: func(_ context.Context, q string) ([]Track, error) { return oneTrack(q), nil }}
	s, presenter, _ := newTestSearcher(backend)
	defer s.Close()

	s.Query("  beatles ")
	s.Query("   ")

	time.Sleep(3 * s.Delay)
	assert.Empty(t, backend.seen(), "an empty query cancels the pending one")
	assert.Empty(t, presenter.snapshot())
	presenter.mu.Lock()
	assert.Equal(t, 1, presenter.cleared)
	presenter.mu.Unlock()

	s.Query("  beatles ")
	require.Eventually(t, func() bool { return len(backend.seen()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "beatles", backend.seen()[0])
}

func TestSearcherOutcomes(t *testing.T) {
	testCases := []struct {
		name     string
		answer   func(context.Context, string) ([]Track, error)
		expected string
	}{
		{
			name:     "results",
			answer:   func(_ context.Context, q string) ([]Track, error) { return oneTrack(q), nil },
			expected: "ok",
		},
		{
			name:     "no results",
			answer:   func(context.Context, string) ([]Track, error) { return []Track{}, nil },
			expected: "empty",
		},
		{
			name:     "connection error",
			answer:   func(context.Context, string) ([]Track, error) { return nil, errors.New("dial tcp: refused") },
			expected: "failed",
		},
		{
			name:     "backend panic",
			answer:   func(context.Context, string) ([]Track, error) { panic("bad shape") },
			expected: "failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, presenter, loader := newTestSearcher(&fakeBackend{answer: tc.answer})
			defer s.Close()

			s.Query("q")
			require.Eventually(t, func() bool { return len(presenter.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

			got := presenter.snapshot()[0]
			assert.Equal(t, tc.expected, got.kind)
			if tc.expected == "failed" {
				assert.ErrorIs(t, got.err, ErrSearchFailed)
			}

			require.Eventually(t, func() bool {
				shown, hidden, visible := loader.counts()
				return shown == 1 && hidden == 1 && !visible
			}, time.Second, 5*time.Millisecond, "loading indicator is released on every path")
		})
	}
}

func TestSearcherDropsStaleResponses(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{answer: func(_ context.Context, q string) ([]Track, error) {
		if q == "slow" {
			// ignores cancellation, like a server that answers late
			<-release
		}
		return oneTrack(q), nil
	}}
	s, presenter, _ := newTestSearcher(backend)
	defer s.Close()

	s.Query("slow")
	require.Eventually(t, func() bool { return len(backend.seen()) == 1 }, time.Second, 5*time.Millisecond)

	s.Query("fast")
	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(3 * s.Delay)

	got := presenter.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "fast", got[0].query)
	assert.Equal(t, "fast", got[0].tracks[0].Title)
}

func TestSearcherCancelsSupersededRequest(t *testing.T) {
	cancelled := make(chan struct{})
	backend := &fakeBackend{answer: func(ctx context.Context, q string) ([]Track, error) {
		if q == "first" {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return oneTrack(q), nil
	}}
	s, presenter, _ := newTestSearcher(backend)
	defer s.Close()

	s.Query("first")
	require.Eventually(t, func() bool { return len(backend.seen()) == 1 }, time.Second, 5*time.Millisecond)
	s.Query("second")

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "second", presenter.snapshot()[0].query)
}

func TestSearcherTimeout(t *testing.T) {
	backend := &fakeBackend{answer: func(ctx context.Context, q string) ([]Track, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s, presenter, _ := newTestSearcher(backend)
	s.Timeout = 20 * time.Millisecond
	defer s.Close()

	s.Query("hang")
	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	got := presenter.snapshot()[0]
	assert.Equal(t, "failed", got.kind)
	assert.ErrorIs(t, got.err, context.DeadlineExceeded)
}

func TestSearcherClose(t *testing.T) {
	backend := &fakeBackend{answer: func(_ context.Context, q string) ([]Track, error) { return oneTrack(q), nil }}
	s, presenter, _ := newTestSearcher(backend)

	s.Query("never")
	s.Close()
	s.Query("after close")
	time.Sleep(3 * s.Delay)

	assert.Empty(t, backend.seen())
	assert.Empty(t, presenter.snapshot())
}
