package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// fakeDownloader records its calls and answers from a script
type fakeDownloader struct {
	mu     sync.Mutex
	calls  []domain.DownloadRequest
	errs   map[string]error           // per-URL result, nil means success
	onCall func(n int, cancelled func() bool) error
}

func (f *fakeDownloader) Download(req domain.DownloadRequest, obs domain.ProgressObserver, cancelled func() bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()

	if f.onCall != nil {
		return f.onCall(n, cancelled)
	}
	if f.errs != nil {
		return f.errs[req.URL]
	}
	return nil
}

func (f *fakeDownloader) callURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, len(f.calls))
	for i, c := range f.calls {
		urls[i] = c.URL
	}
	return urls
}

// fakeFetcher answers title lookups from a map, blocking on gate if set
type fakeFetcher struct {
	titles map[string]string
	gate   chan struct{}
}

func (f *fakeFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	if title, ok := f.titles[url]; ok {
		return title, nil
	}
	return "", errors.New("not found")
}

func newTestOrchestrator(d domain.Downloader, titles domain.InfoFetcher) *Orchestrator {
	cfg := domain.DefaultConfig()
	cfg.Download.OutputDir = "/tmp/mvd-test"
	return NewOrchestrator(d, titles, nil, nil, cfg, zap.NewNop())
}

// drainAll collects everything published so far
func drainAll(o *Orchestrator) []domain.Message {
	return o.Poll()
}

func countKind(msgs []domain.Message, kind domain.MessageKind) int {
	n := 0
	for _, m := range msgs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func waitForRun(t *testing.T, o *Orchestrator) {
	t.Helper()
	o.workerWg.Wait()
}

func TestEnqueueRejectsInvalidURL(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)

	_, err := o.Enqueue("not a url")
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Empty(t, o.Snapshot())
}

func TestEnqueueSnapshotRoundTrip(t *testing.T) {
	// gate keeps the prefetch pending so the snapshot still shows the
	// placeholder state
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	defer close(fetcher.gate)
	o := newTestOrchestrator(&fakeDownloader{}, fetcher)

	item, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)

	snap := o.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, item.ID, snap[0].ID)
	assert.Equal(t, "https://example.com/v1", snap[0].URL)
	assert.Equal(t, "https://example.com/v1", snap[0].DisplayTitle())
}

func TestTitlePrefetchResolvesInPlace(t *testing.T) {
	fetcher := &fakeFetcher{titles: map[string]string{
		"https://example.com/v1": "First Video",
	}}
	o := newTestOrchestrator(&fakeDownloader{}, fetcher)

	_, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)
	_, err = o.Enqueue("https://example.com/unknown")
	require.NoError(t, err)
	o.titleWg.Wait()

	snap := o.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "First Video", snap[0].Title)
	// lookup failure falls back to the URL
	assert.Equal(t, "https://example.com/unknown", snap[1].DisplayTitle())
}

func TestRunDrainsQueueInOrder(t *testing.T) {
	d := &fakeDownloader{}
	o := newTestOrchestrator(d, nil)

	urls := []string{
		"https://example.com/v1",
		"https://example.com/v2",
		"https://example.com/v3",
	}
	for _, u := range urls {
		_, err := o.Enqueue(u)
		require.NoError(t, err)
	}
	o.titleWg.Wait()

	o.StartRun()
	waitForRun(t, o)

	assert.Equal(t, urls, d.callURLs())
	assert.Empty(t, o.Snapshot())
	assert.False(t, o.IsRunning())

	msgs := drainAll(o)
	assert.Equal(t, 1, countKind(msgs, domain.MessageDone))
	last := msgs[len(msgs)-1]
	assert.Equal(t, domain.MessageDone, last.Kind)
}

func TestRunAppliesSettingsToEveryItem(t *testing.T) {
	d := &fakeDownloader{}
	o := newTestOrchestrator(d, nil)

	require.NoError(t, o.SetMode(domain.ModeAudio))
	o.SetQualityPreset("720p (HD)")
	require.NoError(t, o.SetOutputDir("/tmp/elsewhere"))

	_, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)
	o.StartRun()
	waitForRun(t, o)

	require.Len(t, d.calls, 1)
	assert.Equal(t, domain.ModeAudio, d.calls[0].Mode)
	assert.Equal(t, domain.QualityFormat("720p (HD)"), d.calls[0].Quality)
	assert.Equal(t, "/tmp/elsewhere", d.calls[0].OutputDir)
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)
	err := o.SetMode(domain.Mode("subtitle"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestStartRunWhileRunningIsNoop(t *testing.T) {
	release := make(chan struct{})
	d := &fakeDownloader{onCall: func(n int, cancelled func() bool) error {
		<-release
		return nil
	}}
	o := newTestOrchestrator(d, nil)

	_, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)
	o.StartRun()
	assert.Eventually(t, o.IsRunning, time.Second, time.Millisecond)

	o.StartRun()
	o.StartRun()
	close(release)
	waitForRun(t, o)

	assert.Len(t, d.calls, 1)
	assert.Equal(t, 1, countKind(drainAll(o), domain.MessageDone))
}

func TestStartRunWithEmptyQueueIsNoop(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)
	o.StartRun()
	assert.False(t, o.IsRunning())
	assert.Equal(t, 0, countKind(drainAll(o), domain.MessageDone))
}

func TestItemFailureDoesNotAbortRun(t *testing.T) {
	d := &fakeDownloader{errs: map[string]error{
		"https://example.com/v2": domain.NewError(domain.KindVideoUnavailable, "Video is private"),
	}}
	o := newTestOrchestrator(d, nil)

	for _, u := range []string{"https://example.com/v1", "https://example.com/v2", "https://example.com/v3"} {
		_, err := o.Enqueue(u)
		require.NoError(t, err)
	}
	o.StartRun()
	waitForRun(t, o)

	assert.Len(t, d.calls, 3)

	msgs := drainAll(o)
	assert.Equal(t, 1, countKind(msgs, domain.MessageDone))
	var sawError bool
	for _, m := range msgs {
		if m.Kind == domain.MessageLog && m.Text == "Error: video_unavailable: Video is private" {
			sawError = true
		}
	}
	assert.True(t, sawError, "per-item failure must surface as a log message")
}

func TestCancelMidRun(t *testing.T) {
	var o *Orchestrator
	d := &fakeDownloader{onCall: func(n int, cancelled func() bool) error {
		if n == 2 {
			o.RequestCancel()
		}
		if cancelled() {
			return domain.NewError(domain.KindCancelled, "download cancelled by user")
		}
		return nil
	}}
	o = newTestOrchestrator(d, nil)

	for _, u := range []string{"https://example.com/v1", "https://example.com/v2", "https://example.com/v3"} {
		_, err := o.Enqueue(u)
		require.NoError(t, err)
	}
	o.StartRun()
	waitForRun(t, o)

	// item 3 is never started
	assert.Len(t, d.calls, 2)

	msgs := drainAll(o)
	assert.Equal(t, 1, countKind(msgs, domain.MessageDone))
	var sawCancelled bool
	for _, m := range msgs {
		if m.Kind == domain.MessageStatus && m.Text == domain.StatusCancelled {
			sawCancelled = true
		}
	}
	assert.True(t, sawCancelled, "terminal status must be cancelled")
}

func TestRequestCancelIsIdempotent(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := &fakeDownloader{onCall: func(n int, cancelled func() bool) error {
		close(started)
		<-release
		if cancelled() {
			return domain.NewError(domain.KindCancelled, "download cancelled by user")
		}
		return nil
	}}
	o := newTestOrchestrator(d, nil)

	_, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)
	o.StartRun()
	<-started

	o.RequestCancel()
	o.RequestCancel()
	assert.True(t, o.cancelled.Load())

	close(release)
	waitForRun(t, o)
	assert.Equal(t, 1, countKind(drainAll(o), domain.MessageDone))
}

func TestRequestCancelWhileIdleIsNoop(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)
	o.RequestCancel()
	assert.False(t, o.cancelled.Load())
	assert.Empty(t, drainAll(o))
}

func TestClearAndRemoveLast(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)

	for _, u := range []string{"https://example.com/v1", "https://example.com/v2"} {
		_, err := o.Enqueue(u)
		require.NoError(t, err)
	}

	o.RemoveLast()
	snap := o.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "https://example.com/v1", snap[0].URL)

	o.Clear()
	assert.Empty(t, o.Snapshot())

	// removing from an empty queue is harmless
	o.RemoveLast()
	assert.Empty(t, o.Snapshot())
}

func TestWorkerPanicStillEmitsDone(t *testing.T) {
	d := &fakeDownloader{onCall: func(n int, cancelled func() bool) error {
		panic("downloader exploded")
	}}
	o := newTestOrchestrator(d, nil)

	_, err := o.Enqueue("https://example.com/v1")
	require.NoError(t, err)
	o.StartRun()
	waitForRun(t, o)

	msgs := drainAll(o)
	assert.Equal(t, 1, countKind(msgs, domain.MessageDone))
	assert.Equal(t, 1, countKind(msgs, domain.MessageShowError))
	assert.False(t, o.IsRunning())
}

func TestProgressObserverForwardsToOutputChannel(t *testing.T) {
	o := newTestOrchestrator(&fakeDownloader{}, nil)

	o.OnStatus(domain.StatusDownloading)
	msgs := drainAll(o)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageStatus, msgs[0].Kind)
	assert.Equal(t, domain.StatusDownloading, msgs[0].Text)
	assert.Equal(t, domain.MessageLog, msgs[1].Kind)
}
