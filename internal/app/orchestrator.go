package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
	"github.com/NikiWay00/modern-video-downloader/internal/infrastructure"
	"github.com/NikiWay00/modern-video-downloader/internal/progress"
)

// RunSettings are the user-adjustable knobs applied to every item of a run
type RunSettings struct {
	Mode          domain.Mode
	QualityPreset string
	OutputDir     string
}

// Orchestrator owns the download queue, the cancellation flag, the
// output channel and the sequential worker that drains the queue. All
// exported methods are safe to call from the presentation goroutine
// while a run is in flight.
type Orchestrator struct {
	downloader domain.Downloader
	titles     domain.InfoFetcher
	history    domain.HistoryRepository
	notifier   *infrastructure.NotificationService
	cfg        *domain.Config
	logger     *zap.Logger

	mu       sync.Mutex
	queue    []*domain.QueueItem
	settings RunSettings
	running  bool

	cancelled atomic.Bool
	events    eventQueue
	workerWg  sync.WaitGroup
	titleWg   sync.WaitGroup
}

// NewOrchestrator creates an orchestrator. titles, history and notifier
// may be nil, disabling title prefetch, history recording and desktop
// notifications respectively.
func NewOrchestrator(
	downloader domain.Downloader,
	titles domain.InfoFetcher,
	history domain.HistoryRepository,
	notifier *infrastructure.NotificationService,
	cfg *domain.Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		downloader: downloader,
		titles:     titles,
		history:    history,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		settings: RunSettings{
			Mode:          domain.Mode(cfg.Download.Mode),
			QualityPreset: cfg.Download.QualityPreset,
			OutputDir:     cfg.Download.OutputDir,
		},
	}
}

// Enqueue validates rawURL, appends it to the queue and kicks off a
// background title lookup. The queue itself is untouched on rejection.
func (o *Orchestrator) Enqueue(rawURL string) (*domain.QueueItem, error) {
	if err := domain.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	item := domain.NewQueueItem(rawURL)

	o.mu.Lock()
	o.queue = append(o.queue, item)
	o.mu.Unlock()

	o.events.publish(domain.LogMessage("Added to queue: " + item.URL))
	o.logger.Info("Added to queue",
		zap.String("id", item.ID),
		zap.String("url", item.URL))

	o.titleWg.Add(1)
	go o.prefetchTitle(item.ID, item.URL)

	return item, nil
}

// prefetchTitle resolves the item title without holding the queue lock
// across the network call. Any failure leaves the URL as the title.
func (o *Orchestrator) prefetchTitle(id, url string) {
	defer o.titleWg.Done()

	title := url
	if o.titles != nil {
		ctx, cancel := context.WithTimeout(context.Background(), o.cfg.Performance.TitleFetchTimeout)
		defer cancel()
		fetched, err := o.titles.FetchTitle(ctx, url)
		if err != nil || strings.TrimSpace(fetched) == "" {
			o.logger.Warn("Title lookup failed", zap.String("url", url), zap.Error(err))
		} else {
			title = fetched
		}
	}
	o.setTitle(id, title)
}

// setTitle holds the lock only for the write; an item already popped or
// cleared is simply gone and the write is a no-op.
func (o *Orchestrator) setTitle(id, title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, item := range o.queue {
		if item.ID == id {
			item.Title = title
			return
		}
	}
}

// StartRun begins draining the queue on a background worker. A start
// request while already running, or with an empty queue, is a no-op.
func (o *Orchestrator) StartRun() {
	o.mu.Lock()
	if o.running || len(o.queue) == 0 {
		o.mu.Unlock()
		return
	}
	o.running = true
	o.mu.Unlock()

	o.cancelled.Store(false)
	o.logger.Info("Download queue started")
	o.workerWg.Add(1)
	go o.runWorker()
}

// RequestCancel flags the current run for cooperative cancellation.
// Safe to call repeatedly; a no-op when no run is active.
func (o *Orchestrator) RequestCancel() {
	o.mu.Lock()
	running := o.running
	o.mu.Unlock()
	if !running {
		return
	}
	o.cancelled.Store(true)
	o.events.publish(domain.LogMessage(domain.LogCancelRequested))
	o.logger.Info("Download cancellation requested")
}

// Clear empties the queue. Does not affect an in-flight item.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.queue = nil
	o.mu.Unlock()
	o.events.publish(domain.LogMessage(domain.LogQueueCleared))
	o.logger.Info("Queue cleared")
}

// RemoveLast drops the most recently enqueued item, if any
func (o *Orchestrator) RemoveLast() {
	o.mu.Lock()
	var removed *domain.QueueItem
	if n := len(o.queue); n > 0 {
		removed = o.queue[n-1]
		o.queue = o.queue[:n-1]
	}
	o.mu.Unlock()

	if removed != nil {
		o.events.publish(domain.LogMessage(domain.LogRemovedLast))
		o.logger.Info("Removed from queue", zap.String("url", removed.URL))
	}
}

// Snapshot returns a copy of the queued items in FIFO order
func (o *Orchestrator) Snapshot() []domain.QueueItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.QueueItem, len(o.queue))
	for i, item := range o.queue {
		out[i] = *item
	}
	return out
}

// Poll drains pending output messages without blocking
func (o *Orchestrator) Poll() []domain.Message {
	return o.events.drain()
}

// IsRunning reports whether a run is currently draining the queue
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// SetMode changes the download mode for subsequent items
func (o *Orchestrator) SetMode(mode domain.Mode) error {
	if !domain.ValidMode(mode) {
		return domain.NewError(domain.KindInvalidInput, fmt.Sprintf("invalid mode %q", mode))
	}
	o.mu.Lock()
	o.settings.Mode = mode
	o.mu.Unlock()
	return nil
}

// SetQualityPreset changes the quality preset for subsequent items
func (o *Orchestrator) SetQualityPreset(preset string) {
	o.mu.Lock()
	o.settings.QualityPreset = preset
	o.mu.Unlock()
}

// SetOutputDir changes the output directory for subsequent items
func (o *Orchestrator) SetOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return domain.NewError(domain.KindInvalidInput, "output directory is empty")
	}
	o.mu.Lock()
	o.settings.OutputDir = dir
	o.mu.Unlock()
	return nil
}

// runWorker drains the queue sequentially. The deferred cleanup chain
// guarantees exactly one done message per run, even when the loop body
// panics.
func (o *Orchestrator) runWorker() {
	defer o.workerWg.Done()
	defer func() {
		o.events.publish(domain.DetailsMessage(""))
		o.events.publish(domain.DoneMessage())
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		o.logger.Info("Queue worker finished")
	}()
	defer func() {
		if r := recover(); r != nil {
			text := fmt.Sprintf("%v", r)
			o.logger.Error("Unexpected failure in queue worker", zap.Any("panic", r))
			o.events.publish(domain.StatusMessage(domain.StatusError(text)))
			o.events.publish(domain.LogMessage("Fatal error: " + text))
			o.events.publish(domain.ShowErrorMessage("Unexpected error", text))
		}
	}()

	completed, failed := 0, 0
	for {
		if o.cancelled.Load() {
			break
		}

		o.mu.Lock()
		if len(o.queue) == 0 {
			o.mu.Unlock()
			break
		}
		item := o.queue[0]
		o.queue = o.queue[1:]
		settings := o.settings
		o.mu.Unlock()

		o.events.publish(domain.DetailsMessage(item.DisplayTitle()))
		o.events.publish(domain.LogMessage("Downloading: " + item.DisplayTitle()))
		o.logger.Info("Processing queue item",
			zap.String("id", item.ID),
			zap.String("url", item.URL))

		req := domain.DownloadRequest{
			URL:       item.URL,
			Mode:      settings.Mode,
			Quality:   domain.QualityFormat(settings.QualityPreset),
			OutputDir: settings.OutputDir,
		}
		err := o.downloader.Download(req, o, o.cancelled.Load)
		if err == nil {
			completed++
			o.recordOutcome(item, settings.Mode, domain.OutcomeCompleted, "")
			continue
		}
		if domain.IsCancelled(err) {
			o.recordOutcome(item, settings.Mode, domain.OutcomeCancelled, "")
			o.logger.Info("Item cancelled, ending run", zap.String("id", item.ID))
			break
		}

		// a failed item never aborts the rest of the queue
		failed++
		o.recordOutcome(item, settings.Mode, domain.OutcomeFailed, err.Error())
		o.logger.Error("Error downloading item",
			zap.String("url", item.URL),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err))
		o.events.publish(domain.LogMessage("Error: " + err.Error()))
		if o.notifier != nil {
			o.notifier.NotifyDownloadFailed(item.DisplayTitle(), err)
		}
	}

	if o.cancelled.Load() {
		o.events.publish(domain.StatusMessage(domain.StatusCancelled))
		o.events.publish(domain.LogMessage(domain.LogQueueCancelled))
		if o.notifier != nil {
			o.notifier.NotifyRunCancelled()
		}
		return
	}
	o.events.publish(domain.StatusMessage(domain.StatusComplete))
	o.events.publish(domain.LogMessage(domain.LogAllComplete))
	if o.notifier != nil {
		o.notifier.NotifyRunComplete(completed, failed)
	}
}

// OnProgress implements domain.ProgressObserver for the in-flight item
func (o *Orchestrator) OnProgress(snapshot progress.Snapshot) {
	o.events.publish(domain.ProgressMessage(snapshot))
}

// OnStatus implements domain.ProgressObserver. Status transitions
// surface both on the status bar and in the log.
func (o *Orchestrator) OnStatus(message string) {
	o.events.publish(domain.StatusMessage(message))
	o.events.publish(domain.LogMessage(message))
}

func (o *Orchestrator) recordOutcome(item *domain.QueueItem, mode domain.Mode, outcome, errMessage string) {
	if o.history == nil {
		return
	}
	entry := &domain.HistoryEntry{
		ID:           item.ID,
		URL:          item.URL,
		Title:        item.DisplayTitle(),
		Mode:         string(mode),
		Outcome:      outcome,
		ErrorMessage: errMessage,
		CreatedAt:    item.CreatedAt,
		FinishedAt:   time.Now(),
	}
	if err := o.history.Record(entry); err != nil {
		o.logger.Warn("Failed to record download history", zap.Error(err))
	}
}
