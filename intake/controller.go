// Package intake owns the pending file list and runs one upload session at a time.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"golang.org/x/time/rate"

	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/transfer"
	"github.com/moyoez/resume-intake/types"
)

var (
	ErrNoPendingFiles = errors.New("no pending files to upload")
	ErrSessionActive  = errors.New("an upload session is already in progress")
)

// Uploader sends a batch to the parsing service. *transfer.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, files []types.PendingFile, onProgress func(int)) (*types.UploadResponse, error)
}

// Options tune session timing and event throttling.
type Options struct {
	ProgressStep     float64
	ProgressInterval time.Duration
	CompletionHold   time.Duration
	BroadcastRate    int // progress events per second, 0 = unlimited
	SessionTTL       time.Duration
}

func OptionsFromConfig(cfg types.AppConfig) Options {
	return Options{
		ProgressStep:     cfg.ProgressStep,
		ProgressInterval: cfg.ProgressInterval,
		CompletionHold:   cfg.CompletionHold,
		BroadcastRate:    cfg.BroadcastRate,
		SessionTTL:       cfg.SessionTTL,
	}
}

type pendingEntry struct {
	id   uint64
	file types.PendingFile
}

// Controller is the upload view's state: pending files, the drag flag and the current session.
type Controller struct {
	mu       sync.Mutex
	pending  []pendingEntry
	nextID   uint64
	dragging bool

	state     types.SessionState
	submitted map[uint64]struct{}
	done      chan struct{}
	smoother  *transfer.Smoother
	tickers   atomic.Int32 // running smoother loops, at most one
	sessions  *ttlworker.Cache[string, *types.SessionState]

	uploader Uploader
	results  ResultHandler
	hub      types.NotifyHub
	limiter  *rate.Limiter
	opts     Options
}

// NewController wires a controller. hub may be nil.
func NewController(uploader Uploader, results ResultHandler, hub types.NotifyHub, opts Options) *Controller {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 30 * time.Millisecond
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	var limiter *rate.Limiter
	if opts.BroadcastRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.BroadcastRate), 1)
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		uploader: uploader,
		results:  results,
		hub:      hub,
		limiter:  limiter,
		opts:     opts,
		smoother: transfer.NewSmoother(opts.ProgressStep),
		sessions: ttlworker.NewCache[string, *types.SessionState](opts.SessionTTL),
		done:     done,
	}
}

// AddFiles appends files in the given order. Nothing is validated or deduplicated.
func (c *Controller) AddFiles(files ...types.PendingFile) {
	if len(files) == 0 {
		return
	}
	c.mu.Lock()
	for _, f := range files {
		c.nextID++
		c.pending = append(c.pending, pendingEntry{id: c.nextID, file: f})
	}
	n := len(c.pending)
	c.mu.Unlock()
	tool.DefaultLogger.Debugf("[Intake] Added %d files, %d pending", len(files), n)
	c.notifyPending(n)
}

// RemoveFile drops the entry at index. Out of range is a no-op.
func (c *Controller) RemoveFile(index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.pending) {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending[:index:index], c.pending[index+1:]...)
	n := len(c.pending)
	c.mu.Unlock()
	c.notifyPending(n)
}

func (c *Controller) ClearAll() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.notifyPending(0)
}

// SetDragging records whether an external drag hovers the drop target.
func (c *Controller) SetDragging(dragging bool) {
	c.mu.Lock()
	c.dragging = dragging
	c.mu.Unlock()
}

func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Drop ends a drag and adds whatever was dropped.
func (c *Controller) Drop(files ...types.PendingFile) {
	c.SetDragging(false)
	c.AddFiles(files...)
}

// Pending returns a copy of the pending list in display order.
func (c *Controller) Pending() []types.PendingFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.PendingFile, len(c.pending))
	for i, e := range c.pending {
		out[i] = e.file
	}
	return out
}

// PendingInfo is Pending without the payload handles.
func (c *Controller) PendingInfo() []types.PendingFileInfo {
	files := c.Pending()
	out := make([]types.PendingFileInfo, len(files))
	for i, f := range files {
		out[i] = types.PendingFileInfo{Index: i, Name: f.Name, Size: f.Size, Label: f.SizeLabel()}
	}
	return out
}

// Session returns the current (or last) session.
func (c *Controller) Session() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Lookup finds a recent session by id.
func (c *Controller) Lookup(id string) (types.SessionState, bool) {
	s := c.sessions.Get(id)
	if s == nil {
		return types.SessionState{}, false
	}
	return *s, true
}

// Submit starts a session with the current pending list and returns immediately.
// ctx bounds the transfer, not the call.
func (c *Controller) Submit(ctx context.Context) (types.SessionState, error) {
	c.mu.Lock()
	if c.state.Uploading {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrSessionActive
	}
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return types.SessionState{}, ErrNoPendingFiles
	}

	files := make([]types.PendingFile, len(c.pending))
	c.submitted = make(map[uint64]struct{}, len(c.pending))
	for i, e := range c.pending {
		files[i] = e.file
		c.submitted[e.id] = struct{}{}
	}
	c.state = types.SessionState{
		ID:        tool.GenerateRandomUUID(),
		Uploading: true,
		Outcome:   types.OutcomePending,
		Files:     len(files),
		StartedAt: time.Now(),
	}
	c.smoother.Start()
	done := make(chan struct{})
	c.done = done
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.remember(snap)
	tool.DefaultLogger.Infof("[Intake] Session %s started with %d files", snap.ID, len(files))
	c.broadcast(types.NotifyTypeUploadStart, "Upload Started", fmt.Sprintf("Uploading %d files", len(files)), snap)

	go c.run(ctx, files, done)
	return snap, nil
}

// Wait blocks until the current session has been dismissed or ctx is done.
func (c *Controller) Wait(ctx context.Context) (types.SessionState, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	select {
	case <-done:
		return c.Session(), nil
	case <-ctx.Done():
		return c.Session(), ctx.Err()
	}
}

func (c *Controller) run(ctx context.Context, files []types.PendingFile, done chan struct{}) {
	defer close(done)

	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	ticksDone := make(chan struct{})
	c.tickers.Add(1)
	go func() {
		defer close(ticksDone)
		defer c.tickers.Add(-1)
		c.smoother.Run(tickCtx, c.opts.ProgressInterval, c.onTick)
	}()

	resp, err := c.uploader.Upload(ctx, files, c.onRaw)
	var result Result
	if err == nil {
		result, err = c.results.HandleResult(resp)
	}

	c.mu.Lock()
	if err != nil {
		c.state.Outcome = types.OutcomeFailed
		c.state.Error = transfer.Classify(err)
	} else {
		c.smoother.Complete()
		c.state.Outcome = types.OutcomeSucceeded
		c.state.Message = result.Message
		c.state.Summary = result.Summary
		c.state.Redirect = result.Redirect
		c.dropSubmittedLocked()
	}
	pendingLeft := len(c.pending)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.remember(snap)

	if err != nil {
		tool.DefaultLogger.Errorf("[Intake] Session %s failed: %v", snap.ID, err)
		c.broadcast(types.NotifyTypeUploadFailed, "Upload Failed", snap.Error, snap)
	} else {
		tool.DefaultLogger.Infof("[Intake] Session %s succeeded, %d candidates", snap.ID, result.Records)
		c.broadcast(types.NotifyTypeUploadEnd, "Upload Complete", snap.Message, snap)
		c.notifyPending(pendingLeft)
	}

	if c.opts.CompletionHold > 0 {
		timer := time.NewTimer(c.opts.CompletionHold)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	// the loop must be gone before a new session can Start the smoother
	stopTicks()
	<-ticksDone
	c.smoother.Stop()
	c.mu.Lock()
	c.state.Uploading = false
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.remember(snap)
}

func (c *Controller) onRaw(pct int) {
	c.smoother.SetRaw(pct)
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if c.allow() {
		c.broadcast(types.NotifyTypeUploadProgress, "Uploading", fmt.Sprintf("%d%%", snap.RawProgress), snap)
	}
}

func (c *Controller) onTick(display float64) {
	if !c.allow() {
		return
	}
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	snap.DisplayProgress = display
	c.broadcast(types.NotifyTypeUploadProgress, "Uploading", fmt.Sprintf("%.0f%%", display), snap)
}

// dropSubmittedLocked removes the files that went out with this session,
// keeping anything added while it was in flight.
func (c *Controller) dropSubmittedLocked() {
	kept := c.pending[:0]
	for _, e := range c.pending {
		if _, ok := c.submitted[e.id]; !ok {
			kept = append(kept, e)
		}
	}
	c.pending = kept
	c.submitted = nil
}

func (c *Controller) snapshotLocked() types.SessionState {
	snap := c.state
	if snap.ID != "" {
		snap.RawProgress = c.smoother.Raw()
		snap.DisplayProgress = c.smoother.Display()
	}
	if snap.Summary != nil {
		snap.Summary = append([]string(nil), snap.Summary...)
	}
	return snap
}

func (c *Controller) remember(snap types.SessionState) {
	if snap.ID == "" {
		return
	}
	c.sessions.Set(snap.ID, &snap)
}

func (c *Controller) allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

func (c *Controller) notifyPending(n int) {
	if c.hub == nil {
		return
	}
	c.hub.Broadcast(&types.Notification{
		ID:      tool.GenerateShortID(),
		Type:    types.NotifyTypePendingChanged,
		Title:   "Pending Files",
		Message: fmt.Sprintf("%d files pending", n),
		Data:    map[string]any{"pending": n},
	})
}

func (c *Controller) broadcast(kind, title, message string, snap types.SessionState) {
	if c.hub == nil {
		return
	}
	c.hub.Broadcast(&types.Notification{
		ID:      tool.GenerateShortID(),
		Type:    kind,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"sessionId":       snap.ID,
			"rawProgress":     snap.RawProgress,
			"displayProgress": snap.DisplayProgress,
			"outcome":         string(snap.Outcome),
			"uploading":       snap.Uploading,
			"files":           snap.Files,
		},
	})
}
