package pipeline

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/bodymeasure/logging"
	"go.viam.com/bodymeasure/measure"
)

// WatchSource produces frames as a recorder writes them into a directory. A frame is complete
// once its bodies file appears. Frames that arrive while the consumer is still busy are dropped.
type WatchSource struct {
	dir           string
	width, height int
	logger        logging.Logger

	watcher *fsnotify.Watcher
	slot    *Slot
	seq     uint64

	// last is the bodies file of the most recent frame, so the Create and Write events of one
	// write yield one frame while a later write to the same stem yields another.
	last os.FileInfo

	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewWatchSource starts watching dir. Close stops the watcher.
func NewWatchSource(ctx context.Context, dir string, width, height int, logger logging.Logger) (*WatchSource, error) {
	if logger == nil {
		logger = logging.Global().Sublogger("watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		return nil, multierr.Combine(err, watcher.Close())
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	ws := &WatchSource{
		dir:     dir,
		width:   width,
		height:  height,
		logger:  logger,
		watcher: watcher,
		slot:    NewSlot(),
		cancel:  cancel,
	}
	ws.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		ws.watch(cancelCtx)
	}, ws.activeBackgroundWorkers.Done)
	return ws, nil
}

func (ws *WatchSource) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ws.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(event.Name, BodiesSuffix) {
				continue
			}
			ws.load(strings.TrimSuffix(event.Name, BodiesSuffix))
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return
			}
			ws.logger.Warnw("watch error", "dir", ws.dir, "error", err)
		}
	}
}

func (ws *WatchSource) load(stem string) {
	info, err := os.Stat(stem + BodiesSuffix)
	if err != nil {
		ws.logger.Debugw("frame not ready", "stem", stem, "error", err)
		return
	}
	if sameWrite(ws.last, info) {
		return
	}
	frame, err := ReadFrame(stem, ws.width, ws.height)
	if err != nil {
		// a later write event retries
		ws.logger.Debugw("frame not ready", "stem", stem, "error", err)
		return
	}
	ws.last = info
	frame.Sequence = ws.seq
	ws.seq++
	if !ws.slot.Offer(frame) {
		ws.logger.Debugw("consumer busy, dropping frame", "seq", frame.Sequence, "dropped", ws.slot.Dropped())
	}
}

// sameWrite reports whether info describes the same bodies file, unchanged, as last.
func sameWrite(last, info os.FileInfo) bool {
	return last != nil &&
		os.SameFile(last, info) &&
		last.Size() == info.Size() &&
		last.ModTime().Equal(info.ModTime())
}

// Next waits for the next frame.
func (ws *WatchSource) Next(ctx context.Context) (*measure.Frame, error) {
	return ws.slot.Next(ctx)
}

// Dropped returns how many completed frames were discarded because the consumer was busy.
func (ws *WatchSource) Dropped() uint64 {
	return ws.slot.Dropped()
}

// Close stops watching. A frame already waiting is still returned by Next.
func (ws *WatchSource) Close() error {
	ws.cancel()
	err := ws.watcher.Close()
	ws.activeBackgroundWorkers.Wait()
	return multierr.Combine(err, ws.slot.Close())
}
