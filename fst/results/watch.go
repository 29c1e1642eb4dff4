package results

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/steiner-battery/fstscope/fst"
)

// DefaultDebounce is the quiet period after the last input change before a
// batch is handed to the handler.
const DefaultDebounce = 500 * time.Millisecond

var inputKinds = []fst.FileKind{fst.FileSolution, fst.FileDump, fst.FileTerminals, fst.FileVisualization}

// Watcher reports which iterations' inputs changed in a results directory
// while the solver is still writing it.
type Watcher struct {
	dir      string
	cfg      *fst.AnalysisConfig
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching dir. The caller must Close it.
func NewWatcher(dir string, cfg *fst.AnalysisConfig, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{dir: dir, cfg: cfg, debounce: debounce, watcher: fw}, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// changedIteration maps a changed path to its iteration when the path is
// an input file. Report files never trigger a refresh.
func (w *Watcher) changedIteration(path string) (int, bool) {
	for _, kind := range inputKinds {
		if n, ok := IterationOf(path, kind, w.cfg); ok {
			return n, true
		}
	}
	return 0, false
}

// Run collects changes until ctx is done and calls handle with the sorted,
// de-duplicated iteration numbers of each debounced batch.
func (w *Watcher) Run(ctx context.Context, handle func(iters []int)) error {
	pending := map[int]bool{}
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return
		}
		iters := make([]int, 0, len(pending))
		for n := range pending {
			iters = append(iters, n)
		}
		sort.Ints(iters)
		clear(pending)
		handle(iters)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				flush()
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			n, ok := w.changedIteration(ev.Name)
			if !ok {
				continue
			}
			logrus.Debugf("watch: %s changed (iteration %d)", ev.Name, n)
			pending[n] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				flush()
				return nil
			}
			logrus.Warnf("watch %s: %v", w.dir, err)
		case <-timerC:
			flush()
		}
	}
}

// Refresh rewrites the summary of dir and the analysis file of every changed
// iteration and of its successor, whose distance depends on it.
func Refresh(ctx context.Context, dir string, cfg *fst.AnalysisConfig, changed []int) ([]string, error) {
	its, err := Run(ctx, dir, cfg, false)
	if err != nil {
		return nil, err
	}
	affected := map[int]bool{}
	for _, n := range changed {
		affected[n] = true
		affected[n+1] = true
	}
	dist := Distances(its)
	var written []string
	for _, it := range its {
		if !affected[it.Number] || it.Err != nil {
			continue
		}
		path, err := WriteAnalysis(dir, it, dist[it.Number], cfg)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
