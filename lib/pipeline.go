package collagelib

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awused/collage-wallpapers/util/log"
	"golang.org/x/sync/semaphore"
)

// ErrCancelled is returned internally when a pipeline is stopped while
// waiting. It never escapes Run.
var ErrCancelled = errors.New("Pipeline cancelled")

// Clock arms timers. The returned function stops the timer.
type Clock interface {
	After(d time.Duration) (<-chan time.Time, func() bool)
}

type realClock struct{}

func (realClock) After(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Shared is what the pipelines of every monitor have in common.
type Shared struct {
	Composer *Composer
	Backend  Backend
	WorkDir  *WorkDir
	Rand     *Rand
	Schedule *Schedule
	Output   OutputOptions
	// Limits how many collages are generated at once
	Workers *semaphore.Weighted
	// Defaults to real timers
	Clock Clock
}

// PipelineStatus is a snapshot of a pipeline's state.
type PipelineStatus struct {
	Index       int
	PoolSize    int
	Active      string
	Next        string
	Generations int
	// Zero until the first timer is armed
	Delay    time.Duration
	ArmedAt  time.Time
	Finished bool
}

// MonitorPipeline keeps one monitor's wallpaper rotating. It always has a
// collage installed and the next one already written to disk, so a
// transition never waits on generation.
type MonitorPipeline struct {
	spec    MonitorSpec
	shared  *Shared
	clock   Clock
	order   []string
	advance chan struct{}

	mu     sync.Mutex
	status PipelineStatus
}

func NewMonitorPipeline(spec MonitorSpec, shared *Shared) *MonitorPipeline {
	clock := shared.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &MonitorPipeline{
		spec:    spec,
		shared:  shared,
		clock:   clock,
		order:   append([]string(nil), spec.Wallpapers...),
		advance: make(chan struct{}, 1),
		status:  PipelineStatus{Index: spec.Index, PoolSize: len(spec.Wallpapers)},
	}
}

func (p *MonitorPipeline) Index() int {
	return p.spec.Index
}

// Advance makes a waiting pipeline transition immediately, as if its timer
// had expired. Requests made while it is busy are coalesced.
func (p *MonitorPipeline) Advance() {
	select {
	case p.advance <- struct{}{}:
	default:
	}
}

func (p *MonitorPipeline) Status() PipelineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *MonitorPipeline) updateStatus(fn func(s *PipelineStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.status)
}

// Run rotates the wallpaper until ctx is cancelled, which is not an error.
// Any other failure stops the pipeline and is returned.
func (p *MonitorPipeline) Run(ctx context.Context) error {
	defer p.updateStatus(func(s *PipelineStatus) { s.Finished = true })

	err := p.run(ctx)
	if errors.Is(err, ErrCancelled) {
		log.Debugf("Monitor %d stopped", p.spec.Index)
		return nil
	}
	if err != nil {
		return fmt.Errorf("Monitor %d: %w", p.spec.Index, err)
	}
	return nil
}

// RunOnce generates and installs a single collage without arming any timer.
// The file is left in place since the desktop still references it.
func (p *MonitorPipeline) RunOnce(ctx context.Context) (string, error) {
	defer p.updateStatus(func(s *PipelineStatus) { s.Finished = true })

	err := p.shared.WorkDir.PurgeMonitor(p.spec.Index, "")
	if err != nil {
		return "", fmt.Errorf("Monitor %d: %w", p.spec.Index, err)
	}

	out, err := p.generate(ctx)
	if err == nil {
		err = p.activate(out)
	}
	if err != nil {
		return "", fmt.Errorf("Monitor %d: %w", p.spec.Index, err)
	}
	return out, nil
}

func (p *MonitorPipeline) run(ctx context.Context) error {
	idx := p.spec.Index

	// Leftovers from an earlier run
	if err := p.shared.WorkDir.PurgeMonitor(idx, ""); err != nil {
		return err
	}

	current, err := p.generate(ctx)
	if err != nil {
		return err
	}
	if err = p.activate(current); err != nil {
		return err
	}

	next, err := p.generate(ctx)
	if err != nil {
		return err
	}

	for {
		if err = p.wait(ctx); err != nil {
			return err
		}

		if err = p.activate(next); err != nil {
			return err
		}
		if err = p.shared.WorkDir.PurgeMonitor(idx, next); err != nil {
			return err
		}

		next, err = p.generate(ctx)
		if err != nil {
			return err
		}
	}
}

func (p *MonitorPipeline) activate(path string) error {
	log.Debugf("Setting wallpaper for monitor %d: %s", p.spec.Index, path)
	if err := p.shared.Backend.SetWallpaper(p.spec.Index, path); err != nil {
		return fmt.Errorf("Error setting wallpaper [%s]: %w", path, err)
	}

	p.updateStatus(func(s *PipelineStatus) {
		s.Active = path
		s.Next = ""
	})
	return nil
}

// Blocks until the delay for this monitor expires or Advance is called. The
// delay is read now, so schedule changes only apply to later timers.
func (p *MonitorPipeline) wait(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}

	delay := p.shared.Schedule.Delay(p.spec.Index)
	c, stop := p.clock.After(delay)
	defer stop()

	p.updateStatus(func(s *PipelineStatus) {
		s.Delay = delay
		s.ArmedAt = time.Now()
	})

	select {
	case <-ctx.Done():
		return ErrCancelled
	case <-c:
	case <-p.advance:
		log.Debugf("Advancing monitor %d early", p.spec.Index)
	}
	return nil
}

// Writes a new collage for this monitor and returns its path.
func (p *MonitorPipeline) generate(ctx context.Context) (string, error) {
	if err := p.shared.Workers.Acquire(ctx, 1); err != nil {
		return "", ErrCancelled
	}
	defer p.shared.Workers.Release(1)

	idx := p.spec.Index
	w, h, err := p.shared.Backend.Resolution(idx)
	if err != nil {
		return "", fmt.Errorf("Error querying resolution: %w", err)
	}
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("Invalid resolution %dx%d", w, h)
	}

	p.shared.Rand.ShuffleStrings(p.order)

	img, err := p.shared.Composer.Compose(w, h, p.order)
	if err != nil {
		return "", err
	}

	out, err := p.shared.WorkDir.NextFile(idx, p.shared.Output.Type.Extension())
	if err != nil {
		return "", err
	}

	if err = EncodeImage(img, out, p.shared.Output); err != nil {
		return "", err
	}

	log.Debugf("Generated %dx%d collage for monitor %d: %s", w, h, idx, out)
	p.updateStatus(func(s *PipelineStatus) {
		s.Next = out
		s.Generations++
	})
	return out, nil
}
