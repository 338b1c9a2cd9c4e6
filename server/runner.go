package server

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/o0olele/sctree-go/builder"
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/growth"
	"github.com/o0olele/sctree-go/nodebase"
	"github.com/o0olele/sctree-go/octree"
)

// Snapshot is the state published after a tick. It is never modified once
// published, so readers may hold it without locking.
type Snapshot struct {
	Seq      uint64               `json:"seq"`
	Time     time.Time            `json:"time"`
	Stats    growth.Stats         `json:"stats"`
	Region   geometry.BoundingBox `json:"region"`
	Mesh     *builder.MeshData    `json:"-"`
	Debug    *Debug               `json:"-"`
	Octree   *octree.OctreeExport `json:"-"`
	Finished bool                 `json:"finished"`
}

// Debug carries the diagnostic collections a viewer draws as gizmos.
type Debug struct {
	Nodes      []nodebase.Node    `json:"nodes"`
	Attractors []growth.Attractor `json:"attractors"`
	Active     []growth.Attractor `json:"active"`
	Segments   []geometry.Capsule `json:"segments"`
}

// Runner owns a Grower and drives it from a single goroutine. Handlers talk
// to it through queued requests and published snapshots.
type Runner struct {
	log *logrus.Entry

	// tickMu serializes every call into grower.
	tickMu sync.Mutex
	grower *growth.Grower

	mu            sync.Mutex
	snapshot      *Snapshot
	pendingRegion *geometry.BoundingBox
	pendingParams *growth.Params
	subscribers   map[chan *Snapshot]struct{}
}

// NewRunner creates a runner with a fresh grower.
func NewRunner(params growth.Params, log *logrus.Entry) (*Runner, error) {
	if log == nil {
		log = logrus.StandardLogger().WithField("component", "runner")
	}
	r := &Runner{
		log:         log,
		subscribers: make(map[chan *Snapshot]struct{}),
	}
	g, err := growth.New(params, growth.WithLogger(log.WithField("component", "growth")))
	if err != nil {
		return nil, err
	}
	r.grower = g
	r.publish(0)
	return r, nil
}

// Run ticks the grower fps times per second until ctx is done. Each tick
// advances simulated time by one frame.
func (r *Runner) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		return errors.Errorf("fps %d must be positive", fps)
	}
	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	r.log.WithField("fps", fps).Info("runner started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Tick(frame.Seconds()); err != nil {
				return err
			}
		}
	}
}

// Tick applies queued requests, advances the grower by dt seconds and
// publishes the result.
func (r *Runner) Tick(dt float64) (*Snapshot, error) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	r.mu.Lock()
	params, region := r.pendingParams, r.pendingRegion
	r.pendingParams, r.pendingRegion = nil, nil
	seq := r.snapshot.Seq
	r.mu.Unlock()

	if params != nil {
		g, err := growth.New(*params, growth.WithLogger(r.log.WithField("component", "growth")))
		if err != nil {
			return nil, err
		}
		r.grower = g
	}
	if region != nil {
		if err := r.grower.SetRegion(*region); err != nil {
			return nil, err
		}
	}

	if r.grower.State().Terminal() && params == nil && region == nil {
		return r.Snapshot(), nil
	}
	if _, err := r.grower.Tick(dt); err != nil {
		return nil, err
	}
	return r.publish(seq + 1), nil
}

// publish copies the grower state into a new snapshot. Callers hold tickMu
// or own the runner exclusively.
func (r *Runner) publish(seq uint64) *Snapshot {
	g := r.grower
	snap := &Snapshot{
		Seq:    seq,
		Time:   time.Now(),
		Stats:  g.Stats(),
		Region: g.Region(),
		Mesh:   g.Mesh(),
		Debug: &Debug{
			Nodes:      g.Nodes(),
			Attractors: g.Attractors(),
			Active:     g.ActiveAttractors(),
			Segments:   g.Segments(),
		},
		Octree:   g.NodeOctree(),
		Finished: g.State().Terminal(),
	}

	r.mu.Lock()
	r.snapshot = snap
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale frame for slow readers
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	r.mu.Unlock()

	if snap.Finished {
		r.log.WithField("stats", snap.Stats).Debug("published final snapshot")
	}
	return snap
}

// Snapshot returns the latest published snapshot.
func (r *Runner) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// SetRegion queues a region change for the next tick.
func (r *Runner) SetRegion(box geometry.BoundingBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.pendingRegion = &box
	r.mu.Unlock()
	return nil
}

// Reset queues a restart with new parameters for the next tick.
func (r *Runner) Reset(params growth.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.pendingParams = &params
	r.pendingRegion = nil
	r.mu.Unlock()
	return nil
}

// Subscribe returns a channel receiving every published snapshot, newest
// wins when the reader falls behind. Call the returned func to stop.
func (r *Runner) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)
	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	ch <- r.snapshot
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(r.subscribers, ch)
		r.mu.Unlock()
	}
}
