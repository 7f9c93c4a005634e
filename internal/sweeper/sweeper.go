// Package sweeper scans for overdue tasks and notifies their assignees.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tablerohq/tablero/internal/server/store"
)

// Sweeper periodically scans the task table and raises an overdue
// notification for each task whose due date has passed. Every task is
// notified at most once per process lifetime.
type Sweeper struct {
	store  *store.Store
	config *Config

	mu       sync.Mutex
	notified map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a sweeper over the given store.
func New(s *store.Store, cfg *Config) *Sweeper {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		store:    s,
		config:   cfg,
		notified: make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// Start begins the sweep loop.
func (sw *Sweeper) Start() {
	sw.wg.Add(1)
	go sw.loop()
	log.Println("Sweeper started")
}

// Stop gracefully stops the sweeper.
func (sw *Sweeper) Stop() {
	sw.cancel()
	sw.wg.Wait()
	log.Println("Sweeper stopped")
}

func (sw *Sweeper) loop() {
	defer sw.wg.Done()

	ticker := time.NewTicker(sw.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.ctx.Done():
			return
		case <-ticker.C:
			if err := sw.Sweep(); err != nil {
				log.Printf("Sweep error: %v", err)
			}
		}
	}
}

// Sweep runs a single scan. It pages through every task and creates a
// notification for overdue ones not yet notified.
func (sw *Sweeper) Sweep() error {
	now := sw.now()

	for page := 1; ; page++ {
		tasks, total, err := sw.store.ListTasks("", page, sw.config.PageSize)
		if err != nil {
			return err
		}

		for _, t := range tasks {
			if !t.Overdue(now) {
				continue
			}
			if t.AssignedTo == "" {
				continue
			}

			sw.mu.Lock()
			seen := sw.notified[t.ID]
			sw.notified[t.ID] = true
			sw.mu.Unlock()
			if seen {
				continue
			}

			msg := fmt.Sprintf("Task %q is overdue (due %s)", t.Title, t.EndDate.Format("2006-01-02"))
			if _, err := sw.store.CreateNotification(t.AssignedTo, msg, "overdue"); err != nil {
				log.Printf("Sweep: notify %s: %v", t.ID, err)
			}
		}

		if page*sw.config.PageSize >= total || len(tasks) == 0 {
			return nil
		}
	}
}
