// Package loadtest drives simulated users against a running notepad server.
package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Host     string
	Users    int
	Duration time.Duration
	WaitMin  time.Duration
	WaitMax  time.Duration

	// Email and Password are the seeded account used by notepad users.
	Email    string
	Password string

	RequestTimeout time.Duration
}

func (o Options) validate() error {
	switch {
	case o.Host == "":
		return errors.New("host is required")
	case o.Users < 1:
		return errors.New("users must be at least 1")
	case o.Duration <= 0:
		return errors.New("duration must be positive")
	case o.WaitMin < 0 || o.WaitMax < o.WaitMin:
		return errors.New("wait range is invalid")
	case o.Email == "" || o.Password == "":
		return errors.New("email and password are required")
	}
	return nil
}

// TaskStats counts the outcomes of one task.
type TaskStats struct {
	Task     string
	Requests int64
	Failures int64
}

type Summary struct {
	Tasks []TaskStats
}

func (s Summary) Totals() (requests, failures int64) {
	for _, t := range s.Tasks {
		requests += t.Requests
		failures += t.Failures
	}
	return requests, failures
}

type Runner struct {
	opts Options
	log  *zap.Logger

	mu    sync.Mutex
	stats map[string]*TaskStats
}

func NewRunner(opts Options, log *zap.Logger) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Runner{opts: opts, log: log, stats: map[string]*TaskStats{}}, nil
}

// Run starts Users simulated users, alternating between account churn and
// notepad browsing, and stops them after Duration or when ctx ends.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i := range r.opts.Users {
		g.Go(func() error {
			c, err := newClient(r.opts.Host, r.opts.RequestTimeout)
			if err != nil {
				return err
			}
			if i%2 == 0 {
				r.authUser(ctx, c)
			} else {
				r.notepadUser(ctx, c)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := r.summary()
	req, fail := s.Totals()
	r.log.Info("load test finished", zap.Int64("requests", req), zap.Int64("failures", fail))
	for _, t := range s.Tasks {
		r.log.Info("task", zap.String("task", t.Task), zap.Int64("requests", t.Requests), zap.Int64("failures", t.Failures))
	}
	return s, nil
}

// authUser signs up once, then cycles logout and login.
func (r *Runner) authUser(ctx context.Context, c *client) {
	email := fmt.Sprintf("load_%s@example.com", uuid.NewString()[:12])
	password := uuid.NewString()

	ok := r.record(ctx, "signup", func() error {
		p, err := c.submit(ctx, "/signup", "/signup", url.Values{
			"name":     {"Load"},
			"surname":  {"Tester"},
			"email":    {email},
			"password": {password},
		})
		if err != nil {
			return err
		}
		return expect(p, "/")
	})
	if !ok {
		return
	}

	for r.wait(ctx) {
		r.record(ctx, "logout", func() error {
			p, err := c.get(ctx, "/logout")
			if err != nil {
				return err
			}
			return expect(p, "/")
		})
		if !r.wait(ctx) {
			return
		}
		r.record(ctx, "login", func() error {
			return login(ctx, c, email, password)
		})
	}
}

type task struct {
	name   string
	weight int
	run    func(ctx context.Context, c *client) error
}

var notepadTasks = []task{
	{name: "list", weight: 3, run: func(ctx context.Context, c *client) error {
		p, err := c.get(ctx, "/notepad")
		if err != nil {
			return err
		}
		return expect(p, "/notepad")
	}},
	{name: "create", weight: 2, run: func(ctx context.Context, c *client) error {
		p, err := c.submit(ctx, "/notepad/create", "/notepad/create", url.Values{
			"title": {"Load " + uuid.NewString()[:8]},
			"body":  {"Written by the load generator."},
		})
		if err != nil {
			return err
		}
		return expect(p, "/notepad")
	}},
	{name: "view", weight: 1, run: func(ctx context.Context, c *client) error {
		p, err := c.get(ctx, fmt.Sprintf("/notepad/%d", rand.IntN(1000)+1))
		if err != nil {
			return err
		}
		// Missing ids and other users' notepads are expected.
		if p.status == 404 || p.status < 300 {
			return nil
		}
		return fmt.Errorf("%w: status %d", errUnexpectedPage, p.status)
	}},
}

// notepadUser logs into the seeded account and runs weighted tasks.
func (r *Runner) notepadUser(ctx context.Context, c *client) {
	if !r.record(ctx, "login", func() error {
		return login(ctx, c, r.opts.Email, r.opts.Password)
	}) {
		return
	}

	for r.wait(ctx) {
		t := pick(notepadTasks)
		r.record(ctx, t.name, func() error { return t.run(ctx, c) })
	}
}

func login(ctx context.Context, c *client, email, password string) error {
	p, err := c.submit(ctx, "/login", "/login", url.Values{"email": {email}, "password": {password}})
	if err != nil {
		return err
	}
	return expect(p, "/")
}

func pick(tasks []task) task {
	total := 0
	for _, t := range tasks {
		total += t.weight
	}
	n := rand.IntN(total)
	for _, t := range tasks {
		if n < t.weight {
			return t
		}
		n -= t.weight
	}
	return tasks[len(tasks)-1]
}

// wait sleeps a random think time and reports whether the run continues.
func (r *Runner) wait(ctx context.Context) bool {
	d := r.opts.WaitMin
	if span := r.opts.WaitMax - r.opts.WaitMin; span > 0 {
		d += rand.N(span)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// record runs fn and counts it under name. Calls cut short by the end of
// the run are not counted.
func (r *Runner) record(ctx context.Context, name string, fn func() error) bool {
	err := fn()
	if ctx.Err() != nil {
		return false
	}

	r.mu.Lock()
	st, ok := r.stats[name]
	if !ok {
		st = &TaskStats{Task: name}
		r.stats[name] = st
	}
	st.Requests++
	if err != nil {
		st.Failures++
	}
	r.mu.Unlock()

	if err != nil {
		r.log.Debug("task failed", zap.String("task", name), zap.Error(err))
		return false
	}
	return true
}

func (r *Runner) summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Summary{Tasks: make([]TaskStats, 0, len(r.stats))}
	for _, st := range r.stats {
		out.Tasks = append(out.Tasks, *st)
	}
	sort.Slice(out.Tasks, func(i, j int) bool { return out.Tasks[i].Task < out.Tasks[j].Task })
	return out
}
