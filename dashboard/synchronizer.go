package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/honganh1206/convodash/query"
	"github.com/honganh1206/convodash/schema"
)

var (
	ErrInvalidPageSize = errors.New("dashboard: invalid page size")
	ErrInvalidField    = errors.New("dashboard: invalid date field")
	errEmptyResponse   = errors.New("dashboard: empty response")
)

// OrderPolicy decides which completed fetch cycle may update the state when
// cycles overlap.
type OrderPolicy int

const (
	// LatestIssued applies only the result of the most recently issued cycle.
	// Results of older cycles are discarded when they arrive.
	LatestIssued OrderPolicy = iota
	// LastResolved applies every result in completion order, so an older
	// request finishing last overwrites a newer one.
	LastResolved
)

func (p OrderPolicy) String() string {
	switch p {
	case LatestIssued:
		return "latest-issued"
	case LastResolved:
		return "last-resolved"
	}
	return fmt.Sprintf("OrderPolicy(%d)", int(p))
}

type Fetcher interface {
	ListConversations(ctx context.Context, params url.Values) (*schema.ConversationsResponse, error)
}

type State struct {
	Filter   query.Filter
	Response *schema.ConversationsResponse
	Loading  bool
	// Err is the failure of the last applied cycle. The previous Response is
	// kept alongside it.
	Err error
	// Issued counts fetch cycles started so far.
	Issued uint64
	// Query holds the parameters of the latest cycle; nil when building them failed.
	Query url.Values
}

// FetchResult is the outcome of one fetch cycle.
type FetchResult struct {
	Seq      uint64
	Response *schema.ConversationsResponse
	Err      error
}

type Options struct {
	Location        *time.Location
	Policy          OrderPolicy
	Logger          *slog.Logger
	InitialPageSize int
}

// Synchronizer owns the filter, response and loading state. All state is
// touched by the Run goroutine only; the exported transitions enqueue events
// for it.
type Synchronizer struct {
	fetcher    Fetcher
	loc        *time.Location
	policy     OrderPolicy
	logger     *slog.Logger
	controller *Controller

	events  chan func()
	done    chan struct{}
	startMu sync.Mutex
	started bool

	ctx   context.Context
	seq   uint64
	state State
}

func New(fetcher Fetcher, opts Options) *Synchronizer {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	filter := query.DefaultFilter()
	if schema.ValidPageSize(opts.InitialPageSize) {
		filter.PageSize = opts.InitialPageSize
	}

	return &Synchronizer{
		fetcher:    fetcher,
		loc:        loc,
		policy:     opts.Policy,
		logger:     logger,
		controller: NewController(),
		events:     make(chan func(), 64),
		done:       make(chan struct{}),
		state:      State{Filter: filter},
	}
}

func (s *Synchronizer) Subscribe() <-chan State {
	return s.controller.Subscribe()
}

// Run issues the initial fetch and processes events until ctx is done.
func (s *Synchronizer) Run(ctx context.Context) error {
	defer close(s.done)

	s.startMu.Lock()
	s.started = true
	s.startMu.Unlock()

	s.ctx = ctx
	s.issue()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			ev()
		}
	}
}

func (s *Synchronizer) enqueue(ev func()) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// Snapshot returns a copy of the current state once every previously
// enqueued transition has been applied. Before Run it returns the initial
// state without waiting.
func (s *Synchronizer) Snapshot() State {
	s.startMu.Lock()
	if !s.started {
		st := s.state
		s.startMu.Unlock()
		return st
	}
	s.startMu.Unlock()

	reply := make(chan State, 1)
	if !s.enqueue(func() { reply <- s.state }) {
		return s.state
	}

	select {
	case st := <-reply:
		return st
	case <-s.done:
		return s.state
	}
}

func (s *Synchronizer) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.enqueue(func() {
		if s.state.Filter.Page == page {
			return
		}
		s.state.Filter.Page = page
		s.issue()
	})
}

// NextPage is a no-op without a response or on the last page.
func (s *Synchronizer) NextPage() {
	s.enqueue(func() {
		resp := s.state.Response
		if resp == nil || s.state.Filter.Page >= resp.TotalPages {
			return
		}
		s.state.Filter.Page++
		s.issue()
	})
}

// PrevPage is a no-op on the first page.
func (s *Synchronizer) PrevPage() {
	s.enqueue(func() {
		if s.state.Filter.Page <= 1 {
			return
		}
		s.state.Filter.Page--
		s.issue()
	})
}

// SetPageSize changes the page size and returns to the first page.
func (s *Synchronizer) SetPageSize(size int) error {
	if !schema.ValidPageSize(size) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	s.enqueue(func() {
		f := &s.state.Filter
		if f.PageSize == size && f.Page == 1 {
			return
		}
		f.PageSize = size
		f.Page = 1
		s.issue()
	})
	return nil
}

func (s *Synchronizer) SetDateFilter(field query.DateField, value string) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidField, int(field))
	}
	s.enqueue(func() {
		if s.state.Filter.Dates[field] == value {
			return
		}
		s.state.Filter.Dates[field] = value
		s.issue()
	})
	return nil
}

// ClearFilters empties every date bound and returns to the first page as one
// transition, issuing exactly one fetch cycle.
func (s *Synchronizer) ClearFilters() {
	s.enqueue(func() {
		for _, field := range query.DateFields {
			s.state.Filter.Dates[field] = ""
		}
		s.state.Filter.Page = 1
		s.issue()
	})
}

// Refresh re-issues the current query.
func (s *Synchronizer) Refresh() {
	s.enqueue(s.issue)
}

// issue starts one fetch cycle for the current filter.
func (s *Synchronizer) issue() {
	s.seq++
	seq := s.seq
	s.state.Issued = seq

	params, err := query.Build(s.state.Filter, s.loc)
	if err != nil {
		s.logger.Error("Error building conversations query", "error", err, "seq", seq)
		s.state.Query = nil
		s.state.Err = err
		s.state.Loading = false
		s.publish()
		return
	}

	s.state.Query = params
	s.state.Loading = true
	s.publish()

	s.logger.Debug("Fetch issued", "seq", seq, "params", params.Encode())
	go s.fetch(s.ctx, seq, params)
}

func (s *Synchronizer) fetch(ctx context.Context, seq uint64, params url.Values) {
	resp, err := s.fetcher.ListConversations(ctx, params)
	if err == nil && resp == nil {
		err = errEmptyResponse
	}

	result := FetchResult{Seq: seq, Response: resp, Err: err}
	s.enqueue(func() { s.applyFetchResult(result) })
}

func (s *Synchronizer) applyFetchResult(r FetchResult) {
	if s.policy == LatestIssued && r.Seq != s.seq {
		s.logger.Debug("Discarding stale fetch result", "seq", r.Seq, "latest", s.seq)
		return
	}

	s.state.Loading = false
	if r.Err != nil {
		s.logger.Error("Error fetching conversations", "error", r.Err, "seq", r.Seq)
		s.state.Err = r.Err
	} else {
		s.state.Response = r.Response
		s.state.Err = nil
	}
	s.publish()
}

func (s *Synchronizer) publish() {
	s.controller.Publish(s.state)
}
