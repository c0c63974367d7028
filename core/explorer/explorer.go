// Package explorer serves queries against one loaded collision dataset. It is
// the caller that composes the query interpreter with the filter evaluator:
// free text is interpreted, merged with explicitly supplied criteria and the
// result is evaluated. Every query is reported on an event bus.
package explorer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-collisions/core/criteria"
	"github.com/asaidimu/go-collisions/core/dataset"
	"github.com/asaidimu/go-collisions/core/filter"
	"github.com/asaidimu/go-collisions/core/interpreter"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request describes one query. Text is optional free-form search text; when
// empty, the search criterion is interpreted instead.
type Request struct {
	Criteria criteria.Criteria
	Text     string
	Limit    int // Maximum rows returned; zero or negative means all.
}

// Result is the outcome of a query.
type Result struct {
	ID       string
	Criteria criteria.Criteria // Effective criteria after merging.
	Total    int               // Matching rows before Limit is applied.
	Records  []dataset.Record
}

// Explorer answers queries over a read-only dataset and is safe for
// concurrent use.
type Explorer struct {
	ds        *dataset.Dataset
	evaluator *filter.Evaluator
	logger    *zap.Logger

	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*subscription
	subMu         sync.RWMutex
}

// New creates an Explorer over ds.
func New(ds *dataset.Dataset, logger *zap.Logger) (*Explorer, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &Explorer{
		ds:            ds,
		evaluator:     filter.NewEvaluator(logger),
		logger:        logger,
		bus:           bus,
		subscriptions: make(map[string]*subscription),
	}, nil
}

// Dataset returns the dataset queries run against.
func (x *Explorer) Dataset() *dataset.Dataset {
	return x.ds
}

// Options returns the selectable values for each criterion.
func (x *Explorer) Options() filter.FilterOptions {
	return filter.Options(x.ds)
}

// Resolve computes the effective criteria of a request. Text is interpreted
// and the extracted keys fill whatever the explicit criteria leave unset.
// Text from which nothing could be extracted is kept as a substring search.
func Resolve(req Request) criteria.Criteria {
	explicit := req.Criteria.Clone()
	text := req.Text
	if text == "" {
		text, _ = explicit.Search()
		delete(explicit, criteria.KeySearch)
	}
	if text == "" {
		return explicit
	}

	parsed := interpreter.Parse(text)
	if parsed.IsEmpty() {
		if !explicit.Active(criteria.KeySearch) {
			explicit[criteria.KeySearch] = text
		}
		return explicit
	}
	return criteria.Merge(explicit, parsed)
}

// Query resolves and evaluates req.
func (x *Explorer) Query(ctx context.Context, req Request) (*Result, error) {
	id := uuid.New().String()
	started := time.Now()
	effective := Resolve(req)

	x.emit(newEvent(QueryStart, id, req.Text, effective.Map(), started))

	if err := ctx.Err(); err != nil {
		x.fail(id, req.Text, effective, started, err)
		return nil, err
	}

	out, err := x.evaluator.Evaluate(x.ds, effective)
	if err != nil {
		x.fail(id, req.Text, effective, started, err)
		return nil, fmt.Errorf("query %s: %w", id, err)
	}

	records := out.Records()
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	total := out.Len()
	event := newEvent(QuerySuccess, id, req.Text, effective.Map(), started)
	event.Count = &total
	x.emit(event)

	x.logger.Info("Query evaluated",
		zap.String("query_id", id),
		zap.Any("criteria", effective.Map()),
		zap.Int("matched", total),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &Result{
		ID:       id,
		Criteria: effective,
		Total:    total,
		Records:  records,
	}, nil
}

func (x *Explorer) fail(id, text string, c criteria.Criteria, started time.Time, err error) {
	msg := err.Error()
	event := newEvent(QueryFailed, id, text, c.Map(), started)
	event.Error = &msg
	x.emit(event)
	x.logger.Warn("Query failed", zap.String("query_id", id), zap.Error(err))
}

func (x *Explorer) emit(event Event) {
	if x.bus != nil {
		x.bus.Emit(string(event.Type), event)
	}
}

// Subscribe registers a callback for a query lifecycle event and returns an
// identifier for Unsubscribe.
func (x *Explorer) Subscribe(event EventType, callback EventCallback) string {
	x.subMu.Lock()
	defer x.subMu.Unlock()

	unsubscribe := x.bus.Subscribe(string(event), callback)
	id := uuid.New().String()
	x.subscriptions[id] = &subscription{event: event, unsubscribe: unsubscribe}
	return id
}

// Unsubscribe removes a subscription by its ID.
func (x *Explorer) Unsubscribe(id string) {
	x.subMu.Lock()
	defer x.subMu.Unlock()

	if sub, ok := x.subscriptions[id]; ok {
		sub.unsubscribe()
		delete(x.subscriptions, id)
	}
}
