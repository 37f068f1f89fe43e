package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record is implemented by the entity pointer types a Collection manages.
// The store owns record identity and timestamps; Clone isolates callers
// from the store's internal copies.
type Record[R any] interface {
	RecordID() uuid.UUID
	SetRecordID(uuid.UUID)
	Stamp(now time.Time)
	Touch(now time.Time)
	Updated() time.Time
	Clone() R
	Validate() error
}

// Snapshotter persists one JSON document per collection. Implementations
// live in the storage package; tests use an in-memory one.
type Snapshotter interface {
	Save(collection string, doc []byte) error
	Load(collection string) ([]byte, error)
}

// Selector is a predicate over records. Queries match by id equality in
// practice but any predicate is accepted.
type Selector[R any] func(R) bool

// ByID selects the record with the given id
func ByID[R Record[R]](id uuid.UUID) Selector[R] {
	return func(r R) bool { return r.RecordID() == id }
}

// All selects every record
func All[R any]() Selector[R] {
	return func(R) bool { return true }
}

// Op names the kind of mutation a change event describes
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Event describes a successful mutation delivered to subscribers
type Event struct {
	Collection string
	Op         Op
	Count      int
}

// Subscriber receives change events synchronously after each successful
// mutation. A subscriber that re-enters a mutation on the same collection
// must guard against unbounded recursion itself.
type Subscriber func(Event)

// FindOptions controls ordering and pagination of Find results
type FindOptions[R any] struct {
	// Less orders results when non-nil. The sort is stable with respect
	// to insertion order.
	Less   func(a, b R) bool
	Offset int
	// Limit caps the result count when positive
	Limit int
}

type subscription struct {
	id int
	fn Subscriber
}

// Collection is the single source of truth for one record type. Every
// successful mutation persists the full collection snapshot before
// notifying subscribers, so a consumer reacting to a notification always
// observes durable state (persistence failures excepted, see
// PersistenceError).
type Collection[R Record[R]] struct {
	name string
	snap Snapshotter
	log  *zap.Logger
	now  func() time.Time

	mu      sync.Mutex
	recs    []R
	index   map[uuid.UUID]int
	subs    []subscription
	nextSub int
}

// CollectionOption configures a Collection
type CollectionOption[R Record[R]] func(*Collection[R])

// WithClock overrides the time source, for tests
func WithClock[R Record[R]](now func() time.Time) CollectionOption[R] {
	return func(c *Collection[R]) { c.now = now }
}

// WithLogger attaches a logger for persistence warnings
func WithLogger[R Record[R]](log *zap.Logger) CollectionOption[R] {
	return func(c *Collection[R]) { c.log = log }
}

// NewCollection loads the named collection from its snapshot. A missing
// snapshot yields an empty collection; a snapshot that fails to decode
// rejects the whole load with an IntegrityError.
func NewCollection[R Record[R]](name string, snap Snapshotter, opts ...CollectionOption[R]) (*Collection[R], error) {
	c := &Collection[R]{
		name:  name,
		snap:  snap,
		log:   zap.NewNop(),
		now:   time.Now,
		recs:  []R{},
		index: make(map[uuid.UUID]int),
	}
	for _, opt := range opts {
		opt(c)
	}

	doc, err := snap.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %q: %w", name, err)
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &c.recs); err != nil {
			return nil, &IntegrityError{Collection: name, Err: err}
		}
	}
	for i, r := range c.recs {
		c.index[r.RecordID()] = i
	}
	return c, nil
}

// Name returns the collection name used as its persistence key
func (c *Collection[R]) Name() string { return c.name }

// Now returns the collection's current time, honoring any test clock
func (c *Collection[R]) Now() time.Time { return c.now() }

// Len returns the number of records
func (c *Collection[R]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recs)
}

// Insert validates the record, assigns an id if absent, stamps both
// timestamps and appends it. Returns the assigned id. The stored copy is
// isolated from the caller's value.
func (c *Collection[R]) Insert(rec R) (uuid.UUID, error) {
	if err := rec.Validate(); err != nil {
		return uuid.Nil, &ValidationError{Reason: err.Error()}
	}

	c.mu.Lock()
	id := rec.RecordID()
	if id == uuid.Nil {
		id = uuid.New()
	} else if _, exists := c.index[id]; exists {
		c.mu.Unlock()
		return uuid.Nil, &ValidationError{Reason: fmt.Sprintf("duplicate id: %s", id)}
	}

	stored := rec.Clone()
	stored.SetRecordID(id)
	stored.Stamp(c.now())
	c.recs = append(c.recs, stored)
	c.index[id] = len(c.recs) - 1
	perr := c.persistLocked()
	c.mu.Unlock()

	c.notify(Event{Collection: c.name, Op: OpInsert, Count: 1})
	return id, perr
}

// UpdateOne applies patch to the first record matching sel, refreshing
// its update timestamp. Returns the number of records changed (0 or 1);
// no match is a no-op, not an error, and does not notify.
func (c *Collection[R]) UpdateOne(sel Selector[R], patch func(R)) (int, error) {
	return c.update(sel, patch, true)
}

// UpdateMany applies patch to every matching record. If any patched
// record fails validation, no record is changed.
func (c *Collection[R]) UpdateMany(sel Selector[R], patch func(R)) (int, error) {
	return c.update(sel, patch, false)
}

func (c *Collection[R]) update(sel Selector[R], patch func(R), single bool) (int, error) {
	c.mu.Lock()

	type change struct {
		idx  int
		next R
	}
	var changes []change
	for i, r := range c.recs {
		if !sel(r) {
			continue
		}
		next := r.Clone()
		patch(next)
		if err := next.Validate(); err != nil {
			c.mu.Unlock()
			return 0, &ValidationError{Reason: err.Error()}
		}
		// updatedAt strictly increases even within one clock tick
		now := c.now()
		if !now.After(r.Updated()) {
			now = r.Updated().Add(time.Nanosecond)
		}
		next.Touch(now)
		changes = append(changes, change{idx: i, next: next})
		if single {
			break
		}
	}

	if len(changes) == 0 {
		c.mu.Unlock()
		return 0, nil
	}
	for _, ch := range changes {
		c.recs[ch.idx] = ch.next
	}
	perr := c.persistLocked()
	c.mu.Unlock()

	c.notify(Event{Collection: c.name, Op: OpUpdate, Count: len(changes)})
	return len(changes), perr
}

// RemoveOne deletes the first record matching sel and returns the count
// removed (0 or 1)
func (c *Collection[R]) RemoveOne(sel Selector[R]) (int, error) {
	return c.remove(sel, true)
}

// RemoveMany deletes every matching record and returns the count removed
func (c *Collection[R]) RemoveMany(sel Selector[R]) (int, error) {
	return c.remove(sel, false)
}

func (c *Collection[R]) remove(sel Selector[R], single bool) (int, error) {
	c.mu.Lock()

	kept := c.recs[:0]
	removed := 0
	for _, r := range c.recs {
		if sel(r) && (!single || removed == 0) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		c.mu.Unlock()
		return 0, nil
	}
	// release references past the new end so removed records can be collected
	for i := len(kept); i < len(c.recs); i++ {
		var zero R
		c.recs[i] = zero
	}
	c.recs = kept
	c.index = make(map[uuid.UUID]int, len(c.recs))
	for i, r := range c.recs {
		c.index[r.RecordID()] = i
	}
	perr := c.persistLocked()
	c.mu.Unlock()

	c.notify(Event{Collection: c.name, Op: OpRemove, Count: removed})
	return removed, perr
}

// FindOne returns a copy of the first record matching sel
func (c *Collection[R]) FindOne(sel Selector[R]) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.recs {
		if sel(r) {
			return r.Clone(), true
		}
	}
	var zero R
	return zero, false
}

// Get returns a copy of the record with the given id via the index
func (c *Collection[R]) Get(id uuid.UUID) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[id]; ok {
		return c.recs[i].Clone(), true
	}
	var zero R
	return zero, false
}

// Find returns copies of every record matching sel, ordered and paginated
// per opts. Results are recomputed from scratch on every call.
func (c *Collection[R]) Find(sel Selector[R], opts *FindOptions[R]) []R {
	c.mu.Lock()
	out := make([]R, 0, len(c.recs))
	for _, r := range c.recs {
		if sel(r) {
			out = append(out, r.Clone())
		}
	}
	c.mu.Unlock()

	if opts == nil {
		return out
	}
	if opts.Less != nil {
		sort.SliceStable(out, func(i, j int) bool { return opts.Less(out[i], out[j]) })
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []R{}
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

// Subscribe registers a callback invoked synchronously after every
// successful mutation, in registration order. The returned function
// removes the subscription.
func (c *Collection[R]) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Collection[R]) notify(ev Event) {
	c.mu.Lock()
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// persistLocked writes the full collection snapshot. The caller holds the
// mutex. A failed write keeps the in-memory mutation and is reported as a
// PersistenceError for the caller to surface.
func (c *Collection[R]) persistLocked() error {
	doc, err := json.Marshal(c.recs)
	if err != nil {
		c.log.Warn("snapshot_encode_failed",
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return &PersistenceError{Collection: c.name, Err: err}
	}
	if err := c.snap.Save(c.name, doc); err != nil {
		c.log.Warn("snapshot_write_failed",
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return &PersistenceError{Collection: c.name, Err: err}
	}
	return nil
}
