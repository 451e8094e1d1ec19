// Package resultslot holds the continuations of operations whose terminal
// event has not arrived yet.
package resultslot

import (
	"errors"
	"sync"
	"time"

	boom "github.com/tylertreat/BoomFilters"

	"paidpiper.com/nonce-gateway/log"
	"paidpiper.com/nonce-gateway/models"
)

type Mode int

const (
	// ModeCorrelated keys pending operations by request id.
	ModeCorrelated Mode = iota
	// ModeSingle keeps one slot shared by every listener-driven operation.
	// Opening a new one drops the pending one without invoking its
	// continuations, and every listener event is delivered to whatever
	// occupies the slot. Dedicated entries stay keyed by id.
	ModeSingle
)

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "correlated"
}

// ErrNoPending is reported when a terminal event finds no continuation.
var ErrNoPending = errors.New("no pending operation")

const TimedOut = "operation timed out"

type Pending struct {
	ID        string
	Operation string
	Success   func(value interface{})
	Failure   func(err *models.CanonicalError)
	// Dedicated marks an operation answered through its own per-call
	// callback. It is matched by id in every mode and never occupies or
	// displaces the shared slot.
	Dedicated bool

	timer *time.Timer
}

type Options struct {
	Mode Mode
	// Timeout rejects pending operations that see no terminal event in time.
	// Zero or less never expires them.
	Timeout time.Duration
	// RecentCapacity sizes the filter remembering resolved ids.
	RecentCapacity uint
}

type Store struct {
	mutex    *sync.Mutex
	mode     Mode
	timeout  time.Duration
	pending  map[string]*Pending
	order    []string
	resolved *boom.StableBloomFilter
}

func NewStore(opts Options) *Store {
	capacity := opts.RecentCapacity
	if capacity == 0 {
		capacity = 4096
	}
	return &Store{
		mutex:    &sync.Mutex{},
		mode:     opts.Mode,
		timeout:  opts.Timeout,
		pending:  make(map[string]*Pending),
		resolved: boom.NewDefaultStableBloomFilter(capacity*8, 0.01),
	}
}

func (s *Store) Mode() Mode {
	return s.mode
}

// Open registers p. In single mode the previously pending operation, if any,
// is displaced and returned; its continuations will never run.
func (s *Store) Open(p Pending) *Pending {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var displaced *Pending
	if s.mode == ModeSingle && !p.Dedicated {
		if id := s.slot(); id != "" {
			displaced = s.pending[id]
			s.remove(id)
		}
		if displaced != nil {
			log.WithFields(log.Fields{
				"displaced": displaced.ID,
				"operation": displaced.Operation,
				"by":        p.ID,
			}).Warn("pending operation overwritten, its caller will not be notified")
		}
	}

	entry := p
	if s.timeout > 0 {
		id := p.ID
		entry.timer = time.AfterFunc(s.timeout, func() {
			s.expire(id)
		})
	}
	s.pending[p.ID] = &entry
	s.order = append(s.order, p.ID)

	return displaced
}

// Take removes and returns the continuation for id. An empty id selects the
// most recently opened operation; in single mode any id other than a
// dedicated entry's selects the shared slot.
func (s *Store) Take(id string) (*Pending, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := id
	if p, ok := s.pending[id]; ok && p.Dedicated {
		key = id
	} else if s.mode == ModeSingle {
		key = s.slot()
	} else if key == "" && len(s.order) > 0 {
		key = s.order[len(s.order)-1]
	}
	if key == "" {
		return nil, s.missing(id)
	}

	p, ok := s.pending[key]
	if !ok {
		return nil, s.missing(id)
	}
	s.remove(key)
	s.resolved.Add([]byte(key))

	return p, nil
}

// Resolve takes the continuation for id and runs its success branch.
func (s *Store) Resolve(id string, value interface{}) error {
	p, err := s.Take(id)
	if err != nil {
		return err
	}
	if p.Success != nil {
		p.Success(value)
	}
	return nil
}

// Reject takes the continuation for id and runs its failure branch.
func (s *Store) Reject(id string, cause *models.CanonicalError) error {
	p, err := s.Take(id)
	if err != nil {
		return err
	}
	if p.Failure != nil {
		p.Failure(cause)
	}
	return nil
}

// Len reports the number of occupied slots.
func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.pending)
}

// Pending lists the ids still waiting, oldest first.
func (s *Store) Pending() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.order...)
}

// Expire rejects the entry opened under exactly id with TimedOut. It reports
// false when no such entry is pending; the shared slot is never matched.
func (s *Store) Expire(id string) bool {
	return s.expire(id)
}

func (s *Store) expire(id string) bool {
	s.mutex.Lock()
	p, ok := s.pending[id]
	if ok {
		s.remove(id)
		s.resolved.Add([]byte(id))
	}
	s.mutex.Unlock()

	if !ok {
		return false
	}
	log.WithFields(log.Fields{"request": id, "operation": p.Operation}).Warn("pending operation timed out")
	if p.Failure != nil {
		p.Failure(models.OpaqueMessage(TimedOut))
	}
	return true
}

// slot returns the id occupying the shared slot, or "" when it is empty.
// It must be called with the mutex held.
func (s *Store) slot() string {
	for i := len(s.order) - 1; i >= 0; i-- {
		if !s.pending[s.order[i]].Dedicated {
			return s.order[i]
		}
	}
	return ""
}

// remove must be called with the mutex held.
func (s *Store) remove(id string) {
	if p, ok := s.pending[id]; ok && p.timer != nil {
		p.timer.Stop()
	}
	delete(s.pending, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// missing must be called with the mutex held.
func (s *Store) missing(id string) error {
	if id != "" && s.resolved.Test([]byte(id)) {
		log.WithFields(log.Fields{"request": id}).Warn("duplicate terminal event ignored")
	} else {
		log.WithFields(log.Fields{"request": id}).Warn("terminal event without a pending operation")
	}
	return ErrNoPending
}
