// Package sessions hosts pipeline sessions for the HTTP API.
// A session retains its selected document, the recipient typed so far,
// its sent count, and the latest run state; it serializes runs and
// dispatches and streams every state transition to subscribers.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/brief/internal/pipeline"
)

const subscriberBuffer = 100

// Info is a point-in-time view of a session.
type Info struct {
	ID         uuid.UUID              `json:"id"`
	Document   *pipeline.DocumentInfo `json:"document,omitempty"`
	PageCount  *int                   `json:"page_count,omitempty"`
	StorageKey string                 `json:"storage_key,omitempty"`
	Recipient  string                 `json:"recipient"`
	SentCount  int                    `json:"sent_count"`
	State      pipeline.State         `json:"state"`
	CreatedAt  time.Time              `json:"created_at"`
}

// UploadCommand carries a document selected for a session.
// An empty or generic ContentType is replaced by the sniffed type.
type UploadCommand struct {
	Filename    string
	ContentType string
	Data        []byte
}

// entry pairs a pipeline session with its lock and subscribers.
// run is held for the duration of any operation that mutates the session;
// mu guards the published view and the subscriber set.
type entry struct {
	run     sync.Mutex
	session *pipeline.Session

	mu          sync.RWMutex
	info        Info
	subscribers map[chan pipeline.State]struct{}
}

func newEntry(id uuid.UUID) *entry {
	sess := pipeline.NewSession()
	return &entry{
		session: sess,
		info: Info{
			ID:        id,
			State:     sess.State,
			CreatedAt: time.Now().UTC(),
		},
		subscribers: make(map[chan pipeline.State]struct{}),
	}
}

func (e *entry) snapshot() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.info
}

// sync copies the session into the published view. Callers hold e.run.
func (e *entry) sync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.info.Recipient = e.session.Recipient
	e.info.SentCount = e.session.SentCount
	e.info.State = e.session.State
}

// publish records s as the latest state and notifies subscribers without blocking.
// A subscriber whose buffer is full misses s. Callers hold e.run.
func (e *entry) publish(s pipeline.State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.info.Recipient = e.session.Recipient
	e.info.SentCount = e.session.SentCount
	e.info.State = s

	for ch := range e.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

func (e *entry) subscribe() (<-chan pipeline.State, func()) {
	ch := make(chan pipeline.State, subscriberBuffer)

	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cleanup := func() {
		e.mu.Lock()
		delete(e.subscribers, ch)
		e.mu.Unlock()
	}

	return ch, cleanup
}

// close ends every subscription.
func (e *entry) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subscribers {
		close(ch)
	}
	e.subscribers = make(map[chan pipeline.State]struct{})
}
