package urlstate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// History keeps the replaced url of every live session. Each session owns
// one history entry that is overwritten on every write.
type History struct {
	delay time.Duration

	mu       sync.Mutex
	sessions *expirable.LRU[string, *session]
	writes   atomic.Uint64
}

type session struct {
	sync *Synchronizer

	mu      sync.Mutex
	url     string
	dataset string
	updated time.Time
}

// Entry is the current history entry of a session.
type Entry struct {
	URL     string    `json:"url"`
	Dataset string    `json:"dataset"`
	Updated time.Time `json:"updated"`
	Pending bool      `json:"pending"`
}

func NewHistory(size int, ttl, delay time.Duration) *History {
	if size <= 0 {
		size = 4096
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	h := &History{delay: delay}
	h.sessions = expirable.NewLRU[string, *session](size, func(_ string, s *session) {
		s.sync.Stop()
	}, ttl)
	return h
}

// Synchronizer returns the synchronizer of session id, creating the session
// on first use or when it switches dataset.
func (h *History) Synchronizer(id string, codec *Codec) *Synchronizer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.sessions.Get(id); ok {
		if old.sync.codec == codec {
			return old.sync
		}
		old.sync.Stop()
	}
	s := &session{dataset: codec.Profile().Slug}
	replacer := ReplacerFunc(func(url string) {
		s.mu.Lock()
		s.url = url
		s.updated = time.Now().UTC()
		s.mu.Unlock()
		h.writes.Add(1)
	})
	s.sync = NewSynchronizer(codec, replacer, NewDebouncer(h.delay))
	h.sessions.Add(id, s)
	return s.sync
}

func (h *History) Get(id string) (Entry, bool) {
	s, ok := h.sessions.Get(id)
	if !ok {
		return Entry{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url == "" {
		return Entry{}, false
	}
	return Entry{URL: s.url, Dataset: s.dataset, Updated: s.updated, Pending: s.sync.debouncer.Pending()}, true
}

// Flush applies every pending write now.
func (h *History) Flush() {
	for _, s := range h.sessions.Values() {
		s.sync.Flush()
	}
}

func (h *History) Len() int {
	return h.sessions.Len()
}

func (h *History) Writes() uint64 {
	return h.writes.Load()
}

func (h *History) Purge() {
	h.sessions.Purge()
}
