package urlstate

import (
	"sync"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
)

// Replacer overwrites the current history entry with url. It never appends
// a new entry.
type Replacer interface {
	Replace(url string)
}

type ReplacerFunc func(url string)

func (f ReplacerFunc) Replace(url string) { f(url) }

// Synchronizer mirrors selection changes into a Replacer. Year range drags
// are debounced; any other change cancels the pending write and replaces
// immediately.
type Synchronizer struct {
	codec     *Codec
	replacer  Replacer
	debouncer *Debouncer

	mu     sync.Mutex
	latest string
}

func NewSynchronizer(codec *Codec, replacer Replacer, debouncer *Debouncer) *Synchronizer {
	if debouncer == nil {
		debouncer = NewDebouncer(DefaultDebounce)
	}
	return &Synchronizer{codec: codec, replacer: replacer, debouncer: debouncer}
}

// Sync records next as the latest state and schedules or performs the
// write. It returns the url that is, or will be, written.
func (s *Synchronizer) Sync(path string, prev, next selection.State) string {
	target := s.codec.URL(path, next)
	s.mu.Lock()
	s.latest = target
	s.mu.Unlock()
	if prev.Equal(next) {
		return target
	}
	if prev.OnlyYearRangeDiffers(next) {
		s.debouncer.Schedule(s.write)
		return target
	}
	s.debouncer.Cancel()
	s.write()
	return target
}

// Latest is the url of the most recent state passed to Sync.
func (s *Synchronizer) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Synchronizer) Flush() bool {
	return s.debouncer.Flush()
}

func (s *Synchronizer) Stop() {
	s.debouncer.Stop()
}

func (s *Synchronizer) write() {
	s.mu.Lock()
	target := s.latest
	s.mu.Unlock()
	if target == "" || s.replacer == nil {
		return
	}
	s.replacer.Replace(target)
}
