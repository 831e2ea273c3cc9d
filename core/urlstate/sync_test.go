package urlstate

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/selection"
)

type recordingReplacer struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingReplacer) Replace(url string) {
	r.mu.Lock()
	r.urls = append(r.urls, url)
	r.mu.Unlock()
}

func (r *recordingReplacer) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDebouncerSupersedesPendingTask(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var first, second atomic.Int32
	d.Schedule(func() { first.Add(1) })
	d.Schedule(func() { second.Add(1) })
	waitFor(t, func() bool { return second.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatalf("superseded task fired")
	}
	if d.Pending() {
		t.Fatalf("nothing should be pending")
	}
}

func TestDebouncerFlushCancelStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	if !d.Flush() || runs.Load() != 1 {
		t.Fatalf("flush must run the pending task")
	}
	if d.Flush() {
		t.Fatalf("second flush must be a no-op")
	}
	d.Schedule(func() { runs.Add(1) })
	if !d.Cancel() || d.Pending() {
		t.Fatalf("cancel must drop the pending task")
	}
	d.Stop()
	d.Schedule(func() { runs.Add(1) })
	if d.Pending() || runs.Load() != 1 {
		t.Fatalf("stopped debouncer must refuse tasks")
	}
	if NewDebouncer(0).Delay() != DefaultDebounce {
		t.Fatalf("expected default delay")
	}
}

func TestSynchronizerDebouncesYearRangeOnly(t *testing.T) {
	codec, _ := testCodec(t, "primary-energy")
	rec := &recordingReplacer{}
	s := NewSynchronizer(codec, rec, NewDebouncer(40*time.Millisecond))
	base := selection.Default(codec.Profile())
	r := selection.NewReducer(codec.Profile(), nil)

	prev := base
	for _, year := range []int{2000, 2001, 2002, 2003} {
		next := r.Reduce(prev, selection.ChangeYearRange{Min: 1990, Max: year})
		s.Sync("/energy", prev, next)
		prev = next
	}
	if len(rec.snapshot()) != 0 {
		t.Fatalf("year range writes must be debounced")
	}
	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })
	time.Sleep(80 * time.Millisecond)
	urls := rec.snapshot()
	if len(urls) != 1 || !strings.Contains(urls[0], "end=2003") {
		t.Fatalf("expected a single write with the latest year, got %v", urls)
	}
}

func TestSynchronizerOtherChangesReplaceImmediately(t *testing.T) {
	codec, _ := testCodec(t, "primary-energy")
	rec := &recordingReplacer{}
	s := NewSynchronizer(codec, rec, NewDebouncer(time.Hour))
	r := selection.NewReducer(codec.Profile(), nil)
	base := selection.Default(codec.Profile())

	dragged := r.Reduce(base, selection.ChangeYearRange{Min: 1990, Max: 2005})
	s.Sync("/energy", base, dragged)
	pie := r.Reduce(dragged, selection.ChangeChartType{ChartType: "pie"})
	target := s.Sync("/energy", dragged, pie)

	urls := rec.snapshot()
	if len(urls) != 1 || urls[0] != target {
		t.Fatalf("expected immediate replace, got %v", urls)
	}
	if !strings.Contains(target, "chart-type=pie") || !strings.Contains(target, "end=2005") {
		t.Fatalf("write must carry the latest state: %s", target)
	}
	if s.Flush() {
		t.Fatalf("pending year write must have been cancelled")
	}
	s.Sync("/energy", pie, pie)
	if len(rec.snapshot()) != 1 {
		t.Fatalf("unchanged state must not write")
	}
}

func TestHistoryKeepsOneEntryPerSession(t *testing.T) {
	codec, _ := testCodec(t, "primary-energy")
	h := NewHistory(8, time.Minute, time.Hour)
	r := selection.NewReducer(codec.Profile(), nil)
	base := selection.Default(codec.Profile())

	syncer := h.Synchronizer("abc", codec)
	if h.Synchronizer("abc", codec) != syncer {
		t.Fatalf("expected the same synchronizer for a session")
	}
	next := r.Reduce(base, selection.ChangeDimension{Dimension: "total"})
	syncer.Sync("/energy", base, next)
	entry, ok := h.Get("abc")
	if !ok || entry.Dataset != "primary-energy" || !strings.Contains(entry.URL, "dimension=total") {
		t.Fatalf("unexpected entry %+v", entry)
	}

	dragged := r.Reduce(next, selection.ChangeYearRange{Min: 1980, Max: 1999})
	syncer.Sync("/energy", next, dragged)
	entry, _ = h.Get("abc")
	if !entry.Pending || strings.Contains(entry.URL, "end=1999") {
		t.Fatalf("expected pending debounced write, got %+v", entry)
	}
	h.Flush()
	entry, _ = h.Get("abc")
	if entry.Pending || !strings.Contains(entry.URL, "end=1999") {
		t.Fatalf("expected flushed write, got %+v", entry)
	}
	if h.Writes() != 2 {
		t.Fatalf("expected two writes, got %d", h.Writes())
	}
	if _, ok := h.Get("missing"); ok {
		t.Fatalf("unexpected session")
	}
	h.Purge()
	if h.Len() != 0 {
		t.Fatalf("expected empty history")
	}
}
