package observability

import "sync"

// Entry is a single captured log record.
type Entry struct {
	Level   string
	Message string
	Fields  []Field
}

// Recorder is a Logger that captures entries for inspection in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty recording logger.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.append("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.append("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.append("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.append("error", msg, fields) }

func (r *Recorder) append(level, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: fields})
}

// Entries returns a snapshot of captured records.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByLevel returns the captured records matching the given level.
func (r *Recorder) ByLevel(level string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all captured records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
