package sensor

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// MaxErrorLogLength caps the ErrorLog text.
const MaxErrorLogLength = 1000

// ErrorLog is a bounded text log; the oldest entries are evicted once the
// total length would exceed MaxErrorLogLength.
type ErrorLog struct {
	mu      sync.Mutex
	entries []string
	size    int
}

// Add appends an entry.
func (l *ErrorLog) Add(entry string) {
	if len(entry) > MaxErrorLogLength {
		entry = entry[len(entry)-MaxErrorLogLength:]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.size += len(entry) + 1
	for l.size-1 > MaxErrorLogLength && len(l.entries) > 1 {
		l.size -= len(l.entries[0]) + 1
		l.entries = l.entries[1:]
	}
}

// String returns the log, one entry per line.
func (l *ErrorLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.entries, "\n")
}

// Entries returns a copy of the entries, oldest first.
func (l *ErrorLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Filter substitutes invalid fields with the last valid value.
type Filter struct {
	limits map[Field]Limits
	last   Reading
	log    ErrorLog
}

// NewFilter creates a filter using DefaultLimits.
func NewFilter() *Filter {
	return &Filter{limits: DefaultLimits, last: Nominal()}
}

// Apply validates raw. Each NaN or out-of-range field is replaced with the
// last valid value for that field and noted in the error log. It returns
// the cleaned reading and the fields that were replaced.
func (f *Filter) Apply(raw Reading) (Reading, []Field) {
	out := raw
	var replaced []Field

	for _, field := range Fields {
		v := raw.Get(field)
		lim := f.limits[field]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lim.Min || v > lim.Max {
			fallback := f.last.Get(field)
			out.Set(field, fallback)
			replaced = append(replaced, field)
			f.log.Add(fmt.Sprintf("%s %s=%g rejected, using %g",
				raw.Time.Format("15:04:05"), field, v, fallback))
			continue
		}
		f.last.Set(field, v)
	}

	return out, replaced
}

// Last returns the last valid value of every field.
func (f *Filter) Last() Reading { return f.last }

// ErrorLog returns the filter's log.
func (f *Filter) ErrorLog() *ErrorLog { return &f.log }

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
