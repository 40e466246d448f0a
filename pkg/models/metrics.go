// Package models defines the core data structures used throughout Nivesh.
package models

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindNumber marks a numeric metric value.
	KindNumber ValueKind = iota
	// KindText marks a free-text metric value (sector names, analyst ratings).
	KindText
)

// Value is a metric value: either a number or a text string.
// A metric that is unknown is simply absent from Metrics — there is no
// "unknown" Value.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Number wraps a float64 into a numeric Value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Text wraps a string into a text Value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// IsNumber reports whether the value holds a number.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// String renders the value for prompt serialization.
func (v Value) String() string {
	if v.Kind == KindText {
		return v.Text
	}
	return trimFloat(v.Num)
}

// Metrics is an insertion-ordered mapping from canonical metric names
// to values. Absence of a key means the metric is unknown for this
// request; it is never stored as zero.
//
// A Metrics is built wholly from a single provider's response — fields
// from two providers are never merged for the same request.
type Metrics struct {
	keys []string
	vals map[string]Value
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{vals: make(map[string]Value)}
}

// Set stores a value under the canonical name, preserving first-insertion
// order. Setting an existing key updates the value in place.
func (m *Metrics) Set(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// SetNumber is shorthand for Set(key, Number(n)).
func (m *Metrics) SetNumber(key string, n float64) { m.Set(key, Number(n)) }

// SetText is shorthand for Set(key, Text(s)).
func (m *Metrics) SetText(key string, s string) { m.Set(key, Text(s)) }

// Get returns the value for a canonical name.
func (m *Metrics) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Delete removes a key, preserving the order of the remaining keys.
func (m *Metrics) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the canonical names in insertion order.
func (m *Metrics) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of metrics present.
func (m *Metrics) Len() int { return len(m.keys) }

// IsEmpty reports whether no metrics are present.
func (m *Metrics) IsEmpty() bool { return m == nil || len(m.keys) == 0 }
