package emu

import (
	"encoding/json"
	"io"
	"strconv"
)

// RegisterWrite is one entry of a per-thread-per-register change list:
// a monotonic timestamp paired with the value written, per spec.md
// §4.4.7.
type RegisterWrite struct {
	Timestamp int64
	Value     int32
}

// TraceSink receives register writes as the emulator executes, per
// spec.md §9's "global mutable JSON trace writer → a trace-sink
// interface" redesign note. Record is called once per successful
// per-thread step (STOP steps and sync.threads steps never call it).
type TraceSink interface {
	Record(block, thread int, reg uint8, timestamp int64, value int32)
}

// MapTraceSink is the in-memory TraceSink, convenient for tests and for
// programmatic consumers that want the trace without going through
// JSON.
type MapTraceSink struct {
	// Blocks[block][thread][reg] is the ordered list of writes to that
	// register over the block's execution.
	Blocks []map[int]map[uint8][]RegisterWrite
}

// NewMapTraceSink creates an empty in-memory trace sink.
func NewMapTraceSink() *MapTraceSink {
	return &MapTraceSink{}
}

// Record appends a register write, extending Blocks as new block
// indices are seen.
func (s *MapTraceSink) Record(block, thread int, reg uint8, timestamp int64, value int32) {
	for len(s.Blocks) <= block {
		s.Blocks = append(s.Blocks, map[int]map[uint8][]RegisterWrite{})
	}
	threads := s.Blocks[block]
	if threads[thread] == nil {
		threads[thread] = map[uint8][]RegisterWrite{}
	}
	threads[thread][reg] = append(threads[thread][reg], RegisterWrite{Timestamp: timestamp, Value: value})
}

// JSONTraceSink streams the register trace to a writer as the JSON
// object described in spec.md §6: block index → thread index →
// register index → ordered `[timestamp, value]` pairs. It buffers
// every write in memory and emits the document when Flush is called,
// since the nesting depth is only known once a dispatch completes.
type JSONTraceSink struct {
	inner *MapTraceSink
	w     io.Writer
}

// NewJSONTraceSink wraps a writer with the diagnostic JSON trace
// format.
func NewJSONTraceSink(w io.Writer) *JSONTraceSink {
	return &JSONTraceSink{inner: NewMapTraceSink(), w: w}
}

// Record appends a register write to the buffered trace.
func (s *JSONTraceSink) Record(block, thread int, reg uint8, timestamp int64, value int32) {
	s.inner.Record(block, thread, reg, timestamp, value)
}

// jsonDoc shapes fields in the wire order spec.md §6 describes:
// block → thread → register → [[timestamp, value], ...].
type jsonDoc map[string]map[string]map[string][][2]int64

// Flush serializes the accumulated trace as JSON and writes it out.
func (s *JSONTraceSink) Flush() error {
	doc := jsonDoc{}
	for block, threads := range s.inner.Blocks {
		blockKey := strconv.Itoa(block)
		doc[blockKey] = map[string]map[string][][2]int64{}
		for thread, regs := range threads {
			threadKey := strconv.Itoa(thread)
			doc[blockKey][threadKey] = map[string][][2]int64{}
			for reg, writes := range regs {
				regKey := strconv.Itoa(int(reg))
				pairs := make([][2]int64, len(writes))
				for i, w := range writes {
					pairs[i] = [2]int64{w.Timestamp, int64(w.Value)}
				}
				doc[blockKey][threadKey][regKey] = pairs
			}
		}
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
