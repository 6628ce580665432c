package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Report maps a wrapper class name to its summary.
type Report map[string]*ClassReport

// ClassReport summarizes tracked objects of one class.
type ClassReport struct {
	// TotalInstances is the number of objects of this class constructed
	// while the tracker was installed.
	TotalInstances int `json:"total_instances" msgpack:"total_instances"`

	// GarbageCollected is the number of objects the collector reclaimed
	// without an explicit release.
	GarbageCollected int `json:"garbage_collected" msgpack:"garbage_collected"`

	// Instances lists the objects that are still reachable and not released.
	Instances []Instance `json:"instances,omitempty" msgpack:"instances,omitempty"`

	// CallerStats counts allocation call paths of objects not explicitly
	// released. Only set with Options.CallerStats.
	CallerStats map[string]int `json:"caller_stats,omitempty" msgpack:"caller_stats,omitempty"`
}

// Instance is one live, unreleased object.
type Instance struct {
	Object any    `json:"-" msgpack:"-"`
	Type   string `json:"type" msgpack:"type"`

	// Caller is the allocation call path. Only set with Options.CallerDetail.
	Caller string `json:"caller,omitempty" msgpack:"caller,omitempty"`
}

// Leaks returns the number of objects across all classes that were reclaimed
// by the collector without an explicit release.
func (r Report) Leaks() int {
	n := 0
	for _, cr := range r {
		n += cr.GarbageCollected
	}
	return n
}

// Classes returns the class names in the report in sorted order.
func (r Report) Classes() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteText writes a human-readable summary.
func (r Report) WriteText(w io.Writer) error {
	if len(r) == 0 {
		_, err := fmt.Fprintln(w, "no tracked objects")
		return err
	}
	for _, name := range r.Classes() {
		cr := r[name]
		if _, err := fmt.Fprintf(w, "%s: total=%d live=%d collected=%d\n",
			name, cr.TotalInstances, len(cr.Instances), cr.GarbageCollected); err != nil {
			return err
		}
		for _, inst := range cr.Instances {
			if inst.Caller == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "  %s allocated at:\n%s", inst.Type, inst.Caller); err != nil {
				return err
			}
		}
		for caller, n := range cr.CallerStats {
			if _, err := fmt.Fprintf(w, "  %d allocation(s) from:\n%s", n, caller); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteMsgpack writes the report in msgpack encoding.
func (r Report) WriteMsgpack(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(r)
}
