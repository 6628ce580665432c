package diagnostics

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// fakeObject is a trackable object whose liveness the test controls.
type fakeObject struct {
	name  string
	alive bool
}

func (f *fakeObject) tracked() Object {
	return Object{
		Key: f,
		Resolve: func() any {
			if f.alive {
				return f
			}
			return nil
		},
	}
}

func TestDisabledByDefault(t *testing.T) {
	assert.False(t, Enabled())
	obj := &fakeObject{name: "doc", alive: true}
	Current().Allocate(obj.tracked(), "Document")
	assert.Empty(t, Snapshot())
}

func TestEnableDiscardsState(t *testing.T) {
	Enable(Options{})
	t.Cleanup(Disable)
	require.True(t, Enabled())

	obj := &fakeObject{name: "doc", alive: true}
	Current().Allocate(obj.tracked(), "Document")
	require.Equal(t, 1, Snapshot()["Document"].TotalInstances)

	Enable(Options{})
	assert.Empty(t, Snapshot())

	// The object was allocated under the previous tracker.
	Current().Deallocate(obj.tracked())
	assert.Empty(t, Snapshot())
}

func TestReportCounts(t *testing.T) {
	Enable(Options{CallerStats: true})
	t.Cleanup(Disable)

	live := &fakeObject{name: "live", alive: true}
	released := &fakeObject{name: "released", alive: true}
	leaked := &fakeObject{name: "leaked", alive: true}

	tr := Current()
	tr.Allocate(live.tracked(), "Schema")
	tr.Allocate(released.tracked(), "Schema")
	tr.Allocate(leaked.tracked(), "Schema")
	tr.Deallocate(released.tracked())
	leaked.alive = false

	report := Snapshot()
	cr := report["Schema"]
	require.NotNil(t, cr)
	assert.Equal(t, 3, cr.TotalInstances)
	assert.Equal(t, 1, cr.GarbageCollected)
	require.Len(t, cr.Instances, 1)
	assert.Same(t, live, cr.Instances[0].Object)
	assert.Equal(t, "*diagnostics.fakeObject", cr.Instances[0].Type)
	assert.Empty(t, cr.Instances[0].Caller, "caller detail is off")
	assert.Equal(t, 1, report.Leaks())

	total := 0
	for _, n := range cr.CallerStats {
		total += n
	}
	assert.Equal(t, 2, total, "stats cover every unreleased allocation")
}

func TestReportEncoders(t *testing.T) {
	report := Report{
		"Document": {TotalInstances: 2, GarbageCollected: 1, Instances: []Instance{{Type: "*xmlgo.Document"}}},
		"XPath":    {TotalInstances: 1},
	}
	assert.Equal(t, []string{"Document", "XPath"}, report.Classes())

	var text bytes.Buffer
	require.NoError(t, report.WriteText(&text))
	assert.Contains(t, text.String(), "Document: total=2 live=1 collected=1")

	var js bytes.Buffer
	require.NoError(t, report.WriteJSON(&js))
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.EqualValues(t, 1, decoded["Document"]["garbage_collected"])

	var mp bytes.Buffer
	require.NoError(t, report.WriteMsgpack(&mp))
	var back Report
	require.NoError(t, msgpack.Unmarshal(mp.Bytes(), &back))
	assert.Equal(t, 2, back["Document"].TotalInstances)
	assert.Equal(t, "*xmlgo.Document", back["Document"].Instances[0].Type)

	text.Reset()
	require.NoError(t, Report{}.WriteText(&text))
	assert.Equal(t, "no tracked objects\n", text.String())
}
