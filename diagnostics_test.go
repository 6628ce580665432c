//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:noinline
func parseAndDrop(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		_, err := ParseString("<dropped/>", nil)
		require.NoError(t, err)
	}
}

func TestDiagnosticsReportsLeakedDocuments(t *testing.T) {
	requireLibXML(t)

	EnableDiagnostics(DiagnosticsOptions{CallerDetail: true})
	t.Cleanup(DisableDiagnostics)

	kept, err := ParseString("<kept/>", nil)
	require.NoError(t, err)
	closed, err := ParseString("<closed/>", nil)
	require.NoError(t, err)
	require.NoError(t, closed.Close())

	parseAndDrop(t, 3)

	assert.Eventually(t, func() bool {
		runtime.GC()
		rep := Diagnostics()["Document"]
		return rep != nil && rep.GarbageCollected == 3
	}, 5*time.Second, 10*time.Millisecond)

	rep := Diagnostics()["Document"]
	require.NotNil(t, rep)
	assert.Equal(t, 5, rep.TotalInstances)
	require.Len(t, rep.Instances, 1, "only the kept document is live")
	assert.Same(t, kept, rep.Instances[0].Object)
	assert.NotEmpty(t, rep.Instances[0].Caller)

	require.NoError(t, kept.Close())
	rep = Diagnostics()["Document"]
	assert.Empty(t, rep.Instances)
}

func TestUnreachableDocumentsAreReleased(t *testing.T) {
	requireLibXML(t)

	before := documents.Len()
	parseAndDrop(t, 10)

	assert.Eventually(t, func() bool {
		runtime.GC()
		return documents.Len() <= before
	}, 5*time.Second, 10*time.Millisecond)
}
