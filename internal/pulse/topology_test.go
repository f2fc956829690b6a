package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateSinkPortAvailabilityReportsChangeAndDropsUnknown(t *testing.T) {
	sink := &TrackedSink{}

	changed := sink.UpdateSinkPortAvailability([]PortInfo{
		{Name: "a", Availability: AvailabilityYes},
		{Name: "b", Availability: AvailabilityUnknown},
	})
	assert.True(t, changed)
	assert.Equal(t, AvailabilityYes, sink.PortAvailable["a"])
	_, hasB := sink.PortAvailable["b"]
	assert.False(t, hasB)

	changed = sink.UpdateSinkPortAvailability([]PortInfo{
		{Name: "a", Availability: AvailabilityYes},
	})
	assert.False(t, changed)

	changed = sink.UpdateSinkPortAvailability([]PortInfo{
		{Name: "a", Availability: AvailabilityNo},
	})
	assert.True(t, changed)
	assert.Equal(t, AvailabilityNo, sink.PortAvailable["a"])
}

func TestTopologyClearCardAlsoLeavesSinkSourceUntouched(t *testing.T) {
	topo := newTopology()
	topo.SetCard(&TrackedCard{Index: 1})
	topo.SetSink(&TrackedSink{Index: 10})
	topo.SetSource(&TrackedSource{Index: 20})

	topo.ClearCard()

	assert.False(t, topo.HasCard())
	assert.True(t, topo.HasSink())
	assert.True(t, topo.HasSource())
}
