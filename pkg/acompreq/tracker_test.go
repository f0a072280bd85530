package acompreq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/vsinha/acompreq/pkg/infrastructure/testing"
)

func TestTracker_Track(t *testing.T) {
	scenario := fixtures.BuildSiteScenario()

	tracker := NewTracker(nil)
	tracker.SetLines(scenario.Lines)
	require.NoError(t, tracker.AddAssignments(scenario.Assignments))
	require.NoError(t, tracker.AddAddresses(scenario.Addresses))

	result, err := tracker.Track(context.Background(), fixtures.ReferenceNow)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Summary.TotalRequisitions)
	assert.Equal(t, 1, result.Summary.FullyFulfilled)
	require.Len(t, result.Aggregates, 4)
	assert.Equal(t, Pending, result.Aggregates[1].Status)

	digest, ok := result.Digest("ANA")
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", digest.Address)
	assert.Len(t, digest.Entries, 2)
}

func TestTracker_ConflictingAssignment(t *testing.T) {
	tracker := NewTracker(nil)
	err := tracker.AddAssignments([]Assignment{
		{SiteID: "S1", Administrator: "ANA"},
		{SiteID: "S1", Administrator: "BRUNO"},
	})
	assert.Error(t, err)
}

func TestTracker_EmptyLog(t *testing.T) {
	result, err := NewTracker(nil).Track(context.Background(), fixtures.ReferenceNow)
	require.NoError(t, err)
	assert.Empty(t, result.Aggregates)
	assert.Empty(t, result.Digests)
}
