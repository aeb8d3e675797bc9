package euclidean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_ZeroForIdenticalGeoid(t *testing.T) {
	// GIVEN a network and a geoid derived from a lat/lon pair
	n := New(30).(*Network)
	g := n.GeoidAtResolution(37.7749, -122.4194)

	// WHEN measuring distance from the geoid to itself
	dist := n.DistanceKm(g, g)

	// THEN it is zero
	assert.InDelta(t, 0.0, dist, 1e-9)
}

func TestDistanceKm_ApproximatelyMatchesKnownGreatCircleDistance(t *testing.T) {
	// GIVEN San Francisco and Los Angeles, roughly 560 km apart great-circle
	n := New(30).(*Network)
	sf := n.GeoidAtResolution(37.7749, -122.4194)
	la := n.GeoidAtResolution(34.0522, -118.2437)

	// WHEN measuring the distance between them
	dist := n.DistanceKm(sf, la)

	// THEN it is within a loose tolerance of the known great-circle distance
	assert.InDelta(t, 560.0, dist, 40.0)
}

func TestRoute_NeverFails(t *testing.T) {
	// GIVEN a euclidean network
	n := New(30).(*Network)
	origin := n.GeoidAtResolution(0, 0)
	dest := n.GeoidAtResolution(1, 1)

	// WHEN routing between two points
	route, err := n.Route(origin, dest)

	// THEN it always succeeds with a single direct link
	require.NoError(t, err)
	require.Len(t, route, 1)
	assert.Equal(t, origin, route[0].Start)
	assert.Equal(t, dest, route[0].End)
}

func TestDistanceKm_InvalidGeoidReturnsZero(t *testing.T) {
	// GIVEN a malformed geoid
	n := New(30).(*Network)

	// WHEN measuring distance involving it
	dist := n.DistanceKm("not-a-cell-id", "also-not-one")

	// THEN it degrades to zero rather than panicking
	assert.Equal(t, 0.0, dist)
}
