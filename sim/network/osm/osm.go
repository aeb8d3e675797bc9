// Package osm is a placeholder RoadNetwork adapter for a real
// OpenStreetMap-graph backend. Geoid<->LatLng conversion and distance
// queries delegate to the same S2-cell encoding sim/network/euclidean
// uses; Route always fails over a short exponential backoff (grounded on
// cenkalti/backoff's retry pattern as used in the d4l3k/ricela example)
// before returning a *sim.RouteError, exercising the crow-flies fallback
// every caller in sim/vehiclestate and sim/instruction is required to
// implement per spec.
package osm

import (
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang/geo/s2"

	"github.com/hive-sim/hive/sim"
)

const earthRadiusKm = 6371.0

func init() {
	sim.RegisterRoadNetwork("osm_network", New)
}

// Network is an unimplemented graph-routing adapter. DistanceKm and
// geoid conversion work (S2-cell based, same encoding as euclidean);
// Route always returns a *sim.RouteError after a brief retry budget.
type Network struct {
	defaultSpeedKmh float64
}

// New constructs an osm Network. defaultSpeedKmh is unused for routing
// (which always fails) but is retained for interface symmetry with
// euclidean.New and sets the speed of LinkFromGeoid's links; callers'
// crow-flies fallback links take their speed from the config instead.
func New(defaultSpeedKmh float64) sim.RoadNetwork {
	return &Network{defaultSpeedKmh: defaultSpeedKmh}
}

func (n *Network) LinkFromGeoid(g sim.Geoid) sim.Link {
	return sim.Link{Start: g, End: g, SpeedKmh: n.defaultSpeedKmh, DistKm: 0}
}

var errNoGraph = errors.New("osm road network graph not loaded")

func (n *Network) Route(origin, dest sim.Geoid) (sim.Route, error) {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 200 * time.Millisecond
	err := backoff.Retry(func() error { return errNoGraph }, b)
	return nil, &sim.RouteError{Origin: origin, Dest: dest, Err: err}
}

func (n *Network) DistanceKm(a, b sim.Geoid) sim.Kilometers {
	ll1, ok1 := decode(a)
	ll2, ok2 := decode(b)
	if !ok1 || !ok2 {
		return 0
	}
	return earthRadiusKm * ll1.Distance(ll2).Radians()
}

func (n *Network) GeoidAtResolution(lat, lon float64) sim.Geoid {
	ll := s2.LatLngFromDegrees(lat, lon)
	cell := s2.CellIDFromLatLng(ll)
	return sim.Geoid(strconv.FormatUint(uint64(cell), 10))
}

func decode(g sim.Geoid) (s2.LatLng, bool) {
	id, err := strconv.ParseUint(string(g), 10, 64)
	if err != nil {
		return s2.LatLng{}, false
	}
	cell := s2.CellID(id)
	if !cell.IsValid() {
		return s2.LatLng{}, false
	}
	return cell.LatLng(), true
}
