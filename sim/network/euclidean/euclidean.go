// Package euclidean implements sim.RoadNetwork as straight-line
// (great-circle) travel over S2 cells, standing in for the original's H3
// grid — no H3 binding exists in Go, so geoids here are leaf-level
// s2.CellID values written as decimal strings; no configured resolution
// is applied. Grounded on the LatLng/CellID usage in
// the d4l3k/ricela fleet-monitoring example.
package euclidean

import (
	"strconv"

	"github.com/golang/geo/s2"

	"github.com/hive-sim/hive/sim"
)

const earthRadiusKm = 6371.0

func init() {
	sim.RegisterRoadNetwork("euclidean", New)
}

// Network computes routes and distances as a single great-circle link
// between two geoids at a fixed default speed; it never fails to route
// (RouteError is reserved for sim/network/osm's stubbed lookup failures).
type Network struct {
	defaultSpeedKmh float64
}

// New constructs a euclidean Network with the given default link speed.
func New(defaultSpeedKmh float64) sim.RoadNetwork {
	return &Network{defaultSpeedKmh: defaultSpeedKmh}
}

func (n *Network) LinkFromGeoid(g sim.Geoid) sim.Link {
	return sim.Link{Start: g, End: g, SpeedKmh: n.defaultSpeedKmh, DistKm: 0}
}

func (n *Network) Route(origin, dest sim.Geoid) (sim.Route, error) {
	dist := n.DistanceKm(origin, dest)
	return sim.Route{{Start: origin, End: dest, SpeedKmh: n.defaultSpeedKmh, DistKm: dist}}, nil
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
