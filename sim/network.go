package sim

import "fmt"

// Geoid is the atomic spatial unit: a hierarchical cell id. Concrete
// RoadNetwork implementations populate it (euclidean uses an s2.CellID
// string encoding; see sim/network/euclidean).
type Geoid string

// Link is a directed traversable edge: an origin geoid, a destination
// geoid, and a speed in km/h. Route is an ordered sequence of links.
type Link struct {
	Start    Geoid
	End      Geoid
	SpeedKmh float64
	DistKm   Kilometers
}

type Route []Link

// RouteTraversal is the result of traversing a Route for up to a duration.
// ExperiencedRoute is the portion actually covered (for energy-cost
// queries); RemainingRoute is what's left after this step.
type RouteTraversal struct {
	ExperiencedRoute  Route
	RemainingRoute    Route
	TraversalDistance Kilometers
}

// RouteError indicates a route could not be computed between two geoids.
// Per spec §7, callers fall back to a crow-flies route and log a warning;
// they do not abort the run.
type RouteError struct {
	Origin, Dest Geoid
	Err          error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("no route from %s to %s: %v", e.Origin, e.Dest, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// RoadNetwork is the external collaborator that answers geoid<->link and
// routing queries. Out of core scope per spec.md §1; consumed here as an
// interface only. Implementations live in sim/network/euclidean (default,
// great-circle distance) and sim/network/osm (stub that always returns a
// RouteError, exercising the crow-flies fallback path).
type RoadNetwork interface {
	// LinkFromGeoid returns the zero-length link anchored at g.
	LinkFromGeoid(g Geoid) Link
	// Route computes a route from origin to dest. On failure it returns a
	// *RouteError; callers are expected to fall back to crow-flies.
	Route(origin, dest Geoid) (Route, error)
	// DistanceKm returns the great-circle (or network) distance in km.
	DistanceKm(a, b Geoid) Kilometers
	// GeoidAtResolution converts a lat/lon pair into a Geoid. The
	// sim/network implementations return leaf-level S2 cells; no
	// configured resolution is applied.
	GeoidAtResolution(lat, lon float64) Geoid
}

// newRoadNetworks holds the constructors that sim/network/* subpackages
// add from init() via RegisterRoadNetwork. Production code blank-imports
// one such subpackage (or both, selecting by config.Network.NetworkType).
var newRoadNetworks = map[string]func(defaultSpeedKmh float64) RoadNetwork{}

// RegisterRoadNetwork is called from a subpackage's init() to make a named
// RoadNetwork implementation available to NewRoadNetwork.
func RegisterRoadNetwork(name string, ctor func(defaultSpeedKmh float64) RoadNetwork) {
	newRoadNetworks[name] = ctor
}

// NewRoadNetwork builds a registered RoadNetwork implementation by name.
// Panics if the name was never registered (a wiring error, not a config
// error — config.Validate rejects unknown names before this is called).
func NewRoadNetwork(name string, defaultSpeedKmh float64) RoadNetwork {
	ctor, ok := newRoadNetworks[name]
	if !ok {
		panic(fmt.Sprintf("road network %q not registered; import its sim/network/* package", name))
	}
	return ctor(defaultSpeedKmh)
}
