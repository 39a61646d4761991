package osrm

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// Endpoint is a fully described call: a path below the base URL and its option table.
// Requests are plain values; building the path and table never mutates them, so one request
// may be sent any number of times, concurrently.
type Endpoint interface {
	// Path returns the request path for the given API version, starting with a slash.
	Path(version string) string
	// Params returns the query parameters in deterministic order.
	Params() Params
	service() Service
	profile() Profile
}

// GeneralOptions are accepted by every service except tile. List-valued options, when set,
// should have one entry per input coordinate; the service rejects mismatched lengths.
type GeneralOptions struct {
	// Bearings limits the search to segments with the given bearing, per coordinate.
	Bearings []BearingRequest
	// Radiuses limits the search to the given radius, per coordinate.
	Radiuses []Radius
	// GenerateHints adds hints to the response. Defaults to true.
	GenerateHints *bool
	// Hints from a previous response, per coordinate.
	Hints []Hint
	// Approaches keeps waypoints on the curb side, per coordinate.
	Approaches []Approach
	// Exclude lists road classes to avoid; order does not matter.
	Exclude []string
	// Snapping selects which edges coordinates may snap to.
	Snapping Snapping
	// SkipWaypoints removes waypoints from the response.
	SkipWaypoints bool
}

func (g GeneralOptions) fields() []field {
	return []field{
		list("bearings", g.Bearings, stringer[BearingRequest]),
		list("radiuses", g.Radiuses, stringer[Radius]),
		flagOr("generate_hints", g.GenerateHints, true),
		list("hints", g.Hints, stringer[Hint]),
		list("approaches", g.Approaches, stringer[Approach]),
		list("exclude", g.Exclude, func(s string) string { return s }),
		token("snapping", g.Snapping),
		flag("skip_waypoints", g.SkipWaypoints),
	}
}

func servicePath(service Service, version string, profile Profile, coords Coordinates) string {
	return "/" + string(service) + "/" + version + "/" + profile.String() + "/" + coordinatesSegment(coords)
}

// coordinatesSegment is the wire form of coords as it appears in a URL path. Polyline bodies
// use characters such as '?' and '`' that must be escaped to stay inside the segment.
func coordinatesSegment(coords Coordinates) string {
	switch c := coords.(type) {
	case nil:
		return ""
	case Polyline:
		return "polyline(" + url.PathEscape(string(c)) + ")"
	case Polyline6:
		return "polyline6(" + url.PathEscape(string(c)) + ")"
	default:
		return c.String()
	}
}

// NearestRequest snaps a coordinate to the street network and returns the nearest matches.
// The service accepts a single coordinate only.
type NearestRequest struct {
	Profile     Profile
	Coordinates Coordinates
	GeneralOptions

	// Number of nearest segments to return.
	Number *int
}

func (r NearestRequest) service() Service { return ServiceNearest }
func (r NearestRequest) profile() Profile { return r.Profile }

func (r NearestRequest) Path(version string) string {
	return servicePath(ServiceNearest, version, r.Profile, r.Coordinates)
}

func (r NearestRequest) Params() Params {
	return buildParams(
		[]field{
			numeric("number", r.Number),
		},
		r.GeneralOptions.fields(),
	)
}

// RouteRequest finds the fastest route between coordinates in the supplied order.
type RouteRequest struct {
	Profile     Profile
	Coordinates Coordinates
	GeneralOptions

	Alternatives Alternatives
	// Steps returns turn-by-turn steps for each leg.
	Steps       bool
	Annotations RouteAnnotations
	Geometries  Geometries
	Overview    Overview
	// ContinueStraight forbids u-turns at waypoints. Unset leaves the profile default.
	ContinueStraight *bool
	// Waypoints are indices of the coordinates treated as waypoints; the others are via points.
	Waypoints []int
}

func (r RouteRequest) service() Service { return ServiceRoute }
func (r RouteRequest) profile() Profile { return r.Profile }

func (r RouteRequest) Path(version string) string {
	return servicePath(ServiceRoute, version, r.Profile, r.Coordinates)
}

func (r RouteRequest) Params() Params {
	return buildParams(
		[]field{
			token("alternatives", r.Alternatives),
			flag("steps", r.Steps),
			token("annotations", r.Annotations),
			token("geometries", r.Geometries),
			token("overview", r.Overview),
			optionalFlag("continue_straight", r.ContinueStraight),
			list("waypoints", r.Waypoints, formatNumber[int]),
		},
		r.GeneralOptions.fields(),
	)
}

// TableRequest computes durations and/or distances between all pairs of sources and
// destinations.
type TableRequest struct {
	Profile     Profile
	Coordinates Coordinates
	GeneralOptions

	// Sources are coordinate indices used as sources. Unset uses all.
	Sources []int
	// Destinations are coordinate indices used as destinations. Unset uses all.
	Destinations []int
	Annotations  TableAnnotations
	// FallbackSpeed, in m/s, estimates crow-flies durations for unroutable pairs.
	FallbackSpeed      *float32
	FallbackCoordinate FallbackCoordinate
	// ScaleFactor scales duration values.
	ScaleFactor *float32
}

func (r TableRequest) service() Service { return ServiceTable }
func (r TableRequest) profile() Profile { return r.Profile }

func (r TableRequest) Path(version string) string {
	return servicePath(ServiceTable, version, r.Profile, r.Coordinates)
}

func (r TableRequest) Params() Params {
	return buildParams(
		[]field{
			list("sources", r.Sources, formatNumber[int]),
			list("destinations", r.Destinations, formatNumber[int]),
			token("annotations", r.Annotations),
			numeric("fallback_speed", r.FallbackSpeed),
			token("fallback_coordinate", r.FallbackCoordinate),
			numeric("scale_factor", r.ScaleFactor),
		},
		r.GeneralOptions.fields(),
	)
}

// MatchRequest snaps a noisy GPS trace to the road network. Per-point accuracy is given
// through GeneralOptions.Radiuses.
type MatchRequest struct {
	Profile     Profile
	Coordinates Coordinates
	GeneralOptions

	Steps       bool
	Geometries  Geometries
	Annotations RouteAnnotations
	Overview    Overview
	// Timestamps are seconds since the UNIX epoch, monotonically increasing, per coordinate.
	Timestamps []uint64
	Gaps       Gaps
	// Tidy lets the service remove redundant trace points.
	Tidy bool
	// Waypoints are indices of the coordinates returned as waypoints.
	Waypoints []int
}

func (r MatchRequest) service() Service { return ServiceMatch }
func (r MatchRequest) profile() Profile { return r.Profile }

func (r MatchRequest) Path(version string) string {
	return servicePath(ServiceMatch, version, r.Profile, r.Coordinates)
}

func (r MatchRequest) Params() Params {
	return buildParams(
		[]field{
			flag("steps", r.Steps),
			token("annotations", r.Annotations),
			token("geometries", r.Geometries),
			token("overview", r.Overview),
			list("timestamps", r.Timestamps, formatNumber[uint64]),
			token("gaps", r.Gaps),
			flag("tidy", r.Tidy),
			list("waypoints", r.Waypoints, formatNumber[int]),
		},
		r.GeneralOptions.fields(),
	)
}

// TripRequest solves the travelling salesman problem over the coordinates.
//
// Not every combination is supported by the service. With Roundtrip set to false, only
// Source=first together with Destination=last is accepted; other combinations fail locally
// with StatusNotImplemented.
type TripRequest struct {
	Profile     Profile
	Coordinates Coordinates
	GeneralOptions

	// Roundtrip returns to the first location. Defaults to true.
	Roundtrip   *bool
	Source      TripSource
	Destination TripDestination
	Steps       bool
	Geometries  Geometries
	Annotations RouteAnnotations
	Overview    Overview
}

func (r TripRequest) service() Service { return ServiceTrip }
func (r TripRequest) profile() Profile { return r.Profile }

func (r TripRequest) Path(version string) string {
	return servicePath(ServiceTrip, version, r.Profile, r.Coordinates)
}

func (r TripRequest) Params() Params {
	return buildParams(
		[]field{
			flagOr("roundtrip", r.Roundtrip, true),
			token("source", r.Source),
			token("destination", r.Destination),
			flag("steps", r.Steps),
			token("geometries", r.Geometries),
			token("annotations", r.Annotations),
			token("overview", r.Overview),
		},
		r.GeneralOptions.fields(),
	)
}

func (r TripRequest) validate() error {
	if r.Roundtrip == nil || *r.Roundtrip {
		return nil
	}
	if r.Source == TripSourceFirst && r.Destination == TripDestinationLast {
		return nil
	}
	return &Error{
		Service: ServiceTrip,
		Kind:    KindProtocol,
		Status:  StatusNotImplemented,
		Message: fmt.Sprintf("roundtrip=false requires source=first and destination=last, got source=%q destination=%q",
			r.Source, r.Destination),
	}
}

// TileRequest fetches a Mapbox Vector Tile of the routing graph. The service only serves
// zoom levels 12 and up.
type TileRequest struct {
	Profile Profile
	X       int
	Y       int
	Zoom    int
}

func (r TileRequest) service() Service { return ServiceTile }
func (r TileRequest) profile() Profile { return r.Profile }

func (r TileRequest) Path(version string) string {
	return fmt.Sprintf("/%s/%s/%s/tile(%d,%d,%d).mvt", ServiceTile, version, r.Profile, r.X, r.Y, r.Zoom)
}

// Params is always empty; tiles take no query options.
func (r TileRequest) Params() Params { return nil }

// Center returns the location at the center of the tile, using the slippy map tile scheme.
func (r TileRequest) Center() Location {
	n := math.Exp2(float64(r.Zoom))
	x := float64(r.X) + 0.5
	y := float64(r.Y) + 0.5
	lon := x/n*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	return NewLocation(float32(lon), float32(lat))
}

// ViewerURL links to the OSRM debug map centered on the tile.
func (r TileRequest) ViewerURL() string {
	c := r.Center()
	return "http://map.project-osrm.org/debug/#" + strconv.Itoa(r.Zoom) + "/" +
		formatFloat32(c.Latitude) + "/" + formatFloat32(c.Longitude)
}
