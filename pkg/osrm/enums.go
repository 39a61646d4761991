package osrm

import (
	"strconv"

	"github.com/breatheroute/osrmclient/pkg/polyline"
)

// Service names one of the HTTP services exposed by an OSRM backend.
type Service string

const (
	ServiceRoute   Service = "route"
	ServiceNearest Service = "nearest"
	ServiceTable   Service = "table"
	ServiceMatch   Service = "match"
	ServiceTrip    Service = "trip"
	ServiceTile    Service = "tile"
)

// Profile is the mode of transportation selecting the routing graph.
// The zero value is ProfileCar.
type Profile string

const (
	ProfileCar  Profile = "car"
	ProfileBike Profile = "bike"
	ProfileFoot Profile = "foot"
)

func (p Profile) String() string {
	if p == "" {
		return string(ProfileCar)
	}
	return string(p)
}

// Geometries is the format of returned route geometries (overview and per step).
type Geometries string

const (
	GeometriesPolyline  Geometries = "polyline"
	GeometriesPolyline6 Geometries = "polyline6"
	GeometriesGeoJSON   Geometries = "geojson"
)

// Precision returns the polyline precision implied by the format. Unset and geojson report
// the service default of 5.
func (g Geometries) Precision() polyline.Precision {
	if g == GeometriesPolyline6 {
		return polyline.Precision6
	}
	return polyline.Precision5
}

// Overview controls the overview geometry added to each route.
type Overview string

const (
	OverviewFalse      Overview = "false"
	OverviewSimplified Overview = "simplified"
	OverviewFull       Overview = "full"
)

// RouteAnnotations selects the metadata returned for each coordinate along a route.
type RouteAnnotations string

const (
	RouteAnnotationsFalse       RouteAnnotations = "false"
	RouteAnnotationsTrue        RouteAnnotations = "true"
	RouteAnnotationsNodes       RouteAnnotations = "nodes"
	RouteAnnotationsDistance    RouteAnnotations = "distance"
	RouteAnnotationsDuration    RouteAnnotations = "duration"
	RouteAnnotationsDatasources RouteAnnotations = "datasources"
	RouteAnnotationsWeight      RouteAnnotations = "weight"
	RouteAnnotationsSpeed       RouteAnnotations = "speed"
)

// Alternatives asks the route service for alternative routes.
type Alternatives string

const (
	AlternativesFalse Alternatives = "false"
	AlternativesTrue  Alternatives = "true"
)

// AlternativesUpTo searches for at most n alternative routes.
func AlternativesUpTo(n int) Alternatives {
	return Alternatives(strconv.Itoa(n))
}

// TableAnnotations selects which matrices the table service returns.
type TableAnnotations string

const (
	TableAnnotationsDuration TableAnnotations = "duration"
	TableAnnotationsDistance TableAnnotations = "distance"
	// TableAnnotationsBoth is a single token, not a list.
	TableAnnotationsBoth TableAnnotations = "duration,distance"
)

// FallbackCoordinate selects which coordinate is used to compute crow-flies fallback distances.
type FallbackCoordinate string

const (
	FallbackCoordinateInput   FallbackCoordinate = "input"
	FallbackCoordinateSnapped FallbackCoordinate = "snapped"
)

// Gaps controls splitting of match traces on large timestamp gaps.
type Gaps string

const (
	GapsSplit  Gaps = "split"
	GapsIgnore Gaps = "ignore"
)

// TripSource selects the coordinate a trip starts from.
type TripSource string

const (
	TripSourceAny   TripSource = "any"
	TripSourceFirst TripSource = "first"
)

// TripDestination selects the coordinate a trip ends at.
type TripDestination string

const (
	TripDestinationAny  TripDestination = "any"
	TripDestinationLast TripDestination = "last"
)

// ManeuverType is the kind of maneuver of a route step. The service may introduce new values
// without an API change; unknown values should be handled like ManeuverTurn.
type ManeuverType string

const (
	ManeuverTurn           ManeuverType = "turn"
	ManeuverNewName        ManeuverType = "new name"
	ManeuverDepart         ManeuverType = "depart"
	ManeuverArrive         ManeuverType = "arrive"
	ManeuverMerge          ManeuverType = "merge"
	ManeuverRamp           ManeuverType = "ramp"
	ManeuverOnRamp         ManeuverType = "on ramp"
	ManeuverOffRamp        ManeuverType = "off ramp"
	ManeuverFork           ManeuverType = "fork"
	ManeuverEndOfRoad      ManeuverType = "end of road"
	ManeuverUseLane        ManeuverType = "use lane"
	ManeuverContinue       ManeuverType = "continue"
	ManeuverRoundabout     ManeuverType = "roundabout"
	ManeuverRotary         ManeuverType = "rotary"
	ManeuverRoundaboutTurn ManeuverType = "roundabout turn"
	ManeuverNotification   ManeuverType = "notification"
	ManeuverExitRoundabout ManeuverType = "exit roundabout"
	ManeuverExitRotary     ManeuverType = "exit rotary"
)

// DirectionChange is a maneuver modifier or a lane indication.
type DirectionChange string

const (
	DirectionNone        DirectionChange = "none"
	DirectionUturn       DirectionChange = "uturn"
	DirectionSharpRight  DirectionChange = "sharp right"
	DirectionRight       DirectionChange = "right"
	DirectionSlightRight DirectionChange = "slight right"
	DirectionStraight    DirectionChange = "straight"
	DirectionSlightLeft  DirectionChange = "slight left"
	DirectionLeft        DirectionChange = "left"
	DirectionSharpLeft   DirectionChange = "sharp left"
)

// DrivingSide is the legal driving side at a step location.
type DrivingSide string

const (
	DrivingSideLeft  DrivingSide = "left"
	DrivingSideRight DrivingSide = "right"
)
