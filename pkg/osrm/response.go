package osrm

// Envelope holds the fields every response shares with its payload at the top level.
type Envelope struct {
	Code        Status
	Message     *string
	DataVersion *string
}

func (e *Envelope) setEnvelope(env Envelope) { *e = env }

func (e *Envelope) envelope() Envelope { return *e }

// Waypoint is an input coordinate snapped to the street network.
type Waypoint struct {
	// Name of the street the coordinate snapped to.
	Name string `json:"name"`
	// Location of the snapped coordinate.
	Location Location `json:"location"`
	// Distance in meters from the input coordinate to the snapped one.
	Distance float64 `json:"distance"`
	// Hint to replay in later requests. Absent when generate_hints=false.
	Hint *Hint `json:"hint,omitempty"`
	// Nodes are OpenStreetMap node ids, returned by the nearest service.
	Nodes []uint64 `json:"nodes,omitempty"`
}

// Lane is a turn lane at an intersection.
type Lane struct {
	Indications []DirectionChange `json:"indications"`
	// Valid reports whether the lane is a valid choice for the current maneuver.
	Valid bool `json:"valid"`
}

// Intersection is a cross-way passed along a step. The first intersection of a step is the
// location of its maneuver.
type Intersection struct {
	Location Location `json:"location"`
	// Bearings of all roads at the intersection, 0-359 clockwise from north.
	Bearings []uint16 `json:"bearings"`
	Classes  []string `json:"classes,omitempty"`
	// Entry flags map 1:1 onto Bearings.
	Entry []bool `json:"entry"`
	// In indexes Bearings with the approach direction; absent on depart.
	In *int `json:"in,omitempty"`
	// Out indexes Bearings with the exit direction; absent on arrive.
	Out   *int   `json:"out,omitempty"`
	Lanes []Lane `json:"lanes,omitempty"`
}

// StepManeuver is the maneuver performed at the start of a step.
type StepManeuver struct {
	Location      Location         `json:"location"`
	BearingBefore uint16           `json:"bearing_before"`
	BearingAfter  uint16           `json:"bearing_after"`
	Type          ManeuverType     `json:"type"`
	Modifier      *DirectionChange `json:"modifier,omitempty"`
	// Exit is the roundabout or rotary exit to take.
	Exit *int `json:"exit,omitempty"`
}

// RouteStep is a maneuver followed by travel along a single way.
type RouteStep struct {
	Distance      float64        `json:"distance"`
	Duration      float64        `json:"duration"`
	Weight        float64        `json:"weight"`
	Geometry      Geometry       `json:"geometry"`
	Name          string         `json:"name"`
	Ref           *string        `json:"ref,omitempty"`
	Pronunciation *string        `json:"pronunciation,omitempty"`
	Destinations  *string        `json:"destinations,omitempty"`
	Exits         *string        `json:"exits,omitempty"`
	Mode          string         `json:"mode"`
	Maneuver      StepManeuver   `json:"maneuver"`
	Intersections []Intersection `json:"intersections"`

	RotaryName          *string      `json:"rotary_name,omitempty"`
	RotaryPronunciation *string      `json:"rotary_pronunciation,omitempty"`
	DrivingSide         *DrivingSide `json:"driving_side,omitempty"`
}

// AnnotationMetadata describes the datasources referenced by an annotation.
type AnnotationMetadata struct {
	DatasourceNames []string `json:"datasource_names,omitempty"`
}

// Annotation holds per-segment details of a leg. Only the requested arrays are present.
type Annotation struct {
	Distance    []float64           `json:"distance,omitempty"`
	Duration    []float64           `json:"duration,omitempty"`
	Datasources []int               `json:"datasources,omitempty"`
	Nodes       []uint64            `json:"nodes,omitempty"`
	Weight      []float64           `json:"weight,omitempty"`
	Speed       []float64           `json:"speed,omitempty"`
	Metadata    *AnnotationMetadata `json:"metadata,omitempty"`
}

// RouteLeg is the part of a route between two waypoints.
type RouteLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Weight   float64 `json:"weight"`
	// Summary names the major roads used; empty unless requested.
	Summary string `json:"summary"`
	// Steps is empty unless steps=true.
	Steps      []RouteStep `json:"steps"`
	Annotation *Annotation `json:"annotation,omitempty"`
}

// Route is a path through the waypoints.
type Route struct {
	Distance   float64 `json:"distance"`
	Duration   float64 `json:"duration"`
	Weight     float64 `json:"weight"`
	WeightName string  `json:"weight_name"`
	// Geometry is absent when overview=false.
	Geometry *Geometry `json:"geometry,omitempty"`
	Legs     []RouteLeg `json:"legs"`
}

// RouteResponse is the payload of the route service.
type RouteResponse struct {
	Envelope  `json:"-"`
	Waypoints []Waypoint `json:"waypoints,omitempty"`
	Routes    []Route    `json:"routes,omitempty"`
}

// NearestResponse is the payload of the nearest service. Waypoints are sorted by distance to
// the input coordinate and are absent when skip_waypoints=true.
type NearestResponse struct {
	Envelope  `json:"-"`
	Waypoints []Waypoint `json:"waypoints,omitempty"`
}

// Matrix is a row-major table indexed [source][destination]. A nil cell means no route
// exists between that pair.
type Matrix [][]*float64

// At returns the cell value and whether one was computed.
func (m Matrix) At(source, destination int) (float64, bool) {
	if source < 0 || source >= len(m) || destination < 0 || destination >= len(m[source]) {
		return 0, false
	}
	cell := m[source][destination]
	if cell == nil {
		return 0, false
	}
	return *cell, true
}

// TableResponse is the payload of the table service.
type TableResponse struct {
	Envelope `json:"-"`
	// Durations in seconds, present when requested.
	Durations Matrix `json:"durations,omitempty"`
	// Distances in meters, present when requested.
	Distances    Matrix     `json:"distances,omitempty"`
	Sources      []Waypoint `json:"sources,omitempty"`
	Destinations []Waypoint `json:"destinations,omitempty"`
	// FallbackSpeedCells lists [source, destination] pairs estimated with fallback_speed.
	FallbackSpeedCells [][2]int `json:"fallback_speed_cells,omitempty"`
}

// MatchingWaypoint is a trace point and where it was matched.
type MatchingWaypoint struct {
	Waypoint
	// MatchingsIndex points into MatchResponse.Matchings.
	MatchingsIndex int `json:"matchings_index"`
	// WaypointIndex is the position of the waypoint inside its matching.
	WaypointIndex int `json:"waypoint_index"`
	// AlternativesCount is zero when the point was matched unambiguously.
	AlternativesCount int `json:"alternatives_count"`
}

// MatchingRoute is a matched sub-trace.
type MatchingRoute struct {
	Route
	// Confidence between 0 and 1.
	Confidence float64 `json:"confidence"`
}

// MatchResponse is the payload of the match service.
type MatchResponse struct {
	Envelope `json:"-"`
	// Tracepoints has one entry per input coordinate; nil entries are outliers that were
	// not matched.
	Tracepoints []*MatchingWaypoint `json:"tracepoints,omitempty"`
	Matchings   []MatchingRoute     `json:"matchings,omitempty"`
}

// TripWaypoint is an input coordinate and its place in a trip.
type TripWaypoint struct {
	Waypoint
	// TripsIndex points into TripResponse.Trips.
	TripsIndex int `json:"trips_index"`
	// WaypointIndex is the position of the point in its trip.
	WaypointIndex int `json:"waypoint_index"`
}

// TripResponse is the payload of the trip service.
type TripResponse struct {
	Envelope  `json:"-"`
	Waypoints []TripWaypoint `json:"waypoints,omitempty"`
	Trips     []Route        `json:"trips,omitempty"`
}
