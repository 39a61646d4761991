package osrm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/breatheroute/osrmclient/pkg/polyline"
)

// Location is a point anywhere on earth, in longitude, latitude order.
type Location struct {
	Longitude float32
	Latitude  float32
}

// NewLocation returns the location at the given longitude and latitude.
func NewLocation(longitude, latitude float32) Location {
	return Location{Longitude: longitude, Latitude: latitude}
}

// String returns the wire form "{longitude},{latitude}".
func (l Location) String() string {
	return formatFloat32(l.Longitude) + "," + formatFloat32(l.Latitude)
}

// MarshalJSON encodes the location as a [longitude, latitude] array.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float32{l.Longitude, l.Latitude})
}

// UnmarshalJSON decodes a [longitude, latitude] array.
func (l *Location) UnmarshalJSON(data []byte) error {
	pair, err := decodeNumbers[float32](data, "location")
	if err != nil {
		return fmt.Errorf("location: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("location: expected [longitude, latitude], got %d values", len(pair))
	}
	l.Longitude, l.Latitude = pair[0], pair[1]
	return nil
}

// GeoJSONPoint returns the location as a two dimensional GeoJSON position.
func (l Location) GeoJSONPoint() GeoJSONPoint {
	return NewPoint(float64(l.Longitude), float64(l.Latitude))
}

// Coordinates is the set of input points a request bears on. It is one of Single, Multi,
// Polyline or Polyline6.
type Coordinates interface {
	fmt.Stringer
	isCoordinates()
}

// Single is a lone coordinate.
type Single Location

func (Single) isCoordinates() {}

func (s Single) String() string { return Location(s).String() }

// Multi is a sequence of coordinates joined by semicolons on the wire.
type Multi []Location

func (Multi) isCoordinates() {}

func (m Multi) String() string {
	parts := make([]string, len(m))
	for i, loc := range m {
		parts[i] = loc.String()
	}
	return strings.Join(parts, ";")
}

// Polyline is a precision 5 encoded polyline.
type Polyline string

func (Polyline) isCoordinates() {}

func (p Polyline) String() string { return "polyline(" + string(p) + ")" }

// Polyline6 is a precision 6 encoded polyline.
type Polyline6 string

func (Polyline6) isCoordinates() {}

func (p Polyline6) String() string { return "polyline6(" + string(p) + ")" }

// PolylineFrom encodes locations as precision 5 polyline coordinates.
func PolylineFrom(locs []Location) Polyline {
	return Polyline(polyline.Encode(toPolyline(locs), polyline.Precision5))
}

// Polyline6From encodes locations as precision 6 polyline coordinates.
func Polyline6From(locs []Location) Polyline6 {
	return Polyline6(polyline.Encode(toPolyline(locs), polyline.Precision6))
}

func toPolyline(locs []Location) []polyline.Coordinate {
	coords := make([]polyline.Coordinate, len(locs))
	for i, loc := range locs {
		coords[i] = polyline.Coordinate{Lon: float64(loc.Longitude), Lat: float64(loc.Latitude)}
	}
	return coords
}

// Hint is an opaque token issued by a previous response to speed up snapping. It is sent
// back verbatim.
type Hint string

func (h Hint) String() string { return string(h) }

// BearingRequest limits the search to segments with the given bearing, in degrees from true
// north clockwise. Value is expected in 0..360 and Range in 0..180; neither is checked here.
type BearingRequest struct {
	Value uint16
	Range uint16
}

func (b BearingRequest) String() string {
	return strconv.FormatUint(uint64(b.Value), 10) + "," + strconv.FormatUint(uint64(b.Range), 10)
}

// Radius limits the search to a given radius in meters. The zero value is unlimited.
type Radius struct {
	meters  float64
	limited bool
}

// RadiusUnlimited lets the service search without a radius limit.
var RadiusUnlimited = Radius{}

// RadiusLimited limits the search to the given number of meters.
func RadiusLimited(meters float64) Radius {
	return Radius{meters: meters, limited: true}
}

// Meters returns the radius and whether it is limited at all.
func (r Radius) Meters() (float64, bool) {
	return r.meters, r.limited
}

func (r Radius) String() string {
	if !r.limited {
		return "unlimited"
	}
	return formatFloat64(r.meters)
}

// Approach restricts on which side of the road a waypoint may be reached.
// The zero value is ApproachUnrestricted.
type Approach string

const (
	ApproachUnrestricted Approach = "unrestricted"
	ApproachCurb         Approach = "curb"
)

func (a Approach) String() string {
	if a == "" {
		return string(ApproachUnrestricted)
	}
	return string(a)
}

// Snapping selects which edges coordinates may snap to.
type Snapping string

const (
	// SnappingDefault avoids edges flagged as unsuitable start points by the profile.
	SnappingDefault Snapping = "default"
	// SnappingAny snaps to any edge in the graph.
	SnappingAny Snapping = "any"
)

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func formatFloat64(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
