package osrm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/breatheroute/osrmclient/pkg/polyline"
)

// Geometry is either an encoded polyline string or an explicit GeoJSON geometry. Which one a
// response carries depends on the geometries option, but decoding looks only at the JSON shape.
type Geometry struct {
	// Encoded holds the polyline or polyline6 string when GeoJSON is nil.
	Encoded string
	// GeoJSON holds the explicit geometry, if that is what the service returned.
	GeoJSON *GeoJSONGeometry
}

// IsEncoded reports whether the geometry is a polyline string.
func (g Geometry) IsEncoded() bool {
	return g.GeoJSON == nil
}

// UnmarshalJSON accepts a JSON string (encoded) or an object with a GeoJSON type (explicit).
func (g *Geometry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &ShapeError{What: "geometry", Detail: "empty value"}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = Geometry{Encoded: s}
		return nil
	case '{':
		var gj GeoJSONGeometry
		if err := json.Unmarshal(data, &gj); err != nil {
			return err
		}
		*g = Geometry{GeoJSON: &gj}
		return nil
	default:
		return &ShapeError{What: "geometry", Detail: "expected string or object, got " + describe(data)}
	}
}

// MarshalJSON writes the geometry back in whichever shape it was decoded from.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.GeoJSON != nil {
		return json.Marshal(g.GeoJSON)
	}
	return json.Marshal(g.Encoded)
}

// Orb converts the geometry for use with the orb geometry library. Encoded geometries are
// decoded with the precision implied by format and returned as a line string. Elevation is
// dropped.
func (g Geometry) Orb(format Geometries) (orb.Geometry, error) {
	if g.GeoJSON != nil {
		return g.GeoJSON.Orb(), nil
	}
	coords, err := polyline.Decode(g.Encoded, format.Precision())
	if err != nil {
		return nil, fmt.Errorf("decoding geometry: %w", err)
	}
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c.Lon, c.Lat}
	}
	return ls, nil
}

// GeoJSONType is the type discriminant of an explicit geometry.
type GeoJSONType string

const (
	GeoJSONPointType           GeoJSONType = "Point"
	GeoJSONLineStringType      GeoJSONType = "LineString"
	GeoJSONPolygonType         GeoJSONType = "Polygon"
	GeoJSONMultiPointType      GeoJSONType = "MultiPoint"
	GeoJSONMultiLineStringType GeoJSONType = "MultiLineString"
	GeoJSONMultiPolygonType    GeoJSONType = "MultiPolygon"
)

// GeoJSONGeometry is one of the six GeoJSON geometry kinds. Only the coordinate field
// matching Type is populated.
type GeoJSONGeometry struct {
	Type GeoJSONType
	// Point is set for Point.
	Point GeoJSONPoint
	// Points is set for LineString and MultiPoint.
	Points []GeoJSONPoint
	// Lines is set for Polygon (rings) and MultiLineString.
	Lines [][]GeoJSONPoint
	// Polygons is set for MultiPolygon.
	Polygons [][][]GeoJSONPoint
}

type rawGeoJSON struct {
	Type        GeoJSONType     `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func (g *GeoJSONGeometry) UnmarshalJSON(data []byte) error {
	var raw rawGeoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Coordinates) == 0 || bytes.Equal(raw.Coordinates, []byte("null")) {
		return &ShapeError{What: "geojson", Detail: "missing coordinates"}
	}

	out := GeoJSONGeometry{Type: raw.Type}
	var target any
	switch raw.Type {
	case GeoJSONPointType:
		target = &out.Point
	case GeoJSONLineStringType, GeoJSONMultiPointType:
		target = &out.Points
	case GeoJSONPolygonType, GeoJSONMultiLineStringType:
		target = &out.Lines
	case GeoJSONMultiPolygonType:
		target = &out.Polygons
	default:
		return &ShapeError{What: "geojson", Detail: fmt.Sprintf("unknown type %q", raw.Type)}
	}
	if err := json.Unmarshal(raw.Coordinates, target); err != nil {
		return fmt.Errorf("geojson %s: %w", raw.Type, err)
	}

	*g = out
	return nil
}

func (g GeoJSONGeometry) MarshalJSON() ([]byte, error) {
	var coords any
	switch g.Type {
	case GeoJSONPointType:
		coords = g.Point
	case GeoJSONLineStringType, GeoJSONMultiPointType:
		coords = g.Points
	case GeoJSONPolygonType, GeoJSONMultiLineStringType:
		coords = g.Lines
	case GeoJSONMultiPolygonType:
		coords = g.Polygons
	default:
		return nil, &ShapeError{What: "geojson", Detail: fmt.Sprintf("unknown type %q", g.Type)}
	}
	return json.Marshal(struct {
		Type        GeoJSONType `json:"type"`
		Coordinates any         `json:"coordinates"`
	}{g.Type, coords})
}

// Orb converts the geometry to its orb equivalent. Elevation is dropped.
func (g GeoJSONGeometry) Orb() orb.Geometry {
	switch g.Type {
	case GeoJSONPointType:
		return g.Point.orb()
	case GeoJSONLineStringType:
		return orbLine(g.Points)
	case GeoJSONMultiPointType:
		return orb.MultiPoint(orbLine(g.Points))
	case GeoJSONPolygonType:
		return orbPolygon(g.Lines)
	case GeoJSONMultiLineStringType:
		mls := make(orb.MultiLineString, len(g.Lines))
		for i, line := range g.Lines {
			mls[i] = orbLine(line)
		}
		return mls
	case GeoJSONMultiPolygonType:
		mp := make(orb.MultiPolygon, len(g.Polygons))
		for i, poly := range g.Polygons {
			mp[i] = orbPolygon(poly)
		}
		return mp
	default:
		return nil
	}
}

func orbLine(points []GeoJSONPoint) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.orb()
	}
	return ls
}

func orbPolygon(rings [][]GeoJSONPoint) orb.Polygon {
	poly := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		poly[i] = orb.Ring(orbLine(ring))
	}
	return poly
}

// GeoJSONPoint is a GeoJSON position: [longitude, latitude] or [longitude, latitude,
// elevation]. The wire format has no tag; the variant follows from the array length.
type GeoJSONPoint struct {
	coords   [3]float64
	elevated bool
}

// NewPoint returns a two dimensional position.
func NewPoint(lon, lat float64) GeoJSONPoint {
	return GeoJSONPoint{coords: [3]float64{lon, lat, 0}}
}

// NewElevatedPoint returns a position carrying an elevation.
func NewElevatedPoint(lon, lat, elevation float64) GeoJSONPoint {
	return GeoJSONPoint{coords: [3]float64{lon, lat, elevation}, elevated: true}
}

// Lon returns the longitude.
func (p GeoJSONPoint) Lon() float64 { return p.coords[0] }

// Lat returns the latitude.
func (p GeoJSONPoint) Lat() float64 { return p.coords[1] }

// Elevation returns the elevation, if the position has one.
func (p GeoJSONPoint) Elevation() (float64, bool) {
	return p.coords[2], p.elevated
}

// IsElevated reports whether the position has three values.
func (p GeoJSONPoint) IsElevated() bool { return p.elevated }

// Coordinates returns the two or three values of the position.
func (p GeoJSONPoint) Coordinates() []float64 {
	if p.elevated {
		return p.coords[:]
	}
	return p.coords[:2]
}

// Location drops the elevation.
func (p GeoJSONPoint) Location() Location {
	return NewLocation(float32(p.coords[0]), float32(p.coords[1]))
}

func (p GeoJSONPoint) orb() orb.Point {
	return orb.Point{p.coords[0], p.coords[1]}
}

func (p *GeoJSONPoint) UnmarshalJSON(data []byte) error {
	values, err := decodeNumbers[float64](data, "geojson position")
	if err != nil {
		return err
	}
	switch len(values) {
	case 2:
		*p = NewPoint(values[0], values[1])
	case 3:
		*p = NewElevatedPoint(values[0], values[1], values[2])
	default:
		return &ShapeError{What: "geojson position", Detail: fmt.Sprintf("expected 2 or 3 values, got %d", len(values))}
	}
	return nil
}

func (p GeoJSONPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Coordinates())
}

// decodeNumbers decodes a JSON array of numbers. A null element is a shape error, never zero.
func decodeNumbers[T float32 | float64](data []byte, what string) ([]T, error) {
	var raw []*T
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	values := make([]T, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, &ShapeError{What: what, Detail: fmt.Sprintf("value %d is null", i)}
		}
		values[i] = *v
	}
	return values, nil
}

// describe names the JSON kind of a raw value for error messages.
func describe(data []byte) string {
	switch {
	case len(data) == 0:
		return "nothing"
	case data[0] == '[':
		return "array"
	case data[0] == 'n':
		return "null"
	case data[0] == 't' || data[0] == 'f':
		return "boolean"
	default:
		return "number"
	}
}
