// Package polyline provides encoding and decoding utilities for Google's polyline algorithm.
// The polyline algorithm is documented at: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
//
// OSRM accepts and returns polylines at two precisions: 5 decimal places ("polyline") and
// 6 decimal places ("polyline6").
package polyline

import (
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when an encoded string ends in the middle of a value or pair.
var ErrTruncated = errors.New("polyline: truncated input")

// Precision is the number of decimal places kept by the encoding.
type Precision int

const (
	// Precision5 is the standard Google precision used by OSRM "polyline".
	Precision5 Precision = 5
	// Precision6 is the precision used by OSRM "polyline6".
	Precision6 Precision = 6
)

func (p Precision) factor() float64 {
	return math.Pow10(int(p))
}

// Coordinate represents a geographic point. Fields follow the OSRM longitude, latitude order;
// the encoded form itself stores latitude first.
type Coordinate struct {
	Lon float64
	Lat float64
}

// Decode decodes a polyline-encoded string into a slice of coordinates.
func Decode(encoded string, precision Precision) ([]Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}

	factor := precision.factor()
	var coords []Coordinate
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, fmt.Errorf("%w: latitude without longitude at offset %d", ErrTruncated, index)
		}
		lat += latDelta

		lonDelta, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lon += lonDelta

		coords = append(coords, Coordinate{
			Lon: float64(lon) / factor,
			Lat: float64(lat) / factor,
		})
	}

	return coords, nil
}

// decodeValue decodes a single value from the polyline at the given index.
// Returns the decoded delta value and the new index position.
func decodeValue(encoded string, index int) (int, int, error) {
	shift := 0
	result := 0

	for {
		if index >= len(encoded) {
			return 0, index, fmt.Errorf("%w: unterminated value", ErrTruncated)
		}
		b := int(encoded[index]) - 63
		if b < 0 || b > 63 {
			return 0, index, fmt.Errorf("polyline: invalid character %q at offset %d", encoded[index], index)
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Apply two's complement for negative values
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode encodes a slice of coordinates into a polyline-encoded string.
func Encode(coords []Coordinate, precision Precision) string {
	if len(coords) == 0 {
		return ""
	}

	factor := precision.factor()
	encoded := make([]byte, 0, len(coords)*4)
	prevLat := 0
	prevLon := 0

	for _, coord := range coords {
		lat := int(math.Round(coord.Lat * factor))
		lon := int(math.Round(coord.Lon * factor))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

// encodeValue encodes a single integer value using the polyline algorithm.
func encodeValue(buf []byte, value int) []byte {
	// Invert if negative
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	// Encode in 5-bit chunks
	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}
