package osrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestRequest_Defaults(t *testing.T) {
	req := NearestRequest{
		Profile:     ProfileFoot,
		Coordinates: Single(NewLocation(2.290253, 48.8583701)),
	}

	assert.Equal(t, "/nearest/v1/foot/2.290253,48.85837", req.Path("v1"))
	assert.Equal(t, Params{
		{Name: "generate_hints", Value: "true"},
		{Name: "skip_waypoints", Value: "false"},
	}, req.Params())
}

func TestNearestRequest_Number(t *testing.T) {
	req := NearestRequest{
		Coordinates: Single(NewLocation(13.388860, 52.517037)),
		Number:      Int(3),
	}

	assert.Equal(t, "/nearest/v1/car/13.38886,52.517036", req.Path("v1"))
	assert.Equal(t, "number=3&generate_hints=true&skip_waypoints=false", req.Params().Encode())
}

func TestRouteRequest_ServiceOptionsBeforeGeneral(t *testing.T) {
	req := RouteRequest{
		Coordinates: Multi{NewLocation(4.35, 50.8333), NewLocation(4.367, 50.846)},
		GeneralOptions: GeneralOptions{
			Radiuses:      []Radius{RadiusUnlimited, RadiusLimited(25.5)},
			GenerateHints: Bool(false),
		},
		Alternatives:     AlternativesUpTo(2),
		Steps:            true,
		Annotations:      RouteAnnotationsDuration,
		Geometries:       GeometriesGeoJSON,
		Overview:         OverviewFull,
		ContinueStraight: Bool(false),
		Waypoints:        []int{0, 1},
	}

	assert.Equal(t, "/route/v1/car/4.35,50.8333;4.367,50.846", req.Path("v1"))

	var names []string
	for _, p := range req.Params() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"alternatives", "steps", "annotations", "geometries", "overview", "continue_straight", "waypoints",
		"radiuses", "generate_hints", "skip_waypoints",
	}, names)

	params := req.Params()
	value, ok := params.Get("radiuses")
	require.True(t, ok)
	assert.Equal(t, "unlimited;25.5", value)

	value, _ = params.Get("alternatives")
	assert.Equal(t, "2", value)
	value, _ = params.Get("continue_straight")
	assert.Equal(t, "false", value)
	value, _ = params.Get("generate_hints")
	assert.Equal(t, "false", value)
}

func TestRouteRequest_UnsetOptionsAreAbsent(t *testing.T) {
	req := RouteRequest{Coordinates: Multi{NewLocation(0, 0), NewLocation(1, 1)}}

	params := req.Params()
	for _, name := range []string{"alternatives", "annotations", "geometries", "overview", "continue_straight", "waypoints", "bearings", "hints", "approaches", "exclude", "snapping"} {
		_, ok := params.Get(name)
		assert.False(t, ok, "%s should be absent", name)
	}
	assert.Equal(t, "steps=false&generate_hints=true&skip_waypoints=false", params.Encode())
}

func TestGeneralOptions_EmptyListIsPresent(t *testing.T) {
	req := RouteRequest{
		Coordinates:    Multi{NewLocation(0, 0), NewLocation(1, 1)},
		GeneralOptions: GeneralOptions{Exclude: []string{}},
	}

	value, ok := req.Params().Get("exclude")
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestGeneralOptions_AllLists(t *testing.T) {
	g := GeneralOptions{
		Bearings:      []BearingRequest{{Value: 90, Range: 20}, {Value: 270, Range: 45}},
		Hints:         []Hint{"abc", "def"},
		Approaches:    []Approach{"", ApproachCurb},
		Exclude:       []string{"toll", "motorway"},
		Snapping:      SnappingAny,
		SkipWaypoints: true,
	}

	assert.Equal(t, Params{
		{Name: "bearings", Value: "90,20;270,45"},
		{Name: "generate_hints", Value: "true"},
		{Name: "hints", Value: "abc;def"},
		{Name: "approaches", Value: "unrestricted;curb"},
		{Name: "exclude", Value: "toll;motorway"},
		{Name: "snapping", Value: "any"},
		{Name: "skip_waypoints", Value: "true"},
	}, buildParams(g.fields()))
}

func TestTableRequest_Params(t *testing.T) {
	req := TableRequest{
		Profile:            ProfileBike,
		Coordinates:        Multi{NewLocation(13.388860, 52.517037), NewLocation(13.397634, 52.529407), NewLocation(13.428555, 52.523219)},
		Sources:            []int{0},
		Destinations:       []int{1, 2},
		Annotations:        TableAnnotationsBoth,
		FallbackSpeed:      Float32(12.5),
		FallbackCoordinate: FallbackCoordinateSnapped,
		ScaleFactor:        Float32(0.8),
	}

	assert.Equal(t,
		"sources=0&destinations=1%3B2&annotations=duration%2Cdistance&fallback_speed=12.5"+
			"&fallback_coordinate=snapped&scale_factor=0.8&generate_hints=true&skip_waypoints=false",
		req.Params().Encode())
}

func TestMatchRequest_Params(t *testing.T) {
	req := MatchRequest{
		Coordinates: Multi{NewLocation(4.35, 50.8333), NewLocation(4.36, 50.84)},
		GeneralOptions: GeneralOptions{
			Radiuses: []Radius{RadiusLimited(10), RadiusLimited(12)},
		},
		Timestamps: []uint64{1424684612, 1424684616},
		Gaps:       GapsIgnore,
		Tidy:       true,
	}

	params := req.Params()
	var radiuses int
	for _, p := range params {
		if p.Name == "radiuses" {
			radiuses++
		}
	}
	assert.Equal(t, 1, radiuses, "radiuses must be sent once")

	value, _ := params.Get("timestamps")
	assert.Equal(t, "1424684612;1424684616", value)
	value, _ = params.Get("gaps")
	assert.Equal(t, "ignore", value)
	value, _ = params.Get("tidy")
	assert.Equal(t, "true", value)
	value, _ = params.Get("radiuses")
	assert.Equal(t, "10;12", value)
}

func TestTripRequest_Params(t *testing.T) {
	req := TripRequest{
		Coordinates: Multi{NewLocation(13.88, -1.3), NewLocation(13.9, -1.4)},
		Source:      TripSourceFirst,
		Destination: TripDestinationLast,
	}

	assert.Equal(t, "/trip/v1/car/13.88,-1.3;13.9,-1.4", req.Path("v1"))
	assert.Equal(t, "roundtrip=true&source=first&destination=last&steps=false&generate_hints=true&skip_waypoints=false",
		req.Params().Encode())
}

func TestTripRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TripRequest
		wantErr bool
	}{
		{name: "default roundtrip", req: TripRequest{}},
		{name: "roundtrip any any", req: TripRequest{Roundtrip: Bool(true), Source: TripSourceAny, Destination: TripDestinationAny}},
		{name: "one way first last", req: TripRequest{Roundtrip: Bool(false), Source: TripSourceFirst, Destination: TripDestinationLast}},
		{name: "one way any last", req: TripRequest{Roundtrip: Bool(false), Source: TripSourceAny, Destination: TripDestinationLast}, wantErr: true},
		{name: "one way first any", req: TripRequest{Roundtrip: Bool(false), Source: TripSourceFirst, Destination: TripDestinationAny}, wantErr: true},
		{name: "one way unset", req: TripRequest{Roundtrip: Bool(false)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotImplemented)
			assert.ErrorIs(t, err, ErrProtocol)
			status, ok := StatusOf(err)
			assert.True(t, ok)
			assert.Equal(t, StatusNotImplemented, status)
		})
	}
}

func TestRequestPath_EscapesPolylineBody(t *testing.T) {
	route := RouteRequest{Coordinates: Polyline("ckguHorpY?giB")}
	assert.Equal(t, "/route/v1/car/polyline(ckguHorpY%3FgiB)", route.Path("v1"))

	match := MatchRequest{Coordinates: Polyline6("ab`c{d}")}
	assert.Equal(t, "/match/v1/car/polyline6(ab%60c%7Bd%7D)", match.Path("v1"))

	table := TableRequest{Coordinates: Multi{NewLocation(4.35, 50.8333), NewLocation(-1.3, 44.1)}}
	assert.Equal(t, "/table/v1/car/4.35,50.8333;-1.3,44.1", table.Path("v1"))
}

func TestTileRequest(t *testing.T) {
	req := TileRequest{Profile: ProfileCar, X: 1310, Y: 3166, Zoom: 13}

	assert.Equal(t, "/tile/v1/car/tile(1310,3166,13).mvt", req.Path("v1"))
	assert.Empty(t, req.Params())
	assert.Equal(t, "http://map.project-osrm.org/debug/#13/37.770714/-122.40967", req.ViewerURL())
}

func TestTileRequest_Center(t *testing.T) {
	center := TileRequest{X: 0, Y: 0, Zoom: 0}.Center()
	assert.InDelta(t, 0, center.Longitude, 1e-6)
	assert.InDelta(t, 0, center.Latitude, 1e-6)
}

func TestRequests_DoNotMutate(t *testing.T) {
	hints := []Hint{"a", "b"}
	req := RouteRequest{
		Coordinates:    Multi{NewLocation(0, 0), NewLocation(1, 1)},
		GeneralOptions: GeneralOptions{Hints: hints},
	}

	first := req.Params()
	second := req.Params()
	assert.Equal(t, first, second)
	assert.Equal(t, []Hint{"a", "b"}, req.Hints)
}
