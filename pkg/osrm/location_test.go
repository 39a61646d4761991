package osrm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{NewLocation(4.35, 50.8333), "4.35,50.8333"},
		{NewLocation(13.88, -1.3), "13.88,-1.3"},
		{NewLocation(0, 0), "0,0"},
		{NewLocation(-122.5, 37), "-122.5,37"},
		{NewLocation(2.290253, 48.8583701), "2.290253,48.85837"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestLocation_JSON(t *testing.T) {
	var loc Location
	require.NoError(t, json.Unmarshal([]byte(`[4.516091,50.859136]`), &loc))
	assert.Equal(t, "4.516091,50.859135", loc.String())

	data, err := json.Marshal(NewLocation(-1.3, 44.1))
	require.NoError(t, err)
	assert.JSONEq(t, `[-1.3,44.1]`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &loc))
	assert.Error(t, json.Unmarshal([]byte(`{"lon":1}`), &loc))

	err = json.Unmarshal([]byte(`[2.29,null]`), &loc)
	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestCoordinates_String(t *testing.T) {
	assert.Equal(t, "13.88,-1.3", Single(NewLocation(13.88, -1.3)).String())
	assert.Equal(t, "4.35,50.8333;-1.3,44.1", Multi{NewLocation(4.35, 50.8333), NewLocation(-1.3, 44.1)}.String())
	assert.Equal(t, "polyline(ofp_Ik_vpAilAyu@te@g`E)", Polyline("ofp_Ik_vpAilAyu@te@g`E").String())
	assert.Equal(t, "polyline6(abc)", Polyline6("abc").String())
}

func TestPolylineFrom(t *testing.T) {
	locs := []Location{NewLocation(-120.2, 38.5), NewLocation(-120.95, 40.7), NewLocation(-126.453, 43.252)}
	assert.Equal(t, Polyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@"), PolylineFrom(locs))
	assert.NotEmpty(t, Polyline6From(locs))
}

func TestRadius(t *testing.T) {
	meters, limited := RadiusUnlimited.Meters()
	assert.False(t, limited)
	assert.Zero(t, meters)
	assert.Equal(t, "unlimited", RadiusUnlimited.String())
	assert.Equal(t, "unlimited", Radius{}.String())

	meters, limited = RadiusLimited(25.5).Meters()
	assert.True(t, limited)
	assert.Equal(t, 25.5, meters)
	assert.Equal(t, "25.5", RadiusLimited(25.5).String())
	assert.Equal(t, "100", RadiusLimited(100).String())
}

func TestBearingAndApproach(t *testing.T) {
	assert.Equal(t, "0,180", BearingRequest{Value: 0, Range: 180}.String())
	assert.Equal(t, "unrestricted", Approach("").String())
	assert.Equal(t, "curb", ApproachCurb.String())
	assert.Equal(t, "car", Profile("").String())
	assert.Equal(t, "foot", ProfileFoot.String())
}

func TestParams_Encode(t *testing.T) {
	params := Params{
		{Name: "exclude", Value: "toll;motorway"},
		{Name: "approaches", Value: ""},
	}
	assert.Equal(t, "exclude=toll%3Bmotorway&approaches=", params.Encode())
	assert.Empty(t, Params(nil).Encode())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0.1", formatNumber(float32(0.1)))
	assert.Equal(t, "0.1", formatNumber(0.1))
	assert.Equal(t, "42", formatNumber(42))
	assert.Equal(t, "1424684612", formatNumber(uint64(1424684612)))
}

func TestMulti_SingleElementMatchesSingle(t *testing.T) {
	for _, loc := range []Location{NewLocation(2.290253, 48.8583701), NewLocation(-180, -90), NewLocation(0.5, 0)} {
		assert.Equal(t, Single(loc).String(), Multi{loc}.String())
	}
}

func TestList_SeparatorCount(t *testing.T) {
	for n := 0; n <= 5; n++ {
		hints := make([]Hint, n)
		for i := range hints {
			hints[i] = Hint("h")
		}
		value, ok := buildParams([]field{list("hints", hints, stringer[Hint])}).Get("hints")
		require.True(t, ok)
		want := n - 1
		if n == 0 {
			want = 0
		}
		assert.Equal(t, want, strings.Count(value, ";"), "n=%d", n)
	}
}

func TestLocation_RoundTrip(t *testing.T) {
	for _, loc := range []Location{NewLocation(4.35, 50.8333), NewLocation(-122.40967, 37.770714), NewLocation(0, 0)} {
		data, err := json.Marshal(loc)
		require.NoError(t, err)
		var back Location
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, loc, back)
	}
}
