package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/breatheroute/osrmclient/pkg/osrm"
)

const usage = `usage: osrm [-debug] [-profile car|bike|foot] <command> [options] <coordinates...>

commands:
  nearest  snap one lon,lat coordinate to the street network
  route    fastest route through the coordinates
  table    duration and distance matrix between the coordinates
  match    match a GPS trace to the road network
  trip     travelling salesman tour over the coordinates
  tile     fetch a vector tile (-x, -y, -z) and write it to a file

coordinates are lon,lat pairs, or a single polyline(...) / polyline6(...) argument.`

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run parses args and executes one command, writing its result to out.
func run(ctx context.Context, client *osrm.Client, args []string, out io.Writer, log zerolog.Logger) error {
	global := flag.NewFlagSet("osrm", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	debug := global.Bool("debug", false, "print the raw response body instead of the decoded one")
	profile := global.String("profile", "car", "routing profile")
	if err := global.Parse(args); err != nil {
		return usagef("%v", err)
	}

	rest := global.Args()
	if len(rest) == 0 {
		return usagef("missing command")
	}

	cmd := command{
		client:  client,
		out:     out,
		log:     log,
		debug:   *debug,
		profile: osrm.Profile(*profile),
	}

	switch rest[0] {
	case "nearest":
		return cmd.nearest(ctx, rest[1:])
	case "route":
		return cmd.route(ctx, rest[1:])
	case "table":
		return cmd.table(ctx, rest[1:])
	case "match":
		return cmd.match(ctx, rest[1:])
	case "trip":
		return cmd.trip(ctx, rest[1:])
	case "tile":
		return cmd.tile(ctx, rest[1:])
	default:
		return usagef("unknown command %q", rest[0])
	}
}

type command struct {
	client  *osrm.Client
	out     io.Writer
	log     zerolog.Logger
	debug   bool
	profile osrm.Profile
}

// generalFlags registers the options shared by every service but tile.
type generalFlags struct {
	radiuses      *string
	bearings      *string
	approaches    *string
	exclude       *string
	snapping      *string
	noHints       *bool
	skipWaypoints *bool
}

func newFlagSet(name string) (*flag.FlagSet, *generalFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs, &generalFlags{
		radiuses:      fs.String("radiuses", "", "per coordinate radius in meters or 'unlimited', separated by ';'"),
		bearings:      fs.String("bearings", "", "per coordinate value,range pairs separated by ';'"),
		approaches:    fs.String("approaches", "", "per coordinate 'curb' or 'unrestricted', separated by ';'"),
		exclude:       fs.String("exclude", "", "road classes to avoid, separated by ','"),
		snapping:      fs.String("snapping", "", "'default' or 'any'"),
		noHints:       fs.Bool("no-hints", false, "do not generate hints"),
		skipWaypoints: fs.Bool("skip-waypoints", false, "omit waypoints from the response"),
	}
}

func (g *generalFlags) options() (osrm.GeneralOptions, error) {
	opts := osrm.GeneralOptions{
		Snapping:      osrm.Snapping(*g.snapping),
		SkipWaypoints: *g.skipWaypoints,
	}
	if *g.noHints {
		opts.GenerateHints = osrm.Bool(false)
	}
	if *g.exclude != "" {
		opts.Exclude = strings.Split(*g.exclude, ",")
	}
	if *g.approaches != "" {
		for _, a := range strings.Split(*g.approaches, ";") {
			opts.Approaches = append(opts.Approaches, osrm.Approach(a))
		}
	}

	var err error
	if opts.Radiuses, err = parseRadiuses(*g.radiuses); err != nil {
		return opts, err
	}
	if opts.Bearings, err = parseBearings(*g.bearings); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c command) nearest(ctx context.Context, args []string) error {
	fs, general := newFlagSet("nearest")
	number := fs.Int("number", 0, "number of nearest segments to return")
	coords, opts, err := parse(fs, general, args)
	if err != nil {
		return err
	}
	if _, ok := coords.(osrm.Single); !ok {
		return usagef("nearest takes exactly one lon,lat coordinate")
	}

	req := osrm.NearestRequest{Profile: c.profile, Coordinates: coords, GeneralOptions: opts}
	if *number > 0 {
		req.Number = number
	}
	if c.debug {
		return c.raw(ctx, req)
	}
	resp, err := c.client.Nearest(ctx, req)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func (c command) route(ctx context.Context, args []string) error {
	fs, general := newFlagSet("route")
	alternatives := fs.Int("alternatives", 0, "maximum number of alternative routes")
	steps := fs.Bool("steps", false, "return turn-by-turn steps")
	geometries := fs.String("geometries", "", "polyline, polyline6 or geojson")
	overview := fs.String("overview", "", "simplified, full or false")
	annotations := fs.String("annotations", "", "true, false or a single annotation name")
	continueStraight := fs.String("continue-straight", "", "true or false; unset uses the profile default")
	coords, opts, err := parse(fs, general, args)
	if err != nil {
		return err
	}

	req := osrm.RouteRequest{
		Profile:        c.profile,
		Coordinates:    coords,
		GeneralOptions: opts,
		Steps:          *steps,
		Geometries:     osrm.Geometries(*geometries),
		Overview:       osrm.Overview(*overview),
		Annotations:    osrm.RouteAnnotations(*annotations),
	}
	if *alternatives > 0 {
		req.Alternatives = osrm.AlternativesUpTo(*alternatives)
	}
	if *continueStraight != "" {
		v, err := strconv.ParseBool(*continueStraight)
		if err != nil {
			return usagef("continue-straight: %v", err)
		}
		req.ContinueStraight = &v
	}

	if c.debug {
		return c.raw(ctx, req)
	}
	resp, err := c.client.Route(ctx, req)
	if err != nil {
		return err
	}
	for i, route := range resp.Routes {
		c.logExtent(fmt.Sprintf("route %d", i), route.Geometry, req.Geometries)
	}
	return c.print(resp)
}

func (c command) table(ctx context.Context, args []string) error {
	fs, general := newFlagSet("table")
	sources := fs.String("sources", "", "source coordinate indices separated by ';'")
	destinations := fs.String("destinations", "", "destination coordinate indices separated by ';'")
	annotations := fs.String("annotations", "", "duration, distance or duration,distance")
	fallbackSpeed := fs.Float64("fallback-speed", 0, "crow-flies speed in m/s for unroutable pairs")
	scaleFactor := fs.Float64("scale-factor", 0, "factor applied to durations")
	coords, opts, err := parse(fs, general, args)
	if err != nil {
		return err
	}

	req := osrm.TableRequest{
		Profile:        c.profile,
		Coordinates:    coords,
		GeneralOptions: opts,
		Annotations:    osrm.TableAnnotations(*annotations),
	}
	if req.Sources, err = parseIndices(*sources); err != nil {
		return usagef("sources: %v", err)
	}
	if req.Destinations, err = parseIndices(*destinations); err != nil {
		return usagef("destinations: %v", err)
	}
	if *fallbackSpeed > 0 {
		req.FallbackSpeed = osrm.Float32(float32(*fallbackSpeed))
	}
	if *scaleFactor > 0 {
		req.ScaleFactor = osrm.Float32(float32(*scaleFactor))
	}

	if c.debug {
		return c.raw(ctx, req)
	}
	resp, err := c.client.Table(ctx, req)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func (c command) match(ctx context.Context, args []string) error {
	fs, general := newFlagSet("match")
	steps := fs.Bool("steps", false, "return turn-by-turn steps")
	geometries := fs.String("geometries", "", "polyline, polyline6 or geojson")
	overview := fs.String("overview", "", "simplified, full or false")
	timestamps := fs.String("timestamps", "", "per coordinate UNIX timestamps separated by ';'")
	gaps := fs.String("gaps", "", "split or ignore")
	tidy := fs.Bool("tidy", false, "let the service remove redundant trace points")
	coords, opts, err := parse(fs, general, args)
	if err != nil {
		return err
	}

	req := osrm.MatchRequest{
		Profile:        c.profile,
		Coordinates:    coords,
		GeneralOptions: opts,
		Steps:          *steps,
		Geometries:     osrm.Geometries(*geometries),
		Overview:       osrm.Overview(*overview),
		Gaps:           osrm.Gaps(*gaps),
		Tidy:           *tidy,
	}
	if *timestamps != "" {
		for _, s := range strings.Split(*timestamps, ";") {
			ts, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return usagef("timestamps: %v", err)
			}
			req.Timestamps = append(req.Timestamps, ts)
		}
	}

	if c.debug {
		return c.raw(ctx, req)
	}
	resp, err := c.client.Match(ctx, req)
	if err != nil {
		return err
	}
	for i, m := range resp.Matchings {
		c.logExtent(fmt.Sprintf("matching %d", i), m.Geometry, req.Geometries)
	}
	return c.print(resp)
}

func (c command) trip(ctx context.Context, args []string) error {
	fs, general := newFlagSet("trip")
	roundtrip := fs.Bool("roundtrip", true, "return to the first location")
	source := fs.String("source", "", "any or first")
	destination := fs.String("destination", "", "any or last")
	steps := fs.Bool("steps", false, "return turn-by-turn steps")
	geometries := fs.String("geometries", "", "polyline, polyline6 or geojson")
	overview := fs.String("overview", "", "simplified, full or false")
	coords, opts, err := parse(fs, general, args)
	if err != nil {
		return err
	}

	req := osrm.TripRequest{
		Profile:        c.profile,
		Coordinates:    coords,
		GeneralOptions: opts,
		Roundtrip:      roundtrip,
		Source:         osrm.TripSource(*source),
		Destination:    osrm.TripDestination(*destination),
		Steps:          *steps,
		Geometries:     osrm.Geometries(*geometries),
		Overview:       osrm.Overview(*overview),
	}

	if c.debug {
		return c.raw(ctx, req)
	}
	resp, err := c.client.Trip(ctx, req)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func (c command) tile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	x := fs.Int("x", -1, "tile column")
	y := fs.Int("y", -1, "tile row")
	z := fs.Int("z", -1, "zoom level, 12 or higher")
	outPath := fs.String("out", "", "output file (default tile_<x>_<y>_<z>.mvt)")
	if err := fs.Parse(args); err != nil {
		return usagef("tile: %v", err)
	}
	if *x < 0 || *y < 0 || *z < 0 {
		return usagef("tile: -x, -y and -z are required")
	}

	req := osrm.TileRequest{Profile: c.profile, X: *x, Y: *y, Zoom: *z}
	body, err := c.client.Tile(ctx, req)
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" {
		path = fmt.Sprintf("tile_%d_%d_%d.mvt", *x, *y, *z)
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("writing tile: %w", err)
	}

	c.log.Info().
		Str("path", path).
		Int("bytes", len(body)).
		Msg("tile written")
	_, err = fmt.Fprintln(c.out, req.ViewerURL())
	return err
}

func (c command) raw(ctx context.Context, ep osrm.Endpoint) error {
	c.log.Debug().Str("url", c.client.URL(ep)).Msg("debug request")
	body, err := c.client.Debug(ctx, ep)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, body)
	return err
}

func (c command) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logExtent logs the bounding box of a returned geometry.
func (c command) logExtent(what string, g *osrm.Geometry, format osrm.Geometries) {
	if g == nil {
		return
	}
	geom, err := g.Orb(format)
	if err != nil {
		c.log.Warn().Err(err).Str("geometry", what).Msg("could not decode geometry")
		return
	}
	if geom == nil {
		return
	}
	bound := geom.Bound()
	c.log.Info().
		Str("geometry", what).
		Floats64("min", []float64{bound.Min.Lon(), bound.Min.Lat()}).
		Floats64("max", []float64{bound.Max.Lon(), bound.Max.Lat()}).
		Msg("geometry extent")
}

func parse(fs *flag.FlagSet, general *generalFlags, args []string) (osrm.Coordinates, osrm.GeneralOptions, error) {
	if err := fs.Parse(args); err != nil {
		return nil, osrm.GeneralOptions{}, usagef("%s: %v", fs.Name(), err)
	}
	coords, err := parseCoordinates(fs.Args())
	if err != nil {
		return nil, osrm.GeneralOptions{}, usagef("%s: %v", fs.Name(), err)
	}
	opts, err := general.options()
	if err != nil {
		return nil, osrm.GeneralOptions{}, usagef("%s: %v", fs.Name(), err)
	}
	return coords, opts, nil
}

func parseCoordinates(args []string) (osrm.Coordinates, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no coordinates given")
	}

	if len(args) == 1 {
		arg := args[0]
		switch {
		case strings.HasPrefix(arg, "polyline6(") && strings.HasSuffix(arg, ")"):
			return osrm.Polyline6(arg[len("polyline6(") : len(arg)-1]), nil
		case strings.HasPrefix(arg, "polyline(") && strings.HasSuffix(arg, ")"):
			return osrm.Polyline(arg[len("polyline(") : len(arg)-1]), nil
		}
		loc, err := parseLocation(arg)
		if err != nil {
			return nil, err
		}
		return osrm.Single(loc), nil
	}

	locs := make(osrm.Multi, 0, len(args))
	for _, arg := range args {
		loc, err := parseLocation(arg)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func parseLocation(s string) (osrm.Location, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return osrm.Location{}, fmt.Errorf("coordinate %q: expected lon,lat", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 32)
	if err != nil {
		return osrm.Location{}, fmt.Errorf("coordinate %q: longitude: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 32)
	if err != nil {
		return osrm.Location{}, fmt.Errorf("coordinate %q: latitude: %w", s, err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return osrm.Location{}, fmt.Errorf("coordinate %q: out of range", s)
	}
	return osrm.NewLocation(float32(lon), float32(lat)), nil
}

func parseRadiuses(s string) ([]osrm.Radius, error) {
	if s == "" {
		return nil, nil
	}
	var out []osrm.Radius
	for _, part := range strings.Split(s, ";") {
		if part == "unlimited" {
			out = append(out, osrm.RadiusUnlimited)
			continue
		}
		meters, err := strconv.ParseFloat(part, 64)
		if err != nil || meters < 0 {
			return nil, fmt.Errorf("radius %q: expected meters or 'unlimited'", part)
		}
		out = append(out, osrm.RadiusLimited(meters))
	}
	return out, nil
}

func parseBearings(s string) ([]osrm.BearingRequest, error) {
	if s == "" {
		return nil, nil
	}
	var out []osrm.BearingRequest
	for _, part := range strings.Split(s, ";") {
		valueStr, rangeStr, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("bearing %q: expected value,range", part)
		}
		value, err := strconv.ParseUint(valueStr, 10, 16)
		if err != nil || value > 360 {
			return nil, fmt.Errorf("bearing %q: value must be within 0..360", part)
		}
		rng, err := strconv.ParseUint(rangeStr, 10, 16)
		if err != nil || rng > 180 {
			return nil, fmt.Errorf("bearing %q: range must be within 0..180", part)
		}
		out = append(out, osrm.BearingRequest{Value: uint16(value), Range: uint16(rng)})
	}
	return out, nil
}

func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ";") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("index %q: expected a non-negative integer", part)
		}
		out = append(out, i)
	}
	return out, nil
}
