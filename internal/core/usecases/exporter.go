package usecases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	kml "github.com/twpayne/go-kml/v3"

	"github.com/samirrijal/missionsketch/internal/core/domain"
	"github.com/samirrijal/missionsketch/internal/pkg/geospatial"
)

const (
	csvHeader     = "WP,Latitude,Longitude,Distance (m)"
	polygonMarker = "Polygon"
)

// ErrUnsupportedFormat is returned for an unknown export format name.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter renders a route into a downloadable file.
type Exporter interface {
	Format() string
	Export(ctx context.Context, route *domain.Route) (domain.ExportFile, error)
}

// NewExporter returns the exporter for a format name ("csv" when empty).
func NewExporter(format string, distance geospatial.Calculator) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return &CSVExporter{Distance: distance}, nil
	case "geojson":
		return &GeoJSONExporter{Distance: distance}, nil
	case "kml":
		return &KMLExporter{Name: "Mission"}, nil
	case "gpx":
		return &GPXExporter{Name: "Mission"}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

func requireExportable(route *domain.Route) error {
	if route.Len() < 2 {
		return fmt.Errorf("route has %d element(s), need at least 2: %w", route.Len(), domain.ErrInsufficientData)
	}
	return nil
}

// distanceToNext is 0 for the last element and for any leg touching a polygon.
func distanceToNext(route *domain.Route, i int, distance geospatial.Calculator) float64 {
	if i+1 >= route.Len() {
		return 0
	}
	cur, next := route.At(i), route.At(i+1)
	if cur.IsPolygon() || next.IsPolygon() {
		return 0
	}
	return distance(cur.Point, next.Point)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVExporter writes one row per route element with the distance to the next one.
type CSVExporter struct {
	Distance geospatial.Calculator
}

func (e *CSVExporter) Format() string { return "csv" }

func (e *CSVExporter) Export(_ context.Context, route *domain.Route) (domain.ExportFile, error) {
	if err := requireExportable(route); err != nil {
		return domain.ExportFile{}, err
	}

	rows := make([]string, 0, route.Len()+1)
	rows = append(rows, csvHeader)
	for i, el := range route.All() {
		x, y := polygonMarker, ""
		if !el.IsPolygon() {
			x, y = formatNumber(el.Point.X), formatNumber(el.Point.Y)
		}
		d := distanceToNext(route, i, e.Distance)
		rows = append(rows, strings.Join([]string{waypointLabel(i), x, y, formatNumber(d)}, ","))
	}

	return domain.ExportFile{
		Name:     "coordinates.csv",
		MIMEType: "text/csv",
		Data:     []byte(strings.Join(rows, "\n")),
	}, nil
}

// GeoJSONExporter writes the route path, its waypoints and its polygons as a FeatureCollection.
// Positions are [second, first] component so that the Longitude column maps to GeoJSON x.
type GeoJSONExporter struct {
	Distance geospatial.Calculator
}

func (e *GeoJSONExporter) Format() string { return "geojson" }

func (e *GeoJSONExporter) Export(_ context.Context, route *domain.Route) (domain.ExportFile, error) {
	if err := requireExportable(route); err != nil {
		return domain.ExportFile{}, err
	}

	fc := geojson.NewFeatureCollection()
	var path orb.LineString
	features := make([]*geojson.Feature, 0, route.Len())
	for i, el := range route.All() {
		if el.IsPolygon() {
			ring := make(orb.Ring, 0, len(el.Ring))
			for _, c := range el.Ring {
				ring = append(ring, toOrb(c))
			}
			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties["wp"] = waypointLabel(i)
			f.Properties["kind"] = "polygon"
			features = append(features, f)
			continue
		}
		p := toOrb(el.Point)
		path = append(path, p)
		f := geojson.NewFeature(p)
		f.Properties["wp"] = waypointLabel(i)
		f.Properties["kind"] = "waypoint"
		f.Properties["distance"] = distanceToNext(route, i, e.Distance)
		features = append(features, f)
	}

	if len(path) >= 2 {
		line := geojson.NewFeature(path)
		line.Properties["kind"] = "route"
		fc.Append(line)
	}
	for _, f := range features {
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("marshal geojson: %w", err)
	}
	return domain.ExportFile{
		Name:     "mission.geojson",
		MIMEType: "application/geo+json",
		Data:     data,
	}, nil
}

func toOrb(c domain.Coordinate) orb.Point {
	return orb.Point{c.Y, c.X}
}

// KMLExporter writes the route as a KML document with one placemark per element.
type KMLExporter struct {
	Name string
}

func (e *KMLExporter) Format() string { return "kml" }

func (e *KMLExporter) Export(_ context.Context, route *domain.Route) (domain.ExportFile, error) {
	if err := requireExportable(route); err != nil {
		return domain.ExportFile{}, err
	}

	elements := []kml.Element{kml.Name(e.Name)}
	var path []kml.Coordinate
	for i, el := range route.All() {
		if el.IsPolygon() {
			ring := make([]kml.Coordinate, 0, len(el.Ring))
			for _, c := range el.Ring {
				ring = append(ring, toKML(c))
			}
			elements = append(elements, kml.Placemark(
				kml.Name(waypointLabel(i)+" "+polygonMarker),
				kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ring...)))),
			))
			continue
		}
		c := toKML(el.Point)
		path = append(path, c)
		elements = append(elements, kml.Placemark(
			kml.Name(waypointLabel(i)),
			kml.Point(kml.Coordinates(c)),
		))
	}
	if len(path) >= 2 {
		elements = append(elements, kml.Placemark(
			kml.Name("Route"),
			kml.LineString(kml.Coordinates(path...)),
		))
	}

	var buf bytes.Buffer
	if err := kml.KML(kml.Document(elements...)).WriteIndent(&buf, "", "  "); err != nil {
		return domain.ExportFile{}, fmt.Errorf("write kml: %w", err)
	}
	return domain.ExportFile{
		Name:     "mission.kml",
		MIMEType: "application/vnd.google-earth.kml+xml",
		Data:     buf.Bytes(),
	}, nil
}

func toKML(c domain.Coordinate) kml.Coordinate {
	return kml.Coordinate{Lon: c.Y, Lat: c.X}
}

// GPXExporter writes the waypoints as a GPX route and each polygon as a closed track.
type GPXExporter struct {
	Name string
}

func (e *GPXExporter) Format() string { return "gpx" }

func (e *GPXExporter) Export(_ context.Context, route *domain.Route) (domain.ExportFile, error) {
	if err := requireExportable(route); err != nil {
		return domain.ExportFile{}, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	gpx := doc.CreateElement("gpx")
	gpx.CreateAttr("xmlns", "http://www.topografix.com/GPX/1/1")
	gpx.CreateAttr("version", "1.1")
	gpx.CreateAttr("creator", "missionsketch")

	rte := gpx.CreateElement("rte")
	rte.CreateElement("name").SetText(e.Name)
	for i, el := range route.All() {
		if el.IsPolygon() {
			trk := gpx.CreateElement("trk")
			trk.CreateElement("name").SetText(waypointLabel(i) + " " + polygonMarker)
			seg := trk.CreateElement("trkseg")
			for _, c := range el.Ring {
				gpxPoint(seg, "trkpt", c)
			}
			continue
		}
		pt := gpxPoint(rte, "rtept", el.Point)
		pt.CreateElement("name").SetText(waypointLabel(i))
	}

	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return domain.ExportFile{}, fmt.Errorf("write gpx: %w", err)
	}
	return domain.ExportFile{
		Name:     "mission.gpx",
		MIMEType: "application/gpx+xml",
		Data:     buf.Bytes(),
	}, nil
}

func gpxPoint(parent *etree.Element, tag string, c domain.Coordinate) *etree.Element {
	pt := parent.CreateElement(tag)
	pt.CreateAttr("lat", formatNumber(c.X))
	pt.CreateAttr("lon", formatNumber(c.Y))
	return pt
}
