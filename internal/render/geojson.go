package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/location-mapper/internal/domain"
)

// GeoJSON writes points as a GeoJSON FeatureCollection, one Point
// feature per placed point with name, provider, and cluster properties.
// This is the rich renderer: any map viewer can load its output.
type GeoJSON struct {
	w io.Writer
}

func NewGeoJSON(w io.Writer) *GeoJSON {
	return &GeoJSON{w: w}
}

func (g *GeoJSON) Name() string { return "geojson" }

func (g *GeoJSON) Render(points []domain.PlacedPoint) error {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]geoFeature, len(points))}
	for i, p := range points {
		fc.Features[i] = geoFeature{
			Type: "Feature",
			Geometry: geoGeometry{
				Type: "Point",
				// GeoJSON positions are [lon, lat].
				Coordinates: [2]float64{p.Coordinates.Lon, p.Coordinates.Lat},
			},
			Properties: geoProperties{
				Name:      p.Name,
				Address:   p.Address,
				Provider:  p.Provider,
				ClusterID: p.ClusterID,
			},
		}
	}

	enc := json.NewEncoder(g.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode feature collection: %w", err)
	}
	return nil
}

type featureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string        `json:"type"`
	Geometry   geoGeometry   `json:"geometry"`
	Properties geoProperties `json:"properties"`
}

type geoGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type geoProperties struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Provider  string `json:"provider"`
	ClusterID int    `json:"cluster_id"`
}
