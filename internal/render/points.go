package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/location-mapper/internal/domain"
)

// PointList is the simplest renderer: a delimited table of coordinates
// and cluster labels. The last resort before giving up on rendering.
type PointList struct {
	w io.Writer
}

func NewPointList(w io.Writer) *PointList {
	return &PointList{w: w}
}

func (p *PointList) Name() string { return "point-list" }

func (p *PointList) Render(points []domain.PlacedPoint) error {
	cw := csv.NewWriter(p.w)
	if err := cw.Write([]string{"name", "latitude", "longitude", "cluster_id"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, pt := range points {
		row := []string{
			pt.Name,
			strconv.FormatFloat(pt.Coordinates.Lat, 'f', -1, 64),
			strconv.FormatFloat(pt.Coordinates.Lon, 'f', -1, 64),
			strconv.Itoa(pt.ClusterID),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
