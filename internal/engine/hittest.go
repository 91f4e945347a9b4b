package engine

import (
	"log/slog"

	"github.com/rclancey/earcut"

	"github.com/inamate/vecdraw/internal/geom"
)

// triangulate ear-clips each polygon into triangles for hit testing.
// Polygons earcut rejects are logged and left out of the mesh.
func triangulate(polys []geom.Polygon) []geom.Triangle {
	var mesh []geom.Triangle
	for _, pg := range polys {
		if len(pg) < 3 {
			continue
		}
		coords := make([]float64, 0, len(pg)*2)
		for _, p := range pg {
			coords = append(coords, p.X, p.Y)
		}

		indices, err := earcut.Earcut(coords, nil, 2)
		if err != nil {
			slog.Debug("triangulate outline", "vertices", len(pg), "error", err)
			continue
		}

		for i := 0; i+2 < len(indices); i += 3 {
			mesh = append(mesh, geom.Triangle{
				pg[indices[i]], pg[indices[i+1]], pg[indices[i+2]],
			})
		}
	}
	return mesh
}

// meshContains reports whether any triangle of the mesh contains p.
func meshContains(mesh []geom.Triangle, p geom.Point) bool {
	for _, t := range mesh {
		if t.Contains(p) {
			return true
		}
	}
	return false
}
