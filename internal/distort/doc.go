// Package distort implements free-form quadrilateral distortion of a shape.
//
// A distortion wraps a Shape and four user-placed corner points. The shape's
// bounding box is split into four triangles meeting at its midpoint (upper,
// right, lower, left) and the quad into four triangles meeting at the
// junction of its diagonals. One affine map is fitted per region; because
// every pair shares the midpoint→junction correspondence the pieces join
// without seams, even when the quad is concave or self-intersecting.
//
// An Engine has a single writer. Every mutation recomputes the junction and
// the region maps synchronously; nothing is cached beyond that.
package distort
