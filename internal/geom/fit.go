package geom

// Fit solves the affine matrix M with M·src[i] = tgt[i] for i in 0..2.
//
// The source points are taken in homogeneous form (x, y, 1) and the system is
// solved with Cramer's rule: each coefficient is the ratio of a 3×3
// determinant to the shared source determinant. ok is false when that
// determinant is exactly zero, i.e. the source points are collinear. Nearly
// collinear sources produce large but well-defined coefficients.
func Fit(src0, src1, src2, tgt0, tgt1, tgt2 Point) (m Matrix2D, ok bool) {
	xs := [3]float64{src0.X, src1.X, src2.X}
	ys := [3]float64{src0.Y, src1.Y, src2.Y}

	det := det3ones(xs, ys)
	if det == 0 {
		return Matrix2D{}, false
	}

	a, c, e := solveRow(xs, ys, [3]float64{tgt0.X, tgt1.X, tgt2.X}, det)
	b, d, f := solveRow(xs, ys, [3]float64{tgt0.Y, tgt1.Y, tgt2.Y}, det)
	return Matrix2D{a, b, c, d, e, f}, true
}

// FitTriangles is Fit over two triangles.
func FitTriangles(src, tgt Triangle) (Matrix2D, bool) {
	return Fit(src[0], src[1], src[2], tgt[0], tgt[1], tgt[2])
}

// solveRow solves p*x[i] + q*y[i] + r = t[i].
func solveRow(x, y, t [3]float64, det float64) (p, q, r float64) {
	p = det3ones(t, y) / det
	q = det3ones(x, t) / det
	r = det3(x, y, t) / det
	return p, q, r
}

// det3ones is the determinant of the matrix with columns (u, v, 1). The
// column of ones lets rows 1 and 2 be reduced against row 0, which keeps the
// result exactly zero when two rows coincide.
func det3ones(u, v [3]float64) float64 {
	return (u[1]-u[0])*(v[2]-v[0]) - (u[2]-u[0])*(v[1]-v[0])
}

// det3 is the determinant of the matrix with columns c0, c1, c2.
func det3(c0, c1, c2 [3]float64) float64 {
	return c0[0]*(c1[1]*c2[2]-c1[2]*c2[1]) -
		c1[0]*(c0[1]*c2[2]-c0[2]*c2[1]) +
		c2[0]*(c0[1]*c1[2]-c0[2]*c1[1])
}
