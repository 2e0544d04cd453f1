package vecmath

import "math"

// MaxHashCoord bounds the coordinates for which Hash3 is guaranteed to be
// collision free. Beyond it the nested pairing overflows 64 bits.
const MaxHashCoord = 1 << 14

// Hash2 pairs two signed integers into one (signed Szudzik pairing).
// Each input is folded onto the naturals (n >= 0 -> 2n, n < 0 -> -2n-1),
// the folded pair is Szudzik-paired and halved, and pairs whose inputs share
// a sign land on the non-negative side while mixed-sign pairs land on the
// negative side. The mapping is a bijection Z² -> Z.
func Hash2(a, b int64) int64 {
	A := fold(a)
	B := fold(b)
	var s uint64
	if A >= B {
		s = A*A + A + B
	} else {
		s = A + B*B
	}
	c := int64(s / 2)
	if (a < 0) == (b < 0) {
		return c
	}
	return -c - 1
}

func fold(n int64) uint64 {
	if n >= 0 {
		return uint64(2 * n)
	}
	return uint64(-2*n - 1)
}

// Hash3 combines three grid coordinates into one key.
func Hash3(x, y, z int64) int64 {
	return Hash2(x, Hash2(y, z))
}

// GridCoord returns the integer cell coordinates containing p.
func GridCoord(p Vec, cellSize float64) (x, y, z int64) {
	return floorInt(p.X / cellSize), floorInt(p.Y / cellSize), floorInt(p.Z / cellSize)
}

// CellHash returns the hash of the grid cell containing p.
func CellHash(p Vec, cellSize float64) int64 {
	return Hash3(GridCoord(p, cellSize))
}

func floorInt(f float64) int64 {
	return int64(math.Floor(f))
}

// IterateTo calls fn for every integer lattice point of the box spanned by a
// and b (both inclusive), x outermost and z innermost.
func IterateTo(a, b Vec, fn func(x, y, z int64)) {
	xm, xM := span(a.X, b.X)
	ym, yM := span(a.Y, b.Y)
	zm, zM := span(a.Z, b.Z)
	for i := xm; i <= xM; i++ {
		for j := ym; j <= yM; j++ {
			for k := zm; k <= zM; k++ {
				fn(i, j, k)
			}
		}
	}
}

func span(a, b float64) (int64, int64) {
	if a > b {
		a, b = b, a
	}
	return floorInt(a), floorInt(b)
}
