package dynamo

// Lattice is an N×N×N grid of point masses. Point (i,j,k) lives at flat
// index (i*N+j)*N+k of the embedded State buffers.
type Lattice struct {
	N int
	State
}

func NewLattice(n int) *Lattice {
	return &Lattice{N: n, State: NewState(n * n * n)}
}

// Index returns the flat buffer index of (i,j,k). No bounds are checked.
func (l *Lattice) Index(i, j, k int) int {
	return (i*l.N+j)*l.N + k
}

// Coords is the inverse of Index.
func (l *Lattice) Coords(idx int) (i, j, k int) {
	k = idx % l.N
	j = (idx / l.N) % l.N
	i = idx / (l.N * l.N)
	return i, j, k
}

func (l *Lattice) InBounds(i, j, k int) bool {
	return i >= 0 && i < l.N && j >= 0 && j < l.N && k >= 0 && k < l.N
}

// Spacing is the rest distance between structural neighbours, 1/(N-1).
func (l *Lattice) Spacing() float64 {
	return Spacing(l.N)
}

func Spacing(n int) float64 {
	return 1.0 / float64(n-1)
}

func (l *Lattice) Clone() *Lattice {
	return &Lattice{N: l.N, State: l.State.Clone()}
}

// Fill sets every point to pos(i,j,k) and zero velocity.
func (l *Lattice) Fill(pos func(i, j, k int) Vec) {
	for i := 0; i < l.N; i++ {
		for j := 0; j < l.N; j++ {
			for k := 0; k < l.N; k++ {
				idx := l.Index(i, j, k)
				l.Pos[idx] = pos(i, j, k)
				l.Vel[idx] = Vec{}
			}
		}
	}
}
