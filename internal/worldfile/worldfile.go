// Package worldfile reads and writes jello world files.
//
// A world file is whitespace-separated text:
//
//	<integrator>                  Euler or RK4
//	<dt> <n>                      timestep, steps per displayed frame
//	<kElastic> <dElastic> <kCollision> <dCollision>
//	<mass>
//	<0 | 1>                       inclined plane present
//	[<a> <b> <c> <d>]             plane coefficients, only when present
//	<resolution>
//	resolution³ lines of "fx fy fz"
//	N³ lines of positions, then N³ lines of velocities
//
// Force field samples and lattice points are listed with the first index
// outermost and the last innermost. The lattice side N is inferred from
// the number of trailing triples.
package worldfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/jellosim/internal/dynamo"
)

// World is the content of one world file.
type World struct {
	Params  *dynamo.Params
	Lattice *dynamo.Lattice
}

func Load(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func Save(path string, w *World) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, w); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type scanner struct {
	s     *bufio.Scanner
	token int
}

func (sc *scanner) next() (string, error) {
	if !sc.s.Scan() {
		if err := sc.s.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of file after %d values", dynamo.ErrMalformedWorld, sc.token)
	}
	sc.token++
	return sc.s.Text(), nil
}

func (sc *scanner) float() (float64, error) {
	tok, err := sc.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %d: %v", dynamo.ErrMalformedWorld, sc.token, err)
	}
	return v, nil
}

func (sc *scanner) int() (int, error) {
	tok, err := sc.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: value %d: %v", dynamo.ErrMalformedWorld, sc.token, err)
	}
	return v, nil
}

func (sc *scanner) floats(dst ...*float64) error {
	for _, d := range dst {
		v, err := sc.float()
		if err != nil {
			return err
		}
		*d = v
	}
	return nil
}

func (sc *scanner) vec() (dynamo.Vec, error) {
	var v dynamo.Vec
	err := sc.floats(&v.X, &v.Y, &v.Z)
	return v, err
}

// remaining parses every value left in the input.
func (sc *scanner) remaining() ([]float64, error) {
	var vals []float64
	for sc.s.Scan() {
		sc.token++
		v, err := strconv.ParseFloat(sc.s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %v", dynamo.ErrMalformedWorld, sc.token, err)
		}
		vals = append(vals, v)
	}
	return vals, sc.s.Err()
}

// latticeSide returns N such that count == 6·N³ (positions and velocities
// of N³ points).
func latticeSide(count int) (int, error) {
	if count%6 == 0 {
		points := count / 6
		n := int(math.Round(math.Cbrt(float64(points))))
		if n >= 2 && n*n*n == points {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %d trailing values do not describe the positions and velocities of an N×N×N lattice",
		dynamo.ErrMalformedWorld, count)
}

func Read(r io.Reader) (*World, error) {
	sc := &scanner{s: bufio.NewScanner(r)}
	sc.s.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.s.Split(bufio.ScanWords)

	p := &dynamo.Params{}

	name, err := sc.next()
	if err != nil {
		return nil, err
	}
	if p.Integrator, err = dynamo.ParseIntegrator(name); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrMalformedWorld, err)
	}

	if p.Dt, err = sc.float(); err != nil {
		return nil, err
	}
	if p.Substeps, err = sc.int(); err != nil {
		return nil, err
	}
	if err := sc.floats(&p.KElastic, &p.DElastic, &p.KCollision, &p.DCollision, &p.Mass); err != nil {
		return nil, err
	}

	plane, err := sc.int()
	if err != nil {
		return nil, err
	}
	switch plane {
	case 0:
	case 1:
		p.Plane = &dynamo.Plane{}
		if err := sc.floats(&p.Plane.A, &p.Plane.B, &p.Plane.C, &p.Plane.D); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: inclined plane flag must be 0 or 1, got %d", dynamo.ErrMalformedWorld, plane)
	}

	if p.Resolution, err = sc.int(); err != nil {
		return nil, err
	}
	if p.Resolution < 0 || p.Resolution > dynamo.MaxResolution {
		return nil, fmt.Errorf("%w: resolution %d outside [0, %d]", dynamo.ErrMalformedWorld, p.Resolution, dynamo.MaxResolution)
	}
	// grow with the input so a truncated file fails before a large allocation
	samples := p.Resolution * p.Resolution * p.Resolution
	p.Field = make([]dynamo.Vec, 0, min(samples, 1<<12))
	for len(p.Field) < samples {
		v, err := sc.vec()
		if err != nil {
			return nil, err
		}
		p.Field = append(p.Field, v)
	}

	rest, err := sc.remaining()
	if err != nil {
		return nil, err
	}

	n, err := latticeSide(len(rest))
	if err != nil {
		return nil, err
	}
	l := dynamo.NewLattice(n)
	for i := range l.Pos {
		l.Pos[i] = dynamo.Vec{X: rest[3*i], Y: rest[3*i+1], Z: rest[3*i+2]}
	}
	off := 3 * len(l.Pos)
	for i := range l.Vel {
		l.Vel[i] = dynamo.Vec{X: rest[off+3*i], Y: rest[off+3*i+1], Z: rest[off+3*i+2]}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &World{Params: p, Lattice: l}, nil
}

func Write(w io.Writer, world *World) error {
	bw := bufio.NewWriter(w)
	p := world.Params

	fmt.Fprintln(bw, p.Integrator)
	fmt.Fprintf(bw, "%s %d\n", ftoa(p.Dt), p.Substeps)
	fmt.Fprintf(bw, "%s %s %s %s\n", ftoa(p.KElastic), ftoa(p.DElastic), ftoa(p.KCollision), ftoa(p.DCollision))
	fmt.Fprintln(bw, ftoa(p.Mass))

	if p.Plane != nil {
		fmt.Fprintln(bw, 1)
		fmt.Fprintf(bw, "%s %s %s %s\n", ftoa(p.Plane.A), ftoa(p.Plane.B), ftoa(p.Plane.C), ftoa(p.Plane.D))
	} else {
		fmt.Fprintln(bw, 0)
	}

	fmt.Fprintln(bw, p.Resolution)
	for _, v := range p.Field {
		writeVec(bw, v)
	}

	for _, v := range world.Lattice.Pos {
		writeVec(bw, v)
	}
	for _, v := range world.Lattice.Vel {
		writeVec(bw, v)
	}

	return bw.Flush()
}

func writeVec(w io.Writer, v dynamo.Vec) {
	fmt.Fprintf(w, "%s %s %s\n", ftoa(v.X), ftoa(v.Y), ftoa(v.Z))
}

// ftoa formats v with the fewest digits that parse back to exactly v.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
