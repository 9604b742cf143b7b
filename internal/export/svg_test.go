package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/sim"
)

func TestSeriesToSVG(t *testing.T) {
	frames := []sim.Frame{
		{Step: 0, Time: 0, Values: []float64{1, 10}},
		{Step: 5, Time: 0.5, Values: []float64{2, 20}},
		{Step: 10, Time: 1, Values: []float64{1.5, 30}},
	}

	svg := SeriesToSVG(frames, 1, 200, 100, "#00ff88")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 3 path points, got %q", svg)
	}

	if SeriesToSVG(frames[:1], 0, 200, 100, "#fff") != "" {
		t.Error("a single point should produce no svg")
	}
	if SeriesToSVG(frames, 5, 200, 100, "#fff") != "" {
		t.Error("a missing column should produce no svg")
	}
}

func TestLatticeToSVG(t *testing.T) {
	l := dynamo.NewLattice(3)
	h := l.Spacing()
	l.Fill(func(i, j, k int) dynamo.Vec {
		return dynamo.Vec{X: float64(i) * h, Y: float64(j) * h, Z: float64(k) * h}
	})

	var buf bytes.Buffer
	if err := LatticeToSVG(&buf, l, 400, "#00ccff"); err != nil {
		t.Fatal(err)
	}

	want := len(dynamo.Structural.Links(l))
	if got := strings.Count(buf.String(), "<line "); got != want {
		t.Errorf("expected %d springs, got %d", want, got)
	}
}
