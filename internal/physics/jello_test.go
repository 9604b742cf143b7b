package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/jellosim/internal/dynamo"
	"github.com/san-kum/jellosim/internal/integrators"
	"github.com/san-kum/jellosim/internal/physics"
)

func restCube(n int) *dynamo.Lattice {
	l := dynamo.NewLattice(n)
	h := l.Spacing()
	l.Fill(func(i, j, k int) dynamo.Vec {
		return dynamo.Vec{X: float64(i) * h, Y: float64(j) * h, Z: float64(k) * h}
	})
	return l
}

func cubeParams() *dynamo.Params {
	return &dynamo.Params{
		Integrator: dynamo.Euler,
		Dt:         0.0005,
		Substeps:   1,
		KElastic:   100,
		DElastic:   0.1,
		KCollision: 400,
		DCollision: 0.25,
		Mass:       0.002,
		Field:      []dynamo.Vec{},
	}
}

var _ = Describe("SpringForce", func() {
	a := dynamo.Vec{}

	It("is zero at rest length", func() {
		var f dynamo.Vec
		physics.SpringForce(a, dynamo.Vec{X: 0.5}, dynamo.Vec{}, dynamo.Vec{}, 0.5, 1000, 10, &f)
		Expect(f).To(Equal(dynamo.Vec{}))
	})

	It("pulls a stretched spring together", func() {
		var f dynamo.Vec
		physics.SpringForce(dynamo.Vec{X: 1}, a, dynamo.Vec{}, dynamo.Vec{}, 0.5, 10, 0, &f)
		Expect(f.X).To(BeNumerically("~", -5, 1e-12))
		Expect(f.Y).To(BeZero())
		Expect(f.Z).To(BeZero())
	})

	It("pushes a compressed spring apart", func() {
		var f dynamo.Vec
		physics.SpringForce(dynamo.Vec{X: 0.25}, a, dynamo.Vec{}, dynamo.Vec{}, 0.5, 10, 0, &f)
		Expect(f.X).To(BeNumerically("~", 2.5, 1e-12))
	})

	DescribeTable("points the force along the spring by the sign of the length error",
		func(length float64) {
			const rest, k = 0.5, 10.0
			dir := dynamo.Vec{X: 1.0 / 3, Y: 2.0 / 3, Z: -2.0 / 3}
			var f dynamo.Vec
			physics.SpringForce(r3.Scale(length, dir), a, dynamo.Vec{}, dynamo.Vec{}, rest, k, 0, &f)

			along := r3.Dot(f, dir)
			Expect(along).To(BeNumerically("~", -k*(length-rest), 1e-12))
			if length > rest {
				Expect(along).To(BeNumerically("<", 0))
			} else {
				Expect(along).To(BeNumerically(">", 0))
			}
			Expect(math.Sqrt(r3.Norm2(r3.Sub(f, r3.Scale(along, dir))))).To(BeNumerically("<", 1e-12))
		},
		Entry("nearly collapsed", 0.01),
		Entry("half compressed", 0.25),
		Entry("just short", 0.49),
		Entry("just long", 0.51),
		Entry("half again", 0.75),
		Entry("doubled", 1.0),
		Entry("far stretched", 3.0),
	)

	It("is equal and opposite on the two endpoints", func() {
		p1, p2 := dynamo.Vec{X: 0.3, Y: 0.1, Z: -0.2}, dynamo.Vec{X: -0.1, Y: 0.4, Z: 0.2}
		v1, v2 := dynamo.Vec{X: 1}, dynamo.Vec{Y: -2}
		var f1, f2 dynamo.Vec
		physics.SpringForce(p1, p2, v1, v2, 0.3, 50, 2, &f1)
		physics.SpringForce(p2, p1, v2, v1, 0.3, 50, 2, &f2)
		sum := r3.Add(f1, f2)
		Expect(math.Sqrt(r3.Norm2(sum))).To(BeNumerically("<", 1e-12))
	})

	It("damps relative velocity along the spring only", func() {
		var f dynamo.Vec
		physics.SpringForce(dynamo.Vec{X: 0.5}, a, dynamo.Vec{Y: 3}, dynamo.Vec{}, 0.5, 10, 4, &f)
		Expect(f).To(Equal(dynamo.Vec{}))

		f = dynamo.Vec{}
		physics.SpringForce(dynamo.Vec{X: 0.5}, a, dynamo.Vec{X: 3}, dynamo.Vec{}, 0.5, 10, 4, &f)
		Expect(f.X).To(BeNumerically("~", -12, 1e-12))
	})

	It("ignores coincident endpoints", func() {
		f := dynamo.Vec{X: 1, Y: 2, Z: 3}
		physics.SpringForce(a, dynamo.Vec{X: 1e-9}, dynamo.Vec{X: 5}, dynamo.Vec{}, 0.5, 1000, 10, &f)
		Expect(f).To(Equal(dynamo.Vec{X: 1, Y: 2, Z: 3}))
	})
})

var _ = Describe("CollisionForce", func() {
	It("pushes a point back through the wall it crossed", func() {
		var f dynamo.Vec
		physics.CollisionForce(dynamo.Vec{X: -3}, dynamo.Vec{}, 10, 0, &f)
		Expect(f).To(Equal(dynamo.Vec{X: 10}))
	})

	It("applies nothing inside the box", func() {
		var f dynamo.Vec
		physics.CollisionForce(dynamo.Vec{}, dynamo.Vec{X: -100}, 10, 5, &f)
		Expect(f).To(Equal(dynamo.Vec{}))
		Expect(physics.Inside(dynamo.Vec{X: 2, Y: -2})).To(BeTrue())
	})

	It("damps only velocity heading further out", func() {
		var in, out dynamo.Vec
		physics.CollisionForce(dynamo.Vec{Z: 2.5}, dynamo.Vec{Z: -1}, 10, 4, &in)
		physics.CollisionForce(dynamo.Vec{Z: 2.5}, dynamo.Vec{Z: 1}, 10, 4, &out)
		Expect(in.Z).To(BeNumerically("~", -5, 1e-12))
		Expect(out.Z).To(BeNumerically("~", -9, 1e-12))
	})

	It("acts on every crossed axis at a corner", func() {
		var f dynamo.Vec
		physics.CollisionForce(dynamo.Vec{X: 3, Y: -3, Z: 3}, dynamo.Vec{}, 10, 0, &f)
		Expect(f).To(Equal(dynamo.Vec{X: -10, Y: 10, Z: -10}))
		Expect(physics.Inside(dynamo.Vec{X: 3})).To(BeFalse())
	})
})

var _ = Describe("Jello", func() {
	var (
		params *dynamo.Params
		cube   *dynamo.Lattice
	)

	BeforeEach(func() {
		params = cubeParams()
		cube = restCube(8)
	})

	It("has negligible force at rest", func() {
		j := physics.NewJello(8, params)
		acc := make([]dynamo.Vec, len(cube.Pos))
		j.Accelerations(cube.State, acc)
		for _, a := range acc {
			Expect(math.Sqrt(r3.Norm2(a))).To(BeNumerically("<", 1e-6))
		}
	})

	It("stays put for 100 Euler steps at equilibrium", func() {
		start := cube.Clone()
		j := physics.NewJello(8, params)
		euler := integrators.NewEuler()
		for range 100 {
			euler.Step(j, &cube.State, params.Dt)
		}
		for i := range cube.Pos {
			d := r3.Sub(cube.Pos[i], start.Pos[i])
			Expect(math.Sqrt(r3.Norm2(d))).To(BeNumerically("<", 1e-9))
		}
	})

	It("adds the sampled field divided by mass", func() {
		params.Resolution = 2
		params.Field = make([]dynamo.Vec, 8)
		for i := range params.Field {
			params.Field[i] = dynamo.Vec{Z: -0.02}
		}
		j := physics.NewJello(8, params)
		acc := make([]dynamo.Vec, len(cube.Pos))
		j.Accelerations(cube.State, acc)
		for _, a := range acc {
			Expect(a.Z).To(BeNumerically("~", -10, 1e-6))
		}
	})

	It("pulls a displaced corner back toward the cube", func() {
		corner := cube.Index(7, 7, 7)
		cube.Pos[corner] = r3.Add(cube.Pos[corner], dynamo.Vec{X: 0.05})
		f := physics.NewJello(8, params).Force(cube.State, 7, 7, 7)
		Expect(f.X).To(BeNumerically("<", 0))
	})

	It("conserves energy approximately without damping", func() {
		params.DElastic = 0
		params.Dt = 0.0001
		params.Integrator = dynamo.RK4
		cube.Pos[0] = dynamo.Vec{X: -0.02, Y: -0.02, Z: -0.02}
		e0 := physics.TotalEnergy(cube, params)

		j := physics.NewJello(8, params)
		rk4 := integrators.NewRK4()
		for range 200 {
			rk4.Step(j, &cube.State, params.Dt)
		}
		e1 := physics.TotalEnergy(cube, params)
		Expect(math.Abs(e1-e0) / e0).To(BeNumerically("<", 1e-3))
	})
})
