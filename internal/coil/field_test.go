package coil_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/dynamo"
)

var _ = Describe("Params", func() {
	var p coil.Params

	BeforeEach(func() {
		p = coil.Reference()
	})

	Describe("Current", func() {
		It("starts at the bank voltage", func() {
			Expect(p.Current(0)).To(Equal(25.0))
		})

		It("decays with the RC time constant", func() {
			tau := p.TimeConstant()
			Expect(p.Current(tau)).To(BeNumerically("~", 25/math.E, 1e-12))
		})

		It("divides by the resistance for the ohmic drive", func() {
			p.Drive = coil.DriveOhmic
			Expect(p.Current(0)).To(BeNumerically("~", 2500.0, 1e-9))
		})
	})

	Describe("Field", func() {
		It("peaks at the coil center", func() {
			center := p.Field(0, 25)
			Expect(center).To(BeNumerically(">", p.Field(-p.Length/2, 25)))
			Expect(center).To(BeNumerically(">", p.Field(p.Length, 25)))
		})

		It("is symmetric about the center", func() {
			Expect(p.Field(0.013, 25)).To(BeNumerically("~", p.Field(-0.013, 25), 1e-15))
		})

		It("matches the semi-infinite superposition at the entry face", func() {
			Expect(p.Field(-0.025, 25)).To(BeNumerically("~", 0.15402470963415124, 1e-15))
		})
	})

	Describe("FieldGradient", func() {
		It("vanishes at the center", func() {
			Expect(p.FieldGradient(0, 25)).To(BeNumerically("~", 0, 1e-12))
		})

		It("is odd in position", func() {
			Expect(p.FieldGradient(0.01, 25)).To(BeNumerically("~", -p.FieldGradient(-0.01, 25), 1e-12))
		})

		It("flips sign exactly with the current", func() {
			for _, z := range []float64{-0.04, -0.025, 0, 0.007, 0.025} {
				Expect(p.FieldGradient(z, -25)).To(Equal(-p.FieldGradient(z, 25)))
			}
		})

		It("agrees with a central difference of the field", func() {
			for _, z := range []float64{-0.05, -0.025, -0.01, 0.02, 0.06} {
				h := 1e-7
				numeric := (p.Field(z+h, 25) - p.Field(z-h, 25)) / (2 * h)
				Expect(p.FieldGradient(z, 25)).To(BeNumerically("~", numeric, 1e-5*math.Max(1, math.Abs(numeric))))
			}
		})
	})

	Describe("Evaluate", func() {
		It("reproduces the reference first-step acceleration", func() {
			ev := p.Evaluate(0, -0.025)
			want := 2182.4627235778607
			Expect(math.Abs(ev.Acceleration-want) / want).To(BeNumerically("<", 1e-9))
			Expect(ev.Force).To(BeNumerically("~", ev.Acceleration*p.Mass, 1e-9))
			Expect(ev.Current).To(Equal(25.0))
		})

		It("produces non-finite values on a singular face", func() {
			p.Radius = 0
			Expect(p.Singular(p.EntryPosition())).To(BeTrue())
			ev := p.Evaluate(0, p.EntryPosition())
			Expect(ev.IsValid()).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		DescribeTable("rejects unusable parameters",
			func(mutate func(*coil.Params)) {
				mutate(&p)
				err := p.Validate()
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			},
			Entry("zero resistance", func(p *coil.Params) { p.Resistance = 0 }),
			Entry("zero capacitance", func(p *coil.Params) { p.Capacitance = 0 }),
			Entry("zero length", func(p *coil.Params) { p.Length = 0 }),
			Entry("zero mass", func(p *coil.Params) { p.Mass = 0 }),
			Entry("negative radius", func(p *coil.Params) { p.Radius = -0.01 }),
			Entry("unknown drive", func(p *coil.Params) { p.Drive = "pulse" }),
		)

		It("accepts the reference set and a zero radius", func() {
			Expect(p.Validate()).To(Succeed())
			p.Radius = 0
			Expect(p.Validate()).To(Succeed())
		})
	})

	Describe("SetParam", func() {
		It("round-trips through GetParams", func() {
			Expect(p.SetParam("voltage", 50)).To(Succeed())
			Expect(p.GetParams()["voltage"]).To(Equal(50.0))
			Expect(p.SetParam("colour", 1)).NotTo(Succeed())
		})
	})
})
