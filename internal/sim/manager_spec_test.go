package sim

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/physim/internal/backend"
)

func expectSameBox(a, b cube.BBox) {
	ExpectWithOffset(1, a.Min().X()).To(BeNumerically("~", b.Min().X(), 1e-5))
	ExpectWithOffset(1, a.Min().Y()).To(BeNumerically("~", b.Min().Y(), 1e-5))
	ExpectWithOffset(1, a.Min().Z()).To(BeNumerically("~", b.Min().Z(), 1e-5))
	ExpectWithOffset(1, a.Max().X()).To(BeNumerically("~", b.Max().X(), 1e-5))
	ExpectWithOffset(1, a.Max().Y()).To(BeNumerically("~", b.Max().Y(), 1e-5))
	ExpectWithOffset(1, a.Max().Z()).To(BeNumerically("~", b.Max().Z(), 1e-5))
}

var _ = Describe("Manager", func() {
	Context("with the SWEEP backend", func() {
		var m *Manager

		BeforeEach(func() {
			m = newTestManager(backend.LibrarySweep)
		})

		It("reports the selected library", func() {
			Expect(m.PhysicsSimulationLibrary()).To(Equal(backend.LibrarySweep))
		})

		It("detects contact only once boxes overlap the ground", func() {
			id := addAt(m, boxTemplate, 1.1)
			Expect(m.ContactTest(id)).To(BeFalse())

			Expect(m.SetTranslation(id, mgl32.Vec3{0, 0.9, 0})).To(Succeed())
			Expect(m.ContactTest(id)).To(BeTrue())
		})

		It("builds identical bounds for joined and unjoined stacks", func() {
			joined := addStack(m, stackTemplate)
			joinedScene := m.SceneBounds()

			other := newTestManager(backend.LibrarySweep)
			loose := addStack(other, looseTemplate)

			for i := range joined {
				jb, err := m.CollisionShapeBounds(joined[i])
				Expect(err).NotTo(HaveOccurred())
				lb, err := other.CollisionShapeBounds(loose[i])
				Expect(err).NotTo(HaveOccurred())
				expectSameBox(jb, lb)
			}
			expectSameBox(joinedScene, other.SceneBounds())

			obj, _ := m.Object(joined[0])
			Expect(obj.Shape.NumParts()).To(Equal(1))
			obj, _ = other.Object(loose[0])
			Expect(obj.Shape.NumParts()).To(Equal(4))
		})

		DescribeTable("settles a joined seven-box stack within ten seconds",
			func(rot mgl32.Quat) {
				for _, id := range addStack(m, stackTemplate) {
					Expect(m.SetRotation(id, rot)).To(Succeed())
				}
				Expect(m.CheckActiveObjects()).To(Equal(7))

				for i := 0; i < 100; i++ {
					Expect(m.StepPhysics(0.1)).To(Succeed())
				}
				Expect(m.WorldTime()).To(BeNumerically("~", 10.0, 1e-9))
				Expect(m.CheckActiveObjects()).To(Equal(0))
			},
			Entry("upright", mgl32.QuatIdent()),
			Entry("tipped over and turned",
				mgl32.QuatRotate(-1.56, mgl32.Vec3{1, 0, 0}).Mul(mgl32.QuatRotate(-0.25, mgl32.Vec3{0, 1, 0}))),
		)

		It("keeps the stack standing once it settles", func() {
			ids := addStack(m, stackTemplate)
			for i := 0; i < 100; i++ {
				Expect(m.StepPhysics(0.1)).To(Succeed())
			}
			for i := 1; i < len(ids); i++ {
				below, _ := m.CollisionShapeBounds(ids[i-1])
				above, _ := m.CollisionShapeBounds(ids[i])
				Expect(above.Min().Y()).To(BeNumerically("~", below.Max().Y(), 1e-3))
			}
		})
	})

	Context("with the NONE backend", func() {
		var m *Manager

		BeforeEach(func() {
			m = newTestManager(backend.LibraryNone)
		})

		It("reports the selected library", func() {
			Expect(m.PhysicsSimulationLibrary()).To(Equal(backend.LibraryNone))
		})

		It("never reports activity or contact", func() {
			ids := addStack(m, boxTemplate)
			overlapping := addAt(m, boxTemplate, 0)

			Expect(m.CheckActiveObjects()).To(Equal(0))
			for _, id := range append(ids, overlapping) {
				Expect(m.ContactTest(id)).To(BeFalse())
			}

			for i := 0; i < 10; i++ {
				Expect(m.StepPhysics(0.1)).To(Succeed())
			}
			Expect(m.CheckActiveObjects()).To(Equal(0))
			Expect(m.WorldTime()).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("leaves objects where they were placed", func() {
			id := addAt(m, boxTemplate, 3)
			Expect(m.StepPhysics(1)).To(Succeed())
			Expect(m.Translation(id)).To(Equal(mgl32.Vec3{0, 3, 0}))
		})
	})

	DescribeTable("rejecting stale handles without side effects",
		func(lib backend.Library) {
			m := newTestManager(lib)
			id := addAt(m, boxTemplate, 4)
			Expect(m.RemoveObject(id)).To(Succeed())
			before := m.ObjectIDs()

			Expect(m.RemoveObject(id)).To(MatchError(ErrUnknownObject))
			_, err := m.ContactTest(id)
			Expect(err).To(MatchError(ErrUnknownObject))
			_, err = m.AddObject("no-such-template", nil)
			Expect(err).To(MatchError(ErrUnknownTemplate))

			Expect(m.ObjectIDs()).To(Equal(before))
		},
		Entry("NONE", backend.LibraryNone),
		Entry("SWEEP", backend.LibrarySweep),
	)
})
