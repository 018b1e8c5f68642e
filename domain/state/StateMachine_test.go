package state_test

import (
	"claimflow/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         PENDING      DOING         DONE
		// PENDING   -            V (begin)   V (close)
		// DOING     V (cancel)   -           V (finish)
		// DONE      X            X           -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING"}, {Name: "DOING", Category: state.InProcess}, {Name: "DONE", Category: state.Done}},
			[]state.Transition{
				{Name: "begin", From: "PENDING", To: "DOING"},
				{Name: "close", From: "PENDING", To: "DONE"},
				{Name: "cancel", From: "DOING", To: "PENDING"},
				{Name: "finish", From: "DOING", To: "DONE"},
			})
	})

	Describe("FindState", func() {
		It("should find known states only", func() {
			s, found := stateMachine.FindState("DOING")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "DOING", Category: state.InProcess}))

			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})

	Describe("AvailableTransitions", func() {
		It("should return available transitions as expected", func() {
			Ω(stateMachine.AvailableTransitions("PENDING", "")).Should(Equal([]state.Transition{
				{Name: "begin", From: "PENDING", To: "DOING"},
				{Name: "close", From: "PENDING", To: "DONE"},
			}))
			Ω(stateMachine.AvailableTransitions("DOING", "DONE")).Should(Equal([]state.Transition{
				{Name: "finish", From: "DOING", To: "DONE"},
			}))
			Ω(stateMachine.AvailableTransitions("", "PENDING")).Should(Equal([]state.Transition{
				{Name: "cancel", From: "DOING", To: "PENDING"},
			}))
			Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
		})
	})

	Describe("FindTransition", func() {
		It("should match on source state and transition name", func() {
			t, found := stateMachine.FindTransition("DOING", "finish")
			Expect(found).To(BeTrue())
			Expect(t.To).To(Equal("DONE"))

			_, found = stateMachine.FindTransition("PENDING", "finish")
			Expect(found).To(BeFalse())
		})
	})

	Describe("IsTerminal", func() {
		It("should treat states without outgoing transitions as terminal", func() {
			Expect(stateMachine.IsTerminal("DONE")).To(BeTrue())
			Expect(stateMachine.IsTerminal("PENDING")).To(BeFalse())
			Expect(stateMachine.IsTerminal("DOING")).To(BeFalse())
		})
	})
})
