package types

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEventKind(t *testing.T) {
	Convey("Given the event kinds", t, func() {
		Convey("Then only dreamTeam and error are terminal", func() {
			So(EventStatus.Terminal(), ShouldBeFalse)
			So(EventCandidate.Terminal(), ShouldBeFalse)
			So(EventDreamTeam.Terminal(), ShouldBeTrue)
			So(EventError.Terminal(), ShouldBeTrue)
		})

		Convey("Then unknown kinds are invalid", func() {
			So(EventStatus.Valid(), ShouldBeTrue)
			So(EventKind("message").Valid(), ShouldBeFalse)
		})
	})
}

func TestStateTransitions(t *testing.T) {
	Convey("Given the pipeline states", t, func() {
		Convey("Then the success paths are allowed", func() {
			So(StateSourcing.CanTransition(StateNoCandidates), ShouldBeTrue)
			So(StateNoCandidates.CanTransition(StateDone), ShouldBeTrue)
			So(StateSourcing.CanTransition(StateEnriching), ShouldBeTrue)
			So(StateEnriching.CanTransition(StateAssembling), ShouldBeTrue)
			So(StateAssembling.CanTransition(StateDone), ShouldBeTrue)
		})

		Convey("Then skipping a phase is rejected", func() {
			So(StateSourcing.CanTransition(StateAssembling), ShouldBeFalse)
			So(StateSourcing.CanTransition(StateDone), ShouldBeFalse)
			So(StateNoCandidates.CanTransition(StateEnriching), ShouldBeFalse)
		})

		Convey("Then error is reachable until the run is final", func() {
			for _, s := range []State{StateSourcing, StateNoCandidates, StateEnriching, StateAssembling} {
				So(s.CanTransition(StateError), ShouldBeTrue)
				So(s.Final(), ShouldBeFalse)
			}
			So(StateDone.CanTransition(StateError), ShouldBeFalse)
			So(StateError.CanTransition(StateError), ShouldBeFalse)
			So(StateDone.Final(), ShouldBeTrue)
			So(StateError.Final(), ShouldBeTrue)
		})
	})
}
