package domain

import "testing"

func TestCanTransitionCaptureNeedsAuthorize(t *testing.T) {
	if CanTransition(StatusPending, StatusCaptured) {
		t.Fatal("pending -> captured must be rejected")
	}
	if !CanTransition(StatusAuthorized, StatusCaptured) {
		t.Fatal("authorized -> captured must be allowed")
	}
}

func TestCanTransitionRefundNeedsCapture(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusRequiresMore, StatusAuthorized, StatusCanceled} {
		if CanTransition(from, StatusRefunded) {
			t.Fatalf("%s -> refunded must be rejected", from)
		}
	}
	if !CanTransition(StatusCaptured, StatusRefunded) {
		t.Fatal("captured -> refunded must be allowed")
	}
}

func TestCanTransitionCancelOnlyPreCapture(t *testing.T) {
	if CanTransition(StatusCaptured, StatusCanceled) {
		t.Fatal("captured -> canceled must be rejected")
	}
	if CanTransition(StatusRefunded, StatusCanceled) {
		t.Fatal("refunded -> canceled must be rejected")
	}
	if !CanTransition(StatusAuthorized, StatusCanceled) {
		t.Fatal("authorized -> canceled must be allowed")
	}
}

func TestCanTransitionAllowsProviderJumps(t *testing.T) {
	// No total order: a provider can move straight from pending to
	// authorized, or flag an error from any state.
	if !CanTransition(StatusPending, StatusAuthorized) {
		t.Fatal("pending -> authorized must be allowed")
	}
	if !CanTransition(StatusRequiresMore, StatusAuthorized) {
		t.Fatal("requires_more -> authorized must be allowed")
	}
	if !CanTransition(StatusCaptured, StatusError) {
		t.Fatal("captured -> error must be allowed")
	}
	if !CanTransition(StatusAuthorized, StatusAuthorized) {
		t.Fatal("same-state transition is a no-op, not a violation")
	}
}

func TestCanTransitionRejectsUnknownTarget(t *testing.T) {
	if CanTransition(StatusPending, Status("settled")) {
		t.Fatal("unknown target state must be rejected")
	}
}
