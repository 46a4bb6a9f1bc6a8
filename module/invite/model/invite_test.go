package model

import "testing"

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusRejected, StatusExpired}

	for _, to := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		if !CanTransition(StatusPending, to) {
			t.Errorf("pending → %s should be allowed", to)
		}
	}
	// 终态无出边，pending 也不能原地迁移
	for _, from := range all {
		if CanTransition(from, StatusPending) {
			t.Errorf("%s → pending should be rejected", from)
		}
	}
	for _, from := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal %s must have no outgoing edge, got %s → %s", from, from, to)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []Status{StatusAccepted, StatusRejected, StatusExpired} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusPending:  "pending",
		StatusAccepted: "accepted",
		StatusRejected: "rejected",
		StatusExpired:  "expired",
		Status(42):     "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
