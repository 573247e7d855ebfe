package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"requested to accepted", RideStatusRequested, RideStatusAccepted, true},
		{"requested to cancelled", RideStatusRequested, RideStatusCancelled, true},
		{"requested to picked_up skips accept", RideStatusRequested, RideStatusPickedUp, false},
		{"requested to completed skips everything", RideStatusRequested, RideStatusCompleted, false},
		{"accepted to picked_up", RideStatusAccepted, RideStatusPickedUp, true},
		{"accepted to cancelled", RideStatusAccepted, RideStatusCancelled, true},
		{"accepted back to requested is deaccept", RideStatusAccepted, RideStatusRequested, true},
		{"accepted to completed skips pickup", RideStatusAccepted, RideStatusCompleted, false},
		{"picked_up to completed", RideStatusPickedUp, RideStatusCompleted, true},
		{"picked_up to cancelled", RideStatusPickedUp, RideStatusCancelled, false},
		{"picked_up back to accepted", RideStatusPickedUp, RideStatusAccepted, false},
		{"completed is terminal", RideStatusCompleted, RideStatusRequested, false},
		{"cancelled is terminal", RideStatusCancelled, RideStatusRequested, false},
		{"cancelled cannot complete", RideStatusCancelled, RideStatusCompleted, false},
		{"unknown from", "teleporting", RideStatusAccepted, false},
		{"self transition", RideStatusRequested, RideStatusRequested, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, status := range []string{RideStatusCompleted, RideStatusCancelled} {
		if !IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = false, want true", status)
		}
	}
	for _, status := range []string{RideStatusRequested, RideStatusAccepted, RideStatusPickedUp} {
		if IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = true, want false", status)
		}
	}
}

func TestStatusRequiresDriver(t *testing.T) {
	withDriver := []string{RideStatusAccepted, RideStatusPickedUp, RideStatusCompleted}
	for _, status := range withDriver {
		if !StatusRequiresDriver(status) {
			t.Errorf("StatusRequiresDriver(%q) = false, want true", status)
		}
	}
	withoutDriver := []string{RideStatusRequested, RideStatusCancelled}
	for _, status := range withoutDriver {
		if StatusRequiresDriver(status) {
			t.Errorf("StatusRequiresDriver(%q) = true, want false", status)
		}
	}
}

func TestValidStatus(t *testing.T) {
	valid := []string{
		RideStatusRequested, RideStatusAccepted, RideStatusPickedUp,
		RideStatusCompleted, RideStatusCancelled,
	}
	for _, status := range valid {
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false, want true", status)
		}
	}
	if ValidStatus("pending") {
		t.Error(`ValidStatus("pending") = true, want false`)
	}
	if ValidStatus("") {
		t.Error(`ValidStatus("") = true, want false`)
	}
}
