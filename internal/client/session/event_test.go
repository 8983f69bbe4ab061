package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type unknownEvent struct{}

func (unknownEvent) EventName() string { return "UNKNOWN" }

func TestReduce(t *testing.T) {
	logged := State{Pair: &Pair{Access: "a1", Refresh: "r1"}, Hydrated: true}
	empty := State{Hydrated: true}
	fresh := State{}

	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{"login installs pair", empty, Login{Pair: Pair{Access: "a", Refresh: "r"}}, State{Pair: &Pair{Access: "a", Refresh: "r"}, Hydrated: true}},
		{"login replaces pair", logged, Login{Pair: Pair{Access: "b"}}, State{Pair: &Pair{Access: "b"}, Hydrated: true}},
		{"login without access ignored", logged, Login{}, logged},
		{"refreshed keeps prior refresh", logged, Refreshed{Access: "a2"}, State{Pair: &Pair{Access: "a2", Refresh: "r1"}, Hydrated: true}},
		{"refreshed rotates refresh", logged, Refreshed{Access: "a2", Refresh: "r2"}, State{Pair: &Pair{Access: "a2", Refresh: "r2"}, Hydrated: true}},
		{"refreshed without access ignored", logged, Refreshed{Refresh: "r9"}, logged},
		{"logout clears pair", logged, Logout{}, empty},
		{"logout on empty", empty, Logout{}, empty},
		{"hydrated sets flag", fresh, Hydrated{}, State{Hydrated: true}},
		{"hydrated restores pair", fresh, Hydrated{Restored: &Pair{Access: "a", Refresh: "r"}}, State{Pair: &Pair{Access: "a", Refresh: "r"}, Hydrated: true}},
		{"hydrated keeps login that raced load", State{Pair: &Pair{Access: "new"}}, Hydrated{Restored: &Pair{Access: "old"}}, State{Pair: &Pair{Access: "new"}, Hydrated: true}},
		{"hydrated again does not restore", empty, Hydrated{Restored: &Pair{Access: "x"}}, empty},
		{"unknown event", logged, unknownEvent{}, logged},
		{"nil event", logged, nil, logged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.state, tt.event).Apply(tt.state)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduce_IsPure(t *testing.T) {
	s := State{Pair: &Pair{Access: "a1", Refresh: "r1"}}
	before := *s.Pair

	p1 := Reduce(s, Refreshed{Access: "a2"})
	p2 := Reduce(s, Refreshed{Access: "a2"})

	if diff := cmp.Diff(p1, p2); diff != "" {
		t.Errorf("reduce not deterministic:\n%s", diff)
	}
	if *s.Pair != before {
		t.Errorf("input state mutated: %+v", *s.Pair)
	}
	if p1.Pair == s.Pair {
		t.Error("patch aliases input pair")
	}
}

func TestReduce_UnknownIsEmpty(t *testing.T) {
	if !Reduce(State{}, unknownEvent{}).Empty() {
		t.Error("unknown event must produce an empty patch")
	}
}
