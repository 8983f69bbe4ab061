package session

// Event is a session transition request. Events not listed in this file are
// accepted by Reduce and ignored.
type Event interface {
	EventName() string
}

// Login installs a freshly issued pair, replacing whatever was there.
type Login struct {
	Pair Pair
}

// Refreshed installs a refreshed access credential. An empty Refresh keeps
// the refresh credential already held.
type Refreshed struct {
	Access  string
	Refresh string
}

// Logout drops the pair.
type Logout struct{}

// Hydrated marks the persisted record as loaded. Restored, when set, is the
// pair read from storage; it only fills an empty session so a login that
// raced the load is not overwritten.
type Hydrated struct {
	Restored *Pair
}

func (Login) EventName() string     { return "LOGIN" }
func (Refreshed) EventName() string { return "REFRESHED" }
func (Logout) EventName() string    { return "LOGOUT" }
func (Hydrated) EventName() string  { return "HYDRATED" }

// Patch is the delta an event produces. Fields are applied only when their
// Set flag is true.
type Patch struct {
	SetPair     bool
	Pair        *Pair
	SetHydrated bool
	Hydrated    bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return !p.SetPair && !p.SetHydrated
}

// Apply returns s with the patch applied.
func (p Patch) Apply(s State) State {
	if p.SetPair {
		s.Pair = p.Pair
	}
	if p.SetHydrated {
		s.Hydrated = p.Hydrated
	}
	return s
}

// Reduce maps (state, event) to a patch. It is pure: the same inputs always
// produce the same patch and nothing outside the return value is touched.
//
// Login and Refreshed without an access credential are ignored, so a pair
// in the store always carries one.
func Reduce(s State, ev Event) Patch {
	switch e := ev.(type) {
	case Login:
		if e.Pair.Access == "" {
			return Patch{}
		}
		p := e.Pair
		return Patch{SetPair: true, Pair: &p}

	case Refreshed:
		if e.Access == "" {
			return Patch{}
		}
		refresh := e.Refresh
		if refresh == "" {
			refresh = s.Refresh()
		}
		return Patch{SetPair: true, Pair: &Pair{Access: e.Access, Refresh: refresh}}

	case Logout:
		return Patch{SetPair: true, Pair: nil}

	case Hydrated:
		patch := Patch{SetHydrated: true, Hydrated: true}
		if !s.Hydrated && s.Pair == nil && e.Restored != nil && e.Restored.Access != "" {
			p := *e.Restored
			patch.SetPair = true
			patch.Pair = &p
		}
		return patch

	default:
		return Patch{}
	}
}
