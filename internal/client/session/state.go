// Package session holds the process-wide authentication session: the
// credential pair, the hydration flag, the reducer that evolves them and
// the store that serializes transitions and fans out change notifications.
package session

// Pair is the credential pair issued by the API. An empty Refresh means
// the server did not hand out a refresh credential.
type Pair struct {
	Access  string
	Refresh string
}

// State is an immutable snapshot of the session.
//
// Hydrated stays false until the persisted record has been loaded; until
// then a nil Pair does not mean the user is logged out.
type State struct {
	Pair     *Pair
	Hydrated bool
}

// Access returns the access credential or "" when there is none.
func (s State) Access() string {
	if s.Pair == nil {
		return ""
	}
	return s.Pair.Access
}

// Refresh returns the refresh credential or "" when there is none.
func (s State) Refresh() string {
	if s.Pair == nil {
		return ""
	}
	return s.Pair.Refresh
}

// Authenticated reports whether an access credential is present.
func (s State) Authenticated() bool {
	return s.Access() != ""
}

// LoggedOut is true only once hydration finished and no pair was found or
// the pair was cleared.
func (s State) LoggedOut() bool {
	return s.Hydrated && s.Pair == nil
}
