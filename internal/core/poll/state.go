package poll

// State is the durable poll boundary carried across cycles. SeenBreachIDs
// is a sliding membership set: each cycle replaces it with the ids observed
// in the current lookback window, so breaches that fall out of the window
// are forgotten rather than accumulated forever.
type State struct {
	LastPoll      string   `json:"last_poll"`
	SeenBreachIDs []string `json:"seen_mb_ids"`
}

// SeenSet returns the seen ids as a set for dedup lookups.
func (s State) SeenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.SeenBreachIDs))
	for _, id := range s.SeenBreachIDs {
		set[id] = struct{}{}
	}
	return set
}

// Store loads and persists poll state. Save must be all-or-nothing: a
// partially written state would corrupt the seen-set and cause duplicate
// or lost cases on the next cycle.
type Store interface {
	Load() (State, error)
	Save(State) error
}
