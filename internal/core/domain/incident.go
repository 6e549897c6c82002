package domain

// IncidentGroup is a logical incident: the ordered set of incident events
// sharing a correlation key.
type IncidentGroup struct {
	Key    string
	Events []Record
}

// GroupIncidentEvents partitions incident events by their currentGroup key,
// preserving first-seen order within and across groups. Events without a
// group key collapse into a single group keyed by the empty string.
func GroupIncidentEvents(events []Record) []IncidentGroup {
	var groups []IncidentGroup
	index := make(map[string]int)

	for _, event := range events {
		key := AsString(event.GetOr("", "currentGroup"))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, IncidentGroup{Key: key})
		}
		groups[i].Events = append(groups[i].Events, event)
	}

	return groups
}
