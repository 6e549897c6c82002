package domain

// Case is the normalized top-level record created in the downstream case
// store, one per new model breach and one per incident group.
type Case struct {
	Name             string
	Description      string
	StartTime        string
	Severity         Severity
	SourceIdentifier string
	AssetName        string
	Score            string
	Data             any // raw appliance payload kept for investigation context
}

// Evidence is a discrete observation attached to a Case. A breach yields
// exactly one; an incident yields one per event plus one per related breach
// referenced inside the event.
type Evidence struct {
	Name             string
	Label            string
	Type             string
	Description      string
	StartTime        string
	EndTime          string
	Severity         Severity
	SourceIdentifier string
	AssetName        string
	CaseID           string
	UUID             string
	Summary          string
	DeviceLabel      string
	CEF              map[string]any
}
