package poll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hive-corporation/casebridge/internal/core/domain"
	"github.com/hive-corporation/casebridge/internal/core/ports"
)

const (
	feedModelBreach = "model_breach"
	feedAIAnalyst   = "ai_analyst"

	defaultBreachLookback   = 6 * time.Hour
	defaultIncidentLookback = 24 * time.Hour
)

// Config selects which feeds a cycle polls and how far back each window
// reaches from the cycle's capture instant.
type Config struct {
	ModelBreaches    bool
	AIAnalyst        bool
	BreachLookback   time.Duration
	IncidentLookback time.Duration
}

func (c Config) breachLookback() time.Duration {
	if c.BreachLookback > 0 {
		return c.BreachLookback
	}
	return defaultBreachLookback
}

func (c Config) incidentLookback() time.Duration {
	if c.IncidentLookback > 0 {
		return c.IncidentLookback
	}
	return defaultIncidentLookback
}

// Engine runs poll cycles: window, fetch, dedup, build, persist. One cycle
// runs start to finish before the next; the mutex keeps the state
// read-modify-write serialized if the host ever invokes cycles
// concurrently.
type Engine struct {
	source   ports.EventSource
	cases    ports.CaseStore
	notifier ports.CaseNotifier // optional
	state    Store
	baseURL  string
	cfg      Config

	mu  sync.Mutex
	now func() time.Time
}

func NewEngine(source ports.EventSource, cases ports.CaseStore, state Store, baseURL string, cfg Config) *Engine {
	return &Engine{
		source:  source,
		cases:   cases,
		state:   state,
		baseURL: baseURL,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetNotifier attaches an optional notifier announced on every created case.
func (e *Engine) SetNotifier(n ports.CaseNotifier) {
	e.notifier = n
}

// Cycle runs one complete poll. Individually failed records are logged and
// skipped but still reported as a cycle failure, so partial progress never
// hides a problem from the operator. A feed whose fetch fails outright
// contributes nothing to the persisted state.
func (e *Engine) Cycle(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.state.Load()
	if err != nil {
		recordCycle("error")
		return fmt.Errorf("load poll state: %w", err)
	}

	// The window end is captured once and shared by both feeds and by the
	// persisted boundary.
	end := e.now()
	breachStart := end.Add(-e.cfg.breachLookback())
	incidentStart := end.Add(-e.cfg.incidentLookback())
	log.Printf("poll cycle started, last poll: %q", state.LastPoll)

	var breachErr, incidentErr error
	breachFetched, incidentFetched := false, false

	if e.cfg.ModelBreaches {
		log.Printf("model breach poll window: %s <-> %s", breachStart.UTC(), end.UTC())
		breachFetched, breachErr = e.pollModelBreaches(ctx, &state, breachStart, end)
	}
	if e.cfg.AIAnalyst {
		log.Printf("ai analyst poll window: %s <-> %s", incidentStart.UTC(), end.UTC())
		incidentFetched, incidentErr = e.pollAIAnalyst(ctx, incidentStart, end)
	}

	enabled := e.cfg.ModelBreaches || e.cfg.AIAnalyst
	fetchedAny := breachFetched || incidentFetched

	if !enabled || fetchedAny {
		state.LastPoll = domain.FormatMillis(end.UnixMilli())
		if err := e.state.Save(state); err != nil {
			recordCycle("error")
			return fmt.Errorf("save poll state: %w", err)
		}
	}

	if breachErr != nil || incidentErr != nil {
		recordCycle("error")
		return errors.Join(breachErr, incidentErr)
	}

	recordCycle("ok")
	log.Printf("poll cycle completed")
	return nil
}

// pollModelBreaches fetches one breach window and ingests the breaches not
// seen in the previous window. The returned bool reports whether the fetch
// itself succeeded: only then is the seen-set replaced, and it is replaced
// with every id observed this cycle whether or not its ingestion worked —
// membership tracks observed, not successfully ingested.
func (e *Engine) pollModelBreaches(ctx context.Context, state *State, from, to time.Time) (bool, error) {
	fetchStart := e.now()
	breaches, err := e.source.ModelBreaches(ctx, from, to)
	recordFetchDuration(e.now().Sub(fetchStart).Seconds())
	if err != nil {
		recordFetchError(feedModelBreach)
		return false, fmt.Errorf("fetch model breaches: %w", err)
	}
	log.Printf("%d model breaches found", len(breaches))

	previous := state.SeenSet()
	current := make([]string, 0, len(breaches))

	newBreaches, failed := 0, 0
	for _, breach := range breaches {
		id := domain.AsString(breach.GetOr("", "pbid"))
		current = append(current, id)
		if _, seen := previous[id]; seen {
			continue
		}
		newBreaches++

		c := domain.BreachCase(breach)
		caseID, err := e.cases.SaveCase(ctx, c)
		if err != nil {
			log.Printf("error creating case for breach %s: %v", id, err)
			recordRecordFailure(feedModelBreach)
			failed++
			continue
		}
		recordCaseCreated(feedModelBreach)
		e.notify(ctx, caseID, c)

		evidence := domain.BreachEvidence(c, breach, caseID, e.baseURL)
		if _, err := e.cases.SaveEvidence(ctx, []domain.Evidence{evidence}); err != nil {
			log.Printf("error creating evidence for breach %s: %v", id, err)
			recordRecordFailure(feedModelBreach)
			failed++
			continue
		}
		recordEvidenceCreated(feedModelBreach, 1)
	}
	log.Printf("%d new model breaches found", newBreaches)

	state.SeenBreachIDs = current

	if failed > 0 {
		return true, fmt.Errorf("%d of %d new model breaches failed to ingest", failed, newBreaches)
	}
	return true, nil
}

// pollAIAnalyst fetches one incident window, groups the events into
// incidents and ingests one case per incident. Incidents carry no seen-set:
// the group key is stable across cycles, so the downstream store's own
// source-identifier handling absorbs repeats.
func (e *Engine) pollAIAnalyst(ctx context.Context, from, to time.Time) (bool, error) {
	fetchStart := e.now()
	events, err := e.source.AIAnalystEvents(ctx, from, to)
	recordFetchDuration(e.now().Sub(fetchStart).Seconds())
	if err != nil {
		recordFetchError(feedAIAnalyst)
		return false, fmt.Errorf("fetch incident events: %w", err)
	}

	groups := domain.GroupIncidentEvents(events)
	log.Printf("%d incident events found across %d incidents", len(events), len(groups))

	failed := 0
	for _, group := range groups {
		c := domain.IncidentCase(group)
		caseID, err := e.cases.SaveCase(ctx, c)
		if err != nil {
			log.Printf("error creating case for incident %q: %v", group.Key, err)
			recordRecordFailure(feedAIAnalyst)
			failed++
			continue
		}
		recordCaseCreated(feedAIAnalyst)
		e.notify(ctx, caseID, c)

		// One primary evidence per event, plus one per related breach
		// referenced inside the event.
		for _, event := range group.Events {
			items := []domain.Evidence{domain.IncidentEvidence(event, caseID, e.baseURL)}
			items = append(items, domain.RelatedBreachEvidence(event, caseID, e.baseURL)...)

			if _, err := e.cases.SaveEvidence(ctx, items); err != nil {
				log.Printf("error creating evidence for incident %q: %v", group.Key, err)
				recordRecordFailure(feedAIAnalyst)
				failed++
				continue
			}
			recordEvidenceCreated(feedAIAnalyst, len(items))
		}
	}

	if failed > 0 {
		return true, fmt.Errorf("%d incident records failed to ingest", failed)
	}
	return true, nil
}

func (e *Engine) notify(ctx context.Context, caseID string, c domain.Case) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyCaseCreated(ctx, caseID, c); err != nil {
		log.Printf("case notification failed for %s: %v", caseID, err)
	}
}
