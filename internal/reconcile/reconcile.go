package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"usecasesync/internal/ident"
	"usecasesync/internal/logging"
	"usecasesync/internal/records"
	"usecasesync/internal/textutil"
)

// FuzzyThreshold is the similarity a candidate must exceed to be reused.
const FuzzyThreshold = 0.85

// Resolution says how a record got its identifier.
type Resolution string

const (
	ResolvedExact Resolution = "exact"
	ResolvedFuzzy Resolution = "fuzzy"
	ResolvedNew   Resolution = "new"
)

// Entry is one identified record.
type Entry struct {
	Record     records.UseCase `json:"record"`
	Row        int             `json:"row"`
	Resolution Resolution      `json:"resolution"`

	// Set for fuzzy matches.
	MatchedTitle string  `json:"matched_title,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// ID returns the assigned identifier.
func (e Entry) ID() ident.ID { return e.Record.ID }

// Stats counts resolutions in a batch.
type Stats struct {
	Records      int `json:"records"`
	Exact        int `json:"exact"`
	Fuzzy        int `json:"fuzzy"`
	Allocated    int `json:"allocated"`
	NewlyRetired int `json:"newly_retired"`
}

// Result is the outcome of reconciling one batch.
type Result struct {
	Mode         Mode       `json:"mode"`
	Entries      []Entry    `json:"entries"`
	Allocated    []ident.ID `json:"allocated"`
	NewlyRetired []ident.ID `json:"newly_retired"`
	Retired      []ident.ID `json:"retired"`
	TotalIDs     uint64     `json:"total_ids"`
	Stats        Stats      `json:"stats"`
}

// UseCases returns the identified records in output order.
func (r *Result) UseCases() []records.UseCase {
	out := make([]records.UseCase, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Record
	}
	return out
}

// Scorer measures title similarity in [0,1].
type Scorer func(a, b string) float64

// Reconciler assigns identifiers from an IdentitySource.
type Reconciler struct {
	source IdentitySource
	score  Scorer
	logger *slog.Logger
}

// New returns a Reconciler over source using textutil.Similarity.
func New(source IdentitySource, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		source: source,
		score:  textutil.Similarity,
		logger: logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Source returns the identity source the reconciler mutates.
func (r *Reconciler) Source() IdentitySource { return r.source }

// Reconcile identifies batch, mutating the source: fuzzy aliases are bound,
// new identifiers allocated and untouched identifiers retired. The input
// slice is not modified.
func (r *Reconciler) Reconcile(ctx context.Context, batch []records.UseCase) (*Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	entries := make([]Entry, len(batch))
	resolved := make([]bool, len(batch))
	claimed := make(ident.Set, len(batch))

	for i, uc := range batch {
		uc.Title = records.NormalizeTitle(uc.Title, i)
		entries[i] = Entry{Record: uc, Row: i}
	}

	for i := range entries {
		if id, ok := r.source.ResolveExact(entries[i].Record.Title); ok {
			r.assign(&entries[i], id, ResolvedExact)
			resolved[i] = true
			claimed.Add(id)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := r.source.Candidates()
	fuzzyRows := make(map[string]int)
	for i := range entries {
		if resolved[i] {
			continue
		}
		title := entries[i].Record.Title
		// Bound as an alias by an earlier row in this batch.
		if j, ok := fuzzyRows[title]; ok {
			r.assign(&entries[i], entries[j].ID(), ResolvedFuzzy)
			entries[i].MatchedTitle = entries[j].MatchedTitle
			entries[i].Score = entries[j].Score
			resolved[i] = true
			continue
		}
		match, score, ok := r.bestCandidate(title, candidates, claimed)
		if !ok {
			continue
		}
		if err := r.source.Bind(title, match.ID); err != nil {
			return nil, fmt.Errorf("bind %q to %s: %w", title, match.ID, err)
		}
		r.assign(&entries[i], match.ID, ResolvedFuzzy)
		entries[i].MatchedTitle = match.Title
		entries[i].Score = score
		resolved[i] = true
		claimed.Add(match.ID)
		fuzzyRows[title] = i
		logger.Debug("fuzzy title match",
			logging.Args(append(logging.DecisionAttrs("id_resolution", "fuzzy", "similar title above threshold"),
				logging.String("title", title),
				logging.String("matched_title", match.Title),
				logging.String("id", match.ID.String()),
				logging.Float64("score", score))...)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var allocated []ident.ID
	for i := range entries {
		if resolved[i] {
			continue
		}
		title := entries[i].Record.Title
		// An earlier row with the same title was allocated in this batch.
		if id, ok := r.source.ResolveExact(title); ok {
			r.assign(&entries[i], id, ResolvedExact)
			continue
		}
		id, err := r.source.Allocate(title, claimed)
		if err != nil {
			return nil, fmt.Errorf("allocate id for %q: %w", title, err)
		}
		r.assign(&entries[i], id, ResolvedNew)
		claimed.Add(id)
		allocated = append(allocated, id)
		logger.Debug("allocated new id",
			logging.Args(append(logging.DecisionAttrs("id_resolution", "new", "no exact or fuzzy match"),
				logging.String("title", title),
				logging.String("id", id.String()))...)...)
	}

	newlyRetired := r.source.Retire(r.source.KnownIDs().Minus(claimed))

	sort.SliceStable(entries, func(i, j int) bool {
		return ident.Less(entries[i].Record.ID, entries[j].Record.ID)
	})

	result := &Result{
		Mode:         r.source.Mode(),
		Entries:      entries,
		Allocated:    allocated,
		NewlyRetired: newlyRetired,
		Retired:      r.source.Retired(),
		TotalIDs:     r.source.TotalIDs(),
	}
	result.Stats.Records = len(entries)
	for _, e := range entries {
		switch e.Resolution {
		case ResolvedExact:
			result.Stats.Exact++
		case ResolvedFuzzy:
			result.Stats.Fuzzy++
		case ResolvedNew:
			result.Stats.Allocated++
		}
	}
	result.Stats.NewlyRetired = len(newlyRetired)

	if len(newlyRetired) > 0 {
		logger.Info("retired identifiers",
			logging.Int("count", len(newlyRetired)),
			logging.String("ids", joinIDs(newlyRetired)))
	}
	return result, nil
}

func (r *Reconciler) assign(e *Entry, id ident.ID, how Resolution) {
	e.Record.ID = id
	e.Resolution = how
}

// bestCandidate returns the highest-scoring unclaimed candidate strictly above
// FuzzyThreshold. The first candidate wins ties.
func (r *Reconciler) bestCandidate(title string, candidates []Candidate, claimed ident.Set) (Candidate, float64, bool) {
	var (
		best      Candidate
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		if claimed.Has(c.ID) {
			continue
		}
		score := r.score(title, c.Title)
		if score <= FuzzyThreshold {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	return best, bestScore, found
}

func joinIDs(ids []ident.ID) string {
	out := make([]byte, 0, len(ids)*3)
	for i, id := range ids {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, id.String()...)
	}
	return string(out)
}
