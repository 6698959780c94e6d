package search

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/dldaisy/ProgramSearch/pkg/metrics"
	"github.com/dldaisy/ProgramSearch/pkg/trace"
	"github.com/google/uuid"
)

// Options configures the behavior of an SMC search.
type Options struct {
	// Particles is the total population size conserved across rounds.
	// Must be positive; New fails fast otherwise.
	Particles int

	// FitnessWeight is reserved for weighting the distance term. It is
	// accepted and carried but currently not applied to the weight formula.
	FitnessWeight float64

	// MaximumLength is the round horizon. The search always runs exactly
	// this many rounds: it is a hard cap, not a convergence check.
	// 0 returns the initial population (the empty graph) untouched.
	MaximumLength int

	// Precision selects the in-memory storage format of cached object
	// encodings. Default: Float32.
	Precision Precision

	// Workers bounds how many goroutines draw proposals within one round.
	// Rounds stay synchronous regardless: weighting never starts before
	// every proposal of the round has landed. Default: 1 (sequential).
	Workers int

	// Seed fixes the resampling RNG for reproducible runs. 0 seeds from
	// entropy.
	Seed uint64

	// Trace, when non-nil, receives one journal event per round.
	Trace *trace.Writer

	// RunID tags log and trace output. Defaults to a fresh UUID per engine.
	RunID string
}

// DefaultOptions returns a standard configuration for the given population
// size: horizon 8, sequential proposals, float32 cache.
func DefaultOptions(particles int) Options {
	return Options{
		Particles:     particles,
		FitnessWeight: 2.0,
		MaximumLength: 8,
		Precision:     Float32,
		Workers:       1,
	}
}

// SMC is the sequential Monte Carlo search controller.
//
// Use New to construct one and Infer to run a search. An SMC is safe to
// reuse across searches; every Infer call owns a fresh encoding cache.
type SMC struct {
	model Model
	opts  Options
}

// New validates the configuration and builds a controller.
func New(model Model, opts Options) (*SMC, error) {
	if opts.Particles <= 0 {
		return nil, fmt.Errorf("smc: must specify a positive number of particles, got %d", opts.Particles)
	}
	if opts.FitnessWeight == 0 {
		opts.FitnessWeight = 2.0
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	return &SMC{model: model, opts: opts}, nil
}

// particle is one population member: a graph, the number of population slots
// it occupies, and its cached distance-to-spec. Particles are owned by the
// round that created them and discarded after resampling.
type particle struct {
	graph     *graph.Graph
	frequency int
	distance  float64
}

// tallyEntry accumulates how many proposal draws landed on one distinct
// graph within a round.
type tallyEntry struct {
	graph *graph.Graph
	count int
}

// Infer runs the search for the configured horizon and returns the distinct
// graphs held by the final population. Frequencies are not part of the
// output; the caller ranks or re-scores the candidates (see InferRanked).
func (s *SMC) Infer(spec any) ([]*graph.Graph, error) {
	population, _, err := s.infer(spec)
	if err != nil {
		return nil, err
	}
	graphs := make([]*graph.Graph, len(population))
	for i, p := range population {
		graphs[i] = p.graph
	}
	return graphs, nil
}

// InferRanked runs the search and returns the survivors ordered by their
// cached model distance, best first.
func (s *SMC) InferRanked(spec any) (*ResultSet, error) {
	population, _, err := s.infer(spec)
	if err != nil {
		return nil, err
	}
	rs := NewResultSet()
	for _, p := range population {
		rs.Add(Result{Graph: p.graph, Distance: p.distance})
	}
	return rs, nil
}

func (s *SMC) infer(spec any) ([]*particle, *Encodings, error) {
	enc, err := NewEncodings(s.model, spec, s.opts.Precision)
	if err != nil {
		return nil, nil, err
	}

	seed := s.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	src := rand.NewPCG(seed, seed)

	logger := slog.With("run", s.opts.RunID)
	s.writeTrace(trace.Event{
		Kind:          trace.EventRunStart,
		Run:           s.opts.RunID,
		Particles:     s.opts.Particles,
		MaximumLength: s.opts.MaximumLength,
	})

	d0, err := enc.Distance(graph.Empty())
	if err != nil {
		return nil, nil, err
	}
	population := []*particle{{
		graph:     graph.Empty(),
		frequency: s.opts.Particles,
		distance:  d0,
	}}

	for round := 0; round < s.opts.MaximumLength; round++ {
		start := time.Now()

		tally, proposals, err := s.proposeAll(enc, population)
		if err != nil {
			return nil, nil, err
		}

		// Convert the deduplicating tally into candidate particles, in
		// canonical order so a fixed seed gives a reproducible resample.
		keys := make([]string, 0, len(tally))
		for k := range tally {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		samples := make([]*particle, 0, len(keys))
		logWeights := make([]float64, 0, len(keys))
		best := math.Inf(1)
		for _, k := range keys {
			entry := tally[k]
			d, err := enc.Distance(entry.graph)
			if err != nil {
				return nil, nil, err
			}
			if d < best {
				best = d
			}
			samples = append(samples, &particle{
				graph:     entry.graph,
				frequency: entry.count,
				distance:  d,
			})
			// Popular proposals and small predicted distances both raise
			// the resampling weight.
			logWeights = append(logWeights, math.Log(float64(entry.count))-d)
		}

		probs := normalizeLogWeights(logWeights)
		counts := resampleMultinomial(probs, s.opts.Particles, src)

		population = population[:0]
		for i, c := range counts {
			if c == 0 {
				continue
			}
			samples[i].frequency = c
			population = append(population, samples[i])
		}

		metrics.RoundsTotal.Inc()
		metrics.PopulationDistinct.Set(float64(len(population)))
		metrics.RoundDuration.Observe(time.Since(start).Seconds())

		mass := 0
		for _, p := range population {
			mass += p.frequency
		}
		if math.IsInf(best, 1) {
			// No candidates this round; leave the field at its zero value
			// so the trace event still marshals.
			best = 0
		}
		logger.Debug("smc round complete",
			"round", round,
			"proposals", proposals,
			"distinct", len(population),
			"mass", mass,
			"best_distance", best)
		s.writeTrace(trace.Event{
			Kind:         trace.EventRound,
			Run:          s.opts.RunID,
			Round:        round,
			Proposals:    proposals,
			Distinct:     len(population),
			Mass:         mass,
			BestDistance: best,
		})
	}

	s.writeTrace(trace.Event{
		Kind:    trace.EventRunEnd,
		Run:     s.opts.RunID,
		Results: len(population),
	})
	return population, enc, nil
}

// proposeAll draws frequency-many proposals for every particle and merges
// the resulting graphs into a deduplicating tally keyed by structural graph
// identity. Returns the number of proposal draws that produced a candidate.
func (s *SMC) proposeAll(enc *Encodings, population []*particle) (map[string]*tallyEntry, int, error) {
	tally := make(map[string]*tallyEntry)
	proposals := 0

	if s.opts.Workers <= 1 || len(population) <= 1 {
		for _, p := range population {
			n, err := s.proposeOne(enc, p, tally, nil)
			if err != nil {
				return nil, 0, err
			}
			proposals += n
		}
		return tally, proposals, nil
	}

	// Proposals within a round have no sequential dependency between
	// particles; fan out and merge into the shared tally under a lock.
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
		total    int
	)
	work := make(chan *particle)
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				n, err := s.proposeOne(enc, p, tally, &mu)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				mu.Lock()
				total += n
				mu.Unlock()
			}
		}()
	}
	for _, p := range population {
		work <- p
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, 0, firstErr
	}
	return tally, total, nil
}

// proposeOne draws one particle's proposals and folds them into the tally.
// mu guards the tally when non-nil (parallel rounds); cache access is
// internally synchronized either way.
func (s *SMC) proposeOne(enc *Encodings, p *particle, tally map[string]*tallyEntry, mu *sync.Mutex) (int, error) {
	samples, err := s.model.Propose(enc.SpecEncoding(), p.graph, enc, p.frequency)
	if err != nil {
		return 0, fmt.Errorf("proposing from graph of %d objects: %w", p.graph.Size(), err)
	}
	if dropped := p.frequency - len(samples); dropped > 0 {
		metrics.ProposalsTotal.WithLabelValues("invalid").Add(float64(dropped))
	}

	for _, newObject := range samples {
		var newGraph *graph.Graph
		if newObject == nil {
			// Terminal marker: this branch stops extending.
			metrics.ProposalsTotal.WithLabelValues("return").Inc()
			newGraph = p.graph
		} else {
			// Cache the new object's embedding before the graph is seen
			// anywhere else, so later scope encodings are pure cache hits.
			if _, err := enc.ObjectEncoding(newObject); err != nil {
				return 0, err
			}
			metrics.ProposalsTotal.WithLabelValues("extend").Inc()
			newGraph = p.graph.Extend(newObject)
		}

		key := newGraph.Key()
		if mu != nil {
			mu.Lock()
		}
		if entry, ok := tally[key]; ok {
			entry.count++
		} else {
			tally[key] = &tallyEntry{graph: newGraph, count: 1}
		}
		if mu != nil {
			mu.Unlock()
		}
	}
	return len(samples), nil
}

func (s *SMC) writeTrace(ev trace.Event) {
	if s.opts.Trace == nil {
		return
	}
	if err := s.opts.Trace.Write(ev); err != nil {
		slog.Error("trace write failed", "run", s.opts.RunID, "error", err)
	}
}
