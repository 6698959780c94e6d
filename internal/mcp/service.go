package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/dldaisy/ProgramSearch/pkg/search"
)

// Domain adapts a concrete DSL to the tool surface: it parses program lines
// into objects and textual specs into search targets.
type Domain interface {
	graph.LineParser
	ParseSpec(s string) (any, error)
}

type Service struct {
	model  search.Model
	domain Domain
	opts   search.Options
}

func NewService(model search.Model, domain Domain, opts search.Options) *Service {
	return &Service{
		model:  model,
		domain: domain,
		opts:   opts,
	}
}

// parseProgram resolves a listing into a graph. References are positional in
// listing order, so PrettyPrint output round-trips.
func (s *Service) parseProgram(lines []string) (*graph.Graph, error) {
	var scope []graph.Node
	for i, line := range lines {
		// Accept "$i <- (...)" assignment prefixes from pretty-printed form.
		if idx := strings.Index(line, "<-"); idx >= 0 {
			line = line[idx+2:]
		}
		fields := graph.Fields(line)
		if len(fields) == 0 {
			continue
		}
		tokens, err := graph.ResolveLine(fields, scope)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		node, err := s.domain.ParseLine(tokens)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if node == nil {
			return nil, fmt.Errorf("line %d is not a valid program line: %q", i, line)
		}
		scope = append(scope, node)
	}
	return graph.FromNodes(scope), nil
}

// --- Tool Handlers ---

func (s *Service) Synthesize(ctx context.Context, req *mcp.CallToolRequest, args SynthesizeArgs) (*mcp.CallToolResult, SynthesizeResult, error) {
	spec, err := s.domain.ParseSpec(args.Spec)
	if err != nil {
		return nil, SynthesizeResult{}, fmt.Errorf("bad spec: %w", err)
	}

	opts := s.opts
	if args.Particles > 0 {
		opts.Particles = args.Particles
	}
	if args.MaxLength > 0 {
		opts.MaximumLength = args.MaxLength
	}
	if args.Seed != 0 {
		opts.Seed = args.Seed
	}
	opts.RunID = "" // fresh id per call

	searcher, err := search.New(s.model, opts)
	if err != nil {
		return nil, SynthesizeResult{}, err
	}
	ranked, err := searcher.InferRanked(spec)
	if err != nil {
		return nil, SynthesizeResult{}, fmt.Errorf("search failed: %w", err)
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 5
	}
	var out SynthesizeResult
	for _, r := range ranked.Results() {
		if len(out.Candidates) >= limit {
			break
		}
		out.Candidates = append(out.Candidates, Candidate{
			Program:  r.Graph.PrettyPrint(),
			Distance: r.Distance,
		})
	}
	return nil, out, nil
}

func (s *Service) ParseProgram(ctx context.Context, req *mcp.CallToolRequest, args ParseProgramArgs) (*mcp.CallToolResult, ParseProgramResult, error) {
	g, err := s.parseProgram(args.Lines)
	if err != nil {
		return nil, ParseProgramResult{}, err
	}
	return nil, ParseProgramResult{
		Program: g.PrettyPrint(),
		Objects: g.Size(),
	}, nil
}

func (s *Service) ProgramDistance(ctx context.Context, req *mcp.CallToolRequest, args ProgramDistanceArgs) (*mcp.CallToolResult, ProgramDistanceResult, error) {
	g, err := s.parseProgram(args.Program)
	if err != nil {
		return nil, ProgramDistanceResult{}, fmt.Errorf("program: %w", err)
	}
	goal, err := s.parseProgram(args.Goal)
	if err != nil {
		return nil, ProgramDistanceResult{}, fmt.Errorf("goal: %w", err)
	}
	return nil, ProgramDistanceResult{Distance: g.DistanceOracle(goal)}, nil
}
