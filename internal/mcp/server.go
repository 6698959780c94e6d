package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dldaisy/ProgramSearch/pkg/search"
)

func NewMCPServer(model search.Model, domain Domain, opts search.Options) *mcp.Server {
	service := NewService(model, domain, opts)

	// Create Server instance
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "ProgramSearch",
		Version: "0.1.0",
	}, nil) // Options can be nil for default

	// Register Tools using the Generic AddTool which inspects structs!

	mcp.AddTool(s, &mcp.Tool{
		Name:        "synthesize",
		Description: "Search for programs matching a task specification. Returns pretty-printed candidates ranked by the model's distance estimate (lower is closer).",
	}, service.Synthesize)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "parse_program",
		Description: "Parse serialized program lines into a program graph and return its canonical pretty-printed listing.",
	}, service.ParseProgram)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "program_distance",
		Description: "Compute the exact structural distance between two programs: how many objects they do not share.",
	}, service.ProgramDistance)

	return s
}
