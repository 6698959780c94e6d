package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dldaisy/ProgramSearch/internal/mcp"
	"github.com/dldaisy/ProgramSearch/pkg/dsl/csg"
	"github.com/dldaisy/ProgramSearch/pkg/model"
	"github.com/dldaisy/ProgramSearch/pkg/search"
	"github.com/dldaisy/ProgramSearch/pkg/trace"
)

func main() {
	modelConfig := flag.String("model-config", "", "Path to the YAML config of the proposal service")
	particles := flag.Int("particles", 64, "Population size of the search")
	maxLength := flag.Int("max-length", 8, "Maximum number of program objects (search rounds)")
	workers := flag.Int("workers", 1, "Parallel proposal workers per round")
	seed := flag.Uint64("seed", 0, "Random seed (0 = from entropy)")
	tracePath := flag.String("trace", "", "Path of the JSON-lines search journal (disabled when empty)")
	specPath := flag.String("spec", "", "Path of a spec file to synthesize (one-shot mode)")
	top := flag.Int("top", 5, "Number of candidates to print in one-shot mode")
	serveMCP := flag.Bool("mcp", false, "Serve synthesis tools over MCP on stdio")

	flag.Parse()

	cfg, err := model.LoadConfig(*modelConfig)
	if err != nil {
		log.Fatalf("Cannot load model config: %v", err)
	}

	domain := csg.DSL{}
	client := model.NewClient(cfg, domain)

	opts := search.DefaultOptions(*particles)
	opts.MaximumLength = *maxLength
	opts.Workers = *workers
	opts.Seed = *seed

	if *tracePath != "" {
		journal, err := trace.NewWriter(*tracePath)
		if err != nil {
			log.Fatalf("Cannot open trace journal: %v", err)
		}
		defer journal.Close()
		opts.Trace = journal
	}

	if *serveMCP {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mcp.NewMCPServer(client, domain, opts)
		if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil {
			log.Fatalf("MCP server stopped: %v", err)
		}
		return
	}

	if *specPath == "" {
		log.Fatal("Nothing to do: pass -spec FILE or -mcp")
	}

	raw, err := os.ReadFile(*specPath)
	if err != nil {
		log.Fatalf("Cannot read spec: %v", err)
	}
	spec, err := domain.ParseSpec(string(raw))
	if err != nil {
		log.Fatalf("Cannot parse spec: %v", err)
	}

	searcher, err := search.New(client, opts)
	if err != nil {
		log.Fatalf("Cannot create searcher: %v", err)
	}
	ranked, err := searcher.InferRanked(spec)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	printed := 0
	for _, r := range ranked.Results() {
		if printed >= *top {
			break
		}
		fmt.Printf("--- candidate %d (distance %.4f) ---\n", printed, r.Distance)
		fmt.Println(r.Graph.PrettyPrint())
		printed++
	}
	if printed == 0 {
		fmt.Println("No candidates survived the search.")
	}
}
