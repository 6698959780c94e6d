package mcp

// --- Tool Arguments ---

type SynthesizeArgs struct {
	Spec      string `json:"spec" jsonschema:"The task specification in the domain's textual format (e.g. a 16x16 grid of '#' and '.'),required"`
	Particles int    `json:"particles,omitempty" jsonschema:"Population size for the search. Defaults to the server configuration."`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Maximum number of program objects to build (search rounds)."`
	Seed      uint64 `json:"seed,omitempty" jsonschema:"Random seed for a reproducible search. 0 means random."`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max number of candidate programs to return (default 5)"`
}

type Candidate struct {
	Program  string  `json:"program"`  // numbered listing, one object per line
	Distance float64 `json:"distance"` // model estimate, lower is closer
}

type SynthesizeResult struct {
	Candidates []Candidate `json:"candidates"`
}

type ParseProgramArgs struct {
	Lines []string `json:"lines" jsonschema:"Program lines in listing order, e.g. ['(rect 1 2 5 6)', '(union $0 $0)']. '$i' refers to the i-th line. An optional '$i <-' assignment prefix is accepted.,required"`
}

type ParseProgramResult struct {
	Program string `json:"program"` // canonical pretty-printed form
	Objects int    `json:"objects"`
}

type ProgramDistanceArgs struct {
	Program []string `json:"program" jsonschema:"Lines of the first program,required"`
	Goal    []string `json:"goal" jsonschema:"Lines of the second program,required"`
}

type ProgramDistanceResult struct {
	Distance int `json:"distance"` // symmetric difference of object sets
}
