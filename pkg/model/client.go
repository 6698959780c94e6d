// Package model provides an HTTP client for a remote neural proposal
// service, adapting its wire protocol to the search engine's Model
// interface. The service is typically a Python process hosting the trained
// encoder and decoder networks; this package keeps all of the transport and
// line-decoding details out of the search core.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
	"github.com/dldaisy/ProgramSearch/pkg/search"
)

// terminalLexeme is the lexeme the service emits for a termination decision
// instead of a program line.
const terminalLexeme = "RETURN"

// Client talks to a proposal service over JSON HTTP. It implements
// search.Model; proposals come back as serialized program lines which the
// injected parser turns into domain objects.
type Client struct {
	baseURL string
	width   int
	parser  graph.LineParser
	http    *http.Client
}

var _ search.Model = (*Client)(nil)

// NewClient builds a client from the given configuration. The parser is the
// domain plugin that interprets proposed lines; it must match the DSL the
// service was trained on.
func NewClient(cfg Config, parser graph.LineParser) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		width:   cfg.EmbeddingWidth,
		parser:  parser,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// EmbeddingWidth returns the configured encoding dimensionality.
func (c *Client) EmbeddingWidth() int { return c.width }

// specText renders a spec for the wire. Specs that know how to print
// themselves (fmt.Stringer) use that form; anything else goes as JSON.
func specText(v any) (string, error) {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("spec is not serializable: %w", err)
	}
	return string(data), nil
}

func (c *Client) post(path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("model request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model %s returned status: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// EncodeSpec asks the service for the task embedding.
func (c *Client) EncodeSpec(spec any) ([]float32, error) {
	text, err := specText(spec)
	if err != nil {
		return nil, err
	}
	var out struct {
		Encoding []float32 `json:"encoding"`
	}
	if err := c.post("/encode_spec", map[string]any{"spec": text}, &out); err != nil {
		return nil, err
	}
	if len(out.Encoding) != c.width {
		return nil, fmt.Errorf("spec encoding has width %d, want %d", len(out.Encoding), c.width)
	}
	return out.Encoding, nil
}

// EncodeObject asks the service to embed one executed object value in the
// context of the spec.
func (c *Client) EncodeObject(spec, value any) ([]float32, error) {
	specStr, err := specText(spec)
	if err != nil {
		return nil, err
	}
	objStr, err := specText(value)
	if err != nil {
		return nil, err
	}
	var out struct {
		Encoding []float32 `json:"encoding"`
	}
	payload := map[string]any{"spec": specStr, "object": objStr}
	if err := c.post("/encode_object", payload, &out); err != nil {
		return nil, err
	}
	if len(out.Encoding) != c.width {
		return nil, fmt.Errorf("object encoding has width %d, want %d", len(out.Encoding), c.width)
	}
	return out.Encoding, nil
}

// Distance asks the value head how far the partial program's scope is from
// the spec. Lower is closer.
func (c *Client) Distance(scope [][]float32, specEncoding []float32) (float64, error) {
	var out struct {
		Distance float64 `json:"distance"`
	}
	payload := map[string]any{"scope": scope, "spec_encoding": specEncoding}
	if err := c.post("/distance", payload, &out); err != nil {
		return 0, err
	}
	return out.Distance, nil
}

// Propose samples up to n next lines from the decoder conditioned on the
// current graph. Lines that fail to parse are dropped; the terminal lexeme
// maps to a nil node.
func (c *Client) Propose(specEncoding []float32, g *graph.Graph, enc *search.Encodings, n int) ([]graph.Node, error) {
	scope, err := enc.ScopeEncoding(g)
	if err != nil {
		return nil, err
	}
	var out struct {
		Lines []string `json:"lines"`
	}
	payload := map[string]any{
		"spec_encoding": specEncoding,
		"scope":         scope,
		"count":         n,
	}
	if err := c.post("/propose", payload, &out); err != nil {
		return nil, err
	}

	objects := g.OrderedObjects()
	samples := make([]graph.Node, 0, len(out.Lines))
	for _, line := range out.Lines {
		fields := graph.Fields(line)
		if len(fields) == 1 && fields[0] == terminalLexeme {
			samples = append(samples, nil)
			continue
		}
		tokens, err := graph.ResolveLine(fields, objects)
		if err != nil {
			continue
		}
		node, err := c.parser.ParseLine(tokens)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		samples = append(samples, node)
	}
	return samples, nil
}
