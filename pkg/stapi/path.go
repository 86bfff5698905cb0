package stapi

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// PathPartType represents the type of a path segment
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	WildcardPart
)

// PathPart is a single segment of a route path
type PathPart struct {
	Type PathPartType
	// Value is the literal text for static parts, the parameter name for
	// parameters and "*" for wildcards.
	Value string
}

// Path is a route path in `/segment/:param/*` syntax
type Path string

type pathGrammar struct {
	Segments []*segmentGrammar `parser:"@@*"`
}

type segmentGrammar struct {
	Slash    string `parser:"@Slash"`
	Param    string `parser:"( @Param"`
	Wildcard string `parser:"| @Wildcard"`
	Static   string `parser:"| @Static )?"`
}

var pathParser = participle.MustBuild[pathGrammar](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Slash", Pattern: `/`},
		{Name: "Param", Pattern: `:[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Wildcard", Pattern: `\*`},
		{Name: "Static", Pattern: `[^/:*]+`},
	})),
)

// NewPath normalizes raw into a Path: empty becomes "/" and a leading
// slash is added when missing.
func NewPath(raw string) Path {
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return Path(raw)
}

// Raw returns the path as written
func (p Path) Raw() string {
	return string(p)
}

// Parts parses the path into its segments. The root path has no parts.
func (p Path) Parts() ([]PathPart, error) {
	parsed, err := pathParser.ParseString("", string(p))
	if err != nil {
		return nil, fmt.Errorf("invalid route path %q: %w", string(p), err)
	}

	parts := make([]PathPart, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		switch {
		case seg.Param != "":
			parts = append(parts, PathPart{Type: ParameterPart, Value: strings.TrimPrefix(seg.Param, ":")})
		case seg.Wildcard != "":
			parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
		case seg.Static != "":
			parts = append(parts, PathPart{Type: StaticPart, Value: seg.Static})
		}
	}
	return parts, nil
}

// Validate reports whether the path follows the route syntax
func (p Path) Validate() error {
	_, err := p.Parts()
	return err
}

// ParamNames returns the parameter names in order of appearance
func (p Path) ParamNames() []string {
	parts, err := p.Parts()
	if err != nil {
		return nil
	}
	var names []string
	for _, part := range parts {
		if part.Type == ParameterPart {
			names = append(names, part.Value)
		}
	}
	return names
}

// OpenAPI returns the path in OpenAPI template syntax: /users/:id becomes
// /users/{id}.
func (p Path) OpenAPI() string {
	segments := strings.Split(string(p), "/")
	for i, segment := range segments {
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}

// OperationID returns the OpenAPI operation id for method on this path:
// POST on /users/:id becomes POST-_users_p~id.
func (p Path) OperationID(method string) string {
	id := strings.ReplaceAll(string(p), "/", "_")
	id = strings.ReplaceAll(id, ":", "p~")
	return method + "-" + id
}
