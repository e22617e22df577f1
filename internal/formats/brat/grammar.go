package brat

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// spanHeader is the middle column of a text-bound line: "Disease 0 5;8 12".
type spanHeader struct {
	Type      string      `@Ident`
	Fragments []*fragment `@@ ( ";" @@ )*`
}

type fragment struct {
	Start int `@Number`
	End   int `@Number`
}

// eventHeader is the middle column of an event line: "Binding:T3 Theme:T1 Theme2:T2".
type eventHeader struct {
	Type    string     `@Ident ":"`
	Trigger string     `@Ident`
	Args    []*roleArg `@@*`
}

// relationHeader is the middle column of a relation line: "Part-of Arg1:T1 Arg2:T2".
type relationHeader struct {
	Type string     `@Ident`
	Args []*roleArg `@@+`
}

type roleArg struct {
	Role string `@Ident ":"`
	Ref  string `@Ident`
}

var annLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Offsets; the word boundary keeps types such as "5HT" out of this rule
	{Name: "Number", Pattern: `\d+\b`},
	{Name: "Ident", Pattern: `[^\s:;]+`},
	{Name: "Punct", Pattern: `[:;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	spanParser = participle.MustBuild[spanHeader](
		participle.Lexer(annLexer),
		participle.Elide("Whitespace"),
	)
	eventParser = participle.MustBuild[eventHeader](
		participle.Lexer(annLexer),
		participle.Elide("Whitespace"),
	)
	relationParser = participle.MustBuild[relationHeader](
		participle.Lexer(annLexer),
		participle.Elide("Whitespace"),
	)
)

func parseSpanHeader(s string) (*spanHeader, error) {
	h, err := spanParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("bad text-bound header %q: %w", s, err)
	}
	return h, nil
}

func parseEventHeader(s string) (*eventHeader, error) {
	h, err := eventParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("bad event header %q: %w", s, err)
	}
	return h, nil
}

func parseRelationHeader(s string) (*relationHeader, error) {
	h, err := relationParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("bad relation header %q: %w", s, err)
	}
	return h, nil
}
