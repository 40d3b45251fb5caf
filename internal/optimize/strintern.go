package optimize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orizon-lang/astopt/internal/ast"
)

const (
	minInternRunes   = 3
	maxConstNameBody = 32
)

// stringInterner counts string literals across every unit of the run. It
// never rewrites the tree; the table feeds shared-constant suggestions.
type stringInterner struct{}

func (p *stringInterner) Descriptor() Descriptor {
	return Descriptor{
		ID:          PassStrings,
		Name:        "String literal interning analysis",
		Description: "Finds string literals repeated across the batch",
		Enabled:     true,
		Priority:    200,
	}
}

func (p *stringInterner) Transform(file *ast.File, ctx *Context) (*ast.File, error) {
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.InterpolatedString:
			// Text fragments are not literals; holes are ordinary expressions.
			for _, part := range x.Parts {
				if lit, ok := part.(*ast.Literal); ok && lit.Kind == ast.LitString {
					continue
				}
				ast.Inspect(part, visit)
			}
			return false
		case *ast.Literal:
			if x.Kind != ast.LitString || utf8.RuneCountInString(x.Value) < minInternRunes {
				return true
			}
			info := ctx.noteString(x.Value)
			if info.Count == 2 {
				ctx.Record(PassStrings,
					fmt.Sprintf("String literal %s repeated; candidate constant %s (first seen in %s)",
						x.String(), info.Name, info.FirstFile),
					x.Span, x.String(), info.Name)
			}
		}
		return true
	}
	ast.Inspect(file, visit)
	return nil, nil
}

// uniqueConstName derives STR_<UPPER_SNAKE> from content, adding a numeric
// suffix when the name is already taken.
func uniqueConstName(content string, used map[string]bool) string {
	var sb strings.Builder
	underscore := false
	for _, r := range content {
		if sb.Len() >= maxConstNameBody {
			break
		}
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(unicode.ToUpper(r))
			underscore = false
			continue
		}
		if !underscore && sb.Len() > 0 {
			sb.WriteByte('_')
			underscore = true
		}
	}
	body := strings.TrimRight(sb.String(), "_")
	if body == "" {
		body = "LITERAL"
	}

	base := "STR_" + body
	name := base
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	return name
}
