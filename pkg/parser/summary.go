package parser

import (
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/token"
)

// Projection is one item of a top-level SELECT list.
type Projection struct {
	// Text is the item as written, tokens joined by single spaces.
	Text string
	// Star is true for "*" and "t.*".
	Star bool
	// Qualifier is the table prefix of a qualified column or star, lowercased.
	Qualifier string
	// Column is set when the item is a plain (optionally qualified) column
	// reference, lowercased. Empty for expressions.
	Column string
	// Alias is the output alias if one was given.
	Alias string
	// Pos is the position of the first token of the item.
	Pos token.Position
}

// Summary is what lint rules need to know about a query.
type Summary struct {
	// Projections of every top-level SELECT (set operations contribute all
	// of their branches).
	Projections []Projection
	// Sources are referenced tables in order of first appearance, lowercased,
	// with CTE names removed.
	Sources []string
	// CTEs declared by WITH clauses, lowercased.
	CTEs []string
	// HasSelect is true if a SELECT keyword appears anywhere.
	HasSelect bool
	// Balanced is false if parentheses do not match.
	Balanced bool
	// Comments found while scanning, in source order.
	Comments []*token.Comment
}

// IsStar reports whether any top-level projection is a star.
func (s *Summary) IsStar() bool {
	return s.StarPos().IsValid()
}

// StarPos returns the position of the first top-level star projection.
func (s *Summary) StarPos() token.Position {
	for _, p := range s.Projections {
		if p.Star {
			return p.Pos
		}
	}
	return token.Position{}
}

// clauseEnd lists keywords that terminate a SELECT list at the same depth.
var clauseEnd = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true,
	"LIMIT": true, "UNION": true, "INTERSECT": true, "EXCEPT": true, "QUALIFY": true,
	"WINDOW": true, "INTO": true, "OFFSET": true, "FETCH": true,
}

// reserved lists keywords that can never be a bare alias.
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "JOIN": true, "ON": true, "USING": true,
	"LEFT": true, "RIGHT": true, "INNER": true, "OUTER": true, "FULL": true, "CROSS": true,
	"NATURAL": true, "GROUP": true, "ORDER": true, "BY": true, "LIMIT": true, "HAVING": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true, "AS": true, "WITH": true, "LATERAL": true,
	"QUALIFY": true, "WINDOW": true, "OFFSET": true, "FETCH": true, "AND": true, "OR": true,
	"NOT": true, "CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,
	"DISTINCT": true, "ALL": true, "INTO": true, "VALUES": true, "POSITIONAL": true,
	"ASOF": true, "ANTI": true, "SEMI": true,
}

// scanned is a token annotated with its parenthesis depth and the name of
// the function whose argument list encloses it, if any.
type scanned struct {
	token.Token
	depth int
	fn    string
}

// fromArgFuncs take FROM inside their argument list: EXTRACT(YEAR FROM ts).
var fromArgFuncs = map[string]bool{
	"EXTRACT": true, "SUBSTRING": true, "TRIM": true, "OVERLAY": true, "POSITION": true,
}

func (s scanned) keyword() string {
	if s.Kind != token.IDENT {
		return ""
	}
	return strings.ToUpper(s.Text)
}

// Summarize scans sql and extracts its query summary. It never fails;
// malformed input yields a partial summary with Balanced=false.
func Summarize(sql string) *Summary {
	tokens, comments := Tokenize(sql)

	toks := make([]scanned, 0, len(tokens))
	depth := 0
	balanced := true
	var fns []string
	for i, t := range tokens {
		if t.Kind == token.RPAREN {
			depth--
			if depth < 0 {
				balanced = false
				depth = 0
			}
			if len(fns) > 0 {
				fns = fns[:len(fns)-1]
			}
		}
		sc := scanned{Token: t, depth: depth}
		if len(fns) > 0 {
			sc.fn = fns[len(fns)-1]
		}
		toks = append(toks, sc)
		if t.Kind == token.LPAREN {
			depth++
			fn := ""
			if i > 0 && tokens[i-1].Kind == token.IDENT {
				fn = strings.ToUpper(tokens[i-1].Text)
			}
			fns = append(fns, fn)
		}
	}
	if depth != 0 {
		balanced = false
	}

	s := &Summary{Balanced: balanced, Comments: comments}
	s.CTEs = collectCTEs(toks)
	s.Sources = collectSources(toks, s.CTEs)

	for i, t := range toks {
		if t.keyword() != "SELECT" {
			continue
		}
		s.HasSelect = true
		if t.depth == 0 {
			s.Projections = append(s.Projections, selectList(toks, i)...)
		}
	}
	return s
}

// collectCTEs finds "name AS (" sequences that follow WITH or a comma.
func collectCTEs(toks []scanned) []string {
	var ctes []string
	for i := 1; i+2 < len(toks); i++ {
		prev := toks[i-1]
		if prev.keyword() != "WITH" && prev.keyword() != "RECURSIVE" && prev.Kind != token.COMMA {
			continue
		}
		if !toks[i].IsIdent() || reserved[toks[i].keyword()] {
			continue
		}
		j := i + 1
		// optional column list: name (a, b) AS (...)
		if toks[j].Kind == token.LPAREN {
			j = skipParens(toks, j)
		}
		if j+1 < len(toks) && toks[j].keyword() == "AS" {
			k := j + 1
			if toks[k].keyword() == "MATERIALIZED" || toks[k].keyword() == "NOT" {
				for k < len(toks) && toks[k].Kind != token.LPAREN {
					k++
				}
			}
			if k < len(toks) && toks[k].Kind == token.LPAREN {
				ctes = appendUnique(ctes, strings.ToLower(toks[i].Text))
			}
		}
	}
	return ctes
}

// collectSources reads table names after FROM and JOIN, including
// comma-separated FROM lists.
func collectSources(toks []scanned, ctes []string) []string {
	isCTE := make(map[string]bool, len(ctes))
	for _, c := range ctes {
		isCTE[c] = true
	}

	var sources []string
	add := func(name string) {
		if name != "" && !isCTE[name] {
			sources = appendUnique(sources, name)
		}
	}

	for i := 0; i < len(toks); i++ {
		kw := toks[i].keyword()
		if kw != "FROM" && kw != "JOIN" {
			continue
		}
		if fromArgFuncs[toks[i].fn] || (i > 0 && toks[i-1].keyword() == "DISTINCT") {
			continue
		}
		level := toks[i].depth
		j := i + 1
		for j < len(toks) {
			if toks[j].keyword() == "LATERAL" {
				j++
			}
			if j >= len(toks) || !toks[j].IsIdent() || reserved[toks[j].keyword()] {
				break
			}
			name, next := dottedName(toks, j)
			// table functions like read_csv('x') are not tables
			if next < len(toks) && toks[next].Kind == token.LPAREN {
				j = skipParens(toks, next)
			} else {
				add(name)
				j = next
			}
			j = skipAlias(toks, j)
			if kw == "FROM" && j < len(toks) && toks[j].Kind == token.COMMA && toks[j].depth == level {
				j++
				continue
			}
			break
		}
	}
	return sources
}

// selectList splits the projection list of the SELECT at index i.
func selectList(toks []scanned, i int) []Projection {
	level := toks[i].depth
	j := i + 1
	if kw := toks[j].keyword(); kw == "DISTINCT" || kw == "ALL" {
		j++
		if j+1 < len(toks) && toks[j].keyword() == "ON" && toks[j+1].Kind == token.LPAREN {
			j = skipParens(toks, j+1)
		}
	}

	var items []Projection
	start := j
	for ; j < len(toks); j++ {
		t := toks[j]
		// the ")" closing an enclosing subquery sits below level; a ")" at
		// level closes a call inside the list
		if t.Kind == token.EOF || t.depth < level || (t.depth == level && (t.Kind == token.SEMICOLON || clauseEnd[t.keyword()])) {
			break
		}
		if t.depth == level && t.Kind == token.COMMA {
			items = appendProjection(items, toks[start:j])
			start = j + 1
		}
	}
	return appendProjection(items, toks[start:j])
}

func appendProjection(items []Projection, toks []scanned) []Projection {
	if len(toks) == 0 {
		return items
	}

	p := Projection{Pos: toks[0].Pos}
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		parts = append(parts, t.Text)
	}
	p.Text = strings.Join(parts, " ")

	body := toks
	if n := len(body); n >= 2 && body[n-1].IsIdent() && !reserved[body[n-1].keyword()] {
		if body[n-2].keyword() == "AS" {
			p.Alias = body[n-1].Text
			body = body[:n-2]
		} else if n == 2 || (n >= 3 && body[n-2].Kind != token.DOT) {
			// "col alias" or "expr) alias"
			if body[n-2].IsIdent() || body[n-2].Kind == token.RPAREN || body[n-2].Kind == token.NUMBER || body[n-2].Kind == token.STRING {
				p.Alias = body[n-1].Text
				body = body[:n-1]
			}
		}
	}

	switch {
	case len(body) == 1 && body[0].Kind == token.STAR:
		p.Star = true
	case len(body) == 3 && body[0].IsIdent() && body[1].Kind == token.DOT && body[2].Kind == token.STAR:
		p.Star = true
		p.Qualifier = strings.ToLower(body[0].Text)
	case len(body) == 1 && body[0].IsIdent() && !reserved[body[0].keyword()]:
		p.Column = strings.ToLower(body[0].Text)
	case len(body) == 3 && body[0].IsIdent() && body[1].Kind == token.DOT && body[2].IsIdent():
		p.Qualifier = strings.ToLower(body[0].Text)
		p.Column = strings.ToLower(body[2].Text)
	}
	return append(items, p)
}

// dottedName reads ident(.ident)* starting at i.
func dottedName(toks []scanned, i int) (string, int) {
	parts := []string{toks[i].Text}
	j := i + 1
	for j+1 < len(toks) && toks[j].Kind == token.DOT && toks[j+1].IsIdent() {
		parts = append(parts, toks[j+1].Text)
		j += 2
	}
	return strings.ToLower(strings.Join(parts, ".")), j
}

// skipAlias skips "[AS] alias" after a table reference.
func skipAlias(toks []scanned, j int) int {
	if j < len(toks) && toks[j].keyword() == "AS" {
		j++
	}
	if j < len(toks) && toks[j].IsIdent() && !reserved[toks[j].keyword()] {
		j++
		// column alias list: t(a, b)
		if j < len(toks) && toks[j].Kind == token.LPAREN {
			j = skipParens(toks, j)
		}
	}
	return j
}

// skipParens returns the index after the parenthesis group opening at i.
func skipParens(toks []scanned, i int) int {
	level := toks[i].depth
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Kind == token.RPAREN && toks[j].depth == level {
			return j + 1
		}
		if toks[j].Kind == token.EOF {
			return j
		}
	}
	return len(toks)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
