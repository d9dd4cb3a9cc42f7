package token

// Kind classifies a scanned SQL token.
type Kind int

// Token kinds produced by the scanner. Keywords are not distinguished from
// identifiers at this level; callers compare the upper-cased text.
//
//nolint:revive // ALL_CAPS kind names follow SQL token conventions
const (
	EOF Kind = iota
	ILLEGAL

	IDENT        // customers, SELECT
	QUOTED_IDENT // "Order Id", `x`, [x]
	STRING       // 'text'
	NUMBER       // 42, 3.14

	STAR      // *
	COMMA     // ,
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	SEMICOLON // ;
	OPERATOR  // any other punctuation: = < > + - / || ...
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	ILLEGAL:      "ILLEGAL",
	IDENT:        "IDENT",
	QUOTED_IDENT: "QUOTED_IDENT",
	STRING:       "STRING",
	NUMBER:       "NUMBER",
	STAR:         "*",
	COMMA:        ",",
	DOT:          ".",
	LPAREN:       "(",
	RPAREN:       ")",
	SEMICOLON:    ";",
	OPERATOR:     "OPERATOR",
}

// String returns a readable name for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is a single lexical unit with its source position.
type Token struct {
	Kind Kind
	Text string // literal text; quoted identifiers and strings are unquoted
	Pos  Position
}

// IsIdent reports whether the token names something (quoted or not).
func (t Token) IsIdent() bool {
	return t.Kind == IDENT || t.Kind == QUOTED_IDENT
}
