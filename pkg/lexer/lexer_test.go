package lexer_test

import (
	"testing"

	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTokens(t *testing.T) {
	input := `let x = 5 + 3.5 * (2 mod 4)`
	toks := lexer.New(input).Tokenize()

	want := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.FLOAT,
		token.STAR, token.LPAREN, token.INT, token.MOD, token.INT, token.RPAREN, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type, "token %d", i)
	}
}

func TestArrowAndRange(t *testing.T) {
	toks := lexer.New(`(a, b) -> a..b and a..=b`).Tokenize()
	types := typesOf(toks)
	assert.Contains(t, types, token.ARROW)
	assert.Contains(t, types, token.DOTDOT)
	assert.Contains(t, types, token.DOTDOTEQ)
}

func TestStringEscapes(t *testing.T) {
	toks := lexer.New(`"line\nbreak"`).Tokenize()
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "line\nbreak", toks[0].Literal)
}

func TestKeywordsVsIdentifiers(t *testing.T) {
	toks := lexer.New(`class Point self letter`).Tokenize()
	assert.Equal(t, token.CLASS, toks[0].Type)
	assert.Equal(t, token.IDENT, toks[1].Type)
	assert.Equal(t, token.SELF, toks[2].Type)
	assert.Equal(t, token.IDENT, toks[3].Type)
}

func TestComparisonOperators(t *testing.T) {
	toks := lexer.New(`< <= > >= == !=`).Tokenize()
	want := []token.Type{token.LT, token.LE, token.GT, token.GE, token.EQ, token.NEQ, token.EOF}
	for i, w := range want {
		assert.Equal(t, w, toks[i].Type)
	}
}

func TestLineComment(t *testing.T) {
	toks := lexer.New("let x = 1 // trailing comment\nlet y = 2").Tokenize()
	types := typesOf(toks)
	count := 0
	for _, ty := range types {
		if ty == token.LET {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func typesOf(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tk := range toks {
		out[i] = tk.Type
	}
	return out
}
