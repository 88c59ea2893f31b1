package lexer

import (
	"strings"
	"testing"

	"github.com/thomasrohde/lisp0/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.scm")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func TestEmptyInput(t *testing.T) {
	for _, src := range []string{"", "   ", "\t\n\r", "; only a comment"} {
		tokens := mustTokenize(t, src)
		if len(tokens) != 1 || tokens[0].Type != TokEOF {
			t.Errorf("%q: expected only EOF, got %v", src, tokens)
		}
	}
}

func TestParensAndAtoms(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "(+ 1 (f x-y) #t)")
	want := []struct {
		typ   TokenType
		value string
	}{
		{TokLParen, "("},
		{TokAtom, "+"},
		{TokAtom, "1"},
		{TokLParen, "("},
		{TokAtom, "f"},
		{TokAtom, "x-y"},
		{TokRParen, ")"},
		{TokAtom, "#t"},
		{TokRParen, ")"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Value != w.value {
			t.Errorf("token %d: got %v %q, want %v %q", i, tokens[i].Type, tokens[i].Value, w.typ, w.value)
		}
	}
}

func TestDelimitersEndAtoms(t *testing.T) {
	tests := []struct {
		input string
		atoms []string
	}{
		{"abc(def)", []string{"abc", "def"}},
		{"a;comment\nb", []string{"a", "b"}},
		{"set!\tpair?", []string{"set!", "pair?"}},
		{"-5 +7", []string{"-5", "+7"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got []string
			for _, tok := range mustTokenizeNoEOF(t, tt.input) {
				if tok.Type == TokAtom {
					got = append(got, tok.Value)
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.atoms, ",") {
				t.Errorf("atoms = %v, want %v", got, tt.atoms)
			}
		})
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"with space"`, "with space"},
		{`"quote\"d"`, `quote"d`},
		{`"back\\slash"`, `back\slash`},
		{`"line\nbreak"`, "line\nbreak"},
		{`"tab\there"`, "tab\there"},
		{`"keep\q"`, `keep\q`},
		{"\"multi\nline\"", "multi\nline"},
		{`"ünïcode"`, "ünïcode"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			if len(tokens) != 1 || tokens[0].Type != TokString {
				t.Fatalf("expected one string token, got %v", tokens)
			}
			if tokens[0].Value != tt.want {
				t.Errorf("got %q, want %q", tokens[0].Value, tt.want)
			}
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	for _, src := range []string{`"hello`, `(f "x)`, `"escape at end\`} {
		_, err := Tokenize(src, "test.scm")
		if err == nil {
			t.Fatalf("%q: expected error for unterminated string", src)
		}
		lexErr, ok := err.(*LexError)
		if !ok {
			t.Fatalf("expected *LexError, got %T", err)
		}
		if lexErr.Diag.Code != diagnostics.UnterminatedString {
			t.Errorf("expected code E_UNTERMINATED_STRING, got %v", lexErr.Diag.Code)
		}
		if !strings.Contains(lexErr.Diag.Message, "unterminated") {
			t.Errorf("expected 'unterminated' in message, got %q", lexErr.Diag.Message)
		}
	}
}

func TestSpanTracking(t *testing.T) {
	t.Run("first token on line 1 col 1", func(t *testing.T) {
		tokens := mustTokenizeNoEOF(t, "(")
		if tokens[0].Span.StartLine != 1 || tokens[0].Span.StartCol != 1 {
			t.Errorf("expected start (1,1), got (%d,%d)",
				tokens[0].Span.StartLine, tokens[0].Span.StartCol)
		}
	})

	t.Run("multiple lines position tracking", func(t *testing.T) {
		tokens := mustTokenizeNoEOF(t, "(define x\n  42)")
		expectations := []struct {
			tokType   TokenType
			startLine int
			startCol  int
		}{
			{TokLParen, 1, 1},
			{TokAtom, 1, 2},
			{TokAtom, 1, 9},
			{TokAtom, 2, 3},
			{TokRParen, 2, 5},
		}
		if len(tokens) != len(expectations) {
			t.Fatalf("expected %d tokens, got %d", len(expectations), len(tokens))
		}
		for i, exp := range expectations {
			tok := tokens[i]
			if tok.Type != exp.tokType {
				t.Errorf("token %d: expected type %v, got %v", i, exp.tokType, tok.Type)
			}
			if tok.Span.StartLine != exp.startLine || tok.Span.StartCol != exp.startCol {
				t.Errorf("token %d: expected (%d,%d), got (%d,%d)", i,
					exp.startLine, exp.startCol, tok.Span.StartLine, tok.Span.StartCol)
			}
		}
	})

	t.Run("error span points at opening quote", func(t *testing.T) {
		_, err := Tokenize("(f\n  \"abc", "test.scm")
		lexErr, ok := err.(*LexError)
		if !ok {
			t.Fatalf("expected *LexError, got %T", err)
		}
		sp := lexErr.Diag.Span
		if sp == nil || sp.StartLine != 2 || sp.StartCol != 3 {
			t.Errorf("unexpected error span %+v", sp)
		}
	})
}

func TestEOFAlwaysLast(t *testing.T) {
	for _, src := range []string{"(a)", "x", "\"s\" ; c", ")))"} {
		tokens := mustTokenize(t, src)
		if tokens[len(tokens)-1].Type != TokEOF {
			t.Errorf("%q: last token is %v", src, tokens[len(tokens)-1].Type)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(Token{Type: TokAtom, Value: "foo"}); got != "atom 'foo'" {
		t.Errorf("Describe atom = %q", got)
	}
	if got := Describe(Token{Type: TokRParen}); got != "')'" {
		t.Errorf("Describe rparen = %q", got)
	}
}
