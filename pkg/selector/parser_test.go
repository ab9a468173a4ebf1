package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	tests := []struct {
		input    string
		wantToks int
		wantErr  bool
	}{
		{`format == "maven2"`, 4, false},
		{`format == 'maven2'`, 4, false},
		{`a == "x" && b != "y"`, 8, false},
		{`a == "x" and b != "y" or c =^ "z"`, 12, false},
		{`(path =~ "^/org/.*")`, 6, false},
		{`"unterminated`, 0, true},
		{`a = "x"`, 0, true},
		{`a == "x" & b == "y"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := lex(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSyntax)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tokens, tt.wantToks)
		})
	}
}

func TestLex_StringEscapes(t *testing.T) {
	tokens, err := lex(`name == "a\"b\\c"`)
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, `a"b\c`, tokens[2].val)
}

func TestLex_KeepsUnknownEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`path =~ "^/org\.apache/.*\.jar$"`, `^/org\.apache/.*\.jar$`},
		{`path =~ "\d+\(x\)"`, `\d+\(x\)`},
		{`name == 'it\'s'`, `it's`},
		{`name == 'say \"hi\"'`, `say \"hi\"`},
		{`name == "a\\.b"`, `a\.b`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := Parse(tt.input)
			require.NoError(t, err)
			c, ok := n.(*Comparison)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Literal.Value)
		})
	}
}

func TestParse_Comparisons(t *testing.T) {
	tests := []struct {
		input string
		want  Node
	}{
		{`format == "npm"`, Eq("format", "npm")},
		{`format != "npm"`, Neq("format", "npm")},
		{`coordinate.version =^ "1."`, Prefix("coordinate.version", "1.")},
		{`path =~ "^/org/.*"`, Regex("path", "^/org/.*")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	got, err := Parse(`a == "1" || b == "2" && c == "3"`)
	require.NoError(t, err)

	want := Or(Eq("a", "1"), And(Eq("b", "2"), Eq("c", "3")))
	assert.Equal(t, want, got)
}

func TestParse_LeftAssociative(t *testing.T) {
	got, err := Parse(`a == "1" && b == "2" && c == "3"`)
	require.NoError(t, err)

	want := And(And(Eq("a", "1"), Eq("b", "2")), Eq("c", "3"))
	assert.Equal(t, want, got)
}

func TestParse_GroupsArePreserved(t *testing.T) {
	got, err := Parse(`a == "woof" && (b == "meow" || b == "purr")`)
	require.NoError(t, err)

	want := And(Eq("a", "woof"), Paren(Or(Eq("b", "meow"), Eq("b", "purr"))))
	assert.Equal(t, want, got)
}

func TestParse_KeywordOperators(t *testing.T) {
	got, err := Parse(`a == "1" and b == "2" or c == "3"`)
	require.NoError(t, err)

	want := Or(And(Eq("a", "1"), Eq("b", "2")), Eq("c", "3"))
	assert.Equal(t, want, got)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty expression"},
		{"blank", "   ", "empty expression"},
		{"missing operator", `format`, "expected operator"},
		{"missing literal", `format ==`, "expected string"},
		{"literal on left", `"npm" == format`, "expected property"},
		{"unbalanced paren", `(format == "npm"`, "expected )"},
		{"trailing token", `format == "npm")`, "unexpected"},
		{"dangling and", `format == "npm" &&`, "expected property"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("format") })
	assert.NotPanics(t, func() { MustParse(`format == "npm"`) })
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		`format == "npm"`,
		`a == "woof" && (b == "meow" || b == "purr")`,
		`path =~ "^/org/.*" || coordinate.version =^ "1." && format != "raw"`,
		`name == "quote\"d"`,
		`path =~ "^/org\.apache/.*\.jar$"`,
		`name == "back\\\"slash"`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			n := MustParse(input)
			assert.Equal(t, input, Format(n))

			again, err := Parse(Format(n))
			require.NoError(t, err)
			assert.Equal(t, n, again)
		})
	}
}

func TestProperties(t *testing.T) {
	n := MustParse(`format == "npm" && (path =~ ".*" || format != "raw")`)
	assert.Equal(t, []string{"format", "path"}, Properties(n))
}

func TestValidateProperties(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		allowed []string
		wantErr bool
	}{
		{"default allows format and path", `format == "npm" && path =~ ".*"`, DefaultAllowedProperties, false},
		{"coordinate wildcard", `coordinate.groupId == "org"`, DefaultAllowedProperties, false},
		{"bare coordinate is not a sub-property", `coordinate == "org"`, DefaultAllowedProperties, true},
		{"unknown property", `repository == "central"`, DefaultAllowedProperties, true},
		{"empty allow-list accepts everything", `anything == "x"`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProperties(MustParse(tt.input), tt.allowed)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownProperty)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOperatorStrings(t *testing.T) {
	assert.Equal(t, "==", OpEq.String())
	assert.Equal(t, "!=", OpNeq.String())
	assert.Equal(t, "=^", OpPrefix.String())
	assert.Equal(t, "=~", OpRegex.String())
	assert.Equal(t, "&&", OpAnd.String())
	assert.Equal(t, "||", OpOr.String())
	assert.Equal(t, "CompareOp(9)", CompareOp(9).String())
	assert.Equal(t, "LogicalOp(7)", LogicalOp(7).String())
}
