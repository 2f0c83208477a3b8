package fontir

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Feature code is read with a grammar for a subset of the OpenType feature
// file syntax:
//
//	# comment
//	languagesystem DFLT dflt;
//	@caps = [A B C];
//	feature liga {
//	    sub f i by f_i;          # ligature
//	    sub a by a.alt;          # single
//	    sub @caps by [a b c];    # single, class to class
//	} liga;
//
// 'substitute' may be used in place of 'sub'; script and language statements
// inside feature blocks are accepted and ignored.

var (
	feaLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "By", Pattern: `\bby\b`},
		{Name: "Class", Pattern: `@[A-Za-z_][A-Za-z0-9_.\-]*`},
		{Name: "Name", Pattern: `\\?[A-Za-z_.][A-Za-z0-9_.\-]*`},
		{Name: "Punct", Pattern: `[{}\[\];=]`},
	})

	feaParser = participle.MustBuild[FeatureFile](
		participle.Lexer(feaLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// FeatureFile is the syntax tree of feature code.
type FeatureFile struct {
	Statements []*FeaStatement `parser:"@@*"`
}

// FeaStatement is a top-level statement of feature code.
type FeaStatement struct {
	LanguageSystem *FeaLanguageSystem `parser:"  @@"`
	ClassDef       *FeaClassDef       `parser:"| @@"`
	Feature        *FeaBlock          `parser:"| @@"`
}

// FeaLanguageSystem is a 'languagesystem' statement.
type FeaLanguageSystem struct {
	Script   string `parser:"'languagesystem' @Name"`
	Language string `parser:"@Name ';'"`
}

// FeaClassDef defines a named glyph class.
type FeaClassDef struct {
	Name    string      `parser:"@Class '='"`
	Members []*FeaGlyph `parser:"'[' @@* ']' ';'"`
}

// FeaBlock is a feature block.
type FeaBlock struct {
	Pos    lexer.Position
	Tag    string     `parser:"'feature' @Name '{'"`
	Rules  []*FeaRule `parser:"@@*"`
	EndTag string     `parser:"'}' @Name ';'"`
}

// FeaRule is a statement inside a feature block.
type FeaRule struct {
	Pos      lexer.Position
	Script   string      `parser:"  'script' @Name ';'"`
	Language string      `parser:"| 'language' @Name ';'"`
	Input    []*FeaGlyph `parser:"| ( 'sub' | 'substitute' ) @@+"`
	Output   *FeaGlyph   `parser:"  By @@ ';'"`
}

// FeaGlyph is a glyph name, a class reference or an inline class.
type FeaGlyph struct {
	Class  string      `parser:"  @Class"`
	Inline []*FeaGlyph `parser:"| '[' @@* ']'"`
	Glyph  string      `parser:"| @Name"`
}

func (fg *FeaGlyph) isSingle() bool {
	return fg.Glyph != ""
}

// ParseFeatures parses feature code.
func ParseFeatures(code string) (*FeatureFile, error) {
	ff, err := feaParser.ParseString("features", code)
	if err != nil {
		return nil, err
	}
	for _, st := range ff.Statements {
		if b := st.Feature; b != nil && b.Tag != b.EndTag {
			return nil, fmt.Errorf("%s: feature %s closed by %s", b.Pos, b.Tag, b.EndTag)
		}
	}
	return ff, nil
}

// glyphResolver expands glyph names and classes of feature code.
type glyphResolver struct {
	classes map[string][]string
}

func newGlyphResolver(fontClasses map[string][]string) *glyphResolver {
	r := &glyphResolver{classes: make(map[string][]string, len(fontClasses))}
	for name, members := range fontClasses {
		r.classes[strings.TrimPrefix(name, "@")] = members
	}
	return r
}

func (r *glyphResolver) define(cd *FeaClassDef) error {
	var members []string
	for _, m := range cd.Members {
		names, err := r.expand(m)
		if err != nil {
			return err
		}
		members = append(members, names...)
	}
	r.classes[strings.TrimPrefix(cd.Name, "@")] = members
	return nil
}

// expand returns the glyph names a glyph expression stands for.
func (r *glyphResolver) expand(fg *FeaGlyph) ([]string, error) {
	switch {
	case fg.Class != "":
		members, ok := r.classes[strings.TrimPrefix(fg.Class, "@")]
		if !ok {
			return nil, fmt.Errorf("undefined glyph class %s", fg.Class)
		}
		return members, nil
	case fg.Inline != nil:
		var names []string
		for _, m := range fg.Inline {
			n, err := r.expand(m)
			if err != nil {
				return nil, err
			}
			names = append(names, n...)
		}
		return names, nil
	}
	return []string{strings.TrimPrefix(fg.Glyph, `\`)}, nil
}
