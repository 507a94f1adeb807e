package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Language identifies the grammar used for a source unit
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// LanguageForPath picks the grammar from the file extension.
// Unknown extensions are parsed as JavaScript.
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	default:
		return LanguageJavaScript
	}
}

// Parser wraps a tree-sitter parser for JavaScript/TypeScript.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser   *sitter.Parser
	language Language
}

// NewParser creates a new JavaScript parser
func NewParser() *Parser {
	return NewParserFor(LanguageJavaScript)
}

// NewTypeScriptParser creates a new TypeScript parser. The tsx grammar is a
// superset of the plain TypeScript one, so it serves both.
func NewTypeScriptParser() *Parser {
	return NewParserFor(LanguageTypeScript)
}

// NewParserFor creates a parser for lang
func NewParserFor(lang Language) *Parser {
	parser := sitter.NewParser()
	if lang == LanguageTypeScript {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(javascript.GetLanguage())
	}
	return &Parser{parser: parser, language: lang}
}

// Language returns the grammar this parser was built with
func (p *Parser) Language() Language {
	return p.language
}

// IsTypeScript returns true if this parser is configured for TypeScript
func (p *Parser) IsTypeScript() bool {
	return p.language == LanguageTypeScript
}

// Parse parses source and returns the concrete syntax tree.
// The caller owns the tree and must Close it.
func (p *Parser) Parse(ctx context.Context, filename string, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("no parse tree for %s", filename)
	}
	return tree, nil
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseForLanguage parses source with the grammar selected by filename's extension
func ParseForLanguage(ctx context.Context, filename string, source []byte) (*sitter.Tree, error) {
	p := NewParserFor(LanguageForPath(filename))
	defer p.Close()
	return p.Parse(ctx, filename, source)
}
