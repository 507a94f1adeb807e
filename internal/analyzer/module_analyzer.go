package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ludo-technologies/jsreport/domain"
)

// AnonymousName names functions with no binding
const AnonymousName = "<anonymous>"

// Options mirrors the escomplex switches
type Options struct {
	// LogicalOr counts && || ?? (and their assignment forms) as decision points
	LogicalOr bool

	// SwitchCase counts each non-default case clause
	SwitchCase bool

	// ForIn counts for...in and for...of loops
	ForIn bool

	// TryCatch counts catch clauses
	TryCatch bool

	// NewMI rescales the maintainability index to 0-100
	NewMI bool
}

// DefaultOptions returns the escomplex defaults
func DefaultOptions() Options {
	return Options{LogicalOr: true, SwitchCase: true}
}

// Node types that start a new function scope
var functionTypes = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function_declaration": true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var classTypes = map[string]bool{
	"class_declaration":          true,
	"class":                      true,
	"abstract_class_declaration": true,
}

// Unconditional decision points
var branchTypes = map[string]bool{
	"if_statement":       true,
	"ternary_expression": true,
	"while_statement":    true,
	"do_statement":       true,
	"for_statement":      true,
}

var logicalOperators = map[string]bool{
	"&&": true, "||": true, "??": true,
	"&&=": true, "||=": true, "??=": true,
}

// Tokens that only delimit and are neither operators nor operands
var delimiters = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
	";": true, ",": true, "\"": true, "'": true, "`": true, "${": true,
}

// Named leaves whose text is an operand
var literalTypes = map[string]bool{
	"string":          true,
	"template_string": true,
	"number":          true,
	"regex":           true,
}

// ModuleAnalyzer computes the report of one parsed module
type ModuleAnalyzer struct {
	options Options
}

// NewModuleAnalyzer creates a module analyzer with opts
func NewModuleAnalyzer(opts Options) *ModuleAnalyzer {
	return &ModuleAnalyzer{options: opts}
}

// functionSite is a function found in the tree and the class it belongs to, if any
type functionSite struct {
	node  *sitter.Node
	class int
}

type classSite struct {
	node *sitter.Node
	name string
}

// Analyze builds the module report for a parsed unit.
// Source containing syntax errors is rejected.
func (a *ModuleAnalyzer) Analyze(path string, source []byte, root *sitter.Node) (*domain.ModuleReport, error) {
	if root.HasError() {
		return nil, domain.NewParseError(path, syntaxError(root))
	}

	var functions []functionSite
	var classes []classSite
	collectFunctions(root, source, -1, &functions, &classes)

	module := &domain.ModuleReport{
		SrcPath: path,
		Methods: []domain.MethodReport{},
	}
	module.Classes = make([]domain.ClassReport, len(classes))
	for i, c := range classes {
		module.Classes[i] = domain.ClassReport{
			Name:      c.name,
			LineStart: int(c.node.StartPoint().Row) + 1,
			LineEnd:   int(c.node.EndPoint().Row) + 1,
			Methods:   []domain.MethodReport{},
		}
	}

	for _, fn := range functions {
		method := a.analyzeFunction(fn.node, source)
		if fn.class >= 0 {
			module.Classes[fn.class].Methods = append(module.Classes[fn.class].Methods, method)
		} else {
			module.Methods = append(module.Methods, method)
		}
	}

	all := module.AllMethods()
	module.MethodAggregate, module.MethodAverage = aggregateMethods(all)
	for i := range module.Classes {
		c := &module.Classes[i]
		c.MethodAggregate, c.MethodAverage = aggregateMethods(c.Methods)
	}
	if len(module.Classes) == 0 {
		module.Classes = nil
	}

	module.Aggregate = a.measure(root, source, false)
	module.Aggregate.Sloc.Physical = float64(physicalLines(source))

	// Modules without functions are scored on their top-level code
	basis := module.MethodAverage
	if len(all) == 0 {
		basis = module.Aggregate
	}
	module.Maintainability = maintainabilityIndex(
		basis.Halstead.Effort, basis.Cyclomatic, basis.Sloc.Logical, a.options.NewMI)

	roundModule(module)
	return module, nil
}

// analyzeFunction measures one function, excluding nested functions
func (a *ModuleAnalyzer) analyzeFunction(node *sitter.Node, source []byte) domain.MethodReport {
	m := a.measure(node, source, true)
	m.Sloc.Physical = float64(node.EndPoint().Row-node.StartPoint().Row) + 1
	m.ParamCount = float64(paramCount(node))

	// An expression body is one logical line
	if body := node.ChildByFieldName("body"); body != nil && body.Type() != "statement_block" {
		m.Sloc.Logical++
	}
	if m.Sloc.Logical > 0 {
		m.CyclomaticDensity = m.Cyclomatic / m.Sloc.Logical * 100
	}

	return domain.MethodReport{
		Metrics:   m,
		Name:      functionName(node, source),
		LineStart: int(node.StartPoint().Row) + 1,
		LineEnd:   int(node.EndPoint().Row) + 1,
	}
}

// measure walks node counting decisions, logical lines and Halstead tokens.
// With skipNested, nested function subtrees are left to their own scope.
func (a *ModuleAnalyzer) measure(node *sitter.Node, source []byte, skipNested bool) domain.Metrics {
	counter := newHalsteadCounter()
	decisions := 0
	logical := 0

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		t := n.Type()
		if t == "comment" {
			return
		}
		if skipNested && n != node && n.IsNamed() && functionTypes[t] {
			return
		}

		decisions += a.decisionPoints(n, source)
		if isLogicalLine(t) {
			logical++
		}

		switch {
		case n.IsNamed() && literalTypes[t]:
			counter.addOperand(n.Content(source))
			return
		case n.ChildCount() == 0:
			text := n.Content(source)
			if n.IsNamed() {
				counter.addOperand(text)
			} else if !delimiters[text] && text != "" {
				counter.addOperator(text)
			}
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)

	return domain.Metrics{
		Cyclomatic: float64(1 + decisions),
		Halstead:   counter.metrics(),
		Sloc:       domain.SlocMetrics{Logical: float64(logical)},
	}
}

// decisionPoints returns how many paths n adds under the configured switches
func (a *ModuleAnalyzer) decisionPoints(n *sitter.Node, source []byte) int {
	t := n.Type()
	switch {
	case branchTypes[t]:
		return 1
	case t == "for_in_statement":
		if a.options.ForIn {
			return 1
		}
	case t == "switch_case":
		if a.options.SwitchCase {
			return 1
		}
	case t == "catch_clause":
		if a.options.TryCatch {
			return 1
		}
	case t == "binary_expression" || t == "augmented_assignment_expression":
		if a.options.LogicalOr {
			if op := n.ChildByFieldName("operator"); op != nil && logicalOperators[op.Content(source)] {
				return 1
			}
		}
	}
	return 0
}

func isLogicalLine(t string) bool {
	if t == "statement_block" || t == "empty_statement" {
		return false
	}
	return strings.HasSuffix(t, "_statement") ||
		t == "lexical_declaration" ||
		t == "variable_declaration"
}

// collectFunctions records every function in source order. A function whose
// nearest enclosing scope is a class body is a method of that class.
func collectFunctions(n *sitter.Node, source []byte, class int, functions *[]functionSite, classes *[]classSite) {
	t := n.Type()
	switch {
	case functionTypes[t]:
		*functions = append(*functions, functionSite{node: n, class: class})
		class = -1
	case classTypes[t]:
		*classes = append(*classes, classSite{node: n, name: className(n, source)})
		class = len(*classes) - 1
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectFunctions(n.NamedChild(i), source, class, functions, classes)
	}
}

func className(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	if p := n.Parent(); p != nil && p.Type() == "variable_declarator" {
		if name := p.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
	}
	return AnonymousName
}

// functionName derives a name from the declaration or from what the function is bound to
func functionName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}

	parent := n.Parent()
	if parent == nil {
		return AnonymousName
	}
	switch parent.Type() {
	case "variable_declarator":
		if name := parent.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
	case "pair":
		if key := parent.ChildByFieldName("key"); key != nil {
			return key.Content(source)
		}
	case "assignment_expression":
		if left := parent.ChildByFieldName("left"); left != nil {
			return left.Content(source)
		}
	case "field_definition", "public_field_definition":
		if prop := parent.ChildByFieldName("property"); prop != nil {
			return prop.Content(source)
		}
		if name := parent.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
	}
	return AnonymousName
}

func paramCount(n *sitter.Node) int {
	if params := n.ChildByFieldName("parameters"); params != nil {
		return int(params.NamedChildCount())
	}
	// Arrow function with a bare parameter: x => x
	if n.ChildByFieldName("parameter") != nil {
		return 1
	}
	return 0
}

// physicalLines counts lines up to the last non-blank character
func physicalLines(source []byte) int {
	trimmed := strings.TrimRight(string(source), " \t\r\n")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

// syntaxError locates the first error node below root
func syntaxError(root *sitter.Node) error {
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil || !n.HasError() && !n.IsMissing() {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	if found == nil {
		return fmt.Errorf("syntax error")
	}
	p := found.StartPoint()
	return fmt.Errorf("syntax error at line %d, column %d", p.Row+1, p.Column+1)
}
