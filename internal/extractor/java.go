package extractor

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"javamap/internal/facts"
)

// SQL statement annotations recognized on mapper interface methods.
var statementAnnotations = map[string]string{
	"Select": facts.SqlSelect,
	"Insert": facts.SqlInsert,
	"Update": facts.SqlUpdate,
	"Delete": facts.SqlDelete,
}

// javaExtractor parses Java source files into fact records.
type javaExtractor struct {
	project  string
	language *sitter.Language
}

// newJavaExtractor creates a Java extractor for one project. Extractors are
// not safe for concurrent use; the worker pool creates one per worker.
func newJavaExtractor(project string) *javaExtractor {
	return &javaExtractor{
		project:  project,
		language: sitter.NewLanguage(java.Language()),
	}
}

// ExtractFile parses a Java source file and returns its fact records.
// The returned error means the file contributed nothing; callers record it
// and continue with remaining files.
func (e *javaExtractor) ExtractFile(path, relPath string) ([]facts.Fact, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(e.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter produced no tree")
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	pkg := e.extractPackageName(rootNode, source)

	var out []facts.Fact
	walkTree(rootNode, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration":
			out = append(out, e.extractType(n, source, pkg, relPath, facts.ClassKindClass)...)
			return false // members are handled by extractType
		case "interface_declaration":
			out = append(out, e.extractType(n, source, pkg, relPath, facts.ClassKindInterface)...)
			return false
		case "enum_declaration":
			out = append(out, e.extractType(n, source, pkg, relPath, facts.ClassKindEnum)...)
			return false
		}
		return true
	})

	return out, nil
}

// extractPackageName extracts the package name, falling back to the default
// package sentinel when the file has no package declaration.
func (e *javaExtractor) extractPackageName(node *sitter.Node, source []byte) string {
	pkg := facts.DefaultPackage
	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() == "package_declaration" {
			nameNode := findChildByType(n, "scoped_identifier")
			if nameNode == nil {
				nameNode = findChildByType(n, "identifier")
			}
			if nameNode != nil {
				pkg = extractNodeText(nameNode, source)
			}
			return false
		}
		return true
	})
	return pkg
}

// extractType extracts one type declaration plus its members.
func (e *javaExtractor) extractType(node *sitter.Node, source []byte, pkg, relPath, kind string) []facts.Fact {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := extractNodeText(nameNode, source)
	annotations := extractAnnotations(findChildByType(node, "modifiers"), source)
	logicalName, description := extractJavadoc(node, source)

	out := []facts.Fact{facts.ClassFact{
		Project:     e.project,
		Package:     pkg,
		Name:        name,
		Kind:        kind,
		Annotations: annotations,
		LogicalName: logicalName,
		Description: description,
		Path:        relPath,
	}}

	// Enum bodies hold constants, not injectable members
	if kind == facts.ClassKindEnum {
		return out
	}

	bodyNode := node.ChildByFieldName("body")
	if bodyNode != nil {
		out = append(out, e.extractMembers(bodyNode, source, pkg, name)...)
	}

	return out
}

// extractMembers extracts fields, methods, and constructors from a type body.
// Nested type declarations are skipped.
func (e *javaExtractor) extractMembers(bodyNode *sitter.Node, source []byte, pkg, className string) []facts.Fact {
	var out []facts.Fact
	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(uint(i))
		switch child.Kind() {
		case "field_declaration":
			out = append(out, e.extractFields(child, source, pkg, className)...)
		case "method_declaration", "constructor_declaration":
			mf, ok := e.extractMethod(child, source, pkg, className)
			if !ok {
				continue
			}
			out = append(out, mf)
			out = append(out, e.statementFactsFor(mf)...)
		}
	}
	return out
}

// extractFields extracts every declarator of one field declaration. All
// declarators share the declared type and annotations.
func (e *javaExtractor) extractFields(node *sitter.Node, source []byte, pkg, className string) []facts.Fact {
	modifiersNode := findChildByType(node, "modifiers")
	annotations := extractAnnotations(modifiersNode, source)
	visibility := visibilityFromModifiers(modifiersNode)

	typeNode := node.ChildByFieldName("type")
	typeName := extractNodeText(typeNode, source)

	var out []facts.Fact
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, facts.FieldFact{
			Project:     e.project,
			Package:     pkg,
			Class:       className,
			Name:        extractNodeText(nameNode, source),
			Type:        typeName,
			Visibility:  visibility,
			Annotations: annotations,
		})
	}
	return out
}

// extractMethod extracts one method or constructor. Constructors have no
// type field, leaving ReturnType empty with Name equal to the class name.
func (e *javaExtractor) extractMethod(node *sitter.Node, source []byte, pkg, className string) (facts.MethodFact, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return facts.MethodFact{}, false
	}

	modifiersNode := findChildByType(node, "modifiers")

	return facts.MethodFact{
		Project:     e.project,
		Package:     pkg,
		Class:       className,
		Name:        extractNodeText(nameNode, source),
		ReturnType:  extractNodeText(node.ChildByFieldName("type"), source),
		Params:      extractParams(node.ChildByFieldName("parameters"), source),
		Visibility:  visibilityFromModifiers(modifiersNode),
		Annotations: extractAnnotations(modifiersNode, source),
	}, true
}

// statementFactsFor turns @Select-style annotations on a mapper interface
// method into SQL statement facts plus their table references.
func (e *javaExtractor) statementFactsFor(mf facts.MethodFact) []facts.Fact {
	var out []facts.Fact
	for _, an := range mf.Annotations {
		kind, ok := statementAnnotations[an.Name]
		if !ok || an.Value == "" {
			continue
		}
		namespace := mf.Class
		if mf.Package != facts.DefaultPackage {
			namespace = mf.Package + "." + mf.Class
		}
		stmt := facts.SqlStatementFact{
			Project:   e.project,
			Namespace: namespace,
			ID:        mf.Name,
			Kind:      kind,
			SQL:       an.Value,
		}
		out = append(out, stmt)
		out = append(out, tableRefFacts(stmt)...)
	}
	return out
}

// extractParams reads formal parameters with verbatim type text.
func extractParams(paramsNode *sitter.Node, source []byte) []facts.Param {
	if paramsNode == nil {
		return nil
	}

	var params []facts.Param
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(uint(i))
		if child.Kind() != "formal_parameter" {
			continue
		}
		typeNode := child.ChildByFieldName("type")
		nameNode := child.ChildByFieldName("name")
		if typeNode == nil || nameNode == nil {
			continue
		}
		params = append(params, facts.Param{
			Name: extractNodeText(nameNode, source),
			Type: extractNodeText(typeNode, source),
		})
	}
	return params
}

// extractAnnotations reads structured annotation occurrences from a
// modifiers node. Names are reduced to their simple form.
func extractAnnotations(modifiersNode *sitter.Node, source []byte) facts.Annotations {
	if modifiersNode == nil {
		return nil
	}

	var anns facts.Annotations
	for i := 0; i < int(modifiersNode.ChildCount()); i++ {
		child := modifiersNode.Child(uint(i))
		switch child.Kind() {
		case "annotation", "marker_annotation":
			name := annotationSimpleName(extractNodeText(child.ChildByFieldName("name"), source))
			if name == "" {
				continue
			}
			anns = append(anns, facts.Annotation{
				Name:  name,
				Value: annotationValue(child.ChildByFieldName("arguments"), source),
			})
		}
	}
	return anns
}

// annotationSimpleName strips any package qualifier from an annotation name.
func annotationSimpleName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// annotationValue pulls the string argument of an annotation: either a bare
// literal or an explicit value= pair. Concatenated literals join in order,
// matching Java string concatenation.
func annotationValue(argsNode *sitter.Node, source []byte) string {
	if argsNode == nil {
		return ""
	}

	var parts []string
	walkTree(argsNode, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "element_value_pair":
			keyNode := n.ChildByFieldName("key")
			// Only the conventional value= attribute counts
			return extractNodeText(keyNode, source) == "value"
		case "string_literal":
			parts = append(parts, unquoteStringLiteral(extractNodeText(n, source)))
			return false
		}
		return true
	})
	return strings.Join(parts, "")
}

// unquoteStringLiteral strips the surrounding quotes of a Java string literal
// and unescapes embedded quotes.
func unquoteStringLiteral(text string) string {
	text = strings.TrimPrefix(text, "\"")
	text = strings.TrimSuffix(text, "\"")
	text = strings.ReplaceAll(text, `\"`, `"`)
	return text
}

// visibilityFromModifiers reads the access modifier keyword, defaulting to
// package visibility.
func visibilityFromModifiers(modifiersNode *sitter.Node) string {
	if modifiersNode == nil {
		return "package"
	}
	for i := 0; i < int(modifiersNode.ChildCount()); i++ {
		switch modifiersNode.Child(uint(i)).Kind() {
		case "public":
			return "public"
		case "protected":
			return "protected"
		case "private":
			return "private"
		}
	}
	return "package"
}

// extractJavadoc reads the block comment immediately preceding a declaration.
// The first prose line becomes the logical name, the remainder the
// description; the tag section (@param and friends) is ignored.
func extractJavadoc(node *sitter.Node, source []byte) (logicalName, description string) {
	prev := node.PrevNamedSibling()
	if prev == nil || prev.Kind() != "block_comment" {
		return "", ""
	}

	text := extractNodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return "", ""
	}
	return parseJavadoc(text)
}

func parseJavadoc(text string) (logicalName, description string) {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@") {
			break
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines[1:], " ")
}
