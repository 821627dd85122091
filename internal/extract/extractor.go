// Package extract walks parsed TypeScript sources and emits the structural
// facts the index records: functions, classes with methods and decorators,
// interfaces, and the file's import specifiers in declaration order.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
)

// FileStructure is the language-agnostic structural record of one file.
// Import specifiers are raw; the indexer resolves them to paths. Decorator
// file references (template/style co-location metadata) are listed apart so
// they land at the end of the import set.
type FileStructure struct {
	Functions        []index.Function
	Classes          []index.Class
	Interfaces       []index.Interface
	ImportSpecifiers []string
	DecoratorRefs    []string
}

// Extract parses src and walks the tree. A syntax error does not abort:
// tree-sitter recovers and whatever structure parsed cleanly is returned.
func Extract(ctx context.Context, src []byte, path string, patterns PatternSet) (FileStructure, error) {
	parser := sitter.NewParser()
	if strings.HasSuffix(strings.ToLower(path), ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return FileStructure{}, fmt.Errorf("extract: parse %s: %w", path, err)
	}
	defer tree.Close()

	var out FileStructure
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		walkTopLevel(root.Child(i), src, patterns, &out)
	}
	return out, nil
}

func walkTopLevel(node *sitter.Node, src []byte, patterns PatternSet, out *FileStructure) {
	switch node.Type() {
	case "import_statement":
		if spec := importSource(node, src); spec != "" {
			out.ImportSpecifiers = append(out.ImportSpecifiers, spec)
		}
	case "lexical_declaration", "variable_declaration":
		out.ImportSpecifiers = append(out.ImportSpecifiers, requireSources(node, src)...)
	case "export_statement":
		walkExport(node, src, patterns, out)
	case "function_declaration":
		if fn, ok := function(node, src); ok {
			out.Functions = append(out.Functions, fn)
		}
	case "class_declaration", "abstract_class_declaration":
		if cls, ok := class(node, nil, src, patterns, out); ok {
			out.Classes = append(out.Classes, cls)
		}
	case "interface_declaration":
		if iface, ok := iface(node, src); ok {
			out.Interfaces = append(out.Interfaces, iface)
		}
	}
}

// walkExport unwraps export statements; decorators sit as siblings of the
// exported class inside the export node.
func walkExport(node *sitter.Node, src []byte, patterns PatternSet, out *FileStructure) {
	var decorators []index.Decorator
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			if d, ok := decorator(child, src); ok {
				decorators = append(decorators, d)
				out.DecoratorRefs = append(out.DecoratorRefs, patterns.FileRefs(strings.Join(d.Arguments, " "))...)
			}
		case "function_declaration":
			if fn, ok := function(child, src); ok {
				out.Functions = append(out.Functions, fn)
			}
		case "class_declaration", "abstract_class_declaration":
			if cls, ok := class(child, decorators, src, patterns, out); ok {
				out.Classes = append(out.Classes, cls)
			}
		case "interface_declaration":
			if iface, ok := iface(child, src); ok {
				out.Interfaces = append(out.Interfaces, iface)
			}
		case "string":
			// export { X } from './y' re-exports a module.
			if spec := stringContent(child, src); spec != "" {
				out.ImportSpecifiers = append(out.ImportSpecifiers, spec)
			}
		}
	}
}

func function(node *sitter.Node, src []byte) (index.Function, bool) {
	var fn index.Function
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			fn.Name = text(child, src)
		case "formal_parameters":
			fn.Parameters = parameters(child, src)
		case "type_annotation":
			fn.ReturnType = annotationType(child, src)
		}
	}
	return fn, fn.Name != ""
}

func class(node *sitter.Node, decorators []index.Decorator, src []byte, patterns PatternSet, out *FileStructure) (index.Class, bool) {
	cls := index.Class{Decorators: decorators}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			if d, ok := decorator(child, src); ok {
				cls.Decorators = append(cls.Decorators, d)
				out.DecoratorRefs = append(out.DecoratorRefs, patterns.FileRefs(strings.Join(d.Arguments, " "))...)
			}
		case "type_identifier":
			cls.Name = text(child, src)
		case "class_body":
			// Member decorators parse as class_body children preceding the
			// member they annotate, so carry them to the next method.
			var pending []index.Decorator
			for j := 0; j < int(child.ChildCount()); j++ {
				member := child.Child(j)
				switch member.Type() {
				case "decorator":
					if d, ok := decorator(member, src); ok {
						pending = append(pending, d)
					}
				case "method_definition":
					if m, ok := method(member, src); ok {
						m.Decorators = append(pending, m.Decorators...)
						cls.Methods = append(cls.Methods, m)
					}
					pending = nil
				default:
					if member.IsNamed() && member.Type() != "comment" {
						pending = nil
					}
				}
			}
		}
	}
	return cls, cls.Name != ""
}

func method(node *sitter.Node, src []byte) (index.Method, bool) {
	var m index.Method
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			if d, ok := decorator(child, src); ok {
				m.Decorators = append(m.Decorators, d)
			}
		case "property_identifier":
			m.Name = text(child, src)
		case "formal_parameters":
			m.Parameters = parameters(child, src)
		case "type_annotation":
			m.ReturnType = annotationType(child, src)
		}
	}
	return m, m.Name != ""
}

func iface(node *sitter.Node, src []byte) (index.Interface, bool) {
	var out index.Interface
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			out.Name = text(child, src)
		case "interface_body", "object_type":
			for j := 0; j < int(child.ChildCount()); j++ {
				member := child.Child(j)
				if member.Type() != "property_signature" {
					continue
				}
				if p, ok := property(member, src); ok {
					out.Properties = append(out.Properties, p)
				}
			}
		}
	}
	return out, out.Name != ""
}

func property(node *sitter.Node, src []byte) (index.Property, bool) {
	var p index.Property
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "property_identifier":
			p.Name = text(child, src)
		case "type_annotation":
			p.Type = annotationType(child, src)
		}
	}
	return p, p.Name != ""
}

// decorator reads "@Name" or "@Name(args...)" nodes.
func decorator(node *sitter.Node, src []byte) (index.Decorator, bool) {
	var d index.Decorator
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			d.Name = text(child, src)
		case "call_expression":
			if fn := child.ChildByFieldName("function"); fn != nil {
				d.Name = text(fn, src)
			}
			if args := child.ChildByFieldName("arguments"); args != nil {
				for j := 0; j < int(args.NamedChildCount()); j++ {
					d.Arguments = append(d.Arguments, text(args.NamedChild(j), src))
				}
			}
		}
	}
	return d, d.Name != ""
}

func parameters(node *sitter.Node, src []byte) []index.Parameter {
	var params []index.Parameter
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "required_parameter", "optional_parameter":
			var p index.Parameter
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					p.Name = text(gc, src)
				case "type_annotation":
					p.Type = annotationType(gc, src)
				}
			}
			if p.Name != "" {
				params = append(params, p)
			}
		}
	}
	return params
}

// importSource returns the module string of an import statement.
func importSource(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string" {
			return stringContent(child, src)
		}
	}
	return ""
}

// requireSources collects `const x = require('y')` module strings.
func requireSources(node *sitter.Node, src []byte) []string {
	var out []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			if gc.Type() != "call_expression" {
				continue
			}
			fn := gc.ChildByFieldName("function")
			if fn == nil || text(fn, src) != "require" {
				continue
			}
			args := gc.ChildByFieldName("arguments")
			if args == nil {
				continue
			}
			for k := 0; k < int(args.NamedChildCount()); k++ {
				arg := args.NamedChild(k)
				if arg.Type() == "string" {
					if s := stringContent(arg, src); s != "" {
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}

// stringContent returns the inner text of a string node without quotes.
func stringContent(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string_fragment" {
			return text(child, src)
		}
	}
	return strings.Trim(text(node, src), `'"`)
}

// annotationType strips the leading ":" from a type_annotation node.
func annotationType(node *sitter.Node, src []byte) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text(node, src)), ":"))
}

func text(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
