package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/michael-madume-trilogy/ai-repo-summarization/internal/index"
)

// Normalize renders a module-system-normalized skeleton of the file: resolved
// imports as CommonJS requires plus the declaration shapes. The rendering is
// advisory context for summarization, never authoritative over the source.
func Normalize(structure FileStructure, resolvedImports []string) string {
	var b strings.Builder
	b.WriteString("\"use strict\";\n")

	for _, imp := range resolvedImports {
		base := strings.TrimSuffix(filepath.Base(imp), filepath.Ext(imp))
		fmt.Fprintf(&b, "const %s = require(%q);\n", identFor(base), imp)
	}
	if len(resolvedImports) > 0 {
		b.WriteString("\n")
	}

	for _, fn := range structure.Functions {
		fmt.Fprintf(&b, "function %s(%s) { /* … */ }\n", fn.Name, paramList(fn.Parameters))
	}
	for _, cls := range structure.Classes {
		for _, d := range cls.Decorators {
			fmt.Fprintf(&b, "// @%s\n", d.Name)
		}
		fmt.Fprintf(&b, "class %s {\n", cls.Name)
		for _, m := range cls.Methods {
			fmt.Fprintf(&b, "  %s(%s) { /* … */ }\n", m.Name, paramList(m.Parameters))
		}
		b.WriteString("}\n")
	}
	// Interfaces erase at runtime; keep their shape as a comment block.
	for _, iface := range structure.Interfaces {
		fmt.Fprintf(&b, "// interface %s { ", iface.Name)
		for i, p := range iface.Properties {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(p.Name)
			if p.Type != "" {
				b.WriteString(": " + p.Type)
			}
		}
		b.WriteString(" }\n")
	}
	return b.String()
}

func paramList(params []index.Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// identFor massages a file base name into something identifier-shaped.
func identFor(base string) string {
	var b strings.Builder
	for i, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "mod"
	}
	return b.String()
}
