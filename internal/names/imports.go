package names

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
)

// AddImport makes sure `from module import name` is present at the top level
// of t. It returns t unchanged when name is already imported from module.
func AddImport(t *cst.Tree, module, name string) (*cst.Tree, bool, error) {
	for _, stmt := range t.Statements() {
		if stmt.Kind() != "import_from_statement" || ModuleName(stmt) != module {
			continue
		}

		for _, n := range stmt.ChildrenByField("name") {
			if local, imported := importedName(n); local == name && imported == name {
				return t, false, nil
			}
		}
	}

	return insertImport(t, fmt.Sprintf("from %s import %s", module, name))
}

// AddModuleImport makes sure `import module` is present at the top level of t.
func AddModuleImport(t *cst.Tree, module string) (*cst.Tree, bool, error) {
	for _, stmt := range t.Statements() {
		if stmt.Kind() != "import_statement" {
			continue
		}

		for _, n := range stmt.ChildrenByField("name") {
			if n.Kind() != "aliased_import" && n.Code() == module {
				return t, false, nil
			}
		}
	}

	return insertImport(t, "import "+module)
}

func insertImport(t *cst.Tree, code string) (*cst.Tree, bool, error) {
	stmt, err := cst.ParseStatement(code)
	if err != nil {
		return t, false, err
	}

	stmts := t.Statements()
	at := importInsertionPoint(stmts)
	nl := t.Newline()

	out := make([]*cst.Node, 0, len(stmts)+1)
	out = append(out, stmts[:at]...)

	switch {
	case at > 0:
		out = append(out, stmt.WithLeading(nl))
		out = append(out, stmts[at:]...)
	case len(stmts) > 0:
		out = append(out, stmt.WithLeading(stmts[0].Leading()))
		out = append(out, stmts[0].WithLeading(nl))
		out = append(out, stmts[1:]...)
	default:
		out = append(out, stmt)
	}

	result := t.WithStatements(out)
	if len(stmts) == 0 && result.Trailer == "" {
		result = &cst.Tree{Root: result.Root, Trailer: nl}
	}

	return result, true, nil
}

// importInsertionPoint returns the index after the header of the module: the
// leading comments, the docstring and the run of imports that follows them.
func importInsertionPoint(stmts []*cst.Node) int {
	at := 0
	seenCode := false

	for i, stmt := range stmts {
		switch {
		case stmt.Kind() == "comment":
			if !seenCode {
				at = i + 1
			}

			continue
		case isImport(stmt):
			at = i + 1
		case !seenCode && isDocstring(stmt):
			at = i + 1
		default:
			return at
		}

		seenCode = true
	}

	return at
}

func isImport(stmt *cst.Node) bool {
	switch stmt.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		return true
	}

	return false
}

func isDocstring(stmt *cst.Node) bool {
	if stmt.Kind() != "expression_statement" {
		return false
	}

	named := stmt.NamedChildren()

	return len(named) == 1 && named[0].Kind() == "string"
}

// RemoveImportedName drops name from every top level `from module import ...`
// statement of t. A statement left without names is removed.
func RemoveImportedName(t *cst.Tree, module, name string) (*cst.Tree, bool) {
	return removeImports(t, func(stmt, n *cst.Node) bool {
		if stmt.Kind() != "import_from_statement" || ModuleName(stmt) != module {
			return false
		}

		local, imported := importedName(n)

		return local == name && imported == name
	})
}

// RemoveModuleImport drops `import module` from the top level of t.
func RemoveModuleImport(t *cst.Tree, module string) (*cst.Tree, bool) {
	return removeImports(t, func(stmt, n *cst.Node) bool {
		return stmt.Kind() == "import_statement" && n.Kind() != "aliased_import" && n.Code() == module
	})
}

func removeImports(t *cst.Tree, drop func(stmt, name *cst.Node) bool) (*cst.Tree, bool) {
	stmts := t.Statements()
	out := make([]*cst.Node, 0, len(stmts))
	changed := false
	removedPrev := false

	for _, stmt := range stmts {
		if removedPrev {
			removedPrev = false

			// a comment on the same line as the removed import goes with it
			if stmt.Kind() == "comment" && !strings.Contains(stmt.Leading(), "\n") {
				removedPrev = true

				continue
			}

			// the file header must not start with blank lines
			if len(out) == 0 {
				stmt = stmt.WithLeading("")
			}
		}

		if !isImport(stmt) {
			out = append(out, stmt)

			continue
		}

		kept, removedAll, ok := dropNames(stmt, drop)
		if !ok {
			out = append(out, stmt)

			continue
		}

		changed = true

		if removedAll {
			removedPrev = true

			continue
		}

		out = append(out, kept)
	}

	if !changed {
		return t, false
	}

	return t.WithStatements(out), true
}

// dropNames removes the matching names of one import statement together with
// their separating comma.
func dropNames(stmt *cst.Node, drop func(stmt, name *cst.Node) bool) (*cst.Node, bool, bool) {
	children := slices.Clone(stmt.Children())
	names := 0
	removed := 0

	for i := 0; i < len(children); i++ {
		c := children[i]
		if c.Field() != "name" {
			continue
		}

		names++

		if !drop(stmt, c) {
			continue
		}

		removed++

		switch {
		case i+1 < len(children) && children[i+1].Kind() == ",":
			leading := c.Leading()
			children = slices.Delete(children, i, i+2)

			if i < len(children) && children[i].Field() == "name" {
				children[i] = children[i].WithLeading(leading)
			}
		case i > 0 && children[i-1].Kind() == ",":
			children = slices.Delete(children, i-1, i+1)
			i--
		default:
			children = slices.Delete(children, i, i+1)
		}

		i--
	}

	if removed == 0 {
		return stmt, false, false
	}

	if removed == names {
		return nil, true, true
	}

	return stmt.WithChildren(children), false, true
}
