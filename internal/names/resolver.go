// Package names resolves expressions to the fully qualified names they refer
// to and edits the import statements of a module.
//
// Resolution is best effort. It follows import aliases and a single wildcard
// import but does no data flow analysis: anything it cannot follow is
// reported as unresolved and callers treat that as "no match".
package names

import (
	"sort"
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
)

// Binding is a name introduced into a module by an import statement.
type Binding struct {
	// Local is the name visible in the module, e.g. "s" for `import ssl as s`.
	Local string
	// Target is the qualified name the binding refers to, e.g. "ssl".
	Target string
	// Line is the start line of the import statement.
	Line int
	// TopLevel is set for imports that are direct children of the module.
	TopLevel bool
}

type wildcard struct {
	module string
	line   int
}

// Resolver answers qualified name queries for one version of a tree.
type Resolver struct {
	pos       *cst.Positions
	bindings  map[string][]Binding
	wildcards []wildcard
	assigned  map[string]struct{}
}

// NewResolver collects the import bindings of t. pos must have been computed
// for t.
func NewResolver(t *cst.Tree, pos *cst.Positions) *Resolver {
	r := &Resolver{
		pos:      pos,
		bindings: make(map[string][]Binding),
		assigned: make(map[string]struct{}),
	}

	for _, stmt := range t.Statements() {
		r.collectAssigned(stmt)
	}

	t.Root.Walk(func(n *cst.Node) bool {
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			r.collectImport(n, t.Root.ChildIndex(n) >= 0)

			return false
		}

		return true
	})

	for name := range r.bindings {
		sort.SliceStable(r.bindings[name], func(i, j int) bool {
			return r.bindings[name][i].Line < r.bindings[name][j].Line
		})
	}

	return r
}

func (r *Resolver) collectImport(stmt *cst.Node, top bool) {
	line := r.pos.Line(stmt)

	if stmt.Kind() == "import_statement" {
		for _, name := range stmt.ChildrenByField("name") {
			local, target := importedModule(name)
			r.add(Binding{Local: local, Target: target, Line: line, TopLevel: top})
		}

		return
	}

	module := ModuleName(stmt)

	for _, c := range stmt.Children() {
		if c.Kind() == "wildcard_import" {
			r.wildcards = append(r.wildcards, wildcard{module: module, line: line})
		}
	}

	for _, name := range stmt.ChildrenByField("name") {
		local, imported := importedName(name)
		r.add(Binding{Local: local, Target: join(module, imported), Line: line, TopLevel: top})
	}
}

func (r *Resolver) add(b Binding) {
	if b.Local == "" {
		return
	}

	r.bindings[b.Local] = append(r.bindings[b.Local], b)
}

func (r *Resolver) collectAssigned(stmt *cst.Node) {
	switch stmt.Kind() {
	case "function_definition", "class_definition":
		if name := stmt.ChildByField("name"); name != nil {
			r.assigned[name.Text()] = struct{}{}
		}
	case "decorated_definition":
		if def := stmt.ChildByField("definition"); def != nil {
			r.collectAssigned(def)
		}
	case "expression_statement":
		for _, c := range stmt.NamedChildren() {
			if c.Kind() != "assignment" {
				continue
			}

			if left := c.ChildByField("left"); left != nil && left.Kind() == "identifier" {
				r.assigned[left.Text()] = struct{}{}
			}
		}
	}
}

// importedModule handles one name of `import a.b` or `import a.b as c`.
// A plain dotted import binds its first component to itself.
func importedModule(n *cst.Node) (string, string) {
	if n.Kind() == "aliased_import" {
		alias := n.ChildByField("alias")
		name := n.ChildByField("name")

		if alias == nil || name == nil {
			return "", ""
		}

		return alias.Text(), name.Code()
	}

	dotted := n.Code()
	head, _, _ := strings.Cut(dotted, ".")

	return head, head
}

// importedName handles one name of `from m import a` or `from m import a as b`.
func importedName(n *cst.Node) (string, string) {
	if n.Kind() == "aliased_import" {
		alias := n.ChildByField("alias")
		name := n.ChildByField("name")

		if alias == nil || name == nil {
			return "", ""
		}

		return alias.Text(), name.Code()
	}

	return n.Code(), n.Code()
}

// ModuleName returns the module of a from-import, e.g. "os.path" or ".utils".
func ModuleName(stmt *cst.Node) string {
	if m := stmt.ChildByField("module_name"); m != nil {
		return m.Code()
	}

	return ""
}

func join(module, name string) string {
	if strings.HasSuffix(module, ".") {
		return module + name
	}

	return module + "." + name
}

// Resolve returns the qualified name n refers to. Identifiers resolve through
// the import bindings visible at their line; an unbound identifier resolves to
// itself. Attribute chains resolve their object and append the attribute.
// Everything else is unresolved.
func (r *Resolver) Resolve(n *cst.Node) (string, bool) {
	if n == nil {
		return "", false
	}

	switch n.Kind() {
	case "identifier":
		return r.resolveName(n), true
	case "attribute":
		obj, ok := r.Resolve(n.ChildByField("object"))
		if !ok {
			return "", false
		}

		attr := n.ChildByField("attribute")
		if attr == nil {
			return "", false
		}

		return obj + "." + attr.Text(), true
	}

	return "", false
}

// ResolvesTo reports whether n resolves to one of the qualified names.
func (r *Resolver) ResolvesTo(n *cst.Node, qualified ...string) bool {
	got, ok := r.Resolve(n)
	if !ok {
		return false
	}

	for _, q := range qualified {
		if got == q {
			return true
		}
	}

	return false
}

func (r *Resolver) resolveName(n *cst.Node) string {
	name := n.Text()

	if b, ok := r.binding(name, r.pos.Line(n)); ok {
		return b.Target
	}

	if _, local := r.assigned[name]; local || isBuiltin(name) {
		return name
	}

	if len(r.wildcards) == 1 {
		return join(r.wildcards[0].module, name)
	}

	return name
}

// binding returns the latest binding of name at or before line. Nodes that
// are not part of the tree (line 0) see every binding.
func (r *Resolver) binding(name string, line int) (Binding, bool) {
	candidates := r.bindings[name]

	for i := len(candidates) - 1; i >= 0; i-- {
		if line == 0 || candidates[i].Line <= line {
			return candidates[i], true
		}
	}

	return Binding{}, false
}

// Bound reports whether a top level import binds local to target.
func (r *Resolver) Bound(local, target string) bool {
	for _, b := range r.bindings[local] {
		if b.TopLevel && b.Target == target {
			return true
		}
	}

	return false
}

// Bindings returns every binding of local in source order.
func (r *Resolver) Bindings(local string) []Binding {
	return r.bindings[local]
}

var builtins = map[string]struct{}{
	"open": {}, "print": {}, "len": {}, "str": {}, "int": {}, "float": {}, "bool": {},
	"list": {}, "dict": {}, "set": {}, "tuple": {}, "range": {}, "type": {}, "object": {},
	"super": {}, "isinstance": {}, "getattr": {}, "setattr": {}, "hasattr": {}, "eval": {},
	"exec": {}, "input": {}, "iter": {}, "next": {}, "None": {}, "True": {}, "False": {},
	"Exception": {}, "__name__": {}, "__file__": {},
}

func isBuiltin(name string) bool {
	_, ok := builtins[name]

	return ok
}

// References counts the uses of the identifier local in the subtree of root.
// Names inside import statements, attribute names after a dot and keyword
// argument names are not uses.
func References(root *cst.Node, local string) int {
	count := 0

	var visit func(n *cst.Node)
	visit = func(n *cst.Node) {
		switch n.Kind() {
		case "import_statement", "import_from_statement", "future_import_statement":
			return
		case "identifier":
			if n.Text() == local {
				count++
			}

			return
		}

		for _, c := range n.Children() {
			if n.Kind() == "attribute" && c.Field() == "attribute" {
				continue
			}

			if n.Kind() == "keyword_argument" && c.Field() == "name" {
				continue
			}

			visit(c)
		}
	}
	visit(root)

	return count
}
