package codemods

import (
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
	"github.com/mouse-blink/codemodder/internal/names"
)

//go:embed stdlib.txt
var stdlibList string

var stdlib = func() map[string]bool {
	out := make(map[string]bool)

	for _, line := range strings.Split(stdlibList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out[line] = true
		}
	}

	return out
}()

// maxImportLine is the width above which from-imports are wrapped.
const maxImportLine = 79

type section int

const (
	sectionFuture section = iota
	sectionStdlib
	sectionThirdParty
	sectionFirstParty
	sectionLocal
	sectionCount
)

type importedAlias struct {
	name  string
	alias string
}

func (a importedAlias) String() string {
	if a.alias == "" {
		return a.name
	}

	return a.name + " as " + a.alias
}

type importEntry struct {
	from     bool
	module   string
	alias    string
	names    []importedAlias
	wildcard bool
	comments []string
	trailing string
}

func (e importEntry) mergeable() bool {
	return e.from && !e.wildcard && len(e.comments) == 0 && e.trailing == ""
}

func (e importEntry) render(nl string) string {
	if !e.from {
		line := "import " + e.module
		if e.alias != "" {
			line += " as " + e.alias
		}

		return line
	}

	if e.wildcard {
		return "from " + e.module + " import *"
	}

	parts := make([]string, len(e.names))
	for i, n := range e.names {
		parts[i] = n.String()
	}

	line := "from " + e.module + " import " + strings.Join(parts, ", ")
	if len(line) <= maxImportLine {
		return line
	}

	return "from " + e.module + " import (" + nl + "    " + strings.Join(parts, ","+nl+"    ") + "," + nl + ")"
}

type orderImports struct{}

// NewOrderImports sorts top level import blocks into sections.
func NewOrderImports() transform.Codemod {
	return orderImports{}
}

func (orderImports) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "order-imports",
		Summary:           "Order imports by type",
		Description:       "Organizes top level import blocks into future, standard library, third party, first party and local sections, each sorted alphabetically.",
		ChangeDescription: "Ordered import block below this line",
		ReviewGuidance:    m.MergeWithoutReview,
		References: []m.Reference{
			{URL: "https://peps.python.org/pep-0008/#imports", Description: "PEP 8: Imports"},
		},
	}
}

func (c orderImports) Transform(p *transform.Pass) (*cst.Tree, error) {
	stmts := p.Tree.Statements()
	out := make([]*cst.Node, 0, len(stmts))
	changed := false

	for i := 0; i < len(stmts); {
		if !isImportStatement(stmts[i]) {
			out = append(out, stmts[i])
			i++

			continue
		}

		end := importBlockEnd(stmts, i)
		block := stmts[i:end]
		i = end

		ordered, ok := c.orderBlock(p, block)
		if !ok {
			out = append(out, block...)

			continue
		}

		changed = true

		p.Report(block[0], c.Metadata().ChangeDescription)

		out = append(out, ordered...)
	}

	if !changed {
		return p.Tree, nil
	}

	return p.Tree.WithStatements(out), nil
}

func isImportStatement(n *cst.Node) bool {
	switch n.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		return true
	}

	return false
}

func isTrailingComment(n *cst.Node) bool {
	return n.Kind() == "comment" && !strings.Contains(n.Leading(), "\n")
}

// importBlockEnd returns the end of the contiguous import block starting at
// start. Comments on their own line belong to the block only when an import
// follows them.
func importBlockEnd(stmts []*cst.Node, start int) int {
	end := start + 1

	for end < len(stmts) {
		n := stmts[end]

		switch {
		case isImportStatement(n), isTrailingComment(n):
			end++

			continue
		case n.Kind() == "comment":
			k := end
			for k < len(stmts) && stmts[k].Kind() == "comment" {
				k++
			}

			if k < len(stmts) && isImportStatement(stmts[k]) {
				end = k

				continue
			}
		}

		break
	}

	return end
}

// orderBlock returns the sorted statements of block, or false when the block
// is out of scope, cannot be reordered safely or is already ordered.
func (c orderImports) orderBlock(p *transform.Pass, block []*cst.Node) ([]*cst.Node, bool) {
	if !p.Eligible(block[0]) {
		return nil, false
	}

	entries, ok := parseImportBlock(block)
	if !ok {
		return nil, false
	}

	text := renderSections(c.sections(p.File, entries), p.Tree.Newline())

	var original strings.Builder

	original.WriteString(block[0].Code())

	for _, n := range block[1:] {
		original.WriteString(n.Source())
	}

	if text == original.String() {
		return nil, false
	}

	nodes, err := cst.ParseStatements(text)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}

	nodes[0] = nodes[0].WithLeading(block[0].Leading())

	return nodes, true
}

func parseImportBlock(block []*cst.Node) ([]importEntry, bool) {
	var (
		entries []importEntry
		pending []string
	)

	for _, n := range block {
		if n.Kind() == "comment" {
			if isTrailingComment(n) && len(entries) > 0 && len(pending) == 0 {
				entries[len(entries)-1].trailing = strings.TrimSuffix(n.Source(), "\r")
			} else {
				pending = append(pending, strings.TrimSuffix(n.Code(), "\r"))
			}

			continue
		}

		if hasDescendant(n, "comment") {
			return nil, false
		}

		parsed := parseImport(n)
		if len(parsed) == 0 {
			return nil, false
		}

		parsed[0].comments = pending
		pending = nil

		entries = append(entries, parsed...)
	}

	return entries, len(pending) == 0
}

func parseImport(n *cst.Node) []importEntry {
	if n.Kind() == "import_statement" {
		var out []importEntry

		for _, name := range n.ChildrenByField("name") {
			e := importEntry{module: name.Code()}

			if name.Kind() == "aliased_import" {
				e.module = name.ChildByField("name").Code()
				e.alias = name.ChildByField("alias").Text()
			}

			out = append(out, e)
		}

		return out
	}

	e := importEntry{from: true, module: names.ModuleName(n)}
	if n.Kind() == "future_import_statement" {
		e.module = "__future__"
	}

	for _, c := range n.Children() {
		if c.Kind() == "wildcard_import" {
			e.wildcard = true
		}
	}

	for _, name := range n.ChildrenByField("name") {
		if name.Kind() == "aliased_import" {
			e.names = append(e.names, importedAlias{
				name:  name.ChildByField("name").Code(),
				alias: name.ChildByField("alias").Text(),
			})

			continue
		}

		e.names = append(e.names, importedAlias{name: name.Code()})
	}

	if !e.wildcard && len(e.names) == 0 {
		return nil
	}

	return []importEntry{e}
}

func (c orderImports) sections(file *transform.FileContext, entries []importEntry) [sectionCount][]importEntry {
	var out [sectionCount][]importEntry

	for _, e := range entries {
		s := classify(file.ProjectDir, e.module)
		out[s] = append(out[s], e)
	}

	for i := range out {
		out[i] = sortSection(out[i])
	}

	return out
}

func classify(projectDir, module string) section {
	if module == "__future__" {
		return sectionFuture
	}

	if strings.HasPrefix(module, ".") {
		return sectionLocal
	}

	top, _, _ := strings.Cut(module, ".")

	switch {
	case stdlib[top]:
		return sectionStdlib
	case isFirstParty(projectDir, top):
		return sectionFirstParty
	}

	return sectionThirdParty
}

func isFirstParty(projectDir, top string) bool {
	if projectDir == "" {
		return false
	}

	if info, err := os.Stat(filepath.Join(projectDir, top)); err == nil && info.IsDir() {
		return true
	}

	_, err := os.Stat(filepath.Join(projectDir, top+".py"))

	return err == nil
}

// sortSection puts `import x` lines before from-imports, merges from-imports
// of the same module and sorts modules and names.
func sortSection(entries []importEntry) []importEntry {
	var (
		straight []importEntry
		froms    []importEntry
	)

	merged := make(map[string]int)

	for _, e := range entries {
		if !e.from {
			straight = append(straight, e)

			continue
		}

		if e.mergeable() {
			if i, ok := merged[e.module]; ok {
				froms[i].names = append(froms[i].names, e.names...)

				continue
			}

			merged[e.module] = len(froms)
		}

		froms = append(froms, e)
	}

	straight = dedupeStraight(straight)

	for i := range froms {
		froms[i].names = sortNames(froms[i].names)
	}

	byModule := func(list []importEntry) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := list[i], list[j]
			if la, lb := strings.ToLower(a.module), strings.ToLower(b.module); la != lb {
				return la < lb
			}

			if a.module != b.module {
				return a.module < b.module
			}

			return a.alias < b.alias
		}
	}

	sort.SliceStable(straight, byModule(straight))
	sort.SliceStable(froms, byModule(froms))

	return append(straight, froms...)
}

func dedupeStraight(entries []importEntry) []importEntry {
	seen := make(map[importedAlias]bool)
	out := entries[:0:0]

	for _, e := range entries {
		key := importedAlias{name: e.module, alias: e.alias}
		if seen[key] && len(e.comments) == 0 && e.trailing == "" {
			continue
		}

		seen[key] = true
		out = append(out, e)
	}

	return out
}

// sortNames orders imported names constants first, then classes, then the
// rest, dropping duplicates.
func sortNames(list []importedAlias) []importedAlias {
	seen := make(map[importedAlias]bool)
	out := list[:0:0]

	for _, n := range list {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := nameRank(out[i].name), nameRank(out[j].name)
		if ri != rj {
			return ri < rj
		}

		if li, lj := strings.ToLower(out[i].name), strings.ToLower(out[j].name); li != lj {
			return li < lj
		}

		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}

		return out[i].alias < out[j].alias
	})

	return out
}

func nameRank(name string) int {
	letters := strings.IndexFunc(name, unicode.IsLetter) >= 0

	switch {
	case letters && len(name) > 1 && name == strings.ToUpper(name):
		return 0
	case letters && unicode.IsUpper([]rune(name)[0]):
		return 1
	}

	return 2
}

func renderSections(sections [sectionCount][]importEntry, nl string) string {
	var lines []string

	for _, entries := range sections {
		if len(entries) == 0 {
			continue
		}

		if len(lines) > 0 {
			lines = append(lines, "")
		}

		for _, e := range entries {
			lines = append(lines, e.comments...)
			lines = append(lines, e.render(nl)+e.trailing)
		}
	}

	return strings.Join(lines, nl)
}
