package transform

import (
	"fmt"
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// Origin and Language qualify codemod identifiers.
const (
	Origin   = "pixee"
	Language = "python"
)

// Codemod is a named tree rewrite.
type Codemod interface {
	Metadata() m.Metadata
	// Transform returns the rewritten tree, or p.Tree when nothing changed.
	// Every edit must be recorded on p.
	Transform(p *Pass) (*cst.Tree, error)
}

// ID returns the qualified identifier of c, e.g. pixee:python/url-sandbox.
func ID(c Codemod) string {
	return QualifiedID(c.Metadata().Name)
}

// QualifiedID qualifies a codemod name.
func QualifiedID(name string) string {
	return fmt.Sprintf("%s:%s/%s", Origin, Language, name)
}

// Collection is an ordered set of codemods.
type Collection struct {
	codemods []Codemod
	byName   map[string]Codemod
}

// NewCollection builds a collection preserving the given order. Names must be
// unique.
func NewCollection(codemods ...Codemod) (*Collection, error) {
	c := &Collection{byName: make(map[string]Codemod, len(codemods))}

	for _, cm := range codemods {
		name := cm.Metadata().Name
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate codemod %q", name)
		}

		c.byName[name] = cm
		c.codemods = append(c.codemods, cm)
	}

	return c, nil
}

// All returns the codemods in registration order.
func (c *Collection) All() []Codemod {
	return append([]Codemod(nil), c.codemods...)
}

// Lookup finds a codemod by name or qualified id.
func (c *Collection) Lookup(name string) (Codemod, bool) {
	cm, ok := c.byName[shortName(name)]

	return cm, ok
}

// Select returns the codemods to run in registration order. A non-empty
// include list keeps only the named codemods; otherwise every codemod not in
// exclude runs. Unknown names are an error.
func (c *Collection) Select(include, exclude []string) ([]Codemod, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("codemod include and exclude lists are mutually exclusive")
	}

	wanted, err := c.nameSet(include)
	if err != nil {
		return nil, err
	}

	skipped, err := c.nameSet(exclude)
	if err != nil {
		return nil, err
	}

	var out []Codemod

	for _, cm := range c.codemods {
		name := cm.Metadata().Name

		if len(wanted) > 0 {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}

		if _, ok := skipped[name]; ok {
			continue
		}

		out = append(out, cm)
	}

	return out, nil
}

func (c *Collection) nameSet(names []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		short := shortName(n)
		if _, ok := c.byName[short]; !ok {
			return nil, fmt.Errorf("unknown codemod %q", n)
		}

		set[short] = struct{}{}
	}

	return set, nil
}

func shortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 && strings.Contains(name, ":") {
		return name[i+1:]
	}

	return name
}
