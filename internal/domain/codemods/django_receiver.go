package codemods

import (
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

type djangoReceiverOnTop struct{}

// NewDjangoReceiverOnTop moves @receiver to the top of a decorator list.
func NewDjangoReceiverOnTop() transform.Codemod {
	return djangoReceiverOnTop{}
}

func (djangoReceiverOnTop) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "django-receiver-on-top",
		Summary:           "Ensure Django @receiver is the first decorator",
		Description:       "Django registers a signal handler with whatever function @receiver wraps, so any decorator above it is skipped when the signal fires.",
		ChangeDescription: "Moved @receiver to the top.",
		ReviewGuidance:    m.MergeWithoutReview,
		References: []m.Reference{
			{URL: "https://docs.djangoproject.com/en/4.1/topics/signals/", Description: "Django signals"},
		},
	}
}

func (c djangoReceiverOnTop) isReceiver(p *transform.Pass, decorator *cst.Node) bool {
	named := decorator.NamedChildren()
	if len(named) == 0 {
		return false
	}

	expr := named[0]
	if expr.Kind() == "call" {
		expr = expr.ChildByField("function")
	}

	return p.Names.ResolvesTo(expr, "django.dispatch.receiver")
}

func (c djangoReceiverOnTop) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		if original.Kind() != "decorated_definition" {
			return nil
		}

		def := original.ChildByField("definition")
		if def == nil || def.Kind() != "function_definition" || !p.Eligible(def) {
			return nil
		}

		var slots, receivers, others []int

		for i, child := range original.Children() {
			if child.Kind() != "decorator" {
				continue
			}

			slots = append(slots, i)

			if c.isReceiver(p, child) {
				receivers = append(receivers, i)
			} else {
				others = append(others, i)
			}
		}

		if len(receivers) == 0 || isPrefix(receivers, slots) {
			return nil
		}

		order := append(append([]int(nil), receivers...), others...)
		children := append([]*cst.Node(nil), updated.Children()...)

		for k, slot := range slots {
			moved := updated.Child(order[k])
			children[slot] = moved.WithLeading(updated.Child(slot).Leading())
		}

		p.Report(def, desc)

		return updated.WithChildren(children)
	})

	return out, nil
}

// isPrefix reports whether a equals the first len(a) elements of b.
func isPrefix(a, b []int) bool {
	if len(a) > len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
