// Package codemods holds the codemods shipped with the tool.
package codemods

import (
	"github.com/mouse-blink/codemodder/internal/domain/transform"
)

// All returns every codemod in execution order. Import ordering runs last so
// it also sorts the imports added by earlier codemods.
func All() []transform.Codemod {
	return []transform.Codemod{
		NewProcessSandbox(),
		NewURLSandbox(),
		NewEmptySequenceComparison(),
		NewSecureFlaskSession(),
		NewUnnecessaryFString(),
		NewLimitReadline(),
		NewUpgradeSSLContext(),
		NewDjangoReceiverOnTop(),
		NewOrderImports(),
	}
}

// Registry returns the collection of every codemod.
func Registry() *transform.Collection {
	c, err := transform.NewCollection(All()...)
	if err != nil {
		panic(err)
	}

	return c
}
