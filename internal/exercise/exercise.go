// Package exercise defines the exercise catalog: the ordered list of
// small Haskell source units the learner works through, together with
// the metadata the build pipeline needs to compile and check each one.
package exercise

import (
	"path/filepath"
	"strings"
)

// KindTag discriminates the closed set of exercise kinds.
type KindTag int

const (
	// CompileOnly exercises pass as soon as they compile.
	CompileOnly KindTag = iota

	// UnitTests exercises compile to a test binary whose exit code
	// decides pass/fail.
	UnitTests

	// Executable exercises compile to an interactive program that is
	// fed input lines and whose stdout transcript is checked by a
	// predicate.
	Executable
)

func (t KindTag) String() string {
	switch t {
	case CompileOnly:
		return "compile-only"
	case UnitTests:
		return "unit-tests"
	case Executable:
		return "executable"
	default:
		return "unknown"
	}
}

// OutputPredicate checks the ordered stdout lines of an executable
// exercise. It must be well-defined for the empty slice: exercises with
// no expected output supply a predicate accepting no lines.
type OutputPredicate func(lines []string) bool

// Kind is a tagged variant selecting the post-build behavior.
// Inputs and Check are only meaningful when Tag == Executable.
type Kind struct {
	Tag    KindTag
	Inputs []string
	Check  OutputPredicate
}

// Compiled returns a Kind for a compile-only exercise.
func Compiled() Kind { return Kind{Tag: CompileOnly} }

// Tested returns a Kind for a unit-test exercise.
func Tested() Kind { return Kind{Tag: UnitTests} }

// Interactive returns a Kind for an executable exercise with the given
// stdin lines and stdout predicate.
func Interactive(inputs []string, check OutputPredicate) Kind {
	return Kind{Tag: Executable, Inputs: inputs, Check: check}
}

// Runnable reports whether the build must produce a binary to run
// afterward. Compile-only exercises skip the output-binary flag.
func (k Kind) Runnable() bool { return k.Tag != CompileOnly }

// Descriptor identifies one exercise. Immutable once constructed.
type Descriptor struct {
	// Name is the exercise's unique name, e.g. "Types1". The source
	// file is <Name>.hs.
	Name string

	// Directory is the exercise's directory relative to the exercises
	// root, e.g. "basics".
	Directory string

	// Kind selects the execution strategy after a successful build.
	Kind Kind

	// Hint is shown by the hint command.
	Hint string
}

// SourceFile returns the exercise's file name.
func (d Descriptor) SourceFile() string {
	return d.Name + ".hs"
}

// SourcePath returns the exercise's source path relative to the
// exercises root.
func (d Descriptor) SourcePath() string {
	return filepath.Join(d.Directory, d.SourceFile())
}

// BinaryName returns the name of the executable the toolchain produces
// for runnable exercises, derived from the source file name.
func (d Descriptor) BinaryName() string {
	return strings.TrimSuffix(d.SourceFile(), ".hs")
}
