package exercise

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NotDoneMarker gates watch-mode progression. While an exercise's source
// still contains the marker, watch mode keeps re-running it on save even
// after it passes.
const NotDoneMarker = "I AM NOT DONE"

// ExpectLines returns a predicate accepting exactly the given lines, in
// order. ExpectLines() accepts only an empty transcript.
func ExpectLines(want ...string) OutputPredicate {
	return func(lines []string) bool {
		if len(lines) != len(want) {
			return false
		}
		for i := range want {
			if lines[i] != want[i] {
				return false
			}
		}
		return true
	}
}

// AnyOutput returns a predicate that accepts any transcript, including
// the empty one.
func AnyOutput() OutputPredicate {
	return func([]string) bool { return true }
}

// catalog is the ordered exercise list. Order matters: watch mode walks
// it front to back and stops at the first incomplete exercise.
var catalog = []Descriptor{
	{
		Name:      "Expressions1",
		Directory: "basics",
		Kind:      Compiled(),
		Hint:      "Every top-level binding needs a value. Replace each ??? with an expression of the annotated type.",
	},
	{
		Name:      "Expressions2",
		Directory: "basics",
		Kind:      Tested(),
		Hint:      "Integer division and `mod` are separate operations. Check what `div` does with negative operands.",
	},
	{
		Name:      "Types1",
		Directory: "types",
		Kind:      Compiled(),
		Hint:      "Read the compiler error closely: it tells you which annotation disagrees with the value.",
	},
	{
		Name:      "Types2",
		Directory: "types",
		Kind:      Tested(),
		Hint:      "A tuple type lists its component types in order. (Int, String) is not (String, Int).",
	},
	{
		Name:      "Functions1",
		Directory: "functions",
		Kind:      Compiled(),
		Hint:      "Function application binds tighter than any operator. Add parentheses around the argument.",
	},
	{
		Name:      "Functions2",
		Directory: "functions",
		Kind:      Tested(),
		Hint:      "Partial application: `add 3` is itself a function. You only need to supply the missing argument.",
	},
	{
		Name:      "Recursion1",
		Directory: "recursion",
		Kind:      Tested(),
		Hint:      "A recursive function needs a base case that does not recurse. What should happen for the empty list?",
	},
	{
		Name:      "Recursion2",
		Directory: "recursion",
		Kind:      Tested(),
		Hint:      "Accumulate as you go: pass the running total as an extra argument to a helper.",
	},
	{
		Name:      "Lists1",
		Directory: "lists",
		Kind:      Tested(),
		Hint:      "(:) prepends one element; (++) joins two lists. They are not interchangeable.",
	},
	{
		Name:      "Lists2",
		Directory: "lists",
		Kind:      Tested(),
		Hint:      "map, filter and foldr each replace one explicit recursion pattern. Pick the one that fits.",
	},
	{
		Name:      "Typeclasses1",
		Directory: "typeclasses",
		Kind:      Compiled(),
		Hint:      "An instance must implement every method the class declares without a default.",
	},
	{
		Name:      "Typeclasses2",
		Directory: "typeclasses",
		Kind:      Tested(),
		Hint:      "Derive Eq and Show where the structural definitions are good enough; write instances where they are not.",
	},
	{
		Name:      "Maybe1",
		Directory: "monads",
		Kind:      Tested(),
		Hint:      "Pattern match on Just and Nothing, or reach for `maybe` with a default.",
	},
	{
		Name:      "Monads1",
		Directory: "monads",
		Kind:      Tested(),
		Hint:      "do-notation is sugar for (>>=). Desugar one line at a time if the types confuse you.",
	},
	{
		Name:      "IO1",
		Directory: "io",
		Kind: Interactive(
			[]string{"World"},
			ExpectLines("Hello, World!"),
		),
		Hint: "getLine reads one line; putStrLn writes one. Greet whoever the input names.",
	},
	{
		Name:      "IO2",
		Directory: "io",
		Kind: Interactive(
			[]string{"3", "4"},
			ExpectLines("7"),
		),
		Hint: "Read two lines, convert each with `read`, print the sum of the numbers with `print`.",
	},
	{
		Name:      "IO3",
		Directory: "io",
		Kind: Interactive(
			[]string{"one", "two", "three"},
			ExpectLines("three", "two", "one"),
		),
		Hint: "Collect all input lines first, then emit them in reverse order.",
	},
}

// All returns the catalog in order. Callers must not mutate the result.
func All() []Descriptor {
	return catalog
}

// Lookup finds an exercise by name, case-insensitively.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range catalog {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the catalog's exercise names in order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

// HasMarker reports whether the file at path still contains the
// not-done marker.
func HasMarker(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("reading exercise source: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), NotDoneMarker) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// FirstIncomplete returns the first catalog exercise whose source file
// under exercisesRoot still carries the not-done marker. The boolean is
// false when every exercise is complete.
func FirstIncomplete(exercisesRoot string) (Descriptor, bool, error) {
	for _, d := range catalog {
		path := joinSource(exercisesRoot, d)
		marked, err := HasMarker(path)
		if err != nil {
			return Descriptor{}, false, err
		}
		if marked {
			return d, true, nil
		}
	}
	return Descriptor{}, false, nil
}

func joinSource(exercisesRoot string, d Descriptor) string {
	return filepath.Join(exercisesRoot, d.SourcePath())
}
