package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/compiler"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/eval"
)

var testCommand = cli.Command{
	Action:    runTest,
	Name:      "test",
	Usage:     "Run Et1 test programs",
	ArgsUsage: "[<path>...]",
	Description: `The test command discovers *_test.et1 files and .et1 files inside tests/
directories. Each file states its expected outcome in a leading comment:

    // expect: 42
    // expect-error: AMBIGUOUS_OVERLOAD

A file passes when the tree evaluator and the generated JavaScript both
produce the expected value, or compilation or evaluation fails with the
expected code.`,
}

// TestResult represents the result of running a single test
type TestResult struct {
	Name     string
	Passed   bool
	Error    error
	Output   string
	Duration time.Duration
}

// expectation is what a test file declares about its outcome.
type expectation struct {
	value string
	code  diag.Code
}

// runTest executes the test command
func runTest(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	paths := []string(ctx.Args())
	if len(paths) == 0 {
		paths = []string{"."}
	}

	failed := 0
	for _, path := range paths {
		n, err := runAllTests(s.compiler, path)
		if err != nil {
			return err
		}
		failed += n
	}
	if failed > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}

// runAllTests discovers and runs all tests in the given directory or file
// and returns the number of failures.
func runAllTests(c *compiler.Compiler, path string) (int, error) {
	var testFiles []string

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		testFiles, err = findTestFiles(path)
		if err != nil {
			return 0, fmt.Errorf("error finding test files: %w", err)
		}
	} else if strings.HasSuffix(path, ".et1") {
		testFiles = []string{path}
	}

	if len(testFiles) == 0 {
		fmt.Printf("No test files found in %s\n", path)
		return 0, nil
	}

	fmt.Printf("Running tests in %s...\n\n", path)

	var passedTests, failedTests int
	for _, testFile := range testFiles {
		result := runTestFile(c, testFile)
		if result.Passed {
			passedTests++
			fmt.Printf("  ✓ %s (%s)\n", result.Name, result.Duration.Round(time.Microsecond))
			continue
		}
		failedTests++
		fmt.Printf("  ✗ %s\n", result.Name)
		if result.Error != nil {
			fmt.Printf("    Error: %v\n", result.Error)
		}
		if result.Output != "" {
			fmt.Printf("    Output: %s\n", result.Output)
		}
	}

	fmt.Printf("\nTest Results: %d total, %d passed, %d failed\n", passedTests+failedTests, passedTests, failedTests)
	return failedTests, nil
}

// findTestFiles finds all test files in the given directory.
// Test files are those ending with _test.et1 or in a tests/ directory.
func findTestFiles(dir string) ([]string, error) {
	var testFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories
		if info.IsDir() && path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}

		if !info.IsDir() {
			if strings.HasSuffix(path, "_test.et1") {
				testFiles = append(testFiles, path)
			} else if strings.HasSuffix(path, ".et1") && filepath.Base(filepath.Dir(path)) == "tests" {
				testFiles = append(testFiles, path)
			}
		}

		return nil
	})

	return testFiles, err
}

// parseExpectation reads the expect comments at the top of src.
func parseExpectation(src string) (expectation, bool) {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "//") {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "//"))
		if v, ok := strings.CutPrefix(text, "expect-error:"); ok {
			return expectation{code: diag.Code(strings.TrimSpace(v))}, true
		}
		if v, ok := strings.CutPrefix(text, "expect:"); ok {
			return expectation{value: strings.TrimSpace(v)}, true
		}
	}
	return expectation{}, false
}

// runTestFile compiles one test file and checks it against its expectation
func runTestFile(c *compiler.Compiler, filename string) TestResult {
	name := filepath.Base(filename)
	start := time.Now()

	result := func(passed bool, output string, err error) TestResult {
		return TestResult{Name: name, Passed: passed, Error: err, Output: output, Duration: time.Since(start)}
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return result(false, "", fmt.Errorf("failed to read file: %w", err))
	}
	want, ok := parseExpectation(string(src))
	if !ok {
		return result(false, "", fmt.Errorf("missing // expect: or // expect-error: header"))
	}

	tree, err := evalTree(c, filename, string(src))
	if err != nil {
		if want.code != "" && diag.CodeOf(err) == want.code {
			return result(true, "", nil)
		}
		return result(false, "", err)
	}
	if want.code != "" {
		return result(false, tree.String(), fmt.Errorf("expected %s, program evaluated", want.code))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	js, err := c.EvalJS(ctx, string(src))
	if err != nil {
		return result(false, tree.String(), fmt.Errorf("javascript: %w", err))
	}
	if js != tree {
		return result(false, tree.String(), fmt.Errorf("javascript produced %s, tree evaluator %s", js, tree))
	}
	if tree.String() != want.value {
		return result(false, tree.String(), fmt.Errorf("expected %s", want.value))
	}
	return result(true, "", nil)
}

func evalTree(c *compiler.Compiler, filename, src string) (eval.Value, error) {
	prog, err := c.CompileFile(filename, src)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.New(prog).Eval()
}
