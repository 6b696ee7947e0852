package taskgraph

import (
	"fmt"
	"strings"
)

// DefaultCleanPaths lists the generated artifacts the built-in clean task
// removes: bytecode caches, build and distribution output, coverage reports,
// package metadata and the transient analysis files the tool leaves behind.
// The list is plain configuration; the executor itself never deletes
// anything.
var DefaultCleanPaths = []string{
	"__pycache__",
	"*/__pycache__",
	"build",
	"dist",
	"*.egg-info",
	".coverage",
	"htmlcov",
	"*_trees",
	"*.matched",
	"*.pickle",
	"*.tokenized",
}

const scaffoldTemplate = `# Packaging workflow. Every task is phony: it always runs when reached,
# there is no freshness check. Run a task with "phony <name>".
tasks:
  clean:
    desc: Remove caches and generated artifacts
    cmds:
      - rm -rf %s
  build:
    desc: Build the source distribution and the wheel
    cmds:
      - python -m build
  release:
    desc: Upload the built distributions
    cmds:
      - twine upload dist/*
  install:
    desc: Install the package for the current user
    cmds:
      - pip install --user .
  test:
    desc: Run the test suite
    cmds:
      - python -m unittest discover
  lint:
    desc: Check formatting and style
    cmds:
      - black --check --line-length 97 .
      - flake8 --ignore=E203,E501,W503 --count --statistics .
  refresh:
    desc: Lint, rebuild and reinstall from scratch
    deps: [lint, clean, build, install]
`

// Scaffold returns the task file written by "phony init".
func Scaffold() []byte {
	return []byte(fmt.Sprintf(scaffoldTemplate, strings.Join(DefaultCleanPaths, " ")))
}

// DefaultGraph returns the built-in packaging workflow, the same tasks the
// scaffold defines.
func DefaultGraph() Graph {
	file, err := Parse(Scaffold(), "builtin tasks")
	if err != nil {
		panic(err)
	}

	return file.Graph
}
