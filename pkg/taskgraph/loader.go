package taskgraph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TaskFileName is the file the runner searches for, starting at the working
// directory and walking up towards the filesystem root.
const TaskFileName = "tasks.yml"

type taskSpec struct {
	Desc   string            `yaml:"desc,omitempty"`
	Deps   []string          `yaml:"deps,omitempty"`
	Cmds   []string          `yaml:"cmds,omitempty"`
	Env    map[string]string `yaml:"env,omitempty"`
	Hidden bool              `yaml:"hidden,omitempty"`
}

type taskFile struct {
	Default string              `yaml:"default,omitempty"`
	Env     map[string]string   `yaml:"env,omitempty"`
	Tasks   map[string]taskSpec `yaml:"tasks"`
}

// File is a parsed task file.
type File struct {
	Path    string
	Default string
	Graph   Graph
}

// Parse builds a task graph from task file contents. path is only used in
// error messages.
//
// Validation covers everything that can be checked without resolving a
// target: empty names, empty command strings and a default that doesn't
// exist. Dangling prerequisites and cycles are left to Resolve so that they
// are reported against the requested target.
func Parse(data []byte, path string) (*File, error) {
	var spec taskFile
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}

	if len(spec.Tasks) == 0 {
		return nil, eris.Errorf("%s defines no tasks", path)
	}

	graph := make(Graph, len(spec.Tasks))
	for name, task := range spec.Tasks {
		if strings.TrimSpace(name) == "" {
			return nil, eris.Errorf("%s contains a task with an empty name", path)
		}

		for idx, cmd := range task.Cmds {
			if strings.TrimSpace(cmd) == "" {
				return nil, eris.Errorf("task %s: command %d is empty", name, idx+1)
			}
		}

		graph[name] = &Task{
			Name:   name,
			Desc:   task.Desc,
			Deps:   task.Deps,
			Cmds:   task.Cmds,
			Env:    mergeEnv(spec.Env, task.Env),
			Hidden: task.Hidden,
		}
	}

	if spec.Default != "" {
		if _, ok := graph[spec.Default]; !ok {
			return nil, &UnknownTaskError{Name: spec.Default, Referrer: "default"}
		}
	}

	return &File{
		Path:    path,
		Default: spec.Default,
		Graph:   graph,
	}, nil
}

// LoadFile reads and parses the task file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	return Parse(data, path)
}

// FindTaskFile searches dir and its parent directories for TaskFileName and
// returns the first match. When nothing matches, the returned error wraps
// os.ErrNotExist so callers can fall back to the builtin tasks.
func FindTaskFile(dir string) (string, error) {
	path, err := filepath.Abs(dir)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve %s", dir)
	}

	for {
		candidate := filepath.Join(path, TaskFileName)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", candidate)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Wrapf(os.ErrNotExist, "no %s found in %s or any parent directory", TaskFileName, dir)
		}

		path = parent
	}
}

func mergeEnv(global, task map[string]string) map[string]string {
	if len(global) == 0 {
		return task
	}

	merged := make(map[string]string, len(global)+len(task))
	for name, value := range global {
		merged[name] = value
	}
	for name, value := range task {
		merged[name] = value
	}

	return merged
}
