package taskgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsTasksInPlanOrder(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"one": {Name: "one", Cmds: []string{`printf 'one\n' >> order.txt`}},
		"two": {Name: "two", Deps: []string{"one"}, Cmds: []string{`printf 'two\n' >> order.txt`}},
	}

	plan, err := Resolve(graph, "two")
	require.NoError(t, err)

	result, err := Execute(context.Background(), graph, plan, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, result.Ran)

	data, err := os.ReadFile(filepath.Join(dir, "order.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestExecuteFailFastWithinTask(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"broken": {Name: "broken", Cmds: []string{
			"false",
			"printf x > after.txt",
		}},
	}

	_, err := Execute(context.Background(), graph, Plan{"broken"}, Options{Dir: dir})
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "broken", cmdErr.Task)
	assert.Equal(t, 0, cmdErr.CmdIndex)
	assert.Equal(t, "false", cmdErr.CmdText)
	assert.Equal(t, 1, cmdErr.Status)
	assert.Empty(t, cmdErr.Completed)

	assert.NoFileExists(t, filepath.Join(dir, "after.txt"))
}

func TestExecuteFailFastAcrossTasks(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"lint":    {Name: "lint", Cmds: []string{"printf x > lint.txt"}},
		"clean":   {Name: "clean"},
		"build":   {Name: "build", Cmds: []string{"exit 3"}},
		"install": {Name: "install", Cmds: []string{"printf x > install.txt"}},
		"refresh": {Name: "refresh", Deps: []string{"lint", "clean", "build", "install"}},
	}

	plan, err := Resolve(graph, "refresh")
	require.NoError(t, err)
	require.Equal(t, Plan{"lint", "clean", "build", "install", "refresh"}, plan)

	_, err = Execute(context.Background(), graph, plan, Options{Dir: dir})
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "build", cmdErr.Task)
	assert.Equal(t, 3, cmdErr.Status)
	assert.Equal(t, []string{"lint", "clean"}, cmdErr.Completed)

	assert.FileExists(t, filepath.Join(dir, "lint.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "install.txt"))
}

func TestExecuteDryRunRunsNothing(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"touch": {Name: "touch", Cmds: []string{"printf x > touched.txt"}},
	}

	result, err := Execute(context.Background(), graph, Plan{"touch"}, Options{Dir: dir, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"touch"}, result.Ran)
	assert.NoFileExists(t, filepath.Join(dir, "touched.txt"))
}

func TestExecuteEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"greet": {
			Name: "greet",
			Env:  map[string]string{"GREETING": "from-task"},
			Cmds: []string{`printf '%s' "$GREETING" > env.txt`},
		},
	}

	// the task's own env wins over the run-wide overrides
	opts := Options{Dir: dir, Env: map[string]string{"GREETING": "from-opts"}}
	_, err := Execute(context.Background(), graph, Plan{"greet"}, opts)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "env.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from-task", string(data))
}

func TestExecuteUnknownPlanEntry(t *testing.T) {
	_, err := Execute(context.Background(), Graph{}, Plan{"ghost"}, Options{})

	var unknownErr *UnknownTaskError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "ghost", unknownErr.Name)
}

func TestCleanIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build", "lib"), 0o770))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0o770))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "lib", "mod.py"), []byte("x"), 0o660))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.pickle"), []byte("x"), 0o660))

	graph := Graph{
		"clean": {Name: "clean", Cmds: []string{"rm -rf build dist *.egg-info *.pickle"}},
	}

	for run := 0; run < 2; run++ {
		result, err := Execute(context.Background(), graph, Plan{"clean"}, Options{Dir: dir})
		require.NoError(t, err, "clean run %d must not fail", run+1)
		assert.Equal(t, []string{"clean"}, result.Ran)
	}

	assert.NoDirExists(t, filepath.Join(dir, "build"))
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
	assert.NoFileExists(t, filepath.Join(dir, "stray.pickle"))
}

func TestRemoveDirectoryNeedsRecursiveFlag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "build"), 0o770))

	graph := Graph{
		"clean": {Name: "clean", Cmds: []string{"rm build"}},
	}

	_, err := Execute(context.Background(), graph, Plan{"clean"}, Options{Dir: dir})

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.Status)
	assert.DirExists(t, filepath.Join(dir, "build"))
}

func TestRedirectToNullDevice(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"quiet": {Name: "quiet", Cmds: []string{"printf noise > /dev/null"}},
	}

	result, err := Execute(context.Background(), graph, Plan{"quiet"}, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"quiet"}, result.Ran)
	assert.NoDirExists(t, filepath.Join(dir, "dev"))
}

func TestMkdirAndMoveOverrides(t *testing.T) {
	dir := t.TempDir()
	graph := Graph{
		"shuffle": {Name: "shuffle", Cmds: []string{
			"mkdir -p a/b",
			"printf x > a/b/f.txt",
			"mv a/b/f.txt a",
		}},
	}

	_, err := Execute(context.Background(), graph, Plan{"shuffle"}, Options{Dir: dir})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a", "f.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "a", "b", "f.txt"))
}
