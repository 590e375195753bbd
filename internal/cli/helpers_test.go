package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fuseScenario fuses two phase rotations into one u1.
const fuseScenario = `
name: fuse
description: "Fuse two phase rotations"
registers:
  qubits:
    q: 1
ops:
  - {gate: u1, params: [pi/4], qubits: ["q[0]"]}
  - {gate: u1, params: [pi/4], qubits: ["q[0]"]}
passes: [optimize_1q]
expect:
  ops: 1
`

// zzScenario holds one cx-phase-cx motif.
const zzScenario = `
name: zz
description: "Collapse one zz motif"
registers:
  qubits:
    q: 2
ops:
  - {gate: cx, qubits: ["q[0]", "q[1]"]}
  - {gate: u1, params: [0.5], qubits: ["q[1]"]}
  - {gate: cx, qubits: ["q[0]", "q[1]"]}
expect:
  ops: 1
  contains:
    - "zz_interaction(0.5) q[0], q[1]"
`

// failingScenario expects more operations than the pipeline leaves.
const failingScenario = `
name: wrong_count
description: "Expects the fused run to stay unfused"
registers:
  qubits:
    q: 1
ops:
  - {gate: u1, params: [0.1], qubits: ["q[0]"]}
  - {gate: u1, params: [0.2], qubits: ["q[0]"]}
passes: [optimize_1q]
expect:
  ops: 2
`

// zzLikeLibrary is a composite whose body is the zz motif.
const zzLikeLibrary = `gate: zz_like: {
	qubits: 2
	params: ["theta"]
	body: [
		{op: "cx", qubits: [0, 1]},
		{op: "u1", qubits: [1], params: ["theta"]},
		{op: "cx", qubits: [0, 1]},
	]
}
`

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// executeCommand runs the root command with args and returns stdout,
// stderr and the command error.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
