package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/ir"
)

// execute runs the CLI with args against db and returns stdout.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--db", db, "--log-level", "error"))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func registerPosition(t *testing.T, db string) {
	t.Helper()
	_, err := execute(t, db, "register",
		"--id", "0x1",
		"--name", "Position",
		"--address", "0x00aa",
		"--class-hash", "0x00bb",
		"--tx-hash", "0x00cc",
		"--definition", "x: Felt, y: Felt",
		"--created-at", "2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)
}

func TestRegister_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	out, err := execute(t, db, "register",
		"--id", "0x1", "--name", "player_moves",
		"--address", "0x1", "--class-hash", "0x2", "--tx-hash", "0x3",
		"--definition", "remaining: Felt")
	require.NoError(t, err)
	assert.Equal(t, "Registered player_moves (0x1) as PlayerMoves\n", out)
}

func TestRegister_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	out, err := execute(t, db, "register", "--format", "json",
		"--id", "0x1", "--name", "Position",
		"--address", "0x00aa", "--class-hash", "0x00bb", "--tx-hash", "0x00cc",
		"--definition", "x: Felt, y: Felt",
		"--created-at", "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{
		"id":                "0x1",
		"name":              "Position",
		"typeName":          "Position",
		"address":           "0xaa",
		"classHash":         "0xbb",
		"transactionHash":   "0xcc",
		"storageDefinition": "x: Felt, y: Felt",
		"createdAt":         "2024-01-01T00:00:00Z",
	}, resp.Data)
}

func TestRegister_Rejected(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	out, err := execute(t, db, "register", "--format", "json",
		"--id", "0x1", "--name", "Broken",
		"--address", "0x1", "--class-hash", "0x2", "--tx-hash", "0x3",
		"--definition", "x Felt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PARSE_ERROR", resp.Error.Code)
}

func TestRegister_Conflict(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")
	registerPosition(t, db)
	registerPosition(t, db)

	_, err := execute(t, db, "register",
		"--id", "0x2", "--name", "Position",
		"--address", "0x1", "--class-hash", "0x2", "--tx-hash", "0x3",
		"--definition", "x: Felt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRegister_BadCreatedAt(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	_, err := execute(t, db, "register",
		"--id", "0x1", "--name", "Position",
		"--address", "0x1", "--class-hash", "0x2", "--tx-hash", "0x3",
		"--definition", "x: Felt", "--created-at", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSetAndQuery(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")
	registerPosition(t, db)

	out, err := execute(t, db, "set", "0x1", "x=0x0a", "y=20")
	require.NoError(t, err)
	assert.Equal(t, "Updated 2 field(s) of 0x1\n", out)

	out, err = execute(t, db, "query", "--format", "json",
		`{ component(id: "0x1") { name storage { __typename ... on Position { x y } } } }`)
	require.NoError(t, err)
	assert.Equal(t,
		`{"data":{"component":{"name":"Position","storage":{"__typename":"Position","x":"0xa","y":"0x14"}}}}`+"\n",
		out)
}

func TestSet_UnknownField(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")
	registerPosition(t, db)

	out, err := execute(t, db, "set", "--format", "json", "0x1", "z=1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FIELD_MISSING", resp.Error.Code)
}

func TestQuery_FromFileWithVariables(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "world.db")
	registerPosition(t, db)

	file := filepath.Join(dir, "q.graphql")
	require.NoError(t, os.WriteFile(file, []byte(`query Find($id: ID!) { component(id: $id) { id createdAt } }`), 0o600))

	out, err := execute(t, db, "query", "--format", "json", "--file", file,
		"--variables", `{"id":"0x1"}`, "--operation", "Find")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"component":{"createdAt":"2024-01-01T00:00:00Z","id":"0x1"}}}`+"\n", out)
}

func TestQuery_ErrorsExitWithFailure(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")
	registerPosition(t, db)

	out, err := execute(t, db, "query", "--format", "json", `{ nope }`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"errors"`)
}

func TestQuery_Arguments(t *testing.T) {
	tests := []struct {
		name string
		opts QueryOptions
		args []string
		msg  string
	}{
		{"none", QueryOptions{}, nil, "no query given"},
		{"both", QueryOptions{File: "q.graphql"}, []string{"{ components { id } }"}, "not both"},
		{"bad variables", QueryOptions{Variables: "[1]"}, []string{"{ components { id } }"}, "invalid --variables"},
		{"missing file", QueryOptions{File: filepath.Join(t.TempDir(), "absent")}, nil, "failed to read query file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queryRequest(&tt.opts, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestSchema_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")
	registerPosition(t, db)

	out, err := execute(t, db, "schema")
	require.NoError(t, err)

	assert.Contains(t, out, "# world 0x0\n")
	assert.Contains(t, out, "  component(id: ID!): Component\n")
	assert.Contains(t, out, "  components: [Component!]!\n")
	assert.Contains(t, out, "  position(componentId: ID!): Position\n")
	assert.Contains(t, out, "type Position {\n  x: Felt\n  y: Felt\n}")
	assert.Contains(t, out, "  storage: Storage\n")
	assert.Contains(t, out, "union Storage = Position")
}

func TestSchema_JSONWithWorldConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "world.db")
	registerPosition(t, db)

	cfgFile := filepath.Join(dir, "worldgraph.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("world:\n  address: \"0x0001f\"\n  rpc-url: https://rpc.example\n"), 0o600))

	out, err := execute(t, db, "schema", "--format", "json", "--config", cfgFile)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   SchemaView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, WorldView{Address: "0x1f", RPCURL: "https://rpc.example"}, resp.Data.World)
	assert.Equal(t, []UnionView{{Name: "Storage", Types: []string{"Position"}}}, resp.Data.Unions)

	names := make([]string, len(resp.Data.Types))
	for i, ty := range resp.Data.Types {
		names[i] = ty.Name
	}
	assert.Equal(t, []string{"Component", "Position"}, names)
}

func TestSchema_ReportsAccountWithoutKey(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "world.db")
	registerPosition(t, db)

	cfgFile := filepath.Join(dir, "worldgraph.yaml")
	body := "world:\n  address: \"0x1f\"\n  account-address: \"0xb3\"\n  private-key: \"0xfeed\"\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(body), 0o600))

	out, err := execute(t, db, "schema", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "# world 0x1f\n# account 0xb3 (private-key)\n\n")
	assert.NotContains(t, out, "feed")

	out, err = execute(t, db, "schema", "--format", "json", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"account":"0xb3"`)
	assert.Contains(t, out, `"signer":"private-key"`)
	assert.NotContains(t, out, "feed")
}

func TestSchema_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	out, err := execute(t, db, "schema")
	require.NoError(t, err)
	assert.NotContains(t, out, "union Storage")
	assert.NotContains(t, out, "storage:")
}

func TestLoadConfig_BadFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "world.db")

	_, err := execute(t, db, "schema", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"x=0x0a", "y=20", "owner=null", "name=a=b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "owner", "name"}, values.Keys())
	want := ir.NewValueMapping(
		ir.P("x", ir.String("0x0a")),
		ir.P("y", ir.Int(20)),
		ir.P("owner", ir.Null{}),
		ir.P("name", ir.String("a=b")),
	)
	assert.True(t, want.Equal(values))

	for _, bad := range [][]string{{"novalue"}, {"=1"}, {"x=1", "x=2"}} {
		_, err := parseAssignments(bad)
		assert.Error(t, err, bad)
	}
}
