package relay

import (
	"encoding/json"
	"testing"

	"arcade-match-system/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid join", `{"type":"join","matchId":"m1","userId":"u1"}`, false},
		{"valid gameState", `{"type":"gameState","matchId":"m1","userId":"u1","state":{"board":[[0]],"score":0,"level":1}}`, false},
		{"valid gameOver", `{"type":"gameOver","matchId":"m1","userId":"u1","score":500}`, false},
		{"valid chat_join", `{"type":"chat_join","matchId":"m1","userId":"u1"}`, false},
		{"valid chat_message", `{"type":"chat_message","matchId":"m1","username":"Alice","message":"gg"}`, false},
		{"join without userId", `{"type":"join","matchId":"m1"}`, true},
		{"gameState without state", `{"type":"gameState","matchId":"m1","userId":"u1"}`, true},
		{"chat_message without username", `{"type":"chat_message","matchId":"m1","message":"gg"}`, true},
		{"unknown type", `{"type":"teleport","matchId":"m1"}`, true},
		{"no type", `{"matchId":"m1","userId":"u1"}`, true},
		{"broken json", `{"type":`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, env)
			} else {
				require.NoError(t, err)
				require.NotNil(t, env)
			}
		})
	}
}

func TestStateEntryTupleEncoding(t *testing.T) {
	entry := StateEntry{
		UserID: "u1",
		State:  engine.Snapshot{Board: [][]int{{0, 1}}, Score: 700, Level: 2},
	}

	data, err := json.Marshal(StateBroadcast{Type: TypeGameState, States: []StateEntry{entry}})
	require.NoError(t, err)
	// The wire shape is positional: [[userId, state], ...].
	assert.JSONEq(t,
		`{"type":"gameState","states":[["u1",{"board":[[0,1]],"score":700,"level":2}]]}`,
		string(data))

	var decoded StateBroadcast
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.States, 1)
	assert.Equal(t, entry, decoded.States[0])
}

func TestStateEntryRejectsNonTuple(t *testing.T) {
	var e StateEntry
	assert.Error(t, json.Unmarshal([]byte(`{"userId":"u1"}`), &e))
	assert.Error(t, json.Unmarshal([]byte(`[42,{"board":[],"score":0,"level":1}]`), &e))
}
