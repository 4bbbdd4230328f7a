package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/protocol"
)

func TestEncode_JoinsWithDelimiter(t *testing.T) {
	frame, err := protocol.Encode([]protocol.Envelope{
		protocol.Must(protocol.TypeLogout, nil),
		protocol.Must(protocol.TypeChat, protocol.ChatMessage{Chat: "hi", From: "Server"}),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"logout","data":{}}?&?{"type":"chat","data":{"chat":"hi","from":"Server"}}`, string(frame))
}

func TestDecode_SplitsFrame(t *testing.T) {
	envs, err := protocol.Decode([]byte(`{"type":"map-list"}?&?{"type":"chat","data":{"chat":"/who"}}?&?`))
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, protocol.TypeMapList, envs[0].Type)

	var req protocol.ChatRequest
	require.NoError(t, envs[1].Decode(&req))
	assert.Equal(t, "/who", req.Chat)
}

func TestDecode_RejectsMissingType(t *testing.T) {
	_, err := protocol.Decode([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, protocol.ErrEmptyType)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	_, err := protocol.Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEnvelope_DecodeWithoutData(t *testing.T) {
	req := protocol.MapJoinRequest{MapID: "keep"}
	require.NoError(t, protocol.Envelope{Type: protocol.TypeMapJoin}.Decode(&req))
	assert.Equal(t, "keep", req.MapID)
}

func TestError_CarriesMessage(t *testing.T) {
	env := protocol.Error(protocol.TypeLogin, "Invalid username or password.")
	assert.Equal(t, protocol.TypeLogin, env.Type)
	assert.JSONEq(t, `{"error":"Invalid username or password."}`, string(env.Data))
}

func TestEntUpdate_FlattensUpdate(t *testing.T) {
	x := 12.0
	anim := combat.AnimRun
	raw, err := json.Marshal(protocol.EntUpdate{ID: "u1", Update: combat.Update{X: &x, Anim: &anim}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","x":12,"anim":"run"}`, string(raw))
}

// '&' is HTML-escaped by encoding/json, so payloads never contain the delimiter.
func TestProperty_EncodeDecodeRoundTripsChat(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chats := rapid.SliceOfN(rapid.StringMatching(`[a-z ?&]{0,20}`), 1, 8).Draw(t, "chats")
		envs := make([]protocol.Envelope, len(chats))
		for i, c := range chats {
			envs[i] = protocol.Must(protocol.TypeChat, protocol.ChatRequest{Chat: c})
		}
		frame, err := protocol.Encode(envs)
		require.NoError(t, err)
		got, err := protocol.Decode(frame)
		require.NoError(t, err)
		require.Len(t, got, len(chats))
		for i, env := range got {
			var req protocol.ChatRequest
			require.NoError(t, env.Decode(&req))
			assert.Equal(t, chats[i], req.Chat)
		}
	})
}
