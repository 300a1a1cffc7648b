package wip

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteObject_DecodeValue(t *testing.T) {
	obj := RemoteObject{Type: "number", Value: json.RawMessage(`2`)}

	var n int
	require.NoError(t, obj.DecodeValue(&n))
	require.Equal(t, 2, n)

	empty := RemoteObject{Type: "object", ObjectID: "1.2"}
	require.Error(t, empty.DecodeValue(&n))
}

func TestRemoteObject_String(t *testing.T) {
	tests := []struct {
		name string
		obj  RemoteObject
		want string
	}{
		{"description", RemoteObject{Type: "object", Description: "Array(3)"}, "Array(3)"},
		{"string value", RemoteObject{Type: "string", Value: json.RawMessage(`"v20.1.0"`)}, "v20.1.0"},
		{"number value", RemoteObject{Type: "number", Value: json.RawMessage(`42`)}, "42"},
		{"bare type", RemoteObject{Type: "undefined"}, "undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.obj.String())
		})
	}
}

func TestEvaluateResult_Thrown(t *testing.T) {
	var legacy EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(`{"result":{"type":"object"},"wasThrown":true}`), &legacy))
	assert.True(t, legacy.Thrown())

	var modern EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(
		`{"result":{"type":"object"},"exceptionDetails":{"exceptionId":1,"text":"Uncaught"}}`), &modern))
	assert.True(t, modern.Thrown())

	var ok EvaluateResult
	require.NoError(t, json.Unmarshal([]byte(`{"result":{"type":"number","value":2}}`), &ok))
	assert.False(t, ok.Thrown())
}

func TestPausedEvent_Exception(t *testing.T) {
	raw := `{"callFrames":[{"callFrameId":"0","functionName":"f","location":{"scriptId":"9","lineNumber":3}}],
		"reason":"exception","data":{"type":"object","className":"Error","description":"Error: boom"}}`

	var evt PausedEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))

	require.True(t, evt.IsException())
	require.Len(t, evt.CallFrames, 1)
	assert.Equal(t, "9", evt.CallFrames[0].Location.ScriptID)

	exc, ok := evt.ExceptionObject()
	require.True(t, ok)
	assert.Equal(t, "Error", exc.ClassName)

	other := PausedEvent{Reason: "other"}
	_, ok = other.ExceptionObject()
	assert.False(t, ok)
}
