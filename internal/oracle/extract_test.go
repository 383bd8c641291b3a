package oracle

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	res := &Result{Text: "Here is the analysis:\n\n```json\n{\"coreDefinition\": \"x\"}\n```\n\nDone."}
	raw, err := ExtractJSON(res)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "x", got["coreDefinition"])
}

func TestExtractJSON_WholeTextIsJSON(t *testing.T) {
	res := &Result{Text: `  {"scenarios": []}  `}
	raw, err := ExtractJSON(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"scenarios": []}`, string(raw))
}

func TestExtractJSON_DirectJSONResult(t *testing.T) {
	body := `{"score": 0.8}`
	res := &Result{Text: body, JSON: json.RawMessage(body)}
	raw, err := ExtractJSON(res)
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestExtractJSON_UnwrapsCLIEnvelope(t *testing.T) {
	envelope := `{"type":"result","session_id":"abc","result":"{\"action\":\"complete\"}"}`
	res := &Result{Text: envelope, JSON: json.RawMessage(envelope)}
	raw, err := ExtractJSON(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"action":"complete"}`, string(raw))
}

func TestExtractJSON_EnvelopeWithFencedAnswer(t *testing.T) {
	inner := "Sure.\n```json\n{\"score\": 0.4}\n```"
	envelope, err := json.Marshal(map[string]string{"type": "result", "result": inner})
	require.NoError(t, err)

	res := &Result{Text: string(envelope), JSON: envelope}
	raw, err := ExtractJSON(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"score": 0.4}`, string(raw))
}

func TestExtractJSON_UnparsableSurfacesPreview(t *testing.T) {
	res := &Result{Text: "I could not produce JSON for this."}
	_, err := ExtractJSON(res)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Preview, "I could not produce JSON")
}

func TestExtractJSON_PreviewTruncated(t *testing.T) {
	res := &Result{Text: strings.Repeat("garbage ", 100)}
	_, err := ExtractJSON(res)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Len(t, perr.Preview, parsePreviewLen)
}

func TestDecodeInto(t *testing.T) {
	raw := json.RawMessage(`{"action": "respond", "message": "tell me more", "extra": "ignored"}`)

	var decision struct {
		Action  string `mapstructure:"action"`
		Message string `mapstructure:"message"`
	}
	require.NoError(t, DecodeInto(raw, &decision))
	require.Equal(t, "respond", decision.Action)
	require.Equal(t, "tell me more", decision.Message)
}

func TestDecodeInto_NullScore(t *testing.T) {
	raw := json.RawMessage(`{"score": null}`)

	var verdict struct {
		Score *float64 `mapstructure:"score"`
	}
	require.NoError(t, DecodeInto(raw, &verdict))
	require.Nil(t, verdict.Score)
}
