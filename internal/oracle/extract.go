package oracle

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ExtractJSON interprets a one-shot result as structured JSON.
//
// Some oracle CLIs wrap their answer in an envelope like
// {"type":"result","result":"<answer text>"}; the envelope is unwrapped
// before extraction. The answer text is then tried as a fenced ```json code
// block, then as raw JSON; if neither works the caller gets a *ParseError
// with a truncated preview.
func ExtractJSON(res *Result) (json.RawMessage, error) {
	text := res.Text

	if len(res.JSON) > 0 {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(res.JSON, &envelope); err == nil {
			var typ, inner string
			hasType := envelope["type"] != nil
			_, hasSession := envelope["session_id"]
			if hasType {
				_ = json.Unmarshal(envelope["type"], &typ)
			}
			if typ == "result" && json.Unmarshal(envelope["result"], &inner) == nil {
				text = inner
			} else if !hasType && !hasSession {
				// Direct JSON content, not a CLI wrapper.
				return res.JSON, nil
			}
		}
	}

	if raw, ok := fencedJSON(text); ok {
		return raw, nil
	}

	trimmed := strings.TrimSpace(text)
	if raw := tryParse(trimmed); raw != nil {
		return raw, nil
	}

	return nil, newParseError(trimmed)
}

// fencedJSON returns the first fenced code block labeled json that parses,
// walking the response as markdown.
func fencedJSON(text string) (json.RawMessage, bool) {
	src := []byte(text)
	doc := goldmark.DefaultParser().Parse(gmtext.NewReader(src))

	var found json.RawMessage
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found != nil {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if string(fcb.Language(src)) != "json" {
			return ast.WalkContinue, nil
		}

		var buf bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if raw := tryParse(strings.TrimSpace(buf.String())); raw != nil {
			found = raw
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return found, found != nil
}

func tryParse(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return json.RawMessage(s)
}
