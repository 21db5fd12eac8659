package streamjson

import (
	"reflect"
	"testing"
)

func TestTryParseCompleteArray(t *testing.T) {
	res := TryParse(`[{"a":1},{"b":2}]`, 0)
	if res.Value == nil {
		t.Fatalf("expected a value")
	}
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("unexpected value: %#v", res.Value)
	}
	if res.End != len(`[{"a":1},{"b":2}]`) {
		t.Fatalf("unexpected end: %d", res.End)
	}
}

func TestTryParseTruncatedMidElement(t *testing.T) {
	text := `[{"view":[{"key":"a","type":"Card"}]},{"data":{"x":1}},{"view":[{"key"`
	res := TryParse(text, 0)
	arr, ok := res.Value.([]any)
	if !ok {
		t.Fatalf("expected partial array, got %#v", res.Value)
	}
	if len(arr) != 2 {
		t.Fatalf("expected exactly two complete updates, got %d", len(arr))
	}
	first, ok := arr[0].(map[string]any)
	if !ok || first["view"] == nil {
		t.Fatalf("unexpected first element: %#v", arr[0])
	}
	if res.End <= 0 || res.End >= len(text) {
		t.Fatalf("end should point past the second element: %d", res.End)
	}
	// Feeding the remainder from End must not re-deliver the consumed prefix.
	if text[res.End] != ',' {
		t.Fatalf("unexpected byte at end offset: %q", text[res.End])
	}
}

func TestTryParseNothingYet(t *testing.T) {
	for _, text := range []string{"", "Sure, here is", `[{"key":"a`, "```json\n"} {
		res := TryParse(text, 0)
		if res.Value != nil || res.End != -1 {
			t.Fatalf("text %q: expected no value, got %#v end=%d", text, res.Value, res.End)
		}
	}
}

func TestTryParseFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n[{\"data\":{\"x\":1}}]\n```\nDone."
	res := TryParse(text, 0)
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("unexpected value: %#v", res.Value)
	}
}

func TestTryParseUnterminatedFence(t *testing.T) {
	text := "```json\n[{\"data\":{\"x\":1}},{\"data\":{\"y\""
	res := TryParse(text, 0)
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected one complete element, got %#v", res.Value)
	}
}

func TestTryParseBracketsInsideStrings(t *testing.T) {
	text := `[{"text":"a ] tricky } string"},{"text":"\"quoted\""},{"half`
	res := TryParse(text, 0)
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("string-aware scan failed: %#v", res.Value)
	}
	want := map[string]any{"text": "a ] tricky } string"}
	if !reflect.DeepEqual(arr[0], want) {
		t.Fatalf("unexpected element: %#v", arr[0])
	}
}

func TestTryParseObjectValue(t *testing.T) {
	res := TryParse(`{"view":[{"key":"a","type":"Card"}]}`, 0)
	obj, ok := res.Value.(map[string]any)
	if !ok || obj["view"] == nil {
		t.Fatalf("unexpected value: %#v", res.Value)
	}
}

func TestTryParseIncompleteObjectValue(t *testing.T) {
	res := TryParse(`{"view":[{"key":"a"`, 0)
	if res.Value != nil || res.End != -1 {
		t.Fatalf("incomplete object must not produce a value: %#v", res.Value)
	}
}

func TestTryParseResumeFromOffset(t *testing.T) {
	text := `[{"a":1}]   [{"b":2}]`
	first := TryParse(text, 0)
	if first.Value == nil {
		t.Fatalf("expected first array")
	}
	second := TryParse(text, first.End)
	arr, ok := second.Value.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("unexpected second value: %#v", second.Value)
	}
	if !reflect.DeepEqual(arr[0], map[string]any{"b": float64(2)}) {
		t.Fatalf("unexpected element: %#v", arr[0])
	}
}

func TestTryParseTrailingCommaAfterElement(t *testing.T) {
	res := TryParse(`[{"a":1},`, 0)
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("unexpected value: %#v", res.Value)
	}
	if res.End != len(`[{"a":1}`) {
		t.Fatalf("end must exclude the trailing comma: %d", res.End)
	}
}

func TestTryParseNestedArrayElements(t *testing.T) {
	res := TryParse(`[[1,2],[3,4],[5`, 0)
	arr, ok := res.Value.([]any)
	if !ok || len(arr) != 2 {
		t.Fatalf("expected two closed inner arrays, got %#v", res.Value)
	}
}
