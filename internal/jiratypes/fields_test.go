package jiratypes

import (
	"reflect"
	"testing"
)

func TestIsEmptyValue(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"null", `null`, true},
		{"empty string", `""`, true},
		{"none", `"none"`, true},
		{"None mixed case", `"None"`, true},
		{"empty array", `[]`, true},
		{"non-empty array", `["a"]`, false},
		{"scalar string", `"foo"`, false},
		{"empty adf", `{"type":"doc","content":[]}`, true},
		{"non-empty adf", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsEmptyValue([]byte(c.raw)); got != c.want {
				t.Fatalf("IsEmptyValue(%s) = %v, want %v", c.raw, got, c.want)
			}
		})
	}
}

func TestExtractLabels(t *testing.T) {
	raw := []byte(`{"labels":["a","None","","a","b"]}`)
	got, ok := ExtractLabels(raw)
	if !ok {
		t.Fatalf("expected label-manager object to be recognized")
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractLabels_NotLabelManager(t *testing.T) {
	if _, ok := ExtractLabels([]byte(`{"value":"x"}`)); ok {
		t.Fatalf("expected false for non label-manager object")
	}
}

func TestScalarString(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`"plain"`, "plain", true},
		{`{"value":"V"}`, "V", true},
		{`{"name":"N"}`, "N", true},
		{`{"label":"L"}`, "L", true},
		{`{"id":"123"}`, "123", true},
		{`{"value":"V","name":"N"}`, "V", true},
		{`{}`, "", false},
		{`42`, "42", true},
	}
	for _, c := range cases {
		got, ok := ScalarString([]byte(c.raw))
		if ok != c.ok || got != c.want {
			t.Fatalf("ScalarString(%s) = (%q,%v), want (%q,%v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestAsList(t *testing.T) {
	arr := AsList([]byte(`[1,2,3]`))
	if len(arr) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr))
	}
	single := AsList([]byte(`"x"`))
	if len(single) != 1 || string(single[0]) != `"x"` {
		t.Fatalf("expected single-element wrap, got %v", single)
	}
}

func TestExtractCascadingChild(t *testing.T) {
	direct := []byte(`{"id":"7","value":"Child A"}`)
	sel, ok := ExtractCascadingChild(direct)
	if !ok || sel.ChildID != "7" || sel.ChildValue != "Child A" {
		t.Fatalf("unexpected result: %+v ok=%v", sel, ok)
	}

	nested := []byte(`{"id":"parent","child":{"id":"7","value":"Child A"}}`)
	sel, ok = ExtractCascadingChild(nested)
	if !ok || sel.ChildID != "7" || sel.ChildValue != "Child A" {
		t.Fatalf("unexpected nested result: %+v ok=%v", sel, ok)
	}
}

func TestParseADF_EmptyInput(t *testing.T) {
	if _, ok := ParseADF(nil); ok {
		t.Fatalf("expected false for nil input")
	}
	if _, ok := ParseADF([]byte("null")); ok {
		t.Fatalf("expected false for null input")
	}
}
