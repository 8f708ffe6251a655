package customfield

import (
	"reflect"
	"testing"

	"github.com/jcatrysse/jira2redmine-issues/internal/store"
)

func mapping(format string, isMultiple bool, redmineID int64, enum map[string]string) Mapping {
	return Mapping{
		CustomFieldMapping: store.CustomFieldMapping{
			RedmineCustomFieldID: redmineID,
			FieldFormat:          format,
			IsMultiple:           isMultiple,
		},
		Enumeration: enum,
	}
}

func TestNormalize_EmptyValueOmitted(t *testing.T) {
	_, ok := Normalize(mapping("string", false, 1, nil), []byte(`"none"`))
	if ok {
		t.Error("expected \"none\" to be treated as empty")
	}
	_, ok = Normalize(mapping("string", false, 1, nil), []byte(`null`))
	if ok {
		t.Error("expected null to be treated as empty")
	}
	_, ok = Normalize(mapping("string", false, 1, nil), []byte(`[]`))
	if ok {
		t.Error("expected empty array to be treated as empty")
	}
}

func TestNormalize_LabelManagerSingle(t *testing.T) {
	entry, ok := Normalize(mapping("string", false, 5, nil), []byte(`{"labels":["alpha","none","alpha","beta"]}`))
	if !ok {
		t.Fatal("expected ok")
	}
	if entry.Value != "alpha" {
		t.Errorf("got %v", entry.Value)
	}
}

func TestNormalize_LabelManagerMultiple(t *testing.T) {
	entry, ok := Normalize(mapping("string", true, 5, nil), []byte(`{"labels":["alpha","beta","alpha"]}`))
	if !ok {
		t.Fatal("expected ok")
	}
	if !reflect.DeepEqual(entry.Value, []string{"alpha", "beta"}) {
		t.Errorf("got %v", entry.Value)
	}
}

func TestNormalize_Bool(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`true`, "1", true},
		{`"yes"`, "1", true},
		{`0`, "0", true},
		{`"no"`, "0", true},
		{`"maybe"`, "", false},
	}
	for _, tc := range cases {
		entry, ok := Normalize(mapping("boolean", false, 1, nil), []byte(tc.raw))
		if ok != tc.ok {
			t.Errorf("raw=%s ok=%v want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && entry.Value != tc.want {
			t.Errorf("raw=%s got %v want %v", tc.raw, entry.Value, tc.want)
		}
	}
}

func TestNormalize_Int(t *testing.T) {
	entry, ok := Normalize(mapping("integer", false, 1, nil), []byte(`"42"`))
	if !ok || entry.Value != "42" {
		t.Errorf("got %v ok=%v", entry.Value, ok)
	}
	_, ok = Normalize(mapping("integer", false, 1, nil), []byte(`"not-a-number"`))
	if ok {
		t.Error("expected non-numeric to skip")
	}
}

func TestNormalize_Date(t *testing.T) {
	entry, ok := Normalize(mapping("date", false, 1, nil), []byte(`"2024-05-01T00:00:00.000+0000"`))
	if !ok || entry.Value != "2024-05-01" {
		t.Errorf("got %v ok=%v", entry.Value, ok)
	}
}

func TestNormalize_DefaultScalarWithEnumerationSubstitution(t *testing.T) {
	enum := map[string]string{"red": "Rouge"}
	entry, ok := Normalize(mapping("list", false, 9, enum), []byte(`{"value":"Red"}`))
	if !ok || entry.Value != "Rouge" {
		t.Errorf("got %v ok=%v", entry.Value, ok)
	}
}

func TestNormalize_MultiValueWrapsScalar(t *testing.T) {
	entry, ok := Normalize(mapping("string", true, 9, nil), []byte(`"solo"`))
	if !ok {
		t.Fatal("expected ok")
	}
	if !reflect.DeepEqual(entry.Value, []string{"solo"}) {
		t.Errorf("got %v", entry.Value)
	}
}

func TestResolveCascading_ByChildID(t *testing.T) {
	childIndex := map[string]store.CustomFieldChildMapping{
		"1001": {JiraChildOptionID: "1001", JiraChildFieldID: "cf2", ParentLabel: "Region", ChildLabel: "North"},
	}
	entries, ok := ResolveCascading([]byte(`{"child":{"id":"1001","value":"North"}}`), 1, 2, childIndex, nil)
	if !ok {
		t.Fatal("expected resolved")
	}
	if entries[0].Value != "Region" || entries[1].Value != "North" {
		t.Errorf("got %+v", entries)
	}
}

func TestResolveCascading_ByUniqueLabel(t *testing.T) {
	childLabelIndex := map[string][]store.CustomFieldChildMapping{
		"north": {{ParentLabel: "Region", ChildLabel: "North"}},
	}
	entries, ok := ResolveCascading([]byte(`{"id":"unknown","value":"North"}`), 1, 2, map[string]store.CustomFieldChildMapping{}, childLabelIndex)
	if !ok {
		t.Fatal("expected resolved via label lookup")
	}
	if entries[1].Value != "North" {
		t.Errorf("got %+v", entries)
	}
}

func TestSortPayloadGroups_KeepsCascadingPairAdjacentWhenParentIDIsHigher(t *testing.T) {
	// Parent field id (20) is greater than the child field id (5) here,
	// the case that would split the pair under a plain per-entry sort.
	groups := []PayloadGroup{
		{{ID: 20, Value: "Region"}, {ID: 5, Value: "North"}},
		{{ID: 9, Value: "unrelated"}},
	}
	entries := SortPayloadGroups(groups)
	want := []PayloadEntry{{ID: 9, Value: "unrelated"}, {ID: 20, Value: "Region"}, {ID: 5, Value: "North"}}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("got %+v, want %+v", entries, want)
	}
}

func TestResolveCascading_AmbiguousLabelFails(t *testing.T) {
	childLabelIndex := map[string][]store.CustomFieldChildMapping{
		"north": {{ParentLabel: "Region", ChildLabel: "North"}, {ParentLabel: "OtherRegion", ChildLabel: "North"}},
	}
	_, ok := ResolveCascading([]byte(`{"id":"unknown","value":"North"}`), 1, 2, map[string]store.CustomFieldChildMapping{}, childLabelIndex)
	if ok {
		t.Error("expected ambiguous label lookup to fail")
	}
}
