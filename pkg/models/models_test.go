package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureJSONKeepsOrderAndDuplicates(t *testing.T) {
	in := []Feature{
		{Label: "Brand", Value: "Acme"},
		{Label: "Weight", Value: "1 kg"},
		{Label: "Brand", Value: "Other"},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `[{"Brand":"Acme"},{"Weight":"1 kg"},{"Brand":"Other"}]`, string(data))

	var out []Feature
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestFeatureUnmarshalRejectsMultiKey(t *testing.T) {
	var f Feature
	err := json.Unmarshal([]byte(`{"a":"1","b":"2"}`), &f)
	require.Error(t, err)
}

func TestProductRecordNullDescription(t *testing.T) {
	rec := ProductRecord{URL: "https://shop.test/p/1", Article: "A1", Name: "Thing"}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	v, ok := raw["description"]
	require.True(t, ok)
	require.Nil(t, v)
}

func TestRunSummarySkippedTotal(t *testing.T) {
	s := RunSummary{Skipped: map[SkipReason]int{
		SkipPageFormat:               2,
		SkipUnrecognizedAvailability: 1,
	}}
	if s.SkippedTotal() != 3 {
		t.Errorf("Expected 3 skipped, got %d", s.SkippedTotal())
	}
}

func TestSectionSlugs(t *testing.T) {
	sections := []Section{
		{URL: "https://shop.test/lamps/", Slug: "lamps", Kind: KindGeneric},
		{URL: "https://shop.test/bestsellers/", Slug: "bestsellers", Kind: KindBestsellers},
	}
	require.Equal(t, []string{"lamps", "bestsellers"}, SectionSlugs(sections))
	require.Empty(t, SectionSlugs(nil))
}
