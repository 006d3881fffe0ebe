package overpass

import (
	"reflect"
	"testing"
)

func TestExtractDiets(t *testing.T) {
	testCases := []struct {
		name     string
		pois     []POI
		expected []DietCount
	}{
		{
			name:     "no POIs",
			pois:     nil,
			expected: []DietCount{},
		},
		{
			name: "case and whitespace deduplication within one POI",
			pois: []POI{
				{Tags: map[string]string{"cuisine": "Thai; thai"}},
				{Tags: map[string]string{"cuisine": "italian"}},
				{Tags: map[string]string{"diet:vegan": "yes"}},
			},
			expected: []DietCount{
				{Diet: "thai", Count: 1},
				{Diet: "italian", Count: 1},
				{Diet: "vegan", Count: 1},
			},
		},
		{
			name: "counts sorted descending",
			pois: []POI{
				{Tags: map[string]string{"cuisine": "pizza"}},
				{Tags: map[string]string{"cuisine": "pizza;kebab"}},
				{Tags: map[string]string{"cuisine": "kebab"}},
				{Tags: map[string]string{"cuisine": "pizza"}},
			},
			expected: []DietCount{
				{Diet: "pizza", Count: 3},
				{Diet: "kebab", Count: 2},
			},
		},
		{
			name: "cuisine and diet tags combine per POI",
			pois: []POI{
				{Tags: map[string]string{
					"cuisine":          "indian",
					"diet:gluten_free": "no",
				}},
				{Tags: map[string]string{"cuisine": "indian", "diet:vegetarian": "yes"}},
				{Tags: map[string]string{"diet:vegetarian": "yes"}},
			},
			expected: []DietCount{
				{Diet: "indian", Count: 2},
				{Diet: "vegetarian", Count: 2},
			},
		},
		{
			name: "ties keep first-seen order",
			pois: []POI{
				{Tags: map[string]string{"cuisine": "greek"}},
				{Tags: map[string]string{"cuisine": "turkish"}},
				{Tags: map[string]string{"cuisine": "greek;turkish"}},
			},
			expected: []DietCount{
				{Diet: "greek", Count: 2},
				{Diet: "turkish", Count: 2},
			},
		},
		{
			name: "empty segments and bare diet key ignored",
			pois: []POI{
				{Tags: map[string]string{"cuisine": ";; regional ;"}},
				{Tags: map[string]string{"diet": "yes"}},
			},
			expected: []DietCount{
				{Diet: "regional", Count: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractDiets(tc.pois)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ExtractDiets() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestExtractDietsTieOrderDeterministic(t *testing.T) {
	pois := []POI{
		{Tags: map[string]string{"cuisine": "a;b;c;d;e;f;g;h"}},
	}

	expected := []DietCount{
		{Diet: "a", Count: 1},
		{Diet: "b", Count: 1},
		{Diet: "c", Count: 1},
		{Diet: "d", Count: 1},
		{Diet: "e", Count: 1},
		{Diet: "f", Count: 1},
		{Diet: "g", Count: 1},
		{Diet: "h", Count: 1},
	}

	// All counts tie, so the output must keep the cuisine split order on
	// every run
	for i := 0; i < 20; i++ {
		if got := ExtractDiets(pois); !reflect.DeepEqual(got, expected) {
			t.Fatalf("run %d: ExtractDiets() = %v, want %v", i, got, expected)
		}
	}
}

func TestExtractDietsDietKeyOrderDeterministic(t *testing.T) {
	pois := []POI{
		{Tags: map[string]string{
			"diet:vegan":      "yes",
			"diet:halal":      "yes",
			"diet:kosher":     "yes",
			"diet:vegetarian": "yes",
		}},
	}

	// diet:* labels from one POI surface in sorted key order
	expected := []DietCount{
		{Diet: "halal", Count: 1},
		{Diet: "kosher", Count: 1},
		{Diet: "vegan", Count: 1},
		{Diet: "vegetarian", Count: 1},
	}

	for i := 0; i < 20; i++ {
		if got := ExtractDiets(pois); !reflect.DeepEqual(got, expected) {
			t.Fatalf("run %d: ExtractDiets() = %v, want %v", i, got, expected)
		}
	}
}

func TestExtractDietsIdempotent(t *testing.T) {
	pois := []POI{
		{Tags: map[string]string{"cuisine": "sushi;japanese", "diet:vegan": "yes"}},
		{Tags: map[string]string{"cuisine": "japanese"}},
	}

	first := ExtractDiets(pois)
	second := ExtractDiets(pois)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs: %v vs %v", first, second)
	}
}
