package discovery

import (
	"reflect"
	"testing"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

func TestAreaPrefix(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"A-12", "A"},
		{"zone-b-3", "zone"},
		{" C -7", "C"},
		{"standalone", "standalone"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := AreaPrefix(tt.alias); got != tt.want {
			t.Errorf("AreaPrefix(%q) = %q, want %q", tt.alias, got, tt.want)
		}
	}
}

func TestGroupAreas(t *testing.T) {
	locations := []Location{
		{ID: "loc-1", Alias: "A-1"},
		{ID: "loc-2", Alias: "B-1"},
		{ID: "loc-3", Alias: "A-2"},
		{ID: "loc-4", Alias: "C-1"},
		{ID: "", Alias: "A-3"},   // no id, dropped
		{ID: "loc-5", Alias: ""}, // no alias, dropped
	}

	t.Run("filters to wanted areas", func(t *testing.T) {
		got := GroupAreas(locations, []string{"A", "B"})
		want := []domain.Area{
			{Name: "A", Stores: []string{"loc-1", "loc-3"}},
			{Name: "B", Stores: []string{"loc-2"}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("GroupAreas() = %+v, want %+v", got, want)
		}
	})

	t.Run("empty wanted keeps everything", func(t *testing.T) {
		got := GroupAreas(locations, nil)
		if len(got) != 3 {
			t.Fatalf("GroupAreas() returned %d areas, want 3", len(got))
		}
		names := []string{got[0].Name, got[1].Name, got[2].Name}
		if !reflect.DeepEqual(names, []string{"A", "B", "C"}) {
			t.Errorf("area names = %v, want sorted [A B C]", names)
		}
	})
}

func TestParseLocations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Location
	}{
		{
			name: "bare array",
			body: `[{"id": "loc-1", "alias": "A-1"}]`,
			want: []Location{{ID: "loc-1", Alias: "A-1"}},
		},
		{
			name: "enveloped items",
			body: `{"data": {"items": [{"id": "loc-2", "alias": "B-1"}]}}`,
			want: []Location{{ID: "loc-2", Alias: "B-1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLocations([]byte(tt.body))
			if err != nil {
				t.Fatalf("parseLocations(): %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseLocations() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := parseLocations([]byte(`not json`)); err == nil {
		t.Error("parseLocations() accepted malformed input")
	}
}
