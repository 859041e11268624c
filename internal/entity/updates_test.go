package entity

import "testing"

func TestUserStationUpdatesToMap(t *testing.T) {
	empty := ""
	name := "  Dacha  "
	fav := true

	tests := []struct {
		name    string
		updates UserStationUpdates
		want    map[string]interface{}
	}{
		{name: "nothing", updates: UserStationUpdates{}, want: map[string]interface{}{}},
		{name: "clear custom name", updates: UserStationUpdates{CustomName: &empty}, want: map[string]interface{}{"custom_name": nil}},
		{name: "trim custom name", updates: UserStationUpdates{CustomName: &name}, want: map[string]interface{}{"custom_name": "Dacha"}},
		{name: "favorite", updates: UserStationUpdates{IsFavorite: &fav}, want: map[string]interface{}{"is_favorite": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.updates.ToMap()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d keys, got %v", len(tt.want), got)
			}
			for key, value := range tt.want {
				if got[key] != value {
					t.Fatalf("key %s: expected %v, got %v", key, value, got[key])
				}
			}
		})
	}
}

func TestStationUpdatesIsEmpty(t *testing.T) {
	if !(StationUpdates{}).IsEmpty() {
		t.Fatal("expected empty updates")
	}
	active := false
	if (StationUpdates{IsActive: &active}).IsEmpty() {
		t.Fatal("expected non-empty updates when is_active is set to false")
	}
}
