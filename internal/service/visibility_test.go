package service

import (
	"context"
	"meteoapi/internal/entity/db"
	"testing"
)

func TestSyncOnUserStationCreatedIsIdempotent(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-01", "4402", "700")
	u1 := env.createUser(t, "u1")

	env.link(t, u1, "ST-01")
	link, err := env.repo.FindUserStation(ctx, u1.ID, "ST-01")
	if err != nil {
		t.Fatalf("find link: %v", err)
	}

	for i := 0; i < 2; i++ {
		created, err := env.sync.SyncOnUserStationCreated(ctx, link.ID)
		if err != nil {
			t.Fatalf("sync #%d: %v", i, err)
		}
		if created != 0 {
			t.Fatalf("sync #%d created %d rows, expected none", i, created)
		}
	}

	rows := env.visibility(t, u1, "ST-01")
	if len(rows) != 2 {
		t.Fatalf("expected 2 visibility rows, got %d", len(rows))
	}
	for code, row := range rows {
		if !row.IsVisible || row.DisplayOrder != 0 {
			t.Errorf("row %s: expected visible with order 0, got %+v", code, row)
		}
	}
}

func TestSyncDoesNotOverwriteExistingRows(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-01", "4402", "700")
	u1 := env.createUser(t, "u1")
	env.link(t, u1, "ST-01")

	if _, err := env.resolver.SetVisibility(ctx, u1.ID, "ST-01", "700", false); err != nil {
		t.Fatalf("hide: %v", err)
	}
	link, _ := env.repo.FindUserStation(ctx, u1.ID, "ST-01")
	if _, err := env.sync.SyncOnUserStationCreated(ctx, link.ID); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, err := env.sync.SyncOnStationParameterAdded(ctx, link.StationID, "700"); err != nil {
		t.Fatalf("sync param: %v", err)
	}

	if rows := env.visibility(t, u1, "ST-01"); rows["700"].IsVisible {
		t.Fatal("sync must not reset a hidden parameter")
	}
}

func TestStationGainsParameterForExistingLinks(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-02", "4402")
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.link(t, alice, "ST-02")
	env.link(t, bob, "ST-02")

	if _, err := env.stations.AddStationParameter(ctx, "ST-02", "961"); err != nil {
		t.Fatalf("add station parameter: %v", err)
	}

	for _, u := range []*db.User{alice, bob} {
		row, ok := env.visibility(t, u, "ST-02")["961"]
		if !ok {
			t.Fatalf("%s: missing row for 961", u.Username)
		}
		if !row.IsVisible || row.DisplayOrder != 0 {
			t.Fatalf("%s: unexpected row %+v", u.Username, row)
		}
	}
}

func TestSyncVanishedRowsAreNoOps(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	created, err := env.sync.SyncOnUserStationCreated(ctx, 9999)
	if err != nil || created != 0 {
		t.Fatalf("expected silent no-op, got %d, %v", created, err)
	}
	created, err = env.sync.SyncOnStationParameterAdded(ctx, 9999, "4402")
	if err != nil || created != 0 {
		t.Fatalf("expected silent no-op, got %d, %v", created, err)
	}
}

func TestRemovedStationParameterPrunesRows(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-01", "4402", "700")
	u1 := env.createUser(t, "u1")
	env.link(t, u1, "ST-01")

	if err := env.stations.RemoveStationParameter(ctx, "ST-01", "700"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rows := env.visibility(t, u1, "ST-01")
	if _, ok := rows["700"]; ok || len(rows) != 1 {
		t.Fatalf("expected only 4402 to remain, got %v", rows)
	}

	// reactivation brings the row back with defaults
	if _, err := env.stations.AddStationParameter(ctx, "ST-01", "700"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if row, ok := env.visibility(t, u1, "ST-01")["700"]; !ok || !row.IsVisible {
		t.Fatalf("expected visible 700 after reactivation, got %+v", row)
	}
}
