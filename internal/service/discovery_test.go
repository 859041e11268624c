package service

import (
	"context"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"testing"
)

func TestDiscoveryRunOnce(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-02", "4402")
	env.source.addStation("ST-03", "4402")
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.link(t, alice, "ST-02")
	env.link(t, bob, "ST-02")
	env.link(t, bob, "ST-03")

	env.source.addStation("ST-02", "4402", "961")
	env.source.fail("ST-03", "*")

	report, err := env.discovery.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	want := dto.SyncReport{Stations: 2, ParametersAdded: 1, RowsCreated: 2, Failures: 1}
	if report != want {
		t.Fatalf("expected %+v, got %+v", want, report)
	}
	for _, user := range []*db.User{alice, bob} {
		if row, ok := env.visibility(t, user, "ST-02")["961"]; !ok || !row.IsVisible {
			t.Fatalf("%s: expected visible 961 row", user.Username)
		}
	}

	again, err := env.discovery.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if again.ParametersAdded != 0 || again.RowsCreated != 0 {
		t.Fatalf("second pass should be a no-op, got %+v", again)
	}
}

func TestDiscoveryStart(t *testing.T) {
	env := newTestEnv(t, testConfig())

	if err := env.discovery.Start(""); err != nil {
		t.Fatalf("empty schedule should disable the job: %v", err)
	}
	if err := env.discovery.Start("not a schedule"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := env.discovery.Start("@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := env.discovery.Start("@every 1h"); err == nil {
		t.Fatal("expected error when started twice")
	}
	env.discovery.Stop()
}
