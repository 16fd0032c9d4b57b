package seeding

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildDonations(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	donors := []Actor{
		{ID: primitive.NewObjectID(), Role: "donor", Phone: "(022) 555-0101", Address: "12 Market Road"},
		{ID: primitive.NewObjectID(), Role: "donor", Phone: "(022) 555-0102", Address: "8 Lake View"},
	}
	agents := []Actor{{ID: primitive.NewObjectID(), Role: "agent"}}

	docs := BuildDonations(WeekPlan, donors, agents, now)

	want := 0
	wantByStatus := map[string]int{}
	for _, day := range WeekPlan {
		for st, n := range day.Counts {
			want += n
			wantByStatus[st] += n
		}
	}
	if len(docs) != want {
		t.Fatalf("BuildDonations() returned %d docs, want %d", len(docs), want)
	}

	gotByStatus := map[string]int{}
	windowStart := time.Date(2026, time.October, 9, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	seen := map[primitive.ObjectID]bool{}

	for _, raw := range docs {
		doc := raw.(bson.M)
		status := doc["status"].(string)
		gotByStatus[status]++

		if doc["created_by"] != DemoTag {
			t.Errorf("created_by = %v, want %s", doc["created_by"], DemoTag)
		}

		id := doc["_id"].(primitive.ObjectID)
		if seen[id] {
			t.Errorf("duplicate id %s", id.Hex())
		}
		seen[id] = true

		ts := id.Timestamp()
		if ts.Before(windowStart) || !ts.Before(windowEnd) {
			t.Errorf("id timestamp %v outside seeded week", ts)
		}

		_, hasAgent := doc["agent"]
		switch status {
		case "assigned", "collected":
			if !hasAgent {
				t.Errorf("%s donation without agent", status)
			}
		default:
			if hasAgent {
				t.Errorf("%s donation has agent", status)
			}
		}

		_, hasCollection := doc["collection_time"]
		if hasCollection != (status == "collected") {
			t.Errorf("%s donation collection_time present = %v", status, hasCollection)
		}

		fb := doc["feedback"].(bson.M)
		if fb["rating"] != nil {
			if status != "collected" {
				t.Errorf("%s donation carries feedback", status)
			}
			if r := fb["rating"].(int); r < 1 || r > 5 {
				t.Errorf("rating = %d, want 1..5", r)
			}
		}
	}

	for st, n := range wantByStatus {
		if gotByStatus[st] != n {
			t.Errorf("status %s count = %d, want %d", st, gotByStatus[st], n)
		}
	}
}

func TestBuildDonationsPlacesDays(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	donors := []Actor{{ID: primitive.NewObjectID(), Role: "donor"}}
	agents := []Actor{{ID: primitive.NewObjectID(), Role: "agent"}}
	plan := []DayPlan{
		{DaysAgo: 3, Counts: map[string]int{"pending": 1}},
		{DaysAgo: 0, Counts: map[string]int{"pending": 1}},
	}

	docs := BuildDonations(plan, donors, agents, now)
	if len(docs) != 2 {
		t.Fatalf("BuildDonations() returned %d docs, want 2", len(docs))
	}

	wantDays := []int{12, 15}
	for i, raw := range docs {
		ts := raw.(bson.M)["_id"].(primitive.ObjectID).Timestamp().UTC()
		if ts.Day() != wantDays[i] {
			t.Errorf("doc %d created on day %d, want %d", i, ts.Day(), wantDays[i])
		}
	}
}

func TestIDAt(t *testing.T) {
	at := time.Date(2026, time.October, 12, 12, 5, 0, 0, time.UTC)

	a, b := idAt(at), idAt(at)
	if a == b {
		t.Error("idAt() returned the same id twice")
	}
	if !a.Timestamp().Equal(at) {
		t.Errorf("idAt() timestamp = %v, want %v", a.Timestamp(), at)
	}
}
