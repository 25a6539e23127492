package policy

import (
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func snapshotsAt(t *testing.T, dir string, names ...string) []Snapshot {
	t.Helper()
	snaps := make([]Snapshot, 0, len(names))
	for _, name := range names {
		when, err := ParseTimestamp(name)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", name, err)
		}
		snaps = append(snaps, Snapshot{Path: filepath.Join(dir, name), When: when})
	}
	return snaps
}

func pathsOf(snaps []Snapshot) []string {
	paths := make([]string, 0, len(snaps))
	for _, s := range snaps {
		paths = append(paths, filepath.Base(s.Path))
	}
	return paths
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		interval      string
		offset        int
		now           time.Time
		existing      []string
		wantCreate    bool
		wantCoveredBy string
	}{
		{
			name:       "Empty Section",
			interval:   "daily",
			now:        time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			wantCreate: true,
		},
		{
			name:          "Same Day Already Covered",
			interval:      "daily",
			now:           time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC),
			existing:      []string{"2024-01-02 00:00", "2024-01-03 00:01"},
			wantCreate:    false,
			wantCoveredBy: "2024-01-03 00:01",
		},
		{
			name:       "New Day",
			interval:   "daily",
			now:        time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			existing:   []string{"2024-01-01 00:00", "2024-01-02 00:00"},
			wantCreate: true,
		},
		{
			name:          "Weekly Covered Across Month Boundary",
			interval:      "weekly",
			now:           time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), // Thursday, W18
			existing:      []string{"2024-04-29 08:00"},                   // Monday, W18
			wantCreate:    false,
			wantCoveredBy: "2024-04-29 08:00",
		},
		{
			name:          "Monthly Offset Moves Both Sides",
			interval:      "monthly",
			offset:        5,
			now:           time.Date(2024, 3, 27, 10, 0, 0, 0, time.UTC), // effective 2024-04-01
			existing:      []string{"2024-03-30 00:00"},                   // effective 2024-04-04
			wantCreate:    false,
			wantCoveredBy: "2024-03-30 00:00",
		},
		{
			name:       "Monthly Offset Splits Calendar Month",
			interval:   "monthly",
			offset:     5,
			now:        time.Date(2024, 3, 27, 10, 0, 0, 0, time.UTC), // effective 2024-04-01
			existing:   []string{"2024-03-02 00:00"},                   // effective 2024-03-07
			wantCreate: true,
		},
		{
			name:          "Negative Offset Delays Year",
			interval:      "yearly",
			offset:        -14,
			now:           time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), // effective 2023-12-27
			existing:      []string{"2023-06-01 00:00"},
			wantCreate:    false,
			wantCoveredBy: "2023-06-01 00:00",
		},
		{
			name:          "First Match Is Oldest",
			interval:      "biyearly",
			now:           time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
			existing:      []string{"2023-12-01 00:00", "2024-02-01 00:00", "2024-05-01 00:00"},
			wantCreate:    false,
			wantCoveredBy: "2024-02-01 00:00",
		},
		{
			name:       "Custom Interval New Bucket",
			interval:   "3d",
			now:        time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), // JDN 2460314 -> 820104
			existing:   []string{"2024-01-01 00:00"},                // JDN 2460311 -> 820103
			wantCreate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := Section{
				Name:   "test",
				Method: MethodCopy,
				Scheme: mustScheme(t, tt.interval),
				Offset: tt.offset,
				Amount: 10,
			}

			d := Evaluate(tt.now, section, snapshotsAt(t, "/snaps/test", tt.existing...))

			if d.Create != tt.wantCreate {
				t.Fatalf("Create = %v, want %v. Reason: %s", d.Create, tt.wantCreate, d.Reason)
			}
			if d.Target != FormatTimestamp(tt.now) {
				t.Errorf("Target = %q, want un-offset %q", d.Target, FormatTimestamp(tt.now))
			}
			if tt.wantCreate {
				if d.CoveredBy != nil {
					t.Errorf("CoveredBy = %s, want nil", d.CoveredBy.Path)
				}
				return
			}
			if d.CoveredBy == nil {
				t.Fatalf("CoveredBy = nil, want %s", tt.wantCoveredBy)
			}
			if got := filepath.Base(d.CoveredBy.Path); got != tt.wantCoveredBy {
				t.Errorf("CoveredBy = %s, want %s", got, tt.wantCoveredBy)
			}
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	section := Section{Name: "daily", Method: MethodCopy, Scheme: mustScheme(t, "daily"), Amount: 2}
	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	existing := snapshotsAt(t, "/snaps/daily", "2024-01-01 00:00", "2024-01-02 00:00")

	first := Evaluate(now, section, existing)
	if !first.Create {
		t.Fatalf("first run: Create = false, want true")
	}

	// The second run sees the snapshot created by the first one.
	existing = append(existing, snapshotsAt(t, "/snaps/daily", first.Target)...)
	second := Evaluate(now, section, existing)
	if second.Create {
		t.Errorf("second run: Create = true, want false. Reason: %s", second.Reason)
	}
}

func TestDecision_Expired_DailyScenario(t *testing.T) {
	section := Section{Name: "daily", Method: MethodCopy, Scheme: mustScheme(t, "daily"), Amount: 2}
	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	existing := snapshotsAt(t, "/snaps/daily", "2024-01-01 00:00", "2024-01-02 00:00")

	d := Evaluate(now, section, existing)
	if !d.Create || d.Target != "2024-01-03 09:00" {
		t.Fatalf("Evaluate() = create %v target %q, want create of 2024-01-03 09:00", d.Create, d.Target)
	}

	got := pathsOf(d.Expired(true))
	want := []string{"2024-01-01 00:00"}
	if !slices.Equal(got, want) {
		t.Errorf("Expired(true) = %v, want %v", got, want)
	}

	// Without a successful creation nothing exceeds the amount.
	if got := d.Expired(false); len(got) != 0 {
		t.Errorf("Expired(false) = %v, want none", pathsOf(got))
	}
}

func TestSelectExpired(t *testing.T) {
	five := []string{
		"2024-01-01 00:00",
		"2024-01-02 00:00",
		"2024-01-03 00:00",
		"2024-01-04 00:00",
		"2024-01-05 00:00",
	}

	tests := []struct {
		name     string
		existing []string
		amount   int
		created  bool
		want     []string
	}{
		{name: "Prune Oldest Two", existing: five, amount: 3, want: five[:2]},
		{name: "Prune Oldest Three After Creation", existing: five, amount: 3, created: true, want: five[:3]},
		{name: "Exactly At Amount", existing: five, amount: 5, want: nil},
		{name: "At Amount With Creation", existing: five, amount: 5, created: true, want: five[:1]},
		{name: "Below Amount", existing: five[:2], amount: 7, created: true, want: nil},
		{name: "Amount One Keeps Only New Snapshot", existing: five, amount: 1, created: true, want: five},
		{name: "Amount One Without Creation", existing: five, amount: 1, want: five[:4]},
		{name: "Empty", existing: nil, amount: 1, created: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := snapshotsAt(t, "/snaps/s", tt.existing...)
			got := pathsOf(SelectExpired(existing, tt.amount, tt.created))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SelectExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectExpired_DoesNotAlias(t *testing.T) {
	existing := snapshotsAt(t, "/snaps/s", "2024-01-01 00:00", "2024-01-02 00:00")
	expired := SelectExpired(existing, 1, false)
	expired[0].Path = "mutated"

	if existing[0].Path == "mutated" {
		t.Errorf("SelectExpired() result aliases the input slice")
	}
}
