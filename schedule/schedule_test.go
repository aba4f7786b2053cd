package schedule

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"00:05", "5 0 * * *", false},
		{"23:59", "59 23 * * *", false},
		{"7:30", "30 7 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"12", "", true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("buildDailySpec(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("buildDailySpec(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("buildDailySpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDaily_RegistersJob(t *testing.T) {
	s := New(time.UTC)
	id, err := s.Daily("00:05", func() {})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero entry id")
	}
	if _, err := s.Daily("99:99", func() {}); err == nil {
		t.Fatal("expected error for invalid time")
	}
}
