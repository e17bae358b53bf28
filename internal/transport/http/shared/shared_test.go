package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	got, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("parse plain date: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, err = ParseDate("2025-03-10T15:04:05Z")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("expected timestamp truncated to %v, got %v", want, got)
	}
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, value := range []string{"", "10/03/2025", "not-a-date"} {
		if _, err := ParseDate(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestFormatDateRoundTrips(t *testing.T) {
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseDate(FormatDate(day))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !parsed.Equal(day) {
		t.Fatalf("expected %v, got %v", day, parsed)
	}
}

func TestParsePageDefaultsAndClamps(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", defaultPageSize, 0},
		{"explicit", "?limit=25&offset=100", 25, 100},
		{"clamped", "?limit=9999", maxPageSize, 0},
		{"garbage", "?limit=abc&offset=-3", defaultPageSize, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/"+tc.query, nil)
			page := ParsePage(r)
			if page.Limit != tc.wantLimit || page.Offset != tc.wantOffset {
				t.Fatalf("expected limit=%d offset=%d, got limit=%d offset=%d",
					tc.wantLimit, tc.wantOffset, page.Limit, page.Offset)
			}
		})
	}
}
