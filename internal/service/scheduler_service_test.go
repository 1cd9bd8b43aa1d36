package service

import "testing"

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 0 8 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: "0:5", want: "0 5 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
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
