package bot

import "testing"

func TestMentionLine(t *testing.T) {
	cases := []struct {
		name     string
		mentions []string
		want     string
	}{
		{name: "empty", mentions: nil, want: ""},
		{name: "blank entries dropped", mentions: []string{"", "  "}, want: ""},
		{name: "at prefix added", mentions: []string{"alice"}, want: "👤 @alice"},
		{name: "existing prefix kept", mentions: []string{"@bob"}, want: "👤 @bob"},
		{name: "multiple joined", mentions: []string{"alice", "@bob"}, want: "👤 @alice @bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mentionLine(tc.mentions); got != tc.want {
				t.Fatalf("mentionLine(%v) = %q, want %q", tc.mentions, got, tc.want)
			}
		})
	}
}
