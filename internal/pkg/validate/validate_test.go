package validate

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		value string
		limit int
		want  bool
	}{
		{value: "Logo design", limit: 20, want: true},
		{value: "   ", limit: 20, want: false},
		{value: "ключ", limit: 4, want: true},
		{value: "ключи", limit: 4, want: false},
		{value: "  padded  ", limit: 6, want: true},
		{value: "anything", limit: 0, want: true},
	}

	for _, tc := range tests {
		if got := Text(tc.value, tc.limit); got != tc.want {
			t.Fatalf("Text(%q, %d) = %v, want %v", tc.value, tc.limit, got, tc.want)
		}
	}
}

func TestMaxRunesAllowsEmpty(t *testing.T) {
	if !MaxRunes("", 1) {
		t.Fatalf("empty value should fit any limit")
	}
	if Required("") {
		t.Fatalf("empty value is not present")
	}
}
