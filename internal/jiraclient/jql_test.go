package jiraclient

import "testing"

func TestBuildJQL(t *testing.T) {
	cases := []struct {
		name       string
		projectKey string
		filter     string
		lastSeen   string
		want       string
	}{
		{
			name:       "no filter no cursor",
			projectKey: "ABC",
			want:       `project = "ABC" ORDER BY id ASC`,
		},
		{
			name:       "filter with trailing order by stripped",
			projectKey: "ABC",
			filter:     "status != Done ORDER BY created DESC",
			want:       `project = "ABC" AND (status != Done) ORDER BY id ASC`,
		},
		{
			name:       "cursor set",
			projectKey: "ABC",
			lastSeen:   "10042",
			want:       `project = "ABC" AND id > 10042 ORDER BY id ASC`,
		},
		{
			name:       "filter and cursor both set",
			projectKey: "ABC",
			filter:     "status != Done",
			lastSeen:   "10042",
			want:       `project = "ABC" AND (status != Done) AND id > 10042 ORDER BY id ASC`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildJQL(tc.projectKey, tc.filter, tc.lastSeen)
			if got != tc.want {
				t.Errorf("BuildJQL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClampBatchSize(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 1}, {-5, 1}, {1, 1}, {50, 50}, {100, 100}, {101, 100}, {1000, 100},
	}
	for _, tc := range cases {
		if got := ClampBatchSize(tc.in); got != tc.want {
			t.Errorf("ClampBatchSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMaxInt64Str(t *testing.T) {
	cases := []struct {
		a, b, want string
	}{
		{"", "5", "5"},
		{"5", "", "5"},
		{"5", "10", "10"},
		{"10", "5", "10"},
		{"99", "100", "100"},
	}
	for _, tc := range cases {
		if got := MaxInt64Str(tc.a, tc.b); got != tc.want {
			t.Errorf("MaxInt64Str(%q,%q) = %q, want %q", tc.a, tc.b, got, tc.want)
		}
	}
}
