package bot

import (
	"testing"
	"time"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("a_b*c`d[e")
	want := `a\_b\*c\` + "`" + `d\[e`
	if got != want {
		t.Fatalf("escapeMarkdown = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate kept = %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd..." {
		t.Fatalf("truncate cut = %q, want %q", got, "abcd...")
	}
	// Rune-aware: multi-byte characters count once.
	if got := truncate("ééééé", 3); got != "ééé..." {
		t.Fatalf("truncate runes = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tc := range cases {
		if got := formatAge(tc.t, now); got != tc.want {
			t.Fatalf("formatAge(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestFormatUserLine(t *testing.T) {
	now := time.Unix(1700000000, 0)
	u := domain.User{ID: 42, Username: "ada_l", TotalGenerations: 9, LastActive: now.Add(-2 * time.Hour)}
	got := formatUserLine(u, now)
	for _, want := range []string{"42", `ada\_l`, "9 images", "2h ago"} {
		wantContains(t, got, want)
	}
}
