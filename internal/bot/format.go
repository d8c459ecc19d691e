package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

// markdownEscaper covers the characters Telegram's legacy Markdown mode
// treats as formatting. User-supplied text goes through this before being
// embedded in a reply.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// displayName renders a user reference for messages, preferring the
// username over the bare id.
func displayName(userID int64, username string) string {
	if username != "" {
		return "@" + escapeMarkdown(username)
	}
	return fmt.Sprintf("`%d`", userID)
}

// formatAge renders the time elapsed since t in the largest sensible unit.
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func formatUserLine(u domain.User, now time.Time) string {
	name := u.Username
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("`%d` %s | %d images | active %s",
		u.ID, escapeMarkdown(name), u.TotalGenerations, formatAge(u.LastActive, now))
}

func formatBanLine(b domain.BanRecord) string {
	reason := b.Reason
	if reason == "" {
		reason = "no reason given"
	}
	return fmt.Sprintf("`%d` banned %s: %s",
		b.UserID, b.BannedAt.Format("2006-01-02"), escapeMarkdown(reason))
}

func formatStats(s *domain.Stats) string {
	var sb strings.Builder
	sb.WriteString("*Bot Statistics*\n\n")
	fmt.Fprintf(&sb, "Users: %d (%d banned)\n", s.TotalUsers, s.TotalBanned)
	fmt.Fprintf(&sb, "Images generated: %d\n", s.TotalGenerations)
	fmt.Fprintf(&sb, "Last 24h: %d\n", s.Generations24h)
	fmt.Fprintf(&sb, "Active users (7d): %d", s.ActiveUsers7d)
	return sb.String()
}
