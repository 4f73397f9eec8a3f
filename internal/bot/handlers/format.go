package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/currency"
	"github.com/edgard/paybot/internal/report"
)

const (
	unknownReporter = "Unknown"
	privateChat     = "Private Chat"
)

// commandArgs returns the text after the leading command token.
func commandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	i := strings.IndexAny(text, " \n\t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i+1:])
}

func reporterName(u *models.User) string {
	if u == nil {
		return unknownReporter
	}
	switch {
	case u.Username != "":
		return u.Username
	case u.FirstName != "":
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return unknownReporter
}

func chatTitle(c models.Chat) string {
	if c.Title != "" {
		return c.Title
	}
	return privateChat
}

func formatMatches(matches []currency.Match) string {
	var sb strings.Builder
	for _, m := range matches {
		switch m.Kind {
		case currency.USD:
			fmt.Fprintf(&sb, "💵 %s USD\n", currency.FormatUSD(m.Amount))
		case currency.KHR:
			fmt.Fprintf(&sb, "🏛️ %s KHR\n", currency.FormatKHR(m.Amount))
		}
	}
	return sb.String()
}

func formatRecorded(matches []currency.Match, today *report.Summary) string {
	var sb strings.Builder
	sb.WriteString("✅ Payment recorded:\n")
	sb.WriteString(formatMatches(matches))
	if today != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSummary(*today))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSummary(s report.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s", s.Period.Label())
	switch {
	case s.Period == report.AllTime:
	case s.Range.Start == s.Range.End:
		fmt.Fprintf(&sb, " (%s)", s.Range.End)
	default:
		fmt.Fprintf(&sb, " (%s to %s)", s.Range.Start, s.Range.End)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "💵 USD: %s\n", currency.FormatUSD(s.USD))
	fmt.Fprintf(&sb, "🏛️ KHR: %s\n", currency.FormatKHR(s.KHR))
	fmt.Fprintf(&sb, "🧾 Payments: %d", s.Count)
	return sb.String()
}

// formatDaily lists at most limit of the day's most recent payments.
func formatDaily(d report.DailySummary, limit int, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Daily summary for %s\n\n", d.Date.In(time.UTC).Format("January 2, 2006"))
	fmt.Fprintf(&sb, "💵 USD: %s\n", currency.FormatUSD(d.USD))
	fmt.Fprintf(&sb, "🏛️ KHR: %s\n", currency.FormatKHR(d.KHR))
	fmt.Fprintf(&sb, "🧾 Payments: %d", d.Count())

	if d.Count() == 0 {
		sb.WriteString("\n\nNo payments recorded on this day.")
		return sb.String()
	}

	records := d.Records
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
		fmt.Fprintf(&sb, "\n\nLast %d payments:", limit)
	} else {
		sb.WriteString("\n\nPayments:")
	}
	for _, rec := range records {
		var amounts []string
		if !rec.AmountUSD.IsZero() || rec.AmountKHR.IsZero() {
			amounts = append(amounts, currency.FormatUSD(rec.AmountUSD))
		}
		if !rec.AmountKHR.IsZero() {
			amounts = append(amounts, currency.FormatKHR(rec.AmountKHR))
		}
		fmt.Fprintf(&sb, "\n• %s %s - %s",
			rec.CreatedAt.In(loc).Format("15:04"), rec.ReporterName, strings.Join(amounts, " + "))
	}
	return sb.String()
}

func formatDetectionTest(text string, matches []currency.Match) string {
	var sb strings.Builder
	sb.WriteString("🔍 Detection test\n\n")
	fmt.Fprintf(&sb, "Input: %s\n\n", text)
	if len(matches) == 0 {
		sb.WriteString("Nothing detected. This message would not be recorded.")
		return sb.String()
	}
	sb.WriteString("Detected:\n")
	for _, m := range matches {
		fmt.Fprintf(&sb, "• %s %s (%s %q)\n",
			currency.Format(m.Kind, m.Amount), m.Kind, m.Marker, m.Raw)
	}
	usd, khr := currency.Totals(matches)
	fmt.Fprintf(&sb, "\nTotal: %s + %s", currency.FormatUSD(usd), currency.FormatKHR(khr))
	return sb.String()
}
