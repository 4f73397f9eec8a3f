package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"

	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/currency"
	"github.com/edgard/paybot/internal/database"
	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/report"
	"github.com/edgard/paybot/internal/tracker"
)

func testDeps() HandlerDeps {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(database.NewMemoryStore(), ledger.Options{})
	return HandlerDeps{
		Logger:  logger,
		Config:  &config.Config{},
		Tracker: tracker.New(l, logger),
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/add Paid $5":         "Paid $5",
		"/add@paybot  $5 ":     "$5",
		"/export":              "",
		"/test\nline two":      "line two",
		"plain text":           "plain text",
		"   /summary 2024-3-1": "2024-3-1",
	}
	for in, want := range tests {
		if got := commandArgs(in); got != want {
			t.Errorf("commandArgs(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReporterName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		user *models.User
		want string
	}{
		{nil, "Unknown"},
		{&models.User{Username: "dara", FirstName: "Dara"}, "dara"},
		{&models.User{FirstName: "Sok", LastName: "Chea"}, "Sok Chea"},
		{&models.User{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := reporterName(tt.user); got != tt.want {
			t.Errorf("reporterName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}

	if got := chatTitle(models.Chat{}); got != "Private Chat" {
		t.Errorf("chatTitle(private) = %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	s := report.Summary{
		Period: report.ThisWeek,
		Range: ledger.DateRange{
			Start: civil.Date{Year: 2024, Month: 3, Day: 11},
			End:   civil.Date{Year: 2024, Month: 3, Day: 14},
		},
		USD:   decimal.RequireFromString("1200.5"),
		KHR:   decimal.NewFromInt(15000),
		Count: 3,
	}
	got := formatSummary(s)
	for _, want := range []string{"This Week (2024-03-11 to 2024-03-14)", "USD: $1,200.50", "KHR: ៛15,000", "Payments: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatSummary() = %q, missing %q", got, want)
		}
	}

	empty := formatSummary(report.Summary{Period: report.AllTime})
	if !strings.Contains(empty, "USD: $0.00") || !strings.Contains(empty, "Payments: 0") {
		t.Errorf("formatSummary(empty) = %q", empty)
	}
}

func TestFormatDailyLimitsToMostRecent(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 14, 2, 0, 0, 0, time.UTC)
	var records []ledger.PaymentRecord
	for i := range 4 {
		records = append(records, ledger.PaymentRecord{
			ReporterName: "user" + string(rune('a'+i)),
			AmountUSD:    decimal.NewFromInt(int64(i + 1)),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}
	usd, khr := report.Sum(records)
	d := report.DailySummary{Date: civil.Date{Year: 2024, Month: 3, Day: 14}, Records: records, USD: usd, KHR: khr}

	got := formatDaily(d, 2, time.UTC)
	if strings.Contains(got, "usera") || strings.Contains(got, "userb") {
		t.Errorf("formatDaily() listed older payments: %q", got)
	}
	for _, want := range []string{"March 14, 2024", "Last 2 payments", "02:02 userc - $3.00", "02:03 userd - $4.00", "USD: $10.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatDaily() = %q, missing %q", got, want)
		}
	}

	none := formatDaily(report.DailySummary{Date: d.Date}, 5, time.UTC)
	if !strings.Contains(none, "No payments recorded") {
		t.Errorf("formatDaily(empty) = %q", none)
	}
}

func TestFormatDetectionTest(t *testing.T) {
	t.Parallel()

	matches := currency.ExtractAll("Paid $12.50 and 25,000 riel")
	got := formatDetectionTest("Paid $12.50 and 25,000 riel", matches)
	for _, want := range []string{"$12.50 USD", "៛25,000 KHR", "Total: $12.50 + ៛25,000"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatDetectionTest() = %q, missing %q", got, want)
		}
	}

	if got := formatDetectionTest("hello", nil); !strings.Contains(got, "Nothing detected") {
		t.Errorf("formatDetectionTest(no match) = %q", got)
	}
}

func TestFormatRecorded(t *testing.T) {
	t.Parallel()

	matches := currency.ExtractAll("៛4,000")
	if got := formatRecorded(matches, nil); got != "✅ Payment recorded:\n🏛️ ៛4,000 KHR" {
		t.Errorf("formatRecorded() = %q", got)
	}

	today := report.Summary{Period: report.Today, KHR: decimal.NewFromInt(4000), Count: 1}
	if got := formatRecorded(matches, &today); !strings.Contains(got, "📊 Today") {
		t.Errorf("formatRecorded(with totals) = %q", got)
	}
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	registered := RegisterAllCommands(testDeps())
	for _, cmd := range []string{"/start", "/help", "/add", "/total", "/week", "/month", "/year", "/summary", "/export", "/test"} {
		h, ok := registered[cmd]
		if !ok {
			t.Errorf("command %s not registered", cmd)
			continue
		}
		if h.Handler == nil || h.Description == "" || "/"+h.Pattern != cmd {
			t.Errorf("command %s registered incompletely: %+v", cmd, h)
		}
	}
}

func TestHumanSenderOnly(t *testing.T) {
	t.Parallel()

	deps := testDeps()
	tests := []struct {
		name   string
		update *models.Update
		want   bool
	}{
		{"no message", &models.Update{}, false},
		{"no sender", &models.Update{Message: &models.Message{}}, false},
		{"bot sender", &models.Update{Message: &models.Message{From: &models.User{ID: 1, IsBot: true}}}, false},
		{"human sender", &models.Update{Message: &models.Message{From: &models.User{ID: 2}}}, true},
	}

	for _, tt := range tests {
		called := false
		next := func(context.Context, *bot.Bot, *models.Update) { called = true }
		HumanSenderOnly(deps)(next)(context.Background(), nil, tt.update)
		if called != tt.want {
			t.Errorf("%s: next called = %v, want %v", tt.name, called, tt.want)
		}
	}
}
