package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/database"
	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/tracker"
)

// sentMessage is one outgoing Bot API call seen by apiRecorder.
type sentMessage struct {
	method   string
	text     string
	caption  string
	filename string
}

// apiRecorder stands in for the Telegram Bot API and records what the
// handlers send.
type apiRecorder struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (a *apiRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	msg := sentMessage{method: method}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		msg.text = r.FormValue("text")
		msg.caption = r.FormValue("caption")
		if _, header, err := r.FormFile("document"); err == nil {
			msg.filename = header.Filename
		}
	}

	a.mu.Lock()
	a.sent = append(a.sent, msg)
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if method == "sendChatAction" {
		_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":-100,"type":"group"}}}`)
}

func (a *apiRecorder) calls(method string) []sentMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []sentMessage
	for _, m := range a.sent {
		if m.method == method {
			out = append(out, m)
		}
	}
	return out
}

type brokenRepo struct{}

var errDiskFull = errors.New("disk full")

func (brokenRepo) InsertPayments(context.Context, ...ledger.PaymentRecord) error { return errDiskFull }

func (brokenRepo) PaymentsInRange(context.Context, int64, ledger.DateRange) ([]ledger.PaymentRecord, error) {
	return nil, errDiskFull
}

func (brokenRepo) AllPayments(context.Context, int64) ([]ledger.PaymentRecord, error) {
	return nil, errDiskFull
}

func testMessages() config.MessagesConfig {
	return config.MessagesConfig{
		Welcome:       "welcome",
		Help:          "help",
		AddUsage:      "usage: /add",
		TestUsage:     "usage: /test",
		NoAmounts:     "no amounts",
		StorageError:  "ledger unreachable",
		InvalidPeriod: "bad period",
		InvalidDate:   "bad date",
		ExportEmpty:   "nothing to export",
		GeneralError:  "something went wrong",
	}
}

func newHandlerEnv(t *testing.T, repo ledger.Repository) (HandlerDeps, *bot.Bot, *apiRecorder) {
	t.Helper()

	api := &apiRecorder{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := bot.New("123:test", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("bot.New() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := HandlerDeps{
		Logger: logger,
		Config: &config.Config{
			Ledger:   config.LedgerConfig{AutoDetect: true, SummaryLimit: 5},
			Messages: testMessages(),
		},
		Tracker: tracker.New(ledger.New(repo, ledger.Options{}), logger),
	}
	return deps, b, api
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Chat: models.Chat{ID: -100, Type: models.ChatTypeGroup, Title: "Shop"},
			From: &models.User{ID: 7, Username: "dara"},
			Text: text,
		},
	}
}

func onlyReply(t *testing.T, api *apiRecorder) string {
	t.Helper()
	sent := api.calls("sendMessage")
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1: %+v", len(sent), sent)
	}
	return sent[0].text
}

func TestRecordHandlersReplyStorageErrorOnFailedAppend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler func(HandlerDeps) bot.HandlerFunc
		text    string
	}{
		{"add command", NewAddHandler, "/add Paid $5"},
		{"auto detect", NewDetectHandler, "Paid $5 for lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps, b, api := newHandlerEnv(t, brokenRepo{})
			tt.handler(deps)(context.Background(), b, textUpdate(tt.text))

			got := onlyReply(t, api)
			if got != deps.Config.Messages.StorageError {
				t.Errorf("reply = %q, want %q", got, deps.Config.Messages.StorageError)
			}
			if strings.Contains(got, "recorded") {
				t.Errorf("reply = %q reports success for a failed append", got)
			}
		})
	}
}

func TestAddHandlerConfirmsRecordedPayment(t *testing.T) {
	t.Parallel()

	deps, b, api := newHandlerEnv(t, database.NewMemoryStore())
	NewAddHandler(deps)(context.Background(), b, textUpdate("/add Paid $5 and 4,000 riel"))

	got := onlyReply(t, api)
	for _, want := range []string{"Payment recorded", "$5.00", "៛4,000"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply = %q, missing %q", got, want)
		}
	}
}

func TestAddHandlerUsageAndNoAmounts(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/add":             "usage: /add",
		"/add hello there": "no amounts",
	}
	for text, want := range tests {
		deps, b, api := newHandlerEnv(t, database.NewMemoryStore())
		NewAddHandler(deps)(context.Background(), b, textUpdate(text))
		if got := onlyReply(t, api); got != want {
			t.Errorf("%q: reply = %q, want %q", text, got, want)
		}
	}
}

func TestDetectHandlerStaysQuiet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		autoDetect bool
	}{
		{"no amount", "good morning", true},
		{"command text", "/unknown $5", true},
		{"auto detect off", "Paid $5", false},
	}
	for _, tt := range tests {
		deps, b, api := newHandlerEnv(t, brokenRepo{})
		deps.Config.Ledger.AutoDetect = tt.autoDetect
		NewDetectHandler(deps)(context.Background(), b, textUpdate(tt.text))
		if sent := api.calls("sendMessage"); len(sent) != 0 {
			t.Errorf("%s: sent %+v, want nothing", tt.name, sent)
		}
	}
}

func TestTotalsHandlerNeverReportsZeroOnFailure(t *testing.T) {
	t.Parallel()

	deps, b, api := newHandlerEnv(t, brokenRepo{})
	registered := RegisterAllCommands(deps)
	registered["/week"].Handler(context.Background(), b, textUpdate("/week"))

	got := onlyReply(t, api)
	if got != deps.Config.Messages.StorageError {
		t.Errorf("reply = %q, want %q", got, deps.Config.Messages.StorageError)
	}
}

func TestExportHandler(t *testing.T) {
	t.Parallel()

	t.Run("sends workbook", func(t *testing.T) {
		t.Parallel()

		deps, b, api := newHandlerEnv(t, database.NewMemoryStore())
		NewExportHandler(deps)(context.Background(), b, textUpdate("/export week"))

		docs := api.calls("sendDocument")
		if len(docs) != 1 {
			t.Fatalf("sent %d documents, want 1", len(docs))
		}
		if !strings.HasPrefix(docs[0].filename, "payments_week_") || !strings.HasSuffix(docs[0].filename, ".xlsx") {
			t.Errorf("filename = %q", docs[0].filename)
		}
		if !strings.Contains(docs[0].caption, "nothing to export") {
			t.Errorf("caption = %q, want the empty-export note", docs[0].caption)
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		t.Parallel()

		deps, b, api := newHandlerEnv(t, database.NewMemoryStore())
		NewExportHandler(deps)(context.Background(), b, textUpdate("/export fortnight"))

		if got := onlyReply(t, api); got != "bad period" {
			t.Errorf("reply = %q, want bad period", got)
		}
		if docs := api.calls("sendDocument"); len(docs) != 0 {
			t.Errorf("sent %d documents for an invalid period", len(docs))
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		deps, b, api := newHandlerEnv(t, brokenRepo{})
		NewExportHandler(deps)(context.Background(), b, textUpdate("/export"))

		if got := onlyReply(t, api); got != "ledger unreachable" {
			t.Errorf("reply = %q, want ledger unreachable", got)
		}
	})
}
