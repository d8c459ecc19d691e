package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/imagegen"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

func nopLogger() *infra.Logger {
	logger := zerolog.Nop()
	return &logger
}

type fakeSettings struct {
	enabled bool
	err     error
	writes  []bool
}

func (f *fakeSettings) BotEnabled(ctx context.Context) (bool, error) { return f.enabled, f.err }
func (f *fakeSettings) SetBotEnabled(ctx context.Context, enabled bool) error {
	f.writes = append(f.writes, enabled)
	return nil
}

type fakeUsers struct {
	profiles    map[int64]domain.User
	isAuthErr   error
	touched     []int64
	incremented []int64
	authorized  []int64
	revoked     []int64
}

func newFakeUsers(ids ...int64) *fakeUsers {
	f := &fakeUsers{profiles: map[int64]domain.User{}}
	for _, id := range ids {
		f.profiles[id] = domain.User{ID: id, AuthorizedAt: time.Unix(1700000000, 0)}
	}
	return f
}

func (f *fakeUsers) Authorize(ctx context.Context, userID int64, username string, addedBy int64) error {
	if _, ok := f.profiles[userID]; !ok {
		f.profiles[userID] = domain.User{ID: userID, Username: username, AddedBy: addedBy}
	}
	f.authorized = append(f.authorized, userID)
	return nil
}

func (f *fakeUsers) Revoke(ctx context.Context, userID int64) (bool, error) {
	_, ok := f.profiles[userID]
	delete(f.profiles, userID)
	f.revoked = append(f.revoked, userID)
	return ok, nil
}

func (f *fakeUsers) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	if f.isAuthErr != nil {
		return false, f.isAuthErr
	}
	_, ok := f.profiles[userID]
	return ok, nil
}

func (f *fakeUsers) Get(ctx context.Context, userID int64) (*domain.User, error) {
	u, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.profiles))
	for _, u := range f.profiles {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Touch(ctx context.Context, userID int64, username string) error {
	f.touched = append(f.touched, userID)
	return nil
}

func (f *fakeUsers) IncrementGenerations(ctx context.Context, userID int64) error {
	f.incremented = append(f.incremented, userID)
	return nil
}

type fakeBans struct {
	records  map[int64]domain.BanRecord
	isBanErr error
	unbanned []int64
}

func newFakeBans() *fakeBans {
	return &fakeBans{records: map[int64]domain.BanRecord{}}
}

func (f *fakeBans) Ban(ctx context.Context, userID int64, reason string, bannedBy int64) error {
	f.records[userID] = domain.BanRecord{UserID: userID, Reason: reason, BannedBy: bannedBy}
	return nil
}

func (f *fakeBans) Unban(ctx context.Context, userID int64) (bool, error) {
	_, ok := f.records[userID]
	delete(f.records, userID)
	f.unbanned = append(f.unbanned, userID)
	return ok, nil
}

func (f *fakeBans) IsBanned(ctx context.Context, userID int64) (bool, error) {
	if f.isBanErr != nil {
		return false, f.isBanErr
	}
	_, ok := f.records[userID]
	return ok, nil
}

func (f *fakeBans) Info(ctx context.Context, userID int64) (*domain.BanRecord, error) {
	r, ok := f.records[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (f *fakeBans) List(ctx context.Context) ([]domain.BanRecord, error) {
	out := make([]domain.BanRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

type fakeAdmins struct {
	ids map[int64]bool
	err error
}

func (f *fakeAdmins) Add(ctx context.Context, userID int64) error {
	f.ids[userID] = true
	return nil
}

func (f *fakeAdmins) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return f.ids[userID], f.err
}

type fakeAudit struct {
	entries []domain.AuditEntry
	stats   *domain.Stats
}

func (f *fakeAudit) Append(ctx context.Context, entry domain.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) Stats(ctx context.Context) (*domain.Stats, error) {
	if f.stats == nil {
		return &domain.Stats{}, nil
	}
	return f.stats, nil
}

func (f *fakeAudit) byType(actionType string) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range f.entries {
		if e.ActionType == actionType {
			out = append(out, e)
		}
	}
	return out
}

type fakeLimiter struct {
	allowed  bool
	checkErr error
	checks   int
	recorded []int64
}

func (f *fakeLimiter) Check(ctx context.Context, userID int64, window time.Duration, maxRequests int) (bool, error) {
	f.checks++
	return f.allowed, f.checkErr
}

func (f *fakeLimiter) Record(ctx context.Context, userID int64) error {
	f.recorded = append(f.recorded, userID)
	return nil
}

type photoSend struct {
	url     string
	caption string
}

type fakeMessenger struct {
	sent       []string
	edits      []string
	photos     []photoSend
	deleted    []MessageHandle
	nextHandle int
	photoErrOn string
}

func (f *fakeMessenger) EditMessage(ctx context.Context, handle MessageHandle, text string) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeMessenger) SendMessage(ctx context.Context, text string) (MessageHandle, error) {
	f.sent = append(f.sent, text)
	f.nextHandle++
	return MessageHandle(f.nextHandle), nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, handle MessageHandle) error {
	f.deleted = append(f.deleted, handle)
	return nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, url, caption string) error {
	if f.photoErrOn != "" && url == f.photoErrOn {
		return context.DeadlineExceeded
	}
	f.photos = append(f.photos, photoSend{url: url, caption: caption})
	return nil
}

func (f *fakeMessenger) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no message was sent")
	}
	return f.sent[len(f.sent)-1]
}

type sentTo struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent    []sentTo
	failFor map[int64]bool
}

func (f *fakeSender) SendTo(ctx context.Context, chatID int64, text string) error {
	if f.failFor[chatID] {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, sentTo{chatID: chatID, text: text})
	return nil
}

type fakeGenerator struct {
	result *imagegen.Result
	err    error
	calls  int
	gotReq imagegen.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Result, error) {
	f.calls++
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	orch     *Orchestrator
	admin    *Admin
	settings *fakeSettings
	users    *fakeUsers
	bans     *fakeBans
	admins   *fakeAdmins
	audit    *fakeAudit
	limiter  *fakeLimiter
	gen      *fakeGenerator
	sender   *fakeSender
	m        *fakeMessenger
}

// newFixture wires an orchestrator and admin handler around fakes. User 10
// is authorized, user 99 is an admin, the limiter allows, and the
// generator answers with one image.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		settings: &fakeSettings{enabled: true},
		users:    newFakeUsers(10, 99),
		bans:     newFakeBans(),
		admins:   &fakeAdmins{ids: map[int64]bool{99: true}},
		audit:    &fakeAudit{},
		limiter:  &fakeLimiter{allowed: true},
		gen: &fakeGenerator{result: &imagegen.Result{
			CreatedAt: time.Unix(1700000100, 0),
			Images:    []imagegen.Image{{URL: "https://img.example/1.png"}},
		}},
		sender: &fakeSender{},
		m:      &fakeMessenger{},
	}
	logger := nopLogger()
	gate := NewGate(f.settings, f.users, f.bans, logger)
	channel := NewChannelLogger(f.sender, -100, logger)
	f.orch = NewOrchestrator(Options{RateWindow: 5 * time.Minute, RateMax: 10},
		gate, f.users, f.limiter, f.audit, f.gen, channel, logger)
	f.admin = NewAdmin(f.admins, f.users, f.bans, f.settings, f.audit, f.sender, channel, logger)
	return f
}

func wantContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Fatalf("message %q does not contain %q", got, want)
	}
}
