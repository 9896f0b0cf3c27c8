package routing

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/pinhub-core/internal/pin"
	"github.com/nerrad567/pinhub-core/internal/project"
	"github.com/nerrad567/pinhub-core/internal/protocol"
	"github.com/nerrad567/pinhub-core/internal/session"
)

// memRepo is an in-memory project.Repository for router tests.
type memRepo struct {
	profiles []project.Profile
	tokens   map[string]project.Binding
}

func (m *memRepo) LoadProfiles(_ context.Context) ([]project.Profile, error) {
	return m.profiles, nil
}

func (m *memRepo) LoadTokens(_ context.Context) (map[string]project.Binding, error) {
	return m.tokens, nil
}

func (m *memRepo) UpdateWidgetValues(_ context.Context, _ int64, _ []string) error {
	return nil
}

// fakeTransport records sent frames.
type fakeTransport struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (f *fakeTransport) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

// fakeSessions is a static Sessions implementation.
type fakeSessions struct {
	hardware map[string]*fakeTransport
	apps     map[string][]*fakeTransport
}

func (s *fakeSessions) Hardware(userID string) (session.Transport, bool) {
	t, ok := s.hardware[userID]
	if !ok {
		return nil, false
	}
	return t, true
}

func (s *fakeSessions) Apps(userID string) []session.Transport {
	var out []session.Transport
	for _, t := range s.apps[userID] {
		out = append(out, t)
	}
	return out
}

// fakeDispatcher records submissions.
type fakeDispatcher struct {
	mu     sync.Mutex
	pushes []string
	mails  []string
	full   bool
}

func (d *fakeDispatcher) EnqueuePush(deviceToken, message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.pushes = append(d.pushes, deviceToken+":"+message)
	return true
}

func (d *fakeDispatcher) EnqueueMail(to, subject, _ string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.mails = append(d.mails, to+":"+subject)
	return true
}

// recordingMirror records PublishPinState calls.
type recordingMirror struct {
	mu    sync.Mutex
	calls int
}

func (m *recordingMirror) PublishPinState(int64, pin.Address, []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

// newTestProfiles builds a registry with the canonical scenario: token
// "abc123" maps user u1 to active project 10, which has a button on v5
// holding ["10"], a notification widget and a mail widget. Project 11 is
// inactive with the same widget set, reachable via token "idle".
func newTestProfiles(t *testing.T) *project.Registry {
	t.Helper()

	v5 := pin.Address{Type: pin.Virtual, Number: 5}
	v6 := pin.Address{Type: pin.Virtual, Number: 6}
	repo := &memRepo{
		profiles: []project.Profile{
			{
				User: project.User{ID: "u1", Name: "ada"},
				Projects: []*project.Project{
					{
						ID: 10, Name: "greenhouse", IsActive: true,
						Widgets: []*project.Widget{
							{ID: 1, Kind: project.KindButton, Pin: &v5, Values: []string{"10"}},
							{ID: 2, Kind: project.KindNotification, DeviceTokens: []string{"apns-1", "apns-2"}},
							{ID: 3, Kind: project.KindMail},
						},
					},
					{
						ID: 11, Name: "attic", IsActive: false,
						Widgets: []*project.Widget{
							{ID: 4, Kind: project.KindButton, Pin: &v6, Values: []string{"0"}},
							{ID: 5, Kind: project.KindNotification, DeviceTokens: []string{"apns-3"}},
							{ID: 6, Kind: project.KindMail},
						},
					},
				},
			},
			{
				User: project.User{ID: "u2", Name: "bee"},
				Projects: []*project.Project{
					{ID: 20, Name: "bare", IsActive: true, Widgets: []*project.Widget{
						{ID: 7, Kind: project.KindNotification},
					}},
				},
			},
		},
		tokens: map[string]project.Binding{
			"abc123": {UserID: "u1", ProjectID: 10},
			"idle":   {UserID: "u1", ProjectID: 11},
			"bare":   {UserID: "u2", ProjectID: 20},
		},
	}

	reg := project.NewRegistry(repo)
	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	return reg
}

func newTestRouter(t *testing.T) (*Router, *fakeSessions, *fakeDispatcher) {
	t.Helper()

	sessions := &fakeSessions{
		hardware: map[string]*fakeTransport{"u1": {}},
		apps:     map[string][]*fakeTransport{"u1": {{}, {}}},
	}
	dispatcher := &fakeDispatcher{}
	r := New(Deps{
		Profiles:   newTestProfiles(t),
		Sessions:   sessions,
		Dispatcher: dispatcher,
	})
	return r, sessions, dispatcher
}

func TestReadPin(t *testing.T) {
	r, sessions, _ := newTestRouter(t)

	got, err := r.ReadPin("abc123", "V5")
	if err != nil {
		t.Fatalf("ReadPin: %v", err)
	}
	if got != `["10"]` {
		t.Errorf("ReadPin = %s, want [\"10\"]", got)
	}

	// Reads never send frames.
	if n := len(sessions.hardware["u1"].sent()); n != 0 {
		t.Errorf("read sent %d hardware frames", n)
	}
}

func TestReadPin_Failures(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name    string
		token   string
		pinSpec string
		wantErr error
	}{
		{"unknown token", "nope", "V5", project.ErrInvalidToken},
		{"malformed pin", "abc123", "X5", pin.ErrMalformed},
		{"unbound pin", "abc123", "V99", project.ErrWidgetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.ReadPin(tt.token, tt.pinSpec); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWritePin_CoalescedDuplicate(t *testing.T) {
	r, sessions, _ := newTestRouter(t)

	changed, err := r.WritePin(context.Background(), "abc123", "V5", []string{"10"})
	if err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if changed {
		t.Error("identical write reported changed")
	}
	if n := len(sessions.hardware["u1"].sent()); n != 0 {
		t.Errorf("coalesced write sent %d hardware frames, want 0", n)
	}
	for i, app := range sessions.apps["u1"] {
		if n := len(app.sent()); n != 0 {
			t.Errorf("coalesced write sent %d frames to app %d, want 0", n, i)
		}
	}
}

func TestWritePin_ChangedFansOut(t *testing.T) {
	r, sessions, _ := newTestRouter(t)

	changed, err := r.WritePin(context.Background(), "abc123", "V5", []string{"20"})
	if err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if !changed {
		t.Fatal("new value reported unchanged")
	}

	hwFrames := sessions.hardware["u1"].sent()
	if len(hwFrames) != 1 {
		t.Fatalf("hardware frames = %d, want 1", len(hwFrames))
	}
	assertFrame(t, hwFrames[0], protocol.CmdHardware, PushMessageID, "v\x005\x0020")

	for i, app := range sessions.apps["u1"] {
		frames := app.sent()
		if len(frames) != 1 {
			t.Fatalf("app %d frames = %d, want 1", i, len(frames))
		}
		assertFrame(t, frames[0], protocol.CmdHardware, PushMessageID, "10\x00v\x005\x0020")
	}
}

func TestWritePin_NoSessionsStillSucceeds(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	r := New(Deps{
		Profiles:   newTestProfiles(t),
		Sessions:   &fakeSessions{},
		Dispatcher: dispatcher,
	})

	changed, err := r.WritePin(context.Background(), "abc123", "V5", []string{"30"})
	if err != nil {
		t.Fatalf("WritePin with no sessions: %v", err)
	}
	if !changed {
		t.Error("write reported unchanged")
	}

	// Stored value committed despite no delivery.
	if got, _ := r.ReadPin("abc123", "V5"); got != `["30"]` {
		t.Errorf("stored value = %s, want [\"30\"]", got)
	}
}

func TestWritePin_SendFailureDoesNotFailWrite(t *testing.T) {
	sessions := &fakeSessions{
		hardware: map[string]*fakeTransport{"u1": {err: errors.New("broken pipe")}},
	}
	r := New(Deps{
		Profiles:   newTestProfiles(t),
		Sessions:   sessions,
		Dispatcher: &fakeDispatcher{},
	})

	if _, err := r.WritePin(context.Background(), "abc123", "V5", []string{"40"}); err != nil {
		t.Fatalf("WritePin with failing transport: %v", err)
	}
}

func TestWritePin_InactiveProjectStillWrites(t *testing.T) {
	r, _, _ := newTestRouter(t)

	// Activity gating applies to notify/email only, not pin I/O.
	changed, err := r.WritePin(context.Background(), "idle", "V6", []string{"1"})
	if err != nil {
		t.Fatalf("WritePin on inactive project: %v", err)
	}
	if !changed {
		t.Error("write reported unchanged")
	}
}

func TestWritePin_MirrorAndTelemetryOnChangeOnly(t *testing.T) {
	mirror := &recordingMirror{}
	var recorded int
	r := New(Deps{
		Profiles:   newTestProfiles(t),
		Sessions:   &fakeSessions{},
		Dispatcher: &fakeDispatcher{},
		Mirror:     mirror,
		Telemetry: telemetryFunc(func(int64, pin.Address, []string) {
			recorded++
		}),
	})

	ctx := context.Background()
	if _, err := r.WritePin(ctx, "abc123", "V5", []string{"10"}); err != nil {
		t.Fatalf("duplicate write: %v", err)
	}
	if _, err := r.WritePin(ctx, "abc123", "V5", []string{"50"}); err != nil {
		t.Fatalf("changed write: %v", err)
	}

	if mirror.calls != 1 {
		t.Errorf("mirror calls = %d, want 1", mirror.calls)
	}
	if recorded != 1 {
		t.Errorf("telemetry calls = %d, want 1", recorded)
	}
}

// telemetryFunc adapts a function to the Telemetry interface.
type telemetryFunc func(projectID int64, addr pin.Address, values []string)

func (f telemetryFunc) RecordPinWrite(projectID int64, addr pin.Address, values []string) {
	f(projectID, addr, values)
}

func TestNotify_ValidationOrder(t *testing.T) {
	r, _, _ := newTestRouter(t)
	long := strings.Repeat("x", MaxNotificationLength+1)

	tests := []struct {
		name    string
		token   string
		body    string
		wantErr error
	}{
		{"unknown token", "nope", "hi", project.ErrInvalidToken},
		{"empty body", "abc123", "", ErrNotificationBody},
		{"oversize body", "abc123", long, ErrNotificationBody},
		// The body check precedes the activity check, so a bad body on an
		// inactive project reports the body error.
		{"bad body on inactive project", "idle", long, ErrNotificationBody},
		{"inactive project", "idle", "hi", ErrProjectInactive},
		{"widget without device token", "bare", "hi", ErrNotificationNotInitialised},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Notify(tt.token, tt.body); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNotify_BoundaryLength(t *testing.T) {
	r, _, _ := newTestRouter(t)

	// Exactly 255 characters passes the body check.
	if err := r.Notify("abc123", strings.Repeat("x", MaxNotificationLength)); err != nil {
		t.Errorf("255-char body rejected: %v", err)
	}

	// The limit counts characters, not bytes.
	multibyte := strings.Repeat("é", MaxNotificationLength)
	if err := r.Notify("abc123", multibyte); err != nil {
		t.Errorf("255-rune multibyte body rejected: %v", err)
	}
}

func TestNotify_SubmitsPerDeviceToken(t *testing.T) {
	r, _, dispatcher := newTestRouter(t)

	if err := r.Notify("abc123", "pump on"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if len(dispatcher.pushes) != 2 {
		t.Fatalf("push submissions = %d, want 2", len(dispatcher.pushes))
	}
	if dispatcher.pushes[0] != "apns-1:pump on" || dispatcher.pushes[1] != "apns-2:pump on" {
		t.Errorf("push submissions = %v", dispatcher.pushes)
	}
}

func TestNotify_FullQueueStillSucceeds(t *testing.T) {
	r, _, dispatcher := newTestRouter(t)
	dispatcher.full = true

	// The contract is "submitted"; a dropped submission is not an HTTP error.
	if err := r.Notify("abc123", "pump on"); err != nil {
		t.Errorf("Notify with full queue: %v", err)
	}
}

func TestEmail_ValidationOrder(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name    string
		token   string
		to      string
		subject string
		wantErr error
	}{
		{"unknown token", "nope", "a@b", "s", project.ErrInvalidToken},
		{"empty to", "abc123", "", "s", ErrMailFields},
		{"empty subject", "abc123", "a@b", "", ErrMailFields},
		// Field presence precedes the activity check.
		{"missing fields on inactive project", "idle", "", "", ErrMailFields},
		{"inactive project", "idle", "a@b", "s", ErrProjectInactive},
		{"no mail widget", "bare", "a@b", "s", ErrNoMailWidget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Email(tt.token, tt.to, tt.subject, "body"); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmail_Submits(t *testing.T) {
	r, _, dispatcher := newTestRouter(t)

	if err := r.Email("abc123", "ada@example.com", "report", "weekly numbers"); err != nil {
		t.Fatalf("Email: %v", err)
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if len(dispatcher.mails) != 1 || dispatcher.mails[0] != "ada@example.com:report" {
		t.Errorf("mail submissions = %v", dispatcher.mails)
	}
}

// assertFrame checks the binary layout of one encoded frame.
func assertFrame(t *testing.T, frame []byte, cmd byte, messageID uint16, body string) {
	t.Helper()

	if len(frame) < protocol.HeaderLength {
		t.Fatalf("frame too short: %d bytes", len(frame))
	}
	if frame[0] != cmd {
		t.Errorf("command = %d, want %d", frame[0], cmd)
	}
	if got := binary.BigEndian.Uint16(frame[1:3]); got != messageID {
		t.Errorf("message id = %d, want %d", got, messageID)
	}
	if got := binary.BigEndian.Uint16(frame[3:5]); got != uint16(len(body)) {
		t.Errorf("payload length = %d, want %d", got, len(body))
	}
	if got := string(frame[protocol.HeaderLength:]); got != body {
		t.Errorf("payload = %q, want %q", got, body)
	}
}
