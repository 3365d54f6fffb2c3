// Package preview implements the Preview Session Manager: a scoped set of
// DMX channel overrides, associated with one project, that is laid on top
// of live output without touching the Output Engine's base layer.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lacylights/lumenserver/internal/database/models"
	"github.com/lacylights/lumenserver/internal/services/bus"
	"github.com/lacylights/lumenserver/internal/services/corexerr"
	"github.com/lacylights/lumenserver/internal/services/dmx"
	"github.com/lucsky/cuid"
)

// DefaultTimeout is the idle duration after which a preview session is
// automatically cancelled (spec.md §6 PREVIEW_TIMEOUT_MS default).
const DefaultTimeout = 30 * time.Minute

// Repository is the read-only subset of the repository façade the Preview
// Session Manager depends on. Defined locally (as playback.Repository is)
// so this package never imports gorm directly.
type Repository interface {
	GetFixture(ctx context.Context, id string) (*models.FixtureInstance, error)
	GetScene(ctx context.Context, id string) (*models.Scene, error)
}

// Session is an active preview overlay scoped to one project.
type Session struct {
	ID        string
	ProjectID string
	UserID    *string
	CreatedAt time.Time
	IsActive  bool

	// Overrides key is "universe:channel" (1-indexed channel), mirroring
	// dmx.Service's own override key shape.
	Overrides map[string]int
}

// DMXOutput is one universe's effective channel values as seen through a
// preview session's overrides.
type DMXOutput struct {
	Universe int
	Channels []int
}

// Service manages preview sessions: at most one active session per
// project, idle auto-cancellation, and overlaying overrides onto the
// Output Engine.
type Service struct {
	mu sync.Mutex

	repo       Repository
	dmxService *dmx.Service
	bus        *bus.Bus
	timeout    time.Duration

	sessions map[string]*Session
	timers   map[string]*time.Timer
}

// NewService creates a Preview Session Manager. timeout <= 0 uses
// DefaultTimeout.
func NewService(repo Repository, dmxService *dmx.Service, b *bus.Bus, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		repo:       repo,
		dmxService: dmxService,
		bus:        b,
		timeout:    timeout,
		sessions:   make(map[string]*Session),
		timers:     make(map[string]*time.Timer),
	}
}

func channelKey(universe, channel int) string {
	return fmt.Sprintf("%d:%d", universe, channel)
}

// Start begins a new preview session for projectID, cancelling any
// existing active session for that project first.
func (s *Service) Start(ctx context.Context, projectID string, userID *string) *Session {
	s.mu.Lock()
	retired := s.cancelProjectSessionsLocked(projectID)

	session := &Session{
		ID:        cuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		CreatedAt: time.Now(),
		IsActive:  true,
		Overrides: make(map[string]int),
	}
	s.sessions[session.ID] = session
	s.armTimeoutLocked(session.ID)
	s.mu.Unlock()

	for _, old := range retired {
		s.publishUpdate(old)
	}
	s.publishUpdate(session)
	return session
}

// UpdateChannel applies a single channel override within sessionID. Returns
// false (no error) for an unknown/inactive session, an unknown fixture, or
// an out-of-range computed DMX address — all silently-ignored cases per
// spec.md §4.4/§4.1.
func (s *Service) UpdateChannel(ctx context.Context, sessionID, fixtureID string, channelOffset, value int) (bool, error) {
	fixture, err := s.repo.GetFixture(ctx, fixtureID)
	if err != nil {
		return false, corexerr.Wrap(corexerr.KindTransientIO, "preview.UpdateChannel", err)
	}
	if fixture == nil {
		return false, nil
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || !session.IsActive {
		s.mu.Unlock()
		return false, nil
	}

	channel := fixture.StartChannel + channelOffset
	if channel < 1 || channel > dmx.UniverseSize {
		s.mu.Unlock()
		return false, nil
	}

	value = clamp(value)
	session.Overrides[channelKey(fixture.Universe, channel)] = value
	s.armTimeoutLocked(sessionID)
	s.mu.Unlock()

	s.dmxService.SetChannelOverride(fixture.Universe, channel, byte(value))
	s.publishUpdate(session)
	return true, nil
}

// InitializeWithScene applies every non-null channel value from scene's
// fixture values as overrides within sessionID, one OE.SetChannelOverride
// call per channel. Fixtures no longer in the repository are skipped.
func (s *Service) InitializeWithScene(ctx context.Context, sessionID, sceneID string) (bool, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok || !session.IsActive {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	scene, err := s.repo.GetScene(ctx, sceneID)
	if err != nil {
		return false, corexerr.Wrap(corexerr.KindTransientIO, "preview.InitializeWithScene", err)
	}
	if scene == nil {
		return false, nil
	}

	for _, fv := range scene.FixtureValues {
		fixture, err := s.repo.GetFixture(ctx, fv.FixtureID)
		if err != nil || fixture == nil {
			continue
		}

		var values []models.ChannelValue
		if err := json.Unmarshal([]byte(fv.Channels), &values); err != nil {
			continue
		}

		for _, cv := range values {
			channel := fixture.StartChannel + cv.Offset
			if channel < 1 || channel > dmx.UniverseSize {
				continue
			}

			value := clamp(cv.Value)

			s.mu.Lock()
			session.Overrides[channelKey(fixture.Universe, channel)] = value
			s.armTimeoutLocked(sessionID)
			s.mu.Unlock()

			s.dmxService.SetChannelOverride(fixture.Universe, channel, byte(value))
		}
	}

	s.publishUpdate(session)
	return true, nil
}

// Commit retires sessionID and removes its overrides from the Output
// Engine without touching the base layer. The underlying scene is assumed
// to have already been persisted with these values by the caller.
func (s *Service) Commit(ctx context.Context, sessionID string) bool {
	return s.end(sessionID)
}

// Cancel retires sessionID, removing its overrides from the Output Engine.
func (s *Service) Cancel(ctx context.Context, sessionID string) bool {
	return s.end(sessionID)
}

// end implements the shared Commit/Cancel retirement path: clear the
// timeout, remove overrides from OE, mark inactive, then publish — in that
// order, so PREVIEW_SESSION_UPDATED(active=false) is only ever observed
// after the overrides are gone (spec.md §5 ordering guarantee).
func (s *Service) end(sessionID string) bool {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.clearTimeoutLocked(sessionID)
	s.clearOverridesLocked(session)
	session.IsActive = false
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.publishUpdate(session)
	return true
}

// Get returns a snapshot of sessionID and its current effective DMX output
// across every universe it touches. Returns nil for an unknown session.
func (s *Service) Get(sessionID string) (*Session, []DMXOutput) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	snapshot := *session
	snapshot.Overrides = make(map[string]int, len(session.Overrides))
	for k, v := range session.Overrides {
		snapshot.Overrides[k] = v
	}
	s.mu.Unlock()

	return &snapshot, s.dmxOutputFor(&snapshot)
}

// GetProjectSession returns the active session for projectID, or nil.
func (s *Service) GetProjectSession(projectID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ProjectID == projectID && session.IsActive {
			snapshot := *session
			return &snapshot
		}
	}
	return nil
}

// dmxOutputFor computes the universes a session touches and their full
// 512-channel effective output (base plus every live override, not just
// this session's).
func (s *Service) dmxOutputFor(session *Session) []DMXOutput {
	universes := make(map[int]bool)
	for key := range session.Overrides {
		var u, c int
		_, _ = fmt.Sscanf(key, "%d:%d", &u, &c)
		universes[u] = true
	}

	outputs := make([]DMXOutput, 0, len(universes))
	for u := range universes {
		outputs = append(outputs, DMXOutput{Universe: u, Channels: s.dmxService.GetUniverse(u)})
	}
	return outputs
}

// cancelProjectSessionsLocked retires every active session for projectID
// and returns them so the caller can publish their retirement once s.mu is
// released. Caller must hold s.mu.
func (s *Service) cancelProjectSessionsLocked(projectID string) []*Session {
	var retired []*Session
	for id, session := range s.sessions {
		if session.ProjectID != projectID || !session.IsActive {
			continue
		}
		s.clearTimeoutLocked(id)
		s.clearOverridesLocked(session)
		session.IsActive = false
		delete(s.sessions, id)
		retired = append(retired, session)
	}
	return retired
}

// clearOverridesLocked removes every override owned by session from the
// Output Engine. Caller must hold s.mu; OE calls are safe to make while
// holding it since OE guards its own state independently.
func (s *Service) clearOverridesLocked(session *Session) {
	for key := range session.Overrides {
		var universe, channel int
		_, _ = fmt.Sscanf(key, "%d:%d", &universe, &channel)
		s.dmxService.ClearChannelOverride(universe, channel)
	}
}

// armTimeoutLocked (re)starts sessionID's idle-cancel timer. Caller must
// hold s.mu.
func (s *Service) armTimeoutLocked(sessionID string) {
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(s.timeout, func() {
		s.Cancel(context.Background(), sessionID)
	})
}

func (s *Service) clearTimeoutLocked(sessionID string) {
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// publishUpdate emits PREVIEW_SESSION_UPDATED for session's current state.
func (s *Service) publishUpdate(session *Session) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.TopicPreviewSession, session.ProjectID, bus.PreviewSessionUpdated{
		SessionID: session.ID,
		ProjectID: session.ProjectID,
		IsActive:  session.IsActive,
		CreatedAt: session.CreatedAt.UnixNano(),
	})
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
