// Package playback implements the Playback Service: per-cue-list
// navigation, scene programming into the Fade Engine, and throttled
// status publication on the Change Bus.
package playback

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
	"github.com/lacylights/lumenserver/internal/services/fade"
)

// cueListCacheTTL is how long a loaded cue list is reused before the
// repository is consulted again.
const cueListCacheTTL = 5 * time.Minute

// statusThrottleInterval bounds how often CUE_LIST_PLAYBACK_UPDATED is
// published for a single cue list; the last state in a burst always
// fires once the window elapses.
const statusThrottleInterval = 100 * time.Millisecond

// Repository is the read-only subset of the repository façade the
// Playback Service depends on. Defined locally (rather than importing
// the database/repositories package) so this service never imports gorm.
type Repository interface {
	GetFixture(ctx context.Context, id string) (*models.FixtureInstance, error)
	GetScene(ctx context.Context, id string) (*models.Scene, error)
	GetCueList(ctx context.Context, id string) (*models.CueList, error)
}

// CacheInvalidator lets an external write-side caller (out of scope here)
// drop a cue list's cached entry after mutating it.
type CacheInvalidator interface {
	InvalidateCache(cueListID string)
}

// CueForPlayback represents the essential cue info for playback.
type CueForPlayback struct {
	ID          string
	Name        string
	SceneID     string
	CueNumber   float64
	FadeInTime  float64
	FadeOutTime float64
	FollowTime  *float64
}

// PlaybackState represents the current state of cue list playback.
type PlaybackState struct {
	CueListID       string
	CurrentCueIndex *int
	IsPlaying       bool // True when scene values are active on DMX (stays true after fade until stopped)
	IsFading        bool // True when a fade transition is in progress
	CurrentCue      *CueForPlayback
	NextCueID       *string
	PreviousCueID   *string
	FadeProgress    float64
	Warnings        []string
	StartTime       *time.Time
	LastUpdated     time.Time
}

// CueListPlaybackStatus is the externally consumed status snapshot.
type CueListPlaybackStatus struct {
	CueListID       string
	CurrentCueIndex *int
	IsPlaying       bool
	IsFading        bool
	CurrentCue      *CueForPlayback
	NextCueID       *string
	PreviousCueID   *string
	FadeProgress    float64
	Warnings        []string
	LastUpdated     string
}

// GlobalPlaybackStatus represents the global playback state across all cue lists.
type GlobalPlaybackStatus struct {
	IsPlaying       bool
	IsFading        bool
	CueListID       *string
	CueListName     *string
	CurrentCueIndex *int
	CueCount        *int
	CurrentCueName  *string
	FadeProgress    float64
	LastUpdated     string
}

type cachedCueList struct {
	cueList   *models.CueList
	expiresAt time.Time
}

// Service manages cue list playback.
type Service struct {
	mu sync.RWMutex

	repo       Repository
	dmxService *dmx.Service
	fadeEngine *fade.Engine
	bus        *bus.Bus

	// Playback states by cue list ID
	states map[string]*PlaybackState

	// Timers for fade progress tracking, follow times, and fade completion
	fadeProgressTickers map[string]*time.Ticker
	followTimers        map[string]*time.Timer
	fadeCompleteTimers  map[string]*time.Timer

	cacheMu sync.Mutex
	cache   map[string]*cachedCueList

	throttleMu sync.Mutex
	throttles  map[string]*updateThrottle
}

// NewService creates a new playback service.
func NewService(repo Repository, dmxService *dmx.Service, fadeEngine *fade.Engine, b *bus.Bus) *Service {
	return &Service{
		repo:                repo,
		dmxService:          dmxService,
		fadeEngine:          fadeEngine,
		bus:                 b,
		states:              make(map[string]*PlaybackState),
		fadeProgressTickers: make(map[string]*time.Ticker),
		followTimers:        make(map[string]*time.Timer),
		fadeCompleteTimers:  make(map[string]*time.Timer),
		cache:               make(map[string]*cachedCueList),
		throttles:           make(map[string]*updateThrottle),
	}
}

var _ CacheInvalidator = (*Service)(nil)

// InvalidateCache drops the cached cue list so the next navigation call
// re-reads it from the repository.
func (s *Service) InvalidateCache(cueListID string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.cache, cueListID)
}

// loadCueList returns the ordered cue list, served from cache within
// cueListCacheTTL of the last repository read.
func (s *Service) loadCueList(ctx context.Context, cueListID string) (*models.CueList, error) {
	s.cacheMu.Lock()
	if entry, ok := s.cache[cueListID]; ok && time.Now().Before(entry.expiresAt) {
		cueList := entry.cueList
		s.cacheMu.Unlock()
		return cueList, nil
	}
	s.cacheMu.Unlock()

	cueList, err := s.repo.GetCueList(ctx, cueListID)
	if err != nil {
		return nil, corexerr.Wrap(corexerr.KindTransientIO, "playback.loadCueList", err)
	}
	if cueList == nil {
		return nil, corexerr.New(corexerr.KindNotFound, "playback.loadCueList")
	}

	s.cacheMu.Lock()
	s.cache[cueListID] = &cachedCueList{cueList: cueList, expiresAt: time.Now().Add(cueListCacheTTL)}
	s.cacheMu.Unlock()

	return cueList, nil
}

// GetPlaybackState returns a copy of the current playback state for a cue list.
// Returns nil if no state exists for the given cue list ID.
func (s *Service) GetPlaybackState(cueListID string) *PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.states[cueListID]
	if state == nil {
		return nil
	}
	stateCopy := *state
	if state.CurrentCueIndex != nil {
		idx := *state.CurrentCueIndex
		stateCopy.CurrentCueIndex = &idx
	}
	if state.CurrentCue != nil {
		cueCopy := *state.CurrentCue
		stateCopy.CurrentCue = &cueCopy
	}
	if state.StartTime != nil {
		t := *state.StartTime
		stateCopy.StartTime = &t
	}
	return &stateCopy
}

// GetFormattedStatus returns the externally consumed status for a cue list.
func (s *Service) GetFormattedStatus(cueListID string) *CueListPlaybackStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.states[cueListID]
	if state == nil {
		return &CueListPlaybackStatus{
			CueListID:   cueListID,
			LastUpdated: time.Now().Format(time.RFC3339),
		}
	}

	return &CueListPlaybackStatus{
		CueListID:       state.CueListID,
		CurrentCueIndex: state.CurrentCueIndex,
		IsPlaying:       state.IsPlaying,
		IsFading:        state.IsFading,
		CurrentCue:      state.CurrentCue,
		NextCueID:       state.NextCueID,
		PreviousCueID:   state.PreviousCueID,
		FadeProgress:    state.FadeProgress,
		Warnings:        state.Warnings,
		LastUpdated:     state.LastUpdated.Format(time.RFC3339),
	}
}

// GetGlobalPlaybackStatus returns the global playback status across all cue lists.
func (s *Service) GetGlobalPlaybackStatus(ctx context.Context) *GlobalPlaybackStatus {
	s.mu.RLock()

	var playingState *PlaybackState
	for _, state := range s.states {
		if state.IsPlaying {
			playingState = state
			break
		}
	}

	if playingState == nil {
		s.mu.RUnlock()
		return &GlobalPlaybackStatus{LastUpdated: time.Now().Format(time.RFC3339)}
	}

	cueListID := playingState.CueListID
	isPlaying := playingState.IsPlaying
	isFading := playingState.IsFading
	fadeProgress := playingState.FadeProgress
	lastUpdated := playingState.LastUpdated.Format(time.RFC3339)

	var currentCueIndex *int
	if playingState.CurrentCueIndex != nil {
		idx := *playingState.CurrentCueIndex
		currentCueIndex = &idx
	}

	var currentCueName *string
	if playingState.CurrentCue != nil {
		name := playingState.CurrentCue.Name
		currentCueName = &name
	}

	s.mu.RUnlock()

	var cueListName *string
	var cueCount *int
	if cueList, err := s.loadCueList(ctx, cueListID); err == nil && cueList != nil {
		cueListName = &cueList.Name
		count := len(cueList.Cues)
		cueCount = &count
	}

	return &GlobalPlaybackStatus{
		IsPlaying:       isPlaying,
		IsFading:        isFading,
		CueListID:       &cueListID,
		CueListName:     cueListName,
		CurrentCueIndex: currentCueIndex,
		CueCount:        cueCount,
		CurrentCueName:  currentCueName,
		FadeProgress:    fadeProgress,
		LastUpdated:     lastUpdated,
	}
}

// buildSceneChannels turns a scene's sparse fixture values into fade
// targets. When zeroToBlack is true every target value is forced to 0
// (used by Stop's fade-out) while fade behavior is still honored.
// Fixtures that have since been deleted are skipped and reported as a
// warning rather than aborting the whole transition.
func (s *Service) buildSceneChannels(ctx context.Context, scene *models.Scene, zeroToBlack bool) ([]fade.SceneChannel, []string) {
	var sceneChannels []fade.SceneChannel
	var warnings []string

	for _, fv := range scene.FixtureValues {
		fixture, err := s.repo.GetFixture(ctx, fv.FixtureID)
		if err != nil || fixture == nil {
			warnings = append(warnings, fmt.Sprintf("fixture %s not found, skipped", fv.FixtureID))
			continue
		}

		var channels []models.ChannelValue
		if err := json.Unmarshal([]byte(fv.Channels), &channels); err != nil {
			warnings = append(warnings, fmt.Sprintf("fixture %s has malformed channel data, skipped", fv.FixtureID))
			continue
		}

		for _, ch := range channels {
			dmxChannel := fixture.StartChannel + ch.Offset
			if dmxChannel < 1 || dmxChannel > 512 {
				warnings = append(warnings, fmt.Sprintf("fixture %s channel offset %d out of bounds, skipped", fixture.ID, ch.Offset))
				continue
			}

			behavior := fade.BehaviorFade
			isIntensity := false
			for _, def := range fixture.Channels {
				if def.Offset == ch.Offset {
					if def.FadeBehavior != "" {
						behavior = fade.Behavior(def.FadeBehavior)
					}
					isIntensity = def.Type == models.ChannelTypeIntensity
					break
				}
			}
			s.dmxService.MarkIntensityChannel(fixture.Universe, dmxChannel, isIntensity)

			value := ch.Value
			if zeroToBlack {
				value = 0
			}

			sceneChannels = append(sceneChannels, fade.SceneChannel{
				Universe: fixture.Universe,
				Channel:  dmxChannel,
				Value:    value,
				Behavior: behavior,
			})
		}
	}

	return sceneChannels, warnings
}

// executeCueDmx programs a cue's scene into the fade engine and returns
// any per-fixture warnings accumulated along the way.
func (s *Service) executeCueDmx(ctx context.Context, cue *models.Cue, duration time.Duration) ([]string, error) {
	if cue.Scene == nil {
		return nil, corexerr.New(corexerr.KindNotFound, "playback.executeCueDmx: cue has no scene")
	}

	sceneChannels, warnings := s.buildSceneChannels(ctx, cue.Scene, false)

	easingType := fade.EasingInOutSine
	if cue.EasingType != nil && *cue.EasingType != "" {
		easingType = fade.EasingType(*cue.EasingType)
	}

	fadeID := fmt.Sprintf("cue-%s", cue.ID)
	s.fadeEngine.FadeToScene(sceneChannels, duration, fadeID, easingType)
	s.dmxService.SetActiveScene(cue.SceneID)

	return warnings, nil
}

// neighborCueIDs returns the id of the cue before and after index in an
// ordered cue list, honoring loop wraparound.
func neighborCueIDs(cueList *models.CueList, index int) (prev, next *string) {
	n := len(cueList.Cues)
	if n == 0 {
		return nil, nil
	}
	if index > 0 {
		id := cueList.Cues[index-1].ID
		prev = &id
	} else if cueList.Loop && n > 1 {
		id := cueList.Cues[n-1].ID
		prev = &id
	}
	if index < n-1 {
		id := cueList.Cues[index+1].ID
		next = &id
	} else if cueList.Loop && n > 1 {
		id := cueList.Cues[0].ID
		next = &id
	}
	return prev, next
}

// StartCue records a cue as active and starts its fade-progress tracking,
// follow timer, and fade-completion timer.
func (s *Service) StartCue(cueListID string, cueIndex int, cue *CueForPlayback, nextID, prevID *string, warnings []string) {
	s.stopCueListTimers(cueListID)

	s.mu.Lock()
	now := time.Now()
	state := &PlaybackState{
		CueListID:       cueListID,
		CurrentCueIndex: &cueIndex,
		IsPlaying:       true,
		IsFading:        true,
		CurrentCue:      cue,
		NextCueID:       nextID,
		PreviousCueID:   prevID,
		FadeProgress:    0,
		Warnings:        warnings,
		StartTime:       &now,
		LastUpdated:     now,
	}
	s.states[cueListID] = state
	s.mu.Unlock()

	s.startFadeProgress(cueListID, cue.FadeInTime)
	s.emitUpdate(cueListID)

	if cue.FollowTime != nil && *cue.FollowTime > 0 {
		totalWaitTime := time.Duration((cue.FadeInTime + *cue.FollowTime) * float64(time.Second))
		s.mu.Lock()
		s.followTimers[cueListID] = time.AfterFunc(totalWaitTime, func() {
			s.handleFollowTime(cueListID, cueIndex)
		})
		s.mu.Unlock()
	}

	fadeTime := time.Duration(cue.FadeInTime * float64(time.Second))
	s.mu.Lock()
	if existing := s.fadeCompleteTimers[cueListID]; existing != nil {
		existing.Stop()
	}
	s.fadeCompleteTimers[cueListID] = time.AfterFunc(fadeTime, func() {
		s.mu.Lock()
		current := s.states[cueListID]
		if current != nil && current.CurrentCueIndex != nil && *current.CurrentCueIndex == cueIndex {
			current.IsFading = false
			current.LastUpdated = time.Now()
		}
		delete(s.fadeCompleteTimers, cueListID)
		s.mu.Unlock()
		s.emitUpdate(cueListID)
	})
	s.mu.Unlock()
}

// handleFollowTime advances to the next cue automatically when a cue's
// follow_time elapses.
func (s *Service) handleFollowTime(cueListID string, currentCueIndex int) {
	ctx := context.Background()

	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		s.markStopped(cueListID)
		return
	}

	nextCueIndex := currentCueIndex + 1
	if nextCueIndex >= len(cueList.Cues) {
		if cueList.Loop && len(cueList.Cues) > 0 {
			nextCueIndex = 0
		} else {
			s.markStopped(cueListID)
			return
		}
	}

	nextCue := cueList.Cues[nextCueIndex]
	warnings, err := s.executeCueDmx(ctx, &nextCue, time.Duration(nextCue.FadeInTime*float64(time.Second)))
	if err != nil {
		s.StopCueList(ctx, cueListID)
		return
	}

	prev, next := neighborCueIDs(cueList, nextCueIndex)
	s.StartCue(cueListID, nextCueIndex, cueFromModel(&nextCue, nextCue.FadeInTime), next, prev, warnings)
}

func (s *Service) markStopped(cueListID string) {
	s.mu.Lock()
	if state := s.states[cueListID]; state != nil {
		state.IsPlaying = false
		state.LastUpdated = time.Now()
	}
	s.mu.Unlock()
	s.emitUpdate(cueListID)
}

func (s *Service) stopCueListTimers(cueListID string) {
	s.mu.Lock()
	if ticker := s.fadeProgressTickers[cueListID]; ticker != nil {
		ticker.Stop()
		delete(s.fadeProgressTickers, cueListID)
	}
	if timer := s.followTimers[cueListID]; timer != nil {
		timer.Stop()
		delete(s.followTimers, cueListID)
	}
	if timer := s.fadeCompleteTimers[cueListID]; timer != nil {
		timer.Stop()
		delete(s.fadeCompleteTimers, cueListID)
	}
	s.mu.Unlock()
}

// StopCueList sets is_playing=false for a cue list. If the cue that was
// active carries a FadeOutTime, its scene is faded to black over that
// duration rather than leaving DMX output frozen.
func (s *Service) StopCueList(ctx context.Context, cueListID string) {
	s.stopCueListTimers(cueListID)

	s.mu.Lock()
	state := s.states[cueListID]
	var fadeOutDuration time.Duration
	var sceneID string
	if state != nil && state.CurrentCue != nil {
		fadeOutDuration = time.Duration(state.CurrentCue.FadeOutTime * float64(time.Second))
		sceneID = state.CurrentCue.SceneID
	}
	if state != nil {
		state.IsPlaying = false
		state.IsFading = fadeOutDuration > 0
		state.FadeProgress = 0
		state.LastUpdated = time.Now()
	}
	s.mu.Unlock()

	if sceneID != "" && fadeOutDuration > 0 {
		if scene, err := s.repo.GetScene(ctx, sceneID); err == nil && scene != nil {
			channels, _ := s.buildSceneChannels(ctx, scene, true)
			if len(channels) > 0 {
				s.fadeEngine.FadeToScene(channels, fadeOutDuration, fmt.Sprintf("stop-%s", cueListID), fade.EasingInOutSine)
			}
		}
	}

	s.emitUpdate(cueListID)
}

// StopAllCueLists stops all cue list playback.
func (s *Service) StopAllCueLists(ctx context.Context) {
	s.mu.RLock()
	cueListIDs := make([]string, 0, len(s.states))
	for id := range s.states {
		cueListIDs = append(cueListIDs, id)
	}
	s.mu.RUnlock()

	for _, id := range cueListIDs {
		s.StopCueList(ctx, id)
	}
}

// FadeToBlack fades every channel the Output Engine has marked as an
// intensity channel (see dmx.Service.MarkIntensityChannel) to zero over
// duration, leaving playback state untouched.
func (s *Service) FadeToBlack(duration time.Duration) {
	s.fadeEngine.FadeToBlack(duration, fade.EasingInOutSine)
}

// cueFromModel copies a models.Cue into the playback-facing projection,
// substituting fadeInTime for an override applied at navigation time.
func cueFromModel(cue *models.Cue, fadeInTime float64) *CueForPlayback {
	return &CueForPlayback{
		ID:          cue.ID,
		Name:        cue.Name,
		SceneID:     cue.SceneID,
		CueNumber:   cue.CueNumber,
		FadeInTime:  fadeInTime,
		FadeOutTime: cue.FadeOutTime,
		FollowTime:  cue.FollowTime,
	}
}

func (s *Service) navigateTo(ctx context.Context, cueListID string, index int, fadeInOverride *float64) error {
	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(cueList.Cues) {
		return corexerr.New(corexerr.KindValidation, "playback.navigateTo: invalid cue index")
	}

	cue := cueList.Cues[index]
	fadeInTime := cue.FadeInTime
	if fadeInOverride != nil {
		fadeInTime = *fadeInOverride
	}

	warnings, err := s.executeCueDmx(ctx, &cue, time.Duration(fadeInTime*float64(time.Second)))
	if err != nil {
		return err
	}

	prev, next := neighborCueIDs(cueList, index)
	s.StartCue(cueListID, index, cueFromModel(&cue, fadeInTime), next, prev, warnings)
	return nil
}

// JumpToCue jumps to a specific cue index in a cue list.
func (s *Service) JumpToCue(ctx context.Context, cueListID string, cueIndex int, fadeInOverride *float64) error {
	return s.navigateTo(ctx, cueListID, cueIndex, fadeInOverride)
}

// NextCue advances to the next cue, honoring loop; fails with
// KindAtBoundary when already at the last cue of a non-looping list.
func (s *Service) NextCue(ctx context.Context, cueListID string, fadeInOverride *float64) error {
	s.mu.RLock()
	state := s.states[cueListID]
	s.mu.RUnlock()

	currentIndex := -1
	if state != nil && state.CurrentCueIndex != nil {
		currentIndex = *state.CurrentCueIndex
	}

	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}

	nextIndex := currentIndex + 1
	if nextIndex >= len(cueList.Cues) {
		if cueList.Loop && len(cueList.Cues) > 0 {
			nextIndex = 0
		} else {
			return corexerr.New(corexerr.KindAtBoundary, "playback.NextCue")
		}
	}

	return s.navigateTo(ctx, cueListID, nextIndex, fadeInOverride)
}

// PreviousCue steps back to the previous cue, honoring loop; fails with
// KindAtBoundary when already at the first cue of a non-looping list.
func (s *Service) PreviousCue(ctx context.Context, cueListID string, fadeInOverride *float64) error {
	s.mu.RLock()
	state := s.states[cueListID]
	s.mu.RUnlock()

	currentIndex := 0
	if state != nil && state.CurrentCueIndex != nil {
		currentIndex = *state.CurrentCueIndex
	}

	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}

	prevIndex := currentIndex - 1
	if prevIndex < 0 {
		if cueList.Loop && len(cueList.Cues) > 0 {
			prevIndex = len(cueList.Cues) - 1
		} else {
			return corexerr.New(corexerr.KindAtBoundary, "playback.PreviousCue")
		}
	}

	return s.navigateTo(ctx, cueListID, prevIndex, fadeInOverride)
}

// GoToCueNumber jumps to a cue by its cue number.
func (s *Service) GoToCueNumber(ctx context.Context, cueListID string, cueNumber float64, fadeInOverride *float64) error {
	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}
	for i, cue := range cueList.Cues {
		if cue.CueNumber == cueNumber {
			return s.navigateTo(ctx, cueListID, i, fadeInOverride)
		}
	}
	return corexerr.New(corexerr.KindNotFound, "playback.GoToCueNumber")
}

// GoToCueName jumps to a cue by its name.
func (s *Service) GoToCueName(ctx context.Context, cueListID string, cueName string, fadeInOverride *float64) error {
	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}
	for i, cue := range cueList.Cues {
		if cue.Name == cueName {
			return s.navigateTo(ctx, cueListID, i, fadeInOverride)
		}
	}
	return corexerr.New(corexerr.KindNotFound, "playback.GoToCueName")
}

// StartCueList starts playing a cue list from the beginning or a specific cue number.
func (s *Service) StartCueList(ctx context.Context, cueListID string, startFromCueNumber *float64, fadeInOverride *float64) error {
	cueList, err := s.loadCueList(ctx, cueListID)
	if err != nil {
		return err
	}
	if len(cueList.Cues) == 0 {
		return corexerr.New(corexerr.KindEmptyCueList, "playback.StartCueList")
	}

	startIndex := 0
	if startFromCueNumber != nil {
		for i, cue := range cueList.Cues {
			if cue.CueNumber == *startFromCueNumber {
				startIndex = i
				break
			}
		}
	}

	return s.navigateTo(ctx, cueListID, startIndex, fadeInOverride)
}

// startFadeProgress starts tracking fade progress for a newly started cue.
func (s *Service) startFadeProgress(cueListID string, fadeTime float64) {
	s.mu.Lock()
	state := s.states[cueListID]
	if state == nil {
		s.mu.Unlock()
		return
	}
	startTime := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	s.fadeProgressTickers[cueListID] = ticker
	s.mu.Unlock()

	go func() {
		for range ticker.C {
			s.mu.Lock()
			current := s.states[cueListID]
			if current == nil {
				s.mu.Unlock()
				return
			}

			elapsed := time.Since(startTime)
			progress := float64(elapsed) / (fadeTime * float64(time.Second)) * 100
			if progress > 100 || fadeTime <= 0 {
				progress = 100
			}
			current.FadeProgress = progress
			current.LastUpdated = time.Now()
			s.mu.Unlock()

			s.emitUpdate(cueListID)

			if progress >= 100 {
				s.mu.Lock()
				if t := s.fadeProgressTickers[cueListID]; t != nil {
					t.Stop()
					delete(s.fadeProgressTickers, cueListID)
				}
				s.mu.Unlock()
				return
			}
		}
	}()
}

// emitUpdate publishes the cue list's current status on the Change Bus,
// throttled to at most one publication per statusThrottleInterval with
// the final state of a burst always delivered.
func (s *Service) emitUpdate(cueListID string) {
	s.throttleMu.Lock()
	throttle := s.throttles[cueListID]
	if throttle == nil {
		throttle = &updateThrottle{}
		s.throttles[cueListID] = throttle
	}
	s.throttleMu.Unlock()

	throttle.trigger(statusThrottleInterval, func() {
		status := s.GetFormattedStatus(cueListID)
		if s.bus == nil {
			return
		}
		s.bus.Publish(bus.TopicCueListPlayback, cueListID, bus.CueListPlaybackUpdated{
			CueListID:     status.CueListID,
			CurrentIndex:  status.CurrentCueIndex,
			IsPlaying:     status.IsPlaying,
			FadeProgress:  status.FadeProgress,
			CurrentCueID:  cueID(status.CurrentCue),
			NextCueID:     status.NextCueID,
			PreviousCueID: status.PreviousCueID,
			LastUpdated:   time.Now().UnixNano(),
			Warnings:      status.Warnings,
		})
	})
}

func cueID(cue *CueForPlayback) *string {
	if cue == nil {
		return nil
	}
	id := cue.ID
	return &id
}

// Cleanup stops all timers and resets all playback state.
func (s *Service) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ticker := range s.fadeProgressTickers {
		ticker.Stop()
	}
	for _, timer := range s.followTimers {
		timer.Stop()
	}
	for _, timer := range s.fadeCompleteTimers {
		timer.Stop()
	}

	s.fadeProgressTickers = make(map[string]*time.Ticker)
	s.followTimers = make(map[string]*time.Timer)
	s.fadeCompleteTimers = make(map[string]*time.Timer)
	s.states = make(map[string]*PlaybackState)
}
