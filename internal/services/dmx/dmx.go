// Package dmx implements the Output Engine: it owns the authoritative
// per-universe DMX512 channel state, layers channel overrides on top of
// it, and transmits the result over Art-Net at an adaptive rate.
package dmx

import (
	"log"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/lacylights/lumenserver/internal/services/bus"
	"github.com/lacylights/lumenserver/pkg/artnet"
)

const (
	// UniverseSize is the number of channels per DMX universe.
	UniverseSize = 512
	// MaxUniverses is the maximum number of supported universes.
	MaxUniverses = 4
)

// Service manages DMX channel values and Art-Net output.
type Service struct {
	mu sync.RWMutex

	// Channel values for each universe (1-indexed in the map, 0-indexed channels)
	universes map[int][]byte

	// Channel overrides (key: "universe:channel", 1-indexed)
	channelOverrides map[string]byte

	// Channels marked as carrying fixture intensity (vs. color/position/
	// gobo), keyed "universe:channel" (1-indexed). The Output Engine has no
	// fixture model of its own; callers with repository access (Playback
	// Service) populate this as they resolve scene channels, and FadeToBlack
	// consults it so only dimmer channels are zeroed.
	intensityChannels map[string]bool

	// Last payload actually transmitted to the bus per universe, used to
	// decide whether a high-rate transmission represents a real change
	// worth publishing (idle keep-alive re-sends are never published).
	lastPublished map[int][UniverseSize]byte

	// Active scene tracking
	activeSceneID *string

	// Configuration
	enabled          bool
	broadcastAddr    string
	port             int
	refreshRateHz    int
	idleRateHz       int
	highRateDuration time.Duration
	driftThreshold   time.Duration

	// Adaptive transmission rate state
	currentRate      int
	isInHighRateMode bool
	lastChangeTime   time.Time

	// Dirty flag system for efficient transmission
	isDirty        bool
	dirtyUniverses map[int]bool

	// Timing tracking
	lastTransmissionTime time.Time
	lastTickTime         time.Time

	// Art-Net sequence number per universe (increments per packet, wraps at 255)
	sequence map[int]byte

	// UDP socket
	conn *net.UDPConn
	addr *net.UDPAddr

	// Change Bus publication target; nil disables publishing (tests, or a
	// caller that doesn't care about state streaming).
	bus *bus.Bus

	driftWarn throttledLogger

	// Control
	stopChan        chan struct{}
	resetTickerChan chan struct{} // Signal to reset ticker immediately when rate changes
	running         bool
}

// Config holds DMX service configuration.
type Config struct {
	Enabled          bool
	BroadcastAddr    string
	Port             int
	RefreshRateHz    int
	IdleRateHz       int
	HighRateDuration time.Duration
	DriftThreshold   time.Duration
	UniverseCount    int
	Bus              *bus.Bus
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		BroadcastAddr:    "255.255.255.255",
		Port:             artnet.DefaultPort,
		RefreshRateHz:    60, // High-rate default (60Hz)
		IdleRateHz:       1,
		HighRateDuration: 2 * time.Second,
		DriftThreshold:   50 * time.Millisecond,
		UniverseCount:    4,
	}
}

// ConfigFromEnv loads configuration from environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("ARTNET_ENABLED"); enabled == "false" {
		cfg.Enabled = false
	}

	if addr := os.Getenv("ARTNET_BROADCAST"); addr != "" {
		cfg.BroadcastAddr = addr
	}

	if port := os.Getenv("ARTNET_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Port = p
		}
	}

	if rate := os.Getenv("DMX_REFRESH_RATE"); rate != "" {
		if r, err := strconv.Atoi(rate); err == nil && r > 0 {
			cfg.RefreshRateHz = r
		}
	}

	if rate := os.Getenv("DMX_IDLE_RATE"); rate != "" {
		if r, err := strconv.Atoi(rate); err == nil && r > 0 {
			cfg.IdleRateHz = r
		}
	}

	if dur := os.Getenv("DMX_HIGH_RATE_DURATION"); dur != "" {
		if d, err := strconv.Atoi(dur); err == nil && d > 0 {
			cfg.HighRateDuration = time.Duration(d) * time.Millisecond
		}
	}

	if dur := os.Getenv("DMX_DRIFT_THRESHOLD"); dur != "" {
		if d, err := strconv.Atoi(dur); err == nil && d > 0 {
			cfg.DriftThreshold = time.Duration(d) * time.Millisecond
		}
	}

	if count := os.Getenv("DMX_UNIVERSE_COUNT"); count != "" {
		if c, err := strconv.Atoi(count); err == nil && c > 0 && c <= MaxUniverses {
			cfg.UniverseCount = c
		}
	}

	return cfg
}

// NewService creates a new DMX service.
func NewService(cfg Config) *Service {
	// Apply defaults for zero values
	refreshRate := cfg.RefreshRateHz
	if refreshRate <= 0 {
		refreshRate = 60 // Default high-rate refresh rate
	}
	idleRate := cfg.IdleRateHz
	if idleRate <= 0 {
		idleRate = 1 // Default idle rate
	}
	highRateDuration := cfg.HighRateDuration
	if highRateDuration <= 0 {
		highRateDuration = 2 * time.Second
	}
	port := cfg.Port
	if port <= 0 {
		port = artnet.DefaultPort
	}
	driftThreshold := cfg.DriftThreshold
	if driftThreshold <= 0 {
		driftThreshold = 50 * time.Millisecond
	}
	universeCount := cfg.UniverseCount
	if universeCount <= 0 || universeCount > MaxUniverses {
		universeCount = 4
	}

	s := &Service{
		universes:         make(map[int][]byte),
		channelOverrides:  make(map[string]byte),
		intensityChannels: make(map[string]bool),
		dirtyUniverses:    make(map[int]bool),
		lastPublished:     make(map[int][UniverseSize]byte),
		sequence:          make(map[int]byte),
		enabled:           cfg.Enabled,
		broadcastAddr:     cfg.BroadcastAddr,
		port:              port,
		refreshRateHz:     refreshRate,
		idleRateHz:        idleRate,
		highRateDuration:  highRateDuration,
		driftThreshold:    driftThreshold,
		currentRate:       idleRate, // Start at idle rate until first change
		isInHighRateMode:  false,
		bus:               cfg.Bus,
		driftWarn:         newThrottledLogger(5 * time.Second),
		stopChan:          make(chan struct{}),
		resetTickerChan:   make(chan struct{}, 1), // Buffered to avoid blocking
	}

	for i := 1; i <= universeCount; i++ {
		s.universes[i] = make([]byte, UniverseSize)
	}

	return s
}

// Initialize starts the DMX service and Art-Net transmission.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.enabled {
		// Create UDP socket for Art-Net broadcast
		addr, err := net.ResolveUDPAddr("udp4", s.broadcastAddr+":"+strconv.Itoa(s.port))
		if err != nil {
			return err
		}
		s.addr = addr

		conn, err := net.DialUDP("udp4", nil, addr)
		if err != nil {
			return err
		}
		s.conn = conn

		log.Printf("🎭 DMX Service initialized with %d universes", len(s.universes))
		log.Printf("📡 Adaptive transmission: %dHz (active) / %dHz (idle), %v high-rate duration",
			s.refreshRateHz, s.idleRateHz, s.highRateDuration)
		log.Printf("📡 Art-Net output enabled, broadcasting to %s:%d", s.broadcastAddr, s.port)
	} else {
		log.Printf("🎭 DMX Service initialized with %d universes (simulation mode)", len(s.universes))
	}

	// Start the transmission loop
	s.running = true
	go s.transmitLoop()

	return nil
}

// transmitLoop runs the adaptive rate transmission loop.
func (s *Service) transmitLoop() {
	// Use Ticker instead of Timer to maintain consistent timing without drift
	s.mu.RLock()
	interval := time.Second / time.Duration(s.currentRate)
	s.mu.RUnlock()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastRate := 0

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.resetTickerChan:
			// Immediately reset ticker when rate changes (e.g., from ForceImmediateTransmission)
			s.mu.RLock()
			currentRate := s.currentRate
			s.mu.RUnlock()

			if currentRate != lastRate {
				oldTicker := ticker
				newInterval := time.Second / time.Duration(currentRate)
				ticker = time.NewTicker(newInterval)
				oldTicker.Stop()
				lastRate = currentRate
				log.Printf("📡 DMX transmitLoop: ticker reset to %dHz immediately", currentRate)
			}
		case tick := <-ticker.C:
			s.checkDrift(tick)
			s.processTransmission()

			// Check if rate changed and recreate ticker if needed
			s.mu.RLock()
			currentRate := s.currentRate
			s.mu.RUnlock()

			if currentRate != lastRate {
				// Rate changed, recreate ticker with new interval
				// Stop old ticker before creating new one to avoid leaks
				oldTicker := ticker
				newInterval := time.Second / time.Duration(currentRate)
				ticker = time.NewTicker(newInterval)
				oldTicker.Stop()
				lastRate = currentRate
			}
		}
	}
}

// checkDrift warns (throttled) when a tick fires noticeably later than
// scheduled, which usually means the host is overloaded and frames are
// being delivered late to Art-Net receivers.
func (s *Service) checkDrift(tick time.Time) {
	s.mu.Lock()
	last := s.lastTickTime
	interval := time.Second / time.Duration(s.currentRate)
	s.lastTickTime = tick
	s.mu.Unlock()

	if last.IsZero() {
		return
	}
	actual := tick.Sub(last)
	drift := actual - interval
	if drift > s.driftThreshold {
		s.driftWarn.Warnf("📡 DMX transmit tick drifted %v past scheduled interval %v", drift, interval)
	}
}

// processTransmission handles a single transmission cycle.
func (s *Service) processTransmission() {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentTime := time.Now()
	hasChanges := s.isDirty

	// Update transmission rate based on changes
	if hasChanges {
		s.lastChangeTime = currentTime
		if !s.isInHighRateMode {
			s.isInHighRateMode = true
			s.currentRate = s.refreshRateHz
			log.Printf("📡 DMX transmission: switching to high rate (%dHz) - changes detected", s.refreshRateHz)
		}
	} else {
		// Check if we should switch to idle rate
		timeSinceLastChange := currentTime.Sub(s.lastChangeTime)
		if s.isInHighRateMode && !s.lastChangeTime.IsZero() && timeSinceLastChange > s.highRateDuration {
			s.isInHighRateMode = false
			s.currentRate = s.idleRateHz
			log.Printf("📡 DMX transmission: switching to idle rate (%dHz) - no changes for %v", s.idleRateHz, timeSinceLastChange)
		}
	}

	// The loop always runs to update dirty flags and fire change events,
	// even when Art-Net is disabled; only the actual UDP write is gated on
	// s.enabled (spec.md §4.1 failure semantics: disabling transmission
	// "suppresses sends" only, the rest of the bookkeeping continues).
	s.outputDMX()
}

// outputDMX advances dirty-flag bookkeeping, per-universe sequence numbers,
// and DMX_OUTPUT_CHANGED publication for dirty or all universes, and sends
// an Art-Net packet per universe when transmission is enabled.
func (s *Service) outputDMX() {
	var universesToTransmit []int

	if s.isDirty && len(s.dirtyUniverses) > 0 {
		// Only transmit changed universes
		for u := range s.dirtyUniverses {
			universesToTransmit = append(universesToTransmit, u)
		}
	} else {
		// In idle mode, transmit all universes for keep-alive
		for u := range s.universes {
			universesToTransmit = append(universesToTransmit, u)
		}
	}

	canSend := s.enabled && s.conn != nil

	for _, universe := range universesToTransmit {
		channels := s.getUniverseOutputChannels(universe)

		// Increment this universe's own sequence number (wraps at 255)
		s.sequence[universe]++

		if canSend {
			packet := artnet.BuildDMXPacket(universe, channels, s.sequence[universe])
			if _, err := s.conn.Write(packet); err != nil {
				log.Printf("Art-Net send error for universe %d: %v", universe, err)
			}
		}

		// Only the high-rate path represents an operator-visible change;
		// idle keep-alive re-sends of unchanged content never publish.
		if s.isInHighRateMode {
			s.publishIfChanged(universe, channels)
		}
	}

	// Clear dirty flags after transmission
	s.isDirty = false
	s.dirtyUniverses = make(map[int]bool)
	s.lastTransmissionTime = time.Now()
}

// publishIfChanged compares channels against the last payload published for
// universe and, if different, publishes a DMXOutputChanged event and
// records the new snapshot. Caller must hold s.mu.
func (s *Service) publishIfChanged(universe int, channels []byte) {
	if s.bus == nil {
		return
	}

	var snapshot [UniverseSize]byte
	copy(snapshot[:], channels)

	if prev, ok := s.lastPublished[universe]; ok && prev == snapshot {
		return
	}
	s.lastPublished[universe] = snapshot

	s.bus.Publish(busTopic, strconv.Itoa(universe), busEvent(universe, snapshot))
}

// getUniverseOutputChannels returns the channel values with overrides applied.
func (s *Service) getUniverseOutputChannels(universe int) []byte {
	baseChannels := s.universes[universe]
	if baseChannels == nil {
		return make([]byte, UniverseSize)
	}

	outputChannels := make([]byte, UniverseSize)
	copy(outputChannels, baseChannels)

	// Apply overrides
	for i := 0; i < UniverseSize; i++ {
		key := strconv.Itoa(universe) + ":" + strconv.Itoa(i+1)
		if val, ok := s.channelOverrides[key]; ok {
			outputChannels[i] = val
		}
	}

	return outputChannels
}

// markDirty marks a universe as having changes.
func (s *Service) markDirty(universe int) {
	s.isDirty = true
	s.dirtyUniverses[universe] = true
}

// SetChannelValue sets a channel value.
func (s *Service) SetChannelValue(universe, channel int, value byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	universeData := s.universes[universe]
	if universeData == nil || channel < 1 || channel > UniverseSize {
		return
	}

	currentValue := universeData[channel-1]
	if currentValue != value {
		universeData[channel-1] = value
		s.markDirty(universe)
		s.triggerHighRate()
	}
}

// SetChannelOverride sets a channel override value.
func (s *Service) SetChannelOverride(universe, channel int, value byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channel < 1 || channel > UniverseSize {
		return
	}

	key := strconv.Itoa(universe) + ":" + strconv.Itoa(channel)
	currentValue, exists := s.channelOverrides[key]

	if !exists || currentValue != value {
		s.channelOverrides[key] = value
		s.markDirty(universe)
		s.triggerHighRate()
	}
}

// ClearChannelOverride removes a channel override.
func (s *Service) ClearChannelOverride(universe, channel int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.Itoa(universe) + ":" + strconv.Itoa(channel)
	if _, exists := s.channelOverrides[key]; exists {
		delete(s.channelOverrides, key)
		s.markDirty(universe)
		s.triggerHighRate()
	}
}

// ClearAllOverrides removes all channel overrides.
func (s *Service) ClearAllOverrides() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.channelOverrides) > 0 {
		// Mark affected universes as dirty
		affectedUniverses := make(map[int]bool)
		for key := range s.channelOverrides {
			// Parse universe from key "universe:channel"
			for i, c := range key {
				if c == ':' {
					if u, err := strconv.Atoi(key[:i]); err == nil {
						affectedUniverses[u] = true
					}
					break
				}
			}
		}

		s.channelOverrides = make(map[string]byte)

		for u := range affectedUniverses {
			s.markDirty(u)
		}
		s.triggerHighRate()
	}
}

// MarkIntensityChannel records whether (universe, channel) carries fixture
// intensity (as opposed to color/position/gobo), so FadeToBlack knows which
// channels to zero. Callers with fixture metadata (Playback Service) call
// this as they resolve scene channels; unmarked channels are treated as
// non-intensity and left untouched by FadeToBlack.
func (s *Service) MarkIntensityChannel(universe, channel int, isIntensity bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strconv.Itoa(universe) + ":" + strconv.Itoa(channel)
	if isIntensity {
		s.intensityChannels[key] = true
	} else {
		delete(s.intensityChannels, key)
	}
}

// IsIntensityChannel reports whether (universe, channel) was last marked as
// an intensity channel via MarkIntensityChannel.
func (s *Service) IsIntensityChannel(universe, channel int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strconv.Itoa(universe) + ":" + strconv.Itoa(channel)
	return s.intensityChannels[key]
}

// triggerHighRate immediately switches to high rate mode.
func (s *Service) triggerHighRate() {
	s.lastChangeTime = time.Now()
	if !s.isInHighRateMode {
		s.isInHighRateMode = true
		s.currentRate = s.refreshRateHz
		log.Printf("📡 DMX transmission: switching to high rate (%dHz) - active fade/transition", s.refreshRateHz)
	}
}

// TriggerChangeDetection manually triggers high-rate mode (useful for fades).
// This switches to high-rate transmission mode but lets the transmitLoop
// handle actual packet sending to avoid race conditions and duplicate transmissions.
func (s *Service) TriggerChangeDetection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerHighRate()

	// Note: We do NOT immediately transmit here to avoid race conditions
	// with the transmitLoop. The transmitLoop will pick up changes on its
	// next scheduled transmission at the high refresh rate.
}

// ForceImmediateTransmission forces an immediate Art-Net transmission.
// This is used when we need to ensure the first frame of a fade is sent
// immediately without waiting for the next transmitLoop tick.
func (s *Service) ForceImmediateTransmission() {
	s.mu.Lock()

	wasInIdleMode := !s.isInHighRateMode
	s.triggerHighRate()

	// Mark everything as dirty to ensure transmission
	s.isDirty = true
	for universe := range s.universes {
		s.dirtyUniverses[universe] = true
	}

	// Immediately update bookkeeping and send Art-Net packets (outputDMX
	// itself gates the UDP write on s.enabled/s.conn).
	s.outputDMX()

	s.mu.Unlock()

	// If we were in idle mode, signal the transmitLoop to reset ticker immediately
	// This ensures the next frame is sent at 60Hz, not 1Hz
	if wasInIdleMode {
		select {
		case s.resetTickerChan <- struct{}{}:
			// Signal sent successfully
		default:
			// Channel already has a pending signal, no need to send another
		}
	}
}

// GetChannelValue returns the current value of a channel.
func (s *Service) GetChannelValue(universe, channel int) byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	universeData := s.universes[universe]
	if universeData == nil || channel < 1 || channel > UniverseSize {
		return 0
	}

	return universeData[channel-1]
}

// GetUniverse returns all channel values for a universe (as ints for API compatibility).
func (s *Service) GetUniverse(universe int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := s.getUniverseOutputChannels(universe)
	result := make([]int, UniverseSize)
	for i, v := range channels {
		result[i] = int(v)
	}
	return result
}

// GetAllUniverses returns all universes with channel values (1-indexed).
func (s *Service) GetAllUniverses() map[int][]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int][]int)
	for universe := range s.universes {
		channels := s.getUniverseOutputChannels(universe)
		intChannels := make([]int, UniverseSize)
		for i, v := range channels {
			intChannels[i] = int(v)
		}
		result[universe] = intChannels
	}
	return result
}

// SetAllChannels sets all channels in a universe.
func (s *Service) SetAllChannels(universe int, values []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	universeData := s.universes[universe]
	if universeData == nil {
		return
	}

	changed := false
	for i := 0; i < UniverseSize && i < len(values); i++ {
		if universeData[i] != values[i] {
			universeData[i] = values[i]
			changed = true
		}
	}

	if changed {
		s.markDirty(universe)
		s.triggerHighRate()
	}
}

// FadeToBlack sets all channels to 0 (immediate, no fade).
func (s *Service) FadeToBlack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for universe, channels := range s.universes {
		changed := false
		for i := range channels {
			if channels[i] != 0 {
				channels[i] = 0
				changed = true
			}
		}
		if changed {
			s.markDirty(universe)
		}
	}

	// Clear active scene
	s.activeSceneID = nil

	// Clear all overrides
	s.channelOverrides = make(map[string]byte)

	s.triggerHighRate()
}

// SetActiveScene sets the currently active scene ID.
func (s *Service) SetActiveScene(sceneID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSceneID = &sceneID
}

// GetActiveSceneID returns the currently active scene ID.
func (s *Service) GetActiveSceneID() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSceneID
}

// ClearActiveScene clears the active scene.
func (s *Service) ClearActiveScene() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSceneID = nil
}

// IsEnabled returns whether DMX output is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// GetBroadcastAddress returns the Art-Net broadcast address.
func (s *Service) GetBroadcastAddress() string {
	return s.broadcastAddr
}

// IsActive returns whether DMX output is currently active.
func (s *Service) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isInHighRateMode
}

// GetCurrentRate returns the current transmission rate in Hz.
func (s *Service) GetCurrentRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRate
}

// CountActiveChannels returns the number of non-zero channels.
func (s *Service) CountActiveChannels() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for universe := range s.universes {
		channels := s.getUniverseOutputChannels(universe)
		for _, v := range channels {
			if v > 0 {
				count++
			}
		}
	}
	return count
}

// Stop stops the DMX service, blacks out every universe, and closes the
// socket.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	// Signal the transmission loop to stop
	close(s.stopChan)
	s.running = false

	// Send final blackout packet
	if s.enabled && s.conn != nil {
		for universe := range s.universes {
			s.universes[universe] = make([]byte, UniverseSize) // All zeros
			s.sequence[universe]++
			packet := artnet.BuildDMXPacket(universe, s.universes[universe], s.sequence[universe])
			_, _ = s.conn.Write(packet)
		}

		_ = s.conn.Close()
		s.conn = nil
	}

	log.Printf("🎭 DMX Service stopped")
}

// ReloadBroadcastAddress updates the broadcast address and reconnects.
// If Art-Net was disabled, this will enable it.
func (s *Service) ReloadBroadcastAddress(newAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasEnabled := s.enabled
	log.Printf("🔄 Reloading Art-Net broadcast address from %s to %s (was enabled: %v)", s.broadcastAddr, newAddress, wasEnabled)

	// Close existing connection
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}

	// Update address
	s.broadcastAddr = newAddress

	// Create new connection
	addr, err := net.ResolveUDPAddr("udp4", s.broadcastAddr+":"+strconv.Itoa(s.port))
	if err != nil {
		return err
	}
	s.addr = addr

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return err
	}
	s.conn = conn

	// Enable Art-Net output now that we have a valid broadcast address
	if !wasEnabled {
		s.enabled = true
		log.Printf("✅ Art-Net enabled with broadcast address %s:%d", s.broadcastAddr, s.port)
	} else {
		log.Printf("✅ Art-Net broadcast address updated to %s:%d", s.broadcastAddr, s.port)
	}
	return nil
}

// DisableArtNet disables Art-Net output and closes the connection.
func (s *Service) DisableArtNet() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.enabled = false
	s.broadcastAddr = ""
	log.Printf("🔌 Art-Net output disabled")
}
