package dmx

import "github.com/lacylights/lumenserver/internal/services/bus"

const busTopic = bus.TopicDMXOutput

// busEvent builds the Change Bus payload for a universe's output, filtered
// by universe number so subscribers only watching universe N don't pay for
// traffic on the others.
func busEvent(universe int, channels [UniverseSize]byte) bus.DMXOutputChanged {
	return bus.DMXOutputChanged{
		Universe: universe,
		Channels: channels,
	}
}
