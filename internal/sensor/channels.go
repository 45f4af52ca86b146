package sensor

import "fmt"

// ChannelMap names the relative-axis codes the driver reports on.
type ChannelMap struct {
	Ambient uint16
	White   uint16
}

// DefaultChannels matches the cm32183 input driver.
var DefaultChannels = ChannelMap{Ambient: RelMisc, White: RelWheel}

// channelTable maps an event code to the reading slots it overwrites.
// Ambient is deliberately written to two slots; consumers of the legacy
// three-slot layout read it from either.
type channelTable map[uint16][]int

func (m ChannelMap) table() (channelTable, error) {
	if m.Ambient == m.White {
		return nil, fmt.Errorf("%w: code %d", ErrChannelConflict, m.Ambient)
	}
	return channelTable{
		m.Ambient: {0, 1},
		m.White:   {2},
	}, nil
}
