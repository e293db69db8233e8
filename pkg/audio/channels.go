// ABOUTME: Speaker channel identifiers and default channel ordering
// ABOUTME: Provides the WAVEFORMATEX-style default order per layout
package audio

// Channel identifies one speaker position in an interleaved frame
type Channel int

const (
	FrontLeft Channel = iota
	FrontRight
	FrontCenter
	LFE
	BackLeft
	BackRight
	BackCenter
	SideLeft
	SideRight
)

var channelNames = map[Channel]string{
	FrontLeft:   "FL",
	FrontRight:  "FR",
	FrontCenter: "FC",
	LFE:         "LFE",
	BackLeft:    "BL",
	BackRight:   "BR",
	BackCenter:  "BC",
	SideLeft:    "SL",
	SideRight:   "SR",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return "?"
}

// DefaultChannelOrder returns the default WFX interleaving for a layout.
// Ambisonic layouts have no speaker order and return nil.
func DefaultChannelOrder(ch Channels) []Channel {
	switch ch {
	case ChannelsMono:
		return []Channel{FrontCenter}
	case ChannelsStereo:
		return []Channel{FrontLeft, FrontRight}
	case ChannelsQuad:
		return []Channel{FrontLeft, FrontRight, BackLeft, BackRight}
	case ChannelsX51:
		return []Channel{FrontLeft, FrontRight, FrontCenter, LFE, SideLeft, SideRight}
	case ChannelsX51Rear:
		return []Channel{FrontLeft, FrontRight, FrontCenter, LFE, BackLeft, BackRight}
	case ChannelsX61:
		return []Channel{FrontLeft, FrontRight, FrontCenter, LFE, BackCenter, SideLeft, SideRight}
	case ChannelsX71:
		return []Channel{FrontLeft, FrontRight, FrontCenter, LFE, BackLeft, BackRight, SideLeft, SideRight}
	}
	return nil
}
