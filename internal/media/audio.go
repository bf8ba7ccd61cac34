package media

import (
	"regexp"
	"strconv"
	"strings"
)

// AudioStream describes one audio track of a media file. Channels keeps the
// raw description as reported by the source (mediainfo, NFO); the integer
// count is always derived from it.
type AudioStream struct {
	Codec    string
	Channels string
	Language string
	Bitrate  int
}

// ChannelsAsInt returns the channel count implied by Channels.
func (a AudioStream) ChannelsAsInt() int {
	return ParseChannels(a.Channels)
}

var channelNumberRegex = regexp.MustCompile(`\d+(?:\.\d+)*`)

// maxChannels bounds a single layout; larger totals are treated as garbage.
const maxChannels = 64

// ParseChannels converts a free-text channel description like "5.1",
// "8 / 6 Ch" or "Object Based / 8 channels" into a channel count.
//
// Every "/"-separated group is evaluated and the largest count wins. Groups
// describing audio objects are not channels and are skipped. A layout such
// as "7.3.1" counts as the sum of its parts. Unparseable input yields 0.
func ParseChannels(description string) int {
	best := 0
	for _, group := range strings.Split(description, "/") {
		group = strings.ToLower(strings.TrimSpace(group))
		if group == "" || strings.Contains(group, "object") {
			continue
		}
		if n := groupChannels(group); n > best {
			best = n
		}
	}
	return best
}

func groupChannels(group string) int {
	token := channelNumberRegex.FindString(group)
	if token == "" {
		return 0
	}
	sum := 0
	for _, part := range strings.Split(token, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n > maxChannels {
			return 0
		}
		sum += n
		if sum > maxChannels {
			return 0
		}
	}
	return sum
}
