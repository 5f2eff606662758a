package ffmpeg

import "strings"

// ParseLogLevel extracts the level from an ffmpeg line printed with
// `-loglevel level+...`. Lines look like "[error] message" or
// "[h264 @ 0x55d] [warning] message"; the component prefix is kept in msg.
// Lines without a level tag are reported as "info".
func ParseLogLevel(line string) (level, msg string) {
	tag, rest, ok := cutBracket(line)
	if !ok {
		return "info", line
	}
	if isLogLevel(tag) {
		return tag, rest
	}

	if next, tail, found := cutBracket(rest); found && isLogLevel(next) {
		component := line[:len(line)-len(rest)]
		return next, component + tail
	}
	return "info", line
}

// cutBracket splits "[tag] rest" into tag and rest.
func cutBracket(s string) (tag, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	end := strings.Index(s, "] ")
	if end == -1 {
		return "", s, false
	}
	return s[1:end], s[end+2:], true
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}
