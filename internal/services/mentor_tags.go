package services

import "strings"

// Mentor replies can carry inline control tags that start or end a guided
// protocol or treatment: [PROTOCOL_START:Name], [PROTOCOL_END],
// [TREATMENT_START:Name], [TREATMENT_END]. ParseMentorReply splits a raw
// reply into an ordered list of typed segments so callers never touch the
// bracket syntax themselves.

// SegmentKind discriminates mentor reply segments.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentProtocolStart
	SegmentProtocolEnd
	SegmentTreatmentStart
	SegmentTreatmentEnd
)

// Segment is one piece of a parsed mentor reply: plain text, or a control
// tag. Name is set only for the *Start kinds, with the tag's underscores
// already turned back into spaces.
type Segment struct {
	Kind SegmentKind
	Text string // SegmentText only
	Name string // SegmentProtocolStart / SegmentTreatmentStart only
}

type tagSpec struct {
	prefix  string // tags that carry a name, e.g. "[PROTOCOL_START:"
	literal string // fixed tags, e.g. "[PROTOCOL_END]"
	kind    SegmentKind
}

var mentorTags = []tagSpec{
	{prefix: "[PROTOCOL_START:", kind: SegmentProtocolStart},
	{literal: "[PROTOCOL_END]", kind: SegmentProtocolEnd},
	{prefix: "[TREATMENT_START:", kind: SegmentTreatmentStart},
	{literal: "[TREATMENT_END]", kind: SegmentTreatmentEnd},
}

// ParseMentorReply scans a reply left to right and returns its segments in
// order. Malformed tags (an opening bracket with no closing one, or an
// empty name) are kept as plain text rather than dropped.
func ParseMentorReply(reply string) []Segment {
	var segments []Segment
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, Segment{Kind: SegmentText, Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(reply); {
		if reply[i] != '[' {
			text.WriteByte(reply[i])
			i++
			continue
		}

		matched := false
		rest := reply[i:]
		for _, tag := range mentorTags {
			if tag.literal != "" {
				if strings.HasPrefix(rest, tag.literal) {
					flush()
					segments = append(segments, Segment{Kind: tag.kind})
					i += len(tag.literal)
					matched = true
					break
				}
				continue
			}
			if !strings.HasPrefix(rest, tag.prefix) {
				continue
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				continue
			}
			name := rest[len(tag.prefix):end]
			if name == "" {
				continue
			}
			flush()
			segments = append(segments, Segment{
				Kind: tag.kind,
				Name: strings.ReplaceAll(name, "_", " "),
			})
			i += end + 1
			matched = true
			break
		}
		if !matched {
			text.WriteByte(reply[i])
			i++
		}
	}
	flush()
	return segments
}

// PlainText concatenates the text segments of a parsed reply, which is
// what gets displayed, stored and spoken.
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == SegmentText {
			b.WriteString(seg.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
