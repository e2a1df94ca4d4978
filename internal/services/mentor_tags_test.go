package services

import (
	"reflect"
	"testing"
)

func TestParseMentorReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []Segment
	}{
		{
			name:  "plain text only",
			reply: "Take a slow breath.",
			want:  []Segment{{Kind: SegmentText, Text: "Take a slow breath."}},
		},
		{
			name:  "protocol start with underscores",
			reply: "Let's begin. [PROTOCOL_START:Track_Neutralization] Close your eyes.",
			want: []Segment{
				{Kind: SegmentText, Text: "Let's begin. "},
				{Kind: SegmentProtocolStart, Name: "Track Neutralization"},
				{Kind: SegmentText, Text: " Close your eyes."},
			},
		},
		{
			name:  "protocol end",
			reply: "Well done.[PROTOCOL_END]",
			want: []Segment{
				{Kind: SegmentText, Text: "Well done."},
				{Kind: SegmentProtocolEnd},
			},
		},
		{
			name:  "treatment start and end",
			reply: "[TREATMENT_START:Morning_Reset]steps here[TREATMENT_END]",
			want: []Segment{
				{Kind: SegmentTreatmentStart, Name: "Morning Reset"},
				{Kind: SegmentText, Text: "steps here"},
				{Kind: SegmentTreatmentEnd},
			},
		},
		{
			name:  "unknown bracket stays text",
			reply: "see [note 3] for details",
			want:  []Segment{{Kind: SegmentText, Text: "see [note 3] for details"}},
		},
		{
			name:  "unterminated tag stays text",
			reply: "broken [PROTOCOL_START:Oops",
			want:  []Segment{{Kind: SegmentText, Text: "broken [PROTOCOL_START:Oops"}},
		},
		{
			name:  "empty name stays text",
			reply: "odd [PROTOCOL_START:] tag",
			want:  []Segment{{Kind: SegmentText, Text: "odd [PROTOCOL_START:] tag"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMentorReply(tt.reply)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMentorReply(%q) =\n%+v\nwant\n%+v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestPlainTextStripsTags(t *testing.T) {
	segments := ParseMentorReply("Hello [PROTOCOL_START:Deep_Work] world [PROTOCOL_END] again")
	if got := PlainText(segments); got != "Hello  world  again" {
		t.Errorf("PlainText = %q", got)
	}
}
