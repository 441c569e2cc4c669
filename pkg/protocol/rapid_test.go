package protocol

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// TestConnRoundTrip tests that any grammar-conforming nick/name pair parses
// back out of a formatted CONN line.
func TestConnRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nick := rapid.StringMatching(`[a-zA-Z0-9]{1,24}`).Draw(t, "nick")
		name := rapid.StringMatching(`[a-zA-Z_-]{1,32}`).Draw(t, "name")

		cmd := ParseHandshake(fmt.Sprintf("CONN %s %s", nick, name))
		if cmd.Kind != KindConn {
			t.Fatalf("expected KindConn, got %v", cmd.Kind)
		}
		if cmd.Nick != nick {
			t.Fatalf("nick mismatch: got %q, want %q", cmd.Nick, nick)
		}
		if cmd.Name != name {
			t.Fatalf("name mismatch: got %q, want %q", cmd.Name, name)
		}
	})
}

// TestJoinRoundTrip tests that any valid room name and description survive a
// formatted CMD_JOINCHN line.
func TestJoinRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		room := rapid.StringMatching(`[a-zA-Z0-9]{1,24}`).Draw(t, "room")
		desc := rapid.StringMatching(`[^\r\n ][^\r\n]*`).Draw(t, "desc")

		cmd := ParseCommand(fmt.Sprintf("CMD_JOINCHN %s %s", room, desc))
		if cmd.Kind != KindJoinRoom {
			t.Fatalf("expected KindJoinRoom, got %v", cmd.Kind)
		}
		if cmd.Room != room {
			t.Fatalf("room mismatch: got %q, want %q", cmd.Room, room)
		}
		if cmd.Desc != desc {
			t.Fatalf("desc mismatch: got %q, want %q", cmd.Desc, desc)
		}
	})
}

// TestChatBodyPreserved tests that an arbitrary chat body passes through the
// parser unchanged.
func TestChatBodyPreserved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.StringMatching(`[^\r\n]+`).Draw(t, "body")

		cmd := ParseCommand("CMD_CHAT " + body)
		if cmd.Kind != KindChat {
			t.Fatalf("expected KindChat, got %v", cmd.Kind)
		}
		if cmd.Text != body {
			t.Fatalf("body mismatch: got %q, want %q", cmd.Text, body)
		}
	})
}

// TestViewLogTailInGrammarRange tests that any one- or two-digit tail is
// parsed exactly and anything longer falls back to the default.
func TestViewLogTailInGrammarRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 99).Draw(t, "n")

		cmd := ParseCommand(fmt.Sprintf("CMD_VLOG %d", n))
		if cmd.Kind != KindViewLog {
			t.Fatalf("expected KindViewLog, got %v", cmd.Kind)
		}
		if cmd.Tail != n {
			t.Fatalf("tail mismatch: got %d, want %d", cmd.Tail, n)
		}
	})
}
