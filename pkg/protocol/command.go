package protocol

import (
	"regexp"
	"strconv"
)

// DefaultLogTail is the number of log lines returned by CMD_VLOG when the
// client does not supply a count.
const DefaultLogTail = 30

// MaxLogTail is the largest tail the grammar can express (two digits).
const MaxLogTail = 99

// CommandKind identifies a parsed client command.
type CommandKind int

const (
	// KindInvalid is any line that matches no recognized grammar.
	KindInvalid CommandKind = iota

	// Handshake-state commands
	KindConn

	// Active-state commands
	KindQuit
	KindListRooms
	KindJoinRoom
	KindJoinBadArgs // CMD_JOINCHN with arguments that don't parse
	KindRoomInfo
	KindWho
	KindViewLog
	KindPrivate
	KindWhoAmI
	KindNick
	KindChat
	KindChatEmpty // CMD_CHAT with no message body
)

// Command is the tagged result of parsing one client line. Only the fields
// relevant to Kind are populated.
type Command struct {
	Kind CommandKind

	Nick string // KindConn, KindPrivate, KindNick
	Name string // KindConn: display name
	Room string // KindJoinRoom
	Desc string // KindJoinRoom: optional description ("" if absent)
	Tail int    // KindViewLog: requested log tail
	Text string // KindPrivate, KindChat: message body
}

// Command grammar. Keywords are case-insensitive, arguments are not.
var (
	connRe   = regexp.MustCompile(`^(?i:CONN) ([a-zA-Z0-9]{1,24}) ([a-zA-Z_-]{1,32})$`)
	quitRe   = regexp.MustCompile(`^(?i:QUIT)( .*)?$`)
	listRe   = regexp.MustCompile(`^(?i:CMD_LISTCHN)( .*)?$`)
	joinRe   = regexp.MustCompile(`^(?i:CMD_JOINCHN)( .*)?$`)
	joinArgs = regexp.MustCompile(`^(?i:CMD_JOINCHN) ([a-zA-Z0-9]{1,24})( (.+))?$`)
	infoRe   = regexp.MustCompile(`^(?i:CMD_INFOCHN)( .*)?$`)
	whoRe    = regexp.MustCompile(`^(?i:CMD_WHOCHN)( .*)?$`)
	vlogRe   = regexp.MustCompile(`^(?i:CMD_VLOG)( .*)?$`)
	vlogArgs = regexp.MustCompile(`^(?i:CMD_VLOG) ([0-9]{1,2})( .*)?$`)
	pvtRe    = regexp.MustCompile(`^(?i:CMD_PVT) ([a-zA-Z0-9]{1,24}) (.+)$`)
	whoamiRe = regexp.MustCompile(`^(?i:CMD_WHOAMI)( .*)?$`)
	nickRe   = regexp.MustCompile(`^(?i:CMD_NICK) ([a-zA-Z0-9]{1,24})( .*)?$`)
	chatRe   = regexp.MustCompile(`^(?i:CMD_CHAT)( .*)?$`)
	chatArgs = regexp.MustCompile(`^(?i:CMD_CHAT) (.+)$`)
)

// ParseHandshake parses a line received while the connection is still in the
// handshake state. Only CONN and QUIT are recognized there.
func ParseHandshake(line string) Command {
	if m := connRe.FindStringSubmatch(line); m != nil {
		return Command{Kind: KindConn, Nick: m[1], Name: m[2]}
	}
	if quitRe.MatchString(line) {
		return Command{Kind: KindQuit}
	}
	return Command{Kind: KindInvalid}
}

// ParseCommand parses a line received from an active (handshake-completed)
// connection into a tagged Command. Lines matching no grammar come back as
// KindInvalid; the caller answers those with ERR_CMD.
func ParseCommand(line string) Command {
	switch {
	case listRe.MatchString(line):
		return Command{Kind: KindListRooms}

	case joinRe.MatchString(line):
		if m := joinArgs.FindStringSubmatch(line); m != nil {
			return Command{Kind: KindJoinRoom, Room: m[1], Desc: m[3]}
		}
		return Command{Kind: KindJoinBadArgs}

	case infoRe.MatchString(line):
		return Command{Kind: KindRoomInfo}

	case whoRe.MatchString(line):
		return Command{Kind: KindWho}

	case vlogRe.MatchString(line):
		tail := DefaultLogTail
		if m := vlogArgs.FindStringSubmatch(line); m != nil {
			// Two-digit grammar guarantees 0 <= n <= 99.
			tail, _ = strconv.Atoi(m[1])
		}
		return Command{Kind: KindViewLog, Tail: tail}

	case pvtRe.MatchString(line):
		m := pvtRe.FindStringSubmatch(line)
		return Command{Kind: KindPrivate, Nick: m[1], Text: m[2]}

	case whoamiRe.MatchString(line):
		return Command{Kind: KindWhoAmI}

	case nickRe.MatchString(line):
		m := nickRe.FindStringSubmatch(line)
		return Command{Kind: KindNick, Nick: m[1]}

	case chatRe.MatchString(line):
		if m := chatArgs.FindStringSubmatch(line); m != nil {
			return Command{Kind: KindChat, Text: m[1]}
		}
		return Command{Kind: KindChatEmpty}

	case quitRe.MatchString(line):
		return Command{Kind: KindQuit}
	}

	return Command{Kind: KindInvalid}
}
