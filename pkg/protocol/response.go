package protocol

import (
	"fmt"
	"strings"
	"time"
)

// Server reply verbs. Every server-to-client line starts with one of these.
const (
	VerbConn    = "RCV_CONN"
	VerbMOTD    = "RCV_MOTD"
	VerbList    = "RCV_LISTCHN"
	VerbJoin    = "RCV_JOINCHN"
	VerbInfo    = "RCV_INFOCHN"
	VerbWho     = "RCV_WHOCHN"
	VerbChatLog = "RCV_CHATLOG"
	VerbPrivate = "RCV_PVT"
	VerbWhoAmI  = "RCV_WHOAMI"
	VerbNick    = "RCV_NICK"
	VerbChat    = "RCV_CHAT"
	VerbChatMsg = "RCV_CHATMSG"
	VerbErrCmd  = "ERR_CMD"
)

// Client-facing error strings, kept byte-for-byte compatible with the
// original server.
const (
	ErrNickInUseConn = "Nick já em uso! Tente outro"
	ErrBadHandshake  = "Sintaxe incorreta"
	ErrDescRequired  = "Necessário uma descrição para criar uma sala."
	ErrBadRoomName   = "Nome de sala invalido"
	ErrNickInUse     = "Nick já em uso"
	ErrNickUnknown   = "Nick não existe!"
	ErrUnknownCmd    = "Comando Invalido"
	ErrEmptyChat     = "Mensagem de chat inválida"
)

// ConnOK acknowledges a successful handshake with the connection id.
func ConnOK(id uint64) string { return fmt.Sprintf("%s OK %d", VerbConn, id) }

// ConnErr rejects a handshake attempt; the connection stays open for retry.
func ConnErr(reason string) string { return fmt.Sprintf("%s ERR %s", VerbConn, reason) }

// MOTDOK terminates the welcome-text stream.
func MOTDOK() string { return VerbMOTD + " OK" }

// ListOK formats the room enumeration. Each entry is "name - description";
// the list is pipe-joined with a trailing separator, matching the original
// wire format.
func ListOK(entries []string) string {
	return fmt.Sprintf("%s OK %s", VerbList, joinList(entries))
}

// JoinOK confirms that the sender is now in the named room.
func JoinOK(room string) string { return fmt.Sprintf("%s OK %s", VerbJoin, room) }

// JoinErr rejects a join attempt.
func JoinErr(reason string) string { return fmt.Sprintf("%s ERR %s", VerbJoin, reason) }

// InfoOK reports the sender's current room name and description.
func InfoOK(name, desc string) string { return fmt.Sprintf("%s OK %s %s", VerbInfo, name, desc) }

// WhoOK formats the sorted nickname listing of the sender's room.
func WhoOK(nicks []string) string {
	return fmt.Sprintf("%s OK %s", VerbWho, joinList(nicks))
}

// ChatLogLine wraps one room-log line for a CMD_VLOG response stream.
func ChatLogLine(line string) string { return fmt.Sprintf("%s [LOG] %s", VerbChatLog, line) }

// PrivateOK confirms a delivered private message.
func PrivateOK() string { return VerbPrivate + " OK" }

// PrivateErr rejects a private message (unknown destination nick).
func PrivateErr(reason string) string { return fmt.Sprintf("%s ERR %s", VerbPrivate, reason) }

// WhoAmIOK reports the sender's own identity.
func WhoAmIOK(id uint64, nick, name, room string) string {
	return fmt.Sprintf("%s OK %d %s %s %s", VerbWhoAmI, id, nick, name, room)
}

// NickOK confirms a nickname change.
func NickOK() string { return VerbNick + " OK" }

// NickErr rejects a nickname change.
func NickErr(reason string) string { return fmt.Sprintf("%s ERR %s", VerbNick, reason) }

// ChatOK confirms a broadcast chat line back to its author.
func ChatOK() string { return VerbChat + " OK" }

// ChatMsg wraps a timestamped log line for broadcast delivery.
func ChatMsg(line string) string { return fmt.Sprintf("%s %s", VerbChatMsg, line) }

// CmdErr reports an unrecognized or malformed command.
func CmdErr(reason string) string { return fmt.Sprintf("%s %s", VerbErrCmd, reason) }

// Timestamp renders the wall-clock prefix carried by chat lines and notices.
func Timestamp(t time.Time) string { return t.Format("[15:04:05]") }

// ChatLine builds the room-log entry for a user-authored chat message.
func ChatLine(t time.Time, nick, text string) string {
	return fmt.Sprintf("%s <%s> %s", Timestamp(t), nick, text)
}

// NoticeLine builds the room-log entry for a system notice (join, leave,
// rename).
func NoticeLine(t time.Time, text string) string {
	return fmt.Sprintf("%s *** %s", Timestamp(t), text)
}

// PrivateLine builds the delivery line for a private message. Private
// messages are never appended to a room log.
func PrivateLine(t time.Time, fromNick, text string) string {
	return fmt.Sprintf("%s PVT <%s> %s", Timestamp(t), fromNick, text)
}

func joinList(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(entries, "|") + "|"
}
