package server

import (
	"fmt"
	"time"

	"github.com/eitchugo/chatradical/pkg/protocol"
)

// dispatch parses one line from an active connection and invokes the
// matching handler. Every recognized line produces a direct reply, a room
// broadcast, or both; QUIT produces neither and reports quit=true so the
// connection handler can tear down.
func (s *Server) dispatch(u *User, line string) (quit bool) {
	cmd := protocol.ParseCommand(line)
	s.metrics.RecordCommand(commandLabel(cmd.Kind))

	switch cmd.Kind {
	case protocol.KindListRooms:
		s.handleListRooms(u)
	case protocol.KindJoinRoom:
		s.handleJoinRoom(u, cmd.Room, cmd.Desc)
	case protocol.KindJoinBadArgs:
		u.Send(protocol.JoinErr(protocol.ErrBadRoomName))
	case protocol.KindRoomInfo:
		s.handleRoomInfo(u)
	case protocol.KindWho:
		s.handleWho(u)
	case protocol.KindViewLog:
		s.handleViewLog(u, cmd.Tail)
	case protocol.KindPrivate:
		s.handlePrivate(u, cmd.Nick, cmd.Text)
	case protocol.KindWhoAmI:
		s.handleWhoAmI(u)
	case protocol.KindNick:
		s.handleNick(u, cmd.Nick)
	case protocol.KindChat:
		s.handleChat(u, cmd.Text)
	case protocol.KindChatEmpty:
		u.Send(protocol.CmdErr(protocol.ErrEmptyChat))
	case protocol.KindQuit:
		s.handleQuit(u)
		return true
	default:
		u.Send(protocol.CmdErr(protocol.ErrUnknownCmd))
	}

	return false
}

// handleListRooms answers CMD_LISTCHN with the sorted room enumeration.
func (s *Server) handleListRooms(u *User) {
	u.Send(protocol.ListOK(s.registry.ListRooms()))
}

// handleJoinRoom answers CMD_JOINCHN: leave the current room, create the
// target if it doesn't exist yet (a description is required for that), and
// join it. The leave notice always goes out before the join notice.
func (s *Server) handleJoinRoom(u *User, name, desc string) {
	room, err := s.registry.GetOrCreateRoom(name, desc)
	if err != nil {
		u.Send(protocol.JoinErr(protocol.ErrDescRequired))
		return
	}
	s.metrics.RecordRoomCount(s.registry.RoomCount())

	if old := u.Room(); old != nil {
		notice := protocol.NoticeLine(time.Now(), fmt.Sprintf("%s saiu da sala", u.Nickname()))
		s.metrics.RecordNoticeBroadcast(old.Broadcast(notice))
	}

	s.registry.MoveUser(u, room)
	u.Send(protocol.JoinOK(room.Name()))

	notice := protocol.NoticeLine(time.Now(), fmt.Sprintf("%s entrou na sala '%s'", u.Nickname(), room.Name()))
	s.metrics.RecordNoticeBroadcast(room.Broadcast(notice))
}

// handleRoomInfo answers CMD_INFOCHN with the current room's name and
// description.
func (s *Server) handleRoomInfo(u *User) {
	room := u.Room()
	u.Send(protocol.InfoOK(room.Name(), room.Description()))
}

// handleWho answers CMD_WHOCHN with the sorted nicknames in the current
// room.
func (s *Server) handleWho(u *User) {
	u.Send(protocol.WhoOK(u.Room().Nicknames()))
}

// handleViewLog streams the tail of the current room's log.
func (s *Server) handleViewLog(u *User, tail int) {
	for _, line := range u.Room().Tail(tail) {
		u.Send(protocol.ChatLogLine(line))
	}
}

// handlePrivate delivers a private message to the destination nick's output
// channel. Private messages bypass room logs.
func (s *Server) handlePrivate(u *User, nick, text string) {
	dest, ok := s.registry.UserByNick(nick)
	if !ok {
		u.Send(protocol.PrivateErr(protocol.ErrNickUnknown))
		return
	}

	line := protocol.PrivateLine(time.Now(), u.Nickname(), text)
	if err := dest.Send(protocol.ChatMsg(line)); err != nil {
		debugLog.Printf("private message to %s failed: %v", nick, err)
	}
	s.metrics.RecordPrivateMessage()
	u.Send(protocol.PrivateOK())
}

// handleWhoAmI answers CMD_WHOAMI with the sender's own identity.
func (s *Server) handleWhoAmI(u *User) {
	u.Send(protocol.WhoAmIOK(u.ID, u.Nickname(), u.DisplayName, u.Room().Name()))
}

// handleNick renames the sender if the new nickname is free. The rename
// notice carries the old nickname and is broadcast to the current room.
func (s *Server) handleNick(u *User, newNick string) {
	oldNick := u.Nickname()
	if err := s.registry.Rename(u, newNick); err != nil {
		u.Send(protocol.NickErr(protocol.ErrNickInUse))
		return
	}

	notice := protocol.NoticeLine(time.Now(), fmt.Sprintf("%s trocou de nick para '%s'", oldNick, newNick))
	s.metrics.RecordNoticeBroadcast(u.Room().Broadcast(notice))
	u.Send(protocol.NickOK())
}

// handleChat appends the chat line to the current room's log and fans it
// out to every member, the sender included.
func (s *Server) handleChat(u *User, text string) {
	line := protocol.ChatLine(time.Now(), u.Nickname(), text)
	s.metrics.RecordChatBroadcast(u.Room().Broadcast(line))
	u.Send(protocol.ChatOK())
}

// handleQuit broadcasts the leave notice; the connection handler does the
// actual teardown.
func (s *Server) handleQuit(u *User) {
	if room := u.Room(); room != nil {
		notice := protocol.NoticeLine(time.Now(), fmt.Sprintf("%s saiu da sala", u.Nickname()))
		s.metrics.RecordNoticeBroadcast(room.Broadcast(notice))
	}
}

func commandLabel(kind protocol.CommandKind) string {
	switch kind {
	case protocol.KindListRooms:
		return "CMD_LISTCHN"
	case protocol.KindJoinRoom, protocol.KindJoinBadArgs:
		return "CMD_JOINCHN"
	case protocol.KindRoomInfo:
		return "CMD_INFOCHN"
	case protocol.KindWho:
		return "CMD_WHOCHN"
	case protocol.KindViewLog:
		return "CMD_VLOG"
	case protocol.KindPrivate:
		return "CMD_PVT"
	case protocol.KindWhoAmI:
		return "CMD_WHOAMI"
	case protocol.KindNick:
		return "CMD_NICK"
	case protocol.KindChat, protocol.KindChatEmpty:
		return "CMD_CHAT"
	case protocol.KindQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}
