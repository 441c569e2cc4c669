package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/eitchugo/chatradical/pkg/protocol"
)

// handleConnection drives one client through the protocol state machine:
// handshake, then the command loop, then teardown. Teardown runs on every
// exit path — explicit quit, protocol failure or abrupt I/O error — and
// releases the registry entries, the room membership and the socket exactly
// once.
func (s *Server) handleConnection(conn net.Conn, transport string) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// Disable Nagle's algorithm for immediate line delivery.
		tcpConn.SetNoDelay(true)
	}

	connID := s.nextConnID.Add(1)
	s.metrics.RecordConnection(transport)
	defer s.metrics.RecordDisconnect()

	debugLog.Printf("connection %d from %s (%s)", connID, conn.RemoteAddr(), transport)

	reader := bufio.NewReader(conn)

	user, err := s.runHandshake(connID, conn, reader)
	if err != nil {
		logReadEnd(connID, err)
		return
	}
	if user == nil {
		// Client sent QUIT before completing the handshake.
		debugLog.Printf("connection %d quit during handshake", connID)
		return
	}
	defer s.registry.Unregister(user)

	s.runCommandLoop(user, reader)
}

// runHandshake reads lines until the client completes a CONN exchange or
// gives up. A nickname conflict or a syntax error keeps the connection in
// the handshake state so the client can retry. Returns (nil, nil) when the
// client quits before registering.
func (s *Server) runHandshake(connID uint64, conn net.Conn, reader *bufio.Reader) (*User, error) {
	for {
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}

		cmd := protocol.ParseHandshake(line)
		switch cmd.Kind {
		case protocol.KindConn:
			user := NewUser(connID, cmd.Nick, cmd.Name, conn)
			if err := s.registry.Register(user); err != nil {
				writeLine(conn, protocol.ConnErr(protocol.ErrNickInUseConn))
				continue
			}
			s.completeHandshake(user)
			return user, nil

		case protocol.KindQuit:
			return nil, nil

		default:
			writeLine(conn, protocol.ConnErr(protocol.ErrBadHandshake))
		}
	}
}

// completeHandshake acknowledges the registration, streams the welcome text
// and places the user in the default room.
func (s *Server) completeHandshake(user *User) {
	user.Send(protocol.ConnOK(user.ID))

	for _, line := range LoadMOTD(s.config.MOTDPath) {
		user.Send(line)
	}
	user.Send(protocol.MOTDOK())

	defaultRoom, ok := s.registry.Room("default")
	if !ok {
		// Seeding guarantees the default room; recreate it if a custom
		// registry ever lost it.
		defaultRoom, _ = s.registry.GetOrCreateRoom("default", "default")
	}

	s.registry.MoveUser(user, defaultRoom)
	user.Send(protocol.JoinOK(defaultRoom.Name()))

	notice := protocol.NoticeLine(time.Now(), fmt.Sprintf("%s entrou na sala 'default'", user.Nickname()))
	n := defaultRoom.Broadcast(notice)
	s.metrics.RecordNoticeBroadcast(n)

	debugLog.Printf("connection %d registered as %s", user.ID, user.Nickname())
}

// runCommandLoop reads one line at a time and hands it to the dispatcher
// until the client quits or the read fails.
func (s *Server) runCommandLoop(user *User, reader *bufio.Reader) {
	for {
		line, err := readLine(reader)
		if err != nil {
			logReadEnd(user.ID, err)
			return
		}

		if quit := s.dispatch(user, line); quit {
			return
		}
	}
}

// readLine reads one newline-terminated protocol line, stripping the line
// ending. A partial line at EOF is discarded, like the original server's
// readline loop.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// writeLine sends a line on a connection that has no User yet (handshake
// state). Nothing broadcasts to the socket at that point, so no write
// synchronization is needed.
func writeLine(conn net.Conn, line string) {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		debugLog.Printf("handshake write failed: %v", err)
	}
}

func logReadEnd(connID uint64, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		debugLog.Printf("connection %d disconnected", connID)
	} else {
		errorLog.Printf("connection %d read error: %v", connID, err)
	}
}
