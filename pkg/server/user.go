package server

import (
	"net"
	"sync"
)

// User is a connected, handshake-completed identity. It is exclusively owned
// by its connection handler; the Registry and Rooms hold non-owning
// references for lookup and broadcast.
type User struct {
	ID          uint64
	DisplayName string

	conn    net.Conn
	writeMu sync.Mutex // serializes line writes from concurrent broadcasters

	mu       sync.RWMutex // protects nickname and room
	nickname string
	room     *Room
}

// NewUser wraps an accepted connection in a User. The nickname must already
// have passed the handshake grammar; registration (uniqueness) happens in the
// Registry.
func NewUser(id uint64, nick, displayName string, conn net.Conn) *User {
	return &User{
		ID:          id,
		DisplayName: displayName,
		nickname:    nick,
		conn:        conn,
	}
}

// Nickname returns the user's current nickname.
func (u *User) Nickname() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.nickname
}

// Room returns the room the user currently occupies, or nil while the user
// is between rooms.
func (u *User) Room() *Room {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.room
}

// Send pushes one protocol line to the client. Writes are serialized so that
// broadcasts from other connections never interleave mid-line. Each line
// goes out as a single Write call, which the transport adapters rely on.
func (u *User) Send(line string) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	_, err := u.conn.Write([]byte(line + "\n"))
	return err
}

func (u *User) setNickname(nick string) {
	u.mu.Lock()
	u.nickname = nick
	u.mu.Unlock()
}

func (u *User) setRoom(r *Room) {
	u.mu.Lock()
	u.room = r
	u.mu.Unlock()
}
