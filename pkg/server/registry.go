package server

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNickTaken is returned when a nickname is already held by a
	// connected user.
	ErrNickTaken = errors.New("nickname already in use")

	// ErrDescriptionRequired is returned when a join would create a new
	// room without a description.
	ErrDescriptionRequired = errors.New("room description required")
)

// Registry is the single source of truth for connected users and rooms. It
// owns the connection-id and nickname indices plus the room map; every
// check-then-mutate sequence (nickname uniqueness, room switch) runs as one
// critical section under its lock.
type Registry struct {
	mu    sync.RWMutex
	users map[uint64]*User // connection id -> user
	nicks map[string]*User // nickname -> user, kept consistent on rename
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[uint64]*User),
		nicks: make(map[string]*User),
		rooms: make(map[string]*Room),
	}
}

// Register adds a handshaking user to the indices. The uniqueness check and
// the insert are a single critical section, so two connections racing for
// the same nickname can never both win.
func (reg *Registry) Register(u *User) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	nick := u.Nickname()
	if _, taken := reg.nicks[nick]; taken {
		return ErrNickTaken
	}

	reg.users[u.ID] = u
	reg.nicks[nick] = u
	return nil
}

// Unregister removes a user from all indices and from its current room's
// member set. It is safe to call for users that never completed
// registration and safe to call more than once.
func (reg *Registry) Unregister(u *User) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.users, u.ID)
	if holder, ok := reg.nicks[u.Nickname()]; ok && holder == u {
		delete(reg.nicks, u.Nickname())
	}

	if room := u.Room(); room != nil {
		room.removeMember(u)
		u.setRoom(nil)
	}
}

// Rename changes a user's nickname, keeping the nickname index consistent.
// Check and swap are one critical section.
func (reg *Registry) Rename(u *User, newNick string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, taken := reg.nicks[newNick]; taken {
		return ErrNickTaken
	}

	delete(reg.nicks, u.Nickname())
	reg.nicks[newNick] = u
	u.setNickname(newNick)
	return nil
}

// UserByNick looks up a connected user by nickname.
func (reg *Registry) UserByNick(nick string) (*User, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.nicks[nick]
	return u, ok
}

// UserCount returns the number of registered users.
func (reg *Registry) UserCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.users)
}

// Room looks up a room by name.
func (reg *Registry) Room(name string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[name]
	return r, ok
}

// GetOrCreateRoom returns the named room, creating it when it doesn't exist
// yet. Creation requires a non-empty description; the pre-seeded rooms
// always exist, so joining them never needs one. Rooms are never destroyed.
func (reg *Registry) GetOrCreateRoom(name, description string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r, ok := reg.rooms[name]; ok {
		return r, nil
	}
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	r := NewRoom(name, description)
	reg.rooms[name] = r
	debugLog.Printf("room created: %s - %s", name, description)
	return r, nil
}

// RoomCount returns the number of rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// ListRooms returns one "name - description" entry per room, sorted.
func (reg *Registry) ListRooms() []string {
	reg.mu.RLock()
	entries := make([]string, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		entries = append(entries, fmt.Sprintf("%s - %s", r.Name(), r.Description()))
	}
	reg.mu.RUnlock()

	sort.Strings(entries)
	return entries
}

// MoveUser switches a user to another room as one atomic leave-then-join:
// no interleaved move can observe the user in two rooms, and concurrent
// broadcasts see the user in at most one member set at any instant.
func (reg *Registry) MoveUser(u *User, to *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if old := u.Room(); old != nil {
		old.removeMember(u)
	}
	to.addMember(u)
	u.setRoom(to)
}
