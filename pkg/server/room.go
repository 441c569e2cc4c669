package server

import (
	"sort"
	"sync"

	"github.com/eitchugo/chatradical/pkg/protocol"
)

// Room is a named chat space holding its member set and an append-only
// message log. Rooms are created on first reference and never destroyed.
//
// The log grows without bound, matching the original server; callers only
// ever read it through Tail.
type Room struct {
	name        string
	description string

	mu      sync.RWMutex // protects members and log
	members map[uint64]*User
	log     []string

	// sendMu serializes broadcast fan-out so every member sees room events
	// in log order. It is never held by membership or lookup operations, so
	// a slow client's socket write cannot stall a join or rename.
	sendMu sync.Mutex
}

// NewRoom creates an empty room. Description validation is the Registry's
// concern.
func NewRoom(name, description string) *Room {
	return &Room{
		name:        name,
		description: description,
		members:     make(map[uint64]*User),
	}
}

// Name returns the room's identifier.
func (r *Room) Name() string { return r.name }

// Description returns the room's description.
func (r *Room) Description() string { return r.description }

func (r *Room) addMember(u *User) {
	r.mu.Lock()
	r.members[u.ID] = u
	r.mu.Unlock()
}

func (r *Room) removeMember(u *User) {
	r.mu.Lock()
	delete(r.members, u.ID)
	r.mu.Unlock()
}

// Members returns a snapshot of the current member set. Broadcasters fan out
// to the snapshot so a slow client's socket write never stalls room
// mutations.
func (r *Room) Members() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*User, 0, len(r.members))
	for _, u := range r.members {
		members = append(members, u)
	}
	return members
}

// MemberCount returns the number of users currently in the room.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Nicknames returns the sorted nicknames of the current members.
func (r *Room) Nicknames() []string {
	r.mu.RLock()
	nicks := make([]string, 0, len(r.members))
	for _, u := range r.members {
		nicks = append(nicks, u.Nickname())
	}
	r.mu.RUnlock()

	sort.Strings(nicks)
	return nicks
}

// Tail returns the last n log lines in original order, or the whole log if
// it holds fewer than n lines.
func (r *Room) Tail(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	start := len(r.log) - n
	if start < 0 {
		start = 0
	}

	tail := make([]string, len(r.log)-start)
	copy(tail, r.log[start:])
	return tail
}

// Broadcast appends a timestamped line to the room log and delivers it to
// every current member as RCV_CHATMSG. The member snapshot is taken in the
// same critical section as the log append, and fan-out runs under sendMu,
// so each member observes room events in log order; the state lock is
// released before any socket write. Returns the number of members the line
// was pushed to.
func (r *Room) Broadcast(line string) int {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	r.mu.Lock()
	r.log = append(r.log, line)
	members := make([]*User, 0, len(r.members))
	for _, u := range r.members {
		members = append(members, u)
	}
	r.mu.Unlock()

	out := protocol.ChatMsg(line)
	for _, u := range members {
		if err := u.Send(out); err != nil {
			debugLog.Printf("room %s: dropped broadcast to connection %d: %v", r.name, u.ID, err)
		}
	}
	return len(members)
}
