package server

import (
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

// testServer creates a server with seeded default rooms, no listeners and
// no metrics.
func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := DefaultConfig()
	// Point at a nonexistent MOTD file; handlers under test never stream
	// the MOTD anyway.
	cfg.MOTDPath = filepath.Join(t.TempDir(), "motd.txt")

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

// activeUser registers a user and places it in the named room, simulating a
// completed handshake.
func activeUser(t *testing.T, srv *Server, id uint64, nick, room string) (*User, <-chan string) {
	t.Helper()

	u, lines := pipeUser(t, id, nick)
	if err := srv.registry.Register(u); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	r, ok := srv.registry.Room(room)
	if !ok {
		t.Fatalf("room %q not seeded", room)
	}
	srv.registry.MoveUser(u, r)
	return u, lines
}

func drainLines(lines <-chan string) {
	for {
		select {
		case <-lines:
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

func TestDispatchListRooms(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_LISTCHN")

	got := readLineOrTimeout(t, lines)
	want := "RCV_LISTCHN OK FIAP - FIAP|Linux - Linux|Ruby - Ruby|default - default|"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDispatchJoinCreatesRoom(t *testing.T) {
	srv := testServer(t)
	alice, aliceLines := activeUser(t, srv, 1, "alice", "default")
	_, bobLines := activeUser(t, srv, 2, "bob", "default")

	srv.dispatch(alice, "CMD_JOINCHN lounge A lounge room")

	// Alice is still a member of default when the leave notice goes out,
	// so she sees it too, then the join confirmation, then the join notice
	// in the new room.
	leaveRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] \*\*\* alice saiu da sala$`)
	joinNoticeRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] \*\*\* alice entrou na sala 'lounge'$`)

	if got := readLineOrTimeout(t, aliceLines); !leaveRe.MatchString(got) {
		t.Fatalf("expected leave notice, got %q", got)
	}
	if got := readLineOrTimeout(t, aliceLines); got != "RCV_JOINCHN OK lounge" {
		t.Fatalf("expected join confirmation, got %q", got)
	}
	if got := readLineOrTimeout(t, aliceLines); !joinNoticeRe.MatchString(got) {
		t.Fatalf("expected join notice, got %q", got)
	}

	// Bob only sees the leave notice.
	if got := readLineOrTimeout(t, bobLines); !leaveRe.MatchString(got) {
		t.Fatalf("expected leave notice for bob, got %q", got)
	}

	lounge, ok := srv.registry.Room("lounge")
	if !ok {
		t.Fatal("room lounge was not created")
	}
	if lounge.Description() != "A lounge room" {
		t.Fatalf("unexpected description %q", lounge.Description())
	}
	if alice.Room() != lounge {
		t.Fatal("alice is not in lounge")
	}
	if def, _ := srv.registry.Room("default"); def.MemberCount() != 1 {
		t.Fatal("alice still counted in default")
	}
}

func TestDispatchJoinNewRoomRequiresDescription(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_JOINCHN lounge")

	if got := readLineOrTimeout(t, lines); got != "RCV_JOINCHN ERR Necessário uma descrição para criar uma sala." {
		t.Fatalf("got %q", got)
	}
	if _, ok := srv.registry.Room("lounge"); ok {
		t.Fatal("room created despite missing description")
	}
	if alice.Room().Name() != "default" {
		t.Fatal("alice moved despite failed join")
	}
}

func TestDispatchJoinSeededRoomWithoutDescription(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_JOINCHN Linux")

	// leave notice, then confirmation
	readLineOrTimeout(t, lines)
	if got := readLineOrTimeout(t, lines); got != "RCV_JOINCHN OK Linux" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchJoinBadRoomName(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_JOINCHN bad!name")

	if got := readLineOrTimeout(t, lines); got != "RCV_JOINCHN ERR Nome de sala invalido" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchRoomInfo(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "Ruby")

	srv.dispatch(alice, "CMD_INFOCHN")

	if got := readLineOrTimeout(t, lines); got != "RCV_INFOCHN OK Ruby Ruby" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchWhoSortsNicknames(t *testing.T) {
	srv := testServer(t)
	activeUser(t, srv, 1, "zed", "default")
	activeUser(t, srv, 2, "alice", "default")
	mallory, lines := activeUser(t, srv, 3, "mallory", "default")

	srv.dispatch(mallory, "CMD_WHOCHN")

	if got := readLineOrTimeout(t, lines); got != "RCV_WHOCHN OK alice|mallory|zed|" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchViewLogTail(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	room, _ := srv.registry.Room("default")
	for i := 0; i < 40; i++ {
		srv.dispatch(alice, "CMD_CHAT hello")
		// confirmation + own broadcast per message
		readLineOrTimeout(t, lines)
		readLineOrTimeout(t, lines)
	}
	if got := len(room.Tail(99)); got != 40 {
		t.Fatalf("expected 40 log lines, got %d", got)
	}

	srv.dispatch(alice, "CMD_VLOG 5")
	logRe := regexp.MustCompile(`^RCV_CHATLOG \[LOG\] \[\d{2}:\d{2}:\d{2}\] <alice> hello$`)
	for i := 0; i < 5; i++ {
		if got := readLineOrTimeout(t, lines); !logRe.MatchString(got) {
			t.Fatalf("unexpected log line %q", got)
		}
	}
	drainLines(lines)

	// Without an argument the tail defaults to 30.
	srv.dispatch(alice, "CMD_VLOG")
	count := 0
	timeout := time.After(time.Second)
	for count < 30 {
		select {
		case <-lines:
			count++
		case <-timeout:
			t.Fatalf("expected 30 log lines, got %d", count)
		}
	}
	drainLines(lines)
}

func TestDispatchPrivateMessage(t *testing.T) {
	srv := testServer(t)
	alice, aliceLines := activeUser(t, srv, 1, "alice", "default")
	_, bobLines := activeUser(t, srv, 2, "bob", "Linux")

	srv.dispatch(alice, "CMD_PVT bob secret stuff")

	pvtRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] PVT <alice> secret stuff$`)
	if got := readLineOrTimeout(t, bobLines); !pvtRe.MatchString(got) {
		t.Fatalf("bob got %q", got)
	}
	if got := readLineOrTimeout(t, aliceLines); got != "RCV_PVT OK" {
		t.Fatalf("alice got %q", got)
	}

	// Private messages are not appended to any room log.
	for _, name := range []string{"default", "Linux"} {
		room, _ := srv.registry.Room(name)
		if got := room.Tail(99); len(got) != 0 {
			t.Fatalf("private message leaked into %s log: %v", name, got)
		}
	}
}

func TestDispatchPrivateMessageUnknownNick(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_PVT carol secret")

	if got := readLineOrTimeout(t, lines); got != "RCV_PVT ERR Nick não existe!" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchNickRename(t *testing.T) {
	srv := testServer(t)
	alice, aliceLines := activeUser(t, srv, 1, "alice", "default")
	_, bobLines := activeUser(t, srv, 2, "bob", "default")

	srv.dispatch(alice, "CMD_NICK alicia")

	noticeRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] \*\*\* alice trocou de nick para 'alicia'$`)
	if got := readLineOrTimeout(t, bobLines); !noticeRe.MatchString(got) {
		t.Fatalf("bob got %q", got)
	}
	if got := readLineOrTimeout(t, aliceLines); !noticeRe.MatchString(got) {
		t.Fatalf("alice got %q", got)
	}
	if got := readLineOrTimeout(t, aliceLines); got != "RCV_NICK OK" {
		t.Fatalf("alice got %q", got)
	}
	if alice.Nickname() != "alicia" {
		t.Fatalf("nickname is %q", alice.Nickname())
	}
}

func TestDispatchNickConflictLeavesNicknameUnchanged(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")
	activeUser(t, srv, 2, "bob", "default")

	srv.dispatch(alice, "CMD_NICK bob")

	if got := readLineOrTimeout(t, lines); got != "RCV_NICK ERR Nick já em uso" {
		t.Fatalf("got %q", got)
	}
	if alice.Nickname() != "alice" {
		t.Fatalf("nickname changed to %q", alice.Nickname())
	}
}

func TestDispatchChatBroadcast(t *testing.T) {
	srv := testServer(t)
	_, aliceLines := activeUser(t, srv, 1, "alice", "default")
	bob, bobLines := activeUser(t, srv, 2, "bob", "default")
	_, carolLines := activeUser(t, srv, 3, "carol", "Linux")

	srv.dispatch(bob, "CMD_CHAT hi")

	chatRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] <bob> hi$`)
	if got := readLineOrTimeout(t, aliceLines); !chatRe.MatchString(got) {
		t.Fatalf("alice got %q", got)
	}
	if got := readLineOrTimeout(t, bobLines); !chatRe.MatchString(got) {
		t.Fatalf("bob got %q", got)
	}
	if got := readLineOrTimeout(t, bobLines); got != "RCV_CHAT OK" {
		t.Fatalf("bob got %q", got)
	}

	// Carol is in another room and must not see the line.
	select {
	case line := <-carolLines:
		t.Fatalf("carol received %q", line)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatchChatWithoutBody(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_CHAT")

	if got := readLineOrTimeout(t, lines); got != "ERR_CMD Mensagem de chat inválida" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchWhoAmI(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 7, "alice", "Ruby")

	srv.dispatch(alice, "CMD_WHOAMI")

	if got := readLineOrTimeout(t, lines); got != "RCV_WHOAMI OK 7 alice Test-User Ruby" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	srv := testServer(t)
	alice, lines := activeUser(t, srv, 1, "alice", "default")

	srv.dispatch(alice, "CMD_BOGUS something")

	if got := readLineOrTimeout(t, lines); got != "ERR_CMD Comando Invalido" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchQuitBroadcastsLeaveNotice(t *testing.T) {
	srv := testServer(t)
	alice, _ := activeUser(t, srv, 1, "alice", "default")
	_, bobLines := activeUser(t, srv, 2, "bob", "default")

	if quit := srv.dispatch(alice, "QUIT"); !quit {
		t.Fatal("dispatch did not signal quit")
	}

	leaveRe := regexp.MustCompile(`^RCV_CHATMSG \[\d{2}:\d{2}:\d{2}\] \*\*\* alice saiu da sala$`)
	if got := readLineOrTimeout(t, bobLines); !leaveRe.MatchString(got) {
		t.Fatalf("bob got %q", got)
	}
}
