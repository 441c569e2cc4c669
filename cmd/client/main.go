package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
)

// Thin terminal client: reads stdin, writes protocol lines to the socket,
// renders responses. All chat semantics live on the server.

var (
	joinCmdRe = regexp.MustCompile(`^/join ([a-zA-Z0-9]{1,24})( (.+))?$`)
	nickCmdRe = regexp.MustCompile(`^/nick ([a-zA-Z0-9]{1,24})$`)
	msgCmdRe  = regexp.MustCompile(`^/msg ([a-zA-Z0-9]{1,24}) (.+)$`)
	logCmdRe  = regexp.MustCompile(`^/log( ([0-9]{1,2}))?$`)

	connRespRe = regexp.MustCompile(`^RCV_CONN (OK ([0-9]+)|ERR (.+))$`)
)

func main() {
	host := flag.String("host", "localhost", "Server hostname")
	port := flag.Int("port", 7000, "Server TCP port")
	flag.Parse()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	fmt.Printf("client> Conectando-se ao servidor %s...\n", addr)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error> Não foi possível conectar-se ao servidor: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Println("client> Conectado.")

	stdin := bufio.NewScanner(os.Stdin)
	socket := bufio.NewScanner(conn)

	if !handshake(conn, stdin, socket) {
		return
	}

	// Server lines are rendered as they arrive; stdin drives the send side.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for socket.Scan() {
			render(socket.Text())
		}
		fmt.Println("client> Conexão finalizada.")
	}()

	for stdin.Scan() {
		line := strings.TrimRight(stdin.Text(), "\r\n")
		quit := send(conn, line)
		if quit {
			break
		}
	}
	<-done
}

// handshake prompts for nick and name until the server accepts, then prints
// the MOTD stream. Returns false if the connection ended first.
func handshake(conn net.Conn, stdin, socket *bufio.Scanner) bool {
	for {
		fmt.Print("Entre com seu nick: ")
		if !stdin.Scan() {
			return false
		}
		nick := strings.TrimSpace(stdin.Text())

		fmt.Print("Entre com seu nome: ")
		if !stdin.Scan() {
			return false
		}
		name := strings.TrimSpace(stdin.Text())

		fmt.Fprintf(conn, "CONN %s %s\n", nick, name)

		if !socket.Scan() {
			return false
		}
		m := connRespRe.FindStringSubmatch(socket.Text())
		if m == nil {
			fmt.Printf("error> Resposta inesperada: %s\n", socket.Text())
			continue
		}
		if m[3] != "" {
			fmt.Printf("error> %s\n", m[3])
			continue
		}

		fmt.Printf("Conectado! Sua conexão é de número %s.\n", m[2])
		for socket.Scan() {
			if socket.Text() == "RCV_MOTD OK" {
				return true
			}
			fmt.Println(socket.Text())
		}
		return false
	}
}

// send translates one stdin line into a protocol command. Unprefixed text
// is a chat message. Returns true on /quit.
func send(conn net.Conn, line string) bool {
	switch {
	case strings.HasPrefix(line, "/list"):
		fmt.Fprintln(conn, "CMD_LISTCHN")
	case strings.HasPrefix(line, "/who"):
		fmt.Fprintln(conn, "CMD_WHOCHN")
	case strings.HasPrefix(line, "/info"):
		fmt.Fprintln(conn, "CMD_INFOCHN")
	case strings.HasPrefix(line, "/whoami"):
		fmt.Fprintln(conn, "CMD_WHOAMI")
	case joinCmdRe.MatchString(line):
		m := joinCmdRe.FindStringSubmatch(line)
		if m[3] != "" {
			fmt.Fprintf(conn, "CMD_JOINCHN %s %s\n", m[1], m[3])
		} else {
			fmt.Fprintf(conn, "CMD_JOINCHN %s\n", m[1])
		}
	case nickCmdRe.MatchString(line):
		fmt.Fprintf(conn, "CMD_NICK %s\n", nickCmdRe.FindStringSubmatch(line)[1])
	case msgCmdRe.MatchString(line):
		m := msgCmdRe.FindStringSubmatch(line)
		fmt.Fprintf(conn, "CMD_PVT %s %s\n", m[1], m[2])
	case logCmdRe.MatchString(line):
		m := logCmdRe.FindStringSubmatch(line)
		if m[2] != "" {
			fmt.Fprintf(conn, "CMD_VLOG %s\n", m[2])
		} else {
			fmt.Fprintln(conn, "CMD_VLOG")
		}
	case strings.HasPrefix(line, "/quit"):
		fmt.Println("client> Saindo...")
		fmt.Fprintln(conn, "QUIT")
		return true
	case strings.HasPrefix(line, "/help"):
		printHelp()
	case strings.HasPrefix(line, "/"):
		fmt.Println("error> Comando inválido!")
	case line != "":
		fmt.Fprintf(conn, "CMD_CHAT %s\n", line)
	}
	return false
}

// render prints one server line in human-readable form.
func render(line string) {
	verb, rest, _ := strings.Cut(line, " ")
	status, detail, _ := strings.Cut(rest, " ")

	switch verb {
	case "RCV_JOINCHN":
		if status == "OK" {
			fmt.Printf("client> Mudando para a sala '%s'\n", detail)
		} else {
			fmt.Printf("error> %s\n", detail)
		}
	case "RCV_LISTCHN":
		if status == "OK" {
			fmt.Println("client> Salas disponíveis:")
			printList(detail)
		}
	case "RCV_WHOCHN":
		if status == "OK" {
			fmt.Println("client> Usuarios na sala:")
			printList(detail)
		}
	case "RCV_INFOCHN":
		if status == "OK" {
			fmt.Printf("client> Você está na sala %s\n", detail)
		}
	case "RCV_NICK":
		if status == "OK" {
			fmt.Println("client> Nick mudado.")
		} else {
			fmt.Printf("error> %s\n", detail)
		}
	case "RCV_PVT":
		if status == "OK" {
			fmt.Println("client> Mensagem enviada.")
		} else {
			fmt.Printf("error> %s\n", detail)
		}
	case "RCV_WHOAMI":
		if status == "OK" {
			fmt.Printf("client> Você: %s\n", detail)
		}
	case "RCV_CHATLOG", "RCV_CHATMSG":
		fmt.Println(rest)
	case "RCV_CHAT":
		// Own chat line already echoed via RCV_CHATMSG.
	case "ERR_CMD":
		fmt.Printf("error> %s\n", rest)
	default:
		fmt.Println(line)
	}
}

func printList(joined string) {
	for _, entry := range strings.Split(joined, "|") {
		if entry != "" {
			fmt.Printf("client>    - %s\n", entry)
		}
	}
}

func printHelp() {
	fmt.Println("cliente> Ajuda!")
	fmt.Println("   * /list - Lista os canais")
	fmt.Println("   * /join <sala> [descricao] - Entra na sala, se nao existir cria uma nova")
	fmt.Println("   * /who - Mostra quem tá na sala atual")
	fmt.Println("   * /info - Mostra o nome da sala atual e sua descrição")
	fmt.Println("   * /whoami - Mostra sua própria identidade")
	fmt.Println("   * /log [n] - Mostra n linhas de histórico da sala (padrão 30)")
	fmt.Println("   * /msg <nick> <msg> - Manda uma mensagem privada para alguém")
	fmt.Println("   * /nick <novo_nick> - Muda o seu nick")
	fmt.Println("   * /quit - Sai do servidor")
}
