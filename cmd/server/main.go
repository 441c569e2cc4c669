package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eitchugo/chatradical/pkg/server"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	configPath := flag.String("config", "~/.chatradical/config.toml", "Path to config file")
	port := flag.Int("port", 0, "TCP port to listen on (overrides config)")
	httpPort := flag.Int("http-port", 0, "HTTP port for WebSocket/metrics (overrides config)")
	sshPort := flag.Int("ssh-port", 0, "SSH port (overrides config)")
	motdPath := flag.String("motd", "", "Path to MOTD file (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Printf("ChatRadical Server %s\n", Version)
		os.Exit(0)
	}

	config, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command-line flags override the config file
	if *port != 0 {
		config.Server.TCPPort = *port
	}
	if *httpPort != 0 {
		config.Server.HTTPPort = *httpPort
	}
	if *sshPort != 0 {
		config.Server.SSHPort = *sshPort
	}
	if *motdPath != "" {
		config.Server.MOTDPath = *motdPath
	}

	serverConfig := config.ToServerConfig()

	srv, err := server.NewServer(serverConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if *debug {
		server.EnableDebugLogging()
		log.Printf("Debug logging enabled")
	}

	srv.SetMetrics(server.NewMetrics())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("ChatRadical server %s started", Version)
	log.Printf("Available connection methods:")
	log.Printf("  - Line protocol (TCP): port %d", serverConfig.TCPPort)
	if serverConfig.SSHPort > 0 {
		log.Printf("  - SSH: port %d", serverConfig.SSHPort)
	}
	if serverConfig.HTTPPort > 0 {
		log.Printf("  - WebSocket: port %d (ws://server:%d/ws)", serverConfig.HTTPPort, serverConfig.HTTPPort)
	}

	log.Printf("Seeded rooms (%d):", len(serverConfig.SeedRooms))
	for _, room := range serverConfig.SeedRooms {
		log.Printf("  - %s: %s", room.Name, room.Description)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down server...")
	srv.Stop()
	log.Println("Server stopped")
}
