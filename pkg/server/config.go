package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ServerConfig holds the flattened runtime configuration.
type ServerConfig struct {
	TCPPort        int
	HTTPPort       int
	SSHPort        int
	SSHHostKeyPath string
	MOTDPath       string
	SeedRooms      []SeedRoom
}

// DefaultConfig returns the default runtime configuration.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		TCPPort:        7000,
		HTTPPort:       0, // WebSocket/metrics listener disabled unless configured
		SSHPort:        0, // SSH listener disabled unless configured
		SSHHostKeyPath: "~/.chatradical/ssh_host_key",
		MOTDPath:       "motd.txt",
		SeedRooms:      defaultSeedRooms(),
	}
}

// TOMLConfig represents the structure of the server config file.
type TOMLConfig struct {
	Server ServerSection `toml:"server"`
	Rooms  RoomsSection  `toml:"rooms"`
}

type ServerSection struct {
	TCPPort    int    `toml:"tcp_port"`
	HTTPPort   int    `toml:"http_port"`
	SSHPort    int    `toml:"ssh_port"`
	SSHHostKey string `toml:"ssh_host_key"`
	MOTDPath   string `toml:"motd_path"`
}

type RoomsSection struct {
	SeedRooms []SeedRoom `toml:"seed_rooms"`
}

// SeedRoom is a room created at server start. Seeded rooms may be joined
// without a description.
type SeedRoom struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// defaultSeedRooms mirrors the original server's four pre-seeded rooms, each
// described by its own name. "default" must always be present: it is where
// every handshake lands.
func defaultSeedRooms() []SeedRoom {
	return []SeedRoom{
		{Name: "default", Description: "default"},
		{Name: "Linux", Description: "Linux"},
		{Name: "Ruby", Description: "Ruby"},
		{Name: "FIAP", Description: "FIAP"},
	}
}

// DefaultTOMLConfig returns the default config file contents.
func DefaultTOMLConfig() TOMLConfig {
	def := DefaultConfig()
	return TOMLConfig{
		Server: ServerSection{
			TCPPort:    def.TCPPort,
			HTTPPort:   def.HTTPPort,
			SSHPort:    def.SSHPort,
			SSHHostKey: def.SSHHostKeyPath,
			MOTDPath:   def.MOTDPath,
		},
		Rooms: RoomsSection{
			SeedRooms: defaultSeedRooms(),
		},
	}
}

// LoadConfig loads configuration from a TOML file, creating a default file
// if none exists yet.
func LoadConfig(path string) (TOMLConfig, error) {
	path, err := expandHome(path)
	if err != nil {
		return TOMLConfig{}, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := DefaultTOMLConfig()
		// Failure to write the default file is not fatal; the server can
		// still run on defaults.
		if err := writeDefaultConfig(path, config); err != nil {
			errorLog.Printf("could not write default config to %s: %v", path, err)
		}
		return config, nil
	}

	var config TOMLConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return TOMLConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// writeDefaultConfig writes the default config to a file.
func writeDefaultConfig(path string, config TOMLConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	header := `# ChatRadical Server Configuration
# This file was auto-generated with default values.
# Edit as needed and restart the server for changes to take effect.

`
	if _, err := f.WriteString(header); err != nil {
		return err
	}

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ToServerConfig converts a TOMLConfig to the flattened runtime config.
// Zero values fall back to defaults; the seed list always includes the
// "default" room.
func (c *TOMLConfig) ToServerConfig() ServerConfig {
	cfg := DefaultConfig()

	if c.Server.TCPPort != 0 {
		cfg.TCPPort = c.Server.TCPPort
	}
	if c.Server.HTTPPort != 0 {
		cfg.HTTPPort = c.Server.HTTPPort
	}
	if c.Server.SSHPort != 0 {
		cfg.SSHPort = c.Server.SSHPort
	}
	if strings.TrimSpace(c.Server.SSHHostKey) != "" {
		cfg.SSHHostKeyPath = c.Server.SSHHostKey
	}
	if strings.TrimSpace(c.Server.MOTDPath) != "" {
		cfg.MOTDPath = c.Server.MOTDPath
	}
	if len(c.Rooms.SeedRooms) > 0 {
		cfg.SeedRooms = c.Rooms.SeedRooms
	}

	if !hasDefaultRoom(cfg.SeedRooms) {
		cfg.SeedRooms = append([]SeedRoom{{Name: "default", Description: "default"}}, cfg.SeedRooms...)
	}

	return cfg
}

func hasDefaultRoom(rooms []SeedRoom) bool {
	for _, r := range rooms {
		if r.Name == "default" {
			return true
		}
	}
	return false
}

// expandHome expands a leading ~/ in a path.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	return path, nil
}
