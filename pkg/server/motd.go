package server

import (
	"os"
	"strings"
)

// DefaultMOTD is the greeting used when the welcome file is unavailable.
const DefaultMOTD = "Bem vindo ao ChatRadical!"

// LoadMOTD returns the welcome lines streamed after a successful handshake.
// The file is re-read on every handshake so it can be edited without a
// restart, matching the original server. A missing or unreadable file falls
// back to the fixed default greeting; it never fails the handshake.
func LoadMOTD(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		errorLog.Printf("could not read MOTD file %s: %v", path, err)
		return []string{DefaultMOTD}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return []string{DefaultMOTD}
	}
	return strings.Split(text, "\n")
}
