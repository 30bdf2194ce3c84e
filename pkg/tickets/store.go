package tickets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes rendered ticket assets under the media root and builds the
// public URLs for them.
type Store struct {
	Root    string
	BaseURL string
}

func NewStore(root, baseURL string) *Store {
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Store) PNGPath(ticketID string) string {
	return filepath.Join("tickets", "png", fmt.Sprintf("ticket_%s.png", ticketID))
}

func (s *Store) QRPath(ticketID string) string {
	return filepath.Join("tickets", "qr_codes", fmt.Sprintf("qr_%s.png", ticketID))
}

// SaveTicket writes the composed ticket PNG and returns its media-relative path.
func (s *Store) SaveTicket(ticketID string, data []byte) (string, error) {
	rel := s.PNGPath(ticketID)
	if err := s.write(rel, data); err != nil {
		return "", err
	}
	return rel, nil
}

// SaveQR writes the standalone QR PNG and returns its media-relative path.
func (s *Store) SaveQR(ticketID string, data []byte) (string, error) {
	rel := s.QRPath(ticketID)
	if err := s.write(rel, data); err != nil {
		return "", err
	}
	return rel, nil
}

// URL builds the public URL for a media-relative path.
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.BaseURL + "/" + filepath.ToSlash(rel)
}

func (s *Store) write(rel string, data []byte) error {
	abs := filepath.Join(s.Root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("media dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
