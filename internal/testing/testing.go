// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
)

var _ services.Service = (*MockService)(nil)

// MockService is an in-memory [services.Service] for one platform.
//
// Searches match Catalog by ISRC and TextCatalog by "title|artist" as passed by the caller.
type MockService struct {
	Tag         models.Platform
	Liked       []models.RawTrack
	Lists       []models.Playlist
	Tracks      map[string][]models.RawTrack
	Catalog     map[string]*services.Match
	TextCatalog map[string]*services.Match
	Err         error // returned by every read when set

	LikedAdded  []string
	Created     []string
	TracksAdded map[string][]string
}

// NewMockService creates an empty [MockService] for p.
func NewMockService(p models.Platform) *MockService {
	return &MockService{
		Tag:         p,
		Tracks:      make(map[string][]models.RawTrack),
		Catalog:     make(map[string]*services.Match),
		TextCatalog: make(map[string]*services.Match),
		TracksAdded: make(map[string][]string),
	}
}

func (m *MockService) Platform() models.Platform { return m.Tag }
func (m *MockService) Name() string              { return m.Tag.Title() }

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) SearchISRC(ctx context.Context, isrc string) (*services.Match, error) {
	if match, ok := m.Catalog[isrc]; ok {
		return match, nil
	}
	return nil, shared.ErrTrackNotFound
}

func (m *MockService) SearchText(ctx context.Context, title, artist string) (*services.Match, error) {
	if match, ok := m.TextCatalog[title+"|"+artist]; ok {
		return match, nil
	}
	return nil, shared.ErrTrackNotFound
}

func (m *MockService) LikedTracks(ctx context.Context) ([]models.RawTrack, error) {
	return m.Liked, m.Err
}

func (m *MockService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.Lists, m.Err
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	return m.Tracks[playlistID], m.Err
}

func (m *MockService) AddLiked(ctx context.Context, nativeID string) error {
	m.LikedAdded = append(m.LikedAdded, nativeID)
	return nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	m.Created = append(m.Created, name)
	playlist := models.Playlist{Platform: m.Tag, ID: "new-" + name, Name: name, Description: description}
	m.Lists = append(m.Lists, playlist)
	return &playlist, nil
}

func (m *MockService) AddTrack(ctx context.Context, playlistID, nativeID string) error {
	m.TracksAdded[playlistID] = append(m.TracksAdded[playlistID], nativeID)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustOpenDB opens an in-memory database with every migration applied. It is closed on cleanup.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
