package quiz

import (
	"context"
	"crypto/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/emandor/learn2play_service/internal/model"
)

// Generator produces a quiz for a stored document path relative to the
// project root.
type Generator interface {
	Generate(ctx context.Context, docPath string) ([]model.QuizItem, error)
}

// SaveFunc matches (*fiber.Ctx).SaveFile.
type SaveFunc func(fh *multipart.FileHeader, path string) error

type Service struct {
	root      string
	uploadDir string
	gen       Generator

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewService(root, uploadDir string, gen Generator) *Service {
	return &Service{
		root:      root,
		uploadDir: uploadDir,
		gen:       gen,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// SaveUpload writes the file under <root>/<uploadDir>/<filename>, replacing
// any existing file of the same name, and returns the root-relative path.
func (s *Service) SaveUpload(fh *multipart.FileHeader, save SaveFunc) (string, error) {
	dir := filepath.Join(s.root, s.uploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	rel := filepath.Join(s.uploadDir, filepath.Base(fh.Filename))
	if err := save(fh, filepath.Join(s.root, rel)); err != nil {
		return "", err
	}
	return rel, nil
}

// NewFileID returns a ULID: time ordered, unique within the process.
func (s *Service) NewFileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Service) GenerateQuiz(ctx context.Context, rel string) ([]model.QuizItem, error) {
	return s.gen.Generate(ctx, rel)
}
