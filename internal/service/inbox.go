package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/listenupapp/shelfmatch/internal/csvimport"
	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/ingest"
	"github.com/listenupapp/shelfmatch/internal/watcher"
)

// Inbox subdirectories that receive files once they have been handled.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Ingester accepts batches of rows.
type Ingester interface {
	Ingest(ctx context.Context, rows []domain.Row) (*ingest.Result, error)
}

// InboxService ingests CSV files dropped into a directory. Each settled file
// is parsed and ingested as one batch, then moved to processed/ on success
// or failed/ otherwise.
type InboxService struct {
	ingester Ingester
	watcher  *watcher.Watcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewInboxService creates an inbox service over an existing watcher.
func NewInboxService(ingester Ingester, w *watcher.Watcher, logger *slog.Logger) (*InboxService, error) {
	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.Dir(), sub), 0o750); err != nil {
			return nil, fmt.Errorf("create inbox %s dir: %w", sub, err)
		}
	}
	return &InboxService{
		ingester: ingester,
		watcher:  w,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run processes watcher events until ctx is cancelled.
func (s *InboxService) Run(ctx context.Context) {
	go s.watcher.Start(ctx) //nolint:errcheck // Start only returns on cancellation

	s.logger.Info("inbox watching", "dir", s.watcher.Dir())
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.watcher.Events():
			s.ProcessFile(ctx, event.Path)
		case err := <-s.watcher.Errors():
			s.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// ProcessFile ingests one file and moves it out of the inbox. It returns the
// batch result, or nil when the file could not be ingested.
func (s *InboxService) ProcessFile(ctx context.Context, path string) *ingest.Result {
	result, err := s.ingestFile(ctx, path)
	dest := ProcessedDir
	if err != nil {
		dest = FailedDir
		s.logger.Error("inbox file failed", "file", filepath.Base(path), "error", err)
	} else {
		s.logger.Info("inbox file ingested",
			"file", filepath.Base(path),
			"batch_id", result.Summary.BatchID,
			"added", result.Summary.Added,
			"skipped", result.Summary.Skipped,
			"conflicted", result.Summary.Conflicted,
			"rejected", result.Summary.Rejected,
		)
	}

	moved, moveErr := s.move(path, dest)
	if moveErr != nil {
		s.logger.Error("failed to move inbox file", "file", path, "dest", dest, "error", moveErr)
	} else {
		s.logger.Debug("inbox file moved", "to", moved)
	}
	return result
}

func (s *InboxService) ingestFile(ctx context.Context, path string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, header, err := csvimport.Parse(f)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("inbox file parsed", "file", filepath.Base(path), "rows", len(rows), "header", header.String())

	return s.ingester.Ingest(ctx, rows)
}

// move renames path into the given inbox subdirectory, prefixing a timestamp
// so repeated uploads of the same name never overwrite each other.
func (s *InboxService) move(path, sub string) (string, error) {
	base := filepath.Base(path)
	stamp := s.now().UTC().Format("20060102T150405.000")
	stamp = strings.ReplaceAll(stamp, ".", "")
	dest := filepath.Join(filepath.Dir(path), sub, stamp+"-"+base)
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}
