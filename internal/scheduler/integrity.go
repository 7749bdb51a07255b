// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/database"
	authorsdb "github.com/mrudenko/bookcatalog/internal/database/authors"
	booksdb "github.com/mrudenko/bookcatalog/internal/database/books"
)

// Report summarizes one referential integrity audit pass.
type Report struct {
	BooksScanned     int `json:"books_scanned"`
	DanglingAuthors  int `json:"dangling_authors"`   // book lists an author id that does not exist
	MissingBackRefs  int `json:"missing_back_refs"`  // book lists an author, no back-reference row
	OrphanedBackRefs int `json:"orphaned_back_refs"` // back-reference row with no matching forward reference
	Repaired         bool `json:"repaired"`
}

// IntegrityScheduler periodically audits the symmetry between book author
// lists and author back-references. One-sided references can only appear
// through out-of-band writes; the audit surfaces them and, when repair is
// enabled, fixes the back-reference side inside one transaction. Dangling
// author ids are reported only: inventing or dropping a book's
// user-supplied author list is not this job's call.
type IntegrityScheduler struct {
	db      *database.Database
	books   *booksdb.Repository
	authors *authorsdb.Repository
	log     *zap.SugaredLogger
	cfg     config.Integrity

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

func NewIntegrityScheduler(
	db *database.Database,
	books *booksdb.Repository,
	authors *authorsdb.Repository,
	log *zap.SugaredLogger,
	cfg config.Integrity,
) *IntegrityScheduler {
	return &IntegrityScheduler{
		db:      db,
		books:   books,
		authors: authors,
		log:     log,
		cfg:     cfg,
		cron:    cron.New(),
	}
}

// Start schedules the audit if enabled.
func (s *IntegrityScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		s.log.Infow("integrity audit disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		report, err := s.RunAudit(ctx)
		if err != nil {
			s.log.Errorw("integrity audit failed", "error", err)
			return
		}
		if report.DanglingAuthors > 0 || report.MissingBackRefs > 0 || report.OrphanedBackRefs > 0 {
			s.log.Warnw("integrity audit found inconsistencies",
				"books_scanned", report.BooksScanned,
				"dangling_authors", report.DanglingAuthors,
				"missing_back_refs", report.MissingBackRefs,
				"orphaned_back_refs", report.OrphanedBackRefs,
				"repaired", report.Repaired,
			)
		} else {
			s.log.Infow("integrity audit clean", "books_scanned", report.BooksScanned)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule integrity audit '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	s.log.Infow("integrity audit scheduled", "schedule", s.cfg.Schedule, "repair", s.cfg.Repair)
	return nil
}

// Stop halts the cron scheduler and waits for a running job to finish.
func (s *IntegrityScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
}

// RunAudit executes one audit pass. The scan and any repairs run in a
// single transaction so the audit observes a consistent snapshot and its
// fixes land atomically.
func (s *IntegrityScheduler) RunAudit(ctx context.Context) (Report, error) {
	var report Report
	err := s.db.RunInTransaction(ctx, func(tx *gorm.DB) error {
		books, err := s.books.WithTx(tx).List(booksdb.Filter{}, 0, -1, "id ASC")
		if err != nil {
			return err
		}
		authorRepo := s.authors.WithTx(tx)
		authorIDs, err := authorRepo.AllIDs()
		if err != nil {
			return err
		}
		refs, err := authorRepo.AllRefs()
		if err != nil {
			return err
		}

		report.BooksScanned = len(books)
		knownAuthors := lo.SliceToMap(authorIDs, func(id string) (string, struct{}) { return id, struct{}{} })
		backRefs := map[[2]string]struct{}{}
		for _, ref := range refs {
			backRefs[[2]string{ref.AuthorID, ref.BookID}] = struct{}{}
		}

		// Forward pass: every (book, author) pair must have a back-reference.
		forward := map[[2]string]struct{}{}
		missingByBook := map[string][]string{}
		for i := range books {
			book := &books[i]
			for _, authorID := range book.AuthorIDs {
				if _, ok := knownAuthors[authorID]; !ok {
					report.DanglingAuthors++
					s.log.Warnw("dangling author reference", "book", book.ID, "author", authorID)
					continue
				}
				forward[[2]string{authorID, book.ID}] = struct{}{}
				if _, ok := backRefs[[2]string{authorID, book.ID}]; !ok {
					report.MissingBackRefs++
					missingByBook[book.ID] = append(missingByBook[book.ID], authorID)
				}
			}
		}

		// Reverse pass: every back-reference must be backed by a forward one.
		orphanedByBook := map[string][]string{}
		for _, ref := range refs {
			if _, ok := forward[[2]string{ref.AuthorID, ref.BookID}]; !ok {
				report.OrphanedBackRefs++
				orphanedByBook[ref.BookID] = append(orphanedByBook[ref.BookID], ref.AuthorID)
			}
		}

		if !s.cfg.Repair {
			return nil
		}
		for bookID, ids := range missingByBook {
			if err := authorRepo.AddBookRefs(bookID, ids); err != nil {
				return err
			}
		}
		for bookID, ids := range orphanedByBook {
			if err := authorRepo.RemoveBookRefs(bookID, ids); err != nil {
				return err
			}
		}
		report.Repaired = report.MissingBackRefs > 0 || report.OrphanedBackRefs > 0
		return nil
	})
	return report, err
}
