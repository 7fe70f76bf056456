package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pallab-BJIT/mid-term-project/internal/books"
	"github.com/pallab-BJIT/mid-term-project/pkg/db"
	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox"
	"github.com/pallab-BJIT/mid-term-project/pkg/outbox/payloads"
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service maintains per-book reviews and the derived book rating.
type Service interface {
	List(ctx context.Context, bookID uuid.UUID) (*BookReviews, error)
	Add(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID, input AddInput) (*BookReviews, error)
	Update(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID, input UpdateInput) (*BookReviews, error)
	Remove(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID) (*BookReviews, error)
}

type service struct {
	tx     txRunner
	repo   *Repository
	books  *books.Repository
	outbox outbox.Emitter
	logg   *logger.Logger
}

func NewService(tx txRunner, repo *Repository, bookRepo *books.Repository, emitter outbox.Emitter, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if bookRepo == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, books: bookRepo, outbox: emitter, logg: logg}, nil
}

func (s *service) List(ctx context.Context, bookID uuid.UUID) (*BookReviews, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, "book not found", "load book")
	}
	bucket, err := s.repo.FindByBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newBookReviews(bookID, book.Rating, nil), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}
	return newBookReviews(bookID, book.Rating, bucket.Reviews), nil
}

func (s *service) Add(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID, input AddInput) (*BookReviews, error) {
	if err := checkRating(&input.Rating); err != nil {
		return nil, err
	}

	var result *BookReviews
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.books.WithTx(tx).FindByID(ctx, bookID); err != nil {
			return notFoundOr(err, "book not found", "load book")
		}

		bucket, err := repo.FindByBook(ctx, bookID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			bucket = &models.ReviewBucket{BookID: bookID}
			if err := repo.CreateBucket(ctx, bucket); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review bucket")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
		}

		if entryFor(bucket, actor.UserID) != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this book")
		}
		review := &models.Review{
			BucketID: bucket.ID,
			UserID:   actor.UserID,
			Message:  input.Message,
			Rating:   input.Rating,
		}
		if err := repo.AddReview(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "you have already reviewed this book")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add review")
		}

		result, err = s.recompute(ctx, tx, actor, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logMutation(ctx, actor, bookID, "review added")
	return result, nil
}

func (s *service) Update(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID, input UpdateInput) (*BookReviews, error) {
	if input.Rating != nil {
		if err := checkRating(input.Rating); err != nil {
			return nil, err
		}
	}

	var result *BookReviews
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bucket, err := repo.FindByBook(ctx, bookID)
		if err != nil {
			return notFoundOr(err, "no reviews exist for this book", "load reviews")
		}
		entry := entryFor(bucket, actor.UserID)
		if entry == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "you have not reviewed this book")
		}

		entry.Message = input.Message
		if input.Rating != nil {
			entry.Rating = *input.Rating
		}
		if err := repo.UpdateReview(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
		}

		if input.Rating == nil {
			book, err := s.books.WithTx(tx).FindByID(ctx, bookID)
			if err != nil {
				return notFoundOr(err, "book not found", "load book")
			}
			result = newBookReviews(bookID, book.Rating, bucket.Reviews)
			return nil
		}
		result, err = s.recompute(ctx, tx, actor, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logMutation(ctx, actor, bookID, "review updated")
	return result, nil
}

func (s *service) Remove(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID) (*BookReviews, error) {
	var result *BookReviews
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bucket, err := repo.FindByBook(ctx, bookID)
		if err != nil {
			return notFoundOr(err, "no reviews exist for this book", "load reviews")
		}
		entry := entryFor(bucket, actor.UserID)
		if entry == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "you have not reviewed this book")
		}
		if err := repo.DeleteReview(ctx, entry.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}
		if len(bucket.Reviews) == 1 {
			if err := repo.DeleteBucket(ctx, bucket.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review bucket")
			}
		}
		result, err = s.recompute(ctx, tx, actor, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logMutation(ctx, actor, bookID, "review removed")
	return result, nil
}

// recompute reloads the bucket inside tx and stores the full mean on the book.
func (s *service) recompute(ctx context.Context, tx *gorm.DB, actor outbox.ActorRef, bookID uuid.UUID) (*BookReviews, error) {
	var entries []models.Review
	bucket, err := s.repo.WithTx(tx).FindByBook(ctx, bookID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload reviews")
	default:
		entries = bucket.Reviews
	}

	rating := MeanRating(entries)
	if err := s.books.WithTx(tx).UpdateRating(ctx, bookID, rating); err != nil {
		return nil, notFoundOr(err, "book not found", "update book rating")
	}
	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBookRatingChanged,
		AggregateType: enums.AggregateBook,
		AggregateID:   bookID,
		Actor:         &actor,
		Data: payloads.BookRatingChangedEvent{
			BookID:      bookID,
			Rating:      rating,
			ReviewCount: len(entries),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue rating event")
	}
	return newBookReviews(bookID, rating, entries), nil
}

func (s *service) logMutation(ctx context.Context, actor outbox.ActorRef, bookID uuid.UUID, msg string) {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"book_id": bookID.String(),
		"user_id": actor.UserID.String(),
	}), msg)
}

func entryFor(bucket *models.ReviewBucket, userID uuid.UUID) *models.Review {
	for i := range bucket.Reviews {
		if bucket.Reviews[i].UserID == userID {
			return &bucket.Reviews[i]
		}
	}
	return nil
}

func checkRating(rating *int) error {
	var problems validation.Problems
	if *rating < 1 || *rating > 5 {
		problems.Add("rating", "must be between 1 and 5")
	}
	return problems.Err()
}

func notFoundOr(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

