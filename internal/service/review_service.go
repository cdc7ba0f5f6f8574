package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewhub/internal/auth"
	"reviewhub/internal/dto"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
)

var (
	ErrReviewExists   = errors.New("you have already reviewed this title")
	ErrReviewNotFound = errors.New("review not found")
	ErrNotOwner       = errors.New("only the author, a moderator or an admin may modify this")
)

type ReviewService interface {
	Create(ctx context.Context, ident auth.Identity, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Update(ctx context.Context, ident auth.Identity, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, ident auth.Identity, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	ratings    RatingCache
	logger     *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	titleRepo repository.TitleRepository,
	ratings RatingCache,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
		logger:     logger,
	}
}

// Create inserts the review and lets the unique (title_id, author_id)
// index arbitrate duplicates, including concurrent ones.
func (s *reviewService) Create(ctx context.Context, ident auth.Identity, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := s.titleExists(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID: titleID,
		Score:   req.Score,
		Authored: models.Authored{
			AuthorID: ident.UserID,
			Text:     req.Text,
		},
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	s.invalidateRating(ctx, titleID)

	// Reload with the author association for the response shape.
	review, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.titleExists(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		results = append(results, dto.ReviewFromModel(&reviews[i]))
	}
	return dto.NewPaginated(results, total, page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getScoped(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, ident auth.Identity, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.getScoped(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !auth.CanMutateObject(ident, review.AuthorID) {
		return nil, ErrNotOwner
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.invalidateRating(ctx, titleID)

	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, ident auth.Identity, titleID, reviewID int64) error {
	review, err := s.getScoped(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !auth.CanMutateObject(ident, review.AuthorID) {
		return ErrNotOwner
	}

	if err := s.reviewRepo.Delete(ctx, review); err != nil {
		return err
	}
	s.invalidateRating(ctx, titleID)
	return nil
}

func (s *reviewService) titleExists(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) getScoped(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	if err := s.titleExists(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) invalidateRating(ctx context.Context, titleID int64) {
	if err := s.ratings.Invalidate(ctx, titleID); err != nil {
		s.logger.Warn("rating cache invalidation failed", zap.Int64("title_id", titleID), zap.Error(err))
	}
}
