package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/dto"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
)

var (
	ErrTitleNotFound   = errors.New("title not found")
	ErrYearInFuture    = errors.New("year cannot be in the future")
	ErrUnknownCategory = errors.New("unknown category slug")
	ErrUnknownGenre    = errors.New("unknown genre slug")
)

// RatingCache is the read-through cache in front of the review score
// aggregate. cache.RatingCache implements it.
type RatingCache interface {
	Get(ctx context.Context, titleID int64) (cache.Rating, bool, error)
	Set(ctx context.Context, titleID int64, rating cache.Rating) error
	Invalidate(ctx context.Context, titleID int64) error
}

type TitleService interface {
	Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	ratings      RatingCache
	logger       *zap.Logger
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	ratings RatingCache,
	logger *zap.Logger,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		ratings:      ratings,
		logger:       logger,
	}
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	if req.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownCategory
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(title, nil)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if *req.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.FindBySlug(ctx, *req.Category)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUnknownCategory
				}
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	// Genre slugs are resolved before any write so a bad slug can't leave
	// the row half-updated.
	var genres []models.Genre
	if req.Genre != nil {
		genres, err = s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if req.Genre != nil {
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	rating, err := s.ratingFor(ctx, title.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.TitleFromModel(title, rating)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	if err := s.ratings.Invalidate(ctx, id); err != nil {
		s.logger.Warn("rating cache invalidation failed", zap.Int64("title_id", id), zap.Error(err))
	}
	return nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	rating, err := s.ratingFor(ctx, title.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.TitleFromModel(title, rating)
	return &resp, nil
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		rating, err := s.ratingFor(ctx, titles[i].ID)
		if err != nil {
			return nil, err
		}
		results = append(results, dto.TitleFromModel(&titles[i], rating))
	}
	return dto.NewPaginated(results, total, page, pageSize), nil
}

// resolveGenres maps genre slugs to rows. Repeated slugs in the request
// collapse to one; any slug that doesn't resolve is ErrUnknownGenre.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	uniq := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		uniq = append(uniq, slug)
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(uniq) {
		return nil, ErrUnknownGenre
	}
	return genres, nil
}

// ratingFor reads the cached aggregate, falling back to the AVG query and
// refilling the cache. Cache failures degrade to the database, never to an
// error response.
func (s *titleService) ratingFor(ctx context.Context, titleID int64) (*float64, error) {
	if rating, ok, err := s.ratings.Get(ctx, titleID); err != nil {
		s.logger.Warn("rating cache read failed", zap.Int64("title_id", titleID), zap.Error(err))
	} else if ok {
		if rating.Count == 0 {
			return nil, nil
		}
		return &rating.Average, nil
	}

	avg, count, err := s.reviewRepo.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	if err := s.ratings.Set(ctx, titleID, cache.Rating{Average: avg, Count: count}); err != nil {
		s.logger.Warn("rating cache write failed", zap.Int64("title_id", titleID), zap.Error(err))
	}
	if count == 0 {
		return nil, nil
	}
	return &avg, nil
}
