package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewhub/internal/cache"
	"reviewhub/internal/dto"
	"reviewhub/internal/models"
)

func newTitleService(
	titleRepo *MockTitleRepository,
	categoryRepo *MockCategoryRepository,
	genreRepo *MockGenreRepository,
	reviewRepo *MockReviewRepository,
	ratings *MockRatingCache,
) TitleService {
	return NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo, ratings, zap.NewNop())
}

func TestTitleCreate_Success(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	category := &models.Category{ID: 3, Name: "Movies", Slug: "movies"}
	genres := []models.Genre{{ID: 7, Name: "Drama", Slug: "drama"}}
	mockCategoryRepo.On("FindBySlug", mock.Anything, "movies").Return(category, nil)
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"drama"}).Return(genres, nil)
	mockTitleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Title).ID = 1
		}).
		Return(nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleRequest{
		Name:     "Interstellar",
		Year:     2014,
		Category: "movies",
		Genre:    []string{"drama"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Interstellar", resp.Name)
	assert.Equal(t, "movies", resp.Category.Slug)
	assert.Len(t, resp.Genre, 1)
	// A fresh title has no reviews, so no rating.
	assert.Nil(t, resp.Rating)
	mockTitleRepo.AssertExpectations(t)
}

func TestTitleCreate_YearInFuture(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleRequest{
		Name: "From The Future",
		Year: time.Now().Year() + 1,
	})

	assert.Equal(t, ErrYearInFuture, err)
	assert.Nil(t, resp)
	mockTitleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleCreate_UnknownCategory(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockCategoryRepo.On("FindBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleRequest{
		Name:     "X",
		Year:     2000,
		Category: "nope",
	})

	assert.Equal(t, ErrUnknownCategory, err)
	assert.Nil(t, resp)
}

func TestTitleCreate_UnknownGenre(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	// Only one of the two slugs resolves.
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"drama", "nope"}).
		Return([]models.Genre{{ID: 7, Slug: "drama"}}, nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleRequest{
		Name:  "X",
		Year:  2000,
		Genre: []string{"drama", "nope"},
	})

	assert.Equal(t, ErrUnknownGenre, err)
	assert.Nil(t, resp)
}

func TestTitleCreate_DuplicateGenreSlugs(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	// Repeated slugs collapse before the lookup; one row back is a match.
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"drama"}).
		Return([]models.Genre{{ID: 7, Name: "Drama", Slug: "drama"}}, nil)
	mockTitleRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Title).ID = 1
		}).
		Return(nil)

	resp, err := titleService.Create(context.Background(), dto.CreateTitleRequest{
		Name:  "X",
		Year:  2000,
		Genre: []string{"drama", "drama"},
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Genre, 1)
	mockGenreRepo.AssertExpectations(t)
}

func TestTitleUpdate_UnknownGenreRejectedBeforeWrite(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)
	mockGenreRepo.On("FindBySlugs", mock.Anything, []string{"nope"}).Return([]models.Genre{}, nil)

	name := "Dune (2021)"
	genre := []string{"nope"}
	resp, err := titleService.Update(context.Background(), 1, dto.UpdateTitleRequest{Name: &name, Genre: &genre})

	assert.Equal(t, ErrUnknownGenre, err)
	assert.Nil(t, resp)
	// The bad slug must reject the whole patch, so nothing gets written.
	mockTitleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockTitleRepo.AssertNotCalled(t, "ReplaceGenres", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleGet_RatingFromCache(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)
	mockRatings.On("Get", mock.Anything, int64(1)).Return(cache.Rating{Average: 9, Count: 2}, true, nil)

	resp, err := titleService.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Rating)
	assert.Equal(t, float64(9), *resp.Rating)
	// Cache hit, no aggregate query.
	mockReviewRepo.AssertNotCalled(t, "AverageScore", mock.Anything, mock.Anything)
}

func TestTitleGet_RatingCacheMiss(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)
	mockRatings.On("Get", mock.Anything, int64(1)).Return(cache.Rating{}, false, nil)
	// Scores 8 and 10 average to 9.
	mockReviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(float64(9), int64(2), nil)
	mockRatings.On("Set", mock.Anything, int64(1), cache.Rating{Average: 9, Count: 2}).Return(nil)

	resp, err := titleService.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Rating)
	assert.Equal(t, float64(9), *resp.Rating)
	mockRatings.AssertExpectations(t)
}

func TestTitleGet_NoReviewsNoRating(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)
	mockRatings.On("Get", mock.Anything, int64(1)).Return(cache.Rating{}, false, nil)
	mockReviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(float64(0), int64(0), nil)
	mockRatings.On("Set", mock.Anything, int64(1), cache.Rating{Average: 0, Count: 0}).Return(nil)

	resp, err := titleService.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, resp.Rating)
}

func TestTitleGet_CacheFailureDegradesToDatabase(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)
	mockRatings.On("Get", mock.Anything, int64(1)).Return(cache.Rating{}, false, assert.AnError)
	mockReviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(7.5, int64(4), nil)
	mockRatings.On("Set", mock.Anything, int64(1), cache.Rating{Average: 7.5, Count: 4}).Return(assert.AnError)

	resp, err := titleService.Get(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Rating)
	assert.Equal(t, 7.5, *resp.Rating)
}

func TestTitleUpdate_YearInFuture(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune", Year: 2021}, nil)

	badYear := time.Now().Year() + 5
	resp, err := titleService.Update(context.Background(), 1, dto.UpdateTitleRequest{Year: &badYear})

	assert.Equal(t, ErrYearInFuture, err)
	assert.Nil(t, resp)
	mockTitleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTitleDelete_InvalidatesRating(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
	mockRatings.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	err := titleService.Delete(context.Background(), 1)

	assert.NoError(t, err)
	mockRatings.AssertExpectations(t)
}

func TestTitleDelete_NotFound(t *testing.T) {
	mockTitleRepo := new(MockTitleRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	mockGenreRepo := new(MockGenreRepository)
	mockReviewRepo := new(MockReviewRepository)
	mockRatings := new(MockRatingCache)
	titleService := newTitleService(mockTitleRepo, mockCategoryRepo, mockGenreRepo, mockReviewRepo, mockRatings)

	mockTitleRepo.On("Delete", mock.Anything, int64(99)).Return(gorm.ErrRecordNotFound)

	err := titleService.Delete(context.Background(), 99)

	assert.Equal(t, ErrTitleNotFound, err)
}
