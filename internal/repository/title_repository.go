package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"reviewhub/internal/models"
)

// TitleFilter carries the optional query predicates of the title list
// endpoint. All set predicates combine with AND.
type TitleFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
}

type TitleRepository interface {
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Omit("Genres").Save(t).Error; err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Genres").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List applies the optional filters and returns one page ordered by name.
// The count and page queries are built from separate roots: a finisher on a
// shared chain leaves its select list behind (Distinct poisons Statement.Selects),
// which would break the follow-up query.
func (r *titleRepository) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var total int64
	if err := r.filtered(r.db.WithContext(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	var list []models.Title
	err := r.pageQuery(r.db.WithContext(ctx), f, page, pageSize).
		Preload("Category").
		Preload("Genres").
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

// filtered applies the TitleFilter predicates. The genre predicate is an IN
// subquery rather than a join so result rows never need deduplication.
func (r *titleRepository) filtered(db *gorm.DB, f TitleFilter) *gorm.DB {
	q := db.Model(&models.Title{})
	if f.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		q = q.Where(
			"titles.id IN (SELECT tg.title_id FROM title_genres tg JOIN genres ON genres.id = tg.genre_id WHERE genres.slug = ?)",
			f.Genre,
		)
	}
	return q
}

// pageQuery is the find half of List. titles.* keeps the select unambiguous
// when the category join is in play.
func (r *titleRepository) pageQuery(db *gorm.DB, f TitleFilter, page, pageSize int) *gorm.DB {
	offset := (page - 1) * pageSize
	return r.filtered(db, f).
		Select("titles.*").
		Order("titles.name asc").
		Limit(pageSize).
		Offset(offset)
}

// ReplaceGenres rewrites the title's genre set.
func (r *titleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres); err != nil {
		return fmt.Errorf("replace title genres: %w", err)
	}
	t.Genres = genres
	return nil
}
