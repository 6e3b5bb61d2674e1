package repository

import (
	"context"
	"errors"

	"poetryclub/internal/cache"
	"poetryclub/internal/models"

	"gorm.io/gorm"
)

// PoemListOptions narrows and pages a poem listing.
type PoemListOptions struct {
	Search        string
	Sort          string
	Status        models.PoemStatus
	Limit         int
	Offset        int
	CurrentUserID uint
}

// PoemRepository defines the interface for poem data operations
type PoemRepository interface {
	Create(ctx context.Context, poem *models.Poem) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Poem, error)
	ListPublic(ctx context.Context, opts PoemListOptions) ([]*models.Poem, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, opts PoemListOptions, includeDrafts bool) ([]*models.Poem, int64, error)
	ListByStatus(ctx context.Context, status models.PoemStatus, limit, offset int) ([]*models.Poem, int64, error)
	Update(ctx context.Context, poem *models.Poem) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	IsLiked(ctx context.Context, userID, poemID uint) (bool, error)
	Like(ctx context.Context, userID, poemID uint) (bool, error)
	Unlike(ctx context.Context, userID, poemID uint) (bool, error)
}

// poemRepository implements PoemRepository
type poemRepository struct {
	db *gorm.DB
}

// NewPoemRepository creates a new poem repository
func NewPoemRepository(db *gorm.DB) PoemRepository {
	return &poemRepository{db: db}
}

func (r *poemRepository) Create(ctx context.Context, poem *models.Poem) error {
	if err := r.db.WithContext(ctx).Create(poem).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *poemRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Poem, error) {
	var poem models.Poem

	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cache entry; liked is always false for them.
		err = cache.Aside(ctx, cache.PoemKey(id), &poem, cache.PoemTTL, func() error {
			return r.applyPoemDetails(r.db.WithContext(ctx), 0).
				Preload("Author").
				First(&poem, id).Error
		})
	} else {
		err = r.applyPoemDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Author").
			First(&poem, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Poem", id)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &poem, nil
}

func (r *poemRepository) ListPublic(ctx context.Context, opts PoemListOptions) ([]*models.Poem, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Poem{}).
		Where("is_draft = ?", false).
		Where("status = ?", models.PoemApproved)

	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		base = base.Where("title ILIKE ? OR content ILIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var poems []*models.Poem
	q := r.applyPoemDetails(base, opts.CurrentUserID).Preload("Author")
	if err := r.applySort(q, opts.Sort).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&poems).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return poems, total, nil
}

func (r *poemRepository) ListByAuthor(ctx context.Context, authorID uint, opts PoemListOptions, includeDrafts bool) ([]*models.Poem, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Poem{}).
		Where("author_id = ?", authorID)
	if !includeDrafts {
		base = base.Where("is_draft = ?", false).
			Where("status = ?", models.PoemApproved)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var poems []*models.Poem
	if err := r.applyPoemDetails(base, opts.CurrentUserID).
		Preload("Author").
		Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&poems).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return poems, total, nil
}

// ListByStatus feeds the admin moderation queue. Drafts never enter it.
func (r *poemRepository) ListByStatus(ctx context.Context, status models.PoemStatus, limit, offset int) ([]*models.Poem, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Poem{}).
		Where("is_draft = ?", false).
		Where("status = ?", status)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var poems []*models.Poem
	if err := r.applyPoemDetails(base, 0).
		Preload("Author").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&poems).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return poems, total, nil
}

// applySort appends the ORDER BY clause for the requested sort type.
// likes_count and comments_count are SELECT aliases from applyPoemDetails;
// PostgreSQL allows referencing them in ORDER BY within the same query level.
func (r *poemRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "top":
		return db.Order("likes_count DESC, created_at DESC")
	case "discussed":
		return db.Order("comments_count DESC, created_at DESC")
	case "hot":
		return db.Order(gorm.Expr(
			"(likes_count + comments_count * 2.0) / POWER(EXTRACT(EPOCH FROM (NOW() - poems.created_at)) / 3600.0 + 2, 1.5) DESC",
		))
	default: // "new" and anything unrecognized
		return db.Order("created_at DESC")
	}
}

// applyPoemDetails adds subqueries to fetch counts and liked status in a single query.
func (r *poemRepository) applyPoemDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "poems.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.poem_id = poems.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.poem_id = poems.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.poem_id = poems.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *poemRepository) Update(ctx context.Context, poem *models.Poem) error {
	if err := r.db.WithContext(ctx).Save(poem).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePoem(ctx, poem.ID)
	return nil
}

func (r *poemRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Poem{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePoem(ctx, id)
	return nil
}

func (r *poemRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Poem{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *poemRepository) IsLiked(ctx context.Context, userID, poemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND poem_id = ?", userID, poemID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Like inserts the like row. Returns false when the like already existed;
// ON CONFLICT DO NOTHING keeps concurrent double-likes from erroring.
func (r *poemRepository) Like(ctx context.Context, userID, poemID uint) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, poem_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (poem_id, user_id) DO NOTHING`,
		userID, poemID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePoem(ctx, poemID)
	}
	return result.RowsAffected > 0, nil
}

// Unlike removes the like row. Returns false when there was nothing to remove.
func (r *poemRepository) Unlike(ctx context.Context, userID, poemID uint) (bool, error) {
	// Hard delete the like record (not soft delete)
	result := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND poem_id = ?", userID, poemID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePoem(ctx, poemID)
	}
	return result.RowsAffected > 0, nil
}
