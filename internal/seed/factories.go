// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"poetryclub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPoem constructs a poem in the given moderation state without
// persisting it. Useful for batching.
func (f *Factory) BuildPoem(author *models.User, status models.PoemStatus, overrides ...func(*models.Poem)) *models.Poem {
	poem := &models.Poem{
		Title:    gofakeit.Sentence(4),
		Content:  poemBody(f.rng),
		AuthorID: author.ID,
		Status:   status,
	}

	if status == models.PoemRejected {
		reason := gofakeit.Sentence(6)
		poem.RejectionReason = &reason
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	poem.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(poem)
	}
	return poem
}

// CreatePoem constructs and persists a sample `models.Poem` for the given author.
func (f *Factory) CreatePoem(author *models.User, status models.PoemStatus, overrides ...func(*models.Poem)) (*models.Poem, error) {
	poem := f.BuildPoem(author, status, overrides...)

	if f.opts.DryRun {
		f.nextID++
		poem.ID = f.nextID
		log.Printf("[dry-run] CreatePoem: author=%d status=%s title=%q", poem.AuthorID, poem.Status, poem.Title)
		return poem, nil
	}

	if err := f.db.Create(poem).Error; err != nil {
		return nil, err
	}
	return poem, nil
}

// CreatePoemsBatch persists multiple poems in a single DB call when possible.
func (f *Factory) CreatePoemsBatch(poems []*models.Poem) error {
	if len(poems) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range poems {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePoemsBatch: %d poems (no DB write)", len(poems))
		return nil
	}
	return f.db.Create(&poems).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided poem authored by the provided user.
func (f *Factory) CreateComment(user *models.User, poem *models.Poem, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		UserID:  user.ID,
		PoemID:  poem.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply to the given parent comment.
func (f *Factory) CreateReply(user *models.User, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	return f.CreateComment(user, &models.Poem{ID: parent.PoemID}, append([]func(*models.Comment){
		func(c *models.Comment) { c.ParentID = &parent.ID },
	}, overrides...)...)
}

// CreateLike persists a like from `user` on `poem`.
func (f *Factory) CreateLike(user *models.User, poem *models.Poem) error {
	if f.opts.DryRun {
		return nil
	}
	like := &models.Like{
		UserID: user.ID,
		PoemID: poem.ID,
	}
	return f.db.Create(like).Error
}

var poemOpeners = []string{
	"The river keeps what the mountain forgets",
	"At dusk the streetlights rehearse the moon",
	"My grandmother's hands were maps of wheat",
	"Winter writes its will on the windowpane",
	"Every harbor is a promise half kept",
	"The kettle sings what the kitchen knows",
}

func poemBody(r *rand.Rand) string {
	lines := r.Intn(10) + 4
	body := poemOpeners[r.Intn(len(poemOpeners))] + "\n"
	for i := 1; i < lines; i++ {
		body += gofakeit.Sentence(r.Intn(5)+3) + "\n"
	}
	return body
}
