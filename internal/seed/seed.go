package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"poetryclub/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPoems    int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	MaxDays     int
	BatchSize   int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts, rng: rng}
}

// statusDistribution describes how seeded poems spread across moderation
// states, in percent. Drafts are carved out of the pending share.
type statusDistribution struct {
	Approved int
	Pending  int
	Rejected int
	Draft    int
}

var defaultDistribution = statusDistribution{Approved: 60, Pending: 20, Rejected: 10, Draft: 10}

// computeCounts splits total across the distribution. Rounding leftovers
// land on the approved bucket so the sum always equals total.
func computeCounts(total int, d statusDistribution) (approved, pending, rejected, drafts int) {
	pending = total * d.Pending / 100
	rejected = total * d.Rejected / 100
	drafts = total * d.Draft / 100
	approved = total - pending - rejected - drafts
	return approved, pending, rejected, drafts
}

// ClearAll removes all seeded rows and resets identity counters.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, poems, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// EnsureAdmin upserts the built-in curator account so a fresh database
// always has an administrator to review the queue with.
func EnsureAdmin(db *gorm.DB) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: "curator",
		Email:    "curator@example.com",
		Password: string(hashedPassword),
		Bio:      "Keeper of the review queue.",
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "status", "updated_at"}),
	}).Create(&admin).Error
}

// SeedCommunity creates count users. A few fixed accounts come first so
// logins stay predictable between reseeds.
func (s *Seeder) SeedCommunity(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	if count >= 2 {
		for _, name := range []string{"li_bai", "emilyd"} {
			fixed := name
			user, err := s.factory.CreateUser(func(u *models.User) {
				u.Username = fixed
				u.Email = fmt.Sprintf("%s@example.com", fixed)
				u.Bio = "One of the founding poets."
			})
			if err != nil {
				log.Printf("Failed to create user %s: %v", fixed, err)
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user #%d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

// SeedPoems creates count poems spread across authors and moderation states.
func (s *Seeder) SeedPoems(users []*models.User, count int) ([]*models.Poem, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author poems")
	}

	approved, pending, rejected, drafts := computeCounts(count, defaultDistribution)
	plan := make([]models.PoemStatus, 0, count)
	for i := 0; i < approved; i++ {
		plan = append(plan, models.PoemApproved)
	}
	for i := 0; i < pending; i++ {
		plan = append(plan, models.PoemPending)
	}
	for i := 0; i < rejected; i++ {
		plan = append(plan, models.PoemRejected)
	}
	draftStart := len(plan)
	for i := 0; i < drafts; i++ {
		plan = append(plan, models.PoemPending)
	}

	poems := make([]*models.Poem, 0, count)
	batch := make([]*models.Poem, 0, s.opts.BatchSize)
	for i, status := range plan {
		author := users[s.rng.Intn(len(users))]
		isDraft := i >= draftStart
		poem := s.factory.BuildPoem(author, status, func(p *models.Poem) {
			p.IsDraft = isDraft
		})
		batch = append(batch, poem)

		if len(batch) >= s.opts.BatchSize {
			if err := s.factory.CreatePoemsBatch(batch); err != nil {
				return nil, err
			}
			poems = append(poems, batch...)
			batch = batch[:0]
		}
	}
	if err := s.factory.CreatePoemsBatch(batch); err != nil {
		return nil, err
	}
	poems = append(poems, batch...)

	return poems, nil
}

// SeedEngagement scatters comments, replies, and likes over the approved
// public poems. Hidden poems get none, matching what readers can reach.
func (s *Seeder) SeedEngagement(users []*models.User, poems []*models.Poem) (int, error) {
	if len(users) == 0 {
		return 0, fmt.Errorf("no users to engage with poems")
	}

	created := 0
	for _, poem := range poems {
		if poem.IsDraft || poem.Status != models.PoemApproved {
			continue
		}

		numComments := s.rng.Intn(5)
		var thread []*models.Comment
		for i := 0; i < numComments; i++ {
			commenter := users[s.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(commenter, poem)
			if err != nil {
				return created, err
			}
			thread = append(thread, comment)
			created++
		}

		// roughly a third of threads get a reply
		if len(thread) > 0 && s.rng.Intn(3) == 0 {
			replier := users[s.rng.Intn(len(users))]
			if _, err := s.factory.CreateReply(replier, thread[0]); err != nil {
				return created, err
			}
			created++
		}

		numLikes := s.rng.Intn(len(users)/2 + 1)
		seen := make(map[uint]bool, numLikes)
		for i := 0; i < numLikes; i++ {
			liker := users[s.rng.Intn(len(users))]
			if seen[liker.ID] {
				continue
			}
			seen[liker.ID] = true
			if err := s.factory.CreateLike(liker, poem); err != nil {
				return created, err
			}
		}
	}

	return created, nil
}
