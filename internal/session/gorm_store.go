package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talentscout/interview/internal/models"
)

type candidateRow struct {
	ID         string           `gorm:"primaryKey;size:36"`
	Name       string           `gorm:"not null"`
	Email      string           `gorm:"index"`
	Phone      string
	Experience float64          `gorm:"not null;default:0"`
	Position   string           `gorm:"not null"`
	Location   string
	TechStack  models.TechStack `gorm:"serializer:json;type:text;not null"`
	CreatedAt  time.Time        `gorm:"not null"`
}

func (candidateRow) TableName() string { return "candidates" }

type interviewRow struct {
	ID          string       `gorm:"primaryKey;size:36"`
	CandidateID string       `gorm:"uniqueIndex;size:36;not null"`
	Candidate   candidateRow `gorm:"foreignKey:CandidateID"`
	CurrentStep string       `gorm:"not null"`
	TurnCount   int          `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null;index"`
	CompletedAt *time.Time
}

func (interviewRow) TableName() string { return "interviews" }

type turnRow struct {
	ID          uint      `gorm:"primaryKey"`
	InterviewID string    `gorm:"size:36;not null;uniqueIndex:idx_interview_seq"`
	Seq         int       `gorm:"not null;uniqueIndex:idx_interview_seq"`
	Role        string    `gorm:"not null"`
	Content     string    `gorm:"type:text;not null"`
	Step        string    `gorm:"not null"`
	RequestID   string    `gorm:"index"`
	Score       *float64
	Assessment  string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (turnRow) TableName() string { return "interview_messages" }

type scoreRow struct {
	ID          uint    `gorm:"primaryKey"`
	InterviewID string  `gorm:"size:36;not null;uniqueIndex:idx_interview_category"`
	Category    string  `gorm:"not null;uniqueIndex:idx_interview_category"`
	Score       float64 `gorm:"not null"`
	Assessment  string  `gorm:"type:text"`
	CreatedAt   time.Time
}

func (scoreRow) TableName() string { return "interview_scores" }

// GormStore persists sessions in a relational database. A session is one
// interviews row plus its candidate, message and score rows.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Migrate creates or updates the session tables.
func (gs *GormStore) Migrate() error {
	return gs.db.AutoMigrate(&candidateRow{}, &interviewRow{}, &turnRow{}, &scoreRow{})
}

func (gs *GormStore) Create(ctx context.Context, candidate models.Candidate) (*models.Session, error) {
	draft, err := models.NewSession(candidate)
	if err != nil {
		return nil, err
	}
	return gs.Insert(ctx, draft)
}

func (gs *GormStore) Insert(ctx context.Context, draft *models.Session) (*models.Session, error) {
	if err := checkInsert(draft); err != nil {
		return nil, err
	}

	now := gs.now().UTC()
	candidate := draft.Candidate
	candidate.TechStack = models.NormalizeTechStack(candidate.TechStack)
	candidate.CreatedAt = now
	row := interviewRow{
		ID:          draft.ID,
		CandidateID: candidate.ID,
		Candidate:   toCandidateRow(candidate),
		CurrentStep: string(models.PhaseTechnical),
		CreatedAt:   now,
	}

	var created *models.Session
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&interviewRow{}).Where("id = ?", row.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check interview %s: %w", row.ID, err)
		}
		if existing > 0 {
			return fmt.Errorf("%w: interview %s already exists", models.ErrConcurrentModification, row.ID)
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create interview: %w", err)
		}
		for _, turn := range draft.Turns {
			if _, err := gs.insertTurn(tx, &row, turn); err != nil {
				return err
			}
		}
		if len(draft.Turns) > 0 {
			if err := gs.saveRow(tx, &row, 0); err != nil {
				return err
			}
		}
		var err error
		created, err = gs.load(tx, "interviews.id = ?", row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (gs *GormStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return gs.load(gs.db.WithContext(ctx), "interviews.id = ?", id)
}

func (gs *GormStore) GetByCandidate(ctx context.Context, candidateID string) (*models.Session, error) {
	s, err := gs.load(gs.db.WithContext(ctx), "interviews.candidate_id = ?", candidateID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: candidate %s", models.ErrNotFound, candidateID)
	}
	return s, err
}

func (gs *GormStore) AppendTurn(ctx context.Context, id string, turn models.Turn) (models.Turn, error) {
	var appended models.Turn
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := gs.lockRow(tx, id)
		if err != nil {
			return err
		}
		if err := checkAppend(models.Phase(row.CurrentStep), turn); err != nil {
			return err
		}
		appended, err = gs.insertTurn(tx, &row, turn)
		if err != nil {
			return err
		}
		return gs.saveRow(tx, &row, row.TurnCount-1)
	})
	return appended, err
}

func (gs *GormStore) AdvancePhase(ctx context.Context, id string, next models.Phase) error {
	return gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := gs.lockRow(tx, id)
		if err != nil {
			return err
		}
		if err := models.ValidateTransition(models.Phase(row.CurrentStep), next); err != nil {
			return err
		}
		gs.advanceRow(&row, next)
		return gs.saveRow(tx, &row, row.TurnCount)
	})
}

func (gs *GormStore) Commit(ctx context.Context, id string, commit Commit) (*models.Session, error) {
	var committed *models.Session
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := gs.load(tx, "interviews.id = ?", id)
		if err != nil {
			return err
		}
		if err := checkCommit(current, commit); err != nil {
			return err
		}

		row, err := gs.lockRow(tx, id)
		if err != nil {
			return err
		}
		expected := row.TurnCount
		if commit.UserTurn != nil {
			if _, err := gs.insertTurn(tx, &row, *commit.UserTurn); err != nil {
				return err
			}
		}
		if commit.NextPhase != "" {
			gs.advanceRow(&row, commit.NextPhase)
		}
		if commit.AssistantTurn != nil {
			if _, err := gs.insertTurn(tx, &row, *commit.AssistantTurn); err != nil {
				return err
			}
		}
		if err := gs.saveRow(tx, &row, expected); err != nil {
			return err
		}

		committed, err = gs.load(tx, "interviews.id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

func (gs *GormStore) SaveScores(ctx context.Context, id string, entries []models.ScoreEntry) (*models.Session, error) {
	var saved *models.Session
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := gs.lockRow(tx, id)
		if err != nil {
			return err
		}
		if !models.Phase(row.CurrentStep).IsTerminal() {
			return fmt.Errorf("%w: scores require a completed interview", models.ErrInvalidState)
		}

		now := gs.now().UTC()
		for _, entry := range entries {
			score := scoreRow{
				InterviewID: id,
				Category:    entry.Category,
				Score:       models.ClampScore(entry.Score),
				Assessment:  entry.Assessment,
				CreatedAt:   now,
			}
			// an existing category wins over a later computation
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&score).Error; err != nil {
				return fmt.Errorf("failed to store score %s: %w", entry.Category, err)
			}
		}

		saved, err = gs.load(tx, "interviews.id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (gs *GormStore) List(ctx context.Context) ([]*models.Session, error) {
	var rows []interviewRow
	if err := gs.db.WithContext(ctx).Preload("Candidate").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	if len(rows) == 0 {
		return []*models.Session{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var scores []scoreRow
	if err := gs.db.WithContext(ctx).Where("interview_id IN ?", ids).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	byInterview := make(map[string][]scoreRow)
	for _, score := range scores {
		byInterview[score.InterviewID] = append(byInterview[score.InterviewID], score)
	}

	out := make([]*models.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSession(row, nil, byInterview[row.ID]))
	}
	return out, nil
}

func (gs *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := gs.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (gs *GormStore) load(tx *gorm.DB, query string, arg string) (*models.Session, error) {
	var row interviewRow
	err := tx.Preload("Candidate").Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}

	var turns []turnRow
	if err := tx.Where("interview_id = ?", row.ID).Order("seq ASC").Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	var scores []scoreRow
	if err := tx.Where("interview_id = ?", row.ID).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return toSession(row, turns, scores), nil
}

func (gs *GormStore) lockRow(tx *gorm.DB, id string) (interviewRow, error) {
	var row interviewRow
	err := tx.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, notFound(id)
	}
	if err != nil {
		return row, fmt.Errorf("failed to load interview: %w", err)
	}
	return row, nil
}

func (gs *GormStore) insertTurn(tx *gorm.DB, row *interviewRow, turn models.Turn) (models.Turn, error) {
	turn.Seq = row.TurnCount + 1
	turn.Phase = models.Phase(row.CurrentStep)
	turn.CreatedAt = gs.now().UTC()

	record := turnRow{
		InterviewID: row.ID,
		Seq:         turn.Seq,
		Role:        string(turn.Role),
		Content:     turn.Content,
		Step:        string(turn.Phase),
		RequestID:   turn.RequestID,
		Score:       turn.Score,
		Assessment:  turn.Assessment,
		CreatedAt:   turn.CreatedAt,
	}
	if err := tx.Create(&record).Error; err != nil {
		return models.Turn{}, fmt.Errorf("%w: failed to store message: %v", models.ErrConcurrentModification, err)
	}
	row.TurnCount = turn.Seq
	return turn, nil
}

func (gs *GormStore) advanceRow(row *interviewRow, next models.Phase) {
	row.CurrentStep = string(next)
	if next.IsTerminal() {
		completedAt := gs.now().UTC()
		row.CompletedAt = &completedAt
	}
}

// saveRow writes the interview row only if no other writer moved turn_count
// away from expected in the meantime.
func (gs *GormStore) saveRow(tx *gorm.DB, row *interviewRow, expected int) error {
	result := tx.Model(&interviewRow{}).
		Where("id = ? AND turn_count = ?", row.ID, expected).
		Updates(map[string]interface{}{
			"current_step": row.CurrentStep,
			"turn_count":   row.TurnCount,
			"completed_at": row.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update interview: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: interview %s changed during update", models.ErrConcurrentModification, row.ID)
	}
	return nil
}

func toCandidateRow(c models.Candidate) candidateRow {
	return candidateRow{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Experience: c.Experience,
		Position:   c.Position,
		Location:   c.Location,
		TechStack:  c.TechStack,
		CreatedAt:  c.CreatedAt,
	}
}

func toSession(row interviewRow, turns []turnRow, scores []scoreRow) *models.Session {
	s := &models.Session{
		ID: row.ID,
		Candidate: models.Candidate{
			ID:         row.Candidate.ID,
			Name:       row.Candidate.Name,
			Email:      row.Candidate.Email,
			Phone:      row.Candidate.Phone,
			Experience: row.Candidate.Experience,
			Position:   row.Candidate.Position,
			Location:   row.Candidate.Location,
			TechStack:  append(models.TechStack(nil), row.Candidate.TechStack...),
			CreatedAt:  row.Candidate.CreatedAt,
		},
		Phase:       models.Phase(row.CurrentStep),
		CreatedAt:   row.CreatedAt,
		CompletedAt: row.CompletedAt,
	}

	for _, t := range turns {
		s.Turns = append(s.Turns, models.Turn{
			Seq:        t.Seq,
			Role:       models.Role(t.Role),
			Content:    t.Content,
			Phase:      models.Phase(t.Step),
			RequestID:  t.RequestID,
			Score:      t.Score,
			Assessment: t.Assessment,
			CreatedAt:  t.CreatedAt,
		})
	}
	sort.SliceStable(s.Turns, func(i, j int) bool { return s.Turns[i].Seq < s.Turns[j].Seq })

	for _, sc := range scores {
		s.Scores = append(s.Scores, models.ScoreEntry{
			Category:   sc.Category,
			Score:      sc.Score,
			Assessment: sc.Assessment,
		})
	}
	models.SortScores(s.Scores)
	return s
}
