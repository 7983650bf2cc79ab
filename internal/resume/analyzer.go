package resume

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talentscout/interview/internal/metrics"
	"talentscout/interview/internal/models"
)

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

type keywordFile struct {
	Keywords []models.KeywordRequest `yaml:"keywords"`
}

// Analyzer scores resumes against the configured keyword weights and keeps
// every analysis.
type Analyzer struct {
	db        *gorm.DB
	extractor Extractor
	logger    *zap.Logger
	now       func() time.Time
}

func NewAnalyzer(db *gorm.DB, extractor Extractor, logger *zap.Logger) *Analyzer {
	if extractor == nil {
		extractor = NewPlainTextExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{db: db, extractor: extractor, logger: logger, now: time.Now}
}

func (a *Analyzer) Migrate() error {
	if err := a.db.AutoMigrate(&models.ResumeKeyword{}, &models.ResumeAnalysis{}); err != nil {
		return fmt.Errorf("failed to migrate resume tables: %w", err)
	}
	return nil
}

// SeedDefaults loads the embedded keyword set when no keywords exist yet.
func (a *Analyzer) SeedDefaults(ctx context.Context) (int, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.ResumeKeyword{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count keywords: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	defaults, err := DefaultKeywords()
	if err != nil {
		return 0, err
	}
	for _, req := range defaults {
		if _, err := a.UpsertKeyword(ctx, req); err != nil {
			return 0, err
		}
	}
	return len(defaults), nil
}

// DefaultKeywords parses the embedded keyword set.
func DefaultKeywords() ([]models.KeywordRequest, error) {
	var file keywordFile
	if err := yaml.Unmarshal(defaultKeywordsYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse default keywords: %w", err)
	}
	for i := range file.Keywords {
		if err := file.Keywords[i].Validate(); err != nil {
			return nil, fmt.Errorf("default keyword %d: %w", i, err)
		}
	}
	return file.Keywords, nil
}

func (a *Analyzer) Keywords(ctx context.Context) ([]models.ResumeKeyword, error) {
	var keywords []models.ResumeKeyword
	if err := a.db.WithContext(ctx).Order("category, keyword").Find(&keywords).Error; err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

// UpsertKeyword adds a keyword or updates the category and weight of an
// existing one.
func (a *Analyzer) UpsertKeyword(ctx context.Context, req models.KeywordRequest) (*models.ResumeKeyword, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	if strings.Contains(req.Keyword, ",") {
		return nil, fmt.Errorf("%w: keyword must not contain commas", models.ErrValidation)
	}

	keyword := models.ResumeKeyword{Keyword: req.Keyword, Category: req.Category, Weight: req.Weight}
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "keyword"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "weight", "updated_at"}),
	}).Create(&keyword).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save keyword: %w", err)
	}

	var stored models.ResumeKeyword
	if err := a.db.WithContext(ctx).Where("keyword = ?", req.Keyword).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load keyword: %w", err)
	}
	return &stored, nil
}

// Analyze extracts the resume text, scores it and stores the result.
func (a *Analyzer) Analyze(ctx context.Context, fileName string, data []byte, candidateID string) (*models.ResumeAnalysisResponse, error) {
	text, err := a.extractor.Extract(fileName, data)
	if err != nil {
		metrics.RecordResumeAnalysis(metrics.ResultError)
		return nil, err
	}

	keywords, err := a.Keywords(ctx)
	if err != nil {
		metrics.RecordResumeAnalysis(metrics.ResultError)
		return nil, err
	}
	result := Score(text, keywords)

	analysis := models.ResumeAnalysis{
		ID:              uuid.New().String(),
		CandidateID:     strings.TrimSpace(candidateID),
		FileName:        fileName,
		ContentText:     text,
		Score:           result.Score,
		SkillsFound:     result.Found,
		MissingKeywords: result.Missing,
		TotalKeywords:   len(keywords),
		CreatedAt:       a.now(),
	}
	if err := a.db.WithContext(ctx).Create(&analysis).Error; err != nil {
		metrics.RecordResumeAnalysis(metrics.ResultError)
		return nil, fmt.Errorf("failed to save resume analysis: %w", err)
	}

	metrics.RecordResumeAnalysis(metrics.ResultOK)
	a.logger.Info("resume analyzed",
		zap.String("analysis_id", analysis.ID),
		zap.String("candidate_id", analysis.CandidateID),
		zap.Float64("score", analysis.Score),
		zap.Int("skills_found", len(result.Found)))
	return toResponse(analysis), nil
}

func (a *Analyzer) Get(ctx context.Context, id string) (*models.ResumeAnalysisResponse, error) {
	var analysis models.ResumeAnalysis
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: resume analysis %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resume analysis: %w", err)
	}
	return toResponse(analysis), nil
}

func (a *Analyzer) Ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toResponse(analysis models.ResumeAnalysis) *models.ResumeAnalysisResponse {
	return &models.ResumeAnalysisResponse{
		ID:              analysis.ID,
		CandidateID:     analysis.CandidateID,
		FileName:        analysis.FileName,
		Score:           analysis.Score,
		SkillsFound:     orEmpty(analysis.SkillsFound),
		MissingKeywords: orEmpty(analysis.MissingKeywords),
		TotalKeywords:   analysis.TotalKeywords,
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// Result is the outcome of matching one text against the keyword set.
type Result struct {
	Score   float64
	Found   []string
	Missing []string
}

// Score computes 10 * matched weight / total weight, rounded to one decimal.
// Keywords match case-insensitively on word boundaries.
func Score(text string, keywords []models.ResumeKeyword) Result {
	res := Result{Found: []string{}, Missing: []string{}}
	total, matched := 0.0, 0.0
	for _, kw := range keywords {
		total += kw.Weight
		if keywordPattern(kw.Keyword).MatchString(text) {
			matched += kw.Weight
			res.Found = append(res.Found, kw.Keyword)
		} else {
			res.Missing = append(res.Missing, kw.Keyword)
		}
	}
	if total > 0 {
		res.Score = float64(int(100*matched/total+0.5)) / 10
	}
	return res
}

func keywordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\w+#])` + regexp.QuoteMeta(keyword) + `($|[^\w+#])`)
}
