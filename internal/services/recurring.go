package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SelvaBrilyant/expense-sub001/internal/config"
	"github.com/SelvaBrilyant/expense-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var (
	ErrRecurringNotFound = errors.New("recurring payment not found")
	ErrInvalidSchedule   = errors.New("invalid cron schedule")
)

// recurringNamespace scopes the deterministic occurrence keys.
var recurringNamespace = uuid.MustParse("9f2c1b1e-6d1a-4b0e-8f3a-2a7c5d9e4b10")

type RecurringService struct {
	cfg *config.Config
}

func NewRecurringService(cfg *config.Config) *RecurringService {
	return &RecurringService{cfg: cfg}
}

// CreateRecurringData carries the fields accepted on create/update.
type CreateRecurringData struct {
	CategoryID uint
	Kind       string
	Amount     int64
	Note       string
	Schedule   string
}

// List returns the user's recurring payments
func (s *RecurringService) List(userID uint) ([]models.RecurringPayment, error) {
	var payments []models.RecurringPayment
	if err := models.DB.Where("user_id = ?", userID).Preload("Category").Order("created_at").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Get returns one of the user's recurring payments by ID
func (s *RecurringService) Get(userID, id uint) (*models.RecurringPayment, error) {
	var payment models.RecurringPayment
	if err := models.DB.Where("id = ? AND user_id = ?", id, userID).Preload("Category").First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecurringNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// Create registers a recurring payment with a standard 5-field cron schedule
func (s *RecurringService) Create(userID uint, data CreateRecurringData) (*models.RecurringPayment, error) {
	if data.Kind != models.KindIncome && data.Kind != models.KindExpense {
		return nil, ErrInvalidKind
	}
	schedule, err := cron.ParseStandard(data.Schedule)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	var category models.Category
	if err := models.DB.Where("id = ? AND user_id = ?", data.CategoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	payment := &models.RecurringPayment{
		UserID:     userID,
		CategoryID: data.CategoryID,
		Kind:       data.Kind,
		Amount:     data.Amount,
		Note:       data.Note,
		Schedule:   data.Schedule,
		NextRunAt:  schedule.Next(time.Now()),
		Active:     true,
	}
	if err := models.DB.Create(payment).Error; err != nil {
		return nil, err
	}
	payment.Category = category
	return payment, nil
}

// Update modifies a recurring payment; a schedule change recomputes NextRunAt
func (s *RecurringService) Update(userID, id uint, data CreateRecurringData, active bool) (*models.RecurringPayment, error) {
	payment, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if data.Kind != models.KindIncome && data.Kind != models.KindExpense {
		return nil, ErrInvalidKind
	}
	schedule, err := cron.ParseStandard(data.Schedule)
	if err != nil {
		return nil, ErrInvalidSchedule
	}
	if data.CategoryID != payment.CategoryID {
		var category models.Category
		if err := models.DB.Where("id = ? AND user_id = ?", data.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		payment.Category = category
	}

	if data.Schedule != payment.Schedule {
		payment.NextRunAt = schedule.Next(time.Now())
	}
	payment.CategoryID = data.CategoryID
	payment.Kind = data.Kind
	payment.Amount = data.Amount
	payment.Note = data.Note
	payment.Schedule = data.Schedule
	payment.Active = active

	if err := models.DB.Save(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete removes a recurring payment; already-materialized transactions stay
func (s *RecurringService) Delete(userID, id uint) error {
	payment, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return models.DB.Delete(payment).Error
}

// RunDue materializes every active payment whose NextRunAt has passed.
// Each occurrence gets a deterministic source key derived from the payment
// and its scheduled time, so a crashed-and-restarted run cannot insert the
// same occurrence twice. Failures are logged per payment and do not stop the
// sweep. Returns the number of transactions created.
func (s *RecurringService) RunDue(now time.Time) int {
	var due []models.RecurringPayment
	if err := models.DB.Where("active = ? AND next_run_at <= ?", true, now).Find(&due).Error; err != nil {
		slog.Error("failed to list due recurring payments", "error", err)
		return 0
	}

	created := 0
	for _, p := range due {
		if err := s.materialize(&p, now); err != nil {
			slog.Error("failed to materialize recurring payment", "payment_id", p.ID, "error", err)
			continue
		}
		created++
	}
	return created
}

func (s *RecurringService) materialize(p *models.RecurringPayment, now time.Time) error {
	schedule, err := cron.ParseStandard(p.Schedule)
	if err != nil {
		return fmt.Errorf("parsing schedule %q: %w", p.Schedule, err)
	}

	key := uuid.NewSHA1(recurringNamespace,
		[]byte(fmt.Sprintf("%d:%d", p.ID, p.NextRunAt.Unix()))).String()

	return models.DB.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Transaction{}).Where("source_key = ?", key).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			record := &models.Transaction{
				UserID:     p.UserID,
				CategoryID: p.CategoryID,
				Kind:       p.Kind,
				Amount:     p.Amount,
				Note:       p.Note,
				OccurredAt: p.NextRunAt,
				SourceKey:  key,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}

		p.NextRunAt = schedule.Next(now)
		return tx.Save(p).Error
	})
}

// RecurringRunner drives RunDue from a cron tick.
type RecurringRunner struct {
	service *RecurringService
	cron    *cron.Cron
}

func NewRecurringRunner(cfg *config.Config) *RecurringRunner {
	return &RecurringRunner{
		service: NewRecurringService(cfg),
		cron:    cron.New(),
	}
}

// Start begins sweeping for due payments once a minute
func (r *RecurringRunner) Start() error {
	_, err := r.cron.AddFunc("* * * * *", func() {
		if n := r.service.RunDue(time.Now()); n > 0 {
			slog.Info("materialized recurring payments", "count", n)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the sweep and waits for an in-flight run to finish
func (r *RecurringRunner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
