package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

// Пределы валидации услуг.
const (
	minGigTitleLength       = 3
	maxGigTitleLength       = 200
	minGigDescriptionLength = 10
	maxGigDescriptionLength = 5000
	maxGigPrice             = 1000000
)

// GigRepository описывает взаимодействие сервиса с хранилищем услуг.
type GigRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	Create(ctx context.Context, gig *models.Gig) error
	Update(ctx context.Context, gig *models.Gig) error
	UpdateModeration(ctx context.Context, id uuid.UUID, status string, isFeatured bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.GigFilter) ([]models.Gig, error)
}

// GigInput — данные создания или правки услуги.
type GigInput struct {
	Title        string
	Description  string
	Category     string
	Price        float64
	Image        *string
	DeliveryDays int
	Features     []string
}

// GigService содержит бизнес-логику каталога услуг.
type GigService struct {
	repo GigRepository
}

// NewGigService создаёт сервис услуг.
func NewGigService(repo GigRepository) *GigService {
	return &GigService{repo: repo}
}

func validateGigInput(input GigInput) error {
	title := strings.TrimSpace(input.Title)
	if len([]rune(title)) < minGigTitleLength || len([]rune(title)) > maxGigTitleLength {
		return apperror.New(apperror.ErrCodeValidation, "заголовок должен быть от 3 до 200 символов")
	}
	description := strings.TrimSpace(input.Description)
	if len([]rune(description)) < minGigDescriptionLength || len([]rune(description)) > maxGigDescriptionLength {
		return apperror.New(apperror.ErrCodeValidation, "описание должно быть от 10 до 5000 символов")
	}
	if strings.TrimSpace(input.Category) == "" {
		return apperror.New(apperror.ErrCodeValidation, "категория обязательна")
	}
	if input.Price <= 0 || input.Price > maxGigPrice {
		return apperror.New(apperror.ErrCodeValidation, "цена должна быть положительной")
	}
	if input.DeliveryDays <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "срок поставки должен быть положительным")
	}
	return nil
}

// CreateGig публикует услугу продавца; до модерации она в статусе pending.
func (s *GigService) CreateGig(ctx context.Context, sellerID uuid.UUID, input GigInput) (*models.Gig, error) {
	if err := validateGigInput(input); err != nil {
		return nil, err
	}

	gig := &models.Gig{
		SellerID:     sellerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     strings.TrimSpace(input.Category),
		Price:        input.Price,
		Image:        input.Image,
		DeliveryDays: input.DeliveryDays,
		Features:     input.Features,
		Status:       models.GigStatusPending,
	}
	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать услугу")
	}
	return gig, nil
}

// GetGig возвращает услугу по идентификатору.
func (s *GigService) GetGig(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить услугу")
	}
	return gig, nil
}

// UpdateGig правит услугу. Разрешено только владельцу; снимки цены в
// открытых заказах не трогаются.
func (s *GigService) UpdateGig(ctx context.Context, id, sellerID uuid.UUID, input GigInput) (*models.Gig, error) {
	gig, err := s.GetGig(ctx, id)
	if err != nil {
		return nil, err
	}
	if gig.SellerID != sellerID {
		return nil, apperror.ErrForbidden
	}
	if err := validateGigInput(input); err != nil {
		return nil, err
	}

	gig.Title = strings.TrimSpace(input.Title)
	gig.Description = strings.TrimSpace(input.Description)
	gig.Category = strings.TrimSpace(input.Category)
	gig.Price = input.Price
	gig.Image = input.Image
	gig.DeliveryDays = input.DeliveryDays
	gig.Features = input.Features

	if err := s.repo.Update(ctx, gig); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить услугу")
	}
	return gig, nil
}

// DeleteGig удаляет услугу владельца.
func (s *GigService) DeleteGig(ctx context.Context, id, sellerID uuid.UUID) error {
	gig, err := s.GetGig(ctx, id)
	if err != nil {
		return err
	}
	if gig.SellerID != sellerID {
		return apperror.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось удалить услугу")
	}
	return nil
}

// ListGigs возвращает одобренные услуги каталога.
func (s *GigService) ListGigs(ctx context.Context, category string, onlyFeatured bool, limit, offset int) ([]models.Gig, error) {
	return s.repo.List(ctx, repository.GigFilter{
		Category:     category,
		OnlyApproved: true,
		OnlyFeatured: onlyFeatured,
		Limit:        limit,
		Offset:       offset,
	})
}

// ListSellerGigs возвращает все услуги продавца, включая немодерированные.
func (s *GigService) ListSellerGigs(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Gig, error) {
	return s.repo.List(ctx, repository.GigFilter{
		SellerID: &sellerID,
		Limit:    limit,
		Offset:   offset,
	})
}

// Moderate меняет статус модерации услуги (админ).
func (s *GigService) Moderate(ctx context.Context, id uuid.UUID, status string, isFeatured bool) (*models.Gig, error) {
	if _, ok := models.ValidGigStatuses[status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус модерации: "+status)
	}
	if err := s.repo.UpdateModeration(ctx, id, status, isFeatured); err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить модерацию")
	}
	return s.GetGig(ctx, id)
}
