package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

type mockGigRepo struct {
	mock.Mock
}

func (m *mockGigRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gig), args.Error(1)
}

func (m *mockGigRepo) Create(ctx context.Context, gig *models.Gig) error {
	args := m.Called(ctx, gig)
	return args.Error(0)
}

func (m *mockGigRepo) Update(ctx context.Context, gig *models.Gig) error {
	args := m.Called(ctx, gig)
	return args.Error(0)
}

func (m *mockGigRepo) UpdateModeration(ctx context.Context, id uuid.UUID, status string, isFeatured bool) error {
	args := m.Called(ctx, id, status, isFeatured)
	return args.Error(0)
}

func (m *mockGigRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockGigRepo) List(ctx context.Context, filter repository.GigFilter) ([]models.Gig, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Gig), args.Error(1)
}

func validInput() GigInput {
	return GigInput{
		Title:        "Дизайн логотипа",
		Description:  "Нарисую логотип за три дня, два варианта на выбор",
		Category:     "design",
		Price:        100,
		DeliveryDays: 3,
		Features:     []string{"исходники", "две правки"},
	}
}

func TestGigService_CreateGig_Success(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()
	sellerID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Gig")).Return(nil)

	gig, err := svc.CreateGig(ctx, sellerID, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusPending, gig.Status, "новая услуга уходит на модерацию")
	assert.Equal(t, sellerID, gig.SellerID)
	repo.AssertExpectations(t)
}

func TestGigService_CreateGig_Validation(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*GigInput)
	}{
		{"короткий заголовок", func(in *GigInput) { in.Title = "ab" }},
		{"длинный заголовок", func(in *GigInput) { in.Title = strings.Repeat("а", 201) }},
		{"короткое описание", func(in *GigInput) { in.Description = "мало" }},
		{"пустая категория", func(in *GigInput) { in.Category = "  " }},
		{"нулевая цена", func(in *GigInput) { in.Price = 0 }},
		{"отрицательная цена", func(in *GigInput) { in.Price = -10 }},
		{"цена выше потолка", func(in *GigInput) { in.Price = maxGigPrice + 1 }},
		{"нулевой срок", func(in *GigInput) { in.DeliveryDays = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.CreateGig(ctx, uuid.New(), input)
			assert.True(t, apperror.IsValidation(err))
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGigService_UpdateGig_OnlyOwner(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), SellerID: uuid.New(), Status: models.GigStatusApproved}
	repo.On("GetByID", ctx, gig.ID).Return(gig, nil)

	_, err := svc.UpdateGig(ctx, gig.ID, uuid.New(), validInput())
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGigService_DeleteGig_OnlyOwner(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()

	gig := &models.Gig{ID: uuid.New(), SellerID: uuid.New()}
	repo.On("GetByID", ctx, gig.ID).Return(gig, nil)

	err := svc.DeleteGig(ctx, gig.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	repo.On("Delete", ctx, gig.ID).Return(nil)
	assert.NoError(t, svc.DeleteGig(ctx, gig.ID, gig.SellerID))
}

func TestGigService_GetGig_NotFound(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()

	gigID := uuid.New()
	repo.On("GetByID", ctx, gigID).Return(nil, repository.ErrGigNotFound)

	_, err := svc.GetGig(ctx, gigID)
	assert.ErrorIs(t, err, apperror.ErrGigNotFound)
}

func TestGigService_Moderate(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()
	gigID := uuid.New()

	_, err := svc.Moderate(ctx, gigID, "shadowbanned", false)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "UpdateModeration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	approved := &models.Gig{ID: gigID, Status: models.GigStatusApproved, IsFeatured: true}
	repo.On("UpdateModeration", ctx, gigID, models.GigStatusApproved, true).Return(nil)
	repo.On("GetByID", ctx, gigID).Return(approved, nil)

	gig, err := svc.Moderate(ctx, gigID, models.GigStatusApproved, true)
	require.NoError(t, err)
	assert.Equal(t, models.GigStatusApproved, gig.Status)
	repo.AssertExpectations(t)
}

func TestGigService_ListGigs_OnlyApproved(t *testing.T) {
	repo := new(mockGigRepo)
	svc := NewGigService(repo)
	ctx := context.Background()

	repo.On("List", ctx, repository.GigFilter{
		Category:     "design",
		OnlyApproved: true,
		OnlyFeatured: true,
		Limit:        10,
		Offset:       0,
	}).Return([]models.Gig{}, nil)

	_, err := svc.ListGigs(ctx, "design", true, 10, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
