package cars

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

type stubRepo struct {
	nextID  int64
	rows    map[int64]*models.Car
	updated []int64
	deleted []int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1, rows: map[int64]*models.Car{}}
}

func (s *stubRepo) Create(_ context.Context, car *models.Car) (*models.Car, error) {
	car.ID = s.nextID
	s.nextID++
	copied := *car
	s.rows[car.ID] = &copied
	return car, nil
}

func (s *stubRepo) FindByIDAndOwner(_ context.Context, id, ownerID int64) (*models.Car, error) {
	row, ok := s.rows[id]
	if !ok || row.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubRepo) FindByIDAndOwnerWithRequests(_ context.Context, id, ownerID int64) (*models.Car, error) {
	row, ok := s.rows[id]
	if !ok || row.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	var open []models.MechanicCarRequest
	for _, req := range row.MechanicRequests {
		if req.Status != enums.RequestStatusDelivered {
			open = append(open, req)
		}
	}
	copied.MechanicRequests = open
	return &copied, nil
}

func (s *stubRepo) ListByOwner(_ context.Context, ownerID int64, params pagination.Params) ([]models.Car, error) {
	var out []models.Car
	for _, row := range s.rows {
		if row.UserID == ownerID {
			out = append(out, *row)
		}
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubRepo) Update(_ context.Context, car *models.Car) error {
	copied := *car
	s.rows[car.ID] = &copied
	s.updated = append(s.updated, car.ID)
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func validInput() CreateInput {
	return CreateInput{
		Title:        "Family sedan",
		Category:     "sedan",
		Trim:         "LX",
		ModelDate:    time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		LicensePlate: "AB123CD",
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestCreateCar(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	car, err := svc.Create(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	if car.ID == 0 || car.UserID != 1 {
		t.Fatalf("unexpected car %+v", car)
	}

	missing := validInput()
	missing.Title = "  "
	if _, err := svc.Create(context.Background(), 1, missing); err == nil {
		t.Fatal("expected validation error for empty title")
	}

	longPlate := validInput()
	longPlate.LicensePlate = "TOOLONGPLATE"
	_, err = svc.Create(context.Background(), 1, longPlate)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestGetCarOwnership(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create car: %v", err)
	}

	got, err := svc.Get(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("get car: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected car %+v", got)
	}

	_, err = svc.Get(context.Background(), 2, created.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetCarIncludesOpenRequests(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	repo.rows[created.ID].MechanicRequests = []models.MechanicCarRequest{
		{ID: 11, MechanicID: 3, Status: enums.RequestStatusPending, Issue: enums.RequestIssueMotor},
		{ID: 12, MechanicID: 3, Status: enums.RequestStatusDelivered, Issue: enums.RequestIssueMotor},
	}

	got, err := svc.Get(context.Background(), 1, created.ID)
	if err != nil {
		t.Fatalf("get car: %v", err)
	}
	if len(got.OpenRequests) != 1 || got.OpenRequests[0].ID != 11 {
		t.Fatalf("expected only the undelivered request, got %+v", got.OpenRequests)
	}
}

func TestUpdateCar(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create car: %v", err)
	}

	title := "Weekend car"
	updated, err := svc.Update(context.Background(), 1, created.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update car: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not applied: %+v", updated)
	}

	empty := " "
	_, err = svc.Update(context.Background(), 1, created.ID, UpdateInput{Title: &empty})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(context.Background(), 9, created.ID, UpdateInput{Title: &title})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteCar(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create car: %v", err)
	}

	err = svc.Delete(context.Background(), 2, created.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)

	if err := svc.Delete(context.Background(), 1, created.ID); err != nil {
		t.Fatalf("delete car: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected one delete, got %v", repo.deleted)
	}
}
