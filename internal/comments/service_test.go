package comments

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

type stubCommentRepo struct {
	nextID int64
	rows   map[int64]*models.MechanicComment
	// mechanicID per request id, to answer the join-backed queries
	requestMechanic map[int64]int64
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{
		nextID:          0,
		rows:            map[int64]*models.MechanicComment{},
		requestMechanic: map[int64]int64{},
	}
}

func (s *stubCommentRepo) Create(_ context.Context, comment *models.MechanicComment) (*models.MechanicComment, error) {
	s.nextID++
	comment.ID = s.nextID
	comment.CreatedAt = time.Now().UTC()
	copied := *comment
	s.rows[comment.ID] = &copied
	return comment, nil
}

func (s *stubCommentRepo) FindByID(_ context.Context, id int64) (*models.MechanicComment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubCommentRepo) ListByRequest(_ context.Context, requestID int64, params pagination.Params) ([]models.MechanicComment, error) {
	var out []models.MechanicComment
	for _, row := range s.rows {
		if row.RequestID == requestID {
			out = append(out, *row)
		}
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubCommentRepo) ListByMechanic(_ context.Context, mechanicID int64, params pagination.Params) ([]models.MechanicComment, error) {
	var out []models.MechanicComment
	for _, row := range s.rows {
		if s.requestMechanic[row.RequestID] == mechanicID && row.ParentID == nil {
			out = append(out, *row)
		}
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *stubCommentRepo) AverageRating(_ context.Context, mechanicID int64) (float64, bool, error) {
	var sum, count int
	for _, row := range s.rows {
		if s.requestMechanic[row.RequestID] == mechanicID && row.ParentID == nil {
			sum += row.Rate
			count++
		}
	}
	if count == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(count), true, nil
}

func (s *stubCommentRepo) Delete(_ context.Context, id int64) error {
	delete(s.rows, id)
	return nil
}

type stubRequestRepo struct {
	rows map[int64]*models.MechanicCarRequest
}

func (s *stubRequestRepo) FindByID(_ context.Context, id int64) (*models.MechanicCarRequest, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type stubCarRepo struct {
	owners map[int64]int64 // car id -> owner id
}

func (s *stubCarRepo) FindByIDAndOwner(_ context.Context, id, ownerID int64) (*models.Car, error) {
	owner, ok := s.owners[id]
	if !ok || owner != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Car{ID: id, UserID: owner}, nil
}

type fixture struct {
	svc      Service
	repo     *stubCommentRepo
	requests *stubRequestRepo
	cars     *stubCarRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubCommentRepo()
	requests := &stubRequestRepo{rows: map[int64]*models.MechanicCarRequest{}}
	cars := &stubCarRepo{owners: map[int64]int64{}}
	svc, err := NewService(repo, requests, cars)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, requests: requests, cars: cars}
}

func (f *fixture) seedRequest(id, carID, mechanicID int64, status enums.RequestStatus) {
	f.requests.rows[id] = &models.MechanicCarRequest{
		ID: id, CarID: carID, MechanicID: mechanicID, Status: status,
	}
	f.repo.requestMechanic[id] = mechanicID
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

func TestCreateCommentGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: 1, Role: enums.UserRoleUser}

	f.cars.owners[9] = 1
	f.seedRequest(100, 9, 5, enums.RequestStatusUnderRepair)

	// Not delivered yet.
	_, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "great", Rate: 5})
	expectCode(t, err, pkgerrors.CodeConflict)

	f.seedRequest(100, 9, 5, enums.RequestStatusDelivered)

	created, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "great", Rate: 5})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if created.UserID == nil || *created.UserID != 1 {
		t.Fatalf("author not exposed on signed comment: %+v", created)
	}

	// Only the car owner may comment; others read not-found.
	stranger := Actor{UserID: 42, Role: enums.UserRoleUser}
	_, err = f.svc.Create(ctx, stranger, CreateInput{RequestID: 100, Body: "fake", Rate: 1})
	expectCode(t, err, pkgerrors.CodeNotFound)

	// Rate bounds.
	_, err = f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "again", Rate: 6})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateCommentThreading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: 1, Role: enums.UserRoleUser}

	f.cars.owners[9] = 1
	f.cars.owners[10] = 1
	f.seedRequest(100, 9, 5, enums.RequestStatusDelivered)
	f.seedRequest(200, 10, 5, enums.RequestStatusDelivered)

	parent, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "solid work", Rate: 4})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	reply, err := f.svc.Create(ctx, owner, CreateInput{
		RequestID: 100, Body: "forgot to add: fast too", Rate: 4, ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parent.ID {
		t.Fatalf("reply not threaded: %+v", reply)
	}

	// A parent from another request is rejected.
	_, err = f.svc.Create(ctx, owner, CreateInput{
		RequestID: 200, Body: "cross-thread", Rate: 3, ParentID: &parent.ID,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestAnonymousCommentHidesAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: 1, Role: enums.UserRoleUser}

	f.cars.owners[9] = 1
	f.seedRequest(100, 9, 5, enums.RequestStatusDelivered)

	created, err := f.svc.Create(ctx, owner, CreateInput{
		RequestID: 100, Body: "meh", Rate: 2, Anonymous: true,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if created.UserID != nil {
		t.Fatalf("anonymous comment leaked author: %+v", created)
	}
}

func TestMechanicRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: 1, Role: enums.UserRoleUser}

	rating, err := f.svc.Rating(ctx, 5)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if rating.HasRatings {
		t.Fatal("expected no ratings yet")
	}

	f.cars.owners[9] = 1
	f.cars.owners[10] = 1
	f.seedRequest(100, 9, 5, enums.RequestStatusDelivered)
	f.seedRequest(200, 10, 5, enums.RequestStatusDelivered)

	if _, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "good", Rate: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 200, Body: "ok", Rate: 3}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rating, err = f.svc.Rating(ctx, 5)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if !rating.HasRatings {
		t.Fatal("expected ratings")
	}
	if got := rating.AverageRating.String(); got != "3.5" {
		t.Fatalf("expected average 3.5, got %s", got)
	}
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := Actor{UserID: 1, Role: enums.UserRoleUser}

	f.cars.owners[9] = 1
	f.seedRequest(100, 9, 5, enums.RequestStatusDelivered)

	created, err := f.svc.Create(ctx, owner, CreateInput{RequestID: 100, Body: "oops", Rate: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := Actor{UserID: 42, Role: enums.UserRoleUser}
	err = f.svc.Delete(ctx, stranger, created.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)

	// Admins may moderate.
	admin := Actor{UserID: 99, Role: enums.UserRoleAdmin}
	if err := f.svc.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}
