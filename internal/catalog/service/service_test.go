package service

import (
	"context"
	"errors"
	"testing"

	"fitment_chat_backend/internal/catalog/repository"
	"fitment_chat_backend/platform/apperr"
	"fitment_chat_backend/platform/logger"
)

type fakeRepo struct {
	repository.Repository

	manufacturerID int64
	carModelID     int64
	carVersionID   int64
	wheelModelID   int64
	wheelRef       repository.WheelRef
	fitment        repository.FitmentRow
	wheelOptions   []repository.WheelModelOption
	homologations  []repository.FamilyHomologationRow

	manufacturerErr error
	carModelErr     error
	versionErr      error
	fitmentErr      error
	optionsErr      error
}

func (f *fakeRepo) ResolveManufacturer(_ context.Context, _ string) (int64, error) {
	return f.manufacturerID, f.manufacturerErr
}

func (f *fakeRepo) ResolveCarModel(_ context.Context, _ int64, _ string) (int64, error) {
	return f.carModelID, f.carModelErr
}

func (f *fakeRepo) ResolveCarVersion(_ context.Context, _ int64, _ string) (int64, error) {
	return f.carVersionID, f.versionErr
}

func (f *fakeRepo) ResolveWheelModel(_ context.Context, _ string) (int64, error) {
	return f.wheelModelID, nil
}

func (f *fakeRepo) ResolveWheelByDiameter(_ context.Context, _ int64, _ int) (repository.WheelRef, error) {
	return f.wheelRef, nil
}

func (f *fakeRepo) GetFitment(_ context.Context, _, _ int64) (repository.FitmentRow, error) {
	return f.fitment, f.fitmentErr
}

func (f *fakeRepo) ListWheelModelsForCarModel(_ context.Context, _ int64) ([]repository.WheelModelOption, error) {
	return f.wheelOptions, f.optionsErr
}

func (f *fakeRepo) ListHomologationsByCarModel(_ context.Context, _ int64) ([]repository.FamilyHomologationRow, error) {
	return f.homologations, nil
}

func newTestService(repo repository.Repository) *Service {
	return New(repo, logger.New("development"))
}

func TestNormalizeDiameter_AcceptsCommonSpellings(t *testing.T) {
	cases := map[string]int{
		"19":         19,
		"19 pollici": 19,
		"R18":        18,
		`20"`:        20,
		"da 17 in su": 17,
	}
	for input, want := range cases {
		got, err := NormalizeDiameter(input)
		if err != nil {
			t.Fatalf("NormalizeDiameter(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("NormalizeDiameter(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestNormalizeDiameter_NoDigitsIsNotFound(t *testing.T) {
	_, err := NormalizeDiameter("cerchi neri")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for input without digits, got %v", err)
	}
}

func TestResolveCarFamily_CascadeHaltsOnFirstMiss(t *testing.T) {
	repo := &fakeRepo{manufacturerErr: apperr.NotFound("manufacturer not found")}
	svc := newTestService(repo)

	_, err := svc.ResolveCarFamily(context.Background(), "Vulkswagen", "Golf")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound from halted cascade, got %v", err)
	}
}

func TestResolveCarFamily_TransientErrorDegradesToNotFound(t *testing.T) {
	repo := &fakeRepo{manufacturerID: 1, carModelErr: errors.New("connection refused")}
	svc := newTestService(repo)

	_, err := svc.ResolveCarFamily(context.Background(), "Audi", "A4")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected transient failure narrowed to NotFound, got %v", err)
	}
}

func TestResolveWheel_UnparseableDiameterHalts(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.ResolveWheel(context.Background(), "Makhai", "big ones")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for unparseable diameter, got %v", err)
	}
}

func TestResolveWheel_ReturnsFullSelection(t *testing.T) {
	repo := &fakeRepo{
		wheelModelID: 7,
		wheelRef:     repository.WheelRef{WheelID: 42, WheelVersionID: 99},
	}
	svc := newTestService(repo)

	selection, err := svc.ResolveWheel(context.Background(), "Makhai", "19 pollici")
	if err != nil {
		t.Fatalf("ResolveWheel returned error: %v", err)
	}
	if selection.WheelModelID != 7 || selection.WheelID != 42 || selection.WheelVersionID != 99 || selection.Diameter != 19 {
		t.Fatalf("unexpected selection: %+v", selection)
	}
}

func TestExactFitment_StripsChannelSuffix(t *testing.T) {
	repo := &fakeRepo{fitment: repository.FitmentRow{Channel: "8.5J"}}
	svc := newTestService(repo)

	fitment, err := svc.ExactFitment(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ExactFitment returned error: %v", err)
	}
	if fitment.Channel != "8.5" {
		t.Fatalf("expected channel suffix stripped, got %q", fitment.Channel)
	}
}

func TestExactFitment_OnlyPresentSchemesAppear(t *testing.T) {
	repo := &fakeRepo{fitment: repository.FitmentRow{
		HomologationTUV:    "TUV-123",
		HomologationTUVDoc: "doc.pdf",
		NoteTUV:            "rear axle only",
		HomologationECE:    "ECE-9",
	}}
	svc := newTestService(repo)

	fitment, err := svc.ExactFitment(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ExactFitment returned error: %v", err)
	}
	if len(fitment.Homologations) != 2 {
		t.Fatalf("expected 2 homologations, got %d", len(fitment.Homologations))
	}
	if fitment.Homologations[0].Scheme != "TUV" || fitment.Homologations[0].Note != "rear axle only" {
		t.Fatalf("unexpected first homologation: %+v", fitment.Homologations[0])
	}
	if fitment.Homologations[1].Scheme != "ECE" || fitment.Homologations[1].Code != "ECE-9" {
		t.Fatalf("unexpected second homologation: %+v", fitment.Homologations[1])
	}
}

func TestExactFitment_MissingRowIsNotFound(t *testing.T) {
	repo := &fakeRepo{fitmentErr: apperr.NotFound("no fitment for this combination")}
	svc := newTestService(repo)

	_, err := svc.ExactFitment(context.Background(), 1, 2)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestFamilyOverview_FailedBranchDegradesToEmpty(t *testing.T) {
	repo := &fakeRepo{
		optionsErr:    errors.New("timeout"),
		homologations: []repository.FamilyHomologationRow{{WheelModel: "Istar", Diameter: 19, TUV: "T1"}},
	}
	svc := newTestService(repo)

	overview, err := svc.FamilyOverview(context.Background(), 5, true)
	if err != nil {
		t.Fatalf("FamilyOverview returned error: %v", err)
	}
	if len(overview.WheelOptions) != 0 {
		t.Fatalf("expected failed options branch to be empty, got %d", len(overview.WheelOptions))
	}
	if len(overview.Homologations) != 1 {
		t.Fatalf("expected surviving homologations branch, got %d rows", len(overview.Homologations))
	}
}

func TestFamilyOverview_HomologationsOnlyOnRequest(t *testing.T) {
	repo := &fakeRepo{
		wheelOptions:  []repository.WheelModelOption{{ModelName: "Istar", MaxDiameter: 20}},
		homologations: []repository.FamilyHomologationRow{{WheelModel: "Istar", Diameter: 19, TUV: "T1"}},
	}
	svc := newTestService(repo)

	overview, err := svc.FamilyOverview(context.Background(), 5, false)
	if err != nil {
		t.Fatalf("FamilyOverview returned error: %v", err)
	}
	if len(overview.Homologations) != 0 {
		t.Fatalf("expected no homologations when not requested, got %d", len(overview.Homologations))
	}
	if len(overview.WheelOptions) != 1 {
		t.Fatalf("expected wheel options, got %d", len(overview.WheelOptions))
	}
}
