// Package service implements catalog entity resolution and fitment lookup.
package service

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"fitment_chat_backend/internal/catalog/repository"
	"fitment_chat_backend/platform/apperr"
	"fitment_chat_backend/platform/logger"
)

// Homologation is one regulatory approval attached to a fitment.
type Homologation struct {
	Scheme string `json:"type"`
	Code   string `json:"code"`
	Doc    string `json:"doc,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Fitment is the display-ready record for one verified combination.
// Homologations contains only schemes whose code is present: absence means
// "not homologated under this scheme", never "unknown".
type Fitment struct {
	CarVersionID        int64          `json:"carVersionId"`
	WheelID             int64          `json:"wheelId"`
	FitmentType         string         `json:"fitmentType"`
	FitmentAdvice       string         `json:"fitmentAdvice"`
	Limitation          string         `json:"limitation"`
	LimitationLocalized string         `json:"limitationLocalized"`
	PlugPlay            bool           `json:"plugPlay"`
	Channel             string         `json:"channel,omitempty"`
	CenteringRing       string         `json:"centeringRing,omitempty"`
	BoltNut             string         `json:"boltNut,omitempty"`
	Homologations       []Homologation `json:"homologations"`
}

// WheelSelection is a fully resolved wheel: model, diameter row, finish row.
type WheelSelection struct {
	WheelModelID   int64
	WheelID        int64
	WheelVersionID int64
	Diameter       int
}

// FamilyOverview is the advisory, family-level view for a car model:
// candidate wheel models and (optionally) homologation coverage. Never
// binding for a specific trim.
type FamilyOverview struct {
	WheelOptions  []repository.WheelModelOption
	Homologations []repository.FamilyHomologationRow
}

// Service performs the cascading catalog lookups.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates the catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

var diameterPattern = regexp.MustCompile(`(\d{2})`)

// NormalizeDiameter extracts an integer inches value from free text such as
// "19 pollici", "R18" or "20". Inputs without a two-digit substring yield
// NotFound rather than an error.
func NormalizeDiameter(raw string) (int, error) {
	match := diameterPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, apperr.NotFound("no diameter in input")
	}
	// The pattern only admits two digits, so Atoi cannot fail here.
	value := int(match[1][0]-'0')*10 + int(match[1][1]-'0')
	return value, nil
}

// ResolveCarFamily resolves brand and model names to a car model id.
// The cascade halts at the first miss.
func (s *Service) ResolveCarFamily(ctx context.Context, brand, model string) (int64, error) {
	manufacturerID, err := s.repo.ResolveManufacturer(ctx, brand)
	if err != nil {
		return 0, s.recover("resolve_manufacturer", err)
	}
	carModelID, err := s.repo.ResolveCarModel(ctx, manufacturerID, model)
	if err != nil {
		return 0, s.recover("resolve_car_model", err)
	}
	return carModelID, nil
}

// ResolveCarVersion resolves a version label within a car model.
// Only label text participates: a bare year that does not appear in any
// version label will simply not match.
func (s *Service) ResolveCarVersion(ctx context.Context, carModelID int64, label string) (int64, error) {
	id, err := s.repo.ResolveCarVersion(ctx, carModelID, label)
	if err != nil {
		return 0, s.recover("resolve_car_version", err)
	}
	return id, nil
}

// ResolveWheel resolves a wheel model name plus free-text diameter to a
// concrete wheel row. An unparseable diameter halts wheel-side resolution.
func (s *Service) ResolveWheel(ctx context.Context, wheelName, rawDiameter string) (WheelSelection, error) {
	diameter, err := NormalizeDiameter(rawDiameter)
	if err != nil {
		return WheelSelection{}, err
	}

	wheelModelID, err := s.repo.ResolveWheelModel(ctx, wheelName)
	if err != nil {
		return WheelSelection{}, s.recover("resolve_wheel_model", err)
	}

	ref, err := s.repo.ResolveWheelByDiameter(ctx, wheelModelID, diameter)
	if err != nil {
		return WheelSelection{}, s.recover("resolve_wheel_by_diameter", err)
	}

	return WheelSelection{
		WheelModelID:   wheelModelID,
		WheelID:        ref.WheelID,
		WheelVersionID: ref.WheelVersionID,
		Diameter:       diameter,
	}, nil
}

// ExactFitment fetches the authoritative record for one (car version, wheel)
// pair and derives its display fields.
func (s *Service) ExactFitment(ctx context.Context, carVersionID, wheelID int64) (Fitment, error) {
	row, err := s.repo.GetFitment(ctx, carVersionID, wheelID)
	if err != nil {
		return Fitment{}, s.recover("get_fitment", err)
	}
	return buildFitment(row), nil
}

// FamilyOverview fetches the advisory data for a car family. The two
// aggregate queries are independent, so they run concurrently; each failure
// degrades that branch to empty rather than failing the overview.
func (s *Service) FamilyOverview(ctx context.Context, carModelID int64, includeHomologations bool) (FamilyOverview, error) {
	var overview FamilyOverview

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		options, err := s.repo.ListWheelModelsForCarModel(groupCtx, carModelID)
		if err != nil {
			s.log.DatabaseError("list_wheel_models_for_car_model", err)
			return nil
		}
		overview.WheelOptions = options
		return nil
	})
	if includeHomologations {
		group.Go(func() error {
			homologations, err := s.repo.ListHomologationsByCarModel(groupCtx, carModelID)
			if err != nil {
				s.log.DatabaseError("list_homologations_by_car_model", err)
				return nil
			}
			overview.Homologations = homologations
			return nil
		})
	}
	_ = group.Wait()

	return overview, nil
}

// WheelInfo returns diameters and finishes for a wheel model.
func (s *Service) WheelInfo(ctx context.Context, wheelName string) (repository.WheelInfoRow, error) {
	info, err := s.repo.GetWheelBasicInfo(ctx, wheelName)
	if err != nil {
		return repository.WheelInfoRow{}, s.recover("get_wheel_basic_info", err)
	}
	return info, nil
}

// CarsForWheel lists the car families a wheel is applied to at a diameter
// given as free text.
func (s *Service) CarsForWheel(ctx context.Context, wheelName, rawDiameter string) ([]repository.CarFamilyRow, error) {
	diameter, err := NormalizeDiameter(rawDiameter)
	if err != nil {
		return nil, err
	}
	families, err := s.repo.ListCarsForWheel(ctx, wheelName, diameter)
	if err != nil {
		return nil, s.recover("list_cars_for_wheel", err)
	}
	return families, nil
}

// RawFitment echoes the raw applications row for diagnostics.
func (s *Service) RawFitment(ctx context.Context, carVersionID, wheelID int64) (map[string]interface{}, error) {
	return s.repo.GetRawFitment(ctx, carVersionID, wheelID)
}

// recover logs transient store failures and narrows them to NotFound so the
// cascade degrades instead of aborting the turn. Genuine misses pass through.
func (s *Service) recover(operation string, err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	s.log.DatabaseError(operation, err)
	return apperr.Wrap(apperr.KindNotFound, "catalog lookup failed", err).WithOp(operation)
}

// buildFitment derives the display record from a raw applications row.
func buildFitment(row repository.FitmentRow) Fitment {
	fitment := Fitment{
		CarVersionID:        row.CarVersionID,
		WheelID:             row.WheelID,
		FitmentType:         row.FitmentType,
		FitmentAdvice:       row.FitmentAdvice,
		Limitation:          row.Limitation,
		LimitationLocalized: row.LimitationLocalized,
		PlugPlay:            row.PlugPlay,
		Channel:             normalizeChannel(row.Channel),
		CenteringRing:       row.CenteringRing,
		BoltNut:             row.BoltNut,
		Homologations:       buildHomologations(row),
	}
	return fitment
}

// normalizeChannel strips the trailing width-unit suffix for display.
// Matching is unaffected.
func normalizeChannel(channel string) string {
	if strings.HasSuffix(channel, "J") || strings.HasSuffix(channel, "j") {
		return channel[:len(channel)-1]
	}
	return channel
}

// buildHomologations includes a scheme if and only if its code is non-empty.
func buildHomologations(row repository.FitmentRow) []Homologation {
	homologations := make([]Homologation, 0, 5)
	if row.HomologationTUV != "" {
		homologations = append(homologations, Homologation{Scheme: "TUV", Code: row.HomologationTUV, Doc: row.HomologationTUVDoc, Note: row.NoteTUV})
	}
	if row.HomologationKBA != "" {
		homologations = append(homologations, Homologation{Scheme: "KBA", Code: row.HomologationKBA, Doc: row.HomologationKBADoc, Note: row.NoteKBA})
	}
	if row.HomologationECE != "" {
		homologations = append(homologations, Homologation{Scheme: "ECE", Code: row.HomologationECE, Doc: row.HomologationECEDoc, Note: row.NoteECE})
	}
	if row.HomologationJWL != "" {
		homologations = append(homologations, Homologation{Scheme: "JWL", Code: row.HomologationJWL, Doc: row.HomologationJWLDoc})
	}
	if row.HomologationITA != "" {
		homologations = append(homologations, Homologation{Scheme: "ITA", Code: row.HomologationITA, Doc: row.HomologationITADoc, Note: row.NoteITA})
	}
	return homologations
}
