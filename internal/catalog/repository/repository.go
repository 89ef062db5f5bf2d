package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitment_chat_backend/platform/apperr"
)

const (
	manufacturerNotFoundMessage = "manufacturer not found"
	carModelNotFoundMessage     = "car model not found"
	carVersionNotFoundMessage   = "car version not found"
	wheelModelNotFoundMessage   = "wheel model not found"
	wheelNotFoundMessage        = "wheel not found for diameter"
	fitmentNotFoundMessage      = "no fitment for this combination"
	wheelInfoNotFoundMessage    = "wheel info not found"
)

// Repo implements the catalog repository against Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ResolveManufacturer finds a manufacturer by case-insensitive substring.
// First match wins in store order; best effort by design.
func (r *Repo) ResolveManufacturer(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM car_manufacturers WHERE manufacturer ILIKE $1 LIMIT 1`

	var id int64
	if err := r.pool.QueryRow(ctx, query, "%"+name+"%").Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(manufacturerNotFoundMessage)
		}
		return 0, fmt.Errorf("resolve manufacturer: %w", err)
	}
	return id, nil
}

// ResolveCarModel finds a car model by substring, scoped to the manufacturer.
func (r *Repo) ResolveCarModel(ctx context.Context, manufacturerID int64, name string) (int64, error) {
	query := `SELECT id FROM car_models WHERE manufacturer = $1 AND model ILIKE $2 LIMIT 1`

	var id int64
	if err := r.pool.QueryRow(ctx, query, manufacturerID, "%"+name+"%").Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(carModelNotFoundMessage)
		}
		return 0, fmt.Errorf("resolve car model: %w", err)
	}
	return id, nil
}

// ResolveCarVersion finds a trim/generation by substring, scoped to the model.
// The label may be a trim name, a year string, or free text.
func (r *Repo) ResolveCarVersion(ctx context.Context, carModelID int64, label string) (int64, error) {
	query := `SELECT id FROM car_versions WHERE car = $1 AND version ILIKE $2 LIMIT 1`

	var id int64
	if err := r.pool.QueryRow(ctx, query, carModelID, "%"+label+"%").Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(carVersionNotFoundMessage)
		}
		return 0, fmt.Errorf("resolve car version: %w", err)
	}
	return id, nil
}

// ResolveWheelModel finds a wheel model by global substring match.
// Not scoped to a product line, so ambiguous names may collide.
func (r *Repo) ResolveWheelModel(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM am_wheel_models WHERE model ILIKE $1 LIMIT 1`

	var id int64
	if err := r.pool.QueryRow(ctx, query, "%"+name+"%").Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound(wheelModelNotFoundMessage)
		}
		return 0, fmt.Errorf("resolve wheel model: %w", err)
	}
	return id, nil
}

// ResolveWheelByDiameter finds the wheel row for an exact integer diameter
// within a wheel model. Inactive rows are invisible.
func (r *Repo) ResolveWheelByDiameter(ctx context.Context, wheelModelID int64, diameter int) (WheelRef, error) {
	query := `
		SELECT v.id, v.am_wheel
		FROM am_wheel_versions v
		JOIN am_wheels w ON v.am_wheel = w.id
		WHERE w.model = $1 AND w.diameter = $2 AND w.status = 'ACTIVE'
		LIMIT 1`

	var ref WheelRef
	if err := r.pool.QueryRow(ctx, query, wheelModelID, diameter).Scan(&ref.WheelVersionID, &ref.WheelID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WheelRef{}, apperr.NotFound(wheelNotFoundMessage)
		}
		return WheelRef{}, fmt.Errorf("resolve wheel by diameter: %w", err)
	}
	return ref, nil
}

// GetFitment retrieves the applications row for a (car version, wheel) pair.
// At most one row is treated as authoritative; first match wins.
func (r *Repo) GetFitment(ctx context.Context, carVersionID, wheelID int64) (FitmentRow, error) {
	query := `
		SELECT
			id, car, am_wheel,
			COALESCE(fitment_type, ''), COALESCE(fitment_advice, ''),
			COALESCE(limitation, ''), COALESCE(limitation_it, ''),
			COALESCE(plug_play, FALSE),
			COALESCE(channel, ''), COALESCE(centering_ring, ''), COALESCE(bolt_nut, ''),
			COALESCE(homologation_tuv, ''), COALESCE(homologation_tuv_doc, ''), COALESCE(note_tuv, ''),
			COALESCE(homologation_kba, ''), COALESCE(homologation_kba_doc, ''), COALESCE(note_kba, ''),
			COALESCE(homologation_ece, ''), COALESCE(homologation_ece_doc, ''), COALESCE(note_ece, ''),
			COALESCE(homologation_jwl, ''), COALESCE(homologation_jwl_doc, ''),
			COALESCE(homologation_ita, ''), COALESCE(homologation_ita_doc, ''), COALESCE(note_ita, '')
		FROM applications
		WHERE car = $1 AND am_wheel = $2
		LIMIT 1`

	var row FitmentRow
	if err := r.pool.QueryRow(ctx, query, carVersionID, wheelID).Scan(
		&row.ID, &row.CarVersionID, &row.WheelID,
		&row.FitmentType, &row.FitmentAdvice,
		&row.Limitation, &row.LimitationLocalized,
		&row.PlugPlay,
		&row.Channel, &row.CenteringRing, &row.BoltNut,
		&row.HomologationTUV, &row.HomologationTUVDoc, &row.NoteTUV,
		&row.HomologationKBA, &row.HomologationKBADoc, &row.NoteKBA,
		&row.HomologationECE, &row.HomologationECEDoc, &row.NoteECE,
		&row.HomologationJWL, &row.HomologationJWLDoc,
		&row.HomologationITA, &row.HomologationITADoc, &row.NoteITA,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FitmentRow{}, apperr.NotFound(fitmentNotFoundMessage)
		}
		return FitmentRow{}, fmt.Errorf("get fitment: %w", err)
	}
	return row, nil
}

// GetWheelBasicInfo aggregates available diameters and finishes for a wheel
// model matched by substring. Finishes keep their exact catalog wording.
func (r *Repo) GetWheelBasicInfo(ctx context.Context, wheelName string) (WheelInfoRow, error) {
	query := `
		SELECT
			m.id,
			m.model,
			COALESCE(string_agg(DISTINCT w.diameter::text, ','), ''),
			COALESCE(string_agg(DISTINCT v.finish, ','), '')
		FROM am_wheel_models m
		JOIN am_wheels w ON w.model = m.id
		JOIN am_wheel_versions v ON v.am_wheel = w.id
		WHERE m.model ILIKE $1 AND w.status = 'ACTIVE'
		GROUP BY m.id, m.model
		LIMIT 1`

	var info WheelInfoRow
	if err := r.pool.QueryRow(ctx, query, "%"+wheelName+"%").Scan(
		&info.ModelID, &info.ModelName, &info.Diameters, &info.Finishes,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WheelInfoRow{}, apperr.NotFound(wheelInfoNotFoundMessage)
		}
		return WheelInfoRow{}, fmt.Errorf("get wheel basic info: %w", err)
	}
	return info, nil
}

// ListWheelModelsForCarModel lists wheel models applied anywhere in a car
// family, newest and largest first. Advisory data, not version-exact.
func (r *Repo) ListWheelModelsForCarModel(ctx context.Context, carModelID int64) ([]WheelModelOption, error) {
	query := `
		SELECT
			m.id,
			m.model,
			MAX(w.diameter),
			COALESCE(string_agg(DISTINCT v.finish, ','), ''),
			MAX(w.updated_at) AS last_update
		FROM car_versions cv
		JOIN applications a ON a.car = cv.id
		JOIN am_wheels w ON a.am_wheel = w.id
		JOIN am_wheel_models m ON w.model = m.id
		LEFT JOIN am_wheel_versions v ON v.am_wheel = w.id
		WHERE cv.car = $1 AND w.status = 'ACTIVE'
		GROUP BY m.id, m.model
		ORDER BY last_update DESC, MAX(w.diameter) DESC
		LIMIT 12`

	rows, err := r.pool.Query(ctx, query, carModelID)
	if err != nil {
		return nil, fmt.Errorf("list wheel models for car model: %w", err)
	}
	defer rows.Close()

	var options []WheelModelOption
	for rows.Next() {
		var opt WheelModelOption
		var lastUpdate interface{}
		if err := rows.Scan(&opt.ModelID, &opt.ModelName, &opt.MaxDiameter, &opt.Finishes, &lastUpdate); err != nil {
			return nil, fmt.Errorf("scan wheel model option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wheel models for car model: %w", err)
	}
	return options, nil
}

// ListCarsForWheel lists car families a wheel model is applied to at the
// given diameter, grouped by manufacturer and model.
func (r *Repo) ListCarsForWheel(ctx context.Context, wheelName string, diameter int) ([]CarFamilyRow, error) {
	query := `
		SELECT
			man.manufacturer,
			cm.model
		FROM am_wheel_models wm
		JOIN am_wheels w ON w.model = wm.id
		JOIN applications a ON a.am_wheel = w.id
		JOIN car_versions cv ON cv.id = a.car
		JOIN car_models cm ON cm.id = cv.car
		JOIN car_manufacturers man ON man.id = cm.manufacturer
		WHERE wm.model ILIKE $1 AND w.diameter = $2 AND w.status = 'ACTIVE'
		GROUP BY man.manufacturer, cm.model
		ORDER BY man.manufacturer, cm.model
		LIMIT 100`

	rows, err := r.pool.Query(ctx, query, "%"+wheelName+"%", diameter)
	if err != nil {
		return nil, fmt.Errorf("list cars for wheel: %w", err)
	}
	defer rows.Close()

	var families []CarFamilyRow
	for rows.Next() {
		var family CarFamilyRow
		if err := rows.Scan(&family.ManufacturerName, &family.ModelName); err != nil {
			return nil, fmt.Errorf("scan car family: %w", err)
		}
		families = append(families, family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cars for wheel: %w", err)
	}
	return families, nil
}

// ListHomologationsByCarModel lists homologation coverage per
// (wheel model, diameter) across a car family.
func (r *Repo) ListHomologationsByCarModel(ctx context.Context, carModelID int64) ([]FamilyHomologationRow, error) {
	query := `
		SELECT
			m.model,
			w.diameter,
			COALESCE(MAX(a.homologation_tuv), ''),
			COALESCE(MAX(a.homologation_kba), ''),
			COALESCE(MAX(a.homologation_ece), ''),
			COALESCE(MAX(a.homologation_jwl), ''),
			COALESCE(MAX(a.homologation_ita), '')
		FROM car_versions cv
		JOIN applications a ON a.car = cv.id
		JOIN am_wheels w ON a.am_wheel = w.id
		JOIN am_wheel_models m ON w.model = m.id
		WHERE cv.car = $1 AND w.status = 'ACTIVE'
		GROUP BY m.model, w.diameter
		ORDER BY m.model, w.diameter`

	rows, err := r.pool.Query(ctx, query, carModelID)
	if err != nil {
		return nil, fmt.Errorf("list homologations by car model: %w", err)
	}
	defer rows.Close()

	var results []FamilyHomologationRow
	for rows.Next() {
		var row FamilyHomologationRow
		if err := rows.Scan(&row.WheelModel, &row.Diameter, &row.TUV, &row.KBA, &row.ECE, &row.JWL, &row.ITA); err != nil {
			return nil, fmt.Errorf("scan family homologation: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list homologations by car model: %w", err)
	}
	return results, nil
}
