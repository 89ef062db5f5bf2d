package repository

import "context"

// WheelRef identifies a concrete wheel row and its finish-level version row,
// resolved from a wheel model plus diameter.
type WheelRef struct {
	WheelID        int64
	WheelVersionID int64
}

// FitmentRow is the applications row for one (car version, wheel) pair.
// Homologation columns are empty strings when the scheme does not apply:
// an empty column means "not homologated under this scheme", never "unknown".
type FitmentRow struct {
	ID                  int64
	CarVersionID        int64
	WheelID             int64
	FitmentType         string
	FitmentAdvice       string
	Limitation          string
	LimitationLocalized string
	PlugPlay            bool
	Channel             string
	CenteringRing       string
	BoltNut             string
	HomologationTUV     string
	HomologationTUVDoc  string
	NoteTUV             string
	HomologationKBA     string
	HomologationKBADoc  string
	NoteKBA             string
	HomologationECE     string
	HomologationECEDoc  string
	NoteECE             string
	HomologationJWL     string
	HomologationJWLDoc  string
	HomologationITA     string
	HomologationITADoc  string
	NoteITA             string
}

// WheelInfoRow aggregates the diameters and finishes of one wheel model.
type WheelInfoRow struct {
	ModelID   int64
	ModelName string
	Diameters string // comma-separated, catalog order
	Finishes  string // comma-separated, exact catalog wording
}

// WheelModelOption is a family-level candidate wheel model for a car model.
type WheelModelOption struct {
	ModelID     int64
	ModelName   string
	MaxDiameter int
	Finishes    string // comma-separated, exact catalog wording
}

// CarFamilyRow is a (manufacturer, car model) pair a wheel is applied to.
type CarFamilyRow struct {
	ManufacturerName string
	ModelName        string
}

// FamilyHomologationRow carries the homologation coverage of one
// (wheel model, diameter) combination across a car family.
type FamilyHomologationRow struct {
	WheelModel string
	Diameter   int
	TUV        string
	KBA        string
	ECE        string
	JWL        string
	ITA        string
}

// TableCountRow pairs a table name with its row count for diagnostics.
type TableCountRow struct {
	Name  string
	Count int64
}

// Repository is the read-only catalog store. Every lookup reports a miss as
// apperr.NotFound; SQL failures are returned wrapped for the caller to
// recover locally.
type Repository interface {
	// Entity resolution (fuzzy name-to-identifier lookups)
	ResolveManufacturer(ctx context.Context, name string) (int64, error)
	ResolveCarModel(ctx context.Context, manufacturerID int64, name string) (int64, error)
	ResolveCarVersion(ctx context.Context, carModelID int64, label string) (int64, error)
	ResolveWheelModel(ctx context.Context, name string) (int64, error)
	ResolveWheelByDiameter(ctx context.Context, wheelModelID int64, diameter int) (WheelRef, error)

	// Fitment and family-level aggregates
	GetFitment(ctx context.Context, carVersionID, wheelID int64) (FitmentRow, error)
	GetWheelBasicInfo(ctx context.Context, wheelName string) (WheelInfoRow, error)
	ListWheelModelsForCarModel(ctx context.Context, carModelID int64) ([]WheelModelOption, error)
	ListCarsForWheel(ctx context.Context, wheelName string, diameter int) ([]CarFamilyRow, error)
	ListHomologationsByCarModel(ctx context.Context, carModelID int64) ([]FamilyHomologationRow, error)

	// Diagnostics
	Ping(ctx context.Context) error
	Version(ctx context.Context) (string, error)
	ListTables(ctx context.Context) ([]string, error)
	ListTableCounts(ctx context.Context) ([]TableCountRow, error)
	SampleApplications(ctx context.Context, limit int) ([]map[string]interface{}, error)
	GetRawFitment(ctx context.Context, carVersionID, wheelID int64) (map[string]interface{}, error)
}
