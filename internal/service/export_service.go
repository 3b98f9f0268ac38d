package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-rotation-api/internal/dto"
	"github.com/noah-isme/intern-rotation-api/internal/models"
	appErrors "github.com/noah-isme/intern-rotation-api/pkg/errors"
	"github.com/noah-isme/intern-rotation-api/pkg/export"
	"github.com/noah-isme/intern-rotation-api/pkg/storage"
)

// RosterFormat selects the rendered roster encoding.
type RosterFormat string

const (
	RosterFormatCSV RosterFormat = "csv"
	RosterFormatPDF RosterFormat = "pdf"
)

type rosterRenderer interface {
	Render(roster export.Roster) ([]byte, error)
}

type exportRotationLister interface {
	ListByIntern(ctx context.Context, internID string) ([]models.Rotation, error)
}

// ExportService renders the rotation roster: one row per intern with their
// current and upcoming unit. Files are rendered in memory and streamed
// straight to the response.
type ExportService struct {
	interns   internStore
	units     unitLister
	rotations exportRotationLister
	csv       rosterRenderer
	pdf       rosterRenderer
	archive   *storage.Archive
	signer    *storage.DownloadSigner
	logger    *zap.Logger
	today     func() models.Date
}

// NewExportService constructs an ExportService. Archive and signer are
// optional; without them only direct streaming works.
func NewExportService(interns internStore, units unitLister, rotations exportRotationLister, archive *storage.Archive, signer *storage.DownloadSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		interns:   interns,
		units:     units,
		rotations: rotations,
		csv:       export.NewCSVRenderer(),
		pdf:       export.NewPDFRenderer(),
		archive:   archive,
		signer:    signer,
		logger:    logger,
		today:     models.Today,
	}
}

var rosterColumns = []string{"Intern", "Batch", "Status", "Current Unit", "Until", "Next Unit", "From"}

// RenderRoster builds the roster for every non-completed intern and renders
// it in the requested format. Returns the bytes and a content type.
func (s *ExportService) RenderRoster(ctx context.Context, format RosterFormat) ([]byte, string, error) {
	interns, err := s.interns.ListByStatuses(ctx, models.InternStatusActive, models.InternStatusExtended)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interns")
	}
	units, err := s.units.ListOrdered(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	unitNames := make(map[string]string, len(units))
	for _, unit := range units {
		unitNames[unit.ID] = unit.Name
	}

	today := s.today()
	roster := export.Roster{
		Title:   fmt.Sprintf("Rotation Roster %s", today),
		Columns: rosterColumns,
	}
	for _, intern := range interns {
		rotations, err := s.rotations.ListByIntern(ctx, intern.ID)
		if err != nil {
			s.logger.Warn("skipping intern in roster export",
				zap.String("intern_id", intern.ID),
				zap.Error(err))
			continue
		}
		roster.Rows = append(roster.Rows, rosterRow(intern, rotations, unitNames, today))
	}

	switch format {
	case RosterFormatPDF:
		data, err := s.pdf.Render(roster)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
		}
		return data, "application/pdf", nil
	case RosterFormatCSV, "":
		data, err := s.csv.Render(roster)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
		}
		return data, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported roster format %q", format))
	}
}

// ArchiveRoster renders the roster, stores it on disk and returns a signed
// download token.
func (s *ExportService) ArchiveRoster(ctx context.Context, format RosterFormat) (*dto.RosterArchiveResult, error) {
	if s.archive == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export archive is not configured")
	}

	data, _, err := s.RenderRoster(ctx, format)
	if err != nil {
		return nil, err
	}

	ext := string(format)
	if ext == "" {
		ext = string(RosterFormatCSV)
	}
	exportID := uuid.NewString()
	name := fmt.Sprintf("roster/%s-%s.%s", s.today(), exportID[:8], ext)
	if _, err := s.archive.Save(name, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive roster")
	}

	token, expiresAt, err := s.signer.Sign(exportID, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("roster archived",
		zap.String("export_id", exportID),
		zap.String("file", name))

	return &dto.RosterArchiveResult{
		ExportID:  exportID,
		Filename:  name,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a download token and returns the on-disk path of
// the archived export.
func (s *ExportService) ResolveDownload(token string) (string, error) {
	if s.archive == nil || s.signer == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "export archive is not configured")
	}
	_, name, _, err := s.signer.Verify(token)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	path, err := s.archive.Path(name)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export name")
	}
	return path, nil
}

func rosterRow(intern models.Intern, rotations []models.Rotation, unitNames map[string]string, today models.Date) map[string]string {
	row := map[string]string{
		"Intern": intern.Name,
		"Batch":  string(intern.Batch),
		"Status": string(intern.Status),
	}
	for _, rotation := range rotations {
		if rotation.Covers(today) {
			row["Current Unit"] = unitNames[rotation.UnitID]
			row["Until"] = rotation.EndDate.String()
			break
		}
	}
	for _, rotation := range rotations {
		if rotation.StartsAfter(today) {
			row["Next Unit"] = unitNames[rotation.UnitID]
			row["From"] = rotation.StartDate.String()
			break
		}
	}
	return row
}
