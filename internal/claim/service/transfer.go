package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/civicworks/caseboard/internal/spreadsheet"
	"github.com/civicworks/caseboard/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Column names of the claims workbook, fixed so exports round-trip
// back through import.
const (
	colClaimID         = "Claim ID"
	colEmployer        = "Employer"
	colClaimant        = "Claimant"
	colType            = "Type"
	colAmountRequested = "Amount Requested"
	colAmountPaid      = "Amount Paid"
	colStatus          = "Status"
	colDateProcessed   = "Date Processed"
	colDatePaid        = "Date Paid"
	colSector          = "Sector"
	colClass           = "Class"
	colPaymentPeriod   = "Payment Period"
)

func importSchema(policy config.ImportPolicy) spreadsheet.Schema {
	return spreadsheet.Schema{
		Columns: []spreadsheet.ColumnRule{
			{Name: colClaimID, Required: true},
			{Name: colEmployer, Required: true},
			{Name: colClaimant, Required: true},
			{Name: colType, Required: true, Allowed: policy.AllowedClaimType},
			{Name: colAmountRequested, Required: true, Numeric: true},
			{Name: colAmountPaid, Numeric: true},
			{Name: colStatus, Required: true, Allowed: policy.AllowedStatuses},
			{Name: colDateProcessed},
			{Name: colDatePaid},
			{Name: colSector},
			{Name: colClass},
			{Name: colPaymentPeriod},
		},
	}
}

// Import ingests an uploaded workbook. The batch is all-or-nothing:
// every row is validated before any row is written, and one bad row
// rejects the file with the complete error list.
func (s *Service) Import(ctx context.Context, filename string, content io.Reader) (domain.ImportResult, error) {
	policy := s.policy.Get()

	rows, err := spreadsheet.Read(content, filename, policy.MaxRows)
	if err != nil {
		s.metrics.RecordImport(ctx, "claim", "rejected", 0)
		return domain.ImportResult{}, err
	}

	schema := importSchema(policy)
	if rowErrs := schema.ValidateAll(rows); len(rowErrs) > 0 {
		s.metrics.RecordImport(ctx, "claim", "rejected", len(rows))
		return domain.ImportResult{}, &domain.ImportError{Errors: rowErrs}
	}

	rowErrs, err := s.duplicateClaimNos(ctx, rows)
	if err != nil {
		return domain.ImportResult{}, err
	}
	if len(rowErrs) > 0 {
		s.metrics.RecordImport(ctx, "claim", "rejected", len(rows))
		return domain.ImportResult{}, &domain.ImportError{Errors: rowErrs}
	}

	ident, _ := identity.FromContext(ctx)
	batchRef := uuid.NewString()

	now := time.Now().UTC()
	claims := make([]domain.Claim, 0, len(rows))
	for _, row := range rows {
		claim := domain.Wire{
			ClaimNo:         row[colClaimID],
			Employer:        row[colEmployer],
			Claimant:        row[colClaimant],
			ClaimType:       row[colType],
			RecordStatus:    row[colStatus],
			AmountRequested: row[colAmountRequested],
			AmountPaid:      row[colAmountPaid],
			DateProcessed:   row[colDateProcessed],
			DatePaid:        row[colDatePaid],
			Sector:          row[colSector],
			Class:           row[colClass],
			PaymentPeriod:   row[colPaymentPeriod],
		}.Normalize()

		claim.ID = s.genID.Generate()
		claim.CreatedBy = ident.UserID
		// Region comes from the authenticated caller, never the file.
		claim.RegionID = ident.RegionID
		claim.BranchID = 0
		claim.CreatedAt = now
		claim.UpdatedAt = now
		claims = append(claims, claim)
	}

	if err := s.repo.InsertBatch(ctx, s.db, claims); err != nil {
		s.metrics.RecordImport(ctx, "claim", "failed", len(claims))
		if db.IsDuplicateKeyErr(err) {
			return domain.ImportResult{}, domain.ErrClaimExists
		}
		return domain.ImportResult{}, err
	}

	s.metrics.RecordImport(ctx, "claim", "accepted", len(claims))
	s.log.Info("claims imported",
		zap.String("batch_ref", batchRef),
		zap.Int("rows", len(claims)),
		zap.String("region_id", ident.RegionID.String()),
	)

	region := ""
	if ident.RegionID != 0 {
		region = ident.RegionID.String()
	}
	return domain.ImportResult{BatchRef: batchRef, UploadedRecords: len(claims), Region: region}, nil
}

// Export streams the filtered claim set as a workbook or delimited
// text. Filtering runs through the shared predicate engine so exports
// see exactly what a filtered table shows.
func (s *Service) Export(ctx context.Context, req domain.ExportRequest, w io.Writer) error {
	filter, err := s.resolveFilter(ctx, req.ListRequest)
	if err != nil {
		return err
	}

	// Region scoping stays in SQL; the remaining dimensions run through
	// the in-memory engine.
	claims, err := s.repo.ListAll(ctx, s.db, domain.ListFilter{RegionID: filter.RegionID})
	if err != nil {
		return err
	}

	filtered := casefile.Apply(claims, casefile.FilterState{
		Search:     filter.Search,
		Status:     filter.RecordStatus,
		Type:       filter.ClaimType,
		BranchID:   idString(filter.BranchID),
		Period:     filter.Period,
		PeriodFrom: filter.PeriodFrom,
		PeriodTo:   filter.PeriodTo,
	}, func(c domain.Claim) casefile.FilterFields {
		return casefile.FilterFields{
			SearchText: []string{c.ClaimNo, c.Employer, c.Claimant},
			Status:     c.RecordStatus,
			Type:       c.ClaimType,
			BranchID:   idString(c.BranchID),
			Period:     c.PaymentPeriod,
		}
	})

	header := importSchema(config.DefaultImportPolicy()).Header()

	if req.Format == spreadsheet.FormatCSV {
		records := make([][]string, 0, len(filtered))
		for _, claim := range filtered {
			records = append(records, []string{
				claim.ClaimNo,
				claim.Employer,
				claim.Claimant,
				claim.ClaimType,
				strconv.FormatFloat(claim.AmountRequested, 'f', 2, 64),
				strconv.FormatFloat(claim.AmountPaid, 'f', 2, 64),
				claim.RecordStatus,
				formatDate(claim.DateProcessed),
				formatDate(claim.DatePaid),
				claim.Sector,
				claim.Class,
				claim.PaymentPeriod,
			})
		}
		if err := spreadsheet.WriteCSV(w, header, records); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	} else {
		records := make([][]interface{}, 0, len(filtered))
		for _, claim := range filtered {
			records = append(records, []interface{}{
				claim.ClaimNo,
				claim.Employer,
				claim.Claimant,
				claim.ClaimType,
				claim.AmountRequested,
				claim.AmountPaid,
				claim.RecordStatus,
				formatDate(claim.DateProcessed),
				formatDate(claim.DatePaid),
				claim.Sector,
				claim.Class,
				claim.PaymentPeriod,
			})
		}
		if err := spreadsheet.WriteWorkbook(w, "Claims", header, records); err != nil {
			return fmt.Errorf("export workbook: %w", err)
		}
	}

	s.metrics.RecordExport(ctx, "claim", string(req.Format))
	return nil
}

// duplicateClaimNos rejects rows whose claim id collides with a stored
// claim or with an earlier row in the same file. Runs after schema
// validation so the error list uses the same row numbering.
func (s *Service) duplicateClaimNos(ctx context.Context, rows []spreadsheet.Row) ([]spreadsheet.RowError, error) {
	claimNos := make([]string, 0, len(rows))
	for _, row := range rows {
		claimNos = append(claimNos, row[colClaimID])
	}

	existing, err := s.repo.ExistingClaimNos(ctx, s.db, claimNos)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]struct{}, len(existing))
	for _, claimNo := range existing {
		stored[claimNo] = struct{}{}
	}

	var errs []spreadsheet.RowError
	seen := make(map[string]int, len(claimNos))
	for i, claimNo := range claimNos {
		if _, ok := stored[claimNo]; ok {
			errs = append(errs, spreadsheet.RowError{
				Row:     i + 2,
				Column:  colClaimID,
				Message: "claim id already exists",
				Value:   claimNo,
			})
			continue
		}
		if first, ok := seen[claimNo]; ok {
			errs = append(errs, spreadsheet.RowError{
				Row:     i + 2,
				Column:  colClaimID,
				Message: fmt.Sprintf("duplicate of row %d", first+2),
				Value:   claimNo,
			})
			continue
		}
		seen[claimNo] = i
	}
	return errs, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func idString(id snowflake.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
