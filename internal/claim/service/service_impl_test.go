package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/casefile"
	"github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/claim/repository"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/identity"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Claim{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Policy:  config.StaticImportPolicy(config.DefaultImportPolicy()),
		Metrics: nil,
	}).(*Service)
	return svc, db
}

func asManager(userID snowflake.ID) context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{
		UserID:   userID,
		Username: "manager",
		Role:     casefile.RoleManager,
	})
}

func asRegional(userID, regionID snowflake.ID) context.Context {
	return identity.WithIdentity(context.Background(), identity.Identity{
		UserID:   userID,
		Username: "regional",
		Role:     casefile.RoleRegional,
		RegionID: regionID,
	})
}

func seedClaim(t *testing.T, svc *Service, ctx context.Context, claimNo, status string) domain.View {
	t.Helper()
	view, err := svc.Create(ctx, domain.Wire{
		ClaimNo:         claimNo,
		Employer:        "Acme Mills",
		Claimant:        "J. Doe",
		ClaimType:       "age",
		RecordStatus:    status,
		AmountRequested: "1200.50",
		AmountPaid:      "1000",
		PaymentPeriod:   "2025-06",
	})
	require.NoError(t, err)
	return view
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)

	seedClaim(t, svc, ctx, "CLM-001", "pending")

	_, err := svc.Create(ctx, domain.Wire{ClaimNo: "CLM-001", Employer: "Other"})
	assert.ErrorIs(t, err, domain.ErrClaimExists)

	_, err = svc.Create(ctx, domain.Wire{Employer: "No Number"})
	assert.ErrorIs(t, err, domain.ErrInvalidClaimNo)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)

	view := seedClaim(t, svc, ctx, "CLM-002", "pending")
	id := view.ID.String()

	// pending cannot jump straight to approved
	_, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: id, RecordStatus: "approved"})
	assert.ErrorIs(t, err, casefile.ErrTransitionNotAllowed)

	updated, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: id, RecordStatus: "reviewed"})
	require.NoError(t, err)
	assert.Equal(t, "reviewed", updated.RecordStatus)

	updated, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: id, RecordStatus: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "approved", updated.RecordStatus)

	// approved is terminal
	_, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: id, RecordStatus: "reviewed"})
	assert.ErrorIs(t, err, casefile.ErrTransitionNotAllowed)
}

func TestUpdateStatusRoleGate(t *testing.T) {
	svc, _ := newTestService(t)
	manager := asManager(10)

	view := seedClaim(t, svc, manager, "CLM-003", "reviewed")

	regional := asRegional(11, 0)
	_, err := svc.UpdateStatus(regional, domain.UpdateStatusRequest{
		ID:           view.ID.String(),
		RecordStatus: "approved",
	})
	assert.ErrorIs(t, err, casefile.ErrRoleNotPermitted)
}

func TestBulkTransitionPartition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)

	pending := seedClaim(t, svc, ctx, "CLM-010", "pending")
	approved := seedClaim(t, svc, ctx, "CLM-011", "approved")
	missingID := snowflake.ID(999888777).String()

	result, err := svc.BulkTransition(ctx, domain.BulkTransitionRequest{
		IDs:    []string{pending.ID.String(), approved.ID.String(), missingID, "not-a-number"},
		Action: "review",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{pending.ID.String()}, result.Updated)
	assert.Equal(t, []string{missingID}, result.Missing)
	assert.ElementsMatch(t, []string{approved.ID.String(), "not-a-number"}, result.Errors)
	assert.False(t, result.FullySuccessful())
	assert.Equal(t, 4, result.Total())
}

func TestBulkTransitionEmptySelection(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.BulkTransition(asManager(10), domain.BulkTransitionRequest{Action: "review"})
	assert.ErrorIs(t, err, casefile.ErrEmptySelection)
}

func TestBulkTransitionRoleGate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)
	view := seedClaim(t, svc, ctx, "CLM-020", "reviewed")

	officer := identity.WithIdentity(context.Background(), identity.Identity{
		UserID: 12,
		Role:   casefile.RoleOfficer,
	})
	_, err := svc.BulkTransition(officer, domain.BulkTransitionRequest{
		IDs:    []string{view.ID.String()},
		Action: "approve",
	})
	assert.ErrorIs(t, err, casefile.ErrRoleNotPermitted)
}

func TestImportAllOrNothing(t *testing.T) {
	svc, db := newTestService(t)
	ctx := asRegional(20, 501)

	header := "Claim ID,Employer,Claimant,Type,Amount Requested,Amount Paid,Status,Date Processed,Date Paid,Sector,Class,Payment Period\n"

	bad := header +
		"CLM-100,Acme,J. Doe,age,1000,900,pending,,,Mining,A,2025-05\n" +
		"CLM-101,Acme,,age,1000,900,pending,,,Mining,A,2025-05\n" +
		"CLM-102,Acme,K. Roe,age,abc,900,pending,,,Mining,A,2025-05\n"

	_, err := svc.Import(ctx, "claims.csv", strings.NewReader(bad))
	var impErr *domain.ImportError
	require.ErrorAs(t, err, &impErr)

	// invalid spreadsheet rows are at data indexes 1 and 2, reported +2
	rows := make([]int, 0, len(impErr.Errors))
	for _, rowErr := range impErr.Errors {
		rows = append(rows, rowErr.Row)
	}
	assert.ElementsMatch(t, []int{3, 4}, rows)

	var count int64
	require.NoError(t, db.Model(&domain.Claim{}).Count(&count).Error)
	assert.Zero(t, count, "a rejected batch must write nothing")

	good := header +
		"CLM-100,Acme,J. Doe,age,1000,900,pending,,,Mining,A,2025-05\n" +
		"CLM-101,Acme,M. Poe,invalidity,2000,1800,reviewed,2025-05-02,2025-05-09,Mining,B,2025-05\n"

	result, err := svc.Import(ctx, "claims.csv", strings.NewReader(good))
	require.NoError(t, err)
	assert.Equal(t, 2, result.UploadedRecords)
	assert.Equal(t, snowflake.ID(501).String(), result.Region)
	assert.NotEmpty(t, result.BatchRef)

	require.NoError(t, db.Model(&domain.Claim{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// region comes from the caller, never the file
	stored, err := svc.GetByID(ctx, mustFindID(t, db, "CLM-100"))
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(501), stored.RegionID)
}

func TestImportRejectsDuplicateClaimNos(t *testing.T) {
	svc, db := newTestService(t)
	ctx := asManager(10)

	seedClaim(t, svc, ctx, "CLM-100", "pending")

	header := "Claim ID,Employer,Claimant,Type,Amount Requested,Amount Paid,Status,Date Processed,Date Paid,Sector,Class,Payment Period\n"
	batch := header +
		"CLM-100,Acme,J. Doe,age,1000,900,pending,,,Mining,A,2025-05\n" +
		"CLM-101,Acme,M. Poe,age,2000,1800,pending,,,Mining,A,2025-05\n" +
		"CLM-101,Acme,M. Poe,age,2000,1800,pending,,,Mining,A,2025-05\n"

	_, err := svc.Import(ctx, "claims.csv", strings.NewReader(batch))
	var impErr *domain.ImportError
	require.ErrorAs(t, err, &impErr)

	// stored collision on data row 0, in-file repeat on data row 2
	rows := make([]int, 0, len(impErr.Errors))
	for _, rowErr := range impErr.Errors {
		rows = append(rows, rowErr.Row)
		assert.Equal(t, "Claim ID", rowErr.Column)
	}
	assert.ElementsMatch(t, []int{2, 4}, rows)

	var count int64
	require.NoError(t, db.Model(&domain.Claim{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "only the pre-existing claim remains")
}

func mustFindID(t *testing.T, db *gorm.DB, claimNo string) string {
	t.Helper()
	var claim domain.Claim
	require.NoError(t, db.Where("claim_no = ?", claimNo).First(&claim).Error)
	return claim.ID.String()
}

func TestDashboardDetailMode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)

	view := seedClaim(t, svc, ctx, "CLM-030", "pending")
	seedClaim(t, svc, ctx, "CLM-031", "pending")

	resp, err := svc.Dashboard(ctx, domain.DashboardRequest{ClaimID: view.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Claims, 1)
	assert.Equal(t, "CLM-030", resp.Claims[0].ClaimNo)
	assert.EqualValues(t, 1, resp.PageInfo.TotalCount)
	assert.Equal(t, 1, resp.PageInfo.TotalPages)
}

func TestDashboardAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)

	seedClaim(t, svc, ctx, "CLM-040", "pending")
	seedClaim(t, svc, ctx, "CLM-041", "reviewed")
	seedClaim(t, svc, ctx, "CLM-042", "approved")

	resp, err := svc.Dashboard(ctx, domain.DashboardRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Metrics.TotalClaims)
	assert.EqualValues(t, 1, resp.Metrics.PendingClaims)
	assert.EqualValues(t, 1, resp.Metrics.ReviewedClaims)
	assert.EqualValues(t, 1, resp.Metrics.ApprovedClaims)
	require.Len(t, resp.Series, 1)
	assert.Equal(t, "2025-06", resp.Series[0].Period)
}

func TestListRegionalPinnedToOwnRegion(t *testing.T) {
	svc, db := newTestService(t)
	manager := asManager(10)

	mine := seedClaim(t, svc, manager, "CLM-050", "pending")
	other := seedClaim(t, svc, manager, "CLM-051", "pending")
	require.NoError(t, db.Model(&domain.Claim{}).Where("id = ?", mine.ID).Update("region_id", 601).Error)
	require.NoError(t, db.Model(&domain.Claim{}).Where("id = ?", other.ID).Update("region_id", 602).Error)

	// a regional user asking for another region still only sees their own
	regional := asRegional(21, 601)
	resp, err := svc.List(regional, domain.ListRequest{RegionID: "602"})
	require.NoError(t, err)
	require.Len(t, resp.Claims, 1)
	assert.Equal(t, "CLM-050", resp.Claims[0].ClaimNo)
}

func TestListSentinelAndPeriodValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := asManager(10)
	seedClaim(t, svc, ctx, "CLM-060", "pending")

	resp, err := svc.List(ctx, domain.ListRequest{RecordStatus: "all", RegionID: "all"})
	require.NoError(t, err)
	assert.Len(t, resp.Claims, 1)

	_, err = svc.List(ctx, domain.ListRequest{Period: "June 2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}
