package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	legaldomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/civicworks/caseboard/internal/region/domain"
	"github.com/civicworks/caseboard/internal/region/repository"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRegionService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Region{},
		&domain.Branch{},
		&claimdomain.Claim{},
		&compliancedomain.ComplianceEntry{},
		&inspectiondomain.InspectionRecord{},
		&legaldomain.LegalCase{},
		&userdomain.User{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, db
}

func TestCreateRegionSlugCode(t *testing.T) {
	svc, _ := newRegionService(t)
	ctx := context.Background()

	region, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "North West Province"})
	require.NoError(t, err)
	assert.Equal(t, "north-west-province", region.Code)

	_, err = svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestBranchRequiresExistingRegion(t *testing.T) {
	svc, _ := newRegionService(t)
	ctx := context.Background()

	region, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "Central"})
	require.NoError(t, err)

	branch, err := svc.CreateBranch(ctx, domain.CreateBranchRequest{
		RegionID: region.ID.String(),
		Name:     "Main Office",
	})
	require.NoError(t, err)
	assert.Equal(t, region.ID, branch.RegionID)
	assert.Equal(t, "central-main-office", branch.Code)

	_, err = svc.CreateBranch(ctx, domain.CreateBranchRequest{
		RegionID: snowflake.ID(424242).String(),
		Name:     "Orphan",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRegion)
}

func TestDeleteRegionInUse(t *testing.T) {
	svc, db := newRegionService(t)
	ctx := context.Background()

	region, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "Eastern"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&claimdomain.Claim{
		ID:       snowflake.ID(9001),
		ClaimNo:  "CLM-900",
		RegionID: region.ID,
	}).Error)

	err = svc.DeleteRegion(ctx, region.ID.String())
	assert.ErrorIs(t, err, domain.ErrRegionInUse)

	require.NoError(t, db.Exec("DELETE FROM claims").Error)
	require.NoError(t, svc.DeleteRegion(ctx, region.ID.String()))

	err = svc.DeleteRegion(ctx, region.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBranchInUse(t *testing.T) {
	svc, db := newRegionService(t)
	ctx := context.Background()

	region, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "Western"})
	require.NoError(t, err)
	branch, err := svc.CreateBranch(ctx, domain.CreateBranchRequest{
		RegionID: region.ID.String(),
		Name:     "Harbour",
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&userdomain.User{
		ID:       snowflake.ID(9002),
		Username: "clerk",
		Email:    "clerk@example.org",
		BranchID: branch.ID,
	}).Error)

	err = svc.DeleteBranch(ctx, branch.ID.String())
	assert.ErrorIs(t, err, domain.ErrBranchInUse)

	require.NoError(t, db.Exec("DELETE FROM users").Error)
	require.NoError(t, svc.DeleteBranch(ctx, branch.ID.String()))
}

func TestListBranchesFilteredByRegion(t *testing.T) {
	svc, _ := newRegionService(t)
	ctx := context.Background()

	east, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "East"})
	require.NoError(t, err)
	west, err := svc.CreateRegion(ctx, domain.CreateRegionRequest{Name: "West"})
	require.NoError(t, err)

	_, err = svc.CreateBranch(ctx, domain.CreateBranchRequest{RegionID: east.ID.String(), Name: "Alpha"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, domain.CreateBranchRequest{RegionID: west.ID.String(), Name: "Beta"})
	require.NoError(t, err)

	branches, err := svc.ListBranches(ctx, east.ID.String())
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "Alpha", branches[0].Name)

	all, err := svc.ListBranches(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListBranches(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidRegion)
}
