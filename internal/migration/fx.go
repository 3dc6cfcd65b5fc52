package migration

import (
	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/internal/config"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	legalcasedomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	regiondomain "github.com/civicworks/caseboard/internal/region/domain"
	"github.com/civicworks/caseboard/internal/seed"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments are local or test setups;
			// gorm derives the schema from the models there.
			if err := conn.AutoMigrate(
				&regiondomain.Region{},
				&regiondomain.Branch{},
				&userdomain.User{},
				&claimdomain.Claim{},
				&compliancedomain.ComplianceEntry{},
				&inspectiondomain.InspectionRecord{},
				&legalcasedomain.LegalCase{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.BootstrapAdmin {
			return seed.EnsureAdmin(conn)
		}
		return nil
	}),
)
