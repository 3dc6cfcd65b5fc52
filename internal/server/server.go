package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/caseboard/internal/audit"
	auditdomain "github.com/civicworks/caseboard/internal/audit/domain"
	"github.com/civicworks/caseboard/internal/auth"
	authdomain "github.com/civicworks/caseboard/internal/auth/domain"
	"github.com/civicworks/caseboard/internal/authz"
	"github.com/civicworks/caseboard/internal/claim"
	claimdomain "github.com/civicworks/caseboard/internal/claim/domain"
	"github.com/civicworks/caseboard/internal/compliance"
	compliancedomain "github.com/civicworks/caseboard/internal/compliance/domain"
	"github.com/civicworks/caseboard/internal/config"
	"github.com/civicworks/caseboard/internal/dashboard"
	dashboarddomain "github.com/civicworks/caseboard/internal/dashboard/domain"
	"github.com/civicworks/caseboard/internal/inspection"
	inspectiondomain "github.com/civicworks/caseboard/internal/inspection/domain"
	"github.com/civicworks/caseboard/internal/legalcase"
	legaldomain "github.com/civicworks/caseboard/internal/legalcase/domain"
	"github.com/civicworks/caseboard/internal/observability"
	obslogger "github.com/civicworks/caseboard/internal/observability/logger"
	obsmetrics "github.com/civicworks/caseboard/internal/observability/metrics"
	obstracing "github.com/civicworks/caseboard/internal/observability/tracing"
	"github.com/civicworks/caseboard/internal/ratelimit"
	"github.com/civicworks/caseboard/internal/region"
	regiondomain "github.com/civicworks/caseboard/internal/region/domain"
	"github.com/civicworks/caseboard/internal/user"
	userdomain "github.com/civicworks/caseboard/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authz.Module,
	audit.Module,
	auth.Module,
	user.Module,
	region.Module,
	claim.Module,
	compliance.Module,
	inspection.Module,
	legalcase.Module,
	dashboard.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestContext())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	genID         *snowflake.Node
	authsvc       authdomain.Service
	authzSvc      authz.Service
	auditSvc      auditdomain.Service
	userSvc       userdomain.Service
	regionSvc     regiondomain.Service
	claimSvc      claimdomain.Service
	complianceSvc compliancedomain.Service
	inspectionSvc inspectiondomain.Service
	legalSvc      legaldomain.Service
	dashboardSvc  dashboarddomain.Service
	uploadLimiter *ratelimit.UploadLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	GenID         *snowflake.Node
	Authsvc       authdomain.Service
	AuthzSvc      authz.Service
	AuditSvc      auditdomain.Service
	UserSvc       userdomain.Service
	RegionSvc     regiondomain.Service
	ClaimSvc      claimdomain.Service
	ComplianceSvc compliancedomain.Service
	InspectionSvc inspectiondomain.Service
	LegalSvc      legaldomain.Service
	DashboardSvc  dashboarddomain.Service
	UploadLimiter *ratelimit.UploadLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		genID:         p.GenID,
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		userSvc:       p.UserSvc,
		regionSvc:     p.RegionSvc,
		claimSvc:      p.ClaimSvc,
		complianceSvc: p.ComplianceSvc,
		inspectionSvc: p.InspectionSvc,
		legalSvc:      p.LegalSvc,
		dashboardSvc:  p.DashboardSvc,
		uploadLimiter: p.UploadLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerStorageRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/auth")

	group.POST("/login", s.Login)
	group.POST("/refresh", s.Refresh)
	group.GET("/me", s.AuthRequired(), s.Me)
	group.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Claims --------
	claims := api.Group("/claims")
	claims.GET("/dashboard", s.authorize(authz.ObjectClaim, authz.ActionView), s.ClaimsDashboard)
	claims.GET("/manage-claims", s.authorize(authz.ObjectClaim, authz.ActionView), s.ListClaims)
	claims.POST("/manage-claims", s.authorize(authz.ObjectClaim, authz.ActionReview), s.BulkTransitionClaims)
	claims.POST("", s.authorize(authz.ObjectClaim, authz.ActionCreate), s.CreateClaim)
	claims.PATCH("/manage-claims/:id", s.authorize(authz.ObjectClaim, authz.ActionReview), s.UpdateClaimStatus)
	claims.POST("/upload-claims-report", s.authorize(authz.ObjectClaim, authz.ActionImport), s.UploadRateLimit(), s.UploadClaimsReport)
	claims.GET("/export", s.authorize(authz.ObjectClaim, authz.ActionExport), s.ExportClaims)
	claims.GET("/metrics", s.authorize(authz.ObjectClaim, authz.ActionView), s.ClaimMetrics)

	// -------- Dashboards --------
	dash := api.Group("/dashboard")
	dash.GET("/summary", s.authorize(authz.ObjectDashboard, authz.ActionView), s.DashboardSummary)
	dash.GET("/compliance", s.authorize(authz.ObjectDashboard, authz.ActionView), s.ComplianceDashboard)

	// -------- Compliance --------
	comp := api.Group("/compliance")
	comp.GET("", s.authorize(authz.ObjectCompliance, authz.ActionView), s.ListCompliance)
	comp.GET("/summary", s.authorize(authz.ObjectCompliance, authz.ActionView), s.ComplianceSummary)
	comp.POST("", s.authorize(authz.ObjectCompliance, authz.ActionCreate), s.CreateCompliance)
	comp.PATCH("/:id", s.authorize(authz.ObjectCompliance, authz.ActionUpdate), s.UpdateCompliance)

	// -------- Inspections --------
	insp := api.Group("/inspections")
	insp.GET("", s.authorize(authz.ObjectInspection, authz.ActionView), s.ListInspections)
	insp.POST("", s.authorize(authz.ObjectInspection, authz.ActionCreate), s.CreateInspection)
	insp.PATCH("/:id", s.authorize(authz.ObjectInspection, authz.ActionUpdate), s.UpdateInspection)

	// -------- Legal cases --------
	legal := api.Group("/legal-cases")
	legal.GET("", s.authorize(authz.ObjectLegalCase, authz.ActionView), s.ListLegalCases)
	legal.POST("", s.authorize(authz.ObjectLegalCase, authz.ActionCreate), s.CreateLegalCase)
	legal.POST("/bulk", s.authorize(authz.ObjectLegalCase, authz.ActionReview), s.BulkTransitionLegalCases)
	legal.PATCH("/:id", s.authorize(authz.ObjectLegalCase, authz.ActionReview), s.UpdateLegalCaseStatus)

	// -------- Lookups --------
	api.GET("/regions", s.authorize(authz.ObjectRegion, authz.ActionView), s.ListRegions)
	api.GET("/branches", s.authorize(authz.ObjectBranch, authz.ActionView), s.ListBranches)

	// -------- Profile --------
	api.GET("/profile", s.Profile)
	api.PATCH("/profile", s.UpdateProfile)
	api.POST("/profile/picture", s.UploadProfilePicture)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired())

	// -------- Regions / branches --------
	admin.POST("/regions", s.authorize(authz.ObjectRegion, authz.ActionCreate), s.CreateRegion)
	admin.PATCH("/regions/:id", s.authorize(authz.ObjectRegion, authz.ActionUpdate), s.UpdateRegion)
	admin.DELETE("/regions/:id", s.authorize(authz.ObjectRegion, authz.ActionDelete), s.DeleteRegion)
	admin.POST("/branches", s.authorize(authz.ObjectBranch, authz.ActionCreate), s.CreateBranch)
	admin.PATCH("/branches/:id", s.authorize(authz.ObjectBranch, authz.ActionUpdate), s.UpdateBranch)
	admin.DELETE("/branches/:id", s.authorize(authz.ObjectBranch, authz.ActionDelete), s.DeleteBranch)

	// -------- Users --------
	admin.GET("/users", s.authorize(authz.ObjectUser, authz.ActionView), s.ListUsers)
	admin.POST("/users", s.authorize(authz.ObjectUser, authz.ActionManage), s.CreateUser)
	admin.GET("/users/:id", s.authorize(authz.ObjectUser, authz.ActionView), s.GetUserByID)
	admin.PATCH("/users/:id", s.authorize(authz.ObjectUser, authz.ActionManage), s.UpdateUser)

	admin.GET("/audit-logs", s.authorize(authz.ObjectAuditLog, authz.ActionView), s.ListAuditLogs)
}

// registerStorageRoutes serves uploaded profile pictures from the local
// storage directory.
func (s *Server) registerStorageRoutes() {
	s.engine.Static("/storage", s.cfg.StorageDir)
}
