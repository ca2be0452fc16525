package handlers

import (
	"github.com/jmoiron/sqlx"

	"stockbook/internal/config"
	"stockbook/internal/repos"
	"stockbook/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	CategoryHandler  *CategoryHandler
	CustomerHandler  *CustomerHandler
	DeliveryHandler  *DeliveryHandler
	DashboardHandler *DashboardHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	auditSvc := services.NewAuditService(repos.NewAuditRepo(db))
	authSvc := services.NewAuthService(repos.NewUserRepo(db), auditSvc, cfg.JWTSecret, cfg.TokenTTL)
	catalogSvc := services.NewCatalogService(db, auditSvc)
	invSvc := services.NewInventoryService(db, auditSvc)
	delSvc := services.NewDeliveryService(db, auditSvc, cfg.DRPrefix)
	custSvc := services.NewCustomerService(repos.NewCustomerRepo(db), auditSvc)
	dashSvc := services.NewDashboardService(repos.NewProductRepo(db), repos.NewDeliveryRepo(db), auditSvc, cfg.LowStock)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, TTL: cfg.TokenTTL},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Inv: invSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		CustomerHandler:  &CustomerHandler{Customers: custSvc},
		DeliveryHandler:  &DeliveryHandler{Deliveries: delSvc},
		DashboardHandler: &DashboardHandler{Dash: dashSvc},
		AdminHandler:     &AdminHandler{Auth: authSvc, Audit: auditSvc},
	}
}
