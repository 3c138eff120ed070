package http

import (
	"baletrack/frontend/bales"
	"baletrack/frontend/boxes"
	"baletrack/frontend/dashboard"
	"baletrack/frontend/exports"
	"baletrack/frontend/farmers"
	"baletrack/frontend/help"
	"baletrack/frontend/login"
	"baletrack/frontend/scan"
	"baletrack/frontend/shipments"

	"github.com/go-chi/chi/v5"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler(s.Sessions))
	s.router.Post("/login", login.CreateLoginHandler(s.Sessions, s.SecureCookies))
	s.router.Post("/logout", login.LogoutHandler(s.Sessions, s.SecureCookies))
}

// RegisterFrontendRoutes registers authenticated routes.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	r.Get("/dashboard", dashboard.DashboardPageQueryHandler(s.Data, s.Audit))
	r.Get("/scan", scan.ScanPageQueryHandler(s.Data))
	r.Get("/help", help.HelpPageQueryHandler())

	s.RegisterFarmerRoutes(r)
	s.RegisterBoxRoutes(r)
	s.RegisterBaleRoutes(r)
	s.RegisterShipmentRoutes(r)
	s.RegisterExportRoutes(r)
	return r
}

func (s *Server) RegisterFarmerRoutes(r chi.Router) {
	r.Get("/farmers", farmers.FarmersPageQueryHandler(s.Data))
	r.Get("/farmers/new", farmers.NewFarmerPageQueryHandler())
	r.Post("/farmers", farmers.CreateFarmerCommandHandler(s.Data, s.Audit))
	r.Get("/farmers/{id}", farmers.FarmerDetailPageQueryHandler(s.Data))
	r.Get("/farmers/{id}/edit", farmers.EditFarmerPageQueryHandler(s.Data))
	r.Post("/farmers/{id}", farmers.UpdateFarmerCommandHandler(s.Data, s.Audit))
	r.Post("/farmers/{id}/delete", farmers.DeleteFarmerCommandHandler(s.Data, s.Audit))
}

func (s *Server) RegisterBoxRoutes(r chi.Router) {
	r.Get("/boxes", boxes.BoxesPageQueryHandler(s.Data))
	r.Get("/boxes/new", boxes.NewBoxPageQueryHandler())
	r.Post("/boxes", boxes.CreateBoxCommandHandler(s.Data, s.Audit))
	r.Get("/boxes/{id}", boxes.BoxDetailPageQueryHandler(s.Data))
	r.Get("/boxes/{id}/edit", boxes.EditBoxPageQueryHandler(s.Data))
	r.Post("/boxes/{id}", boxes.UpdateBoxCommandHandler(s.Data, s.Audit))
	r.Post("/boxes/{id}/delete", boxes.DeleteBoxCommandHandler(s.Data, s.Audit))
}

func (s *Server) RegisterBaleRoutes(r chi.Router) {
	r.Get("/bales", bales.BalesPageQueryHandler(s.Data))
	r.Get("/bales/new", bales.NewBalePageQueryHandler(s.Data))
	r.Post("/bales", bales.CreateBaleCommandHandler(s.Data, s.Audit))
	r.Get("/bales/{id}", bales.BaleDetailPageQueryHandler(s.Data))
	r.Get("/bales/{id}/edit", bales.EditBalePageQueryHandler(s.Data))
	r.Get("/bales/{id}/label.pdf", bales.BaleLabelPDFQueryHandler(s.Data))
	r.Post("/bales/{id}", bales.UpdateBaleCommandHandler(s.Data, s.Audit))
	r.Post("/bales/{id}/delete", bales.DeleteBaleCommandHandler(s.Data, s.Audit))
}

func (s *Server) RegisterShipmentRoutes(r chi.Router) {
	r.Get("/shipments", shipments.ShipmentsPageQueryHandler(s.Data))
	r.Get("/shipments/new", shipments.NewShipmentPageQueryHandler(s.Data))
	r.Post("/shipments", shipments.CreateShipmentCommandHandler(s.Data, s.Audit))
	r.Get("/shipments/{id}", shipments.ShipmentDetailPageQueryHandler(s.Data))
	r.Get("/shipments/{id}/edit", shipments.EditShipmentPageQueryHandler(s.Data))
	r.Post("/shipments/{id}", shipments.UpdateShipmentCommandHandler(s.Data, s.Audit))
	r.Post("/shipments/{id}/delete", shipments.DeleteShipmentCommandHandler(s.Data, s.Audit))
}

func (s *Server) RegisterExportRoutes(r chi.Router) {
	r.Get("/exports", exports.ExportsPageQueryHandler(s.Data))
	r.Get("/exports/bales.csv", exports.BalesExportCSVHandler(s.Data, s.Audit))
	r.Get("/exports/farmers.csv", exports.FarmersExportCSVHandler(s.Data, s.Audit))
	r.Get("/exports/shipments/{id}/bales.csv", exports.ShipmentBalesExportCSVHandler(s.Data, s.Audit))
}
