package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
)

// VendorModule serves the marketplace, vendor self-service and bookings.
type VendorModule struct {
	Handler *handlers.VendorHandler
	Guard   Guard
}

func NewVendorModule(h *handlers.VendorHandler, g Guard) *VendorModule {
	return &VendorModule{Handler: h, Guard: g}
}

func (m *VendorModule) Register(rg *gin.RouterGroup) {
	g, h := m.Guard, m.Handler
	vendor := g.Role(entity.RoleVendor)

	rg.GET("/vendors/marketplace", h.Marketplace)
	rg.GET("/vendors/:id", g.Optional(), h.Get)
	rg.GET("/vendors/:id/services", g.Optional(), h.ListServices)
	rg.GET("/vendors/:id/reviews", g.Optional(), h.Reviews)

	// Vendor self-service.
	rg.POST("/vendors/register", g.Authed(h.Register)...)
	rg.GET("/vendors/profile", g.Authed(vendor, h.Profile)...)
	rg.PUT("/vendors/profile", g.Authed(vendor, h.UpdateProfile)...)
	rg.POST("/vendors/services", g.Authed(vendor, h.CreateService)...)
	rg.PUT("/vendors/services/:serviceId", g.Authed(vendor, h.UpdateService)...)
	rg.DELETE("/vendors/services/:serviceId", g.Authed(vendor, h.DeleteService)...)
	rg.GET("/vendors/bookings", g.Authed(vendor, h.VendorBookings)...)
	rg.PUT("/vendors/bookings/:bookingId/status", g.Authed(vendor, h.SetBookingStatus)...)

	// Customers.
	rg.POST("/vendors/:id/bookings", g.Authed(h.Book)...)
	rg.POST("/vendors/:id/reviews", g.Authed(h.Review)...)
	rg.GET("/bookings", g.Authed(h.MyBookings)...)
	rg.POST("/bookings/:bookingId/cancel", g.Authed(h.CancelBooking)...)
}
