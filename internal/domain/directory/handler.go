package directory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/domain/identity"
	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/internal/platform/httperr"
	"github.com/medibook/medibook/pkg/pagination"
)

type Handler struct {
	svc      *Service
	accounts *identity.Service
}

func NewHandler(svc *Service, accounts *identity.Service) *Handler {
	return &Handler{svc: svc, accounts: accounts}
}

// RegisterRoutes mounts directory endpoints on the role-prefixed groups.
// Image reads are public so profile pictures render without a credential.
func (h *Handler) RegisterRoutes(public, admin, doctor, patient *echo.Group) {
	public.GET("/images/:filename", h.GetImage)

	admin.GET("/doctors", h.ListProviders)
	admin.PUT("/doctors/:id/approve", h.ApproveProvider)
	admin.DELETE("/doctors/:id", h.DeleteProvider)
	admin.GET("/patients", h.ListPatients)
	admin.DELETE("/patients/:id", h.DeletePatient)

	doctor.GET("/profile", h.GetOwnProfile)
	doctor.POST("/profile", h.UpdateOwnProfile)
	doctor.POST("/profile/image", h.UploadProfileImage)
	doctor.PUT("/slots", h.SetAvailability)

	patient.GET("/doctors", h.ListProviders)
	patient.GET("/doctors/:id", h.GetProvider)
}

func (h *Handler) ListProviders(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	pg := pagination.FromContext(c)
	providers, total, err := h.svc.List(c.Request().Context(), ident.Role, c.QueryParam("specialization"), pg.Limit, pg.Offset)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(providers, total, pg))
}

func (h *Handler) GetProvider(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	p, err := h.svc.Get(c.Request().Context(), ident.Role, id)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetOwnProfile(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	p, err := h.svc.GetOwn(c.Request().Context(), ident.AccountID)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateOwnProfile(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var in UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdateOwnProfile(c.Request().Context(), ident.AccountID, in)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UploadProfileImage(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
	}
	defer src.Close()

	p, err := h.svc.SaveProfileImage(c.Request().Context(), ident.AccountID, file.Header.Get("Content-Type"), src)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetImage(c echo.Context) error {
	rc, err := h.svc.OpenImage(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return httperr.ToHTTP(err)
	}
	defer rc.Close()
	return c.Stream(http.StatusOK, "application/octet-stream", rc)
}

type availabilityRequest struct {
	Slots []AvailabilitySlot `json:"slots"`
}

func (h *Handler) SetAvailability(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var in availabilityRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.SetAvailability(c.Request().Context(), ident.AccountID, in.Slots)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ApproveProvider(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	if err := h.svc.Approve(c.Request().Context(), id); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "provider approved"})
}

func (h *Handler) DeleteProvider(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	if err := h.svc.DeleteProvider(c.Request().Context(), id); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "provider deleted"})
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.accounts.ListByRole(c.Request().Context(), identity.RolePatient, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return httperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "patient deleted"})
}
