package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"portalConsole/internal/modules/portal/application/usecase"
)

type CatalogResponse struct {
	Entities []usecase.Entry `json:"entities"`
}

// NewCatalogHTTPHandler lists the entity definitions a view can be opened for.
func NewCatalogHTTPHandler(catalog *usecase.Catalog) echo.HandlerFunc {
	return func(c echo.Context) error {
		if entity := c.Param("entity"); entity != "" {
			entry, err := catalog.Lookup(entity)
			if err != nil {
				return echo.NewHTTPError(http.StatusNotFound, "entity is not integrated")
			}
			return c.JSON(http.StatusOK, entry)
		}
		return c.JSON(http.StatusOK, CatalogResponse{Entities: catalog.Entries()})
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Views   int    `json:"views"`
	Clients int    `json:"clients"`
}

type counter interface{ Len() int }

func NewHealthHTTPHandler(views, clients counter) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Views: views.Len(), Clients: clients.Len()})
	}
}
