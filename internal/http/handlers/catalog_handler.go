// Catalog HTTP handlers.
//
// The catalog resources (areas, roles, products, users, and the
// classification taxonomy) all behave identically: list active rows, create,
// replace, soft-deactivate. The endpoint set is therefore generated once over
// a type parameter and mounted per resource; only the validation closure
// differs.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/claimsdesk/go-claims-backend/internal/domain"
	"github.com/claimsdesk/go-claims-backend/internal/repo"
	"github.com/claimsdesk/go-claims-backend/internal/services"
)

// RegisterCatalogRoutes mounts the uniform CRUD surface for every catalog
// resource under the given group.
func RegisterCatalogRoutes(g *gin.RouterGroup, db *gorm.DB) {
	mountCatalog(g, db, "/areas", func(a *domain.Area) error {
		return requireName(&a.Name)
	})
	mountCatalog(g, db, "/roles", func(r *domain.Role) error {
		return requireName(&r.Name)
	})
	mountCatalog(g, db, "/products", func(p *domain.Product) error {
		return requireName(&p.Name)
	})
	mountCatalog(g, db, "/classifications", func(cl *domain.Classification) error {
		return requireName(&cl.Name)
	})
	mountCatalog(g, db, "/classes", func(cl *domain.Class) error {
		if cl.ClassificationID == 0 {
			return services.ErrParentRequired
		}
		return requireName(&cl.Name)
	})
	mountCatalog(g, db, "/causes", func(ca *domain.Cause) error {
		if ca.ClassID == 0 {
			return services.ErrParentRequired
		}
		return requireName(&ca.Name)
	})
	mountCatalog(g, db, "/users", func(u *domain.User) error {
		if u.AreaID == 0 || u.RoleID == 0 {
			return services.ErrAreaRoleRequired
		}
		if strings.TrimSpace(u.Email) == "" {
			return services.ErrNameRequired
		}
		return requireName(&u.Name)
	})
}

// requireName trims the name in place and rejects blanks.
func requireName(name *string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return services.ErrNameRequired
	}
	return nil
}

// mountCatalog binds list/get/create/replace/deactivate endpoints for one
// catalog type.
func mountCatalog[T any](g *gin.RouterGroup, db *gorm.DB, path string, validate func(*T) error) {
	g.GET(path, func(c *gin.Context) {
		rows, err := repo.ListActive[T](c.Request.Context(), db)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusOK, rows)
	})

	g.GET(path+"/:id", func(c *gin.Context) {
		id, okID := pathID(c)
		if !okID {
			return
		}
		row, err := repo.GetActive[T](c.Request.Context(), db, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrResourceNotFound.Error())
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusOK, row)
	})

	g.POST(path, func(c *gin.Context) {
		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
		if err := validate(&row); err != nil {
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
			return
		}
		if err := repo.CreateRow(c.Request.Context(), db, &row); err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusCreated, row)
	})

	g.PUT(path+"/:id", func(c *gin.Context) {
		id, okID := pathID(c)
		if !okID {
			return
		}
		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
		if err := validate(&row); err != nil {
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
			return
		}
		if err := repo.UpdateRow(c.Request.Context(), db, id, &row); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrResourceNotFound.Error())
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		updated, err := repo.GetActive[T](c.Request.Context(), db, id)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusOK, updated)
	})

	g.DELETE(path+"/:id", func(c *gin.Context) {
		id, okID := pathID(c)
		if !okID {
			return
		}
		if err := repo.DeactivateRow[T](c.Request.Context(), db, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrResourceNotFound.Error())
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		noContent(c)
	})
}
