package api

import (
	"net/http"
	"strconv"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/labstack/echo/v4"
)

// categoriesByType lists the categories offered to a business type.
// active_only=true hides deactivated ones.
func (s *Server) categoriesByType(c echo.Context) error {
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active_only"))
	res, err := s.catalog.CategoriesForType(c.Request().Context(), c.QueryParam("type"), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"categories": res,
	})
}

type createCategoryRequest struct {
	Type           model.CategoryType `json:"type"`
	BusinessTypeID string             `json:"business_type_id"`
	Name           string             `json:"name"`
}

func (s *Server) createCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cat, err := s.catalog.CreateCategory(c.Request().Context(), req.Type, req.BusinessTypeID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// updateCategoryRequest changes whichever fields are present.
type updateCategoryRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func (s *Server) updateCategory(c echo.Context) error {
	var req updateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Name == nil && req.IsActive == nil {
		return common.MissingField("name", "is_active")
	}

	ctx := c.Request().Context()
	kind, id := model.CategoryType(c.Param("kind")), c.Param("id")

	var (
		cat *model.Category
		err error
	)
	if req.Name != nil {
		if cat, err = s.catalog.RenameCategory(ctx, kind, id, *req.Name); err != nil {
			return err
		}
	}
	if req.IsActive != nil {
		if cat, err = s.catalog.SetCategoryActive(ctx, kind, id, *req.IsActive); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategory(c echo.Context) error {
	err := s.catalog.DeleteCategory(c.Request().Context(), model.CategoryType(c.Param("kind")), c.Param("id"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// clientCategories lists a client's tracked categories with their details.
func (s *Server) clientCategories(c echo.Context) error {
	res, err := s.clients.Categories().ActiveCategories(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) editableCategories(c echo.Context) error {
	res, err := s.clients.Categories().EditableCategories(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type replaceRequest struct {
	UserID     string                  `json:"user_id"`
	Categories model.CategorySelection `json:"categories"`
}

// replaceCategories swaps a client's selection all at once.
func (s *Server) replaceCategories(c echo.Context) error {
	var req replaceRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := s.clients.Categories().ReplaceCategories(c.Request().Context(), req.UserID, req.Categories)
	s.metrics.replacements.WithLabelValues("batch", result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Categorias atualizadas com sucesso",
		"result":  res,
	})
}

// replaceCategoriesEach swaps a client's selection one row at a time and
// reports what could not be saved.
func (s *Server) replaceCategoriesEach(c echo.Context) error {
	var req replaceRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := s.clients.Categories().ReplaceCategoriesEach(c.Request().Context(), req.UserID, req.Categories)
	s.metrics.replacements.WithLabelValues("each", result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": res.Failed == 0,
		"message": "Categorias salvas",
		"result":  res,
	})
}
