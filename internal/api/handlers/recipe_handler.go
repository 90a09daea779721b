package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/recipe"
)

type RecipeHandler struct {
	recipes *recipe.Service
}

func NewRecipeHandler(recipes *recipe.Service) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

type addIngredientRequest struct {
	IngredientID string  `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
}

type setRecipeRequest struct {
	Entries []domain.RecipeEntry `json:"entries" binding:"required"`
}

type setLaborRequest struct {
	Amount float64 `json:"amount"`
}

// GetRecipe returns the recipe in display units with labor broken out.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	entries, laborCost, err := h.recipes.Display(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(stockErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": c.Param("id"),
		"entries":    entries,
		"labor_cost": laborCost,
	})
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	var req addIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := domain.Unit(req.Unit)
	if !unit.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown unit: " + req.Unit})
		return
	}

	err := h.recipes.AddIngredient(c.Request.Context(), c.Param("id"), req.IngredientID, req.Quantity, unit)
	if err != nil {
		c.JSON(recipeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	err := h.recipes.RemoveIngredient(c.Request.Context(), c.Param("id"), c.Param("ingredient_id"))
	if err != nil {
		c.JSON(recipeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) SetRecipe(c *gin.Context) {
	var req setRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recipes.SetAll(c.Request.Context(), c.Param("id"), req.Entries); err != nil {
		c.JSON(recipeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) SetLaborCost(c *gin.Context) {
	var req setLaborRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.recipes.SetLaborCost(c.Request.Context(), c.Param("id"), req.Amount); err != nil {
		c.JSON(recipeErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func recipeErrorStatus(err error) int {
	var conversion *domain.InvalidUnitConversionError
	var duplicate *domain.DuplicateIngredientError
	switch {
	case errors.As(err, &conversion), errors.As(err, &duplicate):
		return http.StatusBadRequest
	default:
		return stockErrorStatus(err)
	}
}
