package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/utils"
)

type CompanyController struct {
	DB *gorm.DB
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{DB: db}
}

// GetAllCompanies (admin)
func (cc *CompanyController) GetAllCompanies(c *gin.Context) {
	var companies []models.Company
	if err := cc.DB.Find(&companies).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of companies", companies)
}

// CreateCompany (admin)
func (cc *CompanyController) CreateCompany(c *gin.Context) {
	type reqBody struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	company := models.Company{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Address: body.Address,
	}
	if err := cc.DB.Create(&company).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Company created", company)
}

// GetCompanyByID
func (cc *CompanyController) GetCompanyByID(c *gin.Context) {
	idStr := c.Param("company_id")
	id, _ := strconv.Atoi(idStr)

	var company models.Company
	if err := cc.DB.First(&company, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Company detail", company)
}
