package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/utils"
)

type JobController struct {
	DB *gorm.DB
}

func NewJobController(db *gorm.DB) *JobController {
	return &JobController{DB: db}
}

// GetAllJobs -> admin sees everything, company users only their own company
func (jc *JobController) GetAllJobs(c *gin.Context) {
	query := jc.DB.Preload("Company")

	if c.GetString("role") == models.RoleCompanyUser {
		if companyID, exists := c.Get("company_id"); exists {
			query = query.Where("company_id = ?", companyID)
		}
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of jobs", jobs)
}

// CreateJob
func (jc *JobController) CreateJob(c *gin.Context) {
	type reqBody struct {
		CompanyID   uint   `json:"company_id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var company models.Company
	if err := jc.DB.First(&company, body.CompanyID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	job := models.Job{
		CompanyID:   body.CompanyID,
		Name:        body.Name,
		Location:    body.Location,
		Description: body.Description,
		Status:      "active",
	}
	if err := jc.DB.Create(&job).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Job created", job)
}

// GetJobByID -> detail with shifts
func (jc *JobController) GetJobByID(c *gin.Context) {
	idStr := c.Param("job_id")
	id, _ := strconv.Atoi(idStr)

	var job models.Job
	if err := jc.DB.Preload("Company").Preload("Shifts").First(&job, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Job detail", job)
}
