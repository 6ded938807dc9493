package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crewplex/workforce-app/controllers"
	"github.com/crewplex/workforce-app/models"
	"github.com/crewplex/workforce-app/utils"
)

func setupTestDBForAssignments() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Company{}, &models.User{}, &models.Job{},
		&models.Shift{}, &models.AssignedPersonnel{}, &models.TimeEntry{},
	)
	if err != nil {
		panic(err)
	}

	db.Create(&models.Company{Name: "Stagecraft Ltd"})
	db.Create(&models.User{Name: "Worker One", Email: "w1@example.com", Password: "x", Role: "worker"})
	db.Create(&models.Job{CompanyID: 1, Name: "Arena Load-In", Status: "active"})

	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	db.Create(&models.Shift{
		JobID:                   1,
		Status:                  models.ShiftStatusActive,
		Date:                    day,
		StartTime:               day.Add(8 * time.Hour),
		EndTime:                 day.Add(16 * time.Hour),
		RequiredCrewChiefs:      1,
		RequiredGeneralLaborers: 2,
	})
	return db
}

func setupAssignmentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	assignmentCtrl := controllers.NewAssignmentController(db)
	router.POST("/shifts/:shift_id/assignments", assignmentCtrl.AssignWorker)
	router.PATCH("/assignments/:assignment_id", assignmentCtrl.UpdateAssignmentStatus)
	router.POST("/assignments/:assignment_id/clock-in", assignmentCtrl.ClockIn)
	router.POST("/assignments/:assignment_id/clock-out", assignmentCtrl.ClockOut)
	return router
}

func postJSON(router *gin.Engine, method, url string, payload map[string]interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAssignWorkerAndDuplicate(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForAssignments()
	router := setupAssignmentRouter(db)

	w := postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "GL",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// same worker again on the same shift is refused
	w = postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "SH",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// unknown role code is refused
	w = postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "XX",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignOpenSlot(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForAssignments()
	router := setupAssignmentRouter(db)

	// nil user -> slot goes up for grabs
	w := postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"role_code": "CC",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "up_for_grabs", data["status"])
	assert.Nil(t, data["user_id"])
}

func TestClockInClockOutCycle(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForAssignments()
	router := setupAssignmentRouter(db)

	w := postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "GL",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &createResp)
	apID := int(createResp["data"].(map[string]interface{})["id"].(float64))
	apURL := "/assignments/" + strconv.Itoa(apID)

	// first clock-in
	w = postJSON(router, "POST", apURL+"/clock-in", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// second clock-in without clocking out is refused
	w = postJSON(router, "POST", apURL+"/clock-in", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// clock out for a break
	w = postJSON(router, "POST", apURL+"/clock-out", map[string]interface{}{"end_shift": false})
	assert.Equal(t, http.StatusOK, w.Code)

	var ap models.AssignedPersonnel
	db.First(&ap, apID)
	assert.Equal(t, models.AssignmentStatusOnBreak, ap.Status)

	// second entry, ended for the day
	w = postJSON(router, "POST", apURL+"/clock-in", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = postJSON(router, "POST", apURL+"/clock-out", map[string]interface{}{"end_shift": true})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&ap, apID)
	assert.Equal(t, models.AssignmentStatusShiftEnded, ap.Status)

	var entries []models.TimeEntry
	db.Where("assigned_personnel_id = ?", apID).Order("entry_number ASC").Find(&entries)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].EntryNumber)
	assert.Equal(t, 2, entries[1].EntryNumber)
	assert.NotNil(t, entries[0].ClockOut)
	assert.NotNil(t, entries[1].ClockOut)
}

func TestClockInEntryLimit(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForAssignments()
	router := setupAssignmentRouter(db)

	w := postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "GL",
	})
	var createResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &createResp)
	apID := int(createResp["data"].(map[string]interface{})["id"].(float64))
	apURL := "/assignments/" + strconv.Itoa(apID)

	for i := 0; i < 3; i++ {
		w = postJSON(router, "POST", apURL+"/clock-in", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		w = postJSON(router, "POST", apURL+"/clock-out", map[string]interface{}{"end_shift": false})
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// a fourth entry is over the limit
	w = postJSON(router, "POST", apURL+"/clock-in", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClockInCancelledAssignment(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForAssignments()
	router := setupAssignmentRouter(db)

	w := postJSON(router, "POST", "/shifts/1/assignments", map[string]interface{}{
		"user_id":   1,
		"role_code": "GL",
	})
	var createResp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &createResp)
	apID := int(createResp["data"].(map[string]interface{})["id"].(float64))
	apURL := "/assignments/" + strconv.Itoa(apID)

	w = postJSON(router, "PATCH", apURL, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "POST", apURL+"/clock-in", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
