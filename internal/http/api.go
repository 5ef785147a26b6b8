package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"timeclock/internal/auth"
	"timeclock/internal/clock"
	"timeclock/internal/domain"
	"timeclock/internal/repository"
	"timeclock/internal/service"
	"timeclock/internal/storage"
	"timeclock/internal/tracker"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	records   service.RecordService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewHandler(users service.UserService, records service.RecordService, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		users:     users,
		records:   records,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	authorized := api.Group("", h.authMiddleware())
	{
		authorized.GET("/status", h.status)
		authorized.POST("/session/start", h.startSession)
		authorized.POST("/session/end", h.endSession)
		authorized.PUT("/session/activities", h.saveActivities)

		authorized.GET("/records", h.listRecords)
		authorized.GET("/records/date/:date", h.listRecordsByDate)
		authorized.GET("/records/history", h.history)
		authorized.POST("/records", h.createRecord)
		authorized.PUT("/records/:id", h.updateRecord)
		authorized.DELETE("/records/:id", h.deleteRecord)

		authorized.POST("/records/export", h.exportRecords)
		authorized.GET("/records/exports", h.listExports)
		authorized.GET("/records/exports/url", h.exportURL)
		authorized.DELETE("/records/exports", h.deleteExports)
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type recordForm struct {
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Activities string `json:"activities"`
}

type activitiesRequest struct {
	Activities string `json:"activities"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

func (h *Handler) issueToken(c *gin.Context, status int, user *domain.User) {
	token, err := auth.GenerateToken(user.ID, h.jwtSecret, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(status, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
		},
	})
}

func (h *Handler) status(c *gin.Context) {
	user := currentUser(c)

	status, err := h.records.Status(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := StatusResponse{
		Status:     "idle",
		HoursToday: status.Today.String(),
		HoursWeek:  status.Week.String(),
	}
	if status.Active != nil {
		resp.Status = "working"
		active := recordToResponse(*status.Active)
		resp.Active = &active
	}
	for _, r := range status.Inconsistent {
		resp.Inconsistencies = append(resp.Inconsistencies, recordToResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) startSession(c *gin.Context) {
	user := currentUser(c)

	record, err := h.records.StartSession(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recordToResponse(*record))
}

func (h *Handler) endSession(c *gin.Context) {
	user := currentUser(c)

	var req activitiesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	record, err := h.records.EndSession(c.Request.Context(), user.ID, req.Activities)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordToResponse(*record))
}

func (h *Handler) saveActivities(c *gin.Context) {
	user := currentUser(c)

	var req activitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.records.SaveActivities(c.Request.Context(), user.ID, req.Activities); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *Handler) listRecords(c *gin.Context) {
	user := currentUser(c)

	records, err := h.records.ListRecords(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordsToResponse(records))
}

func (h *Handler) listRecordsByDate(c *gin.Context) {
	user := currentUser(c)

	date, err := clock.ParseISODate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected yyyy-mm-dd"})
		return
	}

	records, err := h.records.ListByDate(c.Request.Context(), user.ID, date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordsToResponse(records))
}

func (h *Handler) history(c *gin.Context) {
	user := currentUser(c)

	records, err := h.records.FilterByDate(c.Request.Context(), user.ID, c.Query("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordsToResponse(records))
}

func (h *Handler) createRecord(c *gin.Context) {
	user := currentUser(c)

	var form recordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.records.CreateRecord(c.Request.Context(), user.ID, tracker.EditForm{
		Date:       form.Date,
		Start:      form.StartTime,
		End:        form.EndTime,
		Activities: form.Activities,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recordToResponse(*record))
}

func (h *Handler) updateRecord(c *gin.Context) {
	user := currentUser(c)

	id, ok := recordID(c)
	if !ok {
		return
	}

	var form recordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.records.UpdateRecord(c.Request.Context(), user.ID, id, tracker.EditForm{
		Date:       form.Date,
		Start:      form.StartTime,
		End:        form.EndTime,
		Activities: form.Activities,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *Handler) deleteRecord(c *gin.Context) {
	user := currentUser(c)

	id, ok := recordID(c)
	if !ok {
		return
	}

	if err := h.records.DeleteRecord(c.Request.Context(), user.ID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) exportRecords(c *gin.Context) {
	user := currentUser(c)

	location, err := h.records.ExportRecords(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": location})
}

func (h *Handler) listExports(c *gin.Context) {
	user := currentUser(c)

	objects, err := h.records.ListExports(c.Request.Context(), user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportURL(c *gin.Context) {
	user := currentUser(c)

	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	url, err := h.records.ExportURL(c.Request.Context(), user.ID, key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) deleteExports(c *gin.Context) {
	user := currentUser(c)

	if err := h.records.DeleteExports(c.Request.Context(), user.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *tracker.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, clock.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, tracker.ErrDuplicateActiveSession),
		errors.Is(err, tracker.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type RecordResponse struct {
	ID         int64   `json:"id"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Worked     string  `json:"worked,omitempty"`
	Activities string  `json:"activities"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type StatusResponse struct {
	Status          string           `json:"status"`
	Active          *RecordResponse  `json:"active,omitempty"`
	HoursToday      string           `json:"hours_today"`
	HoursWeek       string           `json:"hours_week"`
	Inconsistencies []RecordResponse `json:"inconsistencies,omitempty"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func recordToResponse(record domain.TimeRecord) RecordResponse {
	resp := RecordResponse{
		ID:         record.ID,
		Date:       record.Date.Display(),
		StartTime:  record.Start.Display(),
		Activities: record.Activities,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  record.UpdatedAt.Format(time.RFC3339),
	}
	if record.End != nil {
		v := record.End.Display()
		resp.EndTime = &v
		if worked, err := record.Worked(); err == nil {
			resp.Worked = worked.String()
		}
	}
	return resp
}

func recordsToResponse(records []domain.TimeRecord) []RecordResponse {
	resp := make([]RecordResponse, len(records))
	for i := range records {
		resp[i] = recordToResponse(records[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
