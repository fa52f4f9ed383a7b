package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonwoodard/timetrack4237/internal/auth"
	"github.com/jonwoodard/timetrack4237/internal/store"
)

// barcodeRequest is the body shared by the kiosk scan endpoints. Timestamps
// are optional; the store falls back to the current wall clock.
type barcodeRequest struct {
	Barcode  string `json:"barcode" binding:"required"`
	CheckIn  string `json:"checkin"`
	CheckOut string `json:"checkout"`
}

// recordRequest carries one table row over the wire. Unlike store.Record it
// accepts a pin field, which only admin inserts use; it is hashed before it
// reaches disk and never echoed back.
type recordRequest struct {
	Barcode   string  `json:"barcode" binding:"required"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	PIN       string  `json:"pin"`
	CheckIn   string  `json:"checkin"`
	CheckOut  *string `json:"checkout"`
}

func (r recordRequest) record() store.Record {
	return store.Record{
		Barcode:   r.Barcode,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		PIN:       r.PIN,
		CheckIn:   r.CheckIn,
		CheckOut:  r.CheckOut,
	}
}

func (s *Server) handleScan(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scansTotal.Inc()

	role, err := s.store.ClassifyBarcode(req.Barcode)
	if err != nil {
		httpError(c, err)
		return
	}
	if role != store.RoleStudent {
		c.JSON(http.StatusOK, gin.H{"role": role})
		return
	}

	data, err := s.store.StudentData(req.Barcode)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role, "student": data})
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.CheckIn(req.Barcode, req.CheckIn); err != nil {
		httpError(c, err)
		return
	}
	checkinsTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"barcode": req.Barcode, "status": store.StatusCheckedIn})
}

func (s *Server) handleCheckOut(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	total, err := s.store.CheckOut(req.Barcode, req.CheckOut)
	if err != nil {
		httpError(c, err)
		return
	}
	checkoutsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"barcode":     req.Barcode,
		"status":      store.StatusCheckedOut,
		"total_hours": total,
	})
}

func (s *Server) handleCheckedIn(c *gin.Context) {
	list, err := s.store.CheckedInList()
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked_in": list, "count": len(list)})
}

func (s *Server) handleStudentHours(c *gin.Context) {
	barcode := c.Param("barcode")
	days, total, err := s.store.DailyHours(barcode, time.Now())
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"barcode": barcode, "days": days, "total_hours": total})
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	var req struct {
		Barcode string `json:"barcode" binding:"required"`
		PIN     string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := s.store.VerifyPIN(req.Barcode, req.PIN)
	if err != nil {
		httpError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid barcode or PIN"})
		return
	}

	token, exp, err := auth.Issue(req.Barcode, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_at": exp.Unix()})
}

func (s *Server) tableParam(c *gin.Context) (store.Table, bool) {
	table, err := store.ParseTable(c.Param("table"))
	if err != nil {
		httpError(c, err)
		return 0, false
	}
	return table, true
}

func (s *Server) rowidParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("rowid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rowid"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleList(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}
	records, err := s.store.List(table, c.Query("barcode"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) handleGet(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}
	id, ok := s.rowidParam(c)
	if !ok {
		return
	}
	rec, err := s.store.Get(table, id)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleInsert(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Insert(table, req.record()); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (s *Server) handleUpdate(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}
	id, ok := s.rowidParam(c)
	if !ok {
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Update(table, id, req.record()); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleDelete(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}
	id, ok := s.rowidParam(c)
	if !ok {
		return
	}
	if err := s.store.Delete(table, id); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleImport loads CSV rows into a table. Rows that fail validation or a
// trigger are skipped; the response reports how many of the attempted rows
// landed.
func (s *Server) handleImport(c *gin.Context) {
	table, ok := s.tableParam(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	count, total, err := s.store.ImportCSV(table, file)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count, "attempted": total})
}

func (s *Server) handleResetPIN(c *gin.Context) {
	var req struct {
		RowID  int64  `json:"rowid" binding:"required"`
		OldPIN string `json:"old_pin" binding:"required"`
		NewPIN string `json:"new_pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.ResetPIN(req.RowID, req.OldPIN, req.NewPIN); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleLogoutAll(c *gin.Context) {
	count, total, err := s.store.LogoutAll(store.Now())
	if err != nil {
		httpError(c, err)
		return
	}
	sweepClosedTotal.Add(float64(count))
	c.JSON(http.StatusOK, gin.H{
		"ok":      count == total,
		"closed":  count,
		"open":    total,
		"message": store.SweepMessage(count, total),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	if s.export == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export not configured"})
		return
	}
	data, err := s.store.ExportSnapshot()
	if err != nil {
		httpError(c, err)
		return
	}
	if err := s.export(s.cfg.ExportPath, data); err != nil {
		log.Printf("export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": s.cfg.ExportPath, "sessions": len(data.Sessions)})
}
