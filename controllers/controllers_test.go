package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/cache"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/slip"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := app.RegisterValidators(); err != nil {
		panic(err)
	}
}

const rackID = "6f1c2a8e-1b2c-4d3e-8f90-123456789abc"

func testSrv(t *testing.T) (*Srv, *bytes.Buffer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	var buf bytes.Buffer
	return &Srv{
		Occupancy: cache.NewOccupancyCache(rdb, time.Minute),
		Lock:      cache.NewActionLock(rdb, time.Minute),
		Log:       slog.New(slog.NewJSONHandler(&buf, nil)),
	}, &buf
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) api.Error {
	t.Helper()
	var e api.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestWriteError(t *testing.T) {
	s, logs := testSrv(t)
	cases := []struct {
		name   string
		err    error
		status int
		code   slip.ErrCode
	}{
		{"slip validation", slip.NewError(slip.ErrParentNotOpen, "status 2"), 422, slip.ErrParentNotOpen},
		{"wrapped slip validation", fmt.Errorf("apply: %w", slip.NewError(slip.ErrDuplicateItem, "d1")), 422, slip.ErrDuplicateItem},
		{"db validation", fmt.Errorf("%w: cell outside rack", db.ErrValidation), 422, ""},
		{"not found", fmt.Errorf("%w: rack r1", db.ErrNotFound), 404, ""},
		{"gorm not found", gorm.ErrRecordNotFound, 404, ""},
		{"conflict", fmt.Errorf("%w: location held", db.ErrConflict), 409, ""},
		{"duplicate key", gorm.ErrDuplicatedKey, 409, ""},
		{"other", errors.New("connection reset"), 500, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/x", nil)
			writeError(c, s.Log, tc.err)

			assert.Equal(t, tc.status, w.Code)
			e := decodeErr(t, w)
			assert.Equal(t, tc.code, e.Code)
			if tc.status == 500 {
				assert.Equal(t, "internal error", e.Error)
			} else {
				assert.Equal(t, tc.err.Error(), e.Error)
			}
		})
	}
	assert.Contains(t, logs.String(), "connection reset", "only 500s are logged")
	assert.NotContains(t, logs.String(), "location held")
}

func TestListLocations_ServesFromCache(t *testing.T) {
	s, _ := testSrv(t)
	rc := NewRackController(s)
	name, dev := "Scope", "d1"
	page := api.LocationPage{Total: 1, Items: []api.LocationRow{
		{ID: "l1", RackID: rackID, X: 2, Y: 3, Active: true, Label: "B03", DeviceID: &dev, DeviceName: &name},
	}}
	stored, err := s.Occupancy.Put(t.Context(), rackID, 0, 1, 200, "", page)
	require.NoError(t, err)
	require.True(t, stored)

	r := gin.New()
	r.GET("/api/racks/:id/locations", rc.ListLocations)

	w := do(r, "GET", "/api/racks/"+rackID+"/locations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got api.LocationPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, page, got)
}

func TestListLocations_RejectsBadQuery(t *testing.T) {
	s, _ := testSrv(t)
	r := gin.New()
	r.GET("/api/racks/:id/locations", NewRackController(s).ListLocations)

	assert.Equal(t, 400, do(r, "GET", "/api/racks/not-a-uuid/locations", "").Code)
	assert.Equal(t, 400, do(r, "GET", "/api/racks/"+rackID+"/locations?label=Z1", "").Code)
	assert.Equal(t, 400, do(r, "GET", "/api/racks/"+rackID+"/locations?size=501", "").Code)
}

func TestSlipRoutes_KindAndBodyChecks(t *testing.T) {
	s, _ := testSrv(t)
	sc := NewSlipController(s)
	r := gin.New()
	r.GET("/api/slips/:kind", sc.List)
	r.POST("/api/slips/:kind", sc.Create)
	r.POST("/api/slips/:kind/:id/returns", sc.ApplyReturn)
	r.POST("/api/slips/:kind/:id/cancel", sc.Cancel)

	w := do(r, "GET", "/api/slips/widget", "")
	assert.Equal(t, 404, w.Code)

	w = do(r, "GET", "/api/slips/return", "")
	assert.Equal(t, 404, w.Code, "return documents have no parent listing")

	w = do(r, "GET", "/api/slips/loan?status=closed", "")
	assert.Equal(t, 400, w.Code)

	w = do(r, "POST", "/api/slips/loan", `{"borrowerId":"u1","loanerId":"u2","deviceIds":[]}`)
	assert.Equal(t, 400, w.Code, "at least one device")

	w = do(r, "POST", "/api/slips/maintenance", `{"devices":[{"note":"x"}]}`)
	assert.Equal(t, 400, w.Code, "device id required")

	w = do(r, "POST", "/api/slips/loan/"+rackID+"/returns", `{"items":[{"deviceId":"d1","status":1}]}`)
	assert.Equal(t, 400, w.Code, "Outgoing is not a return status")

	w = do(r, "POST", "/api/slips/maintenance-return/bad/cancel", "")
	assert.Equal(t, 400, w.Code)
}

func TestUpdateLocation_BadInput(t *testing.T) {
	s, _ := testSrv(t)
	r := gin.New()
	r.PUT("/api/devices/:id/location", NewDeviceController(s).UpdateLocation)

	assert.Equal(t, 400, do(r, "PUT", "/api/devices/xyz/location", `{"locationId":null}`).Code)
	assert.Equal(t, 400, do(r, "PUT", "/api/devices/"+rackID+"/location", `{"locationId":`).Code)
}
