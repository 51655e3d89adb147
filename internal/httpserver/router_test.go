package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockroom/internal/analytics"
	"stockroom/internal/archive"
	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/importer"
	"stockroom/internal/models"
	"stockroom/internal/store"
)

func init() { auth.Cost = bcrypt.MinCost }

var dbSeq atomic.Int64

type testServer struct {
	t  *testing.T
	h  http.Handler
	st *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, store.Migrate(db))

	lg := zap.NewNop().Sugar()
	st := store.New(db, lg, store.Options{})
	_, err = st.Seed(context.Background(), false)
	require.NoError(t, err)

	kw, err := importer.LoadKeywords("")
	require.NoError(t, err)
	archiver, err := archive.New(config.Archive{}, lg)
	require.NoError(t, err)

	h := NewRouter(Deps{
		Store:      st,
		Analytics:  analytics.New(st, lg),
		Importer:   importer.New(kw, st, lg),
		Archiver:   archiver,
		Tokens:     auth.NewTokens("test-secret"),
		Sessions:   auth.NewDBSessions(db),
		SessionTTL: time.Hour,
		Logger:     lg,
	})
	return &testServer{t: t, h: h, st: st}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	assert.Equal(s.t, username, resp.User.Username)
	return resp.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/me", "garbage", nil).Code)

	bad := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	token := s.login("admin", "admin123")
	me := s.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "admin", decodeBody[models.User](t, me).Username)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/me", token, nil).Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	user := s.login("user", "user123")
	admin := s.login("admin", "admin123")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/v1/users", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/v1/audit-logs", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/v1/export/workbook", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/v1/export/archive", user, nil).Code)

	users := s.do(http.MethodGet, "/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, users.Code)
	assert.Len(t, decodeBody[[]models.User](t, users), 3)

	created := s.do(http.MethodPost, "/v1/users", admin, map[string]string{
		"username": "zeynep", "password": "secret1", "role": "Viewer",
	})
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	dup := s.do(http.MethodPost, "/v1/users", admin, map[string]string{"username": "zeynep", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, dup.Code)

	patched := s.do(http.MethodPatch, "/v1/users/zeynep", admin, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, patched.Code)
	assert.False(t, decodeBody[models.User](t, patched).Active)
	login := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "zeynep", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestUserChangesEndSessions(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", "admin123")
	user := s.login("user", "user123")
	manager := s.login("manager", "manager123")
	material := map[string]any{"code": "MAL200", "name": "Zımba"}

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/v1/materials", user, material).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/v1/users/user", admin, map[string]any{"active": false}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/me", user, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/v1/materials", user, material).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/v1/users/manager", admin, map[string]any{"role": "Viewer"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/requests/pending", manager, nil).Code)
	relogged := s.login("manager", "manager123")
	me := s.do(http.MethodGet, "/v1/me", relogged, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, models.RoleViewer, decodeBody[models.User](t, me).Role)

	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/v1/users/admin", admin, map[string]any{"full_name": "Root"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/me", admin, nil).Code)
}

func TestMarkReadOwnership(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", "admin123")
	user := s.login("user", "user123")

	rec := s.do(http.MethodPost, "/v1/notifications", admin, map[string]string{"recipient": "manager", "title": "private"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id := decodeBody[models.Notification](t, rec).NotificationID

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/v1/notifications/"+id+"/read", user, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/v1/notifications/"+id+"/read", admin, nil).Code)
}

func TestMaterialsAndMovements(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin", "admin123")

	rec := s.do(http.MethodPost, "/v1/materials", token, map[string]any{
		"code": "MAL100", "name": "Toner", "category": "Office Equipment", "unit": "Piece",
		"stock": 6, "min_level": 5, "max_level": 20, "barcode": "869123", "unit_price": "100",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StockNormal, decodeBody[models.Material](t, rec).Status)

	dup := s.do(http.MethodPost, "/v1/materials", token, map[string]any{"code": "MAL100", "name": "Again"})
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/materials/NOPE", token, nil).Code)

	byBarcode := s.do(http.MethodGet, "/v1/materials/barcode/869123", token, nil)
	require.Equal(t, http.StatusOK, byBarcode.Code)
	assert.Equal(t, "MAL100", decodeBody[models.Material](t, byBarcode).Code)

	mv := s.do(http.MethodPost, "/v1/movements", token, map[string]any{
		"material_code": "MAL100", "type": "OUT", "quantity": 2, "counterparty": "IT",
	})
	require.Equal(t, http.StatusOK, mv.Code, mv.Body.String())
	invalid := s.do(http.MethodPost, "/v1/movements", token, map[string]any{
		"material_code": "MAL100", "type": "OUT", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	missing := s.do(http.MethodPost, "/v1/movements", token, map[string]any{
		"material_code": "NOPE", "type": "IN", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	critical := s.do(http.MethodGet, "/v1/materials/critical", token, nil)
	require.Equal(t, http.StatusOK, critical.Code)
	crit := decodeBody[[]models.Material](t, critical)
	require.Len(t, crit, 1)
	assert.Equal(t, float64(4), crit[0].Stock)

	count := s.do(http.MethodGet, "/v1/notifications/unread/count", token, nil)
	require.Equal(t, http.StatusOK, count.Code)
	assert.Equal(t, map[string]int64{"count": 1}, decodeBody[map[string]int64](t, count))

	list := s.do(http.MethodGet, "/v1/movements?material=MAL100&type=out", token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeBody[[]models.StockMovement](t, list), 1)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/v1/movements?from=yesterday", token, nil).Code)

	logs := s.do(http.MethodGet, "/v1/audit-logs?module=materials", token, nil)
	require.Equal(t, http.StatusOK, logs.Code)
	entries := decodeBody[[]models.AuditLog](t, logs)
	require.Len(t, entries, 1)
	assert.Equal(t, "CREATE", entries[0].Action)
	assert.Equal(t, "admin", entries[0].Username)
	assert.Equal(t, "MAL100", entries[0].RecordKey)
	assert.NotEmpty(t, entries[0].IP)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/v1/materials/MAL100", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/v1/materials/MAL100", token, nil).Code)
}

func TestRequestApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	user := s.login("user", "user123")
	manager := s.login("manager", "manager123")

	rec := s.do(http.MethodPost, "/v1/requests", user, map[string]any{
		"material_name": "Kalem", "quantity": 10, "department": "Accounting",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	req := decodeBody[models.Request](t, rec)
	assert.Equal(t, "user", req.Requester)

	path := "/v1/requests/" + req.RequestNo
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path+"/approve", user, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, path+"/complete", user, nil).Code)

	approved := s.do(http.MethodPut, path+"/approve", manager, nil)
	require.Equal(t, http.StatusOK, approved.Code, approved.Body.String())
	assert.Equal(t, models.RequestApproved, decodeBody[models.Request](t, approved).Status)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, path+"/reject", manager, map[string]string{"reason": "late"}).Code)

	notes := s.do(http.MethodGet, "/v1/notifications", user, nil)
	require.Equal(t, http.StatusOK, notes.Code)
	ns := decodeBody[[]models.Notification](t, notes)
	require.NotEmpty(t, ns)
	assert.Equal(t, models.NotifyRequestApproved, ns[0].Type)

	pending := s.do(http.MethodGet, "/v1/requests/pending", manager, nil)
	require.Equal(t, http.StatusOK, pending.Code)
	assert.Empty(t, decodeBody[[]models.Request](t, pending))
}

func TestOrdersAndBudget(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin", "admin123")

	rec := s.do(http.MethodPost, "/v1/orders", token, map[string]any{
		"supplier_code": "TED001", "supplier_name": "ABC",
		"lines": []map[string]any{{"material_code": "MAL001", "quantity": 2, "unit_price": "10.50"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	o := decodeBody[models.Order](t, rec)
	assert.Equal(t, "21", o.TotalAmount.String())
	assert.Equal(t, "admin", o.CreatedBy)

	empty := s.do(http.MethodPost, "/v1/orders", token, map[string]any{"supplier_name": "ABC"})
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	st := s.do(http.MethodPut, "/v1/orders/"+o.OrderNo+"/status", token, map[string]string{"status": "Delivered"})
	require.Equal(t, http.StatusOK, st.Code, st.Body.String())
	got := decodeBody[models.Order](t, st)
	assert.Equal(t, models.OrderDelivered, got.Status)
	assert.NotNil(t, got.DeliveredAt)
	assert.Empty(t, got.ApprovedBy)

	year := time.Now().Year()
	b := s.do(http.MethodPost, "/v1/budget", token, map[string]any{
		"year": year, "category": "Kitchen", "annual_limit": "1000", "monthly_limit": "100",
	})
	require.Equal(t, http.StatusOK, b.Code, b.Body.String())
	spend := s.do(http.MethodPost, "/v1/budget/spend", token, map[string]any{"category": "Kitchen", "amount": "250"})
	require.Equal(t, http.StatusOK, spend.Code, spend.Body.String())
	missing := s.do(http.MethodPost, "/v1/budget/spend", token, map[string]any{"category": "Nope", "amount": "1"})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	sum := s.do(http.MethodGet, fmt.Sprintf("/v1/budget?year=%d", year), token, nil)
	require.Equal(t, http.StatusOK, sum.Code)
	summary := decodeBody[models.BudgetSummary](t, sum)
	assert.Equal(t, "250", summary.Used.String())
	assert.InDelta(t, 25.0, summary.UsedRatio, 1e-9)
}

func TestEnumsReportsAndDashboard(t *testing.T) {
	s := newTestServer(t)
	token := s.login("user", "user123")

	units := s.do(http.MethodGet, "/v1/enums/units", token, nil)
	require.Equal(t, http.StatusOK, units.Code)
	opts := decodeBody[[]map[string]string](t, units)
	require.Len(t, opts, len(models.Units))
	assert.Equal(t, map[string]string{"value": "Piece", "label": "Piece"}, opts[0])
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/enums/colours", token, nil).Code)

	for _, path := range []string{
		"/v1/dashboard", "/v1/predictions", "/v1/reports/inventory", "/v1/reports/movements",
		"/v1/reports/department", "/v1/reports/suppliers", "/v1/analytics/monthly",
		"/v1/analytics/category", "/v1/analytics/trends", "/v1/locations", "/v1/stock-counts",
	} {
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, path, token, nil).Code, path)
	}
}

func TestLocationsAndStockCounts(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin", "admin123")

	loc := s.do(http.MethodPost, "/v1/locations", token, map[string]string{"name": "Arşiv"})
	require.Equal(t, http.StatusOK, loc.Code, loc.Body.String())
	code := decodeBody[models.Location](t, loc).Code
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/v1/locations/"+code, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/v1/locations/"+code, token, nil).Code)

	cnt := s.do(http.MethodPost, "/v1/stock-counts", token, map[string]string{"location": "Depo A"})
	require.Equal(t, http.StatusOK, cnt.Code, cnt.Body.String())
	sc := decodeBody[models.StockCount](t, cnt)
	assert.Equal(t, "admin", sc.CreatedBy)

	done := s.do(http.MethodPut, "/v1/stock-counts/"+sc.CountNo+"/complete", token, nil)
	require.Equal(t, http.StatusOK, done.Code)
	assert.Equal(t, models.CountCompleted, decodeBody[models.StockCount](t, done).Status)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/v1/stock-counts/CNT0/complete", token, nil).Code)
}

func TestImportAndExport(t *testing.T) {
	s := newTestServer(t)
	token := s.login("admin", "admin123")

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range [][]any{
		{"Sıra", "Malzeme Adı", "Miktar"},
		{1, "Çay (Siyah)", "4 PAKET"},
		{2, "çay (siyah)", "1"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/v1/materials/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, upload("list.csv", []byte("a,b")).Code)
	rec := upload("list.xlsx", buf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[store.ImportResult](t, rec)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	export := s.do(http.MethodGet, "/v1/export/workbook", token, nil)
	require.Equal(t, http.StatusOK, export.Code)
	assert.True(t, strings.HasPrefix(export.Header().Get("Content-Disposition"), "attachment;"))
	wb, err := excelize.OpenReader(bytes.NewReader(export.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Materials")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	archived := s.do(http.MethodPost, "/v1/export/archive", token, nil)
	require.Equal(t, http.StatusOK, archived.Code, archived.Body.String())
	assert.Contains(t, archived.Body.String(), "snapshots/")
}
