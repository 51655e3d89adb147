package store

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockroom/internal/auth"
	"stockroom/internal/models"
)

func TestMain(m *testing.M) {
	auth.Cost = bcrypt.MinCost
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var dbSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func newTestStore(t *testing.T, opts Options) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	if opts.Now == nil {
		opts.Now = clock.Now
	}
	return New(setupTestDB(t), zap.NewNop().Sugar(), opts), clock
}

func material(code, name string, stock, min, max float64) MaterialInput {
	in := NewMaterialInput()
	in.Code, in.Name = code, name
	in.Stock, in.MinLevel, in.MaxLevel = stock, min, max
	in.UnitPrice = decimal.NewFromInt(10)
	return in
}

func mustMaterial(t *testing.T, s *Store, in MaterialInput) models.Material {
	t.Helper()
	m, err := s.CreateMaterial(context.Background(), in)
	require.NoError(t, err)
	return m
}

func TestNewKeyFormat(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	key, err := s.newKey(s.db, &models.Order{}, "order_no", "ORD")
	require.NoError(t, err)
	assert.Len(t, key, len("ORD")+14+4)
	assert.True(t, strings.HasPrefix(key, "ORD20240315103000"))
	assert.Equal(t, strings.ToUpper(key), key)
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "5", formatQty(5))
	assert.Equal(t, "2.5", formatQty(2.5))
	assert.Equal(t, "0", formatQty(0))
}
