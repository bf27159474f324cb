package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/calorielog/internal/db"
	"github.com/calorielog/internal/session"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Admin{}, &db.Food{}, &db.CustomerFood{}, &db.DietRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := gdb.Create(&db.User{Username: "alice", Password: "hashed", TargetKcal: db.DefaultTargetKcal}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := gdb.Create(&db.User{Username: "bob", Password: "hashed", TargetKcal: db.DefaultTargetKcal}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	db.DB = gdb

	return NewAPI(db.DB, session.NewGate()), func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// jsonContext 构造一个带会话主体的测试上下文
func jsonContext(t *testing.T, method, target string, payload any, subjectID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if subjectID != 0 {
		c.Set(session.SubjectIDKey, subjectID)
	}
	return c, w
}

func seedFood(t *testing.T, name string, calories float64) db.Food {
	t.Helper()
	food := db.Food{Name: name, Calories: calories, Protein: 10, Fat: 5, Carbs: 20}
	if err := db.DB.Create(&food).Error; err != nil {
		t.Fatalf("failed to seed food: %v", err)
	}
	return food
}

func TestCreateDietRecordComputesSums(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "鸡胸肉", 100)

	c, w := jsonContext(t, http.MethodPost, "/diet-records", map[string]any{
		"record_time":      "2024-01-05T12:30",
		"qty":              2,
		"official_food_id": food.ID,
	}, 1)

	api.CreateDietRecord(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["calorie_sum"].(float64) != 200 {
		t.Fatalf("calorie_sum = %v, want 200", resp["calorie_sum"])
	}
	if resp["food_name"].(string) != "鸡胸肉" {
		t.Fatalf("food_name = %v, want 鸡胸肉", resp["food_name"])
	}
	if resp["user_id"].(float64) != 1 {
		t.Fatalf("user_id = %v, want session subject 1", resp["user_id"])
	}
}

func TestCreateDietRecordRejectsBadTime(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "白饭", 180)

	c, w := jsonContext(t, http.MethodPost, "/diet-records", map[string]any{
		"record_time":      "05/01/2024 noon",
		"qty":              1,
		"official_food_id": food.ID,
	}, 1)

	api.CreateDietRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateDietRecordRejectsMissingQty(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "白饭", 180)

	// qty 是必填字段，不做静默兜底
	c, w := jsonContext(t, http.MethodPost, "/diet-records", map[string]any{
		"record_time":      "2024-01-05T12:30",
		"official_food_id": food.ID,
	}, 1)

	api.CreateDietRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateDietRecordRejectsAmbiguousReference(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "白饭", 180)

	c, w := jsonContext(t, http.MethodPost, "/diet-records", map[string]any{
		"record_time":      "2024-01-05T12:30",
		"qty":              1,
		"official_food_id": food.ID,
		"manual_name":      "手填",
	}, 1)

	api.CreateDietRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateDietRecordRejectsPartialSums(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := jsonContext(t, http.MethodPost, "/diet-records", map[string]any{
		"record_time": "2024-01-05T12:30",
		"qty":         1,
		"manual_name": "夜市鸡排",
		"calorie_sum": 550,
	}, 1)

	api.CreateDietRecord(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for partial sums, got %d", w.Code)
	}
}

func TestDietRecordCrossOwnerAccess(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "吐司", 80)
	rec := db.DietRecord{
		UserID:         1,
		RecordTime:     time.Now(),
		Qty:            1,
		OfficialFoodID: &food.ID,
		FoodName:       food.Name,
		CalorieSum:     80, CarbSum: 20, ProteinSum: 10, FatSum: 5,
	}
	if err := db.DB.Create(&rec).Error; err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}

	idParam := gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(rec.ID))}}

	// bob (user 2) 读 alice 的纪录
	c, w := jsonContext(t, http.MethodGet, "/diet-records/"+strconv.Itoa(int(rec.ID)), nil, 2)
	c.Params = idParam
	api.GetDietRecord(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("get: expected status 403, got %d", w.Code)
	}

	c, w = jsonContext(t, http.MethodPut, "/diet-records/"+strconv.Itoa(int(rec.ID)), map[string]any{"qty": 2}, 2)
	c.Params = idParam
	api.UpdateDietRecord(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("update: expected status 403, got %d", w.Code)
	}

	c, w = jsonContext(t, http.MethodDelete, "/diet-records/"+strconv.Itoa(int(rec.ID)), nil, 2)
	c.Params = idParam
	api.DeleteDietRecord(c)
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete: expected status 403, got %d", w.Code)
	}
}

func TestGetDietRecordsDateFilter(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "燕麦", 150)
	for _, day := range []time.Time{
		time.Date(2024, 1, 3, 8, 0, 0, 0, time.Local),
		time.Date(2024, 1, 5, 19, 0, 0, 0, time.Local),
	} {
		rec := db.DietRecord{
			UserID: 1, RecordTime: day, Qty: 1,
			OfficialFoodID: &food.ID, FoodName: food.Name,
			CalorieSum: 150, CarbSum: 20, ProteinSum: 10, FatSum: 5,
		}
		if err := db.DB.Create(&rec).Error; err != nil {
			t.Fatalf("failed to seed record: %v", err)
		}
	}

	// end_date 为纯日期时包含整个结束日
	c, w := jsonContext(t, http.MethodGet, "/diet-records?start_date=2024-01-01&end_date=2024-01-05", nil, 1)
	api.GetDietRecords(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 records through Jan 5, got %d", len(resp))
	}

	c, w = jsonContext(t, http.MethodGet, "/diet-records?start_date=2024-01-01&end_date=2024-01-04", nil, 1)
	api.GetDietRecords(c)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 record through Jan 4, got %d", len(resp))
	}
}

func TestGetDailySummary(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	food := seedFood(t, "香蕉", 90)
	for _, hour := range []int{8, 20} {
		rec := db.DietRecord{
			UserID:         1,
			RecordTime:     time.Date(2024, 2, 1, hour, 0, 0, 0, time.Local),
			Qty:            1,
			OfficialFoodID: &food.ID,
			FoodName:       food.Name,
			CalorieSum:     90, CarbSum: 20, ProteinSum: 10, FatSum: 5,
		}
		if err := db.DB.Create(&rec).Error; err != nil {
			t.Fatalf("failed to seed record: %v", err)
		}
	}

	c, w := jsonContext(t, http.MethodGet, "/diet-records/summary?date=2024-02-01", nil, 1)
	api.GetDailySummary(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["calorie_sum"].(float64) != 180 {
		t.Fatalf("calorie_sum = %v, want 180", resp["calorie_sum"])
	}
	if resp["record_count"].(float64) != 2 {
		t.Fatalf("record_count = %v, want 2", resp["record_count"])
	}
	if resp["target_kcal"].(float64) != float64(db.DefaultTargetKcal) {
		t.Fatalf("target_kcal = %v, want %d", resp["target_kcal"], db.DefaultTargetKcal)
	}
}
