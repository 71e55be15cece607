package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/config"
	"github.com/casalunahms/casaluna/internal/lock"
	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	occupancyrepo "github.com/casalunahms/casaluna/internal/occupancy/repository"
	occupancyservice "github.com/casalunahms/casaluna/internal/occupancy/service"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	paymentrepo "github.com/casalunahms/casaluna/internal/payment/repository"
	paymentservice "github.com/casalunahms/casaluna/internal/payment/service"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	reservationrepo "github.com/casalunahms/casaluna/internal/reservation/repository"
	reservationservice "github.com/casalunahms/casaluna/internal/reservation/service"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	roomrepo "github.com/casalunahms/casaluna/internal/room/repository"
	roomservice "github.com/casalunahms/casaluna/internal/room/service"
	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
	shiftrepo "github.com/casalunahms/casaluna/internal/shift/repository"
	shiftservice "github.com/casalunahms/casaluna/internal/shift/service"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
	staynightrepo "github.com/casalunahms/casaluna/internal/staynight/repository"
	staynightservice "github.com/casalunahms/casaluna/internal/staynight/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&roomdomain.Room{},
		&reservationdomain.Reservation{},
		&reservationdomain.RoomBooking{},
		&staynightdomain.Stay{},
		&staynightdomain.StayNight{},
		&paymentdomain.PaymentMethod{},
		&paymentdomain.Payment{},
		&occupancydomain.RoomDailyStatus{},
		&shiftdomain.ShiftHandover{},
		&shiftdomain.Sale{},
		&shiftdomain.CashOutflow{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{}
	cfg.Hotel.Timezone = "UTC"
	cfg.Hotel.DefaultCheckInTime = "15:00"
	cfg.Hotel.DefaultCheckOutTime = "12:00"
	cfg.Hotel.CheckoutRoomStatus = "cleaning"

	log := zap.NewNop()
	fixed := clock.Fixed{T: time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)}
	locker := lock.New(nil)

	staynightSvc := staynightservice.NewService(staynightservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Repo: staynightrepo.Provide(), PaymentRepo: paymentrepo.Provide(),
	})
	roomSvc := roomservice.NewService(roomservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: roomrepo.Provide(),
	})
	reservationSvc := reservationservice.NewService(reservationservice.ServiceParam{
		DB: db, Log: log, Cfg: cfg, GenID: node, Clock: fixed, Locker: locker,
		Repo: reservationrepo.Provide(), RoomRepo: roomrepo.Provide(), Ledger: staynightSvc,
	})
	paymentSvc := paymentservice.NewService(paymentservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fixed, Locker: locker,
		Repo: paymentrepo.Provide(), ReservationRepo: reservationrepo.Provide(), Ledger: staynightSvc,
	})
	shiftSvc := shiftservice.NewService(shiftservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fixed, Locker: locker,
		Repo: shiftrepo.Provide(), PaymentRepo: paymentrepo.Provide(),
	})
	engine, err := occupancyservice.NewEngine(occupancyservice.EngineParam{
		DB: db, Log: log, Cfg: cfg, GenID: node, Clock: fixed,
		Repo: occupancyrepo.Provide(), RoomRepo: roomrepo.Provide(), ReservationRepo: reservationrepo.Provide(),
	})
	require.NoError(t, err)

	srv := NewServer(ServerParam{
		Log: log, DB: db, Cfg: cfg,
		RoomSvc:        roomSvc,
		ReservationSvc: reservationSvc,
		StaynightSvc:   staynightSvc,
		PaymentSvc:     paymentSvc,
		ShiftSvc:       shiftSvc,
		Occupancy:      engine,
	})
	return srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func dataField(t *testing.T, parsed map[string]any, key string) any {
	t.Helper()
	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok, "missing data envelope: %v", parsed)
	return data[key]
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, parsed := doJSON(t, router, http.MethodPost, "/v1/rooms", gin.H{
		"number":           "101",
		"beds_count":       2,
		"max_capacity":     2,
		"occupancy_prices": gin.H{"1": 50000, "2": 80000},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	roomID := dataField(t, parsed, "id").(string)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/rooms", gin.H{
		"number": "101", "beds_count": 1, "max_capacity": 1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, parsed = doJSON(t, router, http.MethodPost, "/v1/rooms/"+roomID+"/status", gin.H{"status": "maintenance"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "maintenance", dataField(t, parsed, "status"))

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/rooms/"+roomID+"/status", gin.H{"status": "occupied"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReservationAndPaymentFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, parsed := doJSON(t, router, http.MethodPost, "/v1/rooms", gin.H{
		"number":           "101",
		"beds_count":       2,
		"max_capacity":     2,
		"occupancy_prices": gin.H{"1": 50000},
	})
	roomID := dataField(t, parsed, "id").(string)

	rec, parsed := doJSON(t, router, http.MethodPost, "/v1/reservations", gin.H{
		"customer_name": "Laura Mejia",
		"bookings": []gin.H{{
			"room_id":        roomID,
			"check_in_date":  "2025-01-10",
			"check_out_date": "2025-01-13",
			"guests":         1,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	reservationID := dataField(t, parsed, "id").(string)
	require.Equal(t, float64(150000), dataField(t, parsed, "total_amount"))

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/reservations/"+reservationID+"/check-in", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/payment-methods", gin.H{"code": "cash", "name": "Efectivo"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, parsed = doJSON(t, router, http.MethodPost, "/v1/payments", gin.H{
		"reservation_id": reservationID,
		"amount":         120000,
		"method_code":    "cash",
		"source":         "lodging",
		"receipt_number": "R-001",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	applied := dataField(t, parsed, "applied").(map[string]any)
	require.Equal(t, float64(2), applied["nights_paid"])
	require.Equal(t, float64(30000), applied["outstanding"])

	rec, parsed = doJSON(t, router, http.MethodGet, "/v1/reservations/"+reservationID+"/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(30000), dataField(t, parsed, "outstanding"))

	rec, parsed = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/v1/calendar?room_id=%s&from=2025-01-10&to=2025-01-14", roomID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	days := dataField(t, parsed, "days").([]any)
	require.Len(t, days, 5)
	first := days[0].(map[string]any)
	require.Equal(t, "occupied", first["status"])
}

func TestShiftFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec, parsed := doJSON(t, router, http.MethodPost, "/v1/shifts", gin.H{
		"opened_by": "ana", "opening_base": 100000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	shiftID := dataField(t, parsed, "id").(string)

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/sales", gin.H{
		"cash_amount": 40000, "payment_method": "cash",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, parsed = doJSON(t, router, http.MethodPost, "/v1/shifts/"+shiftID+"/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(140000), dataField(t, parsed, "expected_base"))

	rec, parsed = doJSON(t, router, http.MethodPost, "/v1/shifts/"+shiftID+"/deliver", gin.H{"received_base": 135000})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(-5000), dataField(t, parsed, "variance"))

	rec, _ = doJSON(t, router, http.MethodPost, "/v1/shifts/"+shiftID+"/reconcile", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, parsed = doJSON(t, router, http.MethodPost, "/v1/shifts/"+shiftID+"/receive", gin.H{"received_by": "sofia"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "received", dataField(t, parsed, "status"))
}
