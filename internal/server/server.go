// Package server exposes the HTTP API: rooms, reservations, the
// occupancy calendar, payments, and cash shift handovers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/config"
	occupancyservice "github.com/casalunahms/casaluna/internal/occupancy/service"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

type Server struct {
	log *zap.Logger
	db  *gorm.DB
	cfg config.Config

	roomSvc        roomdomain.Service
	reservationSvc reservationdomain.Service
	staynightSvc   staynightdomain.Service
	paymentSvc     paymentdomain.Service
	shiftSvc       shiftdomain.Service
	occupancy      *occupancyservice.Engine
}

type ServerParam struct {
	fx.In

	Log            *zap.Logger
	DB             *gorm.DB
	Cfg            config.Config
	RoomSvc        roomdomain.Service
	ReservationSvc reservationdomain.Service
	StaynightSvc   staynightdomain.Service
	PaymentSvc     paymentdomain.Service
	ShiftSvc       shiftdomain.Service
	Occupancy      *occupancyservice.Engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log: p.Log.Named("server"),
		db:  p.DB,
		cfg: p.Cfg,

		roomSvc:        p.RoomSvc,
		reservationSvc: p.ReservationSvc,
		staynightSvc:   p.StaynightSvc,
		paymentSvc:     p.PaymentSvc,
		shiftSvc:       p.ShiftSvc,
		occupancy:      p.Occupancy,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/rooms", s.CreateRoom)
		v1.GET("/rooms", s.ListRooms)
		v1.GET("/rooms/:id", s.GetRoomByID)
		v1.POST("/rooms/:id/status", s.SetRoomStatus)

		v1.POST("/reservations", s.CreateReservation)
		v1.GET("/reservations", s.ListReservations)
		v1.GET("/reservations/:id", s.GetReservationByID)
		v1.POST("/reservations/:id/cancel", s.CancelReservation)
		v1.POST("/reservations/:id/check-in", s.CheckIn)
		v1.POST("/reservations/:id/check-out", s.CheckOut)
		v1.POST("/reservations/:id/extend", s.ExtendBooking)
		v1.GET("/reservations/:id/nights", s.ListStayNights)
		v1.GET("/reservations/:id/balance", s.GetBalance)
		v1.GET("/reservations/:id/payments", s.ListReservationPayments)

		v1.GET("/calendar", s.GetCalendar)
		v1.POST("/calendar/snapshot", s.SnapshotCalendarDay)

		v1.POST("/payments", s.RecordPayment)
		v1.GET("/payment-methods", s.ListPaymentMethods)
		v1.POST("/payment-methods", s.CreatePaymentMethod)

		v1.POST("/shifts", s.OpenShift)
		v1.GET("/shifts/:id", s.GetShiftByID)
		v1.POST("/shifts/:id/reconcile", s.ReconcileShift)
		v1.POST("/shifts/:id/deliver", s.DeliverShift)
		v1.POST("/shifts/:id/receive", s.ReceiveShift)
		v1.POST("/sales", s.RecordSale)
		v1.POST("/outflows", s.RecordOutflow)
	}
	return r
}

// @Summary      Health check
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
