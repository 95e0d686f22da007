package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/config"
	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	appHTTP "github.com/hikari-care/attendance-backend-go/internal/handler/http"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/cron"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/jwt"
	"github.com/hikari-care/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hikari-care/attendance-backend-go/internal/service/attendance"
	correctionService "github.com/hikari-care/attendance-backend-go/internal/service/correction"
	reportService "github.com/hikari-care/attendance-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone:", err)
	}

	scheduledStart, err := attendance.ParseMinutes(cfg.Schedule.WorkStart)
	if err != nil {
		log.Fatal("Invalid work start time:", err)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	breakRepo := postgresql.NewBreakRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	userRepo := postgresql.NewUserRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	latePolicy := attendance.FixedSchedulePolicy{
		ScheduledStart: scheduledStart,
		GraceMinutes:   cfg.Schedule.GraceMinutes,
	}

	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, breakRepo, latePolicy, loc)
	correctionSvc := correctionService.NewCorrectionService(db, attendanceRepo, breakRepo, auditRepo, userRepo, loc)
	reportSvc := reportService.NewReportService(reportRepo, breakRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	correctionHandler := appHTTP.NewCorrectionHandler(correctionSvc)
	auditHandler := appHTTP.NewAuditHandler(correctionSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	scheduler := cron.NewScheduler()
	breakJobs := cron.NewBreakJobs(attendanceRepo, breakRepo)
	breakJobs.RegisterJobs(scheduler, cfg.Sweep.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtService, attendanceHandler, correctionHandler, auditHandler, reportHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Starting server on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server error:", err)
	}
}
