package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"roombooking/internal/access"
	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/domain"
	"roombooking/internal/logger"
	"roombooking/internal/modules/booking"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if cfg.IsProdLike() {
		logrus.Fatal("seed refuses to run in a prod-like environment")
	}
	log := logger.New(cfg.Log, false)

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Info("Cleaning old data...")
	for _, table := range []string{"monthly_rentals", "payments", "bookings", "promotions", "rooms", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	// ================== REFERENCE DATA ==================
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, log); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	// ================== USERS ==================
	log.Info("Creating users...")
	users := []domain.User{
		{Email: "admin@roombooking.local", FirstName: "Admin", Role: domain.RoleAdmin},
		{Email: "desk@roombooking.local", FirstName: "Front", LastName: "Desk", Role: domain.RoleStaff},
		{Email: "aigerim@example.com", FirstName: "Aigerim", LastName: "Sadykova", Phone: "+7 777 123 4567", Role: domain.RoleCustomer},
		{Email: "timur@example.com", FirstName: "Timur", LastName: "Bekov", Phone: "+7 777 123 4568", Role: domain.RoleCustomer},
	}
	for i := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Fatal("hash password")
		}
		users[i].PasswordHash = string(hash)
		users[i].IsActive = true
		mustCreate(log, db, &users[i])
	}
	log.Info("All seed users use password123")

	// ================== ROOMS ==================
	log.Info("Creating rooms...")
	area := 24.0
	rooms := []domain.Room{
		{RoomNumber: "101", Name: "Standard Single", RoomType: "single", Capacity: 1, FloorNumber: 1, DailyRate: 35, MonthlyRate: 700, Amenities: datatypes.JSON(`["wifi","desk"]`)},
		{RoomNumber: "102", Name: "Standard Double", RoomType: "double", Capacity: 2, FloorNumber: 1, DailyRate: 50, MonthlyRate: 1000, Amenities: datatypes.JSON(`["wifi","tv"]`)},
		{RoomNumber: "201", Name: "Studio", RoomType: "studio", Capacity: 2, FloorNumber: 2, AreaSqm: &area, DailyRate: 65, MonthlyRate: 1300, Amenities: datatypes.JSON(`["wifi","kitchen","washer"]`)},
		{RoomNumber: "301", Name: "Family Suite", RoomType: "suite", Capacity: 4, FloorNumber: 3, DailyRate: 110, MonthlyRate: 2200, Amenities: datatypes.JSON(`["wifi","tv","kitchen"]`)},
	}
	for i := range rooms {
		rooms[i].Status = domain.RoomAvailable
		rooms[i].IsActive = true
		mustCreate(log, db, &rooms[i])
	}

	// ================== PROMOTIONS ==================
	log.Info("Creating promotions...")
	now := time.Now().UTC()
	ten, fifteen := 10.0, 15.0
	promotions := []domain.Promotion{
		{Title: "Welcome", PromoCode: "WELCOME10", DiscountPercentage: &ten, StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(1, 0, 0), IsActive: true},
		{Title: "Weekend", PromoCode: "WEEKEND15", DiscountAmount: &fifteen, StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(0, 3, 0), IsActive: true},
	}
	for i := range promotions {
		mustCreate(log, db, &promotions[i])
	}

	// ================== BOOKINGS ==================
	log.Info("Creating bookings...")
	authz, err := access.NewAuthorizer()
	if err != nil {
		log.WithError(err).Fatal("authorizer")
	}
	store := booking.NewStore(db)
	svc := booking.NewService(store, store, authz, nil, log)
	ctx := context.Background()

	guest := access.NewCaller(users[2].ID, domain.RoleCustomer)
	desk := access.NewCaller(users[1].ID, domain.RoleStaff)
	today := domain.DateOnly(now)

	b, err := svc.CreateBooking(ctx, guest, booking.CreateBookingInput{
		RoomID: rooms[1].ID, BookingType: domain.BookingDaily,
		CheckInDate: today.AddDate(0, 0, 7), CheckOutDate: today.AddDate(0, 0, 10),
		NumberOfGuests: 2, PromoCode: "WELCOME10",
	})
	if err != nil {
		log.WithError(err).Fatal("create booking")
	}
	if _, err := svc.Confirm(ctx, desk, b.ID); err != nil {
		log.WithError(err).Fatal("confirm booking")
	}

	if _, err := svc.CreateBooking(ctx, access.NewCaller(users[3].ID, domain.RoleCustomer), booking.CreateBookingInput{
		RoomID: rooms[2].ID, BookingType: domain.BookingMonthly,
		CheckInDate: today.AddDate(0, 0, 14), CheckOutDate: today.AddDate(0, 2, 14),
		NumberOfGuests: 1,
	}); err != nil {
		log.WithError(err).Fatal("create monthly booking")
	}

	log.WithFields(logrus.Fields{
		"users":      len(users),
		"rooms":      len(rooms),
		"promotions": len(promotions),
	}).Info("Seed completed")
}

func mustCreate(log *logrus.Logger, db *gorm.DB, v any) {
	if err := db.Create(v).Error; err != nil {
		log.WithError(err).Fatalf("create %T", v)
	}
}
