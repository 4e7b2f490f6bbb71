package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/booksaloon/backend/internal/adapters/database"
	"github.com/booksaloon/backend/internal/adapters/search"
	"github.com/booksaloon/backend/internal/application/services"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/evaluation"
	"github.com/booksaloon/backend/internal/infrastructure/clients/postgres"
	"github.com/booksaloon/backend/internal/infrastructure/clients/typesense"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	"github.com/booksaloon/backend/pkg/config"
)

var seedUsers = []string{"user-asha", "user-ravi", "user-meera", "user-kabir", "user-noor", "user-dev"}

var seedProducts = []entities.Product{
	{Name: "Premium Argan Hair Oil", Category: "Oil", Price: 850, Rating: 4.8, TotalReviews: 64, TotalSales: 210},
	{Name: "Keratin Infusion Shampoo", Category: "Shampoo", Price: 1200, Rating: 4.7, TotalReviews: 41, TotalSales: 120},
	{Name: "Ultra-Hold Styling Gel", Category: "Styling", Price: 450, Rating: 4.5, TotalReviews: 88, TotalSales: 330},
	{Name: "Nourishing Hair Mask", Category: "Mask", Price: 950, Rating: 4.9, TotalReviews: 12, TotalSales: 30},
	{Name: "Matte Finish Hair Wax", Category: "Styling", Price: 600, Rating: 4.6, TotalReviews: 35, TotalSales: 95},
	{Name: "Color Protect Conditioner", Category: "Conditioner", Price: 1100, Rating: 4.7, TotalReviews: 22, TotalSales: 48},
	{Name: "Beard & Hair Serum", Category: "Serum", Price: 550, Rating: 4.4, TotalReviews: 19, TotalSales: 60},
	{Name: "Biotin Boost Serum", Category: "Serum", Price: 1350, Rating: 4.9, TotalReviews: 7, TotalSales: 15},
}

func main() {
	catalogPath := flag.String("catalog", "cmd/evaluate/testdata/catalog.json", "salon catalog JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("salon-seed", cfg.Env)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	if err := database.Migrate(ctx, pgClient); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE reviews, bookings, salons, products CASCADE`); err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	var suggestRepo repositories.SalonSuggestRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("typesense unavailable, skipping suggestion index")
		} else if err := tsClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to init typesense schema")
		} else {
			suggestRepo = search.NewTypesenseAdapter(tsClient)
		}
	}

	catalog, err := evaluation.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	salonService := services.NewSalonService(database.NewSalonAdapter(pgClient), suggestRepo, services.NewSearchRankingService())
	bookingRepo := database.NewBookingAdapter(pgClient)

	created := make([]entities.Salon, 0, len(catalog))
	for i := range catalog {
		s := catalog[i]
		if err := salonService.Create(ctx, &s); err != nil {
			log.Warn().Err(err).Str("salon", s.Name).Msg("failed to create salon")
			continue
		}
		created = append(created, s)
	}

	day := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	bookings := 0
	for ui, userID := range seedUsers {
		for si, salon := range created {
			// each user books a different subset of the catalog
			if (ui+si)%3 == 0 || len(salon.Services) == 0 {
				continue
			}
			svc := salon.Services[(ui+si)%len(salon.Services)]
			b := &entities.Booking{
				ID:      uuid.New().String(),
				UserID:  userID,
				SalonID: salon.ID,
				Service: svc.Name,
				Price:   svc.Price,
				Date:    day,
				Time:    fmt.Sprintf("%02d:00", 9+ui),
				Status:  entities.BookingStatusConfirmed,
			}
			if err := bookingRepo.Create(ctx, b); err != nil {
				log.Warn().Err(err).Str("user", userID).Str("salon", salon.ID).Msg("failed to create booking")
				continue
			}
			bookings++

			rating := 3.0 + float64((ui*7+si*3)%5)*0.5
			if _, err := pgClient.DB().ExecContext(ctx,
				`INSERT INTO reviews (user_id, salon_id, rating) VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, salon_id) DO UPDATE SET rating = EXCLUDED.rating`,
				userID, salon.ID, rating,
			); err != nil {
				log.Warn().Err(err).Str("user", userID).Str("salon", salon.ID).Msg("failed to create review")
			}
		}
	}

	productService := services.NewProductService(database.NewProductAdapter(pgClient), services.NewHybridRecommender())
	products := 0
	for i := range seedProducts {
		p := seedProducts[i]
		if err := productService.Create(ctx, &p); err != nil {
			log.Warn().Err(err).Str("product", p.Name).Msg("failed to create product")
			continue
		}
		products++
	}

	log.Info().Int("salons", len(created)).Int("bookings", bookings).Int("products", products).Msg("seeding completed")
}
