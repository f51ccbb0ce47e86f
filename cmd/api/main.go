package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/heartyhounds/storefront-backend/internal/modules/address"
	"github.com/heartyhounds/storefront-backend/internal/modules/auth"
	"github.com/heartyhounds/storefront-backend/internal/modules/catalog"
	"github.com/heartyhounds/storefront-backend/internal/modules/checkout"
	"github.com/heartyhounds/storefront-backend/internal/modules/mailqueue"
	"github.com/heartyhounds/storefront-backend/internal/modules/order"
	"github.com/heartyhounds/storefront-backend/internal/modules/shipping"
	"github.com/heartyhounds/storefront-backend/internal/modules/user"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	admin := auth.RequireAdmin(jwtKey)

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router, admin)

	authService := auth.NewService(userRepo, jwtKey)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router, admin)

	// ── Seller address ──────────────────────────────────────
	addressRepo := address.NewPostgresRepository(db)
	addressService := address.NewService(addressRepo)
	address.NewHandler(addressService).RegisterRoutes(router, admin)

	// ── Checkout (Stripe) ───────────────────────────────────
	stripeGateway := checkout.NewStripeGateway(os.Getenv("STRIPE_SECRET_KEY"))
	checkoutService := checkout.NewService(stripeGateway, os.Getenv("PLATFORM_ACCOUNT_ID"))
	checkout.NewHandler(checkoutService).RegisterRoutes(router)

	// ── Shipping (Shippo) ───────────────────────────────────
	shippoGateway := shipping.NewShippoGateway(os.Getenv("SHIPPO_API_KEY"))
	fallbackOrigin := shipping.Address{
		Name:    "Hearty Hounds",
		Street1: "215 Clayton St",
		City:    "San Francisco",
		State:   "CA",
		Zip:     "94117",
		Country: "US",
	}
	shippingService := shipping.NewService(shippoGateway, addressRepo, fallbackOrigin)
	shipping.NewHandler(shippingService).RegisterRoutes(router)

	// ── Orders ──────────────────────────────────────────────
	mailRepo := mailqueue.NewPostgresRepository(db)
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, stripeGateway, catalogService, mailRepo, nil)
	order.NewHandler(orderService).RegisterRoutes(router, admin)

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Hearty Hounds API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
