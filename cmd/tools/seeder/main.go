package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// seedNamespace keeps seeded ids stable so the seeder can be rerun.
var seedNamespace = uuid.MustParse("6f1c1d0e-3b7a-4d8e-9a52-0c2f5e8b7d11")

func seedID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+name))
}

type seedProperty struct {
	Name      string
	City      string
	Country   string
	Price     string
	MaxGuests int
}

type seedOffering struct {
	Name     string
	Category string
	Hourly   *string
	Fixed    *string
}

type seedProvider struct {
	Name      string
	City      string
	Offerings []seedOffering
}

func rate(v string) *string { return &v }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProperties(db)
	seedProviders(db)

	log.Println("Seeding completed successfully!")
}

func seedProperties(db *sql.DB) {
	properties := []seedProperty{
		{"Casa Azul", "Lisbon", "PT", "120.00", 4},
		{"Alfama Loft", "Lisbon", "PT", "95.50", 2},
		{"Ribeira View", "Porto", "PT", "110.00", 3},
		{"Villa Serena", "Bali", "ID", "180.00", 6},
		{"Ubud Jungle Hut", "Bali", "ID", "65.00", 2},
		{"Shibuya Studio", "Tokyo", "JP", "140.00", 2},
	}

	fmt.Println("Seeding Properties...")
	for _, p := range properties {
		_, err := db.Exec(`
			INSERT INTO properties (id, name, city, country, price_per_night, max_guests)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				country = EXCLUDED.country,
				price_per_night = EXCLUDED.price_per_night,
				max_guests = EXCLUDED.max_guests;
		`, seedID("property", p.Name).String(), p.Name, p.City, p.Country, p.Price, p.MaxGuests)
		if err != nil {
			log.Printf("Failed to upsert property %s: %v", p.Name, err)
		}
	}
}

func seedProviders(db *sql.DB) {
	providers := []seedProvider{
		{"Chef Rui", "Lisbon", []seedOffering{
			{"Private dinner", "chef", rate("45.00"), nil},
			{"Cooking class", "chef", nil, rate("90.00")},
		}},
		{"Sparkle Cleaning", "Lisbon", []seedOffering{
			{"Deep clean", "cleaner", nil, rate("50.00")},
		}},
		{"Ana Tours", "Lisbon", []seedOffering{
			{"City walk", "tour_guide", rate("25.00"), nil},
		}},
		{"Porto Wine Walks", "Porto", []seedOffering{
			{"Cellar tour", "tour_guide", nil, rate("60.00")},
		}},
		{"Made Kitchen", "Bali", []seedOffering{
			{"Balinese feast", "chef", rate("30.00"), nil},
		}},
		{"Wayan Guides", "Bali", []seedOffering{
			{"Sunrise trek", "tour_guide", nil, rate("75.00")},
			{"Temple visit", "tour_guide", rate("20.00"), nil},
		}},
	}

	fmt.Println("Seeding Service Providers...")
	for _, sp := range providers {
		providerID := seedID("provider", sp.Name)
		_, err := db.Exec(`
			INSERT INTO service_providers (id, name, city)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, city = EXCLUDED.city;
		`, providerID.String(), sp.Name, sp.City)
		if err != nil {
			log.Printf("Failed to upsert provider %s: %v", sp.Name, err)
			continue
		}
		for _, o := range sp.Offerings {
			_, err := db.Exec(`
				INSERT INTO service_offerings (id, provider_id, name, category, hourly_rate, fixed_rate)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					category = EXCLUDED.category,
					hourly_rate = EXCLUDED.hourly_rate,
					fixed_rate = EXCLUDED.fixed_rate,
					active = TRUE;
			`, seedID("offering", sp.Name+"/"+o.Name).String(), providerID.String(), o.Name, o.Category, o.Hourly, o.Fixed)
			if err != nil {
				log.Printf("Failed to upsert offering %s/%s: %v", sp.Name, o.Name, err)
			}
		}
	}
}
