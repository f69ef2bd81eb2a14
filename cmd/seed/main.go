// Command seed creates the database schema and loads the demo
// restaurant: three staff accounts, the Vietnamese menu and an
// eight-table floor plan. Safe to re-run; existing rows are wiped
// first so the dataset is always exactly this one.
package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"

    "github.com/quangtd/restaurant-table-orders/internal/config"
    "github.com/quangtd/restaurant-table-orders/internal/database"
    "github.com/quangtd/restaurant-table-orders/internal/model"
    "github.com/quangtd/restaurant-table-orders/internal/repository"
)

type seedItem struct {
    category    string
    name        string
    description string
    priceCents  uint32
    imagePath   string
    prepMin     int
}

var seedCategories = []model.MenuCategory{
    {Name: "Soups", Description: "Hearty Vietnamese soups"},
    {Name: "Rice & Noodles", Description: "Traditional rice and noodle dishes"},
    {Name: "Desserts", Description: "Sweet treats to finish your meal"},
    {Name: "Drinks", Description: "Refreshing beverages"},
}

var seedItems = []seedItem{
    {"Soups", "Phở Bò", "Traditional beef noodle soup with herbs and bean sprouts", 950, "/images/pho-bo.jpg", 18},
    {"Soups", "Bún Bò Huế", "Spicy beef noodle soup from central Vietnam", 1050, "/images/bun-bo-hue.jpg", 20},
    {"Soups", "Canh Chua Cá", "Sweet and sour fish soup with vegetables", 550, "/images/canh-chua.jpg", 15},
    {"Rice & Noodles", "Cơm Chiên Hải Sản", "Seafood fried rice", 1100, "/images/com-chien.jpg", 15},
    {"Rice & Noodles", "Bánh Mì Thịt", "Vietnamese sandwich with various meats and vegetables", 850, "/images/banh-mi.jpg", 10},
    {"Rice & Noodles", "Bún Chả", "Grilled pork with rice noodles and herbs", 950, "/images/bun-cha.jpg", 20},
    {"Rice & Noodles", "Cơm Tấm", "Broken rice with grilled pork, egg, and vegetables", 1050, "/images/com-tam.jpg", 15},
    {"Rice & Noodles", "Bánh Xèo", "Vietnamese crispy pancake with shrimp and bean sprouts", 850, "/images/banh-xeo.jpg", 18},
    {"Desserts", "Chè Ba Màu", "Three-color dessert with beans, jelly, and coconut milk", 450, "/images/che-ba-mau.jpg", 8},
    {"Desserts", "Bánh Flan", "Vietnamese caramel custard", 350, "/images/banh-flan.jpg", 5},
    {"Desserts", "Chè Đậu Xanh", "Mung bean pudding with coconut cream", 400, "/images/che-dau-xanh.jpg", 6},
    {"Drinks", "Cà Phê Sữa Đá", "Vietnamese iced coffee with condensed milk", 250, "/images/ca-phe-sua-da.jpg", 5},
    {"Drinks", "Nước Chanh Muối", "Salted preserved lime juice", 350, "/images/nuoc-chanh-muoi.jpg", 3},
    {"Drinks", "Trà Đá", "Vietnamese iced tea", 150, "/images/tra-da.jpg", 3},
    {"Drinks", "Sinh Tố Bơ", "Avocado smoothie with condensed milk", 450, "/images/sinh-to-bo.jpg", 5},
}

var seedTables = []struct {
    number   int
    capacity int
}{
    {1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 6}, {6, 6}, {7, 8}, {8, 8},
}

var seedUsers = []struct {
    username string
    name     string
    role     string
}{
    {"staff1", "Staff User", model.RoleStaff},
    {"kitchen1", "Kitchen User", model.RoleKitchen},
    {"admin1", "Admin User", model.RoleAdmin},
}

const seedPassword = "password123"

func main() {
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
    defer cancel()

    if err := database.EnsureSchema(ctx, db); err != nil {
        log.Fatalf("ensure schema: %v", err)
    }
    log.Println("schema ensured")

    // Wipe in FK order.
    for _, table := range []string{"order_items", "orders", "refresh_tokens", "users", "menu_items", "menu_categories", "tables"} {
        if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
            log.Fatalf("clear %s: %v", table, err)
        }
    }
    log.Println("cleared existing data")

    users := repository.NewUserRepo(db)
    for _, u := range seedUsers {
        if _, err := users.Create(ctx, u.username, seedPassword, u.name, u.role, cfg.BcryptCost); err != nil {
            log.Fatalf("seed user %s: %v", u.username, err)
        }
    }
    log.Println("seeded users")

    menu := repository.NewMenuRepo(db)
    catIDs := make(map[string]uint64, len(seedCategories))
    for _, cat := range seedCategories {
        id, err := menu.CreateCategory(ctx, cat.Name, cat.Description)
        if err != nil {
            log.Fatalf("seed category %s: %v", cat.Name, err)
        }
        catIDs[cat.Name] = id
    }
    log.Println("seeded menu categories")

    for _, it := range seedItems {
        _, err := menu.CreateItem(ctx, &model.MenuItem{
            CategoryID:  catIDs[it.category],
            Name:        it.name,
            Description: it.description,
            PriceCents:  it.priceCents,
            ImagePath:   it.imagePath,
            PrepTimeMin: it.prepMin,
            IsAvailable: true,
        })
        if err != nil {
            log.Fatalf("seed item %s: %v", it.name, err)
        }
    }
    log.Println("seeded menu items")

    tables := repository.NewTableRepo(db)
    for _, t := range seedTables {
        if _, err := tables.Create(ctx, t.number, t.capacity); err != nil {
            log.Fatalf("seed table %d: %v", t.number, err)
        }
    }
    // Table 5 starts reserved, matching the demo floor plan. Occupied
    // is never seeded: it is derived from orders.
    t5, err := tables.GetByNumber(ctx, 5)
    if err != nil {
        log.Fatalf("load table 5: %v", err)
    }
    if err := tables.SetStatus(ctx, t5.ID, model.TableReserved); err != nil {
        log.Fatalf("reserve table 5: %v", err)
    }
    log.Println("seeded tables")

    log.Println("database successfully seeded")
}
