package model

import "time"

// MenuCategory groups menu items for browsing ("Soups", "Drinks").
//
// Fields:
//  ID          - primary key identifier.
//  Name        - category name.
//  Description - short description shown on the menu page.
type MenuCategory struct {
    ID          uint64 `json:"id"`
    Name        string `json:"name"`
    Description string `json:"description"`
}

// MenuItem is a dish or drink on the menu.  The ordering core treats
// menu items as read-only collaborators: orders snapshot the name and
// price at placement time and are never affected by later edits.
//
// Fields:
//  ID           - primary key identifier.
//  CategoryID   - owning category.
//  Name         - item name.
//  Description  - menu description.
//  PriceCents   - current price in cents; the authoritative price for
//                 new orders regardless of what a client submits.
//  ImagePath    - relative path to the item photo.
//  PrepTimeMin  - kitchen preparation estimate in minutes.
//  IsAvailable  - items can be taken off the menu without deleting them.
//  CreatedAt    - creation timestamp.
type MenuItem struct {
    ID          uint64    `json:"id"`
    CategoryID  uint64    `json:"category_id"`
    Name        string    `json:"name"`
    Description string    `json:"description"`
    PriceCents  uint32    `json:"price_cents"`
    ImagePath   string    `json:"image_path,omitempty"`
    PrepTimeMin int       `json:"preparation_time"`
    IsAvailable bool      `json:"is_available"`
    CreatedAt   time.Time `json:"created_at"`
}
