package database

import (
    "context"
    "database/sql"
)

// schema holds the DDL for every table the service uses. Statements
// are idempotent so the seeder can run them on a fresh or existing
// database. Orders carry a CHAR(36) uuid primary key (canonical
// identity) plus an AUTO_INCREMENT order_number kept purely for
// display; lookups always use the uuid.
var schema = []string{
    `CREATE TABLE IF NOT EXISTS users (
        id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        username      VARCHAR(64)  NOT NULL UNIQUE,
        password_hash VARCHAR(255) NOT NULL,
        name          VARCHAR(128) NOT NULL,
        role          ENUM('staff','kitchen','admin') NOT NULL,
        is_active     TINYINT(1)   NOT NULL DEFAULT 1,
        created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS refresh_tokens (
        id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        user_id    BIGINT UNSIGNED NOT NULL,
        token_hash CHAR(64)  NOT NULL UNIQUE,
        expires_at DATETIME  NOT NULL,
        revoked_at DATETIME  NULL,
        created_at DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS tables (
        id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        table_number     INT       NOT NULL UNIQUE,
        capacity         INT       NOT NULL,
        status           ENUM('available','occupied','reserved') NOT NULL DEFAULT 'available',
        current_order_id CHAR(36)  NULL,
        created_at       DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at       DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS menu_categories (
        id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        name        VARCHAR(128) NOT NULL,
        description VARCHAR(512) NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS menu_items (
        id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        category_id      BIGINT UNSIGNED NOT NULL,
        name             VARCHAR(128) NOT NULL,
        description      VARCHAR(512) NULL,
        price_cents      INT UNSIGNED NOT NULL,
        image_path       VARCHAR(255) NULL,
        preparation_time_min INT      NOT NULL DEFAULT 0,
        is_available     TINYINT(1)   NOT NULL DEFAULT 1,
        created_at       DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT fk_item_category FOREIGN KEY (category_id) REFERENCES menu_categories(id),
        INDEX idx_items_category (category_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS orders (
        id                 CHAR(36)  NOT NULL PRIMARY KEY,
        order_number       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT UNIQUE,
        table_id           BIGINT UNSIGNED NOT NULL,
        table_number       INT       NOT NULL,
        status             ENUM('pending','preparing','ready','delivered','cancelled') NOT NULL DEFAULT 'pending',
        total_cents        INT UNSIGNED NOT NULL,
        created_at         DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
        ready_at           DATETIME  NULL,
        delivered_at       DATETIME  NULL,
        CONSTRAINT fk_order_table FOREIGN KEY (table_id) REFERENCES tables(id),
        INDEX idx_orders_table_status (table_id, status),
        INDEX idx_orders_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

    `CREATE TABLE IF NOT EXISTS order_items (
        id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        order_id     CHAR(36)  NOT NULL,
        menu_item_id BIGINT UNSIGNED NOT NULL,
        name         VARCHAR(128) NOT NULL,
        quantity     INT UNSIGNED NOT NULL,
        price_cents  INT UNSIGNED NOT NULL,
        instructions VARCHAR(512) NULL,
        CONSTRAINT fk_line_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
        INDEX idx_lines_order (order_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
    for _, stmt := range schema {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return err
        }
    }
    return nil
}
