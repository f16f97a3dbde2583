package sqlstore

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT UNIQUE,
		kind TEXT NOT NULL DEFAULT 'PRODUCT',
		is_composite BOOLEAN NOT NULL DEFAULT false,
		price NUMERIC NOT NULL DEFAULT 0,
		stock NUMERIC NOT NULL DEFAULT 0,
		sale_deduct_qty NUMERIC NOT NULL DEFAULT 1,
		sale_deduct_unit TEXT NOT NULL DEFAULT '',
		unit_level1 TEXT NOT NULL DEFAULT '',
		unit_level2 TEXT NOT NULL DEFAULT '',
		unit_ratio_2 INTEGER NOT NULL DEFAULT 0,
		unit_level3 TEXT NOT NULL DEFAULT '',
		unit_ratio_3 INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		parent_id TEXT NOT NULL REFERENCES inventory_items(id),
		child_id TEXT NOT NULL REFERENCES inventory_items(id),
		qty_needed NUMERIC NOT NULL CHECK (qty_needed > 0),
		edge_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (parent_id, child_id),
		CHECK (parent_id <> child_id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_logs (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		item_id TEXT NOT NULL REFERENCES inventory_items(id),
		action TEXT NOT NULL,
		qty BIGINT NOT NULL,
		delta NUMERIC NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_logs_item ON stock_logs (item_id, seq)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		total NUMERIC NOT NULL,
		payment_type TEXT NOT NULL,
		receipt_type TEXT NOT NULL DEFAULT '',
		tax_info TEXT,
		customer_id TEXT,
		customer_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions (customer_id, seq)`,
	`CREATE TABLE IF NOT EXISTS transaction_items (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		transaction_id TEXT NOT NULL REFERENCES transactions(id),
		item_id TEXT NOT NULL REFERENCES inventory_items(id),
		name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC NOT NULL,
		pet_id TEXT,
		pet_name TEXT NOT NULL DEFAULT '',
		staff_id TEXT,
		room_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_items_tx ON transaction_items (transaction_id)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		pet_id TEXT NOT NULL,
		service_id TEXT NOT NULL REFERENCES inventory_items(id),
		staff_id TEXT REFERENCES resources(id),
		room_id TEXT REFERENCES resources(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		actual_start TIMESTAMPTZ,
		actual_end TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_staff ON bookings (staff_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings (room_id, start_time)`,
}

// SQLite keeps decimals as TEXT so no precision is lost to REAL affinity.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT UNIQUE,
		kind TEXT NOT NULL DEFAULT 'PRODUCT',
		is_composite INTEGER NOT NULL DEFAULT 0,
		price TEXT NOT NULL DEFAULT '0',
		stock TEXT NOT NULL DEFAULT '0',
		sale_deduct_qty TEXT NOT NULL DEFAULT '1',
		sale_deduct_unit TEXT NOT NULL DEFAULT '',
		unit_level1 TEXT NOT NULL DEFAULT '',
		unit_level2 TEXT NOT NULL DEFAULT '',
		unit_ratio_2 INTEGER NOT NULL DEFAULT 0,
		unit_level3 TEXT NOT NULL DEFAULT '',
		unit_ratio_3 INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		parent_id TEXT NOT NULL REFERENCES inventory_items(id),
		child_id TEXT NOT NULL REFERENCES inventory_items(id),
		qty_needed TEXT NOT NULL,
		edge_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (parent_id, child_id),
		CHECK (parent_id <> child_id)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_logs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		item_id TEXT NOT NULL REFERENCES inventory_items(id),
		action TEXT NOT NULL,
		qty INTEGER NOT NULL,
		delta TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_logs_item ON stock_logs (item_id, seq)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		total TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		receipt_type TEXT NOT NULL DEFAULT '',
		tax_info TEXT,
		customer_id TEXT,
		customer_name TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions (customer_id, seq)`,
	`CREATE TABLE IF NOT EXISTS transaction_items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		transaction_id TEXT NOT NULL REFERENCES transactions(id),
		item_id TEXT NOT NULL REFERENCES inventory_items(id),
		name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price TEXT NOT NULL,
		pet_id TEXT,
		pet_name TEXT NOT NULL DEFAULT '',
		staff_id TEXT,
		room_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_items_tx ON transaction_items (transaction_id)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		pet_id TEXT NOT NULL,
		service_id TEXT NOT NULL REFERENCES inventory_items(id),
		staff_id TEXT REFERENCES resources(id),
		room_id TEXT REFERENCES resources(id),
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		status TEXT NOT NULL,
		actual_start DATETIME,
		actual_end DATETIME,
		created_at DATETIME NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_staff ON bookings (staff_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room ON bookings (room_id, start_time)`,
}

// MySQL cannot index TEXT keys and has no CREATE INDEX IF NOT EXISTS, so ids
// are VARCHAR and indexes live in the table definitions.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(64) UNIQUE,
		kind VARCHAR(16) NOT NULL DEFAULT 'PRODUCT',
		is_composite BOOLEAN NOT NULL DEFAULT FALSE,
		price DECIMAL(20,6) NOT NULL DEFAULT 0,
		stock DECIMAL(20,6) NOT NULL DEFAULT 0,
		sale_deduct_qty DECIMAL(20,6) NOT NULL DEFAULT 1,
		sale_deduct_unit VARCHAR(32) NOT NULL DEFAULT '',
		unit_level1 VARCHAR(32) NOT NULL DEFAULT '',
		unit_level2 VARCHAR(32) NOT NULL DEFAULT '',
		unit_ratio_2 INT NOT NULL DEFAULT 0,
		unit_level3 VARCHAR(32) NOT NULL DEFAULT '',
		unit_ratio_3 INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		parent_id VARCHAR(64) NOT NULL,
		child_id VARCHAR(64) NOT NULL,
		qty_needed DECIMAL(20,6) NOT NULL,
		edge_order INT NOT NULL DEFAULT 0,
		PRIMARY KEY (parent_id, child_id),
		FOREIGN KEY (parent_id) REFERENCES inventory_items(id),
		FOREIGN KEY (child_id) REFERENCES inventory_items(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS stock_logs (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		item_id VARCHAR(64) NOT NULL,
		action VARCHAR(8) NOT NULL,
		qty BIGINT NOT NULL,
		delta DECIMAL(20,6) NOT NULL,
		reason VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		INDEX idx_stock_logs_item (item_id, seq),
		FOREIGN KEY (item_id) REFERENCES inventory_items(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		total DECIMAL(20,6) NOT NULL,
		payment_type VARCHAR(32) NOT NULL,
		receipt_type VARCHAR(32) NOT NULL DEFAULT '',
		tax_info TEXT,
		customer_id VARCHAR(64),
		customer_name VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		INDEX idx_transactions_customer (customer_id, seq)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS transaction_items (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		transaction_id VARCHAR(64) NOT NULL,
		item_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		quantity INT NOT NULL,
		unit_price DECIMAL(20,6) NOT NULL,
		pet_id VARCHAR(64),
		pet_name VARCHAR(255) NOT NULL DEFAULT '',
		staff_id VARCHAR(64),
		room_id VARCHAR(64),
		INDEX idx_transaction_items_tx (transaction_id),
		FOREIGN KEY (transaction_id) REFERENCES transactions(id),
		FOREIGN KEY (item_id) REFERENCES inventory_items(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS resources (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(16) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id VARCHAR(64) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		pet_id VARCHAR(64) NOT NULL,
		service_id VARCHAR(64) NOT NULL,
		staff_id VARCHAR(64),
		room_id VARCHAR(64),
		start_time DATETIME(6) NOT NULL,
		end_time DATETIME(6) NOT NULL,
		status VARCHAR(16) NOT NULL,
		actual_start DATETIME(6),
		actual_end DATETIME(6),
		created_at DATETIME(6) NOT NULL,
		INDEX idx_bookings_staff (staff_id, start_time),
		INDEX idx_bookings_room (room_id, start_time),
		FOREIGN KEY (service_id) REFERENCES inventory_items(id),
		FOREIGN KEY (staff_id) REFERENCES resources(id),
		FOREIGN KEY (room_id) REFERENCES resources(id)
	) ENGINE=InnoDB`,
}
