package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Schema creates the tables extraction results are written to.
const Schema = `
CREATE TABLE IF NOT EXISTS slide_layouts (
	id             SERIAL PRIMARY KEY,
	file_id        TEXT NOT NULL,
	frame_id       TEXT NOT NULL,
	slide_number   INT,
	container_name TEXT NOT NULL DEFAULT '',
	frame_name     TEXT NOT NULL DEFAULT '',
	slide_type     TEXT NOT NULL,
	folder_name    TEXT NOT NULL,
	sentences      INT NOT NULL DEFAULT 1,
	block_count    INT NOT NULL DEFAULT 0,
	slide_config   JSONB NOT NULL DEFAULT '{}',
	palette_colors TEXT[] NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (file_id, frame_id)
);

CREATE TABLE IF NOT EXISTS slide_blocks (
	id             SERIAL PRIMARY KEY,
	layout_id      INT NOT NULL REFERENCES slide_layouts(id) ON DELETE CASCADE,
	node_id        TEXT NOT NULL,
	sql_type       TEXT NOT NULL,
	figma_type     TEXT NOT NULL,
	name           TEXT NOT NULL,
	x              INT NOT NULL,
	y              INT NOT NULL,
	w              INT NOT NULL,
	h              INT NOT NULL,
	rotation       INT NOT NULL DEFAULT 0,
	z_index        INT NOT NULL DEFAULT 0,
	font_size      INT NOT NULL DEFAULT 0,
	font_weight    INT NOT NULL DEFAULT 400,
	border_radius  INT[] NOT NULL DEFAULT '{0,0,0,0}',
	opacity        DOUBLE PRECISION NOT NULL DEFAULT 1,
	styles         JSONB NOT NULL DEFAULT '{}',
	text_content   TEXT,
	comment        TEXT,
	color          TEXT,
	color_variable TEXT,
	font_family    TEXT,
	all_colors     TEXT[] NOT NULL DEFAULT '{}',
	words          INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS slide_blocks_layout_idx ON slide_blocks (layout_id);
`

func NewConnection(connectStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Println("Database connection established")
	return db, nil
}

// EnsureSchema applies Schema; every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
