package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/gnemet/LayoutForge/internal/extract"
)

type SlideLayout struct {
	ID            int             `json:"id"`
	FileID        string          `json:"file_id"`
	FrameID       string          `json:"frame_id"`
	SlideNumber   sql.NullInt64   `json:"slide_number"`
	ContainerName string          `json:"container_name"`
	FrameName     string          `json:"frame_name"`
	SlideType     string          `json:"slide_type"`
	FolderName    string          `json:"folder_name"`
	Sentences     int             `json:"sentences"`
	BlockCount    int             `json:"block_count"`
	SlideConfig   json.RawMessage `json:"slide_config"`
	PaletteColors []string        `json:"palette_colors"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SlideBlock struct {
	ID            int             `json:"id"`
	LayoutID      int             `json:"layout_id"`
	NodeID        string          `json:"node_id"`
	SQLType       string          `json:"sql_type"`
	FigmaType     string          `json:"figma_type"`
	Name          string          `json:"name"`
	X             int             `json:"x"`
	Y             int             `json:"y"`
	W             int             `json:"w"`
	H             int             `json:"h"`
	Rotation      int             `json:"rotation"`
	ZIndex        int             `json:"z_index"`
	FontSize      int             `json:"font_size"`
	FontWeight    int             `json:"font_weight"`
	BorderRadius  []int64         `json:"border_radius"`
	Opacity       float64         `json:"opacity"`
	Styles        json.RawMessage `json:"styles"`
	TextContent   sql.NullString  `json:"text_content"`
	Comment       sql.NullString  `json:"comment"`
	Color         sql.NullString  `json:"color"`
	ColorVariable sql.NullString  `json:"color_variable"`
	FontFamily    sql.NullString  `json:"font_family"`
	AllColors     []string        `json:"all_colors"`
	Words         int             `json:"words"`
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nonEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// layoutFromRecord maps a serialized slide onto its row.
func layoutFromRecord(fileID string, s extract.SlideRecord) (SlideLayout, error) {
	cfg, err := json.Marshal(s.SlideConfig)
	if err != nil {
		return SlideLayout{}, fmt.Errorf("encoding slide config of %s: %w", s.FrameID, err)
	}
	l := SlideLayout{
		FileID:        fileID,
		FrameID:       s.FrameID,
		ContainerName: s.ContainerName,
		FrameName:     s.FrameName,
		SlideType:     s.SlideType,
		FolderName:    s.FolderName,
		Sentences:     s.Sentences,
		BlockCount:    s.BlockCount,
		SlideConfig:   cfg,
		PaletteColors: s.PresentationPaletteColors,
	}
	if s.SlideNumber != nil {
		l.SlideNumber = sql.NullInt64{Int64: int64(*s.SlideNumber), Valid: true}
	}
	if l.PaletteColors == nil {
		l.PaletteColors = []string{}
	}
	return l, nil
}

// blockFromRecord maps a serialized block onto its row.
func blockFromRecord(b extract.BlockRecord) (SlideBlock, error) {
	styles, err := json.Marshal(b.Styles)
	if err != nil {
		return SlideBlock{}, fmt.Errorf("encoding styles of %s: %w", b.ID, err)
	}
	row := SlideBlock{
		NodeID:        b.ID,
		SQLType:       b.SQLType,
		FigmaType:     b.FigmaType,
		Name:          b.Name,
		X:             b.Dimensions.X,
		Y:             b.Dimensions.Y,
		W:             b.Dimensions.W,
		H:             b.Dimensions.H,
		Rotation:      b.Dimensions.Rotation,
		ZIndex:        b.Styles.ZIndex,
		FontSize:      b.Styles.FontSize,
		FontWeight:    b.Styles.Weight,
		Opacity:       b.Styles.Opacity,
		Styles:        styles,
		TextContent:   nullString(b.TextContent),
		Comment:       nullString(b.Comment),
		Color:         nonEmpty(b.Color),
		ColorVariable: nullString(b.ColorVariable),
		FontFamily:    nonEmpty(b.FontFamily),
		AllColors:     b.AllColors,
		Words:         b.Words,
	}
	for _, r := range b.Styles.BorderRadius {
		row.BorderRadius = append(row.BorderRadius, int64(r))
	}
	if row.AllColors == nil {
		row.AllColors = []string{}
	}
	return row, nil
}

// SaveExtraction replaces every stored layout of fileID with the slides of
// res in one transaction and returns the number of layouts written.
func SaveExtraction(ctx context.Context, db *sql.DB, fileID string, res *extract.Result) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM slide_layouts WHERE file_id = $1", fileID); err != nil {
		return 0, fmt.Errorf("clearing layouts of %s: %w", fileID, err)
	}

	for _, s := range res.Slides {
		l, err := layoutFromRecord(fileID, s)
		if err != nil {
			return 0, err
		}
		layoutID, err := insertLayout(ctx, tx, &l)
		if err != nil {
			return 0, fmt.Errorf("saving layout %s: %w", s.FrameID, err)
		}
		for _, b := range s.Blocks {
			row, err := blockFromRecord(b)
			if err != nil {
				return 0, err
			}
			row.LayoutID = layoutID
			if err := insertBlock(ctx, tx, &row); err != nil {
				return 0, fmt.Errorf("saving block %s: %w", b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(res.Slides), nil
}

func insertLayout(ctx context.Context, tx *sql.Tx, l *SlideLayout) (int, error) {
	query := `
		INSERT INTO slide_layouts (file_id, frame_id, slide_number, container_name, frame_name, slide_type, folder_name, sentences, block_count, slide_config, palette_colors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var id int
	err := tx.QueryRowContext(ctx, query, l.FileID, l.FrameID, l.SlideNumber, l.ContainerName, l.FrameName,
		l.SlideType, l.FolderName, l.Sentences, l.BlockCount, []byte(l.SlideConfig), pq.Array(l.PaletteColors)).Scan(&id)
	return id, err
}

func insertBlock(ctx context.Context, tx *sql.Tx, b *SlideBlock) error {
	query := `
		INSERT INTO slide_blocks (layout_id, node_id, sql_type, figma_type, name, x, y, w, h, rotation, z_index, font_size, font_weight, border_radius, opacity, styles, text_content, comment, color, color_variable, font_family, all_colors, words)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	_, err := tx.ExecContext(ctx, query, b.LayoutID, b.NodeID, b.SQLType, b.FigmaType, b.Name,
		b.X, b.Y, b.W, b.H, b.Rotation, b.ZIndex, b.FontSize, b.FontWeight,
		pq.Array(b.BorderRadius), b.Opacity, []byte(b.Styles), b.TextContent, b.Comment,
		b.Color, b.ColorVariable, b.FontFamily, pq.Array(b.AllColors), b.Words)
	return err
}

func GetLayoutsByFile(db *sql.DB, fileID string) ([]SlideLayout, error) {
	rows, err := db.Query(`SELECT id, file_id, frame_id, slide_number, container_name, frame_name, slide_type, folder_name, sentences, block_count, slide_config, palette_colors, created_at
		FROM slide_layouts WHERE file_id = $1 ORDER BY slide_number NULLS LAST, id`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layouts []SlideLayout
	for rows.Next() {
		var l SlideLayout
		if err := rows.Scan(&l.ID, &l.FileID, &l.FrameID, &l.SlideNumber, &l.ContainerName, &l.FrameName, &l.SlideType,
			&l.FolderName, &l.Sentences, &l.BlockCount, &l.SlideConfig, pq.Array(&l.PaletteColors), &l.CreatedAt); err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, rows.Err()
}

func GetBlocksByLayout(db *sql.DB, layoutID int) ([]SlideBlock, error) {
	rows, err := db.Query(`SELECT id, layout_id, node_id, sql_type, figma_type, name, x, y, w, h, rotation, z_index, font_size, font_weight, border_radius, opacity, styles, text_content, comment, color, color_variable, font_family, all_colors, words
		FROM slide_blocks WHERE layout_id = $1 ORDER BY id`, layoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []SlideBlock
	for rows.Next() {
		var b SlideBlock
		if err := rows.Scan(&b.ID, &b.LayoutID, &b.NodeID, &b.SQLType, &b.FigmaType, &b.Name, &b.X, &b.Y, &b.W, &b.H,
			&b.Rotation, &b.ZIndex, &b.FontSize, &b.FontWeight, pq.Array(&b.BorderRadius), &b.Opacity, &b.Styles,
			&b.TextContent, &b.Comment, &b.Color, &b.ColorVariable, &b.FontFamily, pq.Array(&b.AllColors), &b.Words); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
