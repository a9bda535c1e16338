package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/glabrego/xkcd-cli/internal/words"
	"github.com/glabrego/xkcd-cli/internal/xkcd"
)

const lastComicNumKey = "last_comic_num"

var ErrNotFound = errors.New("comic not saved")

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Repository keeps saved comics and small settings in sqlite.
type Repository struct {
	db *sqlx.DB
}

type comicRow struct {
	Num         int    `db:"num"`
	Title       string `db:"title"`
	SafeTitle   string `db:"safe_title"`
	AltText     string `db:"alt"`
	ImageURL    string `db:"img"`
	Link        string `db:"link"`
	News        string `db:"news"`
	Transcript  string `db:"transcript"`
	Day         string `db:"day"`
	Month       string `db:"month"`
	Year        string `db:"year"`
	Permalink   string `db:"permalink"`
	Explanation string `db:"explanation"`
	Words       string `db:"words"`
	SavedAt     string `db:"saved_at"`
}

func NewRepository(path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS saved_comics (
  num INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  safe_title TEXT NOT NULL,
  alt TEXT NOT NULL DEFAULT '',
  img TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  news TEXT NOT NULL DEFAULT '',
  transcript TEXT NOT NULL DEFAULT '',
  day TEXT NOT NULL DEFAULT '',
  month TEXT NOT NULL DEFAULT '',
  year TEXT NOT NULL DEFAULT '',
  permalink TEXT NOT NULL DEFAULT '',
  explanation TEXT NOT NULL DEFAULT '',
  words TEXT NOT NULL DEFAULT '',
  saved_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save upserts comics keyed by number.
func (r *Repository) Save(ctx context.Context, comics ...xkcd.Comic) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, `
INSERT INTO saved_comics (num, title, safe_title, alt, img, link, news, transcript, day, month, year, permalink, explanation, words, saved_at)
VALUES (:num, :title, :safe_title, :alt, :img, :link, :news, :transcript, :day, :month, :year, :permalink, :explanation, :words, :saved_at)
ON CONFLICT(num) DO UPDATE SET
  title=excluded.title,
  safe_title=excluded.safe_title,
  alt=excluded.alt,
  img=excluded.img,
  link=excluded.link,
  news=excluded.news,
  transcript=excluded.transcript,
  day=excluded.day,
  month=excluded.month,
  year=excluded.year,
  permalink=excluded.permalink,
  explanation=CASE WHEN excluded.explanation = '' THEN saved_comics.explanation ELSE excluded.explanation END,
  words=excluded.words
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, comic := range comics {
		if comic.Num < 1 {
			return fmt.Errorf("save comic: invalid number %d", comic.Num)
		}
		row := toRow(comic)
		row.SavedAt = now
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("save comic %d: %w", comic.Num, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, num int) (xkcd.Comic, error) {
	var row comicRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM saved_comics WHERE num = ?`, num)
	if errors.Is(err, sql.ErrNoRows) {
		return xkcd.Comic{}, fmt.Errorf("comic %d: %w", num, ErrNotFound)
	}
	if err != nil {
		return xkcd.Comic{}, fmt.Errorf("query comic %d: %w", num, err)
	}
	return row.comic(), nil
}

// List returns saved comics, highest number first.
func (r *Repository) List(ctx context.Context, limit int) ([]xkcd.Comic, error) {
	if limit < 1 {
		limit = 100
	}
	var rows []comicRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM saved_comics ORDER BY num DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("query saved comics: %w", err)
	}
	return toComics(rows), nil
}

func (r *Repository) Delete(ctx context.Context, num int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_comics WHERE num = ?`, num)
	if err != nil {
		return fmt.Errorf("delete comic %d: %w", num, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comic %d: %w", num, err)
	}
	if n == 0 {
		return fmt.Errorf("comic %d: %w", num, ErrNotFound)
	}
	return nil
}

// Search matches saved comics containing every stem of query in their
// title, alt text, transcript or explanation.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]xkcd.Comic, error) {
	stems := words.Normalize(query)
	if len(stems) == 0 {
		return []xkcd.Comic{}, nil
	}
	if limit < 1 {
		limit = 100
	}

	clauses := make([]string, 0, len(stems))
	args := make([]any, 0, len(stems)+1)
	for _, stem := range stems {
		clauses = append(clauses, "words LIKE ?")
		args = append(args, "% "+stem+" %")
	}
	args = append(args, limit)

	var rows []comicRow
	q := `SELECT * FROM saved_comics WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY num DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("search saved comics: %w", err)
	}
	return toComics(rows), nil
}

// LastComicNum is the newest comic number seen by the notifier, 0 if unset.
func (r *Repository) LastComicNum(ctx context.Context) (int, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, lastComicNumKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", lastComicNumKey, err)
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", lastComicNumKey, value, err)
	}
	return num, nil
}

func (r *Repository) SetLastComicNum(ctx context.Context, num int) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, lastComicNumKey, strconv.Itoa(num))
	if err != nil {
		return fmt.Errorf("save %s: %w", lastComicNumKey, err)
	}
	return nil
}

func toRow(c xkcd.Comic) comicRow {
	stems := words.Normalize(strings.Join([]string{c.Title, c.SafeTitle, c.AltText, c.Transcript, c.Explanation}, " "))
	return comicRow{
		Num:         c.Num,
		Title:       c.Title,
		SafeTitle:   c.SafeTitle,
		AltText:     c.AltText,
		ImageURL:    c.ImageURL,
		Link:        c.Link,
		News:        c.News,
		Transcript:  c.Transcript,
		Day:         c.Day,
		Month:       c.Month,
		Year:        c.Year,
		Permalink:   c.Permalink,
		Explanation: c.Explanation,
		Words:       " " + strings.Join(stems, " ") + " ",
	}
}

func (row comicRow) comic() xkcd.Comic {
	return xkcd.Comic{
		Num:         row.Num,
		Title:       row.Title,
		SafeTitle:   row.SafeTitle,
		AltText:     row.AltText,
		ImageURL:    row.ImageURL,
		Link:        row.Link,
		News:        row.News,
		Transcript:  row.Transcript,
		Day:         row.Day,
		Month:       row.Month,
		Year:        row.Year,
		Permalink:   row.Permalink,
		Explanation: row.Explanation,
	}
}

func toComics(rows []comicRow) []xkcd.Comic {
	comics := make([]xkcd.Comic, 0, len(rows))
	for _, row := range rows {
		comics = append(comics, row.comic())
	}
	return comics
}
