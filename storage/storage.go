package storage

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"

	"campusnav/models"
)

// PlacesRepo is the campus places directory behind the search box.
type PlacesRepo interface {
	SearchPlaces(query string, limit int) ([]models.Place, error)
	GetPlaceByID(id uint32) (*models.Place, error)
	UpsertPlace(p *models.Place) error
	ListCategories() ([]string, error)
}

type ProviderSQL struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func (p *ProviderSQL) SearchPlaces(query string, limit int) ([]models.Place, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := []models.Place{}
	err := p.db.Select(&resp,
		"SELECT * FROM place WHERE name LIKE '%'||$1||'%' ORDER BY name LIMIT $2;",
		query, limit)
	return resp, err
}

func (p *ProviderSQL) GetPlaceByID(id uint32) (*models.Place, error) {
	resp := models.Place{}
	err := p.db.Get(&resp, "SELECT * FROM place WHERE id=$1;", id)
	return &resp, err
}

func (p *ProviderSQL) UpsertPlace(place *models.Place) error {
	query := `
        INSERT OR REPLACE INTO place (id, name, category, lat, lon)
        VALUES (:id, :name, :category, :lat, :lon);`
	_, err := p.db.NamedExec(query, place)
	return err
}

func (p *ProviderSQL) ListCategories() ([]string, error) {
	resp := []string{}
	err := p.db.Select(&resp, "SELECT DISTINCT category FROM place ORDER BY category;")
	return resp, err
}

func NewProviderSQL(dbPath string, logger *slog.Logger) (*ProviderSQL, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open places db: %w", err)
	}
	p := &ProviderSQL{db: db, logger: logger}
	p.Migrate()
	return p, nil
}

func (p *ProviderSQL) Close() error {
	return p.db.Close()
}
