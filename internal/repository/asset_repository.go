package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"masonry_grid/internal/domain/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type AssetRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAssetRepository(db *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var assetColumns = []string{
	"id",
	"filename",
	"title",
	"asset_type",
	"url",
	"storage_path",
	"protection_level",
	"thumbnail",
	"tags",
	"created_at",
	"metadata",
}

func (r *AssetRepo) CreateAsset(ctx context.Context, asset *models.AssetRecord) error {
	const op = "repository.asset_repository.CreateAsset"

	tags := asset.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := r.sb.Insert("assets").
		Columns(assetColumns...).
		Values(
			asset.ID,
			asset.Filename,
			asset.Title,
			asset.Type,
			asset.URL,
			asset.StoragePath,
			asset.ProtectionLevel,
			asset.Thumbnail,
			pq.Array(tags),
			asset.CreatedAt,
			asset.Metadata,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *AssetRepo) AssetByID(ctx context.Context, id string) (*models.AssetRecord, error) {
	const op = "repository.asset_repository.AssetByID"

	query, args, err := r.sb.Select(assetColumns...).
		From("assets").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	asset, err := scanAsset(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return asset, nil
}

// AssetByStoragePath finds the asset whose file is stored at storagePath.
func (r *AssetRepo) AssetByStoragePath(ctx context.Context, storagePath string) (*models.AssetRecord, error) {
	const op = "repository.asset_repository.AssetByStoragePath"

	query, args, err := r.sb.Select(assetColumns...).
		From("assets").
		Where(sq.Eq{"storage_path": storagePath}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	asset, err := scanAsset(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return asset, nil
}

// ListAssets возвращает страницу библиотеки ассетов
func (r *AssetRepo) ListAssets(ctx context.Context, opts models.AssetListOptions) ([]models.AssetRecord, error) {
	const op = "repository.asset_repository.ListAssets"

	queryBuilder := r.sb.Select(assetColumns...).From("assets")

	if len(opts.AssetTypes) > 0 {
		types := make([]string, len(opts.AssetTypes))
		for i, t := range opts.AssetTypes {
			types[i] = string(t)
		}
		queryBuilder = queryBuilder.Where(sq.Eq{"asset_type": types})
	}

	// OR-фильтр: ассет должен содержать ЛЮБОЙ из указанных тегов
	if len(opts.Tags) > 0 {
		queryBuilder = queryBuilder.Where("tags && ?", pq.Array(opts.Tags))
	}

	queryBuilder = queryBuilder.OrderBy(orderClause(opts))

	if opts.Limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		queryBuilder = queryBuilder.Offset(uint64(opts.Offset))
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var assets []models.AssetRecord
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return assets, nil
}

func orderClause(opts models.AssetListOptions) string {
	column := "created_at"
	if strings.EqualFold(opts.OrderBy, models.OrderByFilename) {
		column = "filename"
	}

	dir := "DESC"
	if strings.EqualFold(opts.Order, models.OrderAsc) {
		dir = "ASC"
	}

	return column + " " + dir + ", id"
}

func scanAsset(row pgx.Row) (*models.AssetRecord, error) {
	var asset models.AssetRecord
	err := row.Scan(
		&asset.ID,
		&asset.Filename,
		&asset.Title,
		&asset.Type,
		&asset.URL,
		&asset.StoragePath,
		&asset.ProtectionLevel,
		&asset.Thumbnail,
		&asset.Tags,
		&asset.CreatedAt,
		&asset.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
