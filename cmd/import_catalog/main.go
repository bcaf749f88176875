// import_catalog carga productos con su stock inicial desde un CSV (UTF-8 o ISO-8859-1).
// Cada producto con initial_stock > 0 genera su movimiento "Stock inicial" a nombre del actor indicado.
// Las categorías que no existen se crean.
//
// Uso: go run ./cmd/import_catalog -file catalogo.csv -actor <user_id> [-encoding latin1] [-sep ';'] [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/jhoicas/pos-api/pkg/textnorm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// Códigos de salida.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// run ejecuta la importación y devuelve el código de salida. main solo llama os.Exit,
// así los defer (pool, señales) siempre se ejecutan.
func run(args []string) int {
	fs := flag.NewFlagSet("import_catalog", flag.ContinueOnError)
	file := fs.String("file", "", "ruta del CSV")
	actor := fs.String("actor", "", "ID del usuario que registra el stock inicial")
	encoding := fs.String("encoding", "utf-8", "utf-8 | latin1 | windows-1252")
	sep := fs.String("sep", ",", "separador de columnas")
	dryRun := fs.Bool("dry-run", false, "solo valida el archivo")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *file == "" || (*actor == "" && !*dryRun) {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return exitError
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}).Component("import_catalog")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := readCatalog(*file, *encoding, *sep)
	if err != nil {
		log.Error().Err(err).Str("file", *file).Msg("archivo inválido")
		return exitError
	}
	log.Info().Int("rows", len(rows)).Msg("catálogo leído")
	if *dryRun {
		return exitOK
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return exitError
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	if u, err := users.GetByID(ctx, *actor); err != nil || u == nil {
		log.Error().Err(err).Str("actor", *actor).Msg("el actor no existe")
		return exitError
	}

	products := postgres.NewProductRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	imp := &importer{
		products:   usecase.NewProductUseCase(products, categories, postgres.NewTxRunner(pool), inventory.NewLedger(products), nil),
		categories: usecase.NewCategoryUseCase(categories, products),
		log:        log,
	}
	res, err := imp.importRows(ctx, *actor, rows)
	if err != nil {
		log.Error().Err(err).Msg("listar categorías")
		return exitError
	}

	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("importación terminada")
	if res.Failed > 0 {
		return exitError
	}
	return exitOK
}

// importResult conteo de filas por resultado.
type importResult struct {
	Created, Skipped, Failed int
}

type importer struct {
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	log        *logger.Logger
}

// importRows crea cada producto con su stock inicial. Un SKU duplicado se omite; otros errores cuentan como fallo
// y no detienen la importación.
func (imp *importer) importRows(ctx context.Context, actor string, rows []catalogRow) (importResult, error) {
	var res importResult
	catIDs, err := loadCategories(ctx, imp.categories)
	if err != nil {
		return res, err
	}
	for _, row := range rows {
		if row.Category != "" {
			id, err := ensureCategory(ctx, imp.categories, catIDs, row.Category)
			if err != nil {
				imp.log.Error().Err(err).Int("line", row.Line).Msg("categoría")
				res.Failed++
				continue
			}
			row.Product.CategoryID = id
		}
		_, err := imp.products.Create(ctx, actor, row.Product)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrDuplicate):
			imp.log.Warn().Int("line", row.Line).Str("sku", row.Product.SKU).Msg("ya existe, se omite")
			res.Skipped++
		default:
			imp.log.Error().Err(err).Int("line", row.Line).Str("sku", row.Product.SKU).Msg("no se pudo importar")
			res.Failed++
		}
	}
	return res, nil
}

func readCatalog(path, encoding, sep string) ([]catalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := textnorm.NewReader(f, encoding)
	if err != nil {
		return nil, err
	}
	comma, size := utf8.DecodeRuneInString(sep)
	if size == 0 || size != len(sep) {
		return nil, fmt.Errorf("separador inválido %q", sep)
	}
	return parseCatalog(r, comma)
}

// loadCategories indexa las categorías existentes por nombre normalizado.
func loadCategories(ctx context.Context, uc *usecase.CategoryUseCase) (map[string]string, error) {
	list, err := uc.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, c := range list {
		out[textnorm.Normalize(c.Name)] = c.ID
	}
	return out, nil
}

func ensureCategory(ctx context.Context, uc *usecase.CategoryUseCase, ids map[string]string, name string) (string, error) {
	key := textnorm.Normalize(name)
	if id, ok := ids[key]; ok {
		return id, nil
	}
	c, err := uc.Create(ctx, dto.CategoryRequest{Name: strings.TrimSpace(name)})
	if err != nil {
		return "", err
	}
	ids[key] = c.ID
	return c.ID, nil
}
