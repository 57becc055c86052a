// import_legacy carga en el almacén configurado (STORE_DRIVER) un export JSON de la
// colección inventory del sistema anterior.
//
// Uso: go run ./cmd/import_legacy -user <admin-id> [-charset windows-1252] [-store <id>] inventory.json
// Las filas inválidas se reportan y no detienen la carga.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/persistence"
	"github.com/jhoicas/dukastock-api/pkg/config"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

func main() {
	charset := flag.String("charset", "utf-8", "charset del export (utf-8, iso-8859-1, windows-1252)")
	store := flag.String("store", "", "duka destino; vacío = storeId de cada documento")
	userID := flag.String("user", "", "ID del admin o staff-admin que realiza la carga")
	flag.Parse()
	if flag.NArg() != 1 || *userID == "" {
		fmt.Fprintln(os.Stderr, "Uso: import_legacy -user <id> [-charset c] [-store id] archivo.json")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir export: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := charsetReader(*charset, f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	docs, rejected, err := decodeLegacy(r)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	total := len(docs) + len(rejected)
	ctx := context.Background()
	be, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Persistencia: %v\n", err)
		os.Exit(1)
	}
	defer be.Close()

	itemUC := inventory.NewItemUseCase(access.NewGuard(be.Users), be.Items, be.Stores, be.Tx, log)
	imported := 0
	for _, doc := range docs {
		in := doc.request(*store)
		if _, err := itemUC.Create(ctx, *userID, in); err != nil {
			rejected = append(rejected, fmt.Sprintf("%s (%s): %v", in.AtNo, doc.ID, err))
			continue
		}
		imported++
	}

	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "rechazado %s\n", r)
	}
	fmt.Printf("Importados %d de %d documentos, %d rechazados\n", imported, total, len(rejected))
}
